package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/snapguess/internal/api"
	"github.com/mcoot/snapguess/internal/api/request"
	"github.com/mcoot/snapguess/internal/api/response"
	"github.com/mcoot/snapguess/internal/factory"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := factory.NewTestApp()
	require.NoError(t, app.LoadTestLexicon())

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		SessionController: app.SessionController,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) message(t *testing.T, msg request.InboundMessage) {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/messages", msg)
	require.Equal(t, http.StatusAccepted, rr.Code)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestReceiveMessageValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/messages", request.InboundMessage{
		Address: "addr-a",
		Text:    "hi",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/messages", request.InboundMessage{
		PlayerID: "a",
		Text:     "hi",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReceiveMessageMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMessageDesignatesSnapper(t *testing.T) {
	ts := newTestServer(t)

	ts.message(t, request.InboundMessage{PlayerID: "a", Address: "addr-a", Text: "hi"})

	rr := ts.request(http.MethodGet, "/api/v1/state", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var state response.GameStateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.Equal(t, "awaiting_snap", state.Phase)
	assert.Equal(t, "a", state.SnapperID)
}

func TestPhotoToActiveRound(t *testing.T) {
	ts := newTestServer(t)

	ts.message(t, request.InboundMessage{PlayerID: "a", Address: "addr-a", Text: "hi"})
	ts.message(t, request.InboundMessage{PlayerID: "b", Address: "addr-b", Text: "hi"})

	ts.app.TestClassifier.Queue("dog", "park")
	ts.message(t, request.InboundMessage{
		PlayerID: "a",
		Address:  "addr-a",
		ImageURL: "https://photos.test/a.jpg",
	})

	yes := true
	ts.message(t, request.InboundMessage{PlayerID: "a", Address: "addr-a", Confirm: &yes})

	rr := ts.request(http.MethodGet, "/api/v1/state", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var state response.GameStateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.Equal(t, "active", state.Phase)
	assert.Equal(t, "a", state.SenderID)
	assert.Equal(t, []string{"dog", "park"}, state.Tags)
}

func TestReset(t *testing.T) {
	ts := newTestServer(t)

	ts.message(t, request.InboundMessage{PlayerID: "a", Address: "addr-a", Text: "hi"})

	rr := ts.request(http.MethodPost, "/api/v1/reset", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/state", nil)
	var state response.GameStateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	assert.Equal(t, "idle", state.Phase)
	assert.Empty(t, state.SnapperID)
}
