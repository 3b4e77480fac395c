package vision

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/snapguess/internal/model"
)

func TestHTTPClassifierSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"concepts":[{"name":"dog","confidence":0.99},{"name":"animal","confidence":0.95}]}`))
	}))
	defer server.Close()

	cfg := DefaultHTTPConfig()
	cfg.Endpoint = server.URL
	cfg.APIKey = "test-key"
	classifier := NewHTTPClassifier(cfg)

	concepts, err := classifier.Classify(context.Background(), "https://example.com/photo.jpg")
	require.NoError(t, err)
	require.Len(t, concepts, 2)
	assert.Equal(t, "dog", concepts[0].Name)
	assert.InDelta(t, 0.99, concepts[0].Confidence, 0.001)
}

func TestHTTPClassifierServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := DefaultHTTPConfig()
	cfg.Endpoint = server.URL
	classifier := NewHTTPClassifier(cfg)

	_, err := classifier.Classify(context.Background(), "https://example.com/photo.jpg")
	require.ErrorIs(t, err, model.ErrClassification)
}

func TestHTTPClassifierUnreachable(t *testing.T) {
	cfg := DefaultHTTPConfig()
	cfg.Endpoint = "http://127.0.0.1:1"
	classifier := NewHTTPClassifier(cfg)

	_, err := classifier.Classify(context.Background(), "https://example.com/photo.jpg")
	require.ErrorIs(t, err, model.ErrClassification)
}
