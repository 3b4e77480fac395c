package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/snapguess/internal/api/apierr"
	"github.com/mcoot/snapguess/internal/api/request"
	"github.com/mcoot/snapguess/internal/api/response"
	"github.com/mcoot/snapguess/internal/model"
	"github.com/mcoot/snapguess/internal/services/session"
)

// GameHandler handles game session endpoints
type GameHandler struct {
	session session.ControllerInterface
}

// NewGameHandler creates a new game handler
func NewGameHandler(sessionController session.ControllerInterface) *GameHandler {
	return &GameHandler{
		session: sessionController,
	}
}

// ReceiveMessage handles POST /api/v1/messages
//
// This is the webhook the chat transport POSTs every inbound player message
// to. A message is either plain text, a photo attachment, or a yes/no choice
// reply.
func (h *GameHandler) ReceiveMessage(w http.ResponseWriter, r *http.Request) {
	var req request.InboundMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.PlayerID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("player_id is required"))
		return
	}
	if req.Address == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("address is required"))
		return
	}

	ev := session.InboundEvent{
		PlayerID:   model.PlayerID(req.PlayerID),
		Address:    model.Address(req.Address),
		Text:       req.Text,
		Attachment: model.ImageRef(req.ImageURL),
		Confirm:    req.Confirm,
	}

	if err := h.session.HandleMessage(r.Context(), ev); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusAccepted, response.Accepted{Status: "accepted"})
}

// GetState handles GET /api/v1/state
func (h *GameHandler) GetState(w http.ResponseWriter, r *http.Request) {
	snap := h.session.GetSnapshot()

	resp := response.GameStateResponse{
		Phase:        string(snap.Phase),
		SnapperID:    string(snap.SnapperID),
		SenderID:     string(snap.SenderID),
		Tags:         snap.Tags,
		WrongGuesses: snap.WrongGuesses,
		StartedAt:    snap.StartedAt,
	}
	response.JSON(w, http.StatusOK, resp)
}

// Reset handles POST /api/v1/reset
//
// Operator escape hatch: clears the session back to idle without touching the
// player roster.
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.session.ResetGame(r.Context())
	response.NoContent(w)
}
