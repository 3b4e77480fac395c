package response

import "time"

// Accepted acknowledges an inbound message
type Accepted struct {
	Status string `json:"status"`
}

// GameStateResponse is the diagnostic view of the current session
type GameStateResponse struct {
	Phase        string    `json:"phase"`
	SnapperID    string    `json:"snapper_id,omitempty"`
	SenderID     string    `json:"sender_id,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	WrongGuesses int       `json:"wrong_guesses"`
	StartedAt    time.Time `json:"started_at,omitzero"`
}
