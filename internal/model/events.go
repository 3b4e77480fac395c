package model

import "time"

// EventType identifies the type of a game transition event
type EventType string

const (
	EventRoundStarted   EventType = "round_started"
	EventRoundGuessed   EventType = "round_guessed"
	EventCloseGuess     EventType = "close_guess"
	EventRoundAbandoned EventType = "round_abandoned"
	EventTurnForfeited  EventType = "turn_forfeited"
)

// Event is the base structure for all game transition events fanned out to
// players
type Event struct {
	Type      EventType
	Timestamp time.Time
	PlayerID  PlayerID // The player who triggered or is affected
	Payload   any      // Type-specific data
}

// RoundStartedPayload contains data for round started events
type RoundStartedPayload struct {
	SenderID PlayerID
	Tags     []string
}

// RoundGuessedPayload contains data for round guessed events
type RoundGuessedPayload struct {
	GuesserID PlayerID
	SenderID  PlayerID
	Elapsed   time.Duration
	Original  Snap
	Final     Snap
}

// CloseGuessPayload contains data for close guess events
type CloseGuessPayload struct {
	GuesserID PlayerID
	Score     int
}

// RoundAbandonedPayload contains data for round abandoned events
type RoundAbandonedPayload struct {
	SenderID     PlayerID
	WrongGuesses int
}

// TurnForfeitedPayload contains data for turn forfeited events
type TurnForfeitedPayload struct {
	SnapperID PlayerID
	IdleFor   time.Duration
}
