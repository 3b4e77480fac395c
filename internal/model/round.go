package model

import "time"

// SnapID uniquely identifies a submitted photo
type SnapID string

// ImageRef is an opaque reference to photo content (typically a URL)
type ImageRef string

// RoundPhase represents the current phase of the game session
type RoundPhase string

const (
	PhaseIdle                 RoundPhase = "idle"                  // No round, no snapper
	PhaseAwaitingSnap         RoundPhase = "awaiting_snap"         // A snapper has been designated and prompted
	PhaseAwaitingConfirmation RoundPhase = "awaiting_confirmation" // Tags extracted, pending snapper confirmation
	PhaseActive               RoundPhase = "active"                // Tags locked, open for guesses
)

// Snap records a single submitted photo and the tags extracted from it.
// Immutable once recorded.
type Snap struct {
	ID       SnapID
	ImageRef ImageRef
	OwnerID  PlayerID
	Tags     []string
	SentAt   time.Time
}

// Round holds the single active round
type Round struct {
	Tags         []string // non-empty while the round is active
	SenderID     PlayerID
	StartedAt    time.Time
	OriginalSnap Snap
	FinalSnap    *Snap // nil until somebody guesses successfully
}

// GameState is the process-wide session state. At most one exists, owned by
// the session controller; components mutate it only through its operations.
type GameState struct {
	Phase RoundPhase

	// Round is set iff Phase is PhaseActive
	Round *Round

	// SnapperID is the player currently taking a photo, set iff Phase is
	// PhaseAwaitingSnap or PhaseAwaitingConfirmation. Mutually exclusive
	// with an active Round.
	SnapperID PlayerID

	// PendingTags holds tags extracted from the snapper's photo while
	// confirmation is outstanding
	PendingTags []string
	// PendingSnap is the snap awaiting confirmation
	PendingSnap *Snap

	// WrongGuesses counts non-winning guesses in the current round.
	// Reset to zero on round start and round abandonment.
	WrongGuesses int
}

// NewGameState returns an idle game state
func NewGameState() *GameState {
	return &GameState{Phase: PhaseIdle}
}

// RoundActive returns true if a round is open for guesses
func (g *GameState) RoundActive() bool {
	return g.Phase == PhaseActive && g.Round != nil
}

// CurrentSender returns the active round's sender, or "" if no round is active
func (g *GameState) CurrentSender() PlayerID {
	if g.Round == nil {
		return ""
	}
	return g.Round.SenderID
}

// CurrentTags returns the active round's tags, or nil if no round is active
func (g *GameState) CurrentTags() []string {
	if g.Round == nil {
		return nil
	}
	return g.Round.Tags
}

// ClearRound resets the state to idle, dropping any round, snapper marker,
// and pending confirmation data
func (g *GameState) ClearRound() {
	g.Phase = PhaseIdle
	g.Round = nil
	g.SnapperID = ""
	g.PendingTags = nil
	g.PendingSnap = nil
	g.WrongGuesses = 0
}
