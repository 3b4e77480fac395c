package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Address is the opaque routing handle used to deliver messages to a player.
// Its contents belong to the chat transport; this core never inspects it.
type Address string

// Profile holds user profile data fetched lazily from the profile service
type Profile struct {
	FirstName string
	LastName  string
	Gender    string
	Locale    string
}

// DisplayName returns the best human-readable name for the profile
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.FirstName != "" && p.LastName != "" {
		return p.FirstName + " " + p.LastName
	}
	if p.FirstName != "" {
		return p.FirstName
	}
	return p.LastName
}

// Player represents a game participant.
// Players are created on their first observed message and never deleted.
type Player struct {
	ID           PlayerID
	Address      Address
	Profile      *Profile // nil until fetched
	LastActiveAt time.Time
	HasSeenIntro bool
	CreatedAt    time.Time
}
