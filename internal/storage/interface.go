package storage

import (
	"context"

	"github.com/mcoot/snapguess/internal/model"
)

// Storage defines the interface for data persistence.
//
// The active round never passes through here; it lives in process memory
// owned by the session controller. Storage covers the player roster, the
// bounded snap history, and the noun lexicon word list.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	// ListPlayers returns all players in registration order
	ListPlayers(ctx context.Context) ([]*model.Player, error)

	// Snap history operations
	AppendSnap(ctx context.Context, snap *model.Snap) error
	// RecentSnaps returns up to n snaps, oldest first
	RecentSnaps(ctx context.Context, n int) ([]*model.Snap, error)

	// Noun lexicon operations
	GetNounWords(ctx context.Context) ([]string, error)
	SaveNounWords(ctx context.Context, words []string) error
}
