package memory

import (
	"context"
	"sync"

	"github.com/mcoot/snapguess/internal/model"
	"github.com/mcoot/snapguess/internal/storage"
)

// DefaultHistoryLimit bounds the snap history; comparison cards only ever
// need the last two snaps
const DefaultHistoryLimit = 16

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players      map[model.PlayerID]*model.Player
	playerOrder  []model.PlayerID
	snaps        []*model.Snap
	historyLimit int
	nounWords    []string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:      make(map[model.PlayerID]*model.Player),
		historyLimit: DefaultHistoryLimit,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

// copyPlayer detaches a player from the stored record so callers can mutate
// their copy without racing other goroutines. The profile pointer is shared;
// profiles are never mutated after they are cached, only replaced.
func copyPlayer(player *model.Player) *model.Player {
	c := *player
	return &c
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[player.ID]; !ok {
		s.playerOrder = append(s.playerOrder, player.ID)
	}
	s.players[player.ID] = copyPlayer(player)
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return copyPlayer(player), nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.Player, 0, len(s.playerOrder))
	for _, id := range s.playerOrder {
		players = append(players, copyPlayer(s.players[id]))
	}
	return players, nil
}

// Snap history operations

func (s *Storage) AppendSnap(ctx context.Context, snap *model.Snap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snap)
	if len(s.snaps) > s.historyLimit {
		s.snaps = s.snaps[len(s.snaps)-s.historyLimit:]
	}
	return nil
}

func (s *Storage) RecentSnaps(ctx context.Context, n int) ([]*model.Snap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || len(s.snaps) == 0 {
		return nil, nil
	}
	if n > len(s.snaps) {
		n = len(s.snaps)
	}
	result := make([]*model.Snap, n)
	copy(result, s.snaps[len(s.snaps)-n:])
	return result, nil
}

// Noun lexicon operations

func (s *Storage) GetNounWords(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.nounWords == nil {
		return nil, model.ErrLexiconNotLoaded
	}
	result := make([]string, len(s.nounWords))
	copy(result, s.nounWords)
	return result, nil
}

func (s *Storage) SaveNounWords(ctx context.Context, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nounWords = make([]string, len(words))
	copy(s.nounWords, words)
	return nil
}
