package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/snapguess/internal/dependencies/clock"
	"github.com/mcoot/snapguess/internal/model"
	"github.com/mcoot/snapguess/internal/profile"
	"github.com/mcoot/snapguess/internal/storage"
)

// Service tracks known players, their activity, and cached profiles
type Service struct {
	storage storage.Storage
	fetcher profile.Fetcher
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new registry Service
func New(storage storage.Storage, fetcher profile.Fetcher, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		fetcher: fetcher,
		clock:   clk,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// Register upserts a player, called on every inbound message.
// A new player is created on first contact; an existing player only has
// their address refreshed.
func (s *Service) Register(ctx context.Context, id model.PlayerID, addr model.Address) (*model.Player, error) {
	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		if !errors.Is(err, model.ErrPlayerNotFound) {
			return nil, err
		}
		now := s.clock.Now()
		player = &model.Player{
			ID:           id,
			Address:      addr,
			LastActiveAt: now,
			CreatedAt:    now,
		}
		if err := s.storage.SavePlayer(ctx, player); err != nil {
			return nil, err
		}
		s.logger.Info("player registered", slog.String("player_id", string(id)))
		return player, nil
	}

	if player.Address != addr {
		player.Address = addr
		if err := s.storage.SavePlayer(ctx, player); err != nil {
			return nil, err
		}
	}
	return player, nil
}

// Touch updates the player's last activity timestamp.
// Called on every inbound message before any game logic runs.
func (s *Service) Touch(ctx context.Context, id model.PlayerID) error {
	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return err
	}
	player.LastActiveAt = s.clock.Now()
	return s.storage.SavePlayer(ctx, player)
}

// GetPlayer retrieves a player by id
func (s *Service) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, id)
}

// GetProfile returns the cached profile or fetches and caches it.
// Fetch failures wrap model.ErrProfileFetch and leave the player intact.
func (s *Service) GetProfile(ctx context.Context, id model.PlayerID) (*model.Profile, error) {
	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	if player.Profile != nil {
		return player.Profile, nil
	}

	fetched, err := s.fetcher.Fetch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching profile for %s: %w", id, err)
	}

	player.Profile = fetched
	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("profile cached", slog.String("player_id", string(id)))
	return fetched, nil
}

// ActivePlayers returns all registered players in registration order,
// optionally excluding one id
func (s *Service) ActivePlayers(ctx context.Context, excludeID model.PlayerID) ([]*model.Player, error) {
	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	if excludeID == "" {
		return players, nil
	}

	filtered := make([]*model.Player, 0, len(players))
	for _, p := range players {
		if p.ID != excludeID {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// MarkIntroSeen records that the player has received the one-time tutorial
// message
func (s *Service) MarkIntroSeen(ctx context.Context, id model.PlayerID) error {
	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return err
	}
	if player.HasSeenIntro {
		return nil
	}
	player.HasSeenIntro = true
	return s.storage.SavePlayer(ctx, player)
}

// Interface for dependency injection
type ServiceInterface interface {
	Register(ctx context.Context, id model.PlayerID, addr model.Address) (*model.Player, error)
	Touch(ctx context.Context, id model.PlayerID) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetProfile(ctx context.Context, id model.PlayerID) (*model.Profile, error)
	ActivePlayers(ctx context.Context, excludeID model.PlayerID) ([]*model.Player, error)
	MarkIntroSeen(ctx context.Context, id model.PlayerID) error
}

var _ ServiceInterface = (*Service)(nil)
