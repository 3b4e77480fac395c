package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/snapguess/internal/dependencies/clock"
	"github.com/mcoot/snapguess/internal/dependencies/random"
	"github.com/mcoot/snapguess/internal/model"
	"github.com/mcoot/snapguess/internal/services/registry"
)

// ForfeitFunc is invoked when a snapper has been idle past their timeout
type ForfeitFunc func(ctx context.Context, snapperID model.PlayerID, idleFor time.Duration)

// Config holds turn scheduling settings
type Config struct {
	// CheckInterval is how often armed timeouts are evaluated
	CheckInterval time.Duration
	// SnapTimeout is how long a snapper may stay idle before forfeiting
	SnapTimeout time.Duration
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		CheckInterval: 5 * time.Second,
		SnapTimeout:   2 * time.Minute,
	}
}

// armedTimeout is one scheduled inactivity check, keyed by snapper id
type armedTimeout struct {
	snapperID model.PlayerID
	timeout   time.Duration
}

// Service decides who snaps next and enforces the snapper inactivity timeout.
//
// Timeouts are poll-based: an armed entry survives every tick on which the
// snapper has been recently active, and fires at most once. Arming a key
// atomically replaces any earlier entry for that key.
type Service struct {
	registry registry.ServiceInterface
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
	cfg      Config

	mu        sync.Mutex
	armed     map[model.PlayerID]armedTimeout
	onForfeit ForfeitFunc
}

// New creates a new scheduler Service
func New(reg registry.ServiceInterface, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		registry: reg,
		clock:    clk,
		random:   rnd,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "scheduler")),
		armed:    make(map[model.PlayerID]armedTimeout),
	}
}

// OnForfeit registers the handler invoked when a snapper times out.
// Must be called before Run.
func (s *Service) OnForfeit(fn ForfeitFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onForfeit = fn
}

// PickNextSnapper selects uniformly at random among registered players,
// optionally excluding one id. Pure uniform choice over the registry
// snapshot; no weighting by activity or history.
func (s *Service) PickNextSnapper(ctx context.Context, excludeID model.PlayerID) (model.PlayerID, error) {
	players, err := s.registry.ActivePlayers(ctx, excludeID)
	if err != nil {
		return "", err
	}
	if len(players) == 0 {
		return "", model.ErrNoPlayers
	}
	return players[s.random.Intn(len(players))].ID, nil
}

// Arm schedules the inactivity check for a snapper, replacing any prior
// entry for the same key
func (s *Service) Arm(snapperID model.PlayerID, timeout time.Duration) {
	if timeout <= 0 {
		timeout = s.cfg.SnapTimeout
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed[snapperID] = armedTimeout{snapperID: snapperID, timeout: timeout}

	s.logger.Info("inactivity timeout armed",
		slog.String("player_id", string(snapperID)),
		slog.Duration("timeout", timeout),
	)
}

// Disarm cancels the inactivity check for a snapper. Called exactly once
// when the snapper successfully confirms a photo, so a stale timeout cannot
// fire after the round has moved on.
func (s *Service) Disarm(snapperID model.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.armed, snapperID)
}

// CheckNow evaluates all armed timeouts against the current clock.
// An entry whose snapper has been idle past the timeout is removed before
// its forfeit handler runs, so forfeiture fires at most once; entries for
// recently active snappers stay armed for the next tick.
func (s *Service) CheckNow(ctx context.Context) {
	s.mu.Lock()
	var fired []struct {
		entry   armedTimeout
		idleFor time.Duration
	}
	for id, entry := range s.armed {
		player, err := s.registry.GetPlayer(ctx, id)
		if err != nil {
			s.logger.Error("inactivity check failed to load player",
				slog.String("player_id", string(id)),
				slog.String("error", err.Error()),
			)
			delete(s.armed, id)
			continue
		}

		idleFor := s.clock.Since(player.LastActiveAt)
		if idleFor < entry.timeout {
			continue
		}

		delete(s.armed, id)
		fired = append(fired, struct {
			entry   armedTimeout
			idleFor time.Duration
		}{entry, idleFor})
	}
	handler := s.onForfeit
	s.mu.Unlock()

	for _, f := range fired {
		s.logger.Info("snapper forfeited by inactivity",
			slog.String("player_id", string(f.entry.snapperID)),
			slog.Duration("idle_for", f.idleFor),
		)
		if handler != nil {
			handler(ctx, f.entry.snapperID, f.idleFor)
		}
	}
}

// Run polls armed timeouts until the context is cancelled
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckNow(ctx)
		}
	}
}

// Interface for dependency injection
type ServiceInterface interface {
	PickNextSnapper(ctx context.Context, excludeID model.PlayerID) (model.PlayerID, error)
	Arm(snapperID model.PlayerID, timeout time.Duration)
	Disarm(snapperID model.PlayerID)
	OnForfeit(fn ForfeitFunc)
	CheckNow(ctx context.Context)
}

var _ ServiceInterface = (*Service)(nil)
