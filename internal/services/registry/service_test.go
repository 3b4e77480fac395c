package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/snapguess/internal/dependencies/mocks"
	"github.com/mcoot/snapguess/internal/model"
	"github.com/mcoot/snapguess/internal/storage/memory"
	"github.com/mcoot/snapguess/internal/testutil"
)

// fakeFetcher is a profile.Fetcher returning canned results
type fakeFetcher struct {
	profiles map[model.PlayerID]*model.Profile
	err      error
	calls    int
}

func (f *fakeFetcher) Fetch(ctx context.Context, id model.PlayerID) (*model.Profile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, model.ErrProfileFetch
}

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	fetcher *fakeFetcher
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.fetcher = &fakeFetcher{profiles: map[model.PlayerID]*model.Profile{
		"player-1": {FirstName: "Alice", Locale: "en_US"},
	}}
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.fetcher, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

// Register tests

func (s *ServiceSuite) TestRegisterCreatesPlayer() {
	player, err := s.service.Register(s.ctx, "player-1", "addr-1")
	s.Require().NoError(err)

	s.Equal(model.PlayerID("player-1"), player.ID)
	s.Equal(model.Address("addr-1"), player.Address)
	s.Equal(s.clock.Now(), player.CreatedAt)
	s.Equal(s.clock.Now(), player.LastActiveAt)
	s.False(player.HasSeenIntro)
}

func (s *ServiceSuite) TestRegisterIsIdempotent() {
	first, err := s.service.Register(s.ctx, "player-1", "addr-1")
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	second, err := s.service.Register(s.ctx, "player-1", "addr-1")
	s.Require().NoError(err)

	s.Equal(first.CreatedAt, second.CreatedAt)

	players, _ := s.storage.ListPlayers(s.ctx)
	s.Len(players, 1)
}

func (s *ServiceSuite) TestRegisterRefreshesAddress() {
	_, _ = s.service.Register(s.ctx, "player-1", "addr-1")
	player, err := s.service.Register(s.ctx, "player-1", "addr-2")
	s.Require().NoError(err)
	s.Equal(model.Address("addr-2"), player.Address)
}

// Touch tests

func (s *ServiceSuite) TestTouchUpdatesLastActive() {
	_, _ = s.service.Register(s.ctx, "player-1", "addr-1")
	registered := s.clock.Now()

	s.clock.Advance(10 * time.Minute)
	err := s.service.Touch(s.ctx, "player-1")
	s.Require().NoError(err)

	player, _ := s.service.GetPlayer(s.ctx, "player-1")
	s.Equal(registered.Add(10*time.Minute), player.LastActiveAt)
}

func (s *ServiceSuite) TestTouchUnknownPlayer() {
	err := s.service.Touch(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// GetProfile tests

func (s *ServiceSuite) TestGetProfileFetchesAndCaches() {
	_, _ = s.service.Register(s.ctx, "player-1", "addr-1")

	p, err := s.service.GetProfile(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("Alice", p.FirstName)
	s.Equal(1, s.fetcher.calls)

	// Second read is served from the cache
	p, err = s.service.GetProfile(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("Alice", p.FirstName)
	s.Equal(1, s.fetcher.calls)
}

func (s *ServiceSuite) TestGetProfileFetchFailure() {
	_, _ = s.service.Register(s.ctx, "player-1", "addr-1")
	s.fetcher.err = model.ErrProfileFetch

	_, err := s.service.GetProfile(s.ctx, "player-1")
	s.ErrorIs(err, model.ErrProfileFetch)

	// Player record is untouched by the failure
	player, getErr := s.service.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(getErr)
	s.Nil(player.Profile)
}

// ActivePlayers tests

func (s *ServiceSuite) TestActivePlayersRegistrationOrder() {
	for _, id := range []model.PlayerID{"b", "a", "c"} {
		_, err := s.service.Register(s.ctx, id, model.Address("addr-"+id))
		s.Require().NoError(err)
	}

	players, err := s.service.ActivePlayers(s.ctx, "")
	s.Require().NoError(err)
	s.Require().Len(players, 3)
	s.Equal(model.PlayerID("b"), players[0].ID)
	s.Equal(model.PlayerID("a"), players[1].ID)
	s.Equal(model.PlayerID("c"), players[2].ID)
}

func (s *ServiceSuite) TestActivePlayersExcludes() {
	for _, id := range []model.PlayerID{"a", "b", "c"} {
		_, _ = s.service.Register(s.ctx, id, "addr")
	}

	players, err := s.service.ActivePlayers(s.ctx, "b")
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal(model.PlayerID("a"), players[0].ID)
	s.Equal(model.PlayerID("c"), players[1].ID)
}

// Intro flag tests

func (s *ServiceSuite) TestMarkIntroSeen() {
	_, _ = s.service.Register(s.ctx, "player-1", "addr-1")

	err := s.service.MarkIntroSeen(s.ctx, "player-1")
	s.Require().NoError(err)

	player, _ := s.service.GetPlayer(s.ctx, "player-1")
	s.True(player.HasSeenIntro)

	// Idempotent
	s.NoError(s.service.MarkIntroSeen(s.ctx, "player-1"))
}
