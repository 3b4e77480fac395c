package fanout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/snapguess/internal/chat"
	"github.com/mcoot/snapguess/internal/dependencies/mocks"
	"github.com/mcoot/snapguess/internal/model"
	"github.com/mcoot/snapguess/internal/services/lexicon"
	"github.com/mcoot/snapguess/internal/services/registry"
	"github.com/mcoot/snapguess/internal/services/tags"
	"github.com/mcoot/snapguess/internal/storage/memory"
	"github.com/mcoot/snapguess/internal/testutil"
)

type nopFetcher struct{}

func (nopFetcher) Fetch(ctx context.Context, id model.PlayerID) (*model.Profile, error) {
	return &model.Profile{}, nil
}

type ServiceSuite struct {
	suite.Suite
	storage  *memory.Storage
	registry *registry.Service
	recorder *chat.Recorder
	service  *Service
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.storage = memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.registry = registry.New(s.storage, nopFetcher{}, clk, logger)
	s.recorder = chat.NewRecorder()
	tagSvc := tags.New(tags.DefaultConfig(), lexicon.New(s.storage))
	s.service = New(s.registry, tagSvc, s.recorder, logger)
	s.ctx = context.Background()
}

func (s *ServiceSuite) registerPlayers(ids ...model.PlayerID) {
	for _, id := range ids {
		_, err := s.registry.Register(s.ctx, id, model.Address("addr-"+id))
		s.Require().NoError(err)
	}
}

func (s *ServiceSuite) TestRoundStartedExcludesSender() {
	s.registerPlayers("sender", "b", "c")

	s.service.Dispatch(s.ctx, model.Event{
		Type: model.EventRoundStarted,
		Payload: model.RoundStartedPayload{
			SenderID: "sender",
			Tags:     []string{"dog", "animal", "pet"},
		},
	})

	s.Empty(s.recorder.MessagesTo("addr-sender"))

	for _, addr := range []model.Address{"addr-b", "addr-c"} {
		msgs := s.recorder.MessagesTo(addr)
		s.Require().Len(msgs, 2)
		s.Equal("A new game has just started", msgs[0].Text)
		s.Equal("Send me a photo that looks like: dog, animal, pet", msgs[1].Text)
	}
}

func (s *ServiceSuite) TestRoundGuessedMessageSequences() {
	s.registerPlayers("sender", "guesser", "bystander")

	s.service.Dispatch(s.ctx, model.Event{
		Type: model.EventRoundGuessed,
		Payload: model.RoundGuessedPayload{
			GuesserID: "guesser",
			SenderID:  "sender",
			Elapsed:   2*time.Minute + 30*time.Second,
			Original:  model.Snap{ImageRef: "img-original"},
			Final:     model.Snap{ImageRef: "img-final"},
		},
	})

	// Guesser is excluded; the session talks to them directly
	s.Empty(s.recorder.MessagesTo("addr-guesser"))

	senderMsgs := s.recorder.MessagesTo("addr-sender")
	s.Require().Len(senderMsgs, 2)
	s.Equal("Somebody guessed your image! It took 2m30s", senderMsgs[0].Text)
	s.Equal("comparison", senderMsgs[1].Kind)
	s.Equal(model.ImageRef("img-original"), senderMsgs[1].Card.OriginalImage)

	bystanderMsgs := s.recorder.MessagesTo("addr-bystander")
	s.Require().Len(bystanderMsgs, 3)
	s.Equal("Somebody guessed the current photo in 2m30s", bystanderMsgs[0].Text)
	s.Equal("Hang on, now they have to send an image", bystanderMsgs[1].Text)
	s.Equal("comparison", bystanderMsgs[2].Kind)
}

func (s *ServiceSuite) TestCloseGuessOnlyGuesser() {
	s.registerPlayers("sender", "guesser")

	s.service.Dispatch(s.ctx, model.Event{
		Type:    model.EventCloseGuess,
		Payload: model.CloseGuessPayload{GuesserID: "guesser", Score: 2},
	})

	s.Empty(s.recorder.MessagesTo("addr-sender"))

	msgs := s.recorder.MessagesTo("addr-guesser")
	s.Require().Len(msgs, 1)
	s.Equal("Very close! Two of your tags matched", msgs[0].Text)
}

func (s *ServiceSuite) TestCloseGuessScoreOne() {
	s.registerPlayers("guesser")

	s.service.Dispatch(s.ctx, model.Event{
		Type:    model.EventCloseGuess,
		Payload: model.CloseGuessPayload{GuesserID: "guesser", Score: 1},
	})

	msgs := s.recorder.MessagesTo("addr-guesser")
	s.Require().Len(msgs, 1)
	s.Equal("Close! One of your tags matched", msgs[0].Text)
}

func (s *ServiceSuite) TestRoundAbandonedReachesEveryone() {
	s.registerPlayers("a", "b", "c")

	s.service.Dispatch(s.ctx, model.Event{
		Type:    model.EventRoundAbandoned,
		Payload: model.RoundAbandonedPayload{SenderID: "a", WrongGuesses: 3},
	})

	for _, addr := range []model.Address{"addr-a", "addr-b", "addr-c"} {
		msgs := s.recorder.MessagesTo(addr)
		s.Require().Len(msgs, 1)
		s.Equal("Nobody won this round. Picking a new photographer...", msgs[0].Text)
	}
}

func (s *ServiceSuite) TestTurnForfeitedUsesProfileName() {
	s.registerPlayers("snapper", "b")

	player, err := s.registry.GetPlayer(s.ctx, "snapper")
	s.Require().NoError(err)
	player.Profile = &model.Profile{FirstName: "Carol"}
	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))

	s.service.Dispatch(s.ctx, model.Event{
		Type:    model.EventTurnForfeited,
		Payload: model.TurnForfeitedPayload{SnapperID: "snapper", IdleFor: 3 * time.Minute},
	})

	s.Empty(s.recorder.MessagesTo("addr-snapper"))

	msgs := s.recorder.MessagesTo("addr-b")
	s.Require().Len(msgs, 1)
	s.Equal("Carol lost their turn", msgs[0].Text)
}

func (s *ServiceSuite) TestSendFailureDoesNotBlockOtherRecipients() {
	s.registerPlayers("a", "b", "c")
	s.recorder.FailFor("addr-b", errors.New("delivery failed"))

	s.service.Dispatch(s.ctx, model.Event{
		Type:    model.EventRoundAbandoned,
		Payload: model.RoundAbandonedPayload{},
	})

	s.Len(s.recorder.MessagesTo("addr-a"), 1)
	s.Empty(s.recorder.MessagesTo("addr-b"))
	s.Len(s.recorder.MessagesTo("addr-c"), 1)
}
