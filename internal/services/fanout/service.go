package fanout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/snapguess/internal/chat"
	"github.com/mcoot/snapguess/internal/model"
	"github.com/mcoot/snapguess/internal/services/registry"
	"github.com/mcoot/snapguess/internal/services/tags"
)

// step is one outbound message in a recipient's ordered sequence
type step struct {
	text string
	card *chat.ComparisonCard
}

// delivery is the ordered message sequence for one recipient
type delivery struct {
	player *model.Player
	steps  []step
}

// Service computes recipient sets and ordered message sequences for game
// transition events and dispatches them.
//
// Messages to one recipient are sent strictly in order; deliveries to
// different recipients run concurrently and fail independently. Send
// failures are logged, never retried.
type Service struct {
	registry  registry.ServiceInterface
	tags      tags.ServiceInterface
	messenger chat.Messenger
	logger    *slog.Logger
}

// New creates a new fanout Service
func New(reg registry.ServiceInterface, tagSvc tags.ServiceInterface, messenger chat.Messenger, logger *slog.Logger) *Service {
	return &Service{
		registry:  reg,
		tags:      tagSvc,
		messenger: messenger,
		logger:    logger.With(slog.String("component", "fanout")),
	}
}

// Dispatch fans an event out to its recipient set. It returns once every
// recipient's sequence has completed or failed.
func (s *Service) Dispatch(ctx context.Context, event model.Event) {
	deliveries, err := s.plan(ctx, event)
	if err != nil {
		s.logger.Error("fanout planning failed",
			slog.String("event", string(event.Type)),
			slog.String("error", err.Error()),
		)
		return
	}

	var wg sync.WaitGroup
	for _, d := range deliveries {
		wg.Add(1)
		go func(d delivery) {
			defer wg.Done()
			s.deliver(ctx, event.Type, d)
		}(d)
	}
	wg.Wait()
}

// deliver sends one recipient's steps in strict order, stopping that
// recipient's sequence on the first failure
func (s *Service) deliver(ctx context.Context, eventType model.EventType, d delivery) {
	for i, st := range d.steps {
		var err error
		if st.card != nil {
			err = s.messenger.SendComparison(ctx, d.player.Address, *st.card)
		} else {
			err = s.messenger.SendText(ctx, d.player.Address, st.text)
		}
		if err != nil {
			s.logger.Error("fanout send failed",
				slog.String("event", string(eventType)),
				slog.String("player_id", string(d.player.ID)),
				slog.Int("step", i),
				slog.String("error", err.Error()),
			)
			return
		}
	}
}

// plan computes the recipient set and per-recipient message sequences
func (s *Service) plan(ctx context.Context, event model.Event) ([]delivery, error) {
	switch payload := event.Payload.(type) {
	case model.RoundStartedPayload:
		return s.planRoundStarted(ctx, payload)
	case model.RoundGuessedPayload:
		return s.planRoundGuessed(ctx, payload)
	case model.CloseGuessPayload:
		return s.planCloseGuess(ctx, payload)
	case model.RoundAbandonedPayload:
		return s.planRoundAbandoned(ctx)
	case model.TurnForfeitedPayload:
		return s.planTurnForfeited(ctx, payload)
	default:
		return nil, fmt.Errorf("unknown event payload %T", event.Payload)
	}
}

func (s *Service) planRoundStarted(ctx context.Context, payload model.RoundStartedPayload) ([]delivery, error) {
	recipients, err := s.registry.ActivePlayers(ctx, payload.SenderID)
	if err != nil {
		return nil, err
	}

	guessPrompt := "Send me a photo that looks like: " + s.tags.DisplayTags(payload.Tags)
	deliveries := make([]delivery, 0, len(recipients))
	for _, p := range recipients {
		deliveries = append(deliveries, delivery{
			player: p,
			steps: []step{
				{text: "A new game has just started"},
				{text: guessPrompt},
			},
		})
	}
	return deliveries, nil
}

func (s *Service) planRoundGuessed(ctx context.Context, payload model.RoundGuessedPayload) ([]delivery, error) {
	players, err := s.registry.ActivePlayers(ctx, payload.GuesserID)
	if err != nil {
		return nil, err
	}

	elapsed := payload.Elapsed.Round(time.Second)
	card := &chat.ComparisonCard{
		Title:         "Original vs winning guess",
		OriginalImage: payload.Original.ImageRef,
		OriginalLabel: "Original",
		FinalImage:    payload.Final.ImageRef,
		FinalLabel:    "Winning guess",
	}

	deliveries := make([]delivery, 0, len(players))
	for _, p := range players {
		if p.ID == payload.SenderID {
			deliveries = append(deliveries, delivery{
				player: p,
				steps: []step{
					{text: fmt.Sprintf("Somebody guessed your image! It took %s", elapsed)},
					{card: card},
				},
			})
			continue
		}
		deliveries = append(deliveries, delivery{
			player: p,
			steps: []step{
				{text: fmt.Sprintf("Somebody guessed the current photo in %s", elapsed)},
				{text: "Hang on, now they have to send an image"},
				{card: card},
			},
		})
	}
	return deliveries, nil
}

func (s *Service) planCloseGuess(ctx context.Context, payload model.CloseGuessPayload) ([]delivery, error) {
	guesser, err := s.registry.GetPlayer(ctx, payload.GuesserID)
	if err != nil {
		return nil, err
	}

	text := "No, that's not it"
	switch payload.Score {
	case 1:
		text = "Close! One of your tags matched"
	case 2:
		text = "Very close! Two of your tags matched"
	}

	return []delivery{{player: guesser, steps: []step{{text: text}}}}, nil
}

func (s *Service) planRoundAbandoned(ctx context.Context) ([]delivery, error) {
	recipients, err := s.registry.ActivePlayers(ctx, "")
	if err != nil {
		return nil, err
	}

	deliveries := make([]delivery, 0, len(recipients))
	for _, p := range recipients {
		deliveries = append(deliveries, delivery{
			player: p,
			steps:  []step{{text: "Nobody won this round. Picking a new photographer..."}},
		})
	}
	return deliveries, nil
}

func (s *Service) planTurnForfeited(ctx context.Context, payload model.TurnForfeitedPayload) ([]delivery, error) {
	recipients, err := s.registry.ActivePlayers(ctx, payload.SnapperID)
	if err != nil {
		return nil, err
	}

	name := s.snapperName(ctx, payload.SnapperID)
	deliveries := make([]delivery, 0, len(recipients))
	for _, p := range recipients {
		deliveries = append(deliveries, delivery{
			player: p,
			steps:  []step{{text: fmt.Sprintf("%s lost their turn", name)}},
		})
	}
	return deliveries, nil
}

// snapperName resolves a display name for forfeit notices via the profile
// cache, falling back to the raw id
func (s *Service) snapperName(ctx context.Context, id model.PlayerID) string {
	profile, err := s.registry.GetProfile(ctx, id)
	if err != nil {
		s.logger.Warn("profile lookup failed for forfeit notice",
			slog.String("player_id", string(id)),
			slog.String("error", err.Error()),
		)
		return string(id)
	}
	if name := profile.DisplayName(); name != "" {
		return name
	}
	return string(id)
}

// Interface for dependency injection
type ServiceInterface interface {
	Dispatch(ctx context.Context, event model.Event)
}

var _ ServiceInterface = (*Service)(nil)
