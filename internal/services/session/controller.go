package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/snapguess/internal/chat"
	"github.com/mcoot/snapguess/internal/dependencies/clock"
	"github.com/mcoot/snapguess/internal/model"
	"github.com/mcoot/snapguess/internal/services/fanout"
	"github.com/mcoot/snapguess/internal/services/match"
	"github.com/mcoot/snapguess/internal/services/registry"
	"github.com/mcoot/snapguess/internal/services/scheduler"
	"github.com/mcoot/snapguess/internal/services/tags"
	"github.com/mcoot/snapguess/internal/storage"
	"github.com/mcoot/snapguess/internal/vision"
)

// Config holds session behavior settings
type Config struct {
	// SnapTimeout is how long a snapper may stay idle before forfeiting
	SnapTimeout time.Duration
	// ReassignDelay spaces the "round over" fanout from the next snapper's
	// prompt so recipients read them in order
	ReassignDelay time.Duration
}

// DefaultConfig returns the default session configuration
func DefaultConfig() Config {
	return Config{
		SnapTimeout:   2 * time.Minute,
		ReassignDelay: 2 * time.Second,
	}
}

// InboundEvent is the single inbound surface of the game core: a message
// from a player, possibly with an attachment or a confirmation choice
type InboundEvent struct {
	PlayerID   model.PlayerID
	Address    model.Address
	Text       string
	Attachment model.ImageRef
	// Confirm carries the snapper's yes/no reply to "Is that correct?"
	Confirm *bool
}

// Controller owns the game session state machine.
//
// All GameState access goes through one mutex. The lock is never held across
// classifier calls or outbound sends; any state read before such a
// suspension point is revalidated after it, since the round may have been
// abandoned or reassigned in the interim.
type Controller struct {
	registry   registry.ServiceInterface
	tags       tags.ServiceInterface
	match      match.ServiceInterface
	scheduler  scheduler.ServiceInterface
	fanout     fanout.ServiceInterface
	classifier vision.Classifier
	messenger  chat.Messenger
	storage    storage.Storage
	clock      clock.Clock
	logger     *slog.Logger
	cfg        Config

	mu    sync.Mutex
	state *model.GameState
}

// NewController creates a new session Controller
func NewController(
	reg registry.ServiceInterface,
	tagSvc tags.ServiceInterface,
	matchSvc match.ServiceInterface,
	sched scheduler.ServiceInterface,
	fan fanout.ServiceInterface,
	classifier vision.Classifier,
	messenger chat.Messenger,
	store storage.Storage,
	clk clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		registry:   reg,
		tags:       tagSvc,
		match:      matchSvc,
		scheduler:  sched,
		fanout:     fan,
		classifier: classifier,
		messenger:  messenger,
		storage:    store,
		clock:      clk,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "session")),
		state:      model.NewGameState(),
	}
}

// HandleMessage is the entry point for every inbound player event
func (c *Controller) HandleMessage(ctx context.Context, ev InboundEvent) error {
	player, err := c.registry.Register(ctx, ev.PlayerID, ev.Address)
	if err != nil {
		return err
	}
	if err := c.registry.Touch(ctx, ev.PlayerID); err != nil {
		return err
	}

	if !player.HasSeenIntro {
		c.send(ctx, ev.Address, msgIntro)
		if err := c.registry.MarkIntroSeen(ctx, ev.PlayerID); err != nil {
			return err
		}
	}

	switch {
	case ev.Attachment != "":
		return c.handlePhoto(ctx, ev.PlayerID, ev.Address, ev.Attachment)
	case ev.Confirm != nil:
		return c.handleConfirmation(ctx, ev.PlayerID, ev.Address, *ev.Confirm)
	default:
		return c.handleText(ctx, ev.PlayerID, ev.Address)
	}
}

// handleText routes a plain text message by the current phase
func (c *Controller) handleText(ctx context.Context, playerID model.PlayerID, addr model.Address) error {
	c.mu.Lock()
	phase := c.state.Phase
	senderID := c.state.CurrentSender()
	snapperID := c.state.SnapperID
	roundTags := append([]string(nil), c.state.CurrentTags()...)
	c.mu.Unlock()

	switch phase {
	case model.PhaseActive:
		if playerID == senderID {
			c.send(ctx, addr, msgWaitForGuess)
			return nil
		}
		c.promptAttachment(ctx, addr, guessPromptPrefix+c.tags.DisplayTags(roundTags))
		return nil

	case model.PhaseAwaitingSnap:
		if playerID == snapperID {
			c.promptAttachment(ctx, addr, msgSnapPrompt)
			return nil
		}
		c.send(ctx, addr, msgGameStarting)
		return nil

	case model.PhaseAwaitingConfirmation:
		if playerID == snapperID {
			c.promptConfirm(ctx, addr, msgConfirmPrompt)
			return nil
		}
		c.send(ctx, addr, msgGameStarting)
		return nil

	default: // idle: this player opens the game as the first snapper
		return c.designateSnapper(ctx, playerID)
	}
}

// handlePhoto routes an attachment by the current phase
func (c *Controller) handlePhoto(ctx context.Context, playerID model.PlayerID, addr model.Address, ref model.ImageRef) error {
	c.mu.Lock()
	switch c.state.Phase {
	case model.PhaseIdle:
		// Opening photo with no game running: the player becomes the
		// snapper and this submission is their reference photo
		c.state.Phase = model.PhaseAwaitingSnap
		c.state.SnapperID = playerID
		c.mu.Unlock()
		c.scheduler.Arm(playerID, c.cfg.SnapTimeout)
		return c.handleSnapSubmission(ctx, playerID, addr, ref)

	case model.PhaseAwaitingSnap, model.PhaseAwaitingConfirmation:
		if c.state.SnapperID != playerID {
			c.mu.Unlock()
			c.send(ctx, addr, msgGameStarting)
			return nil
		}
		c.mu.Unlock()
		return c.handleSnapSubmission(ctx, playerID, addr, ref)

	default: // active
		if c.state.CurrentSender() == playerID {
			c.mu.Unlock()
			c.send(ctx, addr, msgWaitForGuess)
			return nil
		}
		startedAt := c.state.Round.StartedAt
		c.mu.Unlock()
		return c.handleGuessSubmission(ctx, playerID, addr, ref, startedAt)
	}
}

// handleSnapSubmission classifies the snapper's photo and moves to
// confirmation
func (c *Controller) handleSnapSubmission(ctx context.Context, playerID model.PlayerID, addr model.Address, ref model.ImageRef) error {
	concepts, err := c.classifier.Classify(ctx, ref)

	c.mu.Lock()
	// The snapper may have forfeited while the classifier ran
	if c.state.SnapperID != playerID ||
		(c.state.Phase != model.PhaseAwaitingSnap && c.state.Phase != model.PhaseAwaitingConfirmation) {
		c.mu.Unlock()
		c.logger.Info("stale snap classification discarded",
			slog.String("player_id", string(playerID)))
		return nil
	}

	if err != nil {
		c.state.Phase = model.PhaseAwaitingSnap
		c.mu.Unlock()
		c.logger.Error("snap classification failed",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		c.send(ctx, addr, msgClassifyError)
		c.promptAttachment(ctx, addr, msgSnapPrompt)
		return nil
	}

	extracted := c.tags.ExtractTags(ctx, concepts)
	if len(extracted) == 0 {
		c.state.Phase = model.PhaseAwaitingSnap
		c.mu.Unlock()
		c.send(ctx, addr, msgNoTags)
		c.promptAttachment(ctx, addr, msgSnapPrompt)
		return nil
	}

	snap := &model.Snap{
		ID:       model.SnapID(uuid.NewString()),
		ImageRef: ref,
		OwnerID:  playerID,
		Tags:     extracted,
		SentAt:   c.clock.Now(),
	}
	c.state.PendingTags = extracted
	c.state.PendingSnap = snap
	c.state.Phase = model.PhaseAwaitingConfirmation
	c.mu.Unlock()

	c.send(ctx, addr, msgSeeTagsPrefix+c.tags.DisplayTags(extracted))
	c.promptConfirm(ctx, addr, msgConfirmPrompt)
	return nil
}

// handleConfirmation processes the snapper's yes/no reply
func (c *Controller) handleConfirmation(ctx context.Context, playerID model.PlayerID, addr model.Address, confirmed bool) error {
	c.mu.Lock()
	if c.state.Phase != model.PhaseAwaitingConfirmation || c.state.SnapperID != playerID {
		c.mu.Unlock()
		c.send(ctx, addr, msgGameStarting)
		return nil
	}

	if !confirmed {
		c.state.PendingTags = nil
		c.state.PendingSnap = nil
		c.state.Phase = model.PhaseAwaitingSnap
		c.mu.Unlock()
		c.send(ctx, addr, msgTryAgain)
		c.promptAttachment(ctx, addr, msgSnapPrompt)
		return nil
	}

	snap := c.state.PendingSnap
	round := &model.Round{
		Tags:         c.state.PendingTags,
		SenderID:     playerID,
		StartedAt:    c.clock.Now(),
		OriginalSnap: *snap,
	}
	c.state.Round = round
	c.state.Phase = model.PhaseActive
	c.state.SnapperID = ""
	c.state.PendingTags = nil
	c.state.PendingSnap = nil
	c.state.WrongGuesses = 0
	roundTags := append([]string(nil), round.Tags...)
	c.mu.Unlock()

	c.scheduler.Disarm(playerID)

	if err := c.storage.AppendSnap(ctx, snap); err != nil {
		c.logger.Error("failed to record snap",
			slog.String("snap_id", string(snap.ID)),
			slog.String("error", err.Error()),
		)
	}

	c.logger.Info("round started",
		slog.String("sender_id", string(playerID)),
		slog.Int("tag_count", len(roundTags)),
	)

	c.send(ctx, addr, msgRoundLive)
	c.fanout.Dispatch(ctx, model.Event{
		Type:      model.EventRoundStarted,
		Timestamp: c.clock.Now(),
		PlayerID:  playerID,
		Payload: model.RoundStartedPayload{
			SenderID: playerID,
			Tags:     roundTags,
		},
	})
	return nil
}

// handleGuessSubmission classifies a guess and scores it against the round
func (c *Controller) handleGuessSubmission(ctx context.Context, playerID model.PlayerID, addr model.Address, ref model.ImageRef, startedAt time.Time) error {
	concepts, err := c.classifier.Classify(ctx, ref)

	c.mu.Lock()
	// The round may have ended or been replaced while the classifier ran
	if !c.state.RoundActive() || !c.state.Round.StartedAt.Equal(startedAt) || c.state.Round.SenderID == playerID {
		c.mu.Unlock()
		c.logger.Info("stale guess classification discarded",
			slog.String("player_id", string(playerID)))
		return nil
	}

	if err != nil {
		roundTags := append([]string(nil), c.state.Round.Tags...)
		c.mu.Unlock()
		c.logger.Error("guess classification failed",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		c.send(ctx, addr, msgClassifyError)
		c.promptAttachment(ctx, addr, guessPromptPrefix+c.tags.DisplayTags(roundTags))
		return nil
	}

	guessTags := c.tags.ExtractTags(ctx, concepts)
	if len(guessTags) == 0 {
		roundTags := append([]string(nil), c.state.Round.Tags...)
		c.mu.Unlock()
		c.send(ctx, addr, msgNoTags)
		c.promptAttachment(ctx, addr, guessPromptPrefix+c.tags.DisplayTags(roundTags))
		return nil
	}

	round := c.state.Round
	score := c.match.Score(round.Tags, guessTags)
	outcome := c.match.Evaluate(score)

	if outcome == match.OutcomeFullMatch {
		return c.completeRound(ctx, playerID, addr, ref, guessTags)
	}

	c.state.WrongGuesses++
	wrongGuesses := c.state.WrongGuesses

	if c.match.ShouldAbandon(wrongGuesses) {
		senderID := round.SenderID
		c.state.ClearRound()
		c.mu.Unlock()

		c.logger.Info("round abandoned",
			slog.String("sender_id", string(senderID)),
			slog.Int("wrong_guesses", wrongGuesses),
		)
		c.fanout.Dispatch(ctx, model.Event{
			Type:      model.EventRoundAbandoned,
			Timestamp: c.clock.Now(),
			Payload: model.RoundAbandonedPayload{
				SenderID:     senderID,
				WrongGuesses: wrongGuesses,
			},
		})
		c.clock.Sleep(c.cfg.ReassignDelay)
		return c.reassignSnapper(ctx)
	}

	roundTags := append([]string(nil), round.Tags...)
	c.mu.Unlock()

	if outcome == match.OutcomeNoMatch {
		c.send(ctx, addr, msgNoMatch)
	} else {
		c.fanout.Dispatch(ctx, model.Event{
			Type:      model.EventCloseGuess,
			Timestamp: c.clock.Now(),
			PlayerID:  playerID,
			Payload: model.CloseGuessPayload{
				GuesserID: playerID,
				Score:     score,
			},
		})
	}
	c.promptAttachment(ctx, addr, guessPromptPrefix+c.tags.DisplayTags(roundTags))
	return nil
}

// completeRound finishes a won round. Called with the lock held; releases it.
// The round is cleared before any notification goes out, so no observer can
// see stale round data mid-transition.
func (c *Controller) completeRound(ctx context.Context, guesserID model.PlayerID, addr model.Address, ref model.ImageRef, guessTags []string) error {
	round := c.state.Round
	final := &model.Snap{
		ID:       model.SnapID(uuid.NewString()),
		ImageRef: ref,
		OwnerID:  guesserID,
		Tags:     guessTags,
		SentAt:   c.clock.Now(),
	}
	round.FinalSnap = final

	payload := model.RoundGuessedPayload{
		GuesserID: guesserID,
		SenderID:  round.SenderID,
		Elapsed:   c.clock.Now().Sub(round.StartedAt),
		Original:  round.OriginalSnap,
		Final:     *final,
	}

	// Clear first; the guesser immediately becomes the next snapper
	c.state.ClearRound()
	c.state.Phase = model.PhaseAwaitingSnap
	c.state.SnapperID = guesserID
	c.mu.Unlock()

	c.scheduler.Arm(guesserID, c.cfg.SnapTimeout)

	if err := c.storage.AppendSnap(ctx, final); err != nil {
		c.logger.Error("failed to record snap",
			slog.String("snap_id", string(final.ID)),
			slog.String("error", err.Error()),
		)
	}

	c.logger.Info("round guessed",
		slog.String("guesser_id", string(guesserID)),
		slog.String("sender_id", string(payload.SenderID)),
		slog.Duration("elapsed", payload.Elapsed),
	)

	c.send(ctx, addr, msgGuessed)
	c.send(ctx, addr, msgYourTurn)
	c.promptAttachment(ctx, addr, msgSnapPrompt)

	c.fanout.Dispatch(ctx, model.Event{
		Type:      model.EventRoundGuessed,
		Timestamp: c.clock.Now(),
		PlayerID:  guesserID,
		Payload:   payload,
	})
	return nil
}

// HandleForfeit is invoked by the scheduler when the snapper idles out
func (c *Controller) HandleForfeit(ctx context.Context, snapperID model.PlayerID, idleFor time.Duration) {
	c.mu.Lock()
	if c.state.SnapperID != snapperID ||
		(c.state.Phase != model.PhaseAwaitingSnap && c.state.Phase != model.PhaseAwaitingConfirmation) {
		c.mu.Unlock()
		return
	}
	c.state.SnapperID = ""
	c.state.PendingTags = nil
	c.state.PendingSnap = nil
	c.state.Phase = model.PhaseIdle
	c.mu.Unlock()

	c.fanout.Dispatch(ctx, model.Event{
		Type:      model.EventTurnForfeited,
		Timestamp: c.clock.Now(),
		PlayerID:  snapperID,
		Payload: model.TurnForfeitedPayload{
			SnapperID: snapperID,
			IdleFor:   idleFor,
		},
	})
	c.clock.Sleep(c.cfg.ReassignDelay)
	if err := c.reassignSnapper(ctx); err != nil {
		c.logger.Error("snapper reassignment failed", slog.String("error", err.Error()))
	}
}

// reassignSnapper picks a fresh snapper uniformly at random and prompts them
func (c *Controller) reassignSnapper(ctx context.Context) error {
	picked, err := c.scheduler.PickNextSnapper(ctx, "")
	if err != nil {
		if errors.Is(err, model.ErrNoPlayers) {
			c.logger.Info("no players available for reassignment")
			return nil
		}
		return err
	}
	return c.designateSnapper(ctx, picked)
}

// designateSnapper marks a player as the current snapper and prompts them
// for a photo
func (c *Controller) designateSnapper(ctx context.Context, playerID model.PlayerID) error {
	player, err := c.registry.GetPlayer(ctx, playerID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.state.Phase != model.PhaseIdle {
		c.mu.Unlock()
		c.send(ctx, player.Address, msgGameStarting)
		return nil
	}
	c.state.Phase = model.PhaseAwaitingSnap
	c.state.SnapperID = playerID
	c.mu.Unlock()

	c.scheduler.Arm(playerID, c.cfg.SnapTimeout)

	c.logger.Info("snapper designated", slog.String("player_id", string(playerID)))

	c.send(ctx, player.Address, msgYourTurn)
	c.promptAttachment(ctx, player.Address, msgSnapPrompt)
	return nil
}

// ResetGame clears the whole session back to idle. Operator escape hatch;
// the player roster is untouched.
func (c *Controller) ResetGame(ctx context.Context) {
	c.mu.Lock()
	snapperID := c.state.SnapperID
	c.state.ClearRound()
	c.mu.Unlock()

	if snapperID != "" {
		c.scheduler.Disarm(snapperID)
	}
	c.logger.Info("game reset")
}

// Snapshot is a read-only view of the session for diagnostics
type Snapshot struct {
	Phase        model.RoundPhase
	SnapperID    model.PlayerID
	SenderID     model.PlayerID
	Tags         []string
	WrongGuesses int
	StartedAt    time.Time
}

// GetSnapshot returns the current session state
func (c *Controller) GetSnapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Phase:        c.state.Phase,
		SnapperID:    c.state.SnapperID,
		WrongGuesses: c.state.WrongGuesses,
	}
	if c.state.Round != nil {
		snap.SenderID = c.state.Round.SenderID
		snap.Tags = append([]string(nil), c.state.Round.Tags...)
		snap.StartedAt = c.state.Round.StartedAt
	}
	return snap
}

// Outbound helpers; sends are best-effort with errors logged, never retried

func (c *Controller) send(ctx context.Context, addr model.Address, text string) {
	if err := c.messenger.SendText(ctx, addr, text); err != nil {
		c.logger.Error("send failed",
			slog.String("address", string(addr)),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Controller) promptAttachment(ctx context.Context, addr model.Address, prompt string) {
	if err := c.messenger.PromptAttachment(ctx, addr, prompt); err != nil {
		c.logger.Error("attachment prompt failed",
			slog.String("address", string(addr)),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Controller) promptConfirm(ctx context.Context, addr model.Address, prompt string) {
	if err := c.messenger.PromptConfirm(ctx, addr, prompt); err != nil {
		c.logger.Error("confirm prompt failed",
			slog.String("address", string(addr)),
			slog.String("error", err.Error()),
		)
	}
}

// Interface for dependency injection
type ControllerInterface interface {
	HandleMessage(ctx context.Context, ev InboundEvent) error
	HandleForfeit(ctx context.Context, snapperID model.PlayerID, idleFor time.Duration)
	ResetGame(ctx context.Context)
	GetSnapshot() Snapshot
}

var _ ControllerInterface = (*Controller)(nil)
