package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/snapguess/internal/model"
	"github.com/mcoot/snapguess/internal/services/session"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	s.Require().NoError(s.app.LoadTestLexicon())
}

func (s *IntegrationSuite) send(ev session.InboundEvent) {
	s.Require().NoError(s.app.SessionController.HandleMessage(s.ctx, ev))
}

func (s *IntegrationSuite) text(id string) {
	s.send(session.InboundEvent{
		PlayerID: model.PlayerID(id),
		Address:  model.Address("addr-" + id),
		Text:     "hello",
	})
}

func (s *IntegrationSuite) photo(id, ref string) {
	s.send(session.InboundEvent{
		PlayerID:   model.PlayerID(id),
		Address:    model.Address("addr-" + id),
		Attachment: model.ImageRef(ref),
	})
}

func (s *IntegrationSuite) confirm(id string, yes bool) {
	s.send(session.InboundEvent{
		PlayerID: model.PlayerID(id),
		Address:  model.Address("addr-" + id),
		Confirm:  &yes,
	})
}

// Test: Complete game flow through two won rounds
func (s *IntegrationSuite) TestCompleteGameFlow() {
	// Step 1: Three players say hello; the first becomes the snapper
	s.text("alice")
	s.text("bob")
	s.text("carol")

	snap := s.app.SessionController.GetSnapshot()
	s.Equal(model.PhaseAwaitingSnap, snap.Phase)
	s.Equal(model.PlayerID("alice"), snap.SnapperID)

	// Step 2: Alice sends a photo and confirms the recognized tags
	s.app.TestClassifier.Queue("dog", "grass", "park", "running")
	s.photo("alice", "https://photos.test/alice-1.jpg")
	s.confirm("alice", true)

	snap = s.app.SessionController.GetSnapshot()
	s.Equal(model.PhaseActive, snap.Phase)
	s.Equal(model.PlayerID("alice"), snap.SenderID)
	s.Equal([]string{"dog", "grass", "park"}, snap.Tags)

	// Step 3: Bob misses, then wins with a full match
	s.app.TestClassifier.Queue("cat", "house")
	s.photo("bob", "https://photos.test/bob-1.jpg")
	s.Equal(1, s.app.SessionController.GetSnapshot().WrongGuesses)

	s.app.MockClock.Advance(90 * time.Second)
	s.app.TestClassifier.Queue("dog", "grass", "park")
	s.photo("bob", "https://photos.test/bob-2.jpg")

	snap = s.app.SessionController.GetSnapshot()
	s.Equal(model.PhaseAwaitingSnap, snap.Phase)
	s.Equal(model.PlayerID("bob"), snap.SnapperID)

	// Step 4: Bob opens the next round with his winning photo's successor
	s.app.TestClassifier.Queue("cat", "window")
	s.photo("bob", "https://photos.test/bob-3.jpg")
	s.confirm("bob", true)

	snap = s.app.SessionController.GetSnapshot()
	s.Equal(model.PhaseActive, snap.Phase)
	s.Equal(model.PlayerID("bob"), snap.SenderID)
	s.Equal([]string{"cat", "window"}, snap.Tags)

	// Both won rounds and the new pending photo are in the snap history
	snaps, err := s.app.Storage.RecentSnaps(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(snaps, 3)
}

// Test: A round nobody wins is abandoned and a new snapper is drawn
func (s *IntegrationSuite) TestAbandonedRoundFlow() {
	s.text("alice")
	s.text("bob")
	s.text("carol")

	s.app.TestClassifier.Queue("mountain", "snow", "sky")
	s.photo("alice", "https://photos.test/alice-1.jpg")
	s.confirm("alice", true)

	// Reassignment draws carol (index 2 over alice, bob, carol)
	s.app.MockRandom.QueueIntn(2)

	for i := 0; i < 3; i++ {
		s.app.TestClassifier.Queue("beach", "water")
		s.photo("bob", "https://photos.test/bob-guess.jpg")
	}

	snap := s.app.SessionController.GetSnapshot()
	s.Equal(model.PhaseAwaitingSnap, snap.Phase)
	s.Equal(model.PlayerID("carol"), snap.SnapperID)
	s.Equal(model.PlayerID(""), snap.SenderID)
}

// Test: An idle snapper forfeits on the scheduler tick
func (s *IntegrationSuite) TestForfeitFlow() {
	s.text("alice")
	s.text("bob")

	// Reassignment draws bob (index 1 over alice, bob)
	s.app.MockRandom.QueueIntn(1)

	s.app.MockClock.Advance(3 * time.Minute)
	s.app.SchedulerService.CheckNow(s.ctx)

	snap := s.app.SessionController.GetSnapshot()
	s.Equal(model.PhaseAwaitingSnap, snap.Phase)
	s.Equal(model.PlayerID("bob"), snap.SnapperID)

	var notices int
	for _, m := range s.app.Recorder.MessagesTo("addr-bob") {
		if m.Text == "alice lost their turn" {
			notices++
		}
	}
	s.Equal(1, notices)
}
