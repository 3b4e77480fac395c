package factory

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/snapguess/internal/chat"
	"github.com/mcoot/snapguess/internal/dependencies/mocks"
	"github.com/mcoot/snapguess/internal/model"
	"github.com/mcoot/snapguess/internal/services/match"
	"github.com/mcoot/snapguess/internal/services/scheduler"
	"github.com/mcoot/snapguess/internal/services/session"
	"github.com/mcoot/snapguess/internal/services/tags"
	"github.com/mcoot/snapguess/internal/storage/memory"
	"github.com/mcoot/snapguess/internal/vision"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock      *mocks.MockClock
	MockRandom     *mocks.MockRandom
	Recorder       *chat.Recorder
	TestClassifier *ScriptedClassifier
	TestFetcher    *StaticFetcher
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	recorder := chat.NewRecorder()
	classifier := &ScriptedClassifier{}
	fetcher := &StaticFetcher{Profiles: make(map[model.PlayerID]*model.Profile)}

	app := newWithDependencies(dependencies{
		store:      store,
		clock:      mockClock,
		random:     mockRandom,
		classifier: classifier,
		fetcher:    fetcher,
		messenger:  recorder,
		tagCfg:     orDefaultTags(tags.Config{}),
		matchCfg:   orDefaultMatch(match.Config{}),
		schedCfg:   orDefaultScheduler(scheduler.Config{}),
		// No reassignment pacing delay in tests
		sessionCfg: session.Config{SnapTimeout: 2 * time.Minute},
		logger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})

	return &TestApp{
		App:            app,
		MockClock:      mockClock,
		MockRandom:     mockRandom,
		Recorder:       recorder,
		TestClassifier: classifier,
		TestFetcher:    fetcher,
	}
}

// LoadTestLexicon loads a small noun lexicon for testing
func (t *TestApp) LoadTestLexicon() error {
	words := []string{
		"animal", "beach", "bird", "boat", "building", "car", "cat", "chair",
		"child", "city", "cloud", "coffee", "cup", "dog", "flower", "food",
		"forest", "fruit", "garden", "grass", "house", "lake", "light", "man",
		"mountain", "park", "person", "pet", "plant", "river", "road", "sky",
		"snow", "street", "sun", "table", "tree", "water", "window", "woman",
	}
	return t.LexiconService.LoadWords(words)
}

// ScriptedClassifier returns queued classification results in order
type ScriptedClassifier struct {
	results []scriptedResult
	index   int
}

type scriptedResult struct {
	concepts []vision.Concept
	err      error
}

var _ vision.Classifier = (*ScriptedClassifier)(nil)

// Queue adds a successful classification returning the given concept names
func (c *ScriptedClassifier) Queue(names ...string) {
	concepts := make([]vision.Concept, len(names))
	for i, name := range names {
		concepts[i] = vision.Concept{Name: name, Confidence: 1 - float64(i)*0.01}
	}
	c.results = append(c.results, scriptedResult{concepts: concepts})
}

// QueueError adds a failing classification
func (c *ScriptedClassifier) QueueError(err error) {
	c.results = append(c.results, scriptedResult{err: err})
}

func (c *ScriptedClassifier) Classify(ctx context.Context, ref model.ImageRef) ([]vision.Concept, error) {
	if c.index >= len(c.results) {
		return nil, nil
	}
	result := c.results[c.index]
	c.index++
	return result.concepts, result.err
}

// StaticFetcher serves profiles from an in-memory map
type StaticFetcher struct {
	Profiles map[model.PlayerID]*model.Profile
}

func (f *StaticFetcher) Fetch(ctx context.Context, id model.PlayerID) (*model.Profile, error) {
	if p, ok := f.Profiles[id]; ok {
		return p, nil
	}
	return &model.Profile{}, nil
}
