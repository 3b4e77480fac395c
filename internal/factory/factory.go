package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/snapguess/internal/chat"
	"github.com/mcoot/snapguess/internal/dependencies/clock"
	"github.com/mcoot/snapguess/internal/dependencies/random"
	"github.com/mcoot/snapguess/internal/profile"
	"github.com/mcoot/snapguess/internal/services/fanout"
	"github.com/mcoot/snapguess/internal/services/lexicon"
	"github.com/mcoot/snapguess/internal/services/match"
	"github.com/mcoot/snapguess/internal/services/registry"
	"github.com/mcoot/snapguess/internal/services/scheduler"
	"github.com/mcoot/snapguess/internal/services/session"
	"github.com/mcoot/snapguess/internal/services/tags"
	"github.com/mcoot/snapguess/internal/storage"
	"github.com/mcoot/snapguess/internal/storage/memory"
	redisstorage "github.com/mcoot/snapguess/internal/storage/redis"
	"github.com/mcoot/snapguess/internal/vision"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Outbound adapters
	Classifier     vision.Classifier
	ProfileFetcher profile.Fetcher
	Messenger      chat.Messenger

	// Services
	LexiconService    *lexicon.Service
	TagService        *tags.Service
	MatchService      *match.Service
	RegistryService   *registry.Service
	SchedulerService  *scheduler.Service
	FanoutService     *fanout.Service
	SessionController *session.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// ClassifierConfig holds settings for the image recognition service
	ClassifierConfig vision.HTTPConfig
	// ProfileConfig holds settings for the profile service
	ProfileConfig profile.HTTPConfig
	// MessengerConfig holds settings for the outbound chat webhook
	MessengerConfig chat.WebhookConfig
	// TagConfig holds tag extraction settings (optional)
	// If zero value, defaults to tags.DefaultConfig()
	TagConfig tags.Config
	// MatchConfig holds match scoring settings (optional)
	// If zero value, defaults to match.DefaultConfig()
	MatchConfig match.Config
	// SchedulerConfig holds turn scheduling settings (optional)
	// If zero value, defaults to scheduler.DefaultConfig()
	SchedulerConfig scheduler.Config
	// SessionConfig holds session settings (optional)
	// If zero value, defaults to session.DefaultConfig()
	SessionConfig session.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	classifier := vision.NewHTTPClassifier(cfg.ClassifierConfig)
	fetcher := profile.NewHTTPFetcher(cfg.ProfileConfig)
	messenger := chat.NewWebhookMessenger(cfg.MessengerConfig)

	return newWithDependencies(dependencies{
		store:      store,
		clock:      clk,
		random:     rnd,
		classifier: classifier,
		fetcher:    fetcher,
		messenger:  messenger,
		tagCfg:     orDefaultTags(cfg.TagConfig),
		matchCfg:   orDefaultMatch(cfg.MatchConfig),
		schedCfg:   orDefaultScheduler(cfg.SchedulerConfig),
		sessionCfg: orDefaultSession(cfg.SessionConfig),
		logger:     logger,
	}), nil
}

// dependencies bundles everything newWithDependencies needs, so tests can
// substitute mocks
type dependencies struct {
	store      storage.Storage
	clock      clock.Clock
	random     random.Random
	classifier vision.Classifier
	fetcher    profile.Fetcher
	messenger  chat.Messenger
	tagCfg     tags.Config
	matchCfg   match.Config
	schedCfg   scheduler.Config
	sessionCfg session.Config
	logger     *slog.Logger
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(deps dependencies) *App {
	lexiconService := lexicon.New(deps.store)
	tagService := tags.New(deps.tagCfg, lexiconService)
	matchService := match.New(deps.matchCfg)
	registryService := registry.New(deps.store, deps.fetcher, deps.clock, deps.logger)
	schedulerService := scheduler.New(registryService, deps.clock, deps.random, deps.schedCfg, deps.logger)
	fanoutService := fanout.New(registryService, tagService, deps.messenger, deps.logger)
	sessionController := session.NewController(
		registryService, tagService, matchService, schedulerService, fanoutService,
		deps.classifier, deps.messenger, deps.store, deps.clock, deps.sessionCfg, deps.logger,
	)

	// The scheduler fires forfeits back into the session
	schedulerService.OnForfeit(sessionController.HandleForfeit)

	return &App{
		Storage:           deps.store,
		Clock:             deps.clock,
		Random:            deps.random,
		Classifier:        deps.classifier,
		ProfileFetcher:    deps.fetcher,
		Messenger:         deps.messenger,
		LexiconService:    lexiconService,
		TagService:        tagService,
		MatchService:      matchService,
		RegistryService:   registryService,
		SchedulerService:  schedulerService,
		FanoutService:     fanoutService,
		SessionController: sessionController,
	}
}

func orDefaultTags(cfg tags.Config) tags.Config {
	if cfg.MaxCandidates == 0 {
		return tags.DefaultConfig()
	}
	return cfg
}

func orDefaultMatch(cfg match.Config) match.Config {
	if cfg.FullMatchScore == 0 {
		return match.DefaultConfig()
	}
	return cfg
}

func orDefaultScheduler(cfg scheduler.Config) scheduler.Config {
	if cfg.CheckInterval == 0 {
		return scheduler.DefaultConfig()
	}
	return cfg
}

func orDefaultSession(cfg session.Config) session.Config {
	if cfg.SnapTimeout == 0 {
		return session.DefaultConfig()
	}
	return cfg
}
