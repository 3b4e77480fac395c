package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mcoot/snapguess/internal/api"
	"github.com/mcoot/snapguess/internal/chat"
	"github.com/mcoot/snapguess/internal/factory"
	"github.com/mcoot/snapguess/internal/profile"
	"github.com/mcoot/snapguess/internal/services/scheduler"
	"github.com/mcoot/snapguess/internal/services/session"
	redisstorage "github.com/mcoot/snapguess/internal/storage/redis"
	"github.com/mcoot/snapguess/internal/vision"
)

type config struct {
	bind          string
	port          int
	storageType   string
	redisURL      string
	classifierURL string
	classifierKey string
	profileURL    string
	outboundURL   string
	lexiconPath   string
	snapTimeout   time.Duration
	checkInterval time.Duration
	verbose       bool
}

func (c *config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.storageType == factory.StorageTypeRedis && c.redisURL == "" {
		return errors.New("--redis-url required when --storage is redis")
	}
	if c.classifierURL == "" {
		return errors.New("--classifier-url is required")
	}
	if c.outboundURL == "" {
		return errors.New("--outbound-url is required")
	}
	return nil
}

func newCmd(cfg *config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SNAPGUESS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "snapguess-server",
		Short:         "Photo guessing game bot server",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "", "address to bind to (env: SNAPGUESS_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: SNAPGUESS_PORT)")
	fs.StringVar(&cfg.storageType, "storage", factory.StorageTypeMemory, "storage backend: memory or redis (env: SNAPGUESS_STORAGE)")
	fs.StringVar(&cfg.redisURL, "redis-url", "", "redis connection URL (env: SNAPGUESS_REDIS_URL)")
	fs.StringVar(&cfg.classifierURL, "classifier-url", "", "image recognition prediction endpoint (env: SNAPGUESS_CLASSIFIER_URL)")
	fs.StringVar(&cfg.classifierKey, "classifier-key", "", "image recognition API key (env: SNAPGUESS_CLASSIFIER_KEY)")
	fs.StringVar(&cfg.profileURL, "profile-url", "", "player profile service base URL (env: SNAPGUESS_PROFILE_URL)")
	fs.StringVar(&cfg.outboundURL, "outbound-url", "", "chat transport webhook for outbound messages (env: SNAPGUESS_OUTBOUND_URL)")
	fs.StringVar(&cfg.lexiconPath, "lexicon", "data/nouns.txt", "path to the noun lexicon file (env: SNAPGUESS_LEXICON)")
	fs.DurationVar(&cfg.snapTimeout, "snap-timeout", 2*time.Minute, "time before an idle photographer loses their turn (env: SNAPGUESS_SNAP_TIMEOUT)")
	fs.DurationVar(&cfg.checkInterval, "check-interval", 5*time.Second, "how often inactivity timeouts are evaluated (env: SNAPGUESS_CHECK_INTERVAL)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "debug-level logging (env: SNAPGUESS_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	return cmd
}

func run(ctx context.Context, cfg *config) error {
	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.storageType,
		ClassifierConfig: vision.HTTPConfig{
			Endpoint: cfg.classifierURL,
			APIKey:   cfg.classifierKey,
			Timeout:  15 * time.Second,
		},
		ProfileConfig: profile.HTTPConfig{
			BaseURL: cfg.profileURL,
			Timeout: 10 * time.Second,
		},
		MessengerConfig: chat.WebhookConfig{
			OutboundURL: cfg.outboundURL,
			Timeout:     10 * time.Second,
		},
		SchedulerConfig: scheduler.Config{
			CheckInterval: cfg.checkInterval,
			SnapTimeout:   cfg.snapTimeout,
		},
		SessionConfig: session.Config{
			SnapTimeout:   cfg.snapTimeout,
			ReassignDelay: 2 * time.Second,
		},
	}

	if cfg.storageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.redisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	// The lexicon filters classifier concepts down to nouns; without it every
	// concept passes through
	if err := app.LexiconService.LoadFromFile(ctx, cfg.lexiconPath); err != nil {
		logger.Warn("could not load lexicon", slog.String("error", err.Error()))
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		SessionController: app.SessionController,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.bind
	serverConfig.Port = cfg.port
	server := api.NewServer(router, serverConfig, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Scheduler poll loop enforces snapper inactivity timeouts
	go app.SchedulerService.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}

func main() {
	cfg := &config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}
