// Command areaengine starts the AREA automation engine's orchestrator: it wires the Store,
// provider clients, dispatcher, and scheduler, seeds the catalog, then runs until signaled.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/area-engine/core/config"
	"github.com/area-engine/core/dispatcher"
	"github.com/area-engine/core/engine"
	"github.com/area-engine/core/leaderlock"
	"github.com/area-engine/core/logging"
	"github.com/area-engine/core/providers"
	"github.com/area-engine/core/scheduler"
	"github.com/area-engine/core/seeder"
	"github.com/area-engine/core/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Logger.WithError(err).Error("areaengine exited with error")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "areaengine",
		Short: "Runs the AREA automation engine's orchestrator",
		RunE:  runServe,
	}
	cmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	cmd.PersistentFlags().String("log-format", "text", "log format: text or json")
	_ = viper.BindPFlags(cmd.PersistentFlags())
	viper.SetEnvPrefix("AREA")
	viper.AutomaticEnv()
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	logging.Configure(viper.GetString("log-level"), viper.GetString("log-format"))
	log := logging.Named("main")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pgStore, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	if err := seeder.New(pgStore).Run(cmd.Context()); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	lock, err := buildLeaderLock(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("build leader lock: %w", err)
	}

	deps := engine.Deps{
		Store:    pgStore,
		Clock:    providers.SystemClock{},
		SMTP:     providers.NewDirectSMTPSender(cfg.SMTP),
		Gmail:    providers.NewHTTPGmailClient(),
		Drive:    providers.NewHTTPDriveClient(),
		Facebook: providers.NewHTTPFacebookClient(),
		GitHub:   providers.NewHTTPGitHubClient(),
		Spotify:  providers.NewHTTPSpotifyClient(),
		Refreshers: map[string]*providers.TokenRefresher{
			"gmail":    providers.NewTokenRefresher(providers.GoogleEndpoint, cfg.Google.ClientID, cfg.Google.ClientSecret),
			"drive":    providers.NewTokenRefresher(providers.GoogleEndpoint, cfg.Google.ClientID, cfg.Google.ClientSecret),
			"facebook": providers.NewTokenRefresher(providers.FacebookEndpoint, cfg.Facebook.ClientID, cfg.Facebook.ClientSecret),
			"github":   providers.NewTokenRefresher(providers.GitHubEndpoint, cfg.GitHub.ClientID, cfg.GitHub.ClientSecret),
			"spotify":  providers.NewTokenRefresher(providers.SpotifyEndpoint, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret),
		},
		LookbackWindow: 5 * time.Minute,
	}

	d := dispatcher.New()
	sched := scheduler.New(scheduler.Config{
		TickInterval:    cfg.Scheduler.CheckInterval,
		HTTPCallTimeout: cfg.Scheduler.HTTPCallTimeout,
	}, lock, d, deps)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Scheduler.Enabled {
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	log.Info("areaengine running; waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received; stopping scheduler")
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sched.Stop(stopCtx)

	return nil
}

// buildLeaderLock selects the leader-lock substrate named by
// SCHEDULER_LEADER_LOCK_MODE (spec §4.1, §5): postgres advisory lock, Redis, or a
// filesystem flock.
func buildLeaderLock(ctx context.Context, cfg *config.Config) (leaderlock.Lock, error) {
	switch cfg.Scheduler.LeaderLockMode {
	case "redis":
		return leaderlock.NewRedisLock(ctx, cfg.RedisURL, "area_scheduler", 30*time.Second)
	case "file":
		return leaderlock.NewFileLock(cfg.Scheduler.LeaderLockPath), nil
	default:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect advisory lock pool: %w", err)
		}
		hostname, _ := os.Hostname()
		return leaderlock.NewPostgresLock(pool, "area_scheduler", hostname), nil
	}
}
