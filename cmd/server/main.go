package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/snakegame-go/internal/api"
	"github.com/mcoot/snakegame-go/internal/config"
	"github.com/mcoot/snakegame-go/internal/errutil"
	"github.com/mcoot/snakegame-go/internal/factory"
)

// seedPassword is the password of every demo player created by --seed
const seedPassword = "demo"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "snake-server",
		Short: "Snake game backend",
		Long: `snake-server serves the snake game JSON API: accounts and sessions,
the score leaderboard and saved games.

Settings are read from an optional YAML file, then SNAKE_ environment
variables (SNAKE_STORAGE__TYPE=redis), then flags.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Options{File: configFile, Flags: cmd.Flags()})
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configFile, "config", "c", "", "YAML config file")
	f.String("host", defaults.Server.Host, "Listen host")
	f.Int("port", defaults.Server.Port, "Listen port")
	f.String("storage", defaults.Storage.Type, "Storage backend: memory, redis, postgres")
	f.Bool("seed", defaults.Storage.Seed, "Create demo players on startup")
	f.String("redis-url", defaults.Storage.Redis.URL, "Redis URL")
	f.String("postgres-dsn", defaults.Storage.Postgres.DSN, "Postgres connection string")
	f.Duration("session-ttl", defaults.Auth.SessionTTL, "Session lifetime")
	f.String("hasher", defaults.Auth.Hasher, "Password hasher for new accounts: bcrypt, argon2id")
	f.Int("limit", defaults.Leaderboard.Limit, "Leaderboard size")
	f.String("log-level", defaults.Log.Level, "Log level: debug, info, warn, error")
	f.String("log-format", defaults.Log.Format, "Log format: json, text")
	f.Bool("metrics", defaults.Metrics.Enabled, "Serve Prometheus metrics on /metrics")

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := factory.New(ctx, factory.ConfigFrom(cfg, logger))
	if err != nil {
		errutil.LogError(logger, "failed to create application", err)
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			errutil.LogError(logger, "failed to close storage", err)
		}
	}()

	if cfg.Storage.Seed {
		created, err := factory.Seed(ctx, app, seedPassword)
		if err != nil {
			errutil.LogError(logger, "failed to seed demo data", err)
			return err
		}
		logger.Info("seeded demo players", slog.Int("created", created))
	}

	// Expired sessions are swept in the background
	go app.Sessions.Run(ctx, logger)

	routerCfg := api.RouterConfig{
		Logger:             logger,
		AuthService:        app.AuthService,
		LeaderboardService: app.LeaderboardService,
		GameStateService:   app.GameStateService,
		Metrics:            app.Metrics,
	}
	if app.Registry != nil {
		routerCfg.Gatherer = app.Registry
	}

	server := api.NewServer(api.NewRouter(routerCfg), api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage.Type))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			errutil.LogError(logger, "server error", err)
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, context.Canceled) {
			errutil.LogError(logger, "shutdown error", err)
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}
