package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/snakegame-go/internal/config"
	"github.com/mcoot/snakegame-go/internal/dependencies/clock"
	"github.com/mcoot/snakegame-go/internal/dependencies/ids"
	"github.com/mcoot/snakegame-go/internal/metrics"
	"github.com/mcoot/snakegame-go/internal/services/auth"
	"github.com/mcoot/snakegame-go/internal/services/credential"
	"github.com/mcoot/snakegame-go/internal/services/gamestate"
	"github.com/mcoot/snakegame-go/internal/services/leaderboard"
	"github.com/mcoot/snakegame-go/internal/services/ledger"
	"github.com/mcoot/snakegame-go/internal/services/ranking"
	"github.com/mcoot/snakegame-go/internal/services/session"
	"github.com/mcoot/snakegame-go/internal/storage"
	"github.com/mcoot/snakegame-go/internal/storage/memory"
	"github.com/mcoot/snakegame-go/internal/storage/postgres"
	redisstorage "github.com/mcoot/snakegame-go/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = config.StorageMemory
	StorageTypeRedis    = config.StorageRedis
	StorageTypePostgres = config.StoragePostgres
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock
	IDs   ids.Generator

	// Metrics is nil when metrics are disabled
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	// Components
	Credentials *credential.Store
	Sessions    *session.Registry
	Ledger      *ledger.Ledger
	Ranker      *ranking.Ranker

	// Services
	AuthService        *auth.Service
	LeaderboardService *leaderboard.Service
	GameStateService   *gamestate.Service

	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresDSN is the connection string (required if StorageType is "postgres")
	PostgresDSN string
	// Migrate applies pending postgres migrations before the pool is opened
	Migrate bool
	// SessionConfig configures session lifetime
	// If zero value, defaults to session.DefaultConfig()
	SessionConfig session.Config
	// RankingConfig configures the leaderboard size
	// If zero value, defaults to ranking.DefaultConfig()
	RankingConfig ranking.Config
	// Hasher names the password hashing algorithm for new passwords
	// If empty, defaults to bcrypt
	Hasher     string
	BcryptCost int
	// EnableMetrics creates a Prometheus registry and records metrics into it
	EnableMetrics bool
}

// ConfigFrom translates loaded server configuration into a factory Config
func ConfigFrom(cfg *config.Config, logger *slog.Logger) Config {
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = cfg.Storage.Redis.URL
	if cfg.Storage.Redis.PoolSize > 0 {
		redisCfg.PoolSize = cfg.Storage.Redis.PoolSize
	}
	if cfg.Storage.Redis.SavedGameTTL > 0 {
		redisCfg.SavedGameTTL = cfg.Storage.Redis.SavedGameTTL
	}

	return Config{
		Logger:      logger,
		StorageType: cfg.Storage.Type,
		RedisConfig: &redisCfg,
		PostgresDSN: cfg.Storage.Postgres.DSN,
		Migrate:     cfg.Storage.Postgres.Migrate,
		SessionConfig: session.Config{
			TTL:             cfg.Auth.SessionTTL,
			CleanupInterval: cfg.Auth.CleanupInterval,
		},
		RankingConfig: ranking.Config{Limit: cfg.Leaderboard.Limit},
		Hasher:        cfg.Auth.Hasher,
		BcryptCost:    cfg.Auth.BcryptCost,
		EnableMetrics: cfg.Metrics.Enabled,
	}
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	hasher, err := credential.NewHasher(cfg.Hasher, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	store, closer, err := newStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var m *metrics.Metrics
	var reg *prometheus.Registry
	if cfg.EnableMetrics {
		reg = metrics.NewRegistry()
		m = metrics.New(reg)
	}

	sessionCfg := cfg.SessionConfig
	if sessionCfg.TTL == 0 {
		sessionCfg = session.DefaultConfig()
	}
	rankingCfg := cfg.RankingConfig
	if rankingCfg.Limit == 0 {
		rankingCfg = ranking.DefaultConfig()
	}

	app := newWithDependencies(store, clock.New(), ids.New(), hasher, sessionCfg, rankingCfg, m, logger)
	app.Registry = reg
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

func newStorage(ctx context.Context, cfg Config, logger *slog.Logger) (storage.Storage, func() error, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil, nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, nil, err
		}
		return redisStore, redisStore.Close, nil
	case StorageTypePostgres:
		if cfg.PostgresDSN == "" {
			return nil, nil, errors.New("PostgresDSN required when StorageType is postgres")
		}
		if cfg.Migrate {
			if err := migrate(cfg.PostgresDSN, logger); err != nil {
				return nil, nil, err
			}
		}
		pgStore, err := postgres.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return pgStore, func() error { pgStore.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'postgres'", storageType)
	}
}

func migrate(dsn string, logger *slog.Logger) (err error) {
	migrator, err := postgres.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := migrator.Up(); err != nil {
		return err
	}
	version, _, err := migrator.Version()
	if err != nil {
		return err
	}
	logger.Info("database migrated", "version", version)
	return nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	gen ids.Generator,
	hasher credential.PasswordHasher,
	sessionCfg session.Config,
	rankingCfg ranking.Config,
	m *metrics.Metrics,
	logger *slog.Logger,
) *App {
	credentials := credential.New(store, clk, gen, hasher)
	sessions := session.New(clk, gen, sessionCfg)
	scoreLedger := ledger.New(store, clk, gen)
	ranker := ranking.New(rankingCfg)

	return &App{
		Storage:            store,
		Clock:              clk,
		IDs:                gen,
		Metrics:            m,
		Credentials:        credentials,
		Sessions:           sessions,
		Ledger:             scoreLedger,
		Ranker:             ranker,
		AuthService:        auth.New(credentials, sessions, m, logger),
		LeaderboardService: leaderboard.New(credentials, scoreLedger, ranker, m, logger),
		GameStateService:   gamestate.New(store, clk),
	}
}

// Close releases storage connections
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
