// Package config loads server configuration. Sources are layered, later ones
// winning: built-in defaults, an optional YAML file, SNAKE_ environment
// variables, then command line flags that were explicitly set.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is stripped from environment variables. A double underscore
// separates nesting levels: SNAKE_AUTH__SESSION_TTL sets auth.session_ttl.
const EnvPrefix = "SNAKE_"

// Storage types
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config is the complete server configuration
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Storage     StorageConfig     `koanf:"storage"`
	Auth        AuthConfig        `koanf:"auth"`
	Leaderboard LeaderboardConfig `koanf:"leaderboard"`
	Log         LogConfig         `koanf:"log"`
	Metrics     MetricsConfig     `koanf:"metrics"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type StorageConfig struct {
	Type     string         `koanf:"type"`
	Seed     bool           `koanf:"seed"`
	Redis    RedisConfig    `koanf:"redis"`
	Postgres PostgresConfig `koanf:"postgres"`
}

type RedisConfig struct {
	URL          string        `koanf:"url"`
	PoolSize     int           `koanf:"pool_size"`
	SavedGameTTL time.Duration `koanf:"saved_game_ttl"`
}

type PostgresConfig struct {
	DSN string `koanf:"dsn"`
	// Migrate applies pending schema migrations at startup
	Migrate bool `koanf:"migrate"`
}

type AuthConfig struct {
	SessionTTL      time.Duration `koanf:"session_ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	Hasher          string        `koanf:"hasher"`
	BcryptCost      int           `koanf:"bcrypt_cost"`
}

type LeaderboardConfig struct {
	Limit int `koanf:"limit"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Default returns the configuration used when no source overrides a key
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Type: StorageMemory,
			Redis: RedisConfig{
				URL:          "redis://localhost:6379/0",
				PoolSize:     10,
				SavedGameTTL: 7 * 24 * time.Hour,
			},
			Postgres: PostgresConfig{
				Migrate: true,
			},
		},
		Auth: AuthConfig{
			SessionTTL:      24 * time.Hour,
			CleanupInterval: 10 * time.Minute,
			Hasher:          "bcrypt",
			BcryptCost:      10,
		},
		Leaderboard: LeaderboardConfig{
			Limit: 50,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// FlagKeys maps command line flag names to configuration keys
var FlagKeys = map[string]string{
	"host":         "server.host",
	"port":         "server.port",
	"storage":      "storage.type",
	"seed":         "storage.seed",
	"redis-url":    "storage.redis.url",
	"postgres-dsn": "storage.postgres.dsn",
	"session-ttl":  "auth.session_ttl",
	"hasher":       "auth.hasher",
	"limit":        "leaderboard.limit",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"metrics":      "metrics.enabled",
}

// Options selects the sources Load reads
type Options struct {
	// File is an optional YAML file. Empty skips it.
	File string
	// Flags are applied last. Only flags named in FlagKeys that were
	// explicitly set override earlier sources.
	Flags *pflag.FlagSet
	// Environ replaces the process environment when non-nil, as KEY=VALUE pairs
	Environ []string
}

// Load builds the configuration from opts and validates it
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	if opts.File != "" {
		if err := k.Load(file.Provider(opts.File), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", opts.File, err)
		}
	}

	if err := loadEnv(k, opts.Environ); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if opts.Flags != nil {
		provider := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := FlagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnv(k *koanf.Koanf, environ []string) error {
	if environ == nil {
		return k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	}

	// Explicit environments are applied the same way, without touching the
	// process environment
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		if err := k.Set(envKey(name), value); err != nil {
			return err
		}
	}
	return nil
}

func envKey(name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.ReplaceAll(name, "__", ".")
}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Type {
	case StorageMemory:
	case StorageRedis:
		if c.Storage.Redis.URL == "" {
			errs = append(errs, errors.New("storage.redis.url is required for redis storage"))
		}
	case StoragePostgres:
		if c.Storage.Postgres.DSN == "" {
			errs = append(errs, errors.New("storage.postgres.dsn is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type must be memory, redis or postgres, got %q", c.Storage.Type))
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("auth.session_ttl must be positive"))
	}
	if c.Auth.Hasher != "bcrypt" && c.Auth.Hasher != "argon2id" {
		errs = append(errs, fmt.Errorf("auth.hasher must be bcrypt or argon2id, got %q", c.Auth.Hasher))
	}
	if c.Leaderboard.Limit <= 0 {
		errs = append(errs, errors.New("leaderboard.limit must be positive"))
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// NewLogger builds the process logger writing to w
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
