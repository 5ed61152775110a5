package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("port", 8080, "")
	fs.String("storage", StorageMemory, "")
	fs.String("log-level", "info", "")
	fs.Bool("seed", false, "")
	fs.String("config", "", "")
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{Environ: []string{}})
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
server:
  port: 9090
storage:
  type: redis
  redis:
    url: redis://cache:6379/1
auth:
  session_ttl: 2h
  hasher: argon2id
leaderboard:
  limit: 10
`)

	cfg, err := Load(Options{File: path, Environ: []string{}})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, StorageRedis, cfg.Storage.Type)
	assert.Equal(t, "redis://cache:6379/1", cfg.Storage.Redis.URL)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "argon2id", cfg.Auth.Hasher)
	assert.Equal(t, 10, cfg.Leaderboard.Limit)

	// Keys absent from the file keep their defaults
	assert.Equal(t, 10, cfg.Storage.Redis.PoolSize)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(Options{File: filepath.Join(t.TempDir(), "missing.yaml"), Environ: []string{}})
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "server:\n  port: 9090\nlog:\n  level: debug\n")

	cfg, err := Load(Options{
		File: path,
		Environ: []string{
			"SNAKE_SERVER__PORT=7070",
			"SNAKE_AUTH__SESSION_TTL=30m",
			"OTHER_SERVER__PORT=1",
			"PATH=/usr/bin",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Auth.SessionTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestChangedFlagsOverrideEverything(t *testing.T) {
	path := writeFile(t, "server:\n  port: 9090\nlog:\n  level: debug\n")

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--port", "6060", "--seed"}))

	cfg, err := Load(Options{
		File:    path,
		Flags:   fs,
		Environ: []string{"SNAKE_SERVER__PORT=7070"},
	})
	require.NoError(t, err)

	assert.Equal(t, 6060, cfg.Server.Port)
	assert.True(t, cfg.Storage.Seed)
	// Unset flags do not clobber the file with their defaults
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown storage", func(c *Config) { c.Storage.Type = "sqlite" }},
		{"postgres without dsn", func(c *Config) { c.Storage.Type = StoragePostgres }},
		{"redis without url", func(c *Config) { c.Storage.Type = StorageRedis; c.Storage.Redis.URL = "" }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"zero session ttl", func(c *Config) { c.Auth.SessionTTL = 0 }},
		{"unknown hasher", func(c *Config) { c.Auth.Hasher = "md5" }},
		{"zero limit", func(c *Config) { c.Leaderboard.Limit = 0 }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(Options{Environ: []string{"SNAKE_STORAGE__TYPE=sqlite"}})
	assert.ErrorContains(t, err, "storage.type")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("dropped")
	logger.Warn("kept", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "v", line["k"])

	buf.Reset()
	LogConfig{Level: "debug", Format: "text"}.NewLogger(&buf).Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
