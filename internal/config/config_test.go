package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) Config {
	t.Helper()
	var cfg Config
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Register(fs, &cfg)
	require.NoError(t, fs.Parse(args))
	require.NoError(t, ApplyEnv(fs))
	return cfg
}

func TestDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AI_SERVER_URL", "")
	t.Setenv("AI_SCORING_URL", "")

	cfg := load(t)

	assert.Equal(t, "0.0.0.0", cfg.Bind)
	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "ws://localhost:8000/ws/generate", cfg.ImageServiceURL)
	assert.Equal(t, "http://localhost:8000/score/similarity", cfg.ScoringServiceURL)
	assert.Equal(t, 10*time.Second, cfg.ScoringTimeout)
	assert.Equal(t, 30*time.Second, cfg.RoundDuration)
	assert.Equal(t, 10*time.Second, cfg.PostRoundDelay)
	assert.Equal(t, 10, cfg.TotalRounds)
	assert.Equal(t, 12, cfg.MaxPlayers)
	assert.Equal(t, 1000, cfg.PointsPerGuess)
	assert.Len(t, cfg.AllowedOrigins, 3)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Default(), cfg)
}

func TestFlags(t *testing.T) {
	cfg := load(t, "--port", "3000", "--total-rounds=3", "--round-duration", "45s", "--allowed-origins", "https://a.example,https://b.example")

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 3, cfg.TotalRounds)
	assert.Equal(t, 45*time.Second, cfg.RoundDuration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestPrefixedEnv(t *testing.T) {
	t.Setenv("PICTIONARY_MAX_PLAYERS", "4")
	t.Setenv("PICTIONARY_POST_ROUND_DELAY", "2s")
	t.Setenv("PICTIONARY_VERBOSE", "true")

	cfg := load(t)

	assert.Equal(t, 4, cfg.MaxPlayers)
	assert.Equal(t, 2*time.Second, cfg.PostRoundDelay)
	assert.True(t, cfg.Verbose)
}

func TestLegacyEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/pictionary")
	t.Setenv("AI_SERVER_URL", "ws://gpu:8000/ws/generate")
	t.Setenv("AI_SCORING_URL", "http://gpu:8000/score/similarity")

	cfg := load(t)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://localhost/pictionary", cfg.DatabaseURL)
	assert.Equal(t, "ws://gpu:8000/ws/generate", cfg.ImageServiceURL)
	assert.Equal(t, "http://gpu:8000/score/similarity", cfg.ScoringServiceURL)
}

func TestFlagBeatsEnv(t *testing.T) {
	t.Setenv("PICTIONARY_PORT", "9090")
	cfg := load(t, "--port", "7000")
	assert.Equal(t, 7000, cfg.Port)
}

func TestInvalidEnv(t *testing.T) {
	t.Setenv("PICTIONARY_TOTAL_ROUNDS", "abc")

	var cfg Config
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Register(fs, &cfg)
	require.NoError(t, fs.Parse(nil))
	assert.Error(t, ApplyEnv(fs))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Port = 0 }},
		{"port too high", func(c *Config) { c.Port = 70000 }},
		{"no image url", func(c *Config) { c.ImageServiceURL = "" }},
		{"no scoring url", func(c *Config) { c.ScoringServiceURL = "" }},
		{"zero timeout", func(c *Config) { c.ScoringTimeout = 0 }},
		{"zero round", func(c *Config) { c.RoundDuration = 0 }},
		{"negative delay", func(c *Config) { c.PostRoundDelay = -time.Second }},
		{"zero rounds", func(c *Config) { c.TotalRounds = 0 }},
		{"zero players", func(c *Config) { c.MaxPlayers = 0 }},
		{"zero points", func(c *Config) { c.PointsPerGuess = 0 }},
		{"zero rate", func(c *Config) { c.GuessRate = 0 }},
		{"zero ttl", func(c *Config) { c.ReservationTTL = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAddr(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestPromptsAndGame(t *testing.T) {
	cfg := Default()
	pool, err := cfg.Prompts()
	require.NoError(t, err)
	assert.Greater(t, pool.Len(), 1)

	path := filepath.Join(t.TempDir(), "prompts.txt")
	require.NoError(t, os.WriteFile(path, []byte("# custom\na red kite\n\nan old lighthouse\n"), 0o644))
	cfg.PromptsFile = path
	pool, err = cfg.Prompts()
	require.NoError(t, err)
	assert.Equal(t, []string{"a red kite", "an old lighthouse"}, pool.List())

	game := cfg.Game(pool)
	require.NoError(t, game.Validate())
	assert.Equal(t, cfg.RoundDuration, game.RoundDuration)
	assert.Equal(t, cfg.MaxPlayers, game.MaxPlayers)
	assert.Same(t, pool, game.Prompts)
}
