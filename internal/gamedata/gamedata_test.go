package gamedata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.RoundDuration)
	assert.Equal(t, 10*time.Second, cfg.PostRoundDelay)
	assert.Equal(t, 10, cfg.TotalRounds)
	assert.Equal(t, 12, cfg.MaxPlayers)
	assert.Equal(t, 1000, cfg.PointsPerGuess)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no prompts", func(c *Config) { c.Prompts = nil }},
		{"zero round", func(c *Config) { c.RoundDuration = 0 }},
		{"negative delay", func(c *Config) { c.PostRoundDelay = -time.Second }},
		{"no rounds", func(c *Config) { c.TotalRounds = 0 }},
		{"no seats", func(c *Config) { c.MaxPlayers = 0 }},
		{"no points", func(c *Config) { c.PointsPerGuess = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
