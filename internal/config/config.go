// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries the tunables for the matchmaking core. Values are read
// from the environment once at startup; tests construct it directly.
type Config struct {
	// Side membership caps.
	SideCapacity      int // players per team command (command1/command2)
	NeutralCapacity   int
	SpectatorCapacity int
	TeamCapacity      int // max members of a pre-formed team

	// Lobby state machine timings.
	ReadyGrace    time.Duration // time to ready-up after the lobby fills
	VoteTurn      time.Duration // per-captain voting turn before auto-vote
	PreparingGate time.Duration // minimum time in preparing before start

	// Player lifecycle.
	IdleTimeout time.Duration // idle players are evicted after this

	// Search loop.
	SearchTimeout time.Duration // overall finder deadline
	SearchPoll    time.Duration // interval between lobby scans

	// Registry sweeps.
	SweepInterval time.Duration
	TickInterval  time.Duration // scheduler tick driving UpdateState

	// Map pool offered for voting.
	Maps []string
}

// Default returns the production defaults.
func Default() *Config {
	return &Config{
		SideCapacity:      5,
		NeutralCapacity:   50,
		SpectatorCapacity: 50,
		TeamCapacity:      5,

		ReadyGrace:    20 * time.Second,
		VoteTurn:      15 * time.Second,
		PreparingGate: 3 * time.Minute,

		IdleTimeout: 2 * time.Minute,

		SearchTimeout: 2 * time.Minute,
		SearchPoll:    time.Second,

		SweepInterval: 5 * time.Minute,
		TickInterval:  time.Second,

		Maps: []string{"Province", "Sandstone", "Rust", "Zone7", "Breeze"},
	}
}

// FromEnv returns the defaults overlaid with any environment overrides.
func FromEnv() *Config {
	cfg := Default()
	cfg.SideCapacity = getEnvInt("SIDE_CAPACITY", cfg.SideCapacity)
	cfg.TeamCapacity = getEnvInt("TEAM_CAPACITY", cfg.TeamCapacity)
	cfg.ReadyGrace = getEnvDuration("READY_GRACE", cfg.ReadyGrace)
	cfg.VoteTurn = getEnvDuration("VOTE_TURN", cfg.VoteTurn)
	cfg.PreparingGate = getEnvDuration("PREPARING_GATE", cfg.PreparingGate)
	cfg.IdleTimeout = getEnvDuration("IDLE_TIMEOUT", cfg.IdleTimeout)
	cfg.SearchTimeout = getEnvDuration("SEARCH_TIMEOUT", cfg.SearchTimeout)
	cfg.SweepInterval = getEnvDuration("SWEEP_INTERVAL", cfg.SweepInterval)
	return cfg
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// getEnvDuration parses an environment variable as a time.Duration, else a default.
func getEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
