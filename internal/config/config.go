// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load(ctx) layers file/env.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the ops HTTP listen address (health and metrics).
	Addr string `koanf:"addr"`

	// DBPath is the sqlite database file; empty selects the in-memory
	// store.
	DBPath string `koanf:"db_path"`

	// EMAAlpha is the smoothing factor of the per-team exponential moving
	// average; newer matches weigh more as it approaches 1.
	EMAAlpha float64 `koanf:"ema_alpha"`

	// BlockSize is how many contiguous matches one scout pool covers.
	BlockSize int `koanf:"block_size"`

	// ScoutPoolSize is the number of scouts rotated in per block.
	ScoutPoolSize int `koanf:"scout_pool_size"`

	// BreakThresholdSeconds is the schedule gap treated as a major break
	// by the block allocator.
	BreakThresholdSeconds int64 `koanf:"break_threshold_seconds"`

	// TBABaseURL and TBAAuthKey configure TheBlueAlliance client.
	TBABaseURL string `koanf:"tba_base_url"`
	TBAAuthKey string `koanf:"tba_auth_key"`

	// DemoSeed populates the store with a synthetic event on startup.
	DemoSeed bool `koanf:"demo_seed"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		DBPath:                "",
		EMAAlpha:              0.3,
		BlockSize:             5,
		ScoutPoolSize:         6,
		BreakThresholdSeconds: 1800,
		TBABaseURL:            "https://www.thebluealliance.com/api/v3",
		TBAAuthKey:            "",
		DemoSeed:              false,
	}
}
