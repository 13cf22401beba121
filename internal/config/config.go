// Package config defines the top-level configuration for the empire bot and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by EMPIREBOT_* environment
// variables.
type Config struct {
	Api      ApiConfig       `toml:"api"`
	Accounts []AccountConfig `toml:"accounts"`
	Proxies  []string        `toml:"proxies"`
	Redis    RedisConfig     `toml:"redis"`
	Taps     TapsConfig      `toml:"taps"`
	Pvp      PvpConfig       `toml:"pvp"`
	Invest   InvestConfig    `toml:"invest"`
	Upgrades UpgradesConfig  `toml:"upgrades"`
	Session  SessionConfig   `toml:"session"`
	LogLevel string          `toml:"log_level"`
}

// ApiConfig holds the game API endpoint and the community helper feed.
type ApiConfig struct {
	BaseURL  string   `toml:"base_url"`
	HintsURL string   `toml:"hints_url"`
	Timeout  duration `toml:"timeout"`
}

// AccountConfig is one fleet account. InitData is the opaque chat-platform
// credential for that account.
type AccountConfig struct {
	Name     string `toml:"name"`
	InitData string `toml:"init_data"`
}

// RedisConfig holds Redis connection parameters for the shared hints cache.
// The cache is optional; sessions run without it.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// TapsConfig tunes the tap-earning loop.
type TapsConfig struct {
	Enabled      bool `toml:"enabled"`
	PerSecondMin int  `toml:"per_second_min"`
	PerSecondMax int  `toml:"per_second_max"`
}

// PvpConfig tunes the negotiation loop.
type PvpConfig struct {
	Enabled  bool   `toml:"enabled"`
	League   string `toml:"league"`
	Strategy string `toml:"strategy"`
	Count    int    `toml:"count"`
}

// InvestConfig tunes the fund investment step.
type InvestConfig struct {
	Enabled bool `toml:"enabled"`
}

// UpgradesConfig tunes the skill purchase pass.
type UpgradesConfig struct {
	MoneyToSave int64        `toml:"money_to_save"`
	MinWeight   float64      `toml:"min_weight"`
	SkipTitles  []string     `toml:"skip_titles"`
	Mining      MiningConfig `toml:"mining"`
}

// MiningConfig is the conservative mining-only purchase mode.
type MiningConfig struct {
	Enabled        bool     `toml:"enabled"`
	MaxLevel       int      `toml:"max_level"`
	MaxEnergyLevel int      `toml:"max_energy_level"`
	MaxCost        int64    `toml:"max_cost"`
	EnergySkills   []string `toml:"energy_skills"`
}

// SessionConfig tunes cycle cadence and failure handling.
type SessionConfig struct {
	SleepMin       duration `toml:"sleep_min"`
	SleepMax       duration `toml:"sleep_max"`
	StaggerMin     duration `toml:"stagger_min"`
	StaggerMax     duration `toml:"stagger_max"`
	PaceMin        duration `toml:"pace_min"`
	PaceMax        duration `toml:"pace_max"`
	ErrorThreshold int      `toml:"error_threshold"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Api: ApiConfig{
			BaseURL:  "https://api.muskempire.io",
			HintsURL: "https://raw.githubusercontent.com/testingstrategy/musk_daily/main/daily.json",
			Timeout:  duration{30 * time.Second},
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   10,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Taps: TapsConfig{
			Enabled:      true,
			PerSecondMin: 20,
			PerSecondMax: 30,
		},
		Pvp: PvpConfig{
			Enabled:  true,
			League:   "bronze",
			Strategy: "random",
			Count:    5,
		},
		Invest: InvestConfig{
			Enabled: true,
		},
		Upgrades: UpgradesConfig{
			MoneyToSave: 1_000_000,
			MinWeight:   0,
			SkipTitles:  []string{},
			Mining: MiningConfig{
				Enabled:        false,
				MaxLevel:       30,
				MaxEnergyLevel: 60,
				MaxCost:        5_000_000,
				EnergySkills:   []string{"energy_capacity", "energy_recovery"},
			},
		},
		Session: SessionConfig{
			SleepMin:       duration{3000 * time.Second},
			SleepMax:       duration{3500 * time.Second},
			StaggerMin:     duration{10 * time.Second},
			StaggerMax:     duration{20 * time.Second},
			PaceMin:        duration{3 * time.Second},
			PaceMax:        duration{8 * time.Second},
			ErrorThreshold: 5,
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Api.BaseURL == "" {
		errs = append(errs, "api: base_url must not be empty")
	}
	if c.Api.Timeout.Duration <= 0 {
		errs = append(errs, "api: timeout must be positive")
	}

	if len(c.Accounts) == 0 {
		errs = append(errs, "accounts: at least one account must be configured")
	}
	for i, acc := range c.Accounts {
		if acc.Name == "" {
			errs = append(errs, fmt.Sprintf("accounts[%d]: name must not be empty", i))
		}
		if acc.InitData == "" {
			errs = append(errs, fmt.Sprintf("accounts[%d]: init_data must not be empty", i))
		}
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	if c.Taps.Enabled {
		if c.Taps.PerSecondMin < 1 {
			errs = append(errs, "taps: per_second_min must be >= 1")
		}
		if c.Taps.PerSecondMax < c.Taps.PerSecondMin {
			errs = append(errs, "taps: per_second_max must be >= per_second_min")
		}
	}

	if c.Pvp.Enabled {
		if c.Pvp.League == "" {
			errs = append(errs, "pvp: league must not be empty when enabled")
		}
		if c.Pvp.Strategy == "" {
			errs = append(errs, "pvp: strategy must not be empty when enabled")
		}
		if c.Pvp.Count < 1 {
			errs = append(errs, "pvp: count must be >= 1 when enabled")
		}
	}

	if c.Upgrades.MoneyToSave < 0 {
		errs = append(errs, "upgrades: money_to_save must not be negative")
	}
	if c.Upgrades.MinWeight < 0 {
		errs = append(errs, "upgrades: min_weight must not be negative")
	}

	if c.Session.SleepMin.Duration <= 0 {
		errs = append(errs, "session: sleep_min must be positive")
	}
	if c.Session.SleepMax.Duration < c.Session.SleepMin.Duration {
		errs = append(errs, "session: sleep_max must be >= sleep_min")
	}
	if c.Session.StaggerMax.Duration < c.Session.StaggerMin.Duration {
		errs = append(errs, "session: stagger_max must be >= stagger_min")
	}
	if c.Session.PaceMax.Duration < c.Session.PaceMin.Duration {
		errs = append(errs, "session: pace_max must be >= pace_min")
	}
	if c.Session.ErrorThreshold < 1 {
		errs = append(errs, "session: error_threshold must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
