package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies EMPIREBOT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known EMPIREBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e.
// not empty). This lets operators inject credentials at deploy time without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Api ──
	setStr(&cfg.Api.BaseURL, "EMPIREBOT_API_BASE_URL")
	setStr(&cfg.Api.HintsURL, "EMPIREBOT_API_HINTS_URL")
	setDuration(&cfg.Api.Timeout, "EMPIREBOT_API_TIMEOUT")

	// ── Proxies ──
	setStringSlice(&cfg.Proxies, "EMPIREBOT_PROXIES")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "EMPIREBOT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "EMPIREBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "EMPIREBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "EMPIREBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "EMPIREBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "EMPIREBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "EMPIREBOT_REDIS_TLS_ENABLED")

	// ── Taps ──
	setBool(&cfg.Taps.Enabled, "EMPIREBOT_TAPS_ENABLED")
	setInt(&cfg.Taps.PerSecondMin, "EMPIREBOT_TAPS_PER_SECOND_MIN")
	setInt(&cfg.Taps.PerSecondMax, "EMPIREBOT_TAPS_PER_SECOND_MAX")

	// ── Pvp ──
	setBool(&cfg.Pvp.Enabled, "EMPIREBOT_PVP_ENABLED")
	setStr(&cfg.Pvp.League, "EMPIREBOT_PVP_LEAGUE")
	setStr(&cfg.Pvp.Strategy, "EMPIREBOT_PVP_STRATEGY")
	setInt(&cfg.Pvp.Count, "EMPIREBOT_PVP_COUNT")

	// ── Invest ──
	setBool(&cfg.Invest.Enabled, "EMPIREBOT_INVEST_ENABLED")

	// ── Upgrades ──
	setInt64(&cfg.Upgrades.MoneyToSave, "EMPIREBOT_UPGRADES_MONEY_TO_SAVE")
	setFloat64(&cfg.Upgrades.MinWeight, "EMPIREBOT_UPGRADES_MIN_WEIGHT")
	setStringSlice(&cfg.Upgrades.SkipTitles, "EMPIREBOT_UPGRADES_SKIP_TITLES")
	setBool(&cfg.Upgrades.Mining.Enabled, "EMPIREBOT_UPGRADES_MINING_ENABLED")
	setInt(&cfg.Upgrades.Mining.MaxLevel, "EMPIREBOT_UPGRADES_MINING_MAX_LEVEL")
	setInt(&cfg.Upgrades.Mining.MaxEnergyLevel, "EMPIREBOT_UPGRADES_MINING_MAX_ENERGY_LEVEL")
	setInt64(&cfg.Upgrades.Mining.MaxCost, "EMPIREBOT_UPGRADES_MINING_MAX_COST")
	setStringSlice(&cfg.Upgrades.Mining.EnergySkills, "EMPIREBOT_UPGRADES_MINING_ENERGY_SKILLS")

	// ── Session ──
	setDuration(&cfg.Session.SleepMin, "EMPIREBOT_SESSION_SLEEP_MIN")
	setDuration(&cfg.Session.SleepMax, "EMPIREBOT_SESSION_SLEEP_MAX")
	setDuration(&cfg.Session.StaggerMin, "EMPIREBOT_SESSION_STAGGER_MIN")
	setDuration(&cfg.Session.StaggerMax, "EMPIREBOT_SESSION_STAGGER_MAX")
	setDuration(&cfg.Session.PaceMin, "EMPIREBOT_SESSION_PACE_MIN")
	setDuration(&cfg.Session.PaceMax, "EMPIREBOT_SESSION_PACE_MAX")
	setInt(&cfg.Session.ErrorThreshold, "EMPIREBOT_SESSION_ERROR_THRESHOLD")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "EMPIREBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
