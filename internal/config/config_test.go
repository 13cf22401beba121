package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
[[accounts]]
name = "alice"
init_data = "user=1&hash=abc"
`

func TestLoadMergesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Api.BaseURL == "" {
		t.Error("api base_url default missing")
	}
	if cfg.Taps.PerSecondMin != 20 || cfg.Taps.PerSecondMax != 30 {
		t.Errorf("taps defaults = %d-%d, want 20-30", cfg.Taps.PerSecondMin, cfg.Taps.PerSecondMax)
	}
	if cfg.Pvp.League != "bronze" || cfg.Pvp.Count != 5 {
		t.Errorf("pvp defaults = %+v", cfg.Pvp)
	}
	if cfg.Session.ErrorThreshold != 5 {
		t.Errorf("error threshold default = %d, want 5", cfg.Session.ErrorThreshold)
	}
	if cfg.Session.SleepMin.Duration != 3000*time.Second {
		t.Errorf("sleep_min default = %v", cfg.Session.SleepMin.Duration)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults with one account should validate: %v", err)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
[pvp]
enabled = true
league = "silver"
strategy = "aggressive"
count = 2

[session]
sleep_min = "10m"
sleep_max = "12m"
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pvp.League != "silver" || cfg.Pvp.Count != 2 {
		t.Errorf("pvp = %+v", cfg.Pvp)
	}
	if cfg.Session.SleepMin.Duration != 10*time.Minute {
		t.Errorf("sleep_min = %v, want 10m", cfg.Session.SleepMin.Duration)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EMPIREBOT_PVP_LEAGUE", "gold")
	t.Setenv("EMPIREBOT_TAPS_ENABLED", "false")
	t.Setenv("EMPIREBOT_SESSION_ERROR_THRESHOLD", "9")
	t.Setenv("EMPIREBOT_PROXIES", "http://p1:8080, http://p2:8080")

	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pvp.League != "gold" {
		t.Errorf("league = %q, want env override", cfg.Pvp.League)
	}
	if cfg.Taps.Enabled {
		t.Error("taps still enabled, env override ignored")
	}
	if cfg.Session.ErrorThreshold != 9 {
		t.Errorf("error threshold = %d, want 9", cfg.Session.ErrorThreshold)
	}
	if len(cfg.Proxies) != 2 || cfg.Proxies[1] != "http://p2:8080" {
		t.Errorf("proxies = %v", cfg.Proxies)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := Defaults()
	// no accounts
	cfg.Pvp.Count = 0
	cfg.Session.SleepMax = duration{time.Second}
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	for _, want := range []string{"accounts", "pvp: count", "sleep_max", "log_level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validation error missing %q: %v", want, err)
		}
	}
}

func TestValidateAcceptsDisabledSections(t *testing.T) {
	cfg := Defaults()
	cfg.Accounts = []AccountConfig{{Name: "a", InitData: "hash=x"}}
	cfg.Pvp.Enabled = false
	cfg.Pvp.Count = 0
	cfg.Taps.Enabled = false
	cfg.Taps.PerSecondMin = 0

	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled sections must not be validated: %v", err)
	}
}
