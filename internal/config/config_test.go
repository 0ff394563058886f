package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/glucobar/internal/glucose"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvNightscoutURL, EnvUnit, EnvLogFile, EnvLogLevel, EnvMQTTBroker} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigUsesEnvAndDefaults(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvNightscoutURL, "https://ns.example.com")

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.NightscoutURL != "https://ns.example.com" {
		t.Fatalf("NightscoutURL = %q", cfg.NightscoutURL)
	}
	if cfg.Unit != glucose.UnitMmol {
		t.Fatalf("Unit = %v, want mmol", cfg.Unit)
	}
	if cfg.Thresholds != glucose.DefaultThresholds() {
		t.Fatalf("Thresholds = %+v, want defaults", cfg.Thresholds)
	}
	if cfg.StaleAfter != 15*time.Minute || cfg.RefreshPeriod != 60*time.Second || cfg.PollInterval != 5*time.Second {
		t.Fatalf("durations = %v/%v/%v, want 15m/60s/5s", cfg.StaleAfter, cfg.RefreshPeriod, cfg.PollInterval)
	}
	if !cfg.HideStale {
		t.Fatalf("HideStale = false, want true by default")
	}
	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.MQTT.Enabled() || cfg.MQTT.TopicPrefix != "glucobar" || cfg.MQTT.ClientID != "glucobar" {
		t.Fatalf("MQTT = %+v, want disabled with defaults", cfg.MQTT)
	}
}

func TestLoad_MissingURLFails(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	if err == nil || !strings.Contains(err.Error(), "nightscout_url") {
		t.Fatalf("Load error = %v, want nightscout_url required", err)
	}
}

func TestLoad_ParsesFile(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
nightscout_url = "  https://ns.example.com  "
unit = "mgdl"
low = 70
high = 180
stale_after = "10m"
refresh_period = "30s"
poll_interval = "2s"
hide_stale = false
log_file = "~/logs/gb.log"
log_level = "debug"

[mqtt]
broker = "localhost:1883"
topic_prefix = "/home/cgm/"
client_id = "bar"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.NightscoutURL != "https://ns.example.com" {
		t.Fatalf("NightscoutURL = %q", cfg.NightscoutURL)
	}
	if cfg.Unit != glucose.UnitMgdl {
		t.Fatalf("Unit = %v, want mg/dL", cfg.Unit)
	}
	if cfg.Thresholds != (glucose.Thresholds{Low: 70, High: 180}) {
		t.Fatalf("Thresholds = %+v", cfg.Thresholds)
	}
	if cfg.StaleAfter != 10*time.Minute || cfg.RefreshPeriod != 30*time.Second || cfg.PollInterval != 2*time.Second {
		t.Fatalf("durations = %v/%v/%v", cfg.StaleAfter, cfg.RefreshPeriod, cfg.PollInterval)
	}
	if cfg.HideStale {
		t.Fatalf("HideStale = true, want false")
	}
	if cfg.LogFile != filepath.Join(home, "logs/gb.log") {
		t.Fatalf("LogFile = %q, want under HOME", cfg.LogFile)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if !cfg.MQTT.Enabled() || cfg.MQTT.Broker != "localhost:1883" || cfg.MQTT.TopicPrefix != "home/cgm" || cfg.MQTT.ClientID != "bar" {
		t.Fatalf("MQTT = %+v", cfg.MQTT)
	}
	policy := cfg.Policy()
	if policy.StaleAfter != cfg.StaleAfter || policy.Thresholds != cfg.Thresholds {
		t.Fatalf("Policy = %+v, want thresholds and window from config", policy)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, `
nightscout_url = "https://file.example.com"
unit = "mmol"
log_level = "info"
`)
	t.Setenv(EnvNightscoutURL, "https://env.example.com")
	t.Setenv(EnvUnit, "mg/dl")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvMQTTBroker, "broker:1883")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.NightscoutURL != "https://env.example.com" || cfg.Unit != glucose.UnitMgdl || cfg.LogLevel != slog.LevelWarn || cfg.MQTT.Broker != "broker:1883" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad toml", `nightscout_url = [`, "parse config"},
		{"bad unit", "nightscout_url = \"x\"\nunit = \"grains\"", "invalid unit"},
		{"bad duration", "nightscout_url = \"x\"\nstale_after = \"soon\"", "invalid stale_after"},
		{"negative duration", "nightscout_url = \"x\"\nrefresh_period = \"-5s\"", "invalid refresh_period"},
		{"bad level", "nightscout_url = \"x\"\nlog_level = \"loud\"", "invalid log_level"},
		{"inverted thresholds", "nightscout_url = \"x\"\nlow = 200\nhigh = 100", "high threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("HOME", t.TempDir())
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "glucobar.env")
	if err := os.WriteFile(path, []byte("GLUCOBAR_NIGHTSCOUT_URL=https://dotenv.example.com\nGLUCOBAR_UNIT=mgdl\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	// Already-set variables win over the file.
	t.Setenv(EnvUnit, "mmol")
	// godotenv only fills unset variables; clearEnv leaves the key set but empty.
	if err := os.Unsetenv(EnvNightscoutURL); err != nil {
		t.Fatalf("Unsetenv: %v", err)
	}

	loaded, err := LoadEnvFile(path)
	if err != nil || !loaded {
		t.Fatalf("LoadEnvFile = %v, %v, want true, nil", loaded, err)
	}
	if got := os.Getenv(EnvNightscoutURL); got != "https://dotenv.example.com" {
		t.Fatalf("%s = %q, want value from file", EnvNightscoutURL, got)
	}
	if got := os.Getenv(EnvUnit); got != "mmol" {
		t.Fatalf("%s = %q, want existing value kept", EnvUnit, got)
	}

	loaded, err = LoadEnvFile(filepath.Join(dir, "missing.env"))
	if err != nil || loaded {
		t.Fatalf("LoadEnvFile(missing) = %v, %v, want false, nil", loaded, err)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if want := filepath.Join(home, "a/b"); got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
