package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/glucobar/internal/glucose"
)

// Config holds the resolved glucobar settings.
type Config struct {
	NightscoutURL string
	Unit          glucose.Unit
	Thresholds    glucose.Thresholds
	StaleAfter    time.Duration
	RefreshPeriod time.Duration
	PollInterval  time.Duration
	HideStale     bool
	LogFile       string
	LogLevel      slog.Level
	MQTT          MQTT
}

// MQTT configures the optional status publisher. An empty Broker disables it.
type MQTT struct {
	Broker      string
	TopicPrefix string
	ClientID    string
}

// Enabled reports whether a broker is configured.
func (m MQTT) Enabled() bool {
	return strings.TrimSpace(m.Broker) != ""
}

// Policy returns the reading classification settings.
func (c Config) Policy() glucose.Policy {
	return glucose.Policy{Thresholds: c.Thresholds, StaleAfter: c.StaleAfter}
}

const (
	defaultConfigPath    = "~/.config/glucobar/config.toml"
	defaultLogFile       = "~/.local/share/glucobar/glucobar.log"
	defaultRefreshPeriod = 60 * time.Second
	defaultPollInterval  = 5 * time.Second
	defaultTopicPrefix   = "glucobar"
	defaultClientID      = "glucobar"
)

// Environment variables that override the file.
const (
	EnvNightscoutURL = "GLUCOBAR_NIGHTSCOUT_URL"
	EnvUnit          = "GLUCOBAR_UNIT"
	EnvLogFile       = "GLUCOBAR_LOG_FILE"
	EnvLogLevel      = "GLUCOBAR_LOG_LEVEL"
	EnvMQTTBroker    = "GLUCOBAR_MQTT_BROKER"
)

type fileConfig struct {
	NightscoutURL string `toml:"nightscout_url"`
	Unit          string `toml:"unit"`
	Low           int    `toml:"low"`
	High          int    `toml:"high"`
	StaleAfter    string `toml:"stale_after"`
	RefreshPeriod string `toml:"refresh_period"`
	PollInterval  string `toml:"poll_interval"`
	HideStale     *bool  `toml:"hide_stale"`
	LogFile       string `toml:"log_file"`
	LogLevel      string `toml:"log_level"`
	MQTT          struct {
		Broker      string `toml:"broker"`
		TopicPrefix string `toml:"topic_prefix"`
		ClientID    string `toml:"client_id"`
	} `toml:"mqtt"`
}

// LoadEnvFile loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. An empty path tries
// ./.env. It reports whether a file was loaded.
func LoadEnvFile(path string) (bool, error) {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	resolved, err := expandPath(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(resolved); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err := godotenv.Load(resolved); err != nil {
		return false, fmt.Errorf("load env file: %w", err)
	}
	return true, nil
}

// Load reads the TOML config at path (default ~/.config/glucobar/config.toml),
// applies environment overrides and validates the result. A missing file is
// not an error, but the Nightscout URL must come from somewhere.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw fileConfig
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	applyEnv(&raw)
	return build(raw)
}

func applyEnv(raw *fileConfig) {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	override(&raw.NightscoutURL, EnvNightscoutURL)
	override(&raw.Unit, EnvUnit)
	override(&raw.LogFile, EnvLogFile)
	override(&raw.LogLevel, EnvLogLevel)
	override(&raw.MQTT.Broker, EnvMQTTBroker)
}

func build(raw fileConfig) (Config, error) {
	cfg := Config{
		NightscoutURL: strings.TrimSpace(raw.NightscoutURL),
		Thresholds:    glucose.DefaultThresholds(),
		HideStale:     true,
		MQTT: MQTT{
			Broker:      strings.TrimSpace(raw.MQTT.Broker),
			TopicPrefix: strings.Trim(strings.TrimSpace(raw.MQTT.TopicPrefix), "/"),
			ClientID:    strings.TrimSpace(raw.MQTT.ClientID),
		},
	}
	if cfg.NightscoutURL == "" {
		return Config{}, fmt.Errorf("nightscout_url is required (set it in the config file or %s)", EnvNightscoutURL)
	}

	if strings.TrimSpace(raw.Unit) != "" {
		unit, err := glucose.ParseUnit(raw.Unit)
		if err != nil {
			return Config{}, err
		}
		cfg.Unit = unit
	}

	if raw.Low != 0 {
		cfg.Thresholds.Low = raw.Low
	}
	if raw.High != 0 {
		cfg.Thresholds.High = raw.High
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return Config{}, err
	}

	var err error
	if cfg.StaleAfter, err = parseDuration("stale_after", raw.StaleAfter, glucose.DefaultStaleAfter); err != nil {
		return Config{}, err
	}
	if cfg.RefreshPeriod, err = parseDuration("refresh_period", raw.RefreshPeriod, defaultRefreshPeriod); err != nil {
		return Config{}, err
	}
	if cfg.PollInterval, err = parseDuration("poll_interval", raw.PollInterval, defaultPollInterval); err != nil {
		return Config{}, err
	}

	if raw.HideStale != nil {
		cfg.HideStale = *raw.HideStale
	}

	logFile := strings.TrimSpace(raw.LogFile)
	if logFile == "" {
		logFile = defaultLogFile
	}
	cfg.LogFile = mustExpand(logFile)

	if cfg.LogLevel, err = ParseLogLevel(raw.LogLevel); err != nil {
		return Config{}, err
	}

	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = defaultTopicPrefix
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = defaultClientID
	}
	return cfg, nil
}

func parseDuration(name, value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", name, value)
	}
	return d, nil
}

// ParseLogLevel maps a level name to slog; empty means info.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q (allowed: debug, info, warn, error)", s)
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
