package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Mavwarf/reveil/internal/alarm"
	"github.com/Mavwarf/reveil/internal/paths"
	"github.com/Mavwarf/reveil/internal/radio"
)

// DefaultSnoozeMinutes is the snooze duration when none is configured.
const DefaultSnoozeMinutes = 5

// DefaultStreamTimeoutSeconds bounds one station connection attempt.
const DefaultStreamTimeoutSeconds = 10

// DefaultListenAddr is the dashboard bind address.
const DefaultListenAddr = "127.0.0.1:8045"

// DefaultHistoryDays is the ring-history retention window.
const DefaultHistoryDays = 30

// MQTTOptions configures the MQTT notification channel.
type MQTTOptions struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id,omitempty"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos,omitempty"`
	Retain   bool   `json:"retain,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// WebhookOptions configures the webhook notification channel.
type WebhookOptions struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Options holds global settings parsed from the "config" key.
type Options struct {
	DefaultVolume        int    `json:"default_volume,omitempty"`
	SnoozeMinutes        int    `json:"snooze_minutes,omitempty"`
	ShuffleFailover      bool   `json:"shuffle_failover,omitempty"`
	StreamTimeoutSeconds int    `json:"stream_timeout_seconds,omitempty"`
	ListenAddr           string `json:"listen_addr,omitempty"`
	HistoryDays          int    `json:"history_days,omitempty"`
	DesktopToast         bool   `json:"desktop_toast"`

	MQTT    *MQTTOptions    `json:"mqtt,omitempty"`
	Webhook *WebhookOptions `json:"webhook,omitempty"`
}

// Config holds the top-level configuration: global options, preloaded
// alarms, and optional station catalog overrides.
type Config struct {
	Options  Options         `json:"config"`
	Alarms   []alarm.Alarm   `json:"alarms,omitempty"`
	Stations []radio.Station `json:"stations,omitempty"`
}

// UnmarshalJSON sets defaults then decodes the JSON structure.
// Go's json.Unmarshal merges into existing struct fields, so only
// values present in JSON override the defaults.
func (c *Config) UnmarshalJSON(data []byte) error {
	c.Options = defaultOptions()
	type Alias Config
	return json.Unmarshal(data, (*Alias)(c))
}

func defaultOptions() Options {
	return Options{
		DefaultVolume:        alarm.DefaultVolume,
		SnoozeMinutes:        DefaultSnoozeMinutes,
		StreamTimeoutSeconds: DefaultStreamTimeoutSeconds,
		ListenAddr:           DefaultListenAddr,
		HistoryDays:          DefaultHistoryDays,
		DesktopToast:         true,
	}
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{Options: defaultOptions()}
}

// Load reads and parses a config file. It tries, in order:
//  1. explicitPath (if non-empty)
//  2. reveil-config.json next to the running binary
//  3. the user config directory (paths.DataDir)
//
// A missing config file is not an error; the engine runs on defaults
// with alarms added over the dashboard. An explicit path that can't
// be read is an error.
func Load(explicitPath string) (Config, error) {
	if explicitPath != "" {
		return readConfig(explicitPath)
	}

	// Next to binary
	exe, err := os.Executable()
	if err == nil {
		p := filepath.Join(filepath.Dir(exe), paths.ConfigFileName)
		if _, err := os.Stat(p); err == nil {
			return readConfig(p)
		}
	}

	// User config directory
	home, err := os.UserHomeDir()
	if err == nil {
		var p string
		if runtime.GOOS == "windows" {
			p = filepath.Join(home, "AppData", "Roaming", paths.AppDirName, paths.ConfigFileName)
		} else {
			p = filepath.Join(home, ".config", paths.AppDirName, paths.ConfigFileName)
		}
		if _, err := os.Stat(p); err == nil {
			return readConfig(p)
		}
	}

	return Default(), nil
}

func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	for i := range cfg.Alarms {
		if err := cfg.Alarms[i].Validate(); err != nil {
			return Config{}, fmt.Errorf("alarm %d: %w", i, err)
		}
	}
	return cfg, nil
}

// Catalog builds the session's station catalog: config stations when
// present, otherwise the built-in list. The catalog is immutable after
// this point.
func (c Config) Catalog() *radio.Catalog {
	if len(c.Stations) > 0 {
		return radio.NewCatalog(c.Stations)
	}
	return radio.NewCatalog(radio.DefaultStations())
}
