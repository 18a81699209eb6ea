// Package config loads the payerkb client configuration from a TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the client configuration. Command-line flags override any value
// loaded from the file.
type Config struct {
	// ServerURL is the base URL of the knowledge base API.
	ServerURL string `toml:"server_url"`

	// PayerName and RuleType are default filters attached to every query.
	PayerName string `toml:"payer_name"`
	RuleType  string `toml:"rule_type"`

	// PollIntervalSeconds is the dashboard refresh cadence.
	PollIntervalSeconds int `toml:"poll_interval_seconds"`

	// RequestTimeoutSeconds bounds each chat query round trip.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`

	// LogFile receives structured logs. Empty disables logging in the TUI
	// (which owns stdout) and logs to stderr elsewhere.
	LogFile string `toml:"log_file"`

	// Debug enables debug-level logging.
	Debug bool `toml:"debug"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ServerURL:             "http://localhost:8000",
		PollIntervalSeconds:   30,
		RequestTimeoutSeconds: 60,
	}
}

// DefaultPath returns ~/.payerkb/config.toml, or an empty string when the
// home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".payerkb", "config.toml")
}

// Load reads configuration from path. An empty path means the default
// location; a missing file at the default location is not an error and
// yields Default(). A path the user asked for explicitly must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, fmt.Errorf("config file not found: %s", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config %s: %w", path, err)
	}

	return cfg, nil
}
