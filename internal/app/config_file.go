package app

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config for TOML. Durations are strings.
type FileConfig struct {
	UserAgent    string            `toml:"user_agent"`
	Timeout      string            `toml:"timeout"`
	Verify       *bool             `toml:"verify"`
	LogLevel     string            `toml:"log_level"`
	Headful      *bool             `toml:"headful"`
	DropTracking *bool             `toml:"drop_tracking"`
	Proxies      map[string]string `toml:"proxies"`
	Headers      map[string]string `toml:"headers"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.cfscrape/config.toml, or "" without a home directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".cfscrape", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies fc to cfg, skipping fields whose flag is in changed.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("user-agent", fc.UserAgent, &cfg.UserAgent)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("timeout", fc.Timeout, &cfg.Timeout); err != nil {
		return err
	}

	s.setBool("insecure", fc.Verify, &cfg.Verify)
	s.setBool("headful", fc.Headful, &cfg.Headful)
	s.setBool("drop-tracking", fc.DropTracking, &cfg.DropTracking)

	s.mergeMap("proxy", fc.Proxies, &cfg.Proxies)
	s.mergeMap("headers", fc.Headers, &cfg.Headers)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
