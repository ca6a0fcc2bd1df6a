package app

import (
	"fmt"
	"time"

	"github.com/raysh454/cfscrape/internal/logging"
	"github.com/raysh454/cfscrape/internal/scraper"
	"github.com/raysh454/cfscrape/internal/utils"
	"github.com/raysh454/cfscrape/internal/webclient"
)

// Config holds the runtime configuration for one cfscrape invocation.
type Config struct {
	// Target is the URL every request is sent to.
	Target string

	UserAgent string
	Timeout   time.Duration
	Verify    bool

	// Proxies maps a scheme ("http", "https", "all") to a proxy URL.
	Proxies map[string]string

	// Headers are sent with every request; --header values are merged on top.
	Headers map[string]string

	LogLevel string

	// Headful shows the fallback browser window instead of running headless.
	Headful bool

	// DropTracking strips utm_* and similar tracking params from Target.
	DropTracking bool
}

// DefaultConfig returns a Config with the scraper's defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: webclient.DefaultUserAgent,
		Timeout:   webclient.DefaultTimeout,
		Verify:    true,
		Proxies:   map[string]string{},
		Headers:   map[string]string{},
		LogLevel:  "info",
	}
}

// Validate checks the configuration for errors and normalizes Target.
// A schemeless target is assumed to be https.
func (c *Config) Validate() error {
	if c.Target == "" {
		return fmt.Errorf("target URL is required")
	}
	target, err := utils.NormalizeTarget(c.Target, utils.TargetOptions{
		DefaultScheme:      "https",
		DropTrackingParams: c.DropTracking,
	})
	if err != nil {
		return fmt.Errorf("invalid target: %w", err)
	}
	c.Target = target
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// ScraperOptions converts the configuration into scraper options.
func (c *Config) ScraperOptions(logger logging.Logger) []scraper.Option {
	opts := []scraper.Option{
		scraper.WithUserAgent(c.UserAgent),
		scraper.WithTimeout(c.Timeout),
		scraper.WithVerify(c.Verify),
		scraper.WithProxies(c.Proxies),
		scraper.WithLogger(logger),
	}
	if c.Headful {
		opts = append(opts, scraper.WithFallback(webclient.HeadfulFallbackBackend()))
	}
	return opts
}

// configSetter applies values only when the matching flag was not set on the
// command line.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if d <= 0 {
		return fmt.Errorf("parse %s: duration must be positive", flag)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

// mergeMap copies src into dst unless the flag was set.
func (s *configSetter) mergeMap(flag string, src map[string]string, dst *map[string]string) {
	if len(src) == 0 || s.changed[flag] {
		return
	}
	if *dst == nil {
		*dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		(*dst)[k] = v
	}
}
