package webclient

import (
	"fmt"
	"time"
)

// Client names a backend implementation.
type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientChromedp Client = "chromedp"
)

// DefaultUserAgent is sent when no override is configured.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

// DefaultTimeout bounds a single request when none is configured.
const DefaultTimeout = 30 * time.Second

// Config carries the settings a backend is constructed with.
// A zero Config disables TLS verification; start from DefaultConfig.
type Config struct {
	// URL is the target the scraper talks to.
	URL string

	// UserAgent replaces DefaultUserAgent.
	UserAgent string

	// Timeout bounds each request.
	Timeout time.Duration

	// Verify enables TLS certificate verification.
	Verify bool

	// Proxies maps a URL scheme ("http", "https" or "all") to a proxy URL.
	Proxies map[string]string

	// Headers are sent with every request unless a request overrides them.
	Headers map[string]string
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
		Verify:    true,
		Proxies:   map[string]string{},
	}
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Proxies == nil {
		c.Proxies = map[string]string{}
	}
}

// Validate checks that the configuration is usable by a backend.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("webclient: timeout must be positive")
	}
	if _, err := parseProxies(c.Proxies); err != nil {
		return err
	}
	return nil
}

// Clone returns a deep copy so callers can't mutate shared maps.
func (c Config) Clone() Config {
	out := c
	out.Proxies = copyMap(c.Proxies)
	out.Headers = copyMap(c.Headers)
	return out
}

func copyMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
