package scraper

import (
	"time"

	"github.com/raysh454/cfscrape/internal/logging"
	"github.com/raysh454/cfscrape/internal/webclient"
)

// Option configures a Scraper.
type Option func(*Scraper)

// WithUserAgent overrides webclient.DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		if ua != "" {
			s.cfg.UserAgent = ua
		}
	}
}

// WithTimeout overrides the 30s default. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.cfg.Timeout = d
		}
	}
}

// WithVerify toggles TLS certificate verification.
func WithVerify(verify bool) Option {
	return func(s *Scraper) {
		s.cfg.Verify = verify
	}
}

// WithProxies sets the scheme to proxy URL mapping. The map is copied.
func WithProxies(proxies map[string]string) Option {
	return func(s *Scraper) {
		s.cfg.Proxies = make(map[string]string, len(proxies))
		for k, v := range proxies {
			s.cfg.Proxies[k] = v
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Scraper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPrimary replaces the net/http backend constructor.
func WithPrimary(ctor webclient.BackendConstructor) Option {
	return func(s *Scraper) {
		s.primaryCtor = ctor
	}
}

// WithFallback replaces the chromedp backend constructor.
func WithFallback(ctor webclient.BackendConstructor) Option {
	return func(s *Scraper) {
		s.fallbackCtor = ctor
	}
}
