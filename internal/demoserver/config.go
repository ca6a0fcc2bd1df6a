package demoserver

import (
	"time"

	"github.com/raysh454/cfscrape/internal/logging"
)

// Config holds configuration for the demo server.
type Config struct {
	// ListenAddr is the address passed to http.Server, e.g. ":9999".
	ListenAddr string

	// CookieName is the cookie the challenge page sets once solved.
	CookieName string

	// ChallengeDelay is how long the challenge script waits before setting
	// the cookie and reloading.
	ChallengeDelay time.Duration

	Logger logging.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr:     ":9999",
		CookieName:     "cf_clearance",
		ChallengeDelay: 500 * time.Millisecond,
	}
}
