package webclient

import (
	"github.com/chromedp/chromedp"

	"github.com/raysh454/cfscrape/internal/logging"
)

// NewPrimaryBackend is the default BackendConstructor for the net/http backend.
func NewPrimaryBackend(cfg Config, logger logging.Logger) (WebClient, error) {
	c, err := NewNetHTTPClient(cfg, logger, nil)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewFallbackBackend is the default BackendConstructor for the chromedp backend.
// It takes nothing from cfg: timeout and proxies travel with each request.
func NewFallbackBackend(_ Config, logger logging.Logger) (WebClient, error) {
	c, err := NewChromedpClient(logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// HeadfulFallbackBackend returns a chromedp constructor that shows the browser window.
func HeadfulFallbackBackend() BackendConstructor {
	return func(_ Config, logger logging.Logger) (WebClient, error) {
		c, err := NewChromedpClient(logger, chromedp.Flag("headless", false))
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}
