package webclient

import (
	"context"

	"github.com/raysh454/cfscrape/internal/logging"
)

// WebClient is a backend capable of issuing requests for the scraper.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	Close() error
}

// BackendConstructor constructs a WebClient given the config and logger.
type BackendConstructor func(cfg Config, logger logging.Logger) (WebClient, error)
