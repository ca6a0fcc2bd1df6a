package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/raysh454/cfscrape/internal/extract"
	"github.com/raysh454/cfscrape/internal/logging"
	"github.com/raysh454/cfscrape/internal/scraper"
)

// Request is one CLI request against Config.Target.
type Request struct {
	Method  string
	Data    []byte
	Headers map[string]string

	// Select, when set, reduces the body to the text of matching elements.
	Select string

	// Attr prints this attribute of the Select matches instead of their text.
	Attr string
}

// Application holds the configuration and services shared by the CLI commands.
type Application struct {
	Config *Config
	Logger logging.Logger

	// extra options appended after the config-derived ones; tests inject
	// backends here.
	extra []scraper.Option
}

// NewApplication constructs an Application from already-built parts.
func NewApplication(cfg *Config, logger logging.Logger, extra ...scraper.Option) *Application {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Application{
		Config: cfg,
		Logger: logger,
		extra:  extra,
	}
}

// Run opens a scraper for the configured target, sends req and returns the
// output to print. The scraper is closed before Run returns.
func (a *Application) Run(ctx context.Context, req Request) (string, error) {
	if a == nil || a.Config == nil {
		return "", errors.New("application is not configured")
	}
	if err := a.Config.Validate(); err != nil {
		return "", err
	}
	if req.Attr != "" && req.Select == "" {
		return "", errors.New("attr requires a selector")
	}

	headers := make(map[string]string, len(a.Config.Headers)+len(req.Headers))
	for k, v := range a.Config.Headers {
		headers[k] = v
	}
	for k, v := range req.Headers {
		headers[k] = v
	}

	opts := append(a.Config.ScraperOptions(a.Logger), a.extra...)

	var body string
	err := scraper.Do(a.Config.Target, func(s *scraper.Scraper) error {
		if name, ok := s.Backend(); ok {
			a.Logger.Debug("sending request",
				logging.String("method", req.Method),
				logging.String("backend", string(name)))
		}
		var err error
		switch strings.ToUpper(req.Method) {
		case "", http.MethodGet:
			body, err = s.Get(ctx, headers)
		case http.MethodPost:
			body, err = s.Post(ctx, req.Data, headers)
		default:
			err = fmt.Errorf("unsupported method %q", req.Method)
		}
		return err
	}, opts...)
	if err != nil {
		return "", err
	}

	if extract.IsChallengePage([]byte(body)) {
		a.Logger.Warn("response looks like an anti-bot challenge page",
			logging.String("url", a.Config.Target),
			logging.String("title", extract.Title([]byte(body))))
	}

	if req.Select == "" {
		return body, nil
	}
	var matches []string
	if req.Attr != "" {
		matches, err = extract.Attr([]byte(body), req.Select, req.Attr)
	} else {
		matches, err = extract.Select([]byte(body), req.Select)
	}
	if err != nil {
		return "", err
	}
	return strings.Join(matches, "\n"), nil
}

// ExitCode maps a Run error to a process exit code: 0 on success, 2 for an
// HTTP status error, 1 for anything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case scraper.IsHTTPStatus(err):
		return 2
	default:
		return 1
	}
}
