package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/raysh454/cfscrape/internal/logging"
	"github.com/raysh454/cfscrape/internal/webclient"
)

type state int

const (
	stateUnacquired state = iota
	stateAcquired
	stateClosed
)

// Scraper sends GET and POST requests to one URL through whichever backend
// could be constructed: net/http first, headless Chrome otherwise.
//
// A Scraper must be opened before use and closed afterwards; see Do for the
// scoped form. It is not safe for concurrent requests.
type Scraper struct {
	cfg    webclient.Config
	logger logging.Logger

	primaryCtor  webclient.BackendConstructor
	fallbackCtor webclient.BackendConstructor

	mu          sync.Mutex
	state       state
	primary     webclient.WebClient
	fallback    webclient.WebClient
	releaseOnce sync.Once
}

// New stores the configuration for url. It never fails and starts no backend.
func New(url string, opts ...Option) *Scraper {
	cfg := webclient.DefaultConfig()
	cfg.URL = url

	s := &Scraper{
		cfg:          cfg,
		logger:       logging.NewNopLogger(),
		primaryCtor:  webclient.NewPrimaryBackend,
		fallbackCtor: webclient.NewFallbackBackend,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logging.String("component", "scraper"))
	return s
}

// Do opens a Scraper for url, runs fn, and closes the Scraper on every exit
// path including a panic in fn. fn's error takes precedence over Close's.
func Do(url string, fn func(*Scraper) error, opts ...Option) (err error) {
	s := New(url, opts...)
	if err := s.Open(); err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

// Config returns a copy of the scraper's configuration.
func (s *Scraper) Config() webclient.Config {
	return s.cfg.Clone()
}

// Open constructs the backends. A backend that fails to construct is left
// out; Open fails only when neither is available.
func (s *Scraper) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateUnacquired {
		return newInitError("scraper already opened", nil)
	}

	primaryCfg := s.cfg.Clone()
	primaryCfg.Headers = map[string]string{"User-Agent": s.cfg.UserAgent}
	primary := webclient.Construct(webclient.ClientNetHTTP, s.primaryCtor, primaryCfg, s.logger)
	if !primary.OK() {
		s.logger.Warn("primary client unavailable", logging.Err(primary.Err))
	}

	fallback := webclient.Construct(webclient.ClientChromedp, s.fallbackCtor, webclient.Config{}, s.logger)
	if !fallback.OK() {
		s.logger.Warn("fallback client unavailable", logging.Err(fallback.Err))
	}

	active, ok := webclient.First(primary, fallback)
	if !ok {
		return newInitError("neither client is initialized", webclient.JoinErrors(primary, fallback))
	}

	s.primary = primary.Client
	s.fallback = fallback.Client
	s.state = stateAcquired

	s.logger.Info("scraper opened",
		logging.String("url", s.cfg.URL),
		logging.String("backend", string(active.Name)))
	return nil
}

// Close releases the backends. The primary's connections are released
// exactly once; later calls return nil.
func (s *Scraper) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateClosed {
		return nil
	}
	s.state = stateClosed

	var errs []error
	if s.primary != nil {
		s.releaseOnce.Do(func() {
			if err := s.primary.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close primary: %w", err))
			}
		})
	}
	if s.fallback != nil {
		if err := s.fallback.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close fallback: %w", err))
		}
	}
	s.primary, s.fallback = nil, nil

	s.logger.Debug("scraper closed")
	return errors.Join(errs...)
}

// Backend returns the name of the backend requests go to, if the scraper is open.
func (s *Scraper) Backend() (webclient.Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.state != stateAcquired:
		return "", false
	case s.primary != nil:
		return webclient.ClientNetHTTP, true
	case s.fallback != nil:
		return webclient.ClientChromedp, true
	}
	return "", false
}

// Get sends a GET request and returns the body.
func (s *Scraper) Get(ctx context.Context, headers map[string]string) (string, error) {
	return s.dispatch(ctx, http.MethodGet, nil, headers)
}

// Post sends data as a JSON POST and returns the body.
func (s *Scraper) Post(ctx context.Context, data []byte, headers map[string]string) (string, error) {
	return s.dispatch(ctx, http.MethodPost, data, headers)
}

func (s *Scraper) dispatch(ctx context.Context, method string, data []byte, headers map[string]string) (string, error) {
	s.mu.Lock()
	st, primary, fallback := s.state, s.primary, s.fallback
	s.mu.Unlock()

	if st != stateAcquired {
		return "", newInitError("scraper is not open", nil)
	}

	log := s.logger.With(logging.String("request_id", uuid.NewString()))

	resp, err := s.send(ctx, log, method, data, headers, primary, fallback)
	if err != nil {
		return "", newRequestError(method, s.cfg.URL, err)
	}
	return resp.Text(), nil
}

func (s *Scraper) send(ctx context.Context, log logging.Logger, method string, data []byte, headers map[string]string, primary, fallback webclient.WebClient) (*webclient.Response, error) {
	if method != http.MethodGet && method != http.MethodPost {
		return nil, newMethodError(method, s.cfg.URL)
	}

	req := &webclient.Request{
		Method:  method,
		URL:     s.cfg.URL,
		Headers: s.effectiveHeaders(headers),
		Body:    data,
	}
	if method == http.MethodPost {
		req.Headers.Set("Content-Type", "application/json")
	}

	var backend webclient.WebClient
	var name webclient.Client
	switch {
	case primary != nil:
		backend, name = primary, webclient.ClientNetHTTP
	case fallback != nil:
		backend, name = fallback, webclient.ClientChromedp
		req.Timeout = s.cfg.Timeout
		req.Proxies = s.Config().Proxies
	default:
		return nil, newInitError("neither client is initialized", nil)
	}

	log.Debug("dispatching request",
		logging.String("method", method),
		logging.String("url", req.URL),
		logging.String("backend", string(name)))

	resp, err := backend.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s backend: %w", name, err)
	}
	if err := resp.CheckStatus(); err != nil {
		log.Warn("request returned error status",
			logging.String("method", method),
			logging.String("url", req.URL),
			logging.Int("status", resp.StatusCode))
		return nil, newStatusError(method, req.URL, resp.StatusCode, err)
	}
	return resp, nil
}

// effectiveHeaders starts from the configured User-Agent; caller values win.
func (s *Scraper) effectiveHeaders(headers map[string]string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", s.cfg.UserAgent)
	for k, v := range headers {
		h.Set(k, v)
	}
	return h
}
