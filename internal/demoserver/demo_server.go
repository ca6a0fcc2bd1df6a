package demoserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/raysh454/cfscrape/internal/logging"
)

// DemoServer is a local site guarded by a JavaScript challenge. Plain HTTP
// clients get the interstitial; a browser that runs the script gets through.
type DemoServer struct {
	cfg    Config
	token  string
	router chi.Router
	logger logging.Logger
}

// NewDemoServer creates a new demo server instance with a fresh clearance token.
func NewDemoServer(cfg Config) *DemoServer {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.ChallengeDelay <= 0 {
		cfg.ChallengeDelay = def.ChallengeDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	s := &DemoServer{
		cfg:    cfg,
		token:  uuid.NewString(),
		router: chi.NewRouter(),
		logger: logger.With(logging.String("component", "demoserver")),
	}
	s.routes()
	return s
}

// Token returns the clearance cookie value this server accepts.
func (s *DemoServer) Token() string {
	return s.token
}

// ClearanceCookie returns the cookie a solved challenge would set.
func (s *DemoServer) ClearanceCookie() *http.Cookie {
	return &http.Cookie{Name: s.cfg.CookieName, Value: s.token, Path: "/"}
}

func (s *DemoServer) routes() {
	r := s.router
	r.Use(middleware.Recoverer)

	r.With(s.challengeGate).Get("/", s.handleIndex)
	r.With(s.apiGate).Post("/api/echo", s.handleEcho)
	r.Get("/status/{code}", s.handleStatus)
	r.Get("/headers", s.handleHeaders)
}

// ServeHTTP implements http.Handler.
func (s *DemoServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("http_request",
		logging.String("method", r.Method),
		logging.String("path", r.URL.Path),
		logging.Bool("cleared", s.cleared(r)))
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *DemoServer) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *DemoServer) Start(ctx context.Context) error {
	srv := s.HTTPServer()
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}
	s.logger.Info("demo server listening", logging.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *DemoServer) cleared(r *http.Request) bool {
	c, err := r.Cookie(s.cfg.CookieName)
	return err == nil && c.Value == s.token
}

// challengeGate serves the interstitial until the clearance cookie is present.
func (s *DemoServer) challengeGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cleared(r) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = challengeTemplate.Execute(w, challengeData{
			Host:        r.Host,
			Path:        r.URL.Path,
			CookieName:  s.cfg.CookieName,
			Token:       s.token,
			DelayMillis: s.cfg.ChallengeDelay.Milliseconds(),
		})
	})
}

// apiGate rejects API calls that arrive without the clearance cookie.
func (s *DemoServer) apiGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.cleared(r) {
			writeError(w, http.StatusForbidden, "challenge required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *DemoServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(protectedPageHTML))
}

func (s *DemoServer) handleEcho(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body")
		return
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *DemoServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil || code < 200 || code > 599 {
		writeError(w, http.StatusBadRequest, "status code must be between 200 and 599")
		return
	}
	writeJSON(w, code, map[string]any{
		"status": code,
		"text":   http.StatusText(code),
	})
}

func (s *DemoServer) handleHeaders(w http.ResponseWriter, r *http.Request) {
	headers := make(map[string]string, len(r.Header))
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}
	writeJSON(w, http.StatusOK, headers)
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
