// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/raysh454/cfscrape/internal/logging"
	"github.com/raysh454/cfscrape/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns how many warnings were recorded.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient.
// By default it returns body "ok:<url>" with status 200.
// Set StatusCode/Body to script the response, or Err to force a failure.
type DummyWebClient struct {
	ResponseDelay time.Duration
	StatusCode    int
	Body          string
	Err           error

	mu       sync.Mutex
	Requests []*webclient.Request
	closes   atomic.Int32
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.Err != nil {
		return nil, d.Err
	}

	status := d.StatusCode
	if status == 0 {
		status = 200
	}
	body := d.Body
	if body == "" {
		body = "ok:" + req.URL
	}

	return &webclient.Response{
		Request:    req,
		Body:       []byte(body),
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Close() error {
	d.closes.Add(1)
	return nil
}

// Closes returns how many times Close was called.
func (d *DummyWebClient) Closes() int {
	return int(d.closes.Load())
}

// Calls returns how many requests reached the client.
func (d *DummyWebClient) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Requests)
}

// LastRequest returns the most recent request, or nil.
func (d *DummyWebClient) LastRequest() *webclient.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Requests) == 0 {
		return nil
	}
	return d.Requests[len(d.Requests)-1]
}

// ─── Backend constructors ─────────────────────────────────────────────

// ErrConstruct is returned by FailingBackend.
var ErrConstruct = errors.New("dummy backend construction failed")

// BackendRecorder wraps a DummyWebClient in a webclient.BackendConstructor and
// remembers the config it was built with.
type BackendRecorder struct {
	Client *DummyWebClient

	mu     sync.Mutex
	Config *webclient.Config
}

// Constructor returns a BackendConstructor yielding r.Client.
func (r *BackendRecorder) Constructor() webclient.BackendConstructor {
	return func(cfg webclient.Config, _ logging.Logger) (webclient.WebClient, error) {
		r.mu.Lock()
		r.Config = &cfg
		r.mu.Unlock()
		return r.Client, nil
	}
}

// Built reports whether the constructor ran.
func (r *BackendRecorder) Built() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Config != nil
}

// FailingBackend is a constructor that always fails with ErrConstruct.
func FailingBackend(webclient.Config, logging.Logger) (webclient.WebClient, error) {
	return nil, ErrConstruct
}
