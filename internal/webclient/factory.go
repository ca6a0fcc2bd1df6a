package webclient

import (
	"errors"
	"fmt"

	"github.com/raysh454/cfscrape/internal/logging"
)

// Result is the outcome of constructing one named backend.
type Result struct {
	Name   Client
	Client WebClient
	Err    error
}

// OK reports whether the backend is usable.
func (r Result) OK() bool {
	return r.Err == nil && r.Client != nil
}

// Construct runs ctor and records the outcome instead of failing.
func Construct(name Client, ctor BackendConstructor, cfg Config, logger logging.Logger) Result {
	if ctor == nil {
		return Result{Name: name, Err: fmt.Errorf("webclient backend %q has no constructor", name)}
	}
	wc, err := ctor(cfg, logger)
	if err != nil {
		return Result{Name: name, Err: fmt.Errorf("failed to construct webclient backend %q: %w", name, err)}
	}
	if wc == nil {
		return Result{Name: name, Err: errors.New("webclient constructor returned nil")}
	}
	return Result{Name: name, Client: wc}
}

// First returns the first usable result in preference order.
func First(results ...Result) (Result, bool) {
	for _, r := range results {
		if r.OK() {
			return r, true
		}
	}
	return Result{}, false
}

// JoinErrors combines the construction errors of all failed results.
func JoinErrors(results ...Result) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errors.Join(errs...)
}
