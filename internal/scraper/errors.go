package scraper

import (
	"errors"
	"fmt"
)

// ErrorKind classifies scraper errors.
type ErrorKind int

const (
	// KindInitialization means no backend is available, either because both
	// failed to construct or because the scraper was never opened.
	KindInitialization ErrorKind = iota
	// KindInvalidMethod means a method other than GET or POST was dispatched.
	KindInvalidMethod
	// KindHTTPStatus means the backend answered with a 4xx or 5xx status.
	KindHTTPStatus
	// KindRequest wraps any failure raised while dispatching a request.
	KindRequest
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindInitialization:
		return "initialization"
	case KindInvalidMethod:
		return "invalid_method"
	case KindHTTPStatus:
		return "http_status"
	case KindRequest:
		return "request"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by Scraper. Err keeps the cause so
// a KindRequest error still answers IsHTTPStatus for the status failure it wraps.
type Error struct {
	Kind ErrorKind
	// Method and URL identify the request, when there was one.
	Method string
	URL    string
	// StatusCode is set for KindHTTPStatus.
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.StatusCode > 0 && e.Kind == KindHTTPStatus {
		return fmt.Sprintf("scraper: %s (HTTP %d): %s", e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("scraper: %s: %s", e.Kind, msg)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newInitError(msg string, cause error) *Error {
	return &Error{Kind: KindInitialization, Message: msg, Err: cause}
}

func newMethodError(method, url string) *Error {
	return &Error{
		Kind:    KindInvalidMethod,
		Method:  method,
		URL:     url,
		Message: fmt.Sprintf("invalid HTTP method %q specified", method),
	}
}

func newStatusError(method, url string, status int, cause error) *Error {
	return &Error{
		Kind:       KindHTTPStatus,
		Method:     method,
		URL:        url,
		StatusCode: status,
		Message:    fmt.Sprintf("%s %s", method, url),
		Err:        cause,
	}
}

func newRequestError(method, url string, cause error) *Error {
	return &Error{
		Kind:    KindRequest,
		Method:  method,
		URL:     url,
		Message: "request error occurred",
		Err:     cause,
	}
}

// findKind walks the chain looking for an *Error of kind k.
func findKind(err error, k ErrorKind) (*Error, bool) {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return nil, false
		}
		if e.Kind == k {
			return e, true
		}
		err = e.Err
	}
	return nil, false
}

// IsInitialization checks if an error is an initialization error.
func IsInitialization(err error) bool {
	_, ok := findKind(err, KindInitialization)
	return ok
}

// IsInvalidMethod checks if an error is an invalid-method error.
func IsInvalidMethod(err error) bool {
	_, ok := findKind(err, KindInvalidMethod)
	return ok
}

// IsHTTPStatus checks if an error carries a 4xx/5xx status.
func IsHTTPStatus(err error) bool {
	_, ok := findKind(err, KindHTTPStatus)
	return ok
}

// IsRequest checks if an error is a wrapped dispatch failure.
func IsRequest(err error) bool {
	_, ok := findKind(err, KindRequest)
	return ok
}

// StatusCode extracts the HTTP status from an error chain.
func StatusCode(err error) (int, bool) {
	e, ok := findKind(err, KindHTTPStatus)
	if !ok {
		return 0, false
	}
	return e.StatusCode, true
}
