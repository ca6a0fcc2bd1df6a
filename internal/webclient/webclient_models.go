package webclient

import (
	"fmt"
	"net/http"
	"time"
)

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte

	// Timeout and Proxies are read by backends that don't keep their own
	// transport settings (chromedp). NetHTTPClient ignores them.
	Timeout time.Duration
	Proxies map[string]string
}

type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// CheckStatus returns a *StatusError for 4xx and 5xx responses.
func (r *Response) CheckStatus() error {
	if r.StatusCode >= 400 {
		return &StatusError{StatusCode: r.StatusCode, Body: r.Body}
	}
	return nil
}

// StatusError reports a client or server error status.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	kind := "server error"
	if e.StatusCode < 500 {
		kind = "client error"
	}
	return fmt.Sprintf("%s: HTTP %d %s", kind, e.StatusCode, http.StatusText(e.StatusCode))
}
