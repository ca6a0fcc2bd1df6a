package webclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/raysh454/cfscrape/internal/logging"
)

// net/http backed implementation of webclient.
type NetHTTPClient struct {
	client    *http.Client
	headers   http.Header
	logger    logging.Logger
	closeOnce sync.Once
}

var _ WebClient = (*NetHTTPClient)(nil)

// NewNetHTTPClient builds a client that keeps cfg's timeout, TLS verification,
// proxies and default headers. If httpClient is non-nil it is used as is and
// the transport settings in cfg are not applied.
func NewNetHTTPClient(cfg Config, logger logging.Logger, httpClient *http.Client) (*NetHTTPClient, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	componentLogger := logger.With(logging.String("backend", string(ClientNetHTTP)))

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if httpClient == nil {
		transport, err := newTransport(cfg)
		if err != nil {
			return nil, err
		}
		httpClient = &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		}
	}

	headers := http.Header{}
	for k, v := range cfg.Headers {
		headers.Set(k, v)
	}

	componentLogger.Debug("created nethttp webclient",
		logging.String("timeout", httpClient.Timeout.String()),
		logging.Bool("verify", cfg.Verify),
		logging.Int("proxies", len(cfg.Proxies)))

	return &NetHTTPClient{
		client:  httpClient,
		headers: headers,
		logger:  componentLogger,
	}, nil
}

func newTransport(cfg Config) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: !cfg.Verify}

	ps, err := parseProxies(cfg.Proxies)
	if err != nil {
		return nil, err
	}
	transport.Proxy = ps.proxyFunc
	return transport, nil
}

// Do implements the generic request execution using net/http.
func (nhc *NetHTTPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	method := strings.ToUpper(req.Method)

	nhc.logger.Debug("sending http request",
		logging.String("method", method),
		logging.String("url", req.URL))

	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, vs := range nhc.headers {
		httpReq.Header[k] = append([]string(nil), vs...)
	}
	for k, vs := range req.Headers {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := nhc.client.Do(httpReq)
	if err != nil {
		nhc.logger.Warn("http request failed",
			logging.String("method", method),
			logging.String("url", req.URL),
			logging.Err(err))
		return nil, fmt.Errorf("http do: %w", err)
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		nhc.logger.Warn("failed to read response body",
			logging.String("method", method),
			logging.String("url", req.URL),
			logging.Err(err))
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{
		Request:    req,
		Body:       body,
		Headers:    resp.Header,
		StatusCode: resp.StatusCode,
		FetchedAt:  time.Now(),
	}, nil
}

// Close releases idle connections. Only the first call has an effect.
func (nhc *NetHTTPClient) Close() error {
	nhc.closeOnce.Do(func() {
		nhc.logger.Debug("closing nethttp webclient")
		nhc.client.CloseIdleConnections()
	})
	return nil
}

// HTTPClient returns the underlying *http.Client
func (nhc *NetHTTPClient) HTTPClient() *http.Client {
	return nhc.client
}
