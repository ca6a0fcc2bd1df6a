package demoserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/cfscrape/internal/demoserver"
	"github.com/raysh454/cfscrape/internal/extract"
	"github.com/raysh454/cfscrape/internal/logging"
	"github.com/raysh454/cfscrape/internal/scraper"
	"github.com/raysh454/cfscrape/internal/testutil"
	"github.com/raysh454/cfscrape/internal/webclient"
)

func newTestServer(t *testing.T) (*demoserver.DemoServer, *httptest.Server) {
	t.Helper()
	cfg := demoserver.DefaultConfig()
	cfg.ChallengeDelay = 100 * time.Millisecond
	cfg.Logger = &testutil.DummyLogger{}
	ds := demoserver.NewDemoServer(cfg)
	srv := httptest.NewServer(ds)
	t.Cleanup(srv.Close)
	return ds, srv
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, body string, cookie *http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readAll(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return []byte(buf.String())
}

func TestIndex_ChallengeWithoutCookie(t *testing.T) {
	ds, srv := newTestServer(t)

	resp := doRequest(t, srv, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	body := readAll(t, resp)
	assert.True(t, extract.IsChallengePage(body))
	assert.Equal(t, "Just a moment...", extract.Title(body))
	assert.Contains(t, string(body), ds.Token())
}

func TestIndex_ClearedWithCookie(t *testing.T) {
	ds, srv := newTestServer(t)

	resp := doRequest(t, srv, http.MethodGet, "/", "", ds.ClearanceCookie())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := readAll(t, resp)
	assert.False(t, extract.IsChallengePage(body))
	products, err := extract.Select(body, "li.product a")
	require.NoError(t, err)
	assert.Equal(t, []string{"Blue Widget", "Red Widget", "Green Widget"}, products)
}

func TestIndex_WrongCookieValue(t *testing.T) {
	_, srv := newTestServer(t)

	resp := doRequest(t, srv, http.MethodGet, "/", "", &http.Cookie{Name: "cf_clearance", Value: "forged"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestEcho(t *testing.T) {
	ds, srv := newTestServer(t)

	resp := doRequest(t, srv, http.MethodPost, "/api/echo", `{"a":1}`, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	var errBody map[string]string
	require.NoError(t, json.Unmarshal(readAll(t, resp), &errBody))
	assert.Equal(t, "challenge required", errBody["error"])

	resp = doRequest(t, srv, http.MethodPost, "/api/echo", `{"a":1}`, ds.ClearanceCookie())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"a":1}`, string(readAll(t, resp)))
}

func TestStatus(t *testing.T) {
	_, srv := newTestServer(t)

	resp := doRequest(t, srv, http.MethodGet, "/status/418", "", nil)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodGet, "/status/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodGet, "/status/99", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHeaders(t *testing.T) {
	_, srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/headers", nil)
	require.NoError(t, err)
	req.Header.Set("X-Probe", "42")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var got map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "42", got["X-Probe"])
}

func TestUnknownRoute(t *testing.T) {
	_, srv := newTestServer(t)
	resp := doRequest(t, srv, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	cfg := demoserver.DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	ds := demoserver.NewDemoServer(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ds.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

// The plain net/http backend only ever sees the interstitial.
func TestScraper_PrimarySeesChallenge(t *testing.T) {
	_, srv := newTestServer(t)

	err := scraper.Do(srv.URL+"/", func(s *scraper.Scraper) error {
		_, err := s.Get(context.Background(), nil)
		return err
	}, scraper.WithFallback(testutil.FailingBackend))

	code, ok := scraper.StatusCode(err)
	require.True(t, ok, "err: %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestScraper_PrimaryHeadersReachServer(t *testing.T) {
	_, srv := newTestServer(t)

	var body string
	err := scraper.Do(srv.URL+"/headers", func(s *scraper.Scraper) error {
		var err error
		body, err = s.Get(context.Background(), map[string]string{"x-Probe": "7"})
		return err
	}, scraper.WithFallback(testutil.FailingBackend))
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, webclient.DefaultUserAgent, got["User-Agent"])
	assert.Equal(t, "7", got["X-Probe"])
}

// The chromedp backend runs the challenge script and gets through.
// Skipped where no browser is installed.
func TestScraper_FallbackSolvesChallenge(t *testing.T) {
	if _, err := webclient.NewChromedpClient(logging.NewNopLogger()); err != nil {
		t.Skipf("Skipping chromedp challenge test (environment does not support chromedp): %v", err)
	}
	_, srv := newTestServer(t)

	opts := []scraper.Option{
		scraper.WithPrimary(testutil.FailingBackend),
		scraper.WithTimeout(20 * time.Second),
	}

	var page, echoed string
	err := scraper.Do(srv.URL+"/", func(s *scraper.Scraper) error {
		var err error
		page, err = s.Get(context.Background(), nil)
		return err
	}, opts...)
	if err != nil && !scraper.IsHTTPStatus(err) {
		t.Skipf("Skipping chromedp challenge test (browser failed to start): %v", err)
	}
	require.NoError(t, err)
	assert.Contains(t, page, "Welcome to Demo Shop")

	err = scraper.Do(srv.URL+"/api/echo", func(s *scraper.Scraper) error {
		var err error
		echoed, err = s.Post(context.Background(), []byte(`{"hello":"world"}`), nil)
		return err
	}, opts...)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hello":"world"}`, echoed)
}
