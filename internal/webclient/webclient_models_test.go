package webclient_test

import (
	"errors"
	"testing"
	"time"

	"github.com/raysh454/cfscrape/internal/webclient"
)

func TestResponse_CheckStatus(t *testing.T) {
	t.Parallel()
	for _, code := range []int{200, 204, 301, 399} {
		if err := (&webclient.Response{StatusCode: code}).CheckStatus(); err != nil {
			t.Errorf("status %d: unexpected error %v", code, err)
		}
	}
	for _, code := range []int{400, 404, 429, 500, 503} {
		err := (&webclient.Response{StatusCode: code, Body: []byte("nope")}).CheckStatus()
		var se *webclient.StatusError
		if !errors.As(err, &se) {
			t.Fatalf("status %d: expected *StatusError, got %v", code, err)
		}
		if se.StatusCode != code || string(se.Body) != "nope" {
			t.Errorf("status %d: unexpected error fields %+v", code, se)
		}
	}
}

func TestStatusError_Message(t *testing.T) {
	t.Parallel()
	if got := (&webclient.StatusError{StatusCode: 404}).Error(); got != "client error: HTTP 404 Not Found" {
		t.Errorf("unexpected message %q", got)
	}
	if got := (&webclient.StatusError{StatusCode: 500}).Error(); got != "server error: HTTP 500 Internal Server Error" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestConfig_DefaultsAndClone(t *testing.T) {
	t.Parallel()
	cfg := webclient.DefaultConfig()
	if cfg.UserAgent != webclient.DefaultUserAgent || cfg.Timeout != 30*time.Second || !cfg.Verify {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Proxies == nil || len(cfg.Proxies) != 0 {
		t.Errorf("expected empty proxy map, got %v", cfg.Proxies)
	}

	cfg.Proxies["http"] = "http://p:1"
	clone := cfg.Clone()
	cfg.Proxies["http"] = "http://changed:2"
	if clone.Proxies["http"] != "http://p:1" {
		t.Errorf("expected clone to be independent, got %v", clone.Proxies)
	}

	var zero webclient.Config
	zero.ApplyDefaults()
	if zero.UserAgent != webclient.DefaultUserAgent || zero.Timeout != webclient.DefaultTimeout {
		t.Errorf("ApplyDefaults did not fill fields: %+v", zero)
	}
	if err := zero.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestProxyFor(t *testing.T) {
	t.Parallel()
	proxies := map[string]string{
		"https://": "http://secure:1",
		"all":      "socks5://any:2",
	}
	if got := webclient.ProxyFor(proxies, "https"); got != "http://secure:1" {
		t.Errorf("https: got %q", got)
	}
	if got := webclient.ProxyFor(proxies, "http"); got != "socks5://any:2" {
		t.Errorf("http: expected all fallback, got %q", got)
	}
	if got := webclient.ProxyFor(nil, "http"); got != "" {
		t.Errorf("nil map: got %q", got)
	}
}

func TestConfig_ValidateRejectsUnsupportedProxy(t *testing.T) {
	t.Parallel()
	cfg := webclient.DefaultConfig()
	cfg.Proxies = map[string]string{"http": "ftp://proxy:21"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unsupported scheme error")
	}
}
