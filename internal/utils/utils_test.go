package utils_test

import (
	"errors"
	"testing"

	"github.com/raysh454/cfscrape/internal/utils"
)

func TestNormalizeTarget(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		opts utils.TargetOptions
		want string
	}{
		{
			in:   "HTTP://Example.COM:80/foo/?b=2&a=1#frag",
			want: "http://example.com/foo/?b=2&a=1",
		},
		{
			in:   "https://example.com:443/index.html#section",
			want: "https://example.com/index.html",
		},
		{
			in:   "example.com",
			opts: utils.TargetOptions{DefaultScheme: "https"},
			want: "https://example.com/",
		},
		{
			in:   "example.com/page?utm_source=x&utm_medium=y&z=1",
			opts: utils.TargetOptions{DefaultScheme: "https", DropTrackingParams: true},
			want: "https://example.com/page?z=1",
		},
		{
			in:   "https://例え.テスト/a",
			want: "https://xn--r8jz45g.xn--zckzah/a",
		},
		{
			in:   "https://example.com:8443/api",
			want: "https://example.com:8443/api",
		},
		{
			in:   "http://[::1]:8080/x",
			want: "http://[::1]:8080/x",
		},
		{
			in:   "  http://127.0.0.1:9999  ",
			want: "http://127.0.0.1:9999/",
		},
	}

	for _, tt := range tests {
		got, err := utils.NormalizeTarget(tt.in, tt.opts)
		if err != nil {
			t.Fatalf("NormalizeTarget(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("NormalizeTarget(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTarget_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want error
	}{
		{"", utils.ErrEmptyURL},
		{"ftp://example.com/file", utils.ErrUnsupportedScheme},
		{"example.com", utils.ErrUnsupportedScheme},
		{"https:///path", utils.ErrMissingHost},
	}
	for _, tt := range tests {
		_, err := utils.NormalizeTarget(tt.in, utils.TargetOptions{})
		if !errors.Is(err, tt.want) {
			t.Errorf("NormalizeTarget(%q) error = %v, want %v", tt.in, err, tt.want)
		}
	}
}

func TestOrigin(t *testing.T) {
	t.Parallel()
	got, err := utils.Origin("HTTPS://shop.example:8443/api/echo?x=1")
	if err != nil {
		t.Fatalf("Origin: %v", err)
	}
	if got != "https://shop.example:8443/" {
		t.Errorf("Origin = %q", got)
	}

	if _, err := utils.Origin("/relative"); err == nil {
		t.Error("expected error for URL without host")
	}
}
