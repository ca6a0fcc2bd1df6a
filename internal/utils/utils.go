// Package utils normalizes request targets.
package utils

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// TargetOptions controls NormalizeTarget.
type TargetOptions struct {
	DefaultScheme      string // if empty, require scheme in input; otherwise assume this scheme for schemeless URLs
	DropTrackingParams bool   // remove common tracking params (utm_*, gclid, fbclid, ...)
}

// Common tracking params to strip when DropTrackingParams is true.
var defaultTrackingParams = map[string]struct{}{
	"utm_source": {}, "utm_medium": {}, "utm_campaign": {}, "utm_term": {}, "utm_content": {},
	"gclid": {}, "fbclid": {}, "mc_cid": {}, "mc_eid": {},
}

// Errors
var (
	ErrEmptyURL          = errors.New("empty url")
	ErrMissingHost       = errors.New("missing host")
	ErrUnsupportedScheme = errors.New("scheme must be http or https")
)

// NormalizeTarget turns user input into an absolute http(s) URL suitable for
// sending requests to. Scheme and host are lowercased, IDN hosts are converted
// to punycode, default ports and fragments are dropped. Path and query order
// are left alone unless tracking params are dropped.
func NormalizeTarget(raw string, opts TargetOptions) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &url.Error{Op: "normalize", URL: raw, Err: ErrEmptyURL}
	}

	if opts.DefaultScheme != "" && !strings.Contains(raw, "://") {
		raw = opts.DefaultScheme + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &url.Error{Op: "normalize", URL: raw, Err: ErrUnsupportedScheme}
	}
	if u.Host == "" {
		return "", &url.Error{Op: "normalize", URL: raw, Err: ErrMissingHost}
	}

	host := strings.ToLower(u.Hostname())
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}

	// Preserve non-default port only
	port := u.Port()
	switch {
	case (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443"), port == "":
		u.Host = bracketIPv6(host)
	default:
		u.Host = net.JoinHostPort(host, port)
	}

	if u.Path == "" {
		u.Path = "/"
	}
	u.Fragment = ""
	u.RawFragment = ""

	if opts.DropTrackingParams && u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			if _, ok := defaultTrackingParams[strings.ToLower(k)]; ok {
				q.Del(k)
			}
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// Origin returns scheme://host/ for raw.
func Origin(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("couldn't parse url %s: %w", raw, err)
	}
	if u.Host == "" {
		return "", &url.Error{Op: "origin", URL: raw, Err: ErrMissingHost}
	}
	return (&url.URL{Scheme: strings.ToLower(u.Scheme), Host: u.Host, Path: "/"}).String(), nil
}

func bracketIPv6(host string) string {
	if strings.Contains(host, ":") {
		return "[" + host + "]"
	}
	return host
}
