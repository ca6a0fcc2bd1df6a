package webclient

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// proxyAll is the scheme key that applies to every request.
const proxyAll = "all"

// proxySelector routes requests to the proxy configured for their scheme.
// HTTP, HTTPS and SOCKS5 proxy URLs all go through Transport.Proxy.
type proxySelector struct {
	byScheme map[string]*url.URL
}

func normalizeScheme(key string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(key), "://"))
}

func parseProxies(proxies map[string]string) (*proxySelector, error) {
	ps := &proxySelector{byScheme: map[string]*url.URL{}}

	keys := make([]string, 0, len(proxies))
	for k := range proxies {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := strings.TrimSpace(proxies[key])
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("webclient: invalid proxy %q for scheme %q", raw, key)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "socks5", "socks5h":
			ps.byScheme[normalizeScheme(key)] = u
		default:
			return nil, fmt.Errorf("webclient: unsupported proxy scheme %q", u.Scheme)
		}
	}
	return ps, nil
}

// proxyFunc satisfies http.Transport.Proxy.
func (ps *proxySelector) proxyFunc(req *http.Request) (*url.URL, error) {
	if u, ok := ps.byScheme[req.URL.Scheme]; ok {
		return u, nil
	}
	if u, ok := ps.byScheme[proxyAll]; ok {
		return u, nil
	}
	return nil, nil
}

// ProxyFor returns the proxy URL configured for scheme, falling back to "all".
func ProxyFor(proxies map[string]string, scheme string) string {
	scheme = normalizeScheme(scheme)
	for k, v := range proxies {
		if normalizeScheme(k) == scheme && v != "" {
			return v
		}
	}
	for k, v := range proxies {
		if normalizeScheme(k) == proxyAll && v != "" {
			return v
		}
	}
	return ""
}
