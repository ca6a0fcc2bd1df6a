package cli

import (
	"fmt"
	"strings"
)

// ParseHeaders turns repeated "Key=Value" (or "Key: Value") arguments into a
// header map. Later duplicates win.
func ParseHeaders(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.Contains(k, ":") {
			k, v, ok = strings.Cut(p, ":")
		}
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid header %q: want Key=Value", p)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
