// Package headers parses extra request headers given on the command line.
package headers

import (
	"fmt"
	"net/textproto"
	"strings"
)

// Parse converts "Key: Value" strings into a map keyed by canonical header name.
// Later duplicates win.
func Parse(h []string) (map[string]string, error) {
	m := make(map[string]string, len(h))
	for _, hdr := range h {
		parts := strings.SplitN(hdr, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid header %q: expected \"Key: Value\"", hdr)
		}
		key := strings.TrimSpace(parts[0])
		if key == "" || strings.ContainsAny(key, " \t") {
			return nil, fmt.Errorf("invalid header name %q", key)
		}
		m[textproto.CanonicalMIMEHeaderKey(key)] = strings.TrimSpace(parts[1])
	}
	return m, nil
}

// Merge returns a new map with the entries of extra applied over base
func Merge(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
