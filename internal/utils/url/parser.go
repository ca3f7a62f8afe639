package urlutil

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ValidateURL checks that urlStr is an absolute http(s) or file address
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	switch parsed.Scheme {
	case "http", "https":
		if parsed.Host == "" {
			return fmt.Errorf("invalid URL: missing host")
		}
	case "file":
		if parsed.Path == "" {
			return fmt.Errorf("invalid URL: missing path")
		}
	default:
		return fmt.Errorf("invalid URL scheme: must be http, https or file, got %q", parsed.Scheme)
	}

	return nil
}

// IsRemote reports whether target is fetched over HTTP
func IsRemote(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

// LocalPath returns the filesystem path for a file:// address or a bare path
func LocalPath(target string) string {
	if strings.HasPrefix(target, "file://") {
		if u, err := url.Parse(target); err == nil {
			return filepath.FromSlash(u.Path)
		}
		return strings.TrimPrefix(target, "file://")
	}
	return target
}

// FileURL turns a filesystem path into a file:// address
func FileURL(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

// ResolveURL resolves a possibly-relative href against a base URL and returns a string
func ResolveURL(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(u).String()
}

// Hostname returns the host part of target, or "" for local files
func Hostname(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
