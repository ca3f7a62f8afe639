package urlutil

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://example.com/path",
		"file:///tmp/listing.html",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Fatalf("expected valid, got error: %v", err)
		}
	}

	invalid := []string{"ftp://example.com", "//example.com", "http:///", "file://"}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Fatalf("expected invalid for %s", u)
		}
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"https://www.avito.ru/sankt-peterburg/kvartiry", "/sankt-peterburg/kvartiry/1", "https://www.avito.ru/sankt-peterburg/kvartiry/1"},
		{"https://www.avito.ru/a", "https://other.example/b", "https://other.example/b"},
		{"file:///tmp/page.html", "flat.html", "file:///tmp/flat.html"},
	}
	for _, tt := range tests {
		if got := ResolveURL(tt.base, tt.href); got != tt.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
		}
	}
}

func TestLocalPath(t *testing.T) {
	if !IsRemote("https://example.com") || IsRemote("file:///tmp/x.html") {
		t.Fatal("IsRemote misclassified target")
	}
	if got := LocalPath("file:///tmp/x.html"); got != filepath.FromSlash("/tmp/x.html") {
		t.Errorf("unexpected local path %q", got)
	}
	if got := LocalPath("testdata/x.html"); got != "testdata/x.html" {
		t.Errorf("bare path should be unchanged, got %q", got)
	}
	if got := FileURL("x.html"); !strings.HasPrefix(got, "file://") || !strings.HasSuffix(got, "/x.html") {
		t.Errorf("unexpected file url %q", got)
	}
}
