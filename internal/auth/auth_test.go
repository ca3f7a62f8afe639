package auth

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
)

func TestFileStore_Lifecycle(t *testing.T) {
	store := NewFileStore(t.TempDir())

	session := NewSession("avito", "https://www.avito.ru", []Cookie{
		{Name: "u", Value: "abc", Domain: ".avito.ru", Path: "/"},
	})
	if err := store.Save(session); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load("avito")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded.Cookies, session.Cookies) {
		t.Errorf("cookies changed: %+v", loaded.Cookies)
	}

	names, err := store.List()
	if err != nil || !reflect.DeepEqual(names, []string{"avito"}) {
		t.Errorf("List = %v, %v", names, err)
	}

	if err := store.Delete("avito"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load("avito"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if err := store.Delete("avito"); err != nil {
		t.Errorf("deleting a missing session should succeed, got %v", err)
	}
}

func TestFileStore_Expired(t *testing.T) {
	store := NewFileStore(t.TempDir())
	past := float64(time.Now().Add(-time.Hour).Unix())

	session := NewSession("old", "https://www.avito.ru", []Cookie{
		{Name: "a", Value: "1", Expires: past},
		{Name: "b", Value: "2"},
	})
	if err := store.Save(session); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load("old"); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
	if err := store.Save(&SessionData{}); !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
}

func TestParseNetscape(t *testing.T) {
	input := strings.Join([]string{
		"# Netscape HTTP Cookie File",
		"",
		".avito.ru\tTRUE\t/\tTRUE\t1893456000\tsessid\tx1",
		"#HttpOnly_.avito.ru\tTRUE\t/\tFALSE\t0\tu\ty2",
		"broken line",
	}, "\n")

	cookies, err := ParseNetscape(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %+v", cookies)
	}
	if cookies[0].Name != "sessid" || !cookies[0].Secure || cookies[0].Expires != 1893456000 {
		t.Errorf("unexpected first cookie %+v", cookies[0])
	}
	if !cookies[1].HTTPOnly || cookies[1].Expires != 0 {
		t.Errorf("unexpected second cookie %+v", cookies[1])
	}
}

func TestParseJSON(t *testing.T) {
	cookies, err := ParseJSON(strings.NewReader(`[{"name":"u","value":"1","domain":".avito.ru","path":"/","sameSite":"Lax"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(cookies) != 1 || cookies[0].SameSite != "Lax" {
		t.Errorf("unexpected cookies %+v", cookies)
	}
	if _, err := ParseJSON(strings.NewReader(`{`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestCookieConversions(t *testing.T) {
	session := NewSession("s", "https://www.avito.ru", []Cookie{
		{Name: "u", Value: "1", Domain: ".avito.ru", Path: "/", SameSite: "lax", Expires: 1893456000},
		{Name: "v", Value: "2"},
	})

	params := session.CookieParams()
	if len(params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(params))
	}
	if params[0].SameSite != network.CookieSameSiteLax || params[0].Expires == nil {
		t.Errorf("unexpected first param %+v", params[0])
	}
	if params[1].URL != "https://www.avito.ru" {
		t.Errorf("domainless cookie should be scoped by URL, got %+v", params[1])
	}

	if got := session.Header(); got != "u=1; v=2" {
		t.Errorf("Header() = %q", got)
	}
}
