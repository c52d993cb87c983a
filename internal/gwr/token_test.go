package gwr

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// scriptedPoster returns canned responses in order and records every payload.
type scriptedPoster struct {
	responses []string
	errs      []error
	payloads  []string
}

func (p *scriptedPoster) Post(_ context.Context, payload string) (string, error) {
	p.payloads = append(p.payloads, payload)
	i := len(p.payloads) - 1
	var err error
	if i < len(p.errs) {
		err = p.errs[i]
	}
	var resp string
	if i < len(p.responses) {
		resp = p.responses[i]
	}
	return resp, err
}

func tokenPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "token.json")
}

func TestLoadMissingFile(t *testing.T) {
	m := NewTokenManager(tokenPath(t), &scriptedPoster{})
	if _, ok := m.Load(); ok {
		t.Error("missing file should report needs-sync")
	}
}

func TestLoadGarbageFile(t *testing.T) {
	path := tokenPath(t)
	for _, contents := range []string{"", "{not json", `{"token":""}`} {
		if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
			t.Fatal(err)
		}
		m := NewTokenManager(path, &scriptedPoster{})
		if _, ok := m.Load(); ok {
			t.Errorf("contents %q should report needs-sync", contents)
		}
	}
}

func TestSyncRoundTrip(t *testing.T) {
	path := tokenPath(t)
	poster := &scriptedPoster{
		responses: []string{"<gip><version>1</version><rc>200</rc><token>abc123</token></gip>"},
	}
	m := NewTokenManager(path, poster)

	token, err := m.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if token != "abc123" {
		t.Errorf("Sync returned %q, want abc123", token)
	}

	// The login payload carries generated credentials, not a token.
	values, err := url.ParseQuery(poster.payloads[0])
	if err != nil {
		t.Fatal(err)
	}
	inner := values.Get("data")
	if !strings.Contains(inner, "<email>") || !strings.Contains(inner, "<password>") {
		t.Errorf("login payload missing credentials: %q", inner)
	}

	// A fresh manager loads exactly the persisted token.
	reloaded := NewTokenManager(path, &scriptedPoster{})
	got, ok := reloaded.Load()
	if !ok || got != "abc123" {
		t.Errorf("Load after Sync = %q, %v; want abc123, true", got, ok)
	}
}

func TestSyncNotInSyncMode(t *testing.T) {
	path := tokenPath(t)
	poster := &scriptedPoster{
		responses: []string{"<gip><version>1</version><rc>404</rc></gip>"},
	}
	m := NewTokenManager(path, poster)

	if _, err := m.Sync(context.Background()); !errors.Is(err, ErrNotInSyncMode) {
		t.Fatalf("Sync = %v, want ErrNotInSyncMode", err)
	}

	// No token file may be written on a refused handshake.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("refused handshake must not write a token file")
	}
}

func TestSyncGatewayUnavailable(t *testing.T) {
	poster := &scriptedPoster{errs: []error{ErrGatewayUnavailable}}
	m := NewTokenManager(tokenPath(t), poster)
	if _, err := m.Sync(context.Background()); !errors.Is(err, ErrGatewayUnavailable) {
		t.Errorf("transport failure should surface as ErrGatewayUnavailable, got %v", err)
	}

	// An empty body with no transport error means the same thing.
	m = NewTokenManager(tokenPath(t), &scriptedPoster{responses: []string{""}})
	if _, err := m.Sync(context.Background()); !errors.Is(err, ErrGatewayUnavailable) {
		t.Errorf("empty response should surface as ErrGatewayUnavailable, got %v", err)
	}
}

func TestInvalidate(t *testing.T) {
	path := tokenPath(t)
	if err := os.WriteFile(path, []byte(`{"token":"abc123"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	m := NewTokenManager(path, &scriptedPoster{})
	if _, ok := m.Load(); !ok {
		t.Fatal("expected token to load")
	}
	m.Invalidate()
	if m.Token() != "" {
		t.Error("Invalidate should drop the in-memory token")
	}
}
