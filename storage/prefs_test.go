package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/scubides/homepage/state"
)

func setupTestPrefs(t *testing.T) *Prefs {
	t.Helper()
	p, err := Open(filepath.Join(t.TempDir(), "data", "prefs.db"), nil)
	if err != nil {
		t.Fatalf("failed to open prefs: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestGetMissingReturnsEmpty(t *testing.T) {
	p := setupTestPrefs(t)
	v, err := p.Get(context.Background(), "visitor", "theme")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v != "" {
		t.Errorf("expected empty value, got %q", v)
	}
}

func TestSetAndGet(t *testing.T) {
	p := setupTestPrefs(t)
	ctx := context.Background()

	if err := p.Set(ctx, "a", "theme", "dark"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := p.Set(ctx, "a", "theme", "light"); err != nil {
		t.Fatalf("Set (update) failed: %v", err)
	}
	if err := p.Set(ctx, "b", "theme", "dark"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if v, _ := p.Get(ctx, "a", "theme"); v != "light" {
		t.Errorf("visitor a theme = %q, want light", v)
	}
	if v, _ := p.Get(ctx, "b", "theme"); v != "dark" {
		t.Errorf("visitor b theme = %q, want dark", v)
	}
}

func TestPrune(t *testing.T) {
	p := setupTestPrefs(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	p.now = func() time.Time { return now.Add(-48 * time.Hour) }
	if err := p.Set(ctx, "old", "language", "es"); err != nil {
		t.Fatal(err)
	}
	p.now = func() time.Time { return now }
	if err := p.Set(ctx, "new", "language", "es"); err != nil {
		t.Fatal(err)
	}

	n, err := p.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d rows, want 1", n)
	}
	if v, _ := p.Get(ctx, "old", "language"); v != "" {
		t.Error("stale preference kept")
	}
	if v, _ := p.Get(ctx, "new", "language"); v != "es" {
		t.Error("fresh preference pruned")
	}
}

func TestScopeBacksStateStore(t *testing.T) {
	p := setupTestPrefs(t)
	ctx := context.Background()

	s := state.New(ctx, state.WithPersister(p.Scope("visitor-1")), state.WithDebounce(time.Hour))
	if err := s.SetState(state.Patch{state.KeyTheme: state.Dark}); err != nil {
		t.Fatal(err)
	}
	s.Flush()

	reloaded := state.New(ctx, state.WithPersister(p.Scope("visitor-1")))
	if got := reloaded.Theme(); got != state.Dark {
		t.Errorf("theme = %q, want dark", got)
	}

	other := state.New(ctx, state.WithPersister(p.Scope("visitor-2")))
	if got := other.Theme(); got != state.Light {
		t.Errorf("other visitor theme = %q, want light", got)
	}
}
