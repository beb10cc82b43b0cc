package state

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/scubides/homepage/i18n"
	"github.com/scubides/homepage/model"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type failingPersister struct{}

func (failingPersister) Load(context.Context, string) (string, error) {
	return "", errors.New("storage unavailable")
}

func (failingPersister) Save(context.Context, string, string) error {
	return errors.New("storage unavailable")
}

func TestDefaults(t *testing.T) {
	s := New(context.Background())
	st := s.State()
	if st.Language != i18n.English {
		t.Errorf("language = %q, want en", st.Language)
	}
	if st.Theme != Light {
		t.Errorf("theme = %q, want light", st.Theme)
	}
	if st.CurrentContent != nil || st.Loading || st.Error != "" {
		t.Errorf("unexpected initial state: %+v", st)
	}
}

func TestThemeSubscriberCalledOnce(t *testing.T) {
	s := New(context.Background())

	var calls int
	var got []Key
	s.Subscribe(func(next, prev AppState, changed []Key) {
		calls++
		got = changed
		if next.Theme != Dark || prev.Theme != Light {
			t.Errorf("snapshots = %q -> %q", prev.Theme, next.Theme)
		}
	}, KeyTheme)

	if err := s.SetState(Patch{KeyTheme: Dark}); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if !reflect.DeepEqual(got, []Key{KeyTheme}) {
		t.Errorf("changed = %v, want [theme]", got)
	}

	if err := s.SetState(Patch{KeyLanguage: i18n.Spanish}); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if calls != 1 {
		t.Errorf("theme subscriber called for language change")
	}
}

func TestSetStateUnchangedValueDoesNotNotify(t *testing.T) {
	s := New(context.Background())
	called := false
	s.Subscribe(func(AppState, AppState, []Key) { called = true }, KeyTheme)
	if err := s.SetState(Patch{KeyTheme: Light}); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("subscriber notified for identical value")
	}
}

func TestRouteAlwaysCountsAsChanged(t *testing.T) {
	s := New(context.Background())
	var calls int
	s.Subscribe(func(AppState, AppState, []Key) { calls++ }, KeyRoute)
	r := Route{Path: "index.html"}
	s.SetState(Patch{KeyRoute: r})
	s.SetState(Patch{KeyRoute: r})
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestChangedKeysOrdered(t *testing.T) {
	s := New(context.Background())
	var got []Key
	s.Subscribe(func(_, _ AppState, changed []Key) { got = changed },
		KeyRoute, KeyLoading, KeyLanguage, KeyTheme)
	err := s.SetState(Patch{
		KeyRoute:    Route{Path: "blogs.html"},
		KeyLoading:  true,
		KeyTheme:    Dark,
		KeyLanguage: i18n.Spanish,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []Key{KeyLanguage, KeyTheme, KeyLoading, KeyRoute}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("changed = %v, want %v", got, want)
	}
}

func TestInvalidPatchLeavesStateUntouched(t *testing.T) {
	s := New(context.Background())
	tests := []Patch{
		{KeyTheme: "dark"},
		{KeyTheme: Theme("purple")},
		{KeyLanguage: i18n.Lang("fr")},
		{KeyLoading: "yes"},
		{Key("nope"): 1},
		{KeyTheme: Dark, KeyError: 42},
	}
	for _, p := range tests {
		if err := s.SetState(p); err == nil {
			t.Errorf("SetState(%v) succeeded, want error", p)
		}
	}
	if st := s.State(); st.Theme != Light || st.Loading {
		t.Errorf("state mutated: %+v", st)
	}
}

func TestUnsubscribe(t *testing.T) {
	s := New(context.Background())
	var calls int
	unsub := s.Subscribe(func(AppState, AppState, []Key) { calls++ }, KeyLoading)
	s.SetState(Patch{KeyLoading: true})
	unsub()
	unsub()
	s.SetState(Patch{KeyLoading: false})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if n := s.Subscribers(); n != 0 {
		t.Errorf("subscribers = %d, want 0", n)
	}
}

func TestSubscriberPanicIsContained(t *testing.T) {
	s := New(context.Background())
	second := false
	s.Subscribe(func(AppState, AppState, []Key) { panic("boom") }, KeyError)
	s.Subscribe(func(AppState, AppState, []Key) { second = true }, KeyError)
	if err := s.SetState(Patch{KeyError: "failed"}); err != nil {
		t.Fatal(err)
	}
	if !second {
		t.Error("second subscriber not called")
	}
}

func TestStateIsCopy(t *testing.T) {
	s := New(context.Background())
	s.SetState(Patch{KeyRoute: Route{Path: "projects.html", Params: map[string]string{"project": "p1"}}})
	st := s.State()
	st.Route.Params["project"] = "changed"
	if got := s.State().Route.Params["project"]; got != "p1" {
		t.Errorf("params = %q, want p1", got)
	}
	if got := s.Get(KeyRoute).(Route).Path; got != "projects.html" {
		t.Errorf("Get(route).Path = %q", got)
	}
}

func TestCurrentContentPointerIdentity(t *testing.T) {
	s := New(context.Background())
	var calls int
	s.Subscribe(func(AppState, AppState, []Key) { calls++ }, KeyCurrentContent)
	a := &model.ContentRecord{Type: model.Page, ID: "home", Language: i18n.English}
	b := *a
	s.SetState(Patch{KeyCurrentContent: a})
	s.SetState(Patch{KeyCurrentContent: a})
	s.SetState(Patch{KeyCurrentContent: &b})
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestCacheRoundTripAndExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New(context.Background(), WithClock(clock.Now))

	s.SetCache("page:home:en", "v", time.Minute)
	got, ok := s.GetCache("page:home:en")
	if !ok || got != "v" {
		t.Fatalf("GetCache = %v, %v", got, ok)
	}

	clock.Advance(time.Minute + time.Second)
	if _, ok := s.GetCache("page:home:en"); ok {
		t.Fatal("expired entry returned")
	}
	if keys := s.CacheKeys(); len(keys) != 0 {
		t.Errorf("expired entry not purged: %v", keys)
	}

	stats := s.CacheStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.HitRate() != 0.5 {
		t.Errorf("hit rate = %v", stats.HitRate())
	}
}

func TestCacheDefaultTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := New(context.Background(), WithClock(clock.Now))
	s.SetCache("k", 1, 0)
	clock.Advance(DefaultCacheTTL - time.Second)
	if _, ok := s.GetCache("k"); !ok {
		t.Fatal("entry expired before default ttl")
	}
	clock.Advance(2 * time.Second)
	if _, ok := s.GetCache("k"); ok {
		t.Fatal("entry outlived default ttl")
	}
}

func TestClearCache(t *testing.T) {
	s := New(context.Background())
	for _, k := range []string{"blog:post1:en", "blog:post1:es", "project:p1:en"} {
		s.SetCache(k, k, time.Minute)
	}

	if err := s.ClearCache("^blog:"); err != nil {
		t.Fatal(err)
	}
	if got := s.CacheKeys(); !reflect.DeepEqual(got, []string{"project:p1:en"}) {
		t.Errorf("keys = %v", got)
	}

	if err := s.ClearCache("("); err == nil {
		t.Error("expected error for bad pattern")
	}

	if err := s.ClearCache(""); err != nil {
		t.Fatal(err)
	}
	if got := s.CacheKeys(); len(got) != 0 {
		t.Errorf("keys = %v, want none", got)
	}
}

func TestThemePersistsAcrossReload(t *testing.T) {
	p := NewMemoryPersister()
	s := New(context.Background(), WithPersister(p), WithDebounce(time.Hour))
	if err := s.SetState(Patch{KeyTheme: Dark}); err != nil {
		t.Fatal(err)
	}
	s.Flush()

	reloaded := New(context.Background(), WithPersister(p))
	if got := reloaded.Theme(); got != Dark {
		t.Errorf("theme = %q, want dark", got)
	}
}

func TestPersistenceDebounced(t *testing.T) {
	p := &countingPersister{MemoryPersister: NewMemoryPersister()}
	s := New(context.Background(), WithPersister(p), WithDebounce(20*time.Millisecond))
	s.SetState(Patch{KeyLanguage: i18n.Spanish})
	s.SetState(Patch{KeyLanguage: i18n.English})
	s.SetState(Patch{KeyLanguage: i18n.Spanish})

	time.Sleep(100 * time.Millisecond)
	if n := p.saves(); n != 1 {
		t.Errorf("saves = %d, want 1", n)
	}
	if v, _ := p.Load(context.Background(), PrefLanguage); v != "es" {
		t.Errorf("saved language = %q, want es", v)
	}
}

func TestUnchangedPreferenceNotPersisted(t *testing.T) {
	p := &countingPersister{MemoryPersister: NewMemoryPersister()}
	s := New(context.Background(), WithPersister(p), WithDebounce(time.Millisecond))
	s.SetState(Patch{KeyLanguage: i18n.English, KeyTheme: Light})
	s.Flush()

	time.Sleep(20 * time.Millisecond)
	if n := p.saves(); n != 0 {
		t.Errorf("saves = %d, want 0 for unchanged values", n)
	}
}

func TestStorageFailureFallsBackToDefaults(t *testing.T) {
	s := New(context.Background(), WithPersister(failingPersister{}), WithDebounce(time.Millisecond))
	if st := s.State(); st.Language != i18n.English || st.Theme != Light {
		t.Errorf("state = %+v, want defaults", st)
	}
	if err := s.SetState(Patch{KeyTheme: Dark}); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	s.Flush()
	if s.Theme() != Dark {
		t.Error("in-memory state lost after storage failure")
	}
}

func TestCloseFlushesAndDropsSubscribers(t *testing.T) {
	p := NewMemoryPersister()
	s := New(context.Background(), WithPersister(p), WithDebounce(time.Hour))
	s.Subscribe(func(AppState, AppState, []Key) {}, KeyTheme)
	s.SetState(Patch{KeyTheme: Dark})
	s.Close()
	if v, _ := p.Load(context.Background(), PrefTheme); v != "dark" {
		t.Errorf("theme not flushed on close: %q", v)
	}
	if s.Subscribers() != 0 {
		t.Error("subscribers kept after close")
	}
}

type countingPersister struct {
	*MemoryPersister
	mu sync.Mutex
	n  int
}

func (c *countingPersister) Save(ctx context.Context, key, value string) error {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
	return c.MemoryPersister.Save(ctx, key, value)
}

func (c *countingPersister) saves() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
