package state

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/scubides/homepage/i18n"
)

// DefaultDebounce is the coalescing window for preference writes.
const DefaultDebounce = 100 * time.Millisecond

// Persisted preference keys.
const (
	PrefLanguage = "language"
	PrefTheme    = "theme"
)

// keyOrder fixes the order changed keys are reported in.
var keyOrder = []Key{KeyLanguage, KeyTheme, KeyCurrentContent, KeyLoading, KeyError, KeyRoute}

// Callback receives the new snapshot, the previous one and the watched keys
// that changed.
type Callback func(next, prev AppState, changed []Key)

type subscription struct {
	id       uint64
	keys     map[Key]struct{}
	callback Callback
	removed  atomic.Bool
}

// Store owns the single AppState of one visitor.
type Store struct {
	mu      sync.Mutex
	state   AppState
	subs    []*subscription
	nextID  uint64
	cache   map[string]CacheEntry
	stats   CacheStats
	pending map[string]*pendingWrite

	persister Persister
	debounce  time.Duration
	now       func() time.Time
	logger    *zap.Logger
	closed    bool
}

type pendingWrite struct {
	timer *time.Timer
	value string
}

// Option configures a Store.
type Option func(*Store)

// WithPersister sets the durable storage for language and theme.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithDebounce overrides the preference write coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) { s.debounce = d }
}

// WithClock overrides time.Now for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithInitialLanguage sets the language used when nothing is persisted.
func WithInitialLanguage(lang i18n.Lang) Option {
	return func(s *Store) { s.state.Language = lang }
}

// New creates a Store, restoring language and theme from the persister.
// Storage failures are logged and the defaults kept.
func New(ctx context.Context, opts ...Option) *Store {
	s := &Store{
		state: AppState{
			Language: i18n.Default,
			Theme:    Light,
		},
		cache:    make(map[string]CacheEntry),
		pending:  make(map[string]*pendingWrite),
		debounce: DefaultDebounce,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	if s.persister == nil {
		return
	}
	if v, err := s.persister.Load(ctx, PrefLanguage); err != nil {
		s.logger.Warn("storage unavailable, using default language", zap.Error(err))
	} else if lang, ok := i18n.ParseLang(v); ok {
		s.state.Language = lang
	}
	if v, err := s.persister.Load(ctx, PrefTheme); err != nil {
		s.logger.Warn("storage unavailable, using default theme", zap.Error(err))
	} else if theme, ok := ParseTheme(v); ok {
		s.state.Theme = theme
	}
}

// State returns a copy of the current snapshot.
func (s *Store) State() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Get returns a single field of the current snapshot.
func (s *Store) Get(key Key) any {
	return s.State().Get(key)
}

// Language is shorthand for the current language.
func (s *Store) Language() i18n.Lang {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Language
}

// Theme is shorthand for the current theme.
func (s *Store) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Theme
}

// SetState merges p into a new snapshot and synchronously notifies, in
// subscription order, every subscriber watching a changed key. A change of
// language or theme schedules a debounced write to the persister. An invalid
// patch leaves the state untouched.
func (s *Store) SetState(p Patch) error {
	s.mu.Lock()
	prev := s.state.clone()
	next := s.state
	changed, err := p.apply(&next)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	for _, k := range changed {
		switch k {
		case KeyLanguage:
			s.schedule(PrefLanguage, string(next.Language))
		case KeyTheme:
			s.schedule(PrefTheme, string(next.Theme))
		}
	}
	subs := append([]*subscription(nil), s.subs...)
	snapshot := s.state.clone()
	s.mu.Unlock()

	changed = ordered(changed)
	for _, sub := range subs {
		if sub.removed.Load() {
			continue
		}
		var hit []Key
		for _, k := range changed {
			if _, ok := sub.keys[k]; ok {
				hit = append(hit, k)
			}
		}
		if len(hit) > 0 {
			s.notify(sub, snapshot, prev, hit)
		}
	}
	return nil
}

func (s *Store) notify(sub *subscription, next, prev AppState, changed []Key) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("state subscriber panicked", zap.Any("panic", r))
		}
	}()
	sub.callback(next, prev, changed)
}

func ordered(keys []Key) []Key {
	set := make(map[Key]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	out := make([]Key, 0, len(keys))
	for _, k := range keyOrder {
		if _, ok := set[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Subscribe registers cb for changes to any of keys. The returned func
// removes the subscription; calling it more than once is harmless.
func (s *Store) Subscribe(cb Callback, keys ...Key) (unsubscribe func()) {
	sub := &subscription{keys: make(map[Key]struct{}, len(keys)), callback: cb}
	for _, k := range keys {
		sub.keys[k] = struct{}{}
	}
	s.mu.Lock()
	sub.id = s.nextID
	s.nextID++
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, other := range s.subs {
			if other.id == sub.id {
				sub.removed.Store(true)
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// schedule must be called with s.mu held.
func (s *Store) schedule(key, value string) {
	if s.persister == nil || s.closed {
		return
	}
	if p, ok := s.pending[key]; ok {
		p.timer.Stop()
	}
	pw := &pendingWrite{value: value}
	pw.timer = time.AfterFunc(s.debounce, func() { s.fire(key, pw) })
	s.pending[key] = pw
}

func (s *Store) fire(key string, pw *pendingWrite) {
	s.mu.Lock()
	if s.pending[key] != pw {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.mu.Unlock()
	s.write(key, pw.value)
}

func (s *Store) write(key, value string) {
	if err := s.persister.Save(context.Background(), key, value); err != nil {
		s.logger.Warn("failed to persist preference",
			zap.String("key", key), zap.String("value", value), zap.Error(err))
	}
}

// Flush performs pending preference writes immediately.
func (s *Store) Flush() {
	s.mu.Lock()
	pending := s.pending
	s.pending = make(map[string]*pendingWrite)
	s.mu.Unlock()
	for key, pw := range pending {
		if pw.timer.Stop() {
			s.write(key, pw.value)
		}
	}
}

// Close flushes pending writes and drops subscribers and cache.
func (s *Store) Close() {
	s.Flush()
	s.mu.Lock()
	s.closed = true
	for _, sub := range s.subs {
		sub.removed.Store(true)
	}
	s.subs = nil
	s.cache = make(map[string]CacheEntry)
	s.mu.Unlock()
}
