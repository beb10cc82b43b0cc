package homepage

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scubides/homepage/component"
	"github.com/scubides/homepage/content"
	"github.com/scubides/homepage/dom"
	"github.com/scubides/homepage/i18n"
	"github.com/scubides/homepage/router"
	"github.com/scubides/homepage/state"
)

// Session is one visitor's running site: their state store, the page
// document and the router rendering into it. Requests of one visitor are
// serialized through Do.
type Session struct {
	ID      string
	Store   *state.Store
	Content *content.Manager
	Router  *router.Router

	mu       sync.Mutex
	lastSeen time.Time
	closed   bool
}

// Do runs fn with the session locked. It reports false when the session
// was already torn down.
func (s *Session) Do(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	fn()
	return true
}

// Close unmounts every component, flushes pending preference writes and
// clears the cache.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.Router.Close()
	s.Store.Close()
}

func (a *App) newSession(ctx context.Context, id string, lang i18n.Lang) (*Session, error) {
	logger := a.Logger.With(zap.String("visitor", id))
	opts := []state.Option{
		state.WithLogger(logger),
		state.WithInitialLanguage(lang),
	}
	if a.Prefs != nil {
		opts = append(opts, state.WithPersister(a.Prefs.Scope(id)))
	}
	store := state.New(ctx, opts...)

	manager := content.NewManager(store, a.fetcher,
		content.WithLister(a.lists),
		content.WithTypesetQueue(a.typeset),
		content.WithTable(a.table),
		content.WithCacheTTL(a.Config.CacheTTL),
		content.WithLogger(logger),
	)
	doc := dom.NewDocument([]string{"/assets/site.css"}, []string{"/assets/site.js"})
	r := router.New(doc, component.Deps{
		Store:   store,
		Table:   a.table,
		Content: manager,
		Logger:  logger,
	})
	if err := r.Start(ctx); err != nil {
		r.Close()
		store.Close()
		return nil, err
	}
	return &Session{ID: id, Store: store, Content: manager, Router: r}, nil
}

// SessionRegistry holds the live sessions by visitor id and tears down the
// ones idle for longer than the timeout.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idle     time.Duration
	create   func(ctx context.Context, id string, lang i18n.Lang) (*Session, error)
	now      func() time.Time
}

// NewSessionRegistry creates a registry building sessions with create.
func NewSessionRegistry(idle time.Duration, create func(ctx context.Context, id string, lang i18n.Lang) (*Session, error)) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Session),
		idle:     idle,
		create:   create,
		now:      time.Now,
	}
}

// Get returns the visitor's session, creating it with lang as the initial
// language when there is none.
func (r *SessionRegistry) Get(ctx context.Context, id string, lang i18n.Lang) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.lastSeen = r.now()
		return s, nil
	}
	s, err := r.create(ctx, id, lang)
	if err != nil {
		return nil, err
	}
	s.lastSeen = r.now()
	r.sessions[id] = s
	return s, nil
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Each calls fn for every live session.
func (r *SessionRegistry) Each(fn func(*Session)) {
	r.mu.Lock()
	list := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		list = append(list, s)
	}
	r.mu.Unlock()
	for _, s := range list {
		fn(s)
	}
}

// Evict closes the sessions idle for longer than the timeout and returns
// how many were removed.
func (r *SessionRegistry) Evict() int {
	cutoff := r.now().Add(-r.idle)
	r.mu.Lock()
	var stale []*Session
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// StartEviction runs Evict every interval until the returned stop function
// is called.
func (r *SessionRegistry) StartEviction(interval time.Duration, logger *zap.Logger) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				if n := r.Evict(); n > 0 {
					logger.Debug("evicted idle sessions", zap.Int("count", n))
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// CloseAll tears down every session.
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	list := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, s := range list {
		s.Close()
	}
}
