// Package homepage serves a bilingual markdown personal site. Every visitor
// gets a session running a state store, a content manager and a router
// over a server-side page document; requests drive navigation and the
// document is streamed back as HTML.
package homepage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/scubides/homepage/content"
	"github.com/scubides/homepage/i18n"
	"github.com/scubides/homepage/storage"
)

const (
	evictionInterval = time.Minute
	cleanupInterval  = 24 * time.Hour
	monitorInterval  = 30 * time.Second
)

// App wires the preference store, content sources, sessions, handlers and
// middleware together.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Prefs    *storage.Prefs
	Sessions *SessionRegistry
	Logger   *zap.Logger

	contentFS fs.FS
	fetcher   content.Fetcher
	lists     content.Lister
	catalog   *catalogSource
	listCache *content.ListCache
	typeset   *content.TypesetQueue
	table     i18n.Table
	stops     []func()
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Setup opens the preference store, builds the content sources and
// registers middleware and routes. Start calls it.
func (a *App) Setup() error {
	if a.Config.SessionSecret == "" {
		return errors.New("homepage: SessionSecret is required")
	}
	if a.Logger == nil {
		logger, err := NewLogger(a.Config.LogLevel)
		if err != nil {
			return fmt.Errorf("homepage: init logger: %w", err)
		}
		a.Logger = logger
	}
	if a.contentFS == nil {
		a.contentFS = os.DirFS(a.Config.ContentDir)
	}
	if a.table == nil {
		a.table = i18n.Defaults()
		if a.Config.LocalesDir != "" {
			t, err := i18n.LoadDir(a.Config.LocalesDir)
			if err != nil {
				return fmt.Errorf("homepage: load locales: %w", err)
			}
			a.table = t
		}
	}

	prefs, err := storage.Open(a.Config.DatabasePath, a.Logger)
	if err != nil {
		return fmt.Errorf("homepage: init preferences: %w", err)
	}
	a.Prefs = prefs
	a.stops = append(a.stops, prefs.StartCleanup(a.Config.PrefsMaxAge, cleanupInterval))

	if err := a.setupContent(); err != nil {
		return err
	}

	a.Sessions = NewSessionRegistry(a.Config.SessionIdleTimeout, a.newSession)
	a.stops = append(a.stops,
		a.Sessions.StartEviction(evictionInterval, a.Logger),
		a.startCacheMonitor(monitorInterval),
	)

	if a.Config.Watch && a.Config.ContentURL == "" {
		stop, err := a.watchContent()
		if err != nil {
			a.Logger.Warn("content watcher disabled", zap.Error(err))
		} else {
			a.stops = append(a.stops, stop)
		}
	}

	a.setupMiddleware()
	a.setupRoutes()
	return nil
}

func (a *App) setupContent() error {
	if a.Config.ContentURL != "" {
		f, err := content.NewHTTPFetcher(a.Config.ContentURL, nil)
		if err != nil {
			return fmt.Errorf("homepage: content url: %w", err)
		}
		a.fetcher = f
	} else {
		a.fetcher = content.DirFetcher{FS: a.contentFS}
	}

	if a.Config.DiscoverLists {
		a.listCache = content.NewListCache(a.fetcher, a.Config.CacheTTL)
		a.lists = a.listCache
	} else {
		a.catalog = newCatalogSource(a.contentFS, a.Logger)
		a.lists = a.catalog
	}

	a.typeset = content.NewTypesetQueue(content.MathMarker{}, a.Logger)
	return nil
}

// Start sets the app up and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.Logger.Info("serving site",
		zap.String("addr", a.Config.Addr),
		zap.String("content", a.Config.ContentDir),
	)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

// Close tears down every session and background job and closes the
// preference store. Call this when the app is shutting down.
func (a *App) Close() error {
	for _, stop := range a.stops {
		stop()
	}
	a.stops = nil
	if a.Sessions != nil {
		a.Sessions.CloseAll()
	}
	if a.typeset != nil {
		a.typeset.Close()
	}
	if a.Prefs != nil {
		return a.Prefs.Close()
	}
	return nil
}

// Invalidate drops every cached list and content record, so the next
// request reads the content source again.
func (a *App) Invalidate() {
	if a.listCache != nil {
		a.listCache.Invalidate()
	}
	if a.catalog != nil {
		a.catalog.Reload()
	}
	if a.Sessions != nil {
		a.Sessions.Each(func(s *Session) {
			s.Do(func() {
				if err := s.Store.ClearCache(""); err != nil {
					a.Logger.Warn("failed to clear session cache", zap.Error(err))
				}
			})
		})
	}
}
