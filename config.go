package homepage

import (
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/scubides/homepage/i18n"
)

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string // Site name used in feeds (default "Sebastian Cubides")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS

	Addr       string // Listen address (default ":3000")
	ContentDir string // Directory holding content/ and images/ (default "site")
	ContentURL string // When set, markdown is fetched from this base URL instead of ContentDir
	LocalesDir string // Optional directory of en.json/es.json overlaying the built-in translations

	NegotiateLanguage bool // First visits pick their language from Accept-Language (default off: English)

	DatabasePath string        // SQLite path for visitor preferences (default "data/homepage.db")
	PrefsMaxAge  time.Duration // Preferences untouched this long are pruned (default 365 days)

	SessionSecret      string        // Required: session cookie secret
	CookieSecure       bool          // Set true for HTTPS
	SessionIdleTimeout time.Duration // Idle visitor sessions are torn down after this (default 30min)

	CacheTTL      time.Duration // Content cache TTL (default 5min)
	DiscoverLists bool          // Probe post1, post2, ... instead of reading metadata.yaml
	Watch         bool          // Reload content caches when ContentDir changes

	LogLevel string // debug, info, warn, error (default "info")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = i18n.Defaults().T(i18n.English, "site.name")
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "site"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/homepage.db"
	}
	if c.PrefsMaxAge == 0 {
		c.PrefsMaxAge = 365 * 24 * time.Hour
	}
	if c.SessionIdleTimeout == 0 {
		c.SessionIdleTimeout = 30 * time.Minute
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithLogger sets the logger (default built from LogLevel).
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithContentFS reads content and images from fsys instead of ContentDir.
func WithContentFS(fsys fs.FS) Option {
	return func(a *App) {
		a.contentFS = fsys
	}
}

// WithTable replaces the translation table.
func WithTable(t i18n.Table) Option {
	return func(a *App) {
		a.table = t
	}
}
