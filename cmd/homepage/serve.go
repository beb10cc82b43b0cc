package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scubides/homepage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site",
	Long: `serve starts the web server. Visitor preferences are kept in SQLite;
with --watch, edits under content/ clear the caches without a restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := siteConfig()
		logger, err := homepage.NewLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()

		app := homepage.New(cfg, homepage.WithLogger(logger))
		defer app.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() { errc <- app.Start() }()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("shutdown failed", zap.Error(err))
		}
		return <-errc
	},
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", ":3000", "listen address")
	f.Bool("watch", false, "clear caches when content files change")
	f.Bool("discover", false, "discover posts and projects by probing instead of reading metadata.yaml")
	f.Bool("negotiate-language", false, "pick a first visit's language from Accept-Language")
	_ = v.BindPFlag("addr", f.Lookup("addr"))
	_ = v.BindPFlag("watch", f.Lookup("watch"))
	_ = v.BindPFlag("discover_lists", f.Lookup("discover"))
	_ = v.BindPFlag("negotiate_language", f.Lookup("negotiate-language"))
}

func siteConfig() homepage.SiteConfig {
	return homepage.SiteConfig{
		Name:               v.GetString("name"),
		URL:                v.GetString("url"),
		Description:        v.GetString("description"),
		Addr:               v.GetString("addr"),
		ContentDir:         v.GetString("content_dir"),
		ContentURL:         v.GetString("content_url"),
		LocalesDir:         v.GetString("locales_dir"),
		NegotiateLanguage:  v.GetBool("negotiate_language"),
		DatabasePath:       v.GetString("database_path"),
		PrefsMaxAge:        v.GetDuration("prefs_max_age"),
		SessionSecret:      v.GetString("session_secret"),
		CookieSecure:       v.GetBool("cookie_secure"),
		SessionIdleTimeout: v.GetDuration("session_idle_timeout"),
		CacheTTL:           v.GetDuration("cache_ttl"),
		DiscoverLists:      v.GetBool("discover_lists"),
		Watch:              v.GetBool("watch"),
		LogLevel:           v.GetString("log_level"),
	}
}
