package homepage

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/scubides/homepage/i18n"
	"github.com/scubides/homepage/router"
	"github.com/scubides/homepage/state"
)

// HistoryRestoreHeader marks a request replaying a history entry (back or
// forward) rather than following a link.
const HistoryRestoreHeader = "HX-History-Restore-Request"

func (a *App) setupRoutes() {
	e := a.Echo

	assets, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.GET("/assets/*", echo.WrapHandler(http.StripPrefix("/assets/", http.FileServer(http.FS(assets)))))
	e.GET("/content/*", a.handleRawContent)
	e.GET("/images/*", a.handleImage)
	e.GET("/static/images/*", handleLegacyImage)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.POST("/toggle/theme", a.handleToggleTheme)
	e.POST("/toggle/language", a.handleToggleLanguage)

	e.GET("/", a.handlePage)
	e.GET("/:page", a.handlePage)
}

// withSession runs fn holding the visitor's session. A session evicted
// between lookup and lock is replaced once.
func (a *App) withSession(c echo.Context, fn func(*Session) error) error {
	id, _, err := VisitorID(c)
	if err != nil {
		return err
	}
	lang := i18n.Default
	if a.Config.NegotiateLanguage {
		lang = i18n.Negotiate(c.Request().Header.Get("Accept-Language"))
	}
	for range 2 {
		s, err := a.Sessions.Get(c.Request().Context(), id, lang)
		if err != nil {
			return err
		}
		var ferr error
		if s.Do(func() { ferr = fn(s) }) {
			return ferr
		}
	}
	return echo.NewHTTPError(http.StatusServiceUnavailable)
}

func (a *App) handlePage(c echo.Context) error {
	uri := c.Request().URL.RequestURI()
	restore := c.Request().Header.Get(HistoryRestoreHeader) == "true"
	return a.withSession(c, func(s *Session) error {
		var (
			res router.Result
			err error
		)
		if restore {
			res, err = s.Router.Restore(c.Request().Context(), uri)
		} else {
			route := router.ParseURL(uri)
			res, err = s.Router.Navigate(c.Request().Context(), route.Path, route.Params)
		}
		if err != nil {
			return err
		}
		return RenderStatus(c, res.Status, Document(s.Router.Document()))
	})
}

func (a *App) handleToggleTheme(c echo.Context) error {
	return a.withSession(c, func(s *Session) error {
		next := s.Store.Theme().Other()
		if t, ok := state.ParseTheme(c.FormValue("theme")); ok {
			next = t
		}
		if err := s.Store.SetState(state.Patch{state.KeyTheme: next}); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, currentURL(s))
	})
}

func (a *App) handleToggleLanguage(c echo.Context) error {
	return a.withSession(c, func(s *Session) error {
		next := s.Store.Language().Other()
		if l, ok := i18n.ParseLang(c.FormValue("lang")); ok {
			next = l
		}
		if err := s.Store.SetState(state.Patch{state.KeyLanguage: next}); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, currentURL(s))
	})
}

func currentURL(s *Session) string {
	return "/" + s.Store.State().Route.URL()
}

// handleRawContent serves the markdown sources, so another instance can
// fetch them over HTTP.
func (a *App) handleRawContent(c echo.Context) error {
	name := path.Join("content", c.Param("*"))
	if !fs.ValidPath(name) || (!strings.HasSuffix(name, ".md") && !strings.HasSuffix(name, ".yaml")) {
		return echo.ErrNotFound
	}
	data, err := fs.ReadFile(a.contentFS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return echo.ErrNotFound
		}
		return err
	}
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", data)
}

func handleLegacyImage(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/images/"+c.Param("*"))
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nSitemap: " + strings.TrimRight(a.Config.URL, "/") + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound && isPagePath(c.Request()) {
		// Unknown multi-segment paths get the site's not-found view.
		if rerr := a.handlePage(c); rerr == nil {
			return
		}
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

func isPagePath(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	for _, prefix := range []string{"/assets/", "/content/", "/images/"} {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return false
		}
	}
	return true
}
