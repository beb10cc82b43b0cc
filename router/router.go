// Package router maps site URLs to views rendered into the visitor's
// document, and keeps the visitor's navigation history.
package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/scubides/homepage/component"
	"github.com/scubides/homepage/dom"
	"github.com/scubides/homepage/i18n"
	"github.com/scubides/homepage/state"
)

// ErrStale is returned when a newer navigation started before a render
// finished; the stale render is discarded.
var ErrStale = errors.New("render superseded by a newer navigation")

// Result describes a committed render.
type Result struct {
	Route  state.Route
	Status int
	Title  string
}

// Router renders routes into a Document. It is not safe for concurrent
// use; the owning session serializes calls.
type Router struct {
	doc      *dom.Document
	deps     component.Deps
	registry *component.Registry
	routes   map[string]Route
	notFound Route
	history  History
	token    uint64
	logger   *zap.Logger

	header      *component.Header
	themeToggle *component.ThemeToggle
	shell       []*component.Component
	page        []*component.Component
	unsubs      []func()
	last        Result
}

// Option configures a Router.
type Option func(*Router)

// WithRoutes replaces the route table.
func WithRoutes(routes map[string]Route) Option {
	return func(r *Router) { r.routes = routes }
}

// WithRegistry sets the component registry.
func WithRegistry(reg *component.Registry) Option {
	return func(r *Router) { r.registry = reg }
}

// New returns a router writing to doc.
func New(doc *dom.Document, deps component.Deps, opts ...Option) *Router {
	r := &Router{
		doc:      doc,
		deps:     deps,
		registry: component.NewRegistry(),
		routes:   DefaultRoutes(),
		notFound: NotFoundRoute,
		logger:   deps.Logger,
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.deps.Table == nil {
		r.deps.Table = i18n.Defaults()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Document returns the document the router renders into.
func (r *Router) Document() *dom.Document { return r.doc }

// History returns the navigation history.
func (r *Router) History() *History { return &r.history }

// Header returns the mounted header, or nil before Start.
func (r *Router) Header() *component.Header { return r.header }

// Last returns the most recent committed render.
func (r *Router) Last() Result { return r.last }

// Start mounts the page shell (header, toggles, status components) and
// subscribes the document to theme and language changes.
func (r *Router) Start(ctx context.Context) error {
	mount := func(kind component.Kind, container string) (*component.Component, error) {
		c, err := r.registry.New(kind, r.deps, nil)
		if err != nil {
			return nil, err
		}
		if err := c.Mount(ctx, r.doc.ByID(container)); err != nil {
			return nil, err
		}
		r.shell = append(r.shell, c)
		return c, nil
	}
	h, err := mount(component.KindHeader, dom.HeaderRootID)
	if err != nil {
		return err
	}
	r.header, _ = h.Impl().(*component.Header)
	tt, err := mount(component.KindThemeToggle, component.ThemeSlotID)
	if err != nil {
		return err
	}
	r.themeToggle, _ = tt.Impl().(*component.ThemeToggle)
	for _, m := range []struct {
		kind component.Kind
		slot string
	}{
		{component.KindLanguageToggle, component.LanguageSlotID},
		{component.KindLoading, dom.StatusRootID},
		{component.KindError, dom.StatusRootID},
	} {
		if _, err := mount(m.kind, m.slot); err != nil {
			return err
		}
	}

	r.applyTheme(r.deps.Store.Theme())
	bg := context.WithoutCancel(ctx)
	r.unsubs = append(r.unsubs,
		r.deps.Store.Subscribe(func(next, _ state.AppState, _ []state.Key) {
			r.applyTheme(next.Theme)
		}, state.KeyTheme),
		r.deps.Store.Subscribe(func(state.AppState, state.AppState, []state.Key) {
			if _, err := r.Refresh(bg); err != nil && !errors.Is(err, ErrStale) {
				r.logger.Warn("re-render after language change failed", zap.Error(err))
			}
		}, state.KeyLanguage),
	)
	return nil
}

func (r *Router) applyTheme(t state.Theme) {
	dom.ToggleClass(r.doc.Body, "dark-mode", t == state.Dark)
	dom.SetAttr(r.doc.Root, "data-theme", string(t))
}

// Navigate shows path with params, pushing a history entry unless it is
// already the current one.
func (r *Router) Navigate(ctx context.Context, path string, params map[string]string) (Result, error) {
	route := state.Route{Path: path, Params: params}
	r.history.Push(route)
	return r.render(ctx, route)
}

// Restore re-resolves rawURL as a back or forward navigation of the browser
// does, moving to the matching history entry. A URL missing from the history
// (another tab on the same session) is pushed so Refresh shows it again.
func (r *Router) Restore(ctx context.Context, rawURL string) (Result, error) {
	route := ParseURL(rawURL)
	if !r.history.Seek(route) {
		r.history.Push(route)
	}
	return r.render(ctx, route)
}

// Back shows the previous history entry.
func (r *Router) Back(ctx context.Context) (Result, error) {
	route, ok := r.history.Back()
	if !ok {
		return r.last, nil
	}
	return r.render(ctx, route)
}

// Forward shows the next history entry.
func (r *Router) Forward(ctx context.Context) (Result, error) {
	route, ok := r.history.Forward()
	if !ok {
		return r.last, nil
	}
	return r.render(ctx, route)
}

// Refresh re-renders the current entry, for example after a language
// change.
func (r *Router) Refresh(ctx context.Context) (Result, error) {
	route, ok := r.history.Current()
	if !ok {
		return r.last, nil
	}
	return r.render(ctx, route)
}

func (r *Router) resolve(path string) Route {
	if route, ok := r.routes[path]; ok {
		return route
	}
	return r.notFound
}

// render runs the route's handler into a detached main and commits it to
// the document, unless another render started in the meantime.
func (r *Router) render(ctx context.Context, route state.Route) (Result, error) {
	r.token++
	token := r.token

	if err := r.deps.Store.SetState(state.Patch{state.KeyRoute: route, state.KeyError: ""}); err != nil {
		return Result{}, err
	}
	handler := r.resolve(route.Path)
	page := &Page{
		Main:   dom.El("div"),
		Params: route.Clone().Params,
		Lang:   r.deps.Store.Language(),
		Status: http.StatusOK,
	}
	if page.Params == nil {
		page.Params = map[string]string{}
	}

	err := handler.Handler(ctx, r, page)
	if token != r.token {
		r.discard(page)
		r.logger.Debug("discarding stale render", zap.String("url", route.URL()))
		return Result{}, ErrStale
	}
	if err != nil {
		r.discard(page)
		return Result{}, fmt.Errorf("render %s: %w", route.URL(), err)
	}

	for _, c := range r.page {
		c.Unmount()
	}
	r.page = page.components
	dom.ReplaceChildren(r.doc.Main, dom.Children(page.Main)...)

	title := r.finish(route, handler, page)
	r.last = Result{Route: route, Status: page.Status, Title: title}
	return r.last, nil
}

func (r *Router) discard(p *Page) {
	for _, c := range p.components {
		c.Unmount()
	}
}

// finish re-translates the document, refreshes the toggles and the active
// nav link, and sets the title.
func (r *Router) finish(route state.Route, handler Route, p *Page) string {
	lang := r.deps.Store.Language()
	table := r.deps.Table
	i18n.TranslateNode(r.doc.Root, table, lang)
	if r.themeToggle != nil {
		r.themeToggle.Refresh()
	}
	if r.header != nil {
		r.header.SetActive(route.Path)
	}

	site := table.T(lang, "site.name")
	title := p.Title
	if title == "" && handler.TitleKey != homeTitleKey {
		title = table.T(lang, handler.TitleKey)
	}
	full := site
	if title != "" {
		full = title + " | " + site
	}
	r.doc.SetTitle(full)
	return full
}

// Close unmounts every component and drops the document subscriptions.
func (r *Router) Close() {
	for _, c := range r.page {
		c.Unmount()
	}
	r.page = nil
	for _, c := range r.shell {
		c.Unmount()
	}
	r.shell = nil
	for _, u := range r.unsubs {
		u()
	}
	r.unsubs = nil
}
