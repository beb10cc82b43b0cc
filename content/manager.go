// Package content loads, caches and renders the site's markdown documents
// and the metadata of its list pages.
package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/scubides/homepage/dom"
	"github.com/scubides/homepage/i18n"
	"github.com/scubides/homepage/markdown"
	"github.com/scubides/homepage/model"
	"github.com/scubides/homepage/state"
)

// SmoothScrollAttr marks in-page anchors the client script scrolls to
// smoothly.
const SmoothScrollAttr = "data-smooth-scroll"

// Manager loads content for one visitor, caching records in the visitor's
// State Store.
type Manager struct {
	store    *state.Store
	fetcher  Fetcher
	lists    Lister
	typeset  *TypesetQueue
	table    i18n.Table
	cacheTTL time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLister sets the source of list metadata (default DefaultCatalog).
func WithLister(l Lister) ManagerOption {
	return func(m *Manager) { m.lists = l }
}

// WithTypesetQueue sets the math typesetting queue.
func WithTypesetQueue(q *TypesetQueue) ManagerOption {
	return func(m *Manager) { m.typeset = q }
}

// WithTable sets the translations used for placeholders and error blocks.
func WithTable(t i18n.Table) ManagerOption {
	return func(m *Manager) { m.table = t }
}

// WithCacheTTL sets how long fetched records stay cached.
func WithCacheTTL(d time.Duration) ManagerOption {
	return func(m *Manager) { m.cacheTTL = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager returns a Manager reading through f.
func NewManager(store *state.Store, f Fetcher, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    store,
		fetcher:  f,
		lists:    DefaultCatalog(),
		table:    i18n.Defaults(),
		cacheTTL: state.DefaultCacheTTL,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lists returns the list metadata source.
func (m *Manager) Lists() Lister { return m.lists }

// LoadContent returns the record for (t, id, lang), from cache when fresh.
// An empty lang means the store's current language. On a miss it sets
// loading, fetches, and stores either currentContent or error. Concurrent
// calls for the same key each fetch.
func (m *Manager) LoadContent(ctx context.Context, t model.ContentType, id string, lang i18n.Lang) (*model.ContentRecord, error) {
	if lang == "" {
		lang = m.store.Language()
	}
	key := model.CacheKey(t, id, lang)
	if v, ok := m.store.GetCache(key); ok {
		if rec, ok := v.(*model.ContentRecord); ok {
			return rec, nil
		}
	}

	m.setState(state.Patch{state.KeyLoading: true, state.KeyError: ""})

	rec, err := m.fetch(ctx, t, id, lang)
	if err != nil {
		m.logger.Warn("failed to load content", zap.String("key", key), zap.Error(err))
		m.setState(state.Patch{state.KeyLoading: false, state.KeyError: err.Error()})
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	m.store.SetCache(key, rec, m.cacheTTL)
	m.setState(state.Patch{state.KeyLoading: false, state.KeyCurrentContent: rec})
	return rec, nil
}

func (m *Manager) fetch(ctx context.Context, t model.ContentType, id string, lang i18n.Lang) (*model.ContentRecord, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	url := i18n.LocalizedURL(t.BaseURL(id), lang)
	md, err := m.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return &model.ContentRecord{
		Type:      t,
		ID:        id,
		Language:  lang,
		Markdown:  md,
		URL:       url,
		Timestamp: m.now(),
	}, nil
}

func (m *Manager) setState(p state.Patch) {
	if err := m.store.SetState(p); err != nil {
		m.logger.Error("invalid state patch", zap.Error(err))
	}
}

// RenderMarkdown renders md into container, replacing its children. The
// HTML is built and typeset in a detached node first; in-page anchors are
// marked for smooth scrolling once they are inside container. A render
// failure leaves an error block in container and is returned.
func (m *Manager) RenderMarkdown(ctx context.Context, md string, container *html.Node) error {
	if md == "" || container == nil {
		return nil
	}
	out, err := markdown.Render(markdown.RewriteImagePaths(stripFrontMatter(md)))
	if err != nil {
		m.renderFailure(container, err)
		return err
	}
	nodes, err := dom.ParseFragment(out)
	if err != nil {
		m.renderFailure(container, err)
		return err
	}
	tmp := dom.Append(dom.El("div"), nodes...)

	m.typeset.Typeset(ctx, tmp)

	dom.ReplaceChildren(container, dom.Children(tmp)...)
	for _, a := range dom.FindAll(container, isAnchorLink) {
		dom.SetAttr(a, SmoothScrollAttr, "true")
	}
	return nil
}

func isAnchorLink(n *html.Node) bool {
	if n.Data != "a" {
		return false
	}
	href, _ := dom.Attr(n, "href")
	return strings.HasPrefix(href, "#")
}

func (m *Manager) renderFailure(container *html.Node, err error) {
	m.logger.Error("error rendering markdown", zap.Error(err))
	div := dom.El("div", "class", "error")
	dom.SetText(div, "Error rendering content: "+err.Error())
	dom.ReplaceChildren(container, div)
}

// GetContentList returns the list of t localized to the current language.
func (m *Manager) GetContentList(ctx context.Context, t model.ContentType) ([]model.LocalizedItem, error) {
	items, err := m.lists.List(ctx, t)
	if err != nil {
		return nil, err
	}
	lang := m.store.Language()
	out := make([]model.LocalizedItem, len(items))
	for i, it := range items {
		out[i] = it.Localize(lang)
	}
	return out, nil
}

// RenderContentList renders the list of t into container as links to each
// item's detail view.
func (m *Manager) RenderContentList(ctx context.Context, t model.ContentType, container *html.Node) error {
	items, err := m.GetContentList(ctx, t)
	if err != nil {
		return err
	}
	lang := m.store.Language()
	if len(items) == 0 {
		p := dom.El("p", i18n.Attr, "no-content")
		dom.SetText(p, m.table.T(lang, "no-content"))
		dom.ReplaceChildren(container, p)
		return nil
	}
	ul := dom.El("ul", "class", "content-list")
	for _, it := range items {
		a := dom.El("a",
			"href", t.DetailURL(it.ID),
			"class", "content-link",
			"data-content-type", string(t),
			"data-content-id", it.ID,
		)
		dom.SetText(a, it.Title)
		li := dom.Append(dom.El("li", "class", "content-item"), a)
		if it.Description != "" {
			desc := dom.El("p", "class", "content-description")
			dom.SetText(desc, it.Description)
			dom.Append(li, desc)
		}
		dom.Append(ul, li)
	}
	dom.ReplaceChildren(container, ul)
	return nil
}

// LoadAndRender shows a loading placeholder in main, loads (t, id) and
// renders it. On failure main shows an error block with a retry link.
func (m *Manager) LoadAndRender(ctx context.Context, t model.ContentType, id string, main *html.Node) error {
	if main == nil {
		return nil
	}
	lang := m.store.Language()
	dom.ReplaceChildren(main, LoadingBlock(m.table, lang))

	rec, err := m.LoadContent(ctx, t, id, lang)
	if err != nil {
		dom.ReplaceChildren(main, ErrorBlock(m.table, lang, err.Error(), m.store.State().Route.URL()))
		return err
	}
	return m.RenderMarkdown(ctx, rec.Markdown, main)
}

// LoadingBlock is the placeholder shown while content loads.
func LoadingBlock(t i18n.Table, lang i18n.Lang) *html.Node {
	div := dom.El("div", "class", "loading", i18n.Attr, "loading")
	dom.SetText(div, t.T(lang, "loading"))
	return div
}

// ErrorBlock describes a failed load and links to retryURL.
func ErrorBlock(t i18n.Table, lang i18n.Lang, msg, retryURL string) *html.Node {
	h := dom.El("h2", i18n.Attr, "error")
	dom.SetText(h, t.T(lang, "error"))
	p := dom.El("p")
	dom.SetText(p, msg)
	retry := dom.El("a", "class", "retry button", "href", retryURL, i18n.Attr, "retry")
	dom.SetText(retry, t.T(lang, "retry"))
	return dom.Append(dom.El("div", "class", "error"), h, p, retry)
}
