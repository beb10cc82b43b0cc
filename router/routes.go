package router

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/scubides/homepage/component"
	"github.com/scubides/homepage/content"
	"github.com/scubides/homepage/dom"
	"github.com/scubides/homepage/i18n"
	"github.com/scubides/homepage/model"
)

// Page is the view a handler is rendering. Handlers write into Main, which
// is detached from the document until the render is committed.
type Page struct {
	Main   *html.Node
	Params map[string]string
	Lang   i18n.Lang
	// Title overrides the route's title key, for example with an item title.
	Title string
	// Status is the HTTP status the view is served with.
	Status int

	components []*component.Component
}

// Mount builds a component of kind and mounts it into Main. It is
// unmounted when the page is replaced.
func (p *Page) Mount(ctx context.Context, r *Router, kind component.Kind, props component.Props) error {
	c, err := r.registry.New(kind, r.deps, props)
	if err != nil {
		return err
	}
	if err := c.Mount(ctx, p.Main); err != nil {
		return err
	}
	p.components = append(p.components, c)
	return nil
}

// Handler renders one route.
type Handler func(ctx context.Context, r *Router, p *Page) error

// Route is an entry of the route table.
type Route struct {
	TitleKey string
	Handler  Handler
}

const (
	homeTitleKey     = "page-title.home"
	notFoundTitleKey = "page-title.notFound"
)

// DefaultRoutes is the site's route table.
func DefaultRoutes() map[string]Route {
	home := Route{TitleKey: homeTitleKey, Handler: homePage}
	return map[string]Route{
		"":                 home,
		model.HomePage:     home,
		model.ProjectsPage: {TitleKey: "page-title.projects", Handler: listPage(model.Project)},
		model.BlogsPage:    {TitleKey: "page-title.blog", Handler: listPage(model.Blog)},
	}
}

// NotFoundRoute renders the not-found view.
var NotFoundRoute = Route{TitleKey: notFoundTitleKey, Handler: notFoundPage}

func homePage(ctx context.Context, r *Router, p *Page) error {
	err := r.deps.Content.LoadAndRender(ctx, model.Page, "index", p.Main)
	return r.contentFailure(p, err)
}

func listPage(t model.ContentType) Handler {
	return func(ctx context.Context, r *Router, p *Page) error {
		page, param := t.ListPage()
		id := p.Params[param]
		if id == "" {
			return p.Mount(ctx, r, component.KindContentList, component.Props{"type": string(t)})
		}

		meta, err := content.Lookup(ctx, r.deps.Content.Lists(), t, id)
		if errors.Is(err, content.ErrNotFound) {
			return notFoundPage(ctx, r, p)
		}
		if err != nil {
			return err
		}
		p.Title = meta.Localize(p.Lang).Title

		back := dom.El("a", "href", page, "class", "back-link", i18n.Attr, "back")
		article := dom.El("article", "class", "content-detail", "data-content-id", id)
		dom.Append(p.Main, back, article)
		return r.contentFailure(p, r.deps.Content.LoadAndRender(ctx, t, id, article))
	}
}

// contentFailure maps a failed load to the page status. The error block
// is already in the page, so the failure is not returned.
func (r *Router) contentFailure(p *Page, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	r.logger.Warn("content failed to load", zap.Error(err))
	if content.IsNotFound(err) {
		p.Status = http.StatusNotFound
	} else {
		p.Status = http.StatusBadGateway
	}
	return nil
}

func notFoundPage(_ context.Context, r *Router, p *Page) error {
	p.Status = http.StatusNotFound
	p.Title = r.deps.Table.T(p.Lang, notFoundTitleKey)
	h := dom.El("h1", i18n.Attr, "headings.notFound")
	msg := dom.El("p", i18n.Attr, "messages.notFound")
	home := dom.El("a", "href", model.HomePage, "class", "back-link", i18n.Attr, "nav.home")
	section := dom.Append(dom.El("section", "class", "not-found"), h, msg, home)
	dom.ReplaceChildren(p.Main, section)
	return nil
}
