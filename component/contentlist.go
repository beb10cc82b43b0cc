package component

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/scubides/homepage/content"
	"github.com/scubides/homepage/dom"
	"github.com/scubides/homepage/i18n"
	"github.com/scubides/homepage/model"
	"github.com/scubides/homepage/state"
)

// ContentList is the section listing every item of a content type. The
// list is rebuilt when the language changes.
type ContentList struct {
	deps Deps
	typ  model.ContentType
	list *html.Node
}

// NewContentList returns an unmounted list of t.
func NewContentList(d Deps, t model.ContentType) *ContentList {
	return &ContentList{deps: d, typ: t}
}

func newContentListFromProps(d Deps, p Props) (Renderable, error) {
	t := model.ContentType(p["type"])
	if page, _ := t.ListPage(); page == "" {
		return nil, fmt.Errorf("%w: %q has no list", content.ErrUnknownType, t)
	}
	if d.Content == nil {
		return nil, errors.New("content list needs a content manager")
	}
	return NewContentList(d, t), nil
}

func headingKey(t model.ContentType) string {
	if t == model.Project {
		return "headings.projects"
	}
	return "headings.blog"
}

// Render implements Renderable.
func (c *ContentList) Render(ctx context.Context) (*html.Node, error) {
	lang := c.deps.Store.Language()
	title := dom.El("h1", i18n.Attr, headingKey(c.typ))
	dom.SetText(title, c.deps.Table.T(lang, headingKey(c.typ)))
	c.list = dom.El("div", "id", string(c.typ)+"-list", "class", "content-list-container")
	section := dom.Append(dom.El("section", "id", string(c.typ), "class", "content-section"), title, c.list)
	c.renderList(ctx)
	return section, nil
}

func (c *ContentList) renderList(ctx context.Context) {
	lang := c.deps.Store.Language()
	if err := c.deps.Content.RenderContentList(ctx, c.typ, c.list); err != nil {
		c.deps.logger().Warn("failed to render content list",
			zap.String("type", string(c.typ)), zap.Error(err))
		dom.ReplaceChildren(c.list, content.ErrorBlock(c.deps.Table, lang, err.Error(), c.deps.Store.State().Route.URL()))
	}
	i18n.TranslateNode(c.list, c.deps.Table, lang)
}

// Subscriptions implements Subscribable.
func (c *ContentList) Subscriptions(ctx context.Context) []Subscription {
	return []Subscription{{
		Keys: []state.Key{state.KeyLanguage},
		Callback: func(state.AppState, state.AppState, []state.Key) {
			c.renderList(ctx)
		},
	}}
}
