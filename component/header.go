package component

import (
	"context"

	"golang.org/x/net/html"

	"github.com/scubides/homepage/dom"
	"github.com/scubides/homepage/i18n"
	"github.com/scubides/homepage/model"
	"github.com/scubides/homepage/state"
)

// Slots inside the header the toggles are mounted into.
const (
	ThemeSlotID    = "theme-toggle-root"
	LanguageSlotID = "language-toggle-root"
	NavLinkClass   = "nav-link"
)

// NavItem is one link of the main navigation.
type NavItem struct {
	Path string
	Key  string
}

// Nav is the main navigation, in display order.
var Nav = []NavItem{
	{Path: model.HomePage, Key: "nav.home"},
	{Path: model.ProjectsPage, Key: "nav.projects"},
	{Path: model.BlogsPage, Key: "nav.blog"},
}

// Header is the site header: navigation and the toggle slots.
type Header struct {
	deps Deps
	root *html.Node
}

// NewHeader returns an unmounted header.
func NewHeader(d Deps) *Header { return &Header{deps: d} }

// Render implements Renderable.
func (h *Header) Render(context.Context) (*html.Node, error) {
	lang := h.deps.Store.Language()
	ul := dom.El("ul")
	for _, item := range Nav {
		a := dom.El("a", "href", item.Path, "class", NavLinkClass, i18n.Attr, item.Key)
		dom.SetText(a, h.deps.Table.T(lang, item.Key))
		dom.Append(ul, dom.Append(dom.El("li"), a))
	}
	switchers := dom.Append(dom.El("div", "id", "switchers"),
		dom.El("div", "id", ThemeSlotID, "class", "theme-toggle-container"),
		dom.El("div", "id", LanguageSlotID, "class", "language-toggle-container"),
	)
	inner := dom.Append(dom.El("div", "class", "header-content"),
		dom.Append(dom.El("nav"), ul),
		switchers,
	)
	h.root = dom.Append(dom.El("header", "class", "site-header"),
		dom.Append(dom.El("div", "class", "centered-content"), inner),
	)
	dom.ToggleClass(h.root, "dark", h.deps.Store.Theme() == state.Dark)
	return h.root, nil
}

// Subscriptions implements Subscribable.
func (h *Header) Subscriptions(context.Context) []Subscription {
	return []Subscription{{
		Keys: []state.Key{state.KeyTheme},
		Callback: func(next, _ state.AppState, _ []state.Key) {
			dom.ToggleClass(h.root, "dark", next.Theme == state.Dark)
		},
	}}
}

// SetActive marks the nav link whose path equals path. "" and the home
// page are the same path.
func (h *Header) SetActive(path string) {
	if h.root == nil {
		return
	}
	if path == "" {
		path = model.HomePage
	}
	for _, a := range dom.FindAll(h.root, func(n *html.Node) bool { return dom.HasClass(n, NavLinkClass) }) {
		href, _ := dom.Attr(a, "href")
		active := href == path
		dom.ToggleClass(a, "active", active)
		if active {
			dom.SetAttr(a, "aria-current", "page")
		} else {
			dom.RemoveAttr(a, "aria-current")
		}
	}
}
