package component

import (
	"context"

	"golang.org/x/net/html"

	"github.com/scubides/homepage/dom"
	"github.com/scubides/homepage/i18n"
	"github.com/scubides/homepage/state"
)

// Endpoints the toggle forms post to.
const (
	ThemeTogglePath    = "/toggle/theme"
	LanguageTogglePath = "/toggle/language"
)

type toggle struct {
	root  *html.Node
	input *html.Node
	label *html.Node
}

func buildToggle(class, action, inputID, labelID string) toggle {
	input := dom.El("input", "type", "checkbox", "id", inputID, "name", inputID, "class", "toggle-input")
	label := dom.El("span", "id", labelID, "class", "toggle-label")
	form := dom.Append(dom.El("form", "method", "post", "action", action, "class", "toggle-form"),
		dom.Append(dom.El("label", "class", "switch"),
			input,
			dom.El("span", "class", "slider round"),
		),
		label,
	)
	return toggle{
		root:  dom.Append(dom.El("div", "class", "toggle-container "+class), form),
		input: input,
		label: label,
	}
}

func (t toggle) set(checked bool, key string, table i18n.Table, lang i18n.Lang) {
	dom.SetBoolAttr(t.input, "checked", checked)
	dom.SetAttr(t.label, i18n.Attr, key)
	dom.SetText(t.label, table.T(lang, key))
}

// ThemeToggle switches between light and dark. Its label names the theme
// the toggle switches to.
type ThemeToggle struct {
	deps Deps
	toggle
}

// NewThemeToggle returns an unmounted theme toggle.
func NewThemeToggle(d Deps) *ThemeToggle { return &ThemeToggle{deps: d} }

// Render implements Renderable.
func (t *ThemeToggle) Render(context.Context) (*html.Node, error) {
	t.toggle = buildToggle("theme-toggle", ThemeTogglePath, "theme-toggle", "theme-label")
	t.Refresh()
	return t.root, nil
}

// Refresh syncs the checked state and label with the store.
func (t *ThemeToggle) Refresh() {
	if t.root == nil {
		return
	}
	st := t.deps.Store.State()
	t.apply(st.Theme, st.Language)
}

func (t *ThemeToggle) apply(theme state.Theme, lang i18n.Lang) {
	key := "toggle.dark"
	if theme == state.Dark {
		key = "toggle.light"
	}
	t.set(theme == state.Dark, key, t.deps.Table, lang)
}

// Subscriptions implements Subscribable.
func (t *ThemeToggle) Subscriptions(context.Context) []Subscription {
	return []Subscription{{
		Keys: []state.Key{state.KeyTheme},
		Callback: func(next, _ state.AppState, _ []state.Key) {
			t.apply(next.Theme, next.Language)
		},
	}}
}

// LanguageToggle switches between English and Spanish. It is checked in
// Spanish and its label names the other language.
type LanguageToggle struct {
	deps Deps
	toggle
}

// NewLanguageToggle returns an unmounted language toggle.
func NewLanguageToggle(d Deps) *LanguageToggle { return &LanguageToggle{deps: d} }

// Render implements Renderable.
func (t *LanguageToggle) Render(context.Context) (*html.Node, error) {
	t.toggle = buildToggle("language-toggle", LanguageTogglePath, "language-toggle", "language-label")
	t.apply(t.deps.Store.Language())
	return t.root, nil
}

func (t *LanguageToggle) apply(lang i18n.Lang) {
	key := "toggle.language.label"
	if lang == i18n.Spanish {
		key = "toggle.language.checkedLabel"
	}
	t.set(lang == i18n.Spanish, key, t.deps.Table, lang)
}

// Subscriptions implements Subscribable.
func (t *LanguageToggle) Subscriptions(context.Context) []Subscription {
	return []Subscription{{
		Keys: []state.Key{state.KeyLanguage},
		Callback: func(next, _ state.AppState, _ []state.Key) {
			t.apply(next.Language)
		},
	}}
}
