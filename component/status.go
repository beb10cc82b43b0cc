package component

import (
	"context"

	"golang.org/x/net/html"

	"github.com/scubides/homepage/dom"
	"github.com/scubides/homepage/i18n"
	"github.com/scubides/homepage/state"
)

// LoadingSpinner is visible while the loading flag is set.
type LoadingSpinner struct {
	deps Deps
	root *html.Node
}

// NewLoadingSpinner returns an unmounted spinner.
func NewLoadingSpinner(d Deps) *LoadingSpinner { return &LoadingSpinner{deps: d} }

// Render implements Renderable.
func (l *LoadingSpinner) Render(context.Context) (*html.Node, error) {
	msg := dom.El("p", i18n.Attr, "loading")
	l.root = dom.Append(dom.El("div", "class", "loading-spinner", "role", "status"),
		dom.El("div", "class", "spinner"),
		msg,
	)
	dom.SetBoolAttr(l.root, "hidden", !l.deps.Store.State().Loading)
	return l.root, nil
}

// Subscriptions implements Subscribable.
func (l *LoadingSpinner) Subscriptions(context.Context) []Subscription {
	return []Subscription{{
		Keys: []state.Key{state.KeyLoading},
		Callback: func(next, _ state.AppState, _ []state.Key) {
			dom.SetBoolAttr(l.root, "hidden", !next.Loading)
		},
	}}
}

// ErrorDisplay shows the error field with a retry link to the current
// route.
type ErrorDisplay struct {
	deps    Deps
	root    *html.Node
	message *html.Node
	retry   *html.Node
}

// NewErrorDisplay returns an unmounted error display.
func NewErrorDisplay(d Deps) *ErrorDisplay { return &ErrorDisplay{deps: d} }

// Render implements Renderable.
func (e *ErrorDisplay) Render(context.Context) (*html.Node, error) {
	e.message = dom.El("p", "class", "error-message")
	e.retry = dom.El("a", "class", "retry-button button", i18n.Attr, "retry")
	e.root = dom.Append(dom.El("div", "class", "error-display", "role", "alert"),
		dom.Append(dom.El("div", "class", "error-content"),
			dom.El("h2", i18n.Attr, "error"),
			e.message,
			e.retry,
		),
	)
	e.apply(e.deps.Store.State())
	return e.root, nil
}

func (e *ErrorDisplay) apply(st state.AppState) {
	dom.SetBoolAttr(e.root, "hidden", st.Error == "")
	dom.SetText(e.message, st.Error)
	dom.SetAttr(e.retry, "href", st.Route.URL())
}

// Subscriptions implements Subscribable.
func (e *ErrorDisplay) Subscriptions(context.Context) []Subscription {
	return []Subscription{{
		Keys: []state.Key{state.KeyError, state.KeyRoute},
		Callback: func(next, _ state.AppState, _ []state.Key) {
			e.apply(next)
		},
	}}
}
