// Package component is the lifecycle wrapper around page fragments that
// react to State Store changes.
package component

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/scubides/homepage/content"
	"github.com/scubides/homepage/dom"
	"github.com/scubides/homepage/i18n"
	"github.com/scubides/homepage/state"
)

// Renderable builds a component's fragment from the current state.
type Renderable interface {
	Render(ctx context.Context) (*html.Node, error)
}

// Subscribable components react to state changes beyond re-translation.
// Subscriptions is called once per mount, after Render.
type Subscribable interface {
	Subscriptions(ctx context.Context) []Subscription
}

// Subscription is one reaction to a set of state keys.
type Subscription struct {
	Keys     []state.Key
	Callback state.Callback
}

// Deps are the collaborators shared by every component of a session.
type Deps struct {
	Store   *state.Store
	Table   i18n.Table
	Content *content.Manager
	Logger  *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Component mounts a Renderable into a container and keeps it subscribed
// until Unmount.
type Component struct {
	kind   Kind
	impl   Renderable
	deps   Deps
	root   *html.Node
	unsubs []func()
}

// New wraps impl.
func New(kind Kind, impl Renderable, deps Deps) *Component {
	if deps.Table == nil {
		deps.Table = i18n.Defaults()
	}
	return &Component{kind: kind, impl: impl, deps: deps}
}

// Kind returns the registry kind the component was built as.
func (c *Component) Kind() Kind { return c.kind }

// Impl returns the wrapped Renderable.
func (c *Component) Impl() Renderable { return c.impl }

// Root returns the mounted fragment, or nil.
func (c *Component) Root() *html.Node { return c.root }

// Mounted reports whether the component is attached.
func (c *Component) Mounted() bool { return c.root != nil }

// Mount renders the component, appends it to container, subscribes it and
// translates it to the current language. Mounting an already mounted
// component unmounts it first.
func (c *Component) Mount(ctx context.Context, container *html.Node) error {
	if container == nil {
		return fmt.Errorf("mount %s: nil container", c.kind)
	}
	if c.Mounted() {
		c.Unmount()
	}
	// Subscriptions outlive the request that mounted the component.
	ctx = context.WithoutCancel(ctx)

	root, err := c.impl.Render(ctx)
	if err != nil {
		return fmt.Errorf("render %s: %w", c.kind, err)
	}
	dom.Append(container, root)
	c.root = root

	store := c.deps.Store
	c.unsubs = append(c.unsubs, store.Subscribe(func(next, _ state.AppState, _ []state.Key) {
		i18n.TranslateNode(c.root, c.deps.Table, next.Language)
	}, state.KeyLanguage))
	if s, ok := c.impl.(Subscribable); ok {
		for _, sub := range s.Subscriptions(ctx) {
			c.unsubs = append(c.unsubs, store.Subscribe(sub.Callback, sub.Keys...))
		}
	}

	i18n.TranslateNode(root, c.deps.Table, store.Language())
	c.deps.logger().Debug("component mounted", zap.String("kind", string(c.kind)))
	return nil
}

// Unmount removes the subscriptions and detaches the fragment. It is a
// no-op when not mounted.
func (c *Component) Unmount() {
	if !c.Mounted() {
		return
	}
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
	dom.Detach(c.root)
	c.root = nil
}
