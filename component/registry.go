package component

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Kind names a component variant.
type Kind string

const (
	KindHeader         Kind = "header"
	KindThemeToggle    Kind = "theme-toggle"
	KindLanguageToggle Kind = "language-toggle"
	KindContentList    Kind = "content-list"
	KindLoading        Kind = "loading"
	KindError          Kind = "error"
)

// ErrUnknownKind is returned by Registry.New for an unregistered kind.
var ErrUnknownKind = errors.New("unknown component kind")

// Props are the per-instance parameters of a component, for example the
// content type of a content list.
type Props map[string]string

// Factory builds a Renderable of one kind.
type Factory func(deps Deps, props Props) (Renderable, error)

// Registry maps kinds to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[Kind]Factory
}

// NewRegistry returns a registry with the built-in kinds.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[Kind]Factory)}
	r.Register(KindHeader, func(d Deps, _ Props) (Renderable, error) { return NewHeader(d), nil })
	r.Register(KindThemeToggle, func(d Deps, _ Props) (Renderable, error) { return NewThemeToggle(d), nil })
	r.Register(KindLanguageToggle, func(d Deps, _ Props) (Renderable, error) { return NewLanguageToggle(d), nil })
	r.Register(KindContentList, newContentListFromProps)
	r.Register(KindLoading, func(d Deps, _ Props) (Renderable, error) { return NewLoadingSpinner(d), nil })
	r.Register(KindError, func(d Deps, _ Props) (Renderable, error) { return NewErrorDisplay(d), nil })
	return r
}

// Register adds or replaces the factory for kind.
func (r *Registry) Register(kind Kind, f Factory) {
	r.mu.Lock()
	r.factories[kind] = f
	r.mu.Unlock()
}

// New builds an unmounted component of kind.
func (r *Registry) New(kind Kind, deps Deps, props Props) (*Component, error) {
	r.mu.RLock()
	f, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	impl, err := f(deps, props)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", kind, err)
	}
	return New(kind, impl, deps), nil
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Kind, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
