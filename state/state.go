// Package state is the per-visitor application state store: one snapshot of
// language, theme, route and content flags, change notification to
// subscribers, a TTL cache and debounced persistence of preferences.
package state

import (
	"fmt"
	"net/url"

	"github.com/scubides/homepage/i18n"
	"github.com/scubides/homepage/model"
)

// Theme is the colour scheme.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// ParseTheme reports whether s names a theme.
func ParseTheme(s string) (Theme, bool) {
	switch Theme(s) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return "", false
}

// Other returns the theme the toggle switches to.
func (t Theme) Other() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Key names one field of AppState.
type Key string

const (
	KeyLanguage       Key = "language"
	KeyTheme          Key = "theme"
	KeyCurrentContent Key = "currentContent"
	KeyLoading        Key = "loading"
	KeyError          Key = "error"
	KeyRoute          Key = "route"
)

// Route is the current path and its query parameters.
type Route struct {
	Path   string
	Params map[string]string
}

// Clone copies the params map.
func (r Route) Clone() Route {
	out := Route{Path: r.Path}
	if r.Params != nil {
		out.Params = make(map[string]string, len(r.Params))
		for k, v := range r.Params {
			out.Params[k] = v
		}
	}
	return out
}

// URL formats the route as "path?query" with sorted parameters.
func (r Route) URL() string {
	if len(r.Params) == 0 {
		return r.Path
	}
	q := make(url.Values, len(r.Params))
	for k, v := range r.Params {
		q.Set(k, v)
	}
	return r.Path + "?" + q.Encode()
}

// AppState is one snapshot. Error is "" when there is none.
type AppState struct {
	Language       i18n.Lang
	Theme          Theme
	CurrentContent *model.ContentRecord
	Loading        bool
	Error          string
	Route          Route
}

func (s AppState) clone() AppState {
	s.Route = s.Route.Clone()
	return s
}

// Get returns the field named by key, or nil for an unknown key.
func (s AppState) Get(key Key) any {
	switch key {
	case KeyLanguage:
		return s.Language
	case KeyTheme:
		return s.Theme
	case KeyCurrentContent:
		return s.CurrentContent
	case KeyLoading:
		return s.Loading
	case KeyError:
		return s.Error
	case KeyRoute:
		return s.Route.Clone()
	}
	return nil
}

// Patch is a partial update merged into the current snapshot.
type Patch map[Key]any

// apply merges p into s, returning the keys whose values changed. Route
// counts as changed whenever it is present, since a new Route value is a
// new object.
func (p Patch) apply(s *AppState) ([]Key, error) {
	next := *s
	var changed []Key
	for key, v := range p {
		switch key {
		case KeyLanguage:
			lang, ok := v.(i18n.Lang)
			if !ok {
				return nil, typeError(key, v)
			}
			if _, ok := i18n.ParseLang(string(lang)); !ok {
				return nil, fmt.Errorf("state: unsupported language %q", lang)
			}
			if lang != next.Language {
				changed = append(changed, key)
			}
			next.Language = lang
		case KeyTheme:
			theme, ok := v.(Theme)
			if !ok {
				return nil, typeError(key, v)
			}
			if _, ok := ParseTheme(string(theme)); !ok {
				return nil, fmt.Errorf("state: unsupported theme %q", theme)
			}
			if theme != next.Theme {
				changed = append(changed, key)
			}
			next.Theme = theme
		case KeyCurrentContent:
			var rec *model.ContentRecord
			if v != nil {
				r, ok := v.(*model.ContentRecord)
				if !ok {
					return nil, typeError(key, v)
				}
				rec = r
			}
			if rec != next.CurrentContent {
				changed = append(changed, key)
			}
			next.CurrentContent = rec
		case KeyLoading:
			b, ok := v.(bool)
			if !ok {
				return nil, typeError(key, v)
			}
			if b != next.Loading {
				changed = append(changed, key)
			}
			next.Loading = b
		case KeyError:
			msg, ok := v.(string)
			if !ok {
				return nil, typeError(key, v)
			}
			if msg != next.Error {
				changed = append(changed, key)
			}
			next.Error = msg
		case KeyRoute:
			r, ok := v.(Route)
			if !ok {
				return nil, typeError(key, v)
			}
			changed = append(changed, key)
			next.Route = r.Clone()
		default:
			return nil, fmt.Errorf("state: unknown key %q", key)
		}
	}
	*s = next
	return changed, nil
}

func typeError(key Key, v any) error {
	return fmt.Errorf("state: invalid value %T for %q", v, key)
}
