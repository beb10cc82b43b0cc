package router

import (
	"net/url"
	"strings"

	"github.com/scubides/homepage/model"
	"github.com/scubides/homepage/state"
)

// entryKey identifies a history entry; "" and the home page are one entry.
func entryKey(r state.Route) string {
	if r.Path == "" {
		r.Path = model.HomePage
	}
	return r.URL()
}

// ParseURL splits a site URL into a route. The leading slash is dropped and
// query parameters are flattened to their first value.
func ParseURL(raw string) state.Route {
	u, err := url.Parse(raw)
	if err != nil {
		return state.Route{Path: strings.TrimPrefix(raw, "/")}
	}
	r := state.Route{Path: strings.TrimPrefix(u.Path, "/")}
	q := u.Query()
	if len(q) > 0 {
		r.Params = make(map[string]string, len(q))
		for k, v := range q {
			if len(v) > 0 {
				r.Params[k] = v[0]
			}
		}
	}
	return r
}

// History is the visitor's navigation stack.
type History struct {
	entries []state.Route
	index   int
}

// Push adds r after the current entry, dropping any forward entries. It
// reports false and does nothing when r is already current.
func (h *History) Push(r state.Route) bool {
	if cur, ok := h.Current(); ok && entryKey(cur) == entryKey(r) {
		return false
	}
	if len(h.entries) > 0 {
		h.entries = h.entries[:h.index+1]
	}
	h.entries = append(h.entries, r.Clone())
	h.index = len(h.entries) - 1
	return true
}

// Current returns the entry being shown.
func (h *History) Current() (state.Route, bool) {
	if len(h.entries) == 0 {
		return state.Route{}, false
	}
	return h.entries[h.index].Clone(), true
}

// Back moves one entry back.
func (h *History) Back() (state.Route, bool) {
	if h.index == 0 || len(h.entries) == 0 {
		return state.Route{}, false
	}
	h.index--
	return h.entries[h.index].Clone(), true
}

// Forward moves one entry forward.
func (h *History) Forward() (state.Route, bool) {
	if h.index+1 >= len(h.entries) {
		return state.Route{}, false
	}
	h.index++
	return h.entries[h.index].Clone(), true
}

// Seek makes the nearest entry matching r current, searching backwards
// from the current position first. It reports whether one was found.
func (h *History) Seek(r state.Route) bool {
	want := entryKey(r)
	for i := h.index; i >= 0 && i < len(h.entries); i-- {
		if entryKey(h.entries[i]) == want {
			h.index = i
			return true
		}
	}
	for i := h.index + 1; i < len(h.entries); i++ {
		if entryKey(h.entries[i]) == want {
			h.index = i
			return true
		}
	}
	return false
}

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }
