package i18n

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Table maps a language to its key/string pairs.
type Table map[Lang]map[string]string

// T returns the translation of key in lang, falling back to English and
// finally to the key itself.
func (t Table) T(lang Lang, key string) string {
	if m, ok := t[lang]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := t[Default]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Clone returns a deep copy so overlays never touch the defaults.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for lang, m := range t {
		cp := make(map[string]string, len(m))
		for k, v := range m {
			cp[k] = v
		}
		out[lang] = cp
	}
	return out
}

// LoadDir overlays <lang>.json files from dir onto the default table.
// A missing file for a language is skipped; a malformed one is an error.
func LoadDir(dir string) (Table, error) {
	t := Defaults()
	for _, lang := range Supported {
		path := filepath.Join(dir, string(lang)+".json")
		raw, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("load locale %s: %w", lang, err)
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", path, err)
		}
		for k, v := range m {
			t[lang][k] = v
		}
	}
	return t, nil
}

// Defaults returns a fresh copy of the built-in translations.
func Defaults() Table {
	return defaults.Clone()
}

var defaults = Table{
	English: {
		"site.name":                    "Sebastian Cubides",
		"site.description":             "Projects and writing by Sebastian Cubides",
		"nav.home":                     "Home",
		"nav.projects":                 "Projects",
		"nav.blog":                     "Blog",
		"headings.projects":            "Projects",
		"headings.blog":                "Blog",
		"headings.notFound":            "Content not found",
		"messages.notFound":            "The content you are looking for could not be found.",
		"toggle.dark":                  "Dark Mode",
		"toggle.light":                 "Light Mode",
		"toggle.language.label":        "Español",
		"toggle.language.checkedLabel": "English",
		"page-title.home":              "Home",
		"page-title.projects":          "Projects",
		"page-title.blog":              "Blog",
		"page-title.notFound":          "Not Found",
		"loading":                      "Loading...",
		"error":                        "Error",
		"retry":                        "Retry",
		"no-content":                   "No content available",
		"back":                         "Back",
	},
	Spanish: {
		"site.name":                    "Sebastian Cubides",
		"site.description":             "Proyectos y escritos de Sebastian Cubides",
		"nav.home":                     "Inicio",
		"nav.projects":                 "Proyectos",
		"nav.blog":                     "Blog",
		"headings.projects":            "Proyectos",
		"headings.blog":                "Blog",
		"headings.notFound":            "Contenido no encontrado",
		"messages.notFound":            "No pudimos encontrar el contenido que solicitaste.",
		"toggle.dark":                  "Modo oscuro",
		"toggle.light":                 "Modo claro",
		"toggle.language.label":        "Español",
		"toggle.language.checkedLabel": "English",
		"page-title.home":              "Inicio",
		"page-title.projects":          "Proyectos",
		"page-title.blog":              "Blog",
		"page-title.notFound":          "No encontrado",
		"loading":                      "Cargando...",
		"error":                        "Error",
		"retry":                        "Reintentar",
		"no-content":                   "No hay contenido disponible",
		"back":                         "Volver",
	},
}
