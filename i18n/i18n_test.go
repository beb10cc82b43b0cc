package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/scubides/homepage/dom"
)

func TestLocalizedURL(t *testing.T) {
	tests := []struct {
		in   string
		lang Lang
		want string
	}{
		{"content/blogs/post1.md", Spanish, "content/blogs/post1_es.md"},
		{"content/blogs/post1_es.md", Spanish, "content/blogs/post1_es.md"},
		{"content/blogs/post1_es.md", English, "content/blogs/post1.md"},
		{"content/blogs/post1.md", English, "content/blogs/post1.md"},
		{"content/index.md", Spanish, "content/index_es.md"},
		{"content/noext", Spanish, "content/noext"},
		{"/content/index.md", English, "content/index.md"},
	}
	for _, tt := range tests {
		if got := LocalizedURL(tt.in, tt.lang); got != tt.want {
			t.Errorf("LocalizedURL(%q, %s) = %q, want %q", tt.in, tt.lang, got, tt.want)
		}
	}
}

func TestLocalizedURLIdempotent(t *testing.T) {
	urls := []string{
		"content/index.md",
		"content/index_es.md",
		"content/projects/project1.md",
		"content/projects/project1_es.md",
		"a/b.c/d.md",
	}
	for _, u := range urls {
		for _, lang := range Supported {
			once := LocalizedURL(u, lang)
			twice := LocalizedURL(once, lang)
			if once != twice {
				t.Errorf("LocalizedURL not idempotent for %q/%s: %q then %q", u, lang, once, twice)
			}
		}
	}
}

func TestTableFallback(t *testing.T) {
	tbl := Table{
		English: {"a": "A", "b": "B"},
		Spanish: {"a": "Á"},
	}
	if got := tbl.T(Spanish, "a"); got != "Á" {
		t.Errorf("T(es,a) = %q", got)
	}
	if got := tbl.T(Spanish, "b"); got != "B" {
		t.Errorf("T(es,b) = %q, want English fallback", got)
	}
	if got := tbl.T(Spanish, "missing"); got != "missing" {
		t.Errorf("T(es,missing) = %q, want key", got)
	}
}

func TestDefaultsAreIsolated(t *testing.T) {
	a := Defaults()
	a[English]["nav.home"] = "changed"
	if b := Defaults(); b[English]["nav.home"] != "Home" {
		t.Fatalf("Defaults shares state: %q", b[English]["nav.home"])
	}
}

func TestLoadDirOverlay(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "es.json"), []byte(`{"nav.home":"Portada"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if got := tbl.T(Spanish, "nav.home"); got != "Portada" {
		t.Errorf("overlay not applied: %q", got)
	}
	if got := tbl.T(English, "nav.home"); got != "Home" {
		t.Errorf("english changed: %q", got)
	}
}

func TestLoadDirMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDir(dir); err == nil {
		t.Fatal("expected error for malformed locale file")
	}
}

func TestParseLang(t *testing.T) {
	if l, ok := ParseLang(" ES "); !ok || l != Spanish {
		t.Errorf("ParseLang(ES) = %q, %v", l, ok)
	}
	if _, ok := ParseLang("fr"); ok {
		t.Error("fr should not be supported")
	}
	if English.Other() != Spanish || Spanish.Other() != English {
		t.Error("Other() mismatch")
	}
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		header string
		want   Lang
	}{
		{"", English},
		{"es-CO,es;q=0.9,en;q=0.8", Spanish},
		{"en-US,en;q=0.9", English},
		{"de-DE", English},
	}
	for _, tt := range tests {
		if got := Negotiate(tt.header); got != tt.want {
			t.Errorf("Negotiate(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestTranslateNode(t *testing.T) {
	doc := dom.NewDocument(nil, nil)
	h := dom.El("h1", Attr, "nav.projects")
	dom.SetText(h, "Projects")
	dom.Append(doc.Main, h)

	TranslateNode(doc.Root, Defaults(), Spanish)

	if got := dom.TextContent(h); got != "Proyectos" {
		t.Errorf("heading = %q, want Proyectos", got)
	}
	if lang, _ := dom.Attr(doc.Root, "lang"); lang != "es" {
		t.Errorf("html lang = %q, want es", lang)
	}
}

func TestTranslateNodeAttributes(t *testing.T) {
	root := dom.El("div")
	btn := dom.El("button", "data-i18n-aria-label", "toggle.language.label", Attr, "missing.key", FallbackAttr, "fallback text")
	dom.Append(root, btn)

	TranslateNode(root, Defaults(), Spanish)

	want := Defaults().T(Spanish, "toggle.language.label")
	if got, _ := dom.Attr(btn, "aria-label"); got != want {
		t.Errorf("aria-label = %q, want %q", got, want)
	}
	if got := dom.TextContent(btn); got != "fallback text" {
		t.Errorf("text = %q, want fallback text", got)
	}
}
