package router

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"testing/fstest"

	"golang.org/x/net/html"

	"github.com/scubides/homepage/component"
	"github.com/scubides/homepage/content"
	"github.com/scubides/homepage/dom"
	"github.com/scubides/homepage/i18n"
	"github.com/scubides/homepage/model"
	"github.com/scubides/homepage/state"
)

func file(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }

func setupRouter(t *testing.T, opts ...Option) (*Router, *state.Store) {
	t.Helper()
	fsys := fstest.MapFS{
		"content/index.md":                file("# Welcome"),
		"content/index_es.md":             file("# Bienvenido"),
		"content/projects/project1.md":    file("# Awesome Project\n\nDetails."),
		"content/projects/project1_es.md": file("# Proyecto Impresionante\n\nDetalles."),
	}
	store := state.New(context.Background())
	deps := component.Deps{
		Store:   store,
		Table:   i18n.Defaults(),
		Content: content.NewManager(store, content.DirFetcher{FS: fsys}),
	}
	r := New(dom.NewDocument(nil, nil), deps, opts...)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(r.Close)
	return r, store
}

func mainText(r *Router) string {
	return dom.TextContent(r.Document().Main)
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		raw    string
		path   string
		params map[string]string
	}{
		{"", "", nil},
		{"/", "", nil},
		{"/index.html", "index.html", nil},
		{"projects.html?project=project1", "projects.html", map[string]string{"project": "project1"}},
		{"/blogs.html?post=post2&post=post3", "blogs.html", map[string]string{"post": "post2"}},
	}
	for _, tt := range tests {
		got := ParseURL(tt.raw)
		if got.Path != tt.path {
			t.Errorf("ParseURL(%q).Path = %q, want %q", tt.raw, got.Path, tt.path)
		}
		if len(got.Params) != len(tt.params) {
			t.Errorf("ParseURL(%q).Params = %v, want %v", tt.raw, got.Params, tt.params)
			continue
		}
		for k, v := range tt.params {
			if got.Params[k] != v {
				t.Errorf("ParseURL(%q).Params[%s] = %q, want %q", tt.raw, k, got.Params[k], v)
			}
		}
	}
}

func TestHistory(t *testing.T) {
	var h History
	home := state.Route{}
	projects := state.Route{Path: model.ProjectsPage}
	detail := state.Route{Path: model.ProjectsPage, Params: map[string]string{"project": "project1"}}

	if !h.Push(home) || !h.Push(projects) {
		t.Fatal("push failed")
	}
	if h.Push(state.Route{Path: model.ProjectsPage, Params: map[string]string{}}) {
		t.Error("pushed duplicate of current entry")
	}
	h.Push(detail)
	if h.Len() != 3 {
		t.Fatalf("len = %d, want 3", h.Len())
	}

	if r, ok := h.Back(); !ok || r.URL() != "projects.html" {
		t.Errorf("Back = %q, %v", r.URL(), ok)
	}
	h.Push(state.Route{Path: model.BlogsPage})
	if h.Len() != 3 {
		t.Errorf("forward entries kept: len = %d", h.Len())
	}
	if _, ok := h.Forward(); ok {
		t.Error("Forward after push should fail")
	}

	if !h.Seek(home) {
		t.Fatal("Seek(home) failed")
	}
	if r, _ := h.Current(); r.Path != "" {
		t.Errorf("current = %q after seek", r.URL())
	}
	if h.Push(state.Route{Path: model.HomePage}) {
		t.Error("index.html pushed over the equivalent empty path")
	}
	if _, ok := h.Back(); ok {
		t.Error("Back from first entry should fail")
	}
	if h.Seek(detail) {
		t.Error("Seek found a dropped entry")
	}
}

func TestNavigateHome(t *testing.T) {
	r, _ := setupRouter(t)
	res, err := r.Navigate(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if res.Title != "Sebastian Cubides" {
		t.Errorf("title = %q, want site name only", res.Title)
	}
	if r.Document().Title() != res.Title {
		t.Errorf("document title = %q", r.Document().Title())
	}
	if res.Status != http.StatusOK {
		t.Errorf("status = %d", res.Status)
	}
	if got := mainText(r); !strings.Contains(got, "Welcome") {
		t.Errorf("main = %q", got)
	}
}

func TestNavigateProjectDetail(t *testing.T) {
	r, store := setupRouter(t)
	res, err := r.Navigate(context.Background(), model.ProjectsPage, map[string]string{"project": "project1"})
	if err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if res.Title != "Awesome Project | Sebastian Cubides" {
		t.Errorf("title = %q", res.Title)
	}
	article := dom.ByClass(r.Document().Main, "content-detail")
	if article == nil {
		t.Fatal("detail article missing")
	}
	if got := dom.TextContent(article); !strings.Contains(got, "Details.") {
		t.Errorf("article = %q", got)
	}
	if got := store.State().Route.URL(); got != "projects.html?project=project1" {
		t.Errorf("route = %q", got)
	}
	if lang, _ := dom.Attr(r.Document().Root, "lang"); lang != "en" {
		t.Errorf("lang = %q", lang)
	}
}

func TestNavigateUnknownProject(t *testing.T) {
	r, _ := setupRouter(t)
	res, err := r.Navigate(context.Background(), model.ProjectsPage, map[string]string{"project": "doesnotexist"})
	if err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if res.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", res.Status)
	}
	if dom.ByClass(r.Document().Main, "not-found") == nil {
		t.Error("not-found view missing")
	}
	if res.Title != "Not Found | Sebastian Cubides" {
		t.Errorf("title = %q", res.Title)
	}
}

func TestNavigateUnknownPath(t *testing.T) {
	r, _ := setupRouter(t)
	res, err := r.Navigate(context.Background(), "nope.html", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", res.Status)
	}
}

func TestMissingTranslationFileReportsNotFound(t *testing.T) {
	r, store := setupRouter(t)
	res, err := r.Navigate(context.Background(), model.ProjectsPage, map[string]string{"project": "project2"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", res.Status)
	}
	if store.State().Error == "" {
		t.Error("error not recorded in state")
	}
	if retry := dom.ByClass(r.Document().Main, "retry"); retry == nil {
		t.Error("retry link missing")
	} else if href, _ := dom.Attr(retry, "href"); href != "projects.html?project=project2" {
		t.Errorf("retry href = %q", href)
	}
}

func TestActiveNavLink(t *testing.T) {
	r, _ := setupRouter(t)
	if _, err := r.Navigate(context.Background(), model.ProjectsPage, nil); err != nil {
		t.Fatal(err)
	}
	links := dom.FindAll(r.Document().Root, func(n *html.Node) bool {
		return dom.HasClass(n, component.NavLinkClass)
	})
	if len(links) != 3 {
		t.Fatalf("nav links = %d", len(links))
	}
	for i, want := range []bool{false, true, false} {
		if got := dom.HasClass(links[i], "active"); got != want {
			t.Errorf("link %d active = %v, want %v", i, got, want)
		}
	}
}

func TestBackForwardRestore(t *testing.T) {
	r, _ := setupRouter(t)
	ctx := context.Background()
	r.Navigate(ctx, "", nil)
	r.Navigate(ctx, model.ProjectsPage, nil)
	r.Navigate(ctx, model.ProjectsPage, nil)
	if n := r.History().Len(); n != 2 {
		t.Errorf("history len = %d, want 2", n)
	}

	res, err := r.Back(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Route.Path != "" || !strings.Contains(mainText(r), "Welcome") {
		t.Errorf("Back rendered %q", res.Route.URL())
	}
	res, _ = r.Forward(ctx)
	if res.Route.Path != model.ProjectsPage {
		t.Errorf("Forward rendered %q", res.Route.URL())
	}

	res, err = r.Restore(ctx, "/index.html")
	if err != nil {
		t.Fatal(err)
	}
	if res.Route.Path != model.HomePage {
		t.Errorf("Restore rendered %q", res.Route.URL())
	}
	if n := r.History().Len(); n != 2 {
		t.Errorf("Restore pushed an entry: len = %d", n)
	}
}

func TestRestoreUnknownEntryKeptOnLanguageChange(t *testing.T) {
	r, store := setupRouter(t)
	ctx := context.Background()
	r.Navigate(ctx, model.HomePage, nil)
	r.Navigate(ctx, model.ProjectsPage, nil)
	if _, err := r.Restore(ctx, "/projects.html?project=project1"); err != nil {
		t.Fatal(err)
	}
	if cur, _ := r.History().Current(); cur.URL() != "projects.html?project=project1" {
		t.Errorf("history current = %q", cur.URL())
	}

	store.SetState(state.Patch{state.KeyLanguage: i18n.Spanish})
	if got := r.Last().Route.URL(); got != "projects.html?project=project1" {
		t.Errorf("router shows %q after language change", got)
	}
	if got := store.State().Route.URL(); got != "projects.html?project=project1" {
		t.Errorf("store route = %q", got)
	}
	if !strings.Contains(mainText(r), "Detalles.") {
		t.Errorf("main = %q", mainText(r))
	}
}

func TestLanguageChangeRerenders(t *testing.T) {
	r, store := setupRouter(t)
	if _, err := r.Navigate(context.Background(), model.ProjectsPage, map[string]string{"project": "project1"}); err != nil {
		t.Fatal(err)
	}
	store.SetState(state.Patch{state.KeyLanguage: i18n.Spanish})

	if got := r.Document().Title(); got != "Proyecto Impresionante | Sebastian Cubides" {
		t.Errorf("title = %q", got)
	}
	if got := mainText(r); !strings.Contains(got, "Detalles.") {
		t.Errorf("main = %q", got)
	}
	if lang, _ := dom.Attr(r.Document().Root, "lang"); lang != "es" {
		t.Errorf("lang = %q", lang)
	}
	if back := dom.ByClass(r.Document().Main, "back-link"); dom.TextContent(back) != "Volver" {
		t.Errorf("back link = %q", dom.TextContent(back))
	}
}

func TestThemeAppliedToDocument(t *testing.T) {
	r, store := setupRouter(t)
	store.SetState(state.Patch{state.KeyTheme: state.Dark})
	if !dom.HasClass(r.Document().Body, "dark-mode") {
		t.Error("body missing dark-mode")
	}
	if v, _ := dom.Attr(r.Document().Root, "data-theme"); v != "dark" {
		t.Errorf("data-theme = %q", v)
	}
	store.SetState(state.Patch{state.KeyTheme: state.Light})
	if dom.HasClass(r.Document().Body, "dark-mode") {
		t.Error("dark-mode kept after switching to light")
	}
}

func TestStaleRenderDiscarded(t *testing.T) {
	routes := map[string]Route{
		"slow": {TitleKey: "page-title.home", Handler: func(ctx context.Context, rt *Router, p *Page) error {
			dom.Append(p.Main, dom.El("p", "class", "slow"))
			_, err := rt.Navigate(ctx, "fast", nil)
			return err
		}},
		"fast": {TitleKey: "page-title.blog", Handler: func(_ context.Context, _ *Router, p *Page) error {
			dom.Append(p.Main, dom.El("p", "class", "fast"))
			return nil
		}},
	}
	r, store := setupRouter(t, WithRoutes(routes))

	_, err := r.Navigate(context.Background(), "slow", nil)
	if !errors.Is(err, ErrStale) {
		t.Fatalf("err = %v, want ErrStale", err)
	}
	if dom.ByClass(r.Document().Main, "slow") != nil {
		t.Error("stale render committed")
	}
	if dom.ByClass(r.Document().Main, "fast") == nil {
		t.Error("newer render missing")
	}
	if got := store.State().Route.Path; got != "fast" {
		t.Errorf("route = %q, want fast", got)
	}
	if got := r.Last().Route.Path; got != "fast" {
		t.Errorf("last = %q, want fast", got)
	}
}

func TestPageComponentsUnmountedOnNavigate(t *testing.T) {
	r, store := setupRouter(t)
	ctx := context.Background()
	before := store.Subscribers()
	if _, err := r.Navigate(ctx, model.ProjectsPage, nil); err != nil {
		t.Fatal(err)
	}
	if store.Subscribers() <= before {
		t.Fatal("content list did not subscribe")
	}
	if _, err := r.Navigate(ctx, "", nil); err != nil {
		t.Fatal(err)
	}
	if got := store.Subscribers(); got != before {
		t.Errorf("subscribers = %d, want %d", got, before)
	}
}
