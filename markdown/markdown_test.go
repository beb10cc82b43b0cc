package markdown

import (
	"strings"
	"testing"
)

func TestRewriteImagePaths(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"![logo](/static/images/logo.png)", "![logo](images/logo.png)"},
		{"![](/static/images/a/b.jpg) text", "![](images/a/b.jpg) text"},
		{"![logo](images/logo.png)", "![logo](images/logo.png)"},
		{"[link](/static/images/logo.png)", "[link](/static/images/logo.png)"},
		{"![x](/static/css/site.css)", "![x](/static/css/site.css)"},
	}
	for _, tt := range tests {
		if got := RewriteImagePaths(tt.input); got != tt.expected {
			t.Errorf("RewriteImagePaths(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderHeadingsGetIDs(t *testing.T) {
	out, err := Render("# Hello World\n\nSome **bold** text.")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(out, `<h1 id="hello-world">Hello World</h1>`) {
		t.Errorf("missing heading id: %s", out)
	}
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("missing bold: %s", out)
	}
}

func TestRenderStripsScripts(t *testing.T) {
	out, err := Render("hello <script>alert(1)</script>\n\n[x](javascript:alert(1))")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if strings.Contains(out, "<script") || strings.Contains(out, "javascript:") {
		t.Errorf("unsafe output: %s", out)
	}
}

func TestRenderKeepsCodeLanguage(t *testing.T) {
	out, err := Render("```go\nfmt.Println(1)\n```")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(out, `class="language-go"`) {
		t.Errorf("code language class dropped: %s", out)
	}
}

func TestRenderImageLoading(t *testing.T) {
	out, err := Render("![a](images/a.png)\n\n![b](images/b.png)")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	first := strings.Index(out, `loading="eager"`)
	second := strings.Index(out, `loading="lazy"`)
	if first < 0 || second < 0 || first > second {
		t.Errorf("unexpected image loading attrs: %s", out)
	}
}

func TestRenderTable(t *testing.T) {
	out, err := Render("| A | B |\n|---|---|\n| 1 | 2 |")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(out, "<table>") || !strings.Contains(out, "<td>1</td>") {
		t.Errorf("table not rendered: %s", out)
	}
}
