// Package markdown renders content markdown to sanitized HTML.
package markdown

import (
	"bytes"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// reLegacyImage matches images still pointing at the old /static/ asset root.
var reLegacyImage = regexp.MustCompile(`!\[([^\]]*)\]\(/static/(images/[^)]+)\)`)

// RewriteImagePaths rewrites ![alt](/static/images/x) to ![alt](images/x).
func RewriteImagePaths(md string) string {
	return reLegacyImage.ReplaceAllString(md, "![$1]($2)")
}

var (
	renderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(imageLoading{}, 100)),
		),
	)
	policy = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+-]+$`)).OnElements("code")
	p.AllowAttrs("loading", "decoding").OnElements("img")
	p.AllowAttrs("checked", "disabled", "type").OnElements("input")
	p.AllowElements("input")
	return p
}

// Render converts md to sanitized HTML. Raw HTML in md is dropped.
func Render(md string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return policy.Sanitize(buf.String()), nil
}

// imageLoading loads the first image eagerly and defers the rest.
type imageLoading struct{}

func (imageLoading) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	count := 0
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindImage {
			return ast.WalkContinue, nil
		}
		count++
		if count == 1 {
			n.SetAttributeString("loading", []byte("eager"))
		} else {
			n.SetAttributeString("loading", []byte("lazy"))
		}
		n.SetAttributeString("decoding", []byte("async"))
		return ast.WalkContinue, nil
	})
}
