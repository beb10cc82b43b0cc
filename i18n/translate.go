package i18n

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/scubides/homepage/dom"
)

const (
	// Attr marks an element whose text is a translation key.
	Attr = "data-i18n"
	// FallbackAttr holds the text used when the key has no translation.
	FallbackAttr = "data-i18n-fallback"
)

// TranslateNode replaces the text of every element below root carrying a
// data-i18n key with its translation in lang. Attributes named
// data-i18n-<name> translate into <name>, so data-i18n-aria-label="k" sets
// aria-label. An <html> root also gets its lang attribute updated.
func TranslateNode(root *html.Node, t Table, lang Lang) {
	if root == nil {
		return
	}
	dom.Walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if n.Data == "html" {
			dom.SetAttr(n, "lang", string(lang))
		}
		translateAttrs(n, t, lang)
		if key, ok := dom.Attr(n, Attr); ok && key != "" {
			text := t.T(lang, key)
			if text == key {
				if fb, ok := dom.Attr(n, FallbackAttr); ok {
					text = fb
				}
			}
			dom.SetText(n, text)
			return false
		}
		return true
	})
}

func translateAttrs(n *html.Node, t Table, lang Lang) {
	var targets [][2]string
	for _, a := range n.Attr {
		if !strings.HasPrefix(a.Key, Attr+"-") || a.Key == FallbackAttr {
			continue
		}
		targets = append(targets, [2]string{strings.TrimPrefix(a.Key, Attr+"-"), a.Val})
	}
	for _, tg := range targets {
		dom.SetAttr(n, tg[0], t.T(lang, tg[1]))
	}
}
