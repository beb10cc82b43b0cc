package dom

import (
	"io"

	"golang.org/x/net/html"
)

// Well-known ids of the page shell.
const (
	HeaderRootID  = "header-root"
	MainContentID = "main-content"
	StatusRootID  = "status-root"
)

// Document is one page: the <html> tree plus direct handles to the nodes
// the router and components write to.
type Document struct {
	Root  *html.Node
	Head  *html.Node
	Body  *html.Node
	Main  *html.Node
	title *html.Node
}

// NewDocument builds the page shell. stylesheets and scripts are linked in
// the head in the order given.
func NewDocument(stylesheets, scripts []string) *Document {
	root := El("html", "lang", "en")
	head := El("head")
	Append(head,
		El("meta", "charset", "utf-8"),
		El("meta", "name", "viewport", "content", "width=device-width, initial-scale=1"),
	)
	title := El("title")
	Append(head, title)
	for _, href := range stylesheets {
		Append(head, El("link", "rel", "stylesheet", "href", href))
	}
	for _, src := range scripts {
		Append(head, El("script", "src", src, "defer", ""))
	}

	body := El("body")
	main := El("main", "id", MainContentID)
	Append(body,
		El("div", "id", HeaderRootID),
		El("div", "id", StatusRootID),
		main,
	)
	Append(root, head, body)

	return &Document{Root: root, Head: head, Body: body, Main: main, title: title}
}

// Title returns the current document title.
func (d *Document) Title() string {
	return TextContent(d.title)
}

// SetTitle replaces the document title.
func (d *Document) SetTitle(s string) {
	SetText(d.title, s)
}

// ByID looks up an element anywhere in the document.
func (d *Document) ByID(id string) *html.Node {
	return ByID(d.Root, id)
}

// Render writes the document with its doctype.
func (d *Document) Render(w io.Writer) error {
	if _, err := io.WriteString(w, "<!DOCTYPE html>"); err != nil {
		return err
	}
	return html.Render(w, d.Root)
}
