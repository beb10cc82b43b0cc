// Package model holds the content types shared by the state store, the
// content manager and the router.
package model

import (
	"fmt"
	"net/url"
	"time"

	"github.com/scubides/homepage/i18n"
)

// ContentType names a family of markdown documents.
type ContentType string

const (
	Page    ContentType = "page"
	Blog    ContentType = "blog"
	Project ContentType = "project"
)

// BasePath returns the directory the type's markdown lives in.
func (t ContentType) BasePath() string {
	switch t {
	case Blog:
		return "content/blogs/"
	case Project:
		return "content/projects/"
	default:
		return "content/"
	}
}

// Valid reports whether t is a known type.
func (t ContentType) Valid() bool {
	return t == Page || t == Blog || t == Project
}

// Extension is the suffix of every content file.
const Extension = ".md"

// BaseURL returns the English URL of id.
func (t ContentType) BaseURL(id string) string {
	return t.BasePath() + id + Extension
}

// Page and query parameter of each list type's detail view.
const (
	HomePage     = "index.html"
	ProjectsPage = "projects.html"
	BlogsPage    = "blogs.html"

	ProjectParam = "project"
	PostParam    = "post"
)

// ListPage returns the page listing items of t and the query parameter
// selecting one of them, or "" for types without a list.
func (t ContentType) ListPage() (page, param string) {
	switch t {
	case Blog:
		return BlogsPage, PostParam
	case Project:
		return ProjectsPage, ProjectParam
	}
	return "", ""
}

// DetailURL returns the site URL showing item id.
func (t ContentType) DetailURL(id string) string {
	page, param := t.ListPage()
	if page == "" {
		return HomePage
	}
	return page + "?" + param + "=" + url.QueryEscape(id)
}

// ContentRecord is one fetched markdown document. It is never mutated after
// creation; a refetch produces a new record.
type ContentRecord struct {
	Type      ContentType
	ID        string
	Language  i18n.Lang
	Markdown  string
	URL       string
	Timestamp time.Time
}

// CacheKey is the "{type}:{id}:{language}" key records are cached under.
func CacheKey(t ContentType, id string, lang i18n.Lang) string {
	return fmt.Sprintf("%s:%s:%s", t, id, lang)
}

// ContentMetadata describes one item of a list page.
type ContentMetadata struct {
	ID          string               `yaml:"id"`
	Title       map[i18n.Lang]string `yaml:"title"`
	URL         string               `yaml:"url"`
	Date        string               `yaml:"date,omitempty"`
	Tags        []string             `yaml:"tags,omitempty"`
	Description map[i18n.Lang]string `yaml:"description,omitempty"`
}

// LocalizedItem is metadata resolved to one language.
type LocalizedItem struct {
	ID          string
	Title       string
	URL         string
	Description string
	Date        string
	Tags        []string
}

// Localize resolves m for lang, falling back to English and then the id.
func (m ContentMetadata) Localize(lang i18n.Lang) LocalizedItem {
	return LocalizedItem{
		ID:          m.ID,
		Title:       pick(m.Title, lang, m.ID),
		URL:         i18n.LocalizedURL(m.URL, lang),
		Description: pick(m.Description, lang, ""),
		Date:        m.Date,
		Tags:        m.Tags,
	}
}

func pick(m map[i18n.Lang]string, lang i18n.Lang, fallback string) string {
	if v := m[lang]; v != "" {
		return v
	}
	if v := m[i18n.Default]; v != "" {
		return v
	}
	return fallback
}
