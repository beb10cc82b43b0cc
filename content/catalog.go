package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/scubides/homepage/i18n"
	"github.com/scubides/homepage/model"
)

// Lister returns the metadata of every item of a list page, in display
// order.
type Lister interface {
	List(ctx context.Context, t model.ContentType) ([]model.ContentMetadata, error)
}

// Lookup finds id in the list of type t.
func Lookup(ctx context.Context, l Lister, t model.ContentType, id string) (model.ContentMetadata, error) {
	items, err := l.List(ctx, t)
	if err != nil {
		return model.ContentMetadata{}, err
	}
	for _, m := range items {
		if m.ID == id {
			return m, nil
		}
	}
	return model.ContentMetadata{}, fmt.Errorf("%s %q: %w", t, id, ErrNotFound)
}

// CatalogFile is the metadata file, relative to the site root.
const CatalogFile = "content/metadata.yaml"

// Catalog is the static metadata of the blog and project lists.
type Catalog struct {
	Blogs    []model.ContentMetadata `yaml:"blogs"`
	Projects []model.ContentMetadata `yaml:"projects"`
}

// List implements Lister.
func (c *Catalog) List(_ context.Context, t model.ContentType) ([]model.ContentMetadata, error) {
	switch t {
	case model.Blog:
		return c.Blogs, nil
	case model.Project:
		return c.Projects, nil
	}
	return nil, fmt.Errorf("%w: %q has no list", ErrUnknownType, t)
}

// ParseCatalog decodes a YAML catalog. Items without a url get the
// default one for their type.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for i, m := range c.Blogs {
		if err := validate(&c.Blogs[i], model.Blog); err != nil {
			return nil, fmt.Errorf("blogs[%d] %q: %w", i, m.ID, err)
		}
	}
	for i, m := range c.Projects {
		if err := validate(&c.Projects[i], model.Project); err != nil {
			return nil, fmt.Errorf("projects[%d] %q: %w", i, m.ID, err)
		}
	}
	return &c, nil
}

func validate(m *model.ContentMetadata, t model.ContentType) error {
	if m.ID == "" {
		return errors.New("missing id")
	}
	if m.URL == "" {
		m.URL = t.BaseURL(m.ID)
	}
	if m.Title[i18n.English] == "" {
		return errors.New("missing english title")
	}
	return nil
}

// LoadCatalog reads CatalogFile from fsys. A missing file yields
// DefaultCatalog.
func LoadCatalog(fsys fs.FS) (*Catalog, error) {
	f, err := fsys.Open(CatalogFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultCatalog(), nil
		}
		return nil, err
	}
	defer f.Close()
	return ParseCatalog(f)
}

// DefaultCatalog is the built-in list metadata.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Blogs: []model.ContentMetadata{
			{
				ID:    "post1",
				Title: map[i18n.Lang]string{i18n.English: "A whitepaper on my website", i18n.Spanish: "Un whitepaper sobre mi sitio web"},
				URL:   "content/blogs/post1.md",
				Date:  "2024-01-01",
				Tags:  []string{"web", "development"},
				Description: map[i18n.Lang]string{
					i18n.English: "A comprehensive overview of my personal website",
					i18n.Spanish: "Una descripción completa de mi sitio web personal",
				},
			},
			{
				ID:    "post2",
				Title: map[i18n.Lang]string{i18n.English: "My Second Post", i18n.Spanish: "Mi segunda publicación"},
				URL:   "content/blogs/post2.md",
				Date:  "2024-01-15",
				Tags:  []string{"blog", "update"},
				Description: map[i18n.Lang]string{
					i18n.English: "My second blog post with updates",
					i18n.Spanish: "Mi segunda publicación del blog con actualizaciones",
				},
			},
		},
		Projects: []model.ContentMetadata{
			{
				ID:    "project1",
				Title: map[i18n.Lang]string{i18n.English: "Awesome Project", i18n.Spanish: "Proyecto Impresionante"},
				URL:   "content/projects/project1.md",
				Tags:  []string{"JavaScript", "HTML", "CSS"},
				Description: map[i18n.Lang]string{
					i18n.English: "An awesome project built with modern web technologies",
					i18n.Spanish: "Un proyecto impresionante construido con tecnologías web modernas",
				},
			},
			{
				ID:    "project2",
				Title: map[i18n.Lang]string{i18n.English: "Another Project", i18n.Spanish: "Otro Proyecto"},
				URL:   "content/projects/project2.md",
				Tags:  []string{"React", "Node.js"},
				Description: map[i18n.Lang]string{
					i18n.English: "Another exciting project currently in development",
					i18n.Spanish: "Otro proyecto emocionante actualmente en desarrollo",
				},
			},
		},
	}
}
