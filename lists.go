package homepage

import (
	"context"
	"io/fs"
	"sync"

	"go.uber.org/zap"

	"github.com/scubides/homepage/content"
	"github.com/scubides/homepage/model"
)

// catalogSource serves the metadata.yaml catalog and re-reads it on
// Reload. A catalog that fails to parse keeps the previous one.
type catalogSource struct {
	mu      sync.RWMutex
	catalog *content.Catalog
	fsys    fs.FS
	logger  *zap.Logger
}

func newCatalogSource(fsys fs.FS, logger *zap.Logger) *catalogSource {
	c := &catalogSource{catalog: content.DefaultCatalog(), fsys: fsys, logger: logger}
	c.Reload()
	return c
}

// Reload re-reads the catalog file.
func (c *catalogSource) Reload() {
	cat, err := content.LoadCatalog(c.fsys)
	if err != nil {
		c.logger.Warn("failed to load content catalog, keeping previous", zap.Error(err))
		return
	}
	c.mu.Lock()
	c.catalog = cat
	c.mu.Unlock()
}

// List implements content.Lister.
func (c *catalogSource) List(ctx context.Context, t model.ContentType) ([]model.ContentMetadata, error) {
	c.mu.RLock()
	cat := c.catalog
	c.mu.RUnlock()
	return cat.List(ctx, t)
}
