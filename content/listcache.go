package content

import (
	"context"
	"sync"
	"time"

	"github.com/scubides/homepage/model"
)

// ListCache memoises discovered lists with a TTL. It implements Lister.
type ListCache struct {
	mu      sync.RWMutex
	lists   map[model.ContentType]cachedList
	ttl     time.Duration
	fetcher Fetcher
	now     func() time.Time
}

type cachedList struct {
	items   []model.ContentMetadata
	fetched time.Time
}

// NewListCache discovers lists through f and keeps them for ttl.
func NewListCache(f Fetcher, ttl time.Duration) *ListCache {
	return &ListCache{
		lists:   make(map[model.ContentType]cachedList),
		ttl:     ttl,
		fetcher: f,
		now:     time.Now,
	}
}

func (c *ListCache) valid(t model.ContentType) (cachedList, bool) {
	l, ok := c.lists[t]
	return l, ok && c.now().Sub(l.fetched) < c.ttl
}

// Invalidate clears every list so the next read probes again.
func (c *ListCache) Invalidate() {
	c.mu.Lock()
	c.lists = make(map[model.ContentType]cachedList)
	c.mu.Unlock()
}

// List implements Lister. It tries a read lock first and only takes the
// write lock to rediscover.
func (c *ListCache) List(ctx context.Context, t model.ContentType) ([]model.ContentMetadata, error) {
	c.mu.RLock()
	if l, ok := c.valid(t); ok {
		c.mu.RUnlock()
		return l.items, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.valid(t); ok {
		return l.items, nil
	}
	items, err := Discover(ctx, c.fetcher, t)
	if err != nil {
		return nil, err
	}
	c.lists[t] = cachedList{items: items, fetched: c.now()}
	return items, nil
}
