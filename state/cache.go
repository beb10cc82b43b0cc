package state

import (
	"fmt"
	"regexp"
	"sort"
	"time"
)

// DefaultCacheTTL applies when SetCache is given a non-positive ttl.
const DefaultCacheTTL = 5 * time.Minute

// CacheEntry is one cached value and its expiry.
type CacheEntry struct {
	Data      any
	ExpiresAt time.Time
}

// CacheStats counts lookups since the store was created.
type CacheStats struct {
	Hits   int64
	Misses int64
}

// HitRate returns hits/(hits+misses), or 0 with no lookups.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// SetCache stores data under key until ttl elapses.
func (s *Store) SetCache(key string, data any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	s.mu.Lock()
	s.cache[key] = CacheEntry{Data: data, ExpiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
}

// GetCache returns the value under key. An expired entry is removed and
// reported as missing.
func (s *Store) GetCache(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache[key]
	if !ok {
		s.stats.Misses++
		return nil, false
	}
	if s.now().After(e.ExpiresAt) {
		delete(s.cache, key)
		s.stats.Misses++
		return nil, false
	}
	s.stats.Hits++
	return e.Data, true
}

// ClearCache removes every key matching the regular expression pattern, or
// every key when pattern is empty.
func (s *Store) ClearCache(pattern string) error {
	if pattern == "" {
		s.mu.Lock()
		s.cache = make(map[string]CacheEntry)
		s.mu.Unlock()
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("state: clear cache: %w", err)
	}
	s.mu.Lock()
	for key := range s.cache {
		if re.MatchString(key) {
			delete(s.cache, key)
		}
	}
	s.mu.Unlock()
	return nil
}

// CacheKeys returns the cached keys, sorted. Expired entries not yet looked
// up are included.
func (s *Store) CacheKeys() []string {
	s.mu.Lock()
	keys := make([]string, 0, len(s.cache))
	for k := range s.cache {
		keys = append(keys, k)
	}
	s.mu.Unlock()
	sort.Strings(keys)
	return keys
}

// CacheStats returns the lookup counters.
func (s *Store) CacheStats() CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
