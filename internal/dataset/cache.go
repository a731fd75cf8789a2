package dataset

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes loads process-wide so repeated renders in one session do
// not re-parse the file. Keys cover source identity plus the decode
// parameters; entries are immutable once computed and only ever replaced
// whole, so concurrent readers need no further coordination. There is no
// timer-based invalidation: a key changes only when the source changes.
type Cache struct {
	loader *Loader

	mu      sync.RWMutex
	entries map[string]*NormalizedRecordSet
	group   singleflight.Group
}

// NewCache wraps a loader with process-wide memoization.
func NewCache(loader *Loader) *Cache {
	return &Cache{
		loader:  loader,
		entries: make(map[string]*NormalizedRecordSet),
	}
}

// cacheKey identifies a load: source identity, encoding candidates and
// delimiter. Alias specs are deliberately excluded; they are fixed per
// source name in configuration.
func cacheKey(src Source) string {
	return fmt.Sprintf("%s|%s|%s|%s", src.Name, src.Path, strings.Join(src.Encodings, ","), src.Delimiter)
}

// Get returns the cached set for src, loading it on first access. Failed
// loads are not cached: a retry is an explicit fresh call by the user, and
// there is no evidence a transient condition has cleared until then.
func (c *Cache) Get(ctx context.Context, src Source) (*NormalizedRecordSet, error) {
	key := cacheKey(src)

	c.mu.RLock()
	set, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return set, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		loaded, err := c.loader.Load(ctx, src)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = loaded
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*NormalizedRecordSet), nil
}

// Invalidate drops the entry for src, forcing the next Get to recompute.
// Used when the underlying source identity changes (new file uploaded).
func (c *Cache) Invalidate(src Source) {
	c.mu.Lock()
	delete(c.entries, cacheKey(src))
	c.mu.Unlock()
}
