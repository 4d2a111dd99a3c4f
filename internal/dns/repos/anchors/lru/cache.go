package lru

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/rr-anchor/internal/dns/domain"
	"github.com/haukened/rr-anchor/internal/dns/repos/anchors"
)

// entryCache is an LRU-backed implementation of anchors.EntryCache.
// It tracks basic metrics: hits, misses, and evictions.
type entryCache struct {
	lru       *lru.Cache[domain.NameKey, domain.Entry]
	capacity  int
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// disabledCache is a no-op EntryCache used when size <= 0.
type disabledCache struct{}

// New creates a new EntryCache with the given capacity. If size <= 0, a
// disabled no-op cache is returned that always misses and tracks no metrics.
func New(size int) (anchors.EntryCache, error) {
	if size <= 0 {
		return &disabledCache{}, nil
	}

	c := &entryCache{capacity: size}
	// NewWithEvict observes evictions, including Purge-induced ones.
	cache, err := lru.NewWithEvict(size, func(_ domain.NameKey, _ domain.Entry) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	c.lru = cache
	return c, nil
}

// Get looks up an entry by key. When found, increments hits; otherwise increments misses.
func (c *entryCache) Get(key domain.NameKey) (domain.Entry, bool) {
	if val, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		return val, true
	}
	c.misses.Add(1)
	return domain.Entry{}, false
}

func (c *entryCache) Put(key domain.NameKey, e domain.Entry) {
	c.lru.Add(key, e)
}

func (c *entryCache) Len() int { return c.lru.Len() }

// Purge clears all entries. Evictions are counted via the eviction callback.
func (c *entryCache) Purge() { c.lru.Purge() }

func (c *entryCache) Stats() anchors.CacheStats {
	return anchors.CacheStats{
		Capacity:  c.capacity,
		Size:      c.lru.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (d *disabledCache) Get(domain.NameKey) (domain.Entry, bool) { return domain.Entry{}, false }
func (d *disabledCache) Put(domain.NameKey, domain.Entry)         {}
func (d *disabledCache) Len() int                                 { return 0 }
func (d *disabledCache) Purge()                                   {}
func (d *disabledCache) Stats() anchors.CacheStats                { return anchors.CacheStats{} }

var _ anchors.EntryCache = (*entryCache)(nil)
var _ anchors.EntryCache = (*disabledCache)(nil)
