package anchors

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/haukened/rr-anchor/internal/dns/common/clock"
	"github.com/haukened/rr-anchor/internal/dns/domain"
)

// Repository composes a Store, a Bloom filter (via factory) and an EntryCache.
// Reads run bloom -> cache -> store; writes go to the store first and then
// refresh the filter and cache.
type Repository struct {
	mu       sync.RWMutex
	store    Store
	cache    EntryCache
	bloom    BloomFilter
	factory  BloomFactory
	capacity uint64
	fpRate   float64
	clock    clock.Clock

	bloomSkips  atomic.Uint64
	lastRebuild atomic.Int64
}

// NewRepository constructs a Repository. capacity and fpRate size the Bloom
// filter built by Rebuild; until Rebuild runs every lookup reaches the cache
// or store.
func NewRepository(store Store, cache EntryCache, factory BloomFactory, capacity uint64, fpRate float64, clk clock.Clock) *Repository {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Repository{
		store:    store,
		cache:    cache,
		factory:  factory,
		capacity: capacity,
		fpRate:   fpRate,
		clock:    clk,
	}
}

// Rebuild sizes a fresh Bloom filter for the stored keys, fills it, and swaps
// it in while purging the cache.
func (r *Repository) Rebuild() error {
	if r.factory == nil {
		return nil
	}
	n := r.store.Stats().Entries
	if n < r.capacity {
		n = r.capacity
	}
	bf := r.factory.New(n, r.fpRate)
	if err := r.store.Visit(func(key domain.NameKey, _ domain.Entry) bool {
		bf.Add(key[:])
		return true
	}); err != nil {
		return fmt.Errorf("rebuild bloom filter: %w", err)
	}

	r.mu.Lock()
	r.bloom = bf
	r.cache.Purge()
	r.mu.Unlock()
	r.lastRebuild.Store(r.clock.Now().Unix())
	return nil
}

// Entry returns the entry stored under key. An absent key yields the zero
// Entry, which is the Unset state.
func (r *Repository) Entry(key domain.NameKey) (domain.Entry, error) {
	if !r.checkBloom(key) {
		r.bloomSkips.Add(1)
		return domain.Entry{}, nil
	}
	if e, ok := r.checkCache(key); ok {
		return e, nil
	}
	e, _, err := r.store.Get(key)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("load entry %s: %w", key, err)
	}
	r.updateCache(key, e)
	return e.Clone(), nil
}

// Save writes e under key. The cache and filter are only touched after the
// store accepted the write.
func (r *Repository) Save(key domain.NameKey, e domain.Entry) error {
	if err := r.store.Put(key, e); err != nil {
		return fmt.Errorf("store entry %s: %w", key, err)
	}
	r.mu.Lock()
	if r.bloom != nil {
		r.bloom.Add(key[:])
	}
	r.cache.Put(key, e.Clone())
	r.mu.Unlock()
	return nil
}

// Owner returns the persisted owner, if one was ever saved.
func (r *Repository) Owner() (domain.Address, bool, error) {
	return r.store.Owner()
}

// SaveOwner persists the owner value.
func (r *Repository) SaveOwner(owner domain.Address) error {
	return r.store.PutOwner(owner)
}

// Visit walks the store directly, bypassing filter and cache.
func (r *Repository) Visit(visit func(key domain.NameKey, e domain.Entry) bool) error {
	return r.store.Visit(visit)
}

func (r *Repository) RepoStats() RepoStats {
	return RepoStats{
		Cache:       r.cache.Stats(),
		Store:       r.store.Stats(),
		BloomSkips:  r.bloomSkips.Load(),
		LastRebuild: r.lastRebuild.Load(),
	}
}

func (r *Repository) Close() error {
	return r.store.Close()
}

// checkBloom returns true if the store might hold key. Without a filter it
// always returns true.
func (r *Repository) checkBloom(key domain.NameKey) bool {
	r.mu.RLock()
	bf := r.bloom
	r.mu.RUnlock()
	if bf == nil {
		return true
	}
	return bf.MightContain(key[:])
}

func (r *Repository) checkCache(key domain.NameKey) (domain.Entry, bool) {
	r.mu.RLock()
	e, ok := r.cache.Get(key)
	r.mu.RUnlock()
	if !ok {
		return domain.Entry{}, false
	}
	return e.Clone(), true
}

func (r *Repository) updateCache(key domain.NameKey, e domain.Entry) {
	r.mu.Lock()
	r.cache.Put(key, e.Clone())
	r.mu.Unlock()
}
