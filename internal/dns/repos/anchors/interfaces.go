package anchors

import "github.com/haukened/rr-anchor/internal/dns/domain"

// Store is the persistent index of registry entries and the owner value.
// Every Put and PutOwner is a single write that either fully applies or has
// no effect.
type Store interface {
	Get(key domain.NameKey) (domain.Entry, bool, error)
	Put(key domain.NameKey, e domain.Entry) error
	Owner() (domain.Address, bool, error)
	PutOwner(owner domain.Address) error
	// Visit calls visit for every stored entry until it returns false.
	Visit(visit func(key domain.NameKey, e domain.Entry) bool) error
	Stats() StoreStats
	Close() error
}

// EntryCache caches entries by name key with basic metrics. Absent names are
// cached as zero entries.
type EntryCache interface {
	Get(key domain.NameKey) (domain.Entry, bool)
	Put(key domain.NameKey, e domain.Entry)
	Len() int
	Purge()
	Stats() CacheStats
}

// BloomSizer computes Bloom filter parameters from capacity (n) and target FP rate (p).
// It returns m (number of bits) and k (number of hash functions).
type BloomSizer interface {
	Size(n uint64, p float64) (m uint64, k uint8)
}

// BloomFilter is the minimal interface the repository needs from Bloom filters.
type BloomFilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
	Clear()
}

// BloomFactory constructs BloomFilters sized for a capacity and FP rate.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}
