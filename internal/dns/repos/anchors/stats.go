package anchors

// CacheStats reports lightweight cache metrics.
// All fields are best-effort snapshots and may be updated concurrently.
type CacheStats struct {
	Capacity  int    // configured capacity (0 for disabled cache)
	Size      int    // current number of entries
	Hits      uint64 // total cache hits since construction
	Misses    uint64 // total cache misses since construction
	Evictions uint64 // total evictions since construction
}

// StoreStats reports store counts and metadata.
type StoreStats struct {
	Entries     uint64 // stored keys, including cleared ones
	Records     uint64 // entries holding rdata
	Locked      uint64 // locked entries
	UpdatedUnix int64  // last write, unix seconds (0 if never written)
}

// RepoStats exposes repository-level counters and underlying stats.
type RepoStats struct {
	Cache       CacheStats
	Store       StoreStats
	BloomSkips  uint64 // lookups answered as absent by the Bloom filter
	LastRebuild int64  // unix seconds of the last Rebuild
}
