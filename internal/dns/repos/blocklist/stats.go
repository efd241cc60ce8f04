package blocklist

// CacheStats reports lightweight cache metrics.
// All fields are best-effort snapshots and may be updated concurrently.
type CacheStats struct {
	Size      int    // current number of entries
	Hits      uint64 // total cache hits since construction
	Misses    uint64 // total cache misses since construction
	Evictions uint64 // total evictions since construction
}

// RepoStats exposes repository-level counters.
type RepoStats struct {
	Cache      CacheStats
	Names      int    // blocked names across all partitions
	Partitions int    // number of partitions loaded
	BloomSkips uint64 // lookups answered by the Bloom filter alone
}

// Fields renders the counters as structured log fields.
func (s RepoStats) Fields() map[string]any {
	return map[string]any{
		"names":           s.Names,
		"partitions":      s.Partitions,
		"bloom_skips":     s.BloomSkips,
		"cache_size":      s.Cache.Size,
		"cache_hits":      s.Cache.Hits,
		"cache_misses":    s.Cache.Misses,
		"cache_evictions": s.Cache.Evictions,
	}
}
