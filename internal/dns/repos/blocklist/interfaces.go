package blocklist

import (
	"github.com/haukened/dns-block/internal/dns/domain"
	"github.com/haukened/dns-block/internal/dns/services/hierarchy"
)

// BloomSizer computes Bloom filter parameters from capacity (n) and target FP rate (p).
// It returns m (number of bits) and k (number of hash functions).
type BloomSizer interface {
	Size(n uint64, p float64) (m uint64, k uint8)
}

// BloomFilter is the minimal interface the repository needs from Bloom filters.
type BloomFilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
}

// BloomFactory builds filters sized for a dataset.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}

// DecisionCache caches block decisions by canonical name with basic metrics.
type DecisionCache interface {
	Get(name string) (domain.BlockDecision, bool)
	Put(name string, d domain.BlockDecision)
	Len() int
	Purge()
	Stats() (hits, misses, evictions uint64)
}

// Partitions is a finished, read-only set of block indexes.
// classifier.Result satisfies it.
type Partitions interface {
	Partition(name string) *hierarchy.Index
	Indexes() []*hierarchy.Index
}

// Repository is the composition layer that wires cache → bloom → index.
// Decide returns a value-type BlockDecision for any name, canonical or not.
// Reload swaps in new partitions, rebuilds the Bloom filter, and clears the cache.
type Repository interface {
	Decide(name string) domain.BlockDecision
	Reload(p Partitions)
	Stats() RepoStats
}
