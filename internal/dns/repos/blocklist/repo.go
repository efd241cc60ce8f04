package blocklist

import (
	"sync"
	"sync/atomic"

	"github.com/haukened/dns-block/internal/dns/common/utils"
	"github.com/haukened/dns-block/internal/dns/domain"
)

// repository implements the Repository interface by composing the classifier
// partitions, a Bloom filter (via factory), and a DecisionCache. It applies a
// cache → bloom → index pipeline on reads and swaps snapshots atomically on Reload.
type repository struct {
	mu         sync.RWMutex
	partitions Partitions
	names      int
	cache      DecisionCache
	bloom      BloomFilter
	factory    BloomFactory
	fpRate     float64
	bloomSkips atomic.Uint64
}

// NewRepository constructs a Repository over p.
// fpRate is the target false-positive rate for the Bloom filter.
func NewRepository(p Partitions, cache DecisionCache, factory BloomFactory, fpRate float64) Repository {
	r := &repository{cache: cache, factory: factory, fpRate: fpRate}
	r.Reload(p)
	return r
}

// Decide returns a BlockDecision for the provided domain name.
func (r *repository) Decide(name string) domain.BlockDecision {
	cn := utils.CanonicalDNSName(name)
	if cn == "" {
		return domain.EmptyDecision()
	}
	// 1) checkCache
	if d, ok := r.checkCache(cn); ok {
		return d
	}
	// 2) checkBloom: early-allow if definitively negative
	var dec domain.BlockDecision
	if r.checkBloom(cn) {
		// 3) checkIndex
		dec = r.checkIndex(cn)
	} else {
		r.bloomSkips.Add(1)
		dec = domain.EmptyDecision()
	}
	// 4) updateCache
	r.updateCache(cn, dec)
	return dec
}

// Reload builds a fresh Bloom filter from every name in p, then swaps it in
// together with p and purges the decision cache under lock.
func (r *repository) Reload(p Partitions) {
	var n uint64
	if p != nil {
		for _, x := range p.Indexes() {
			if x != nil {
				n += uint64(x.Len())
			}
		}
	}

	var bf BloomFilter
	if r.factory != nil {
		bf = r.factory.New(n, r.fpRate)
		if p != nil {
			for _, x := range p.Indexes() {
				if x == nil {
					continue
				}
				for _, name := range x.Names() {
					bf.Add([]byte(name))
				}
			}
		}
	}

	r.mu.Lock()
	r.partitions = p
	r.names = int(n)
	r.bloom = bf
	r.cache.Purge()
	r.mu.Unlock()
}

// Stats returns a snapshot of the repository counters.
func (r *repository) Stats() RepoStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hits, misses, evictions := r.cache.Stats()
	st := RepoStats{
		Cache: CacheStats{
			Size:      r.cache.Len(),
			Hits:      hits,
			Misses:    misses,
			Evictions: evictions,
		},
		Names:      r.names,
		BloomSkips: r.bloomSkips.Load(),
	}
	if r.partitions != nil {
		st.Partitions = len(r.partitions.Indexes())
	}
	return st
}

// checkBloom returns true if we should consult the index (maybe-positive),
// or false if we can early-allow (definitely negative). If no bloom is loaded,
// returns true to allow authoritative checking.
func (r *repository) checkBloom(cn string) bool {
	r.mu.RLock()
	bf := r.bloom
	r.mu.RUnlock()
	if bf == nil {
		return true
	}
	// every suffix is a candidate entry, top-level label first
	it := domain.NewSubDomains(cn, 0)
	for seg, ok := it.Next(); ok; seg, ok = it.Next() {
		if bf.MightContain([]byte(seg)) {
			return true
		}
	}
	return false
}

// checkCache returns a cached decision when present.
func (r *repository) checkCache(cn string) (domain.BlockDecision, bool) {
	r.mu.RLock()
	d, ok := r.cache.Get(cn)
	r.mu.RUnlock()
	return d, ok
}

// checkIndex consults the responsible partition and materializes a decision.
func (r *repository) checkIndex(cn string) domain.BlockDecision {
	r.mu.RLock()
	p := r.partitions
	r.mu.RUnlock()
	if p == nil {
		return domain.EmptyDecision()
	}
	x := p.Partition(cn)
	if x == nil {
		return domain.EmptyDecision()
	}
	if rule, ok := x.Covers(cn); ok {
		return domain.BlockDecision{Blocked: true, MatchedRule: rule}
	}
	return domain.EmptyDecision()
}

// updateCache writes the final decision.
func (r *repository) updateCache(cn string, dec domain.BlockDecision) {
	r.mu.Lock()
	r.cache.Put(cn, dec)
	r.mu.Unlock()
}
