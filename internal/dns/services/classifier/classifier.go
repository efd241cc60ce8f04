// Package classifier splits candidates into the com and non-com partitions
// and indexes both in parallel.
package classifier

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/haukened/dns-block/internal/dns/domain"
	"github.com/haukened/dns-block/internal/dns/services/hierarchy"
)

// IsCom selects names ending in "com". Every suffix of a name shares its
// final characters, so the two partitions never share an ancestor chain.
func IsCom(name string) bool { return strings.HasSuffix(name, "com") }

// IsNotCom is the complement of IsCom.
func IsNotCom(name string) bool { return !IsCom(name) }

// Result holds both finished partitions and their statistics.
type Result struct {
	Com      *hierarchy.Index
	Net      *hierarchy.Index
	ComStats domain.Statistics
	NetStats domain.Statistics
	Total    domain.Statistics
}

// PartitionAndIndex builds the index for the candidates accepted by predicate.
func PartitionAndIndex(candidates []domain.Domain, whitelist *hierarchy.Whitelist, predicate func(string) bool) (*hierarchy.Index, domain.Statistics) {
	return hierarchy.Build(candidates, whitelist, predicate)
}

// Classify indexes both partitions concurrently. candidates must already be
// sorted with domain.SortByDots; neither candidates nor whitelist is modified.
func Classify(ctx context.Context, candidates []domain.Domain, whitelist *hierarchy.Whitelist) (Result, error) {
	var res Result
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res.Com, res.ComStats = PartitionAndIndex(candidates, whitelist, IsCom)
		return ctx.Err()
	})
	g.Go(func() error {
		res.Net, res.NetStats = PartitionAndIndex(candidates, whitelist, IsNotCom)
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	res.Total = domain.Aggregate(res.ComStats, res.NetStats)
	return res, nil
}

// Partition returns the index responsible for name.
func (r Result) Partition(name string) *hierarchy.Index {
	if IsCom(name) {
		return r.Com
	}
	return r.Net
}

// Indexes returns the partitions in output order.
func (r Result) Indexes() []*hierarchy.Index {
	return []*hierarchy.Index{r.Com, r.Net}
}

// Len is the total number of blocked names.
func (r Result) Len() int {
	n := 0
	for _, x := range r.Indexes() {
		if x != nil {
			n += x.Len()
		}
	}
	return n
}
