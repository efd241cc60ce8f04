package classifier

import (
	"cmp"
	"slices"

	"github.com/haukened/dns-block/internal/dns/common/utils"
	"github.com/haukened/dns-block/internal/dns/services/hierarchy"
)

// ApexCount is the number of blocked names below one registrable domain.
type ApexCount struct {
	Apex  string
	Count int
}

// TopApexes groups the entries of every index by registrable domain and
// returns the n largest groups, most entries first, ties broken by name.
// n <= 0 returns every group.
func TopApexes(n int, indexes ...*hierarchy.Index) []ApexCount {
	counts := make(map[string]int)
	for _, x := range indexes {
		if x == nil {
			continue
		}
		for _, name := range x.Names() {
			counts[utils.GetApexDomain(name)]++
		}
	}

	out := make([]ApexCount, 0, len(counts))
	for apex, c := range counts {
		out = append(out, ApexCount{Apex: apex, Count: c})
	}
	slices.SortFunc(out, func(a, b ApexCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Apex, b.Apex)
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
