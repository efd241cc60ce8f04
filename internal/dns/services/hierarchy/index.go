// Package hierarchy builds the minimal covering set of blocked names.
//
// Blocking a name blocks every name below it, so an index never stores a
// name together with one of its ancestors. Candidates have to be fed in
// ascending label count (see domain.SortByDots) for that to hold.
package hierarchy

import (
	"slices"

	"github.com/haukened/dns-block/internal/dns/domain"
)

// Outcome describes what Add did with a candidate.
type Outcome int

const (
	Subsumed    Outcome = iota // an ancestor is already blocked
	Whitelisted                // the exact name is whitelisted
	Duplicate                  // the name was already blocked
	Blocked                    // the name was inserted
)

func (o Outcome) String() string {
	switch o {
	case Subsumed:
		return "subsumed"
	case Whitelisted:
		return "whitelisted"
	case Duplicate:
		return "duplicate"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Index is one partition of the block set together with the statistics of
// the candidates fed into it. It is not safe for concurrent writes; once
// built it may be read from any number of goroutines.
type Index struct {
	names       map[string]struct{}
	whitelisted map[string]struct{}
	stats       domain.Statistics
}

// NewIndex returns an empty index sized for about n names.
func NewIndex(n int) *Index {
	return &Index{
		names:       make(map[string]struct{}, n),
		whitelisted: make(map[string]struct{}),
	}
}

// Add classifies one candidate and inserts it when it is neither covered by
// an ancestor nor whitelisted.
func (x *Index) Add(name string, whitelist *Whitelist) Outcome {
	if x.hasAncestor(name) {
		x.stats.IncrementParent()
		return Subsumed
	}

	if whitelist.Contains(name) {
		x.stats.IncrementWhitelisted()
		if _, seen := x.whitelisted[name]; !seen {
			x.whitelisted[name] = struct{}{}
			x.stats.IncrementDistinctWhitelisted()
		}
		return Whitelisted
	}

	if _, ok := x.names[name]; ok {
		x.stats.IncrementDuplicate()
		return Duplicate
	}
	x.names[name] = struct{}{}
	x.stats.IncrementBlocked()
	return Blocked
}

// hasAncestor walks the strict ancestors of name, skipping the bare TLD.
func (x *Index) hasAncestor(name string) bool {
	it := domain.NewSubDomains(name, 1)
	for seg, ok := it.Next(); ok && len(seg) < len(name); seg, ok = it.Next() {
		if _, found := x.names[seg]; found {
			return true
		}
	}
	return false
}

// Covers reports the index entry that blocks name: name itself or one of its
// ancestors. The walk starts at the top-level label.
func (x *Index) Covers(name string) (string, bool) {
	it := domain.NewSubDomains(name, 0)
	for seg, ok := it.Next(); ok; seg, ok = it.Next() {
		if _, found := x.names[seg]; found {
			return seg, true
		}
	}
	return "", false
}

// Contains reports exact membership.
func (x *Index) Contains(name string) bool {
	_, ok := x.names[name]
	return ok
}

// Len returns the number of stored names.
func (x *Index) Len() int { return len(x.names) }

// Stats returns the counters accumulated by Add.
func (x *Index) Stats() domain.Statistics { return x.stats }

// Names returns the stored names in ascending order.
func (x *Index) Names() []string {
	out := make([]string, 0, len(x.names))
	for n := range x.names {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Build feeds every candidate accepted by keep through Add, in order.
// A nil keep accepts everything.
func Build(candidates []domain.Domain, whitelist *Whitelist, keep func(string) bool) (*Index, domain.Statistics) {
	x := NewIndex(len(candidates) / 2)
	for _, c := range candidates {
		if c.Name == "" {
			continue
		}
		if keep != nil && !keep(c.Name) {
			continue
		}
		x.Add(c.Name, whitelist)
	}
	return x, x.stats
}
