// Package domain holds the value types shared by the compaction pipeline:
// candidate domains, their suffix sequences, per-partition statistics and
// lookup decisions. Nothing here performs I/O.
package domain

import (
	"slices"
	"strings"
)

// Domain is a candidate name taken from an input file.
//
// Name is a substring of the text buffer of the file it was parsed from, so
// building a Domain copies nothing. Name is canonical (lowercase, no trailing
// dot, no comment) and Dots is the number of '.' separators in it.
type Domain struct {
	Name string
	Dots int
}

// NewDomain wraps an already canonical name. Names without a dot are rejected:
// a bare label is never a usable block candidate.
func NewDomain(name string) (Domain, bool) {
	dots := strings.Count(name, ".")
	if dots == 0 || name == "" {
		return Domain{}, false
	}
	return Domain{Name: name, Dots: dots}, true
}

// SortByDots orders candidates by ascending label count. The sort is stable so
// the resulting order, and every index built from it, is deterministic for a
// given input order.
//
// Ancestors must be indexed before their descendants; callers rely on this.
func SortByDots(domains []Domain) {
	slices.SortStableFunc(domains, func(a, b Domain) int {
		return a.Dots - b.Dots
	})
}
