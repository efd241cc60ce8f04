package domain

import "fmt"

// Statistics counts the outcome of every candidate fed into one index partition.
type Statistics struct {
	Parent              int // covered by an ancestor already in the index
	Duplicate           int // already in the index
	Whitelisted         int // exact whitelist hit
	DistinctWhitelisted int // first whitelist hit for a given name
	Blocked             int // newly inserted
}

func (s *Statistics) IncrementParent()              { s.Parent++ }
func (s *Statistics) IncrementDuplicate()           { s.Duplicate++ }
func (s *Statistics) IncrementWhitelisted()         { s.Whitelisted++ }
func (s *Statistics) IncrementDistinctWhitelisted() { s.DistinctWhitelisted++ }
func (s *Statistics) IncrementBlocked()             { s.Blocked++ }

// Total is the number of candidates accounted for.
func (s Statistics) Total() int {
	return s.Parent + s.Duplicate + s.Whitelisted + s.Blocked
}

// Aggregate sums the counters of every partition field by field.
func Aggregate(parts ...Statistics) Statistics {
	var out Statistics
	for _, p := range parts {
		out.Parent += p.Parent
		out.Duplicate += p.Duplicate
		out.Whitelisted += p.Whitelisted
		out.DistinctWhitelisted += p.DistinctWhitelisted
		out.Blocked += p.Blocked
	}
	return out
}

// Fields renders the counters as structured log fields.
func (s Statistics) Fields() map[string]any {
	return map[string]any{
		"parent":               s.Parent,
		"duplicate":            s.Duplicate,
		"whitelisted":          s.Whitelisted,
		"distinct_whitelisted": s.DistinctWhitelisted,
		"blocked":              s.Blocked,
	}
}

func (s Statistics) String() string {
	return fmt.Sprintf("parent: %d\nduplicate: %d\nwhitelisted: %d\ndistinct whitelisted: %d\nblocked: %d\n",
		s.Parent, s.Duplicate, s.Whitelisted, s.DistinctWhitelisted, s.Blocked)
}
