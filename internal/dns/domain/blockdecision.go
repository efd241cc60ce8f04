package domain

// BlockDecision represents the outcome of evaluating a queried name against
// the compacted block index.
type BlockDecision struct {
	Blocked     bool   // true if the name or one of its ancestors is indexed
	MatchedRule string // the index entry that matched
}

// IsBlocked is a convenience accessor.
func (d BlockDecision) IsBlocked() bool { return d.Blocked }

// EmptyDecision returns a not-blocked decision.
func EmptyDecision() BlockDecision { return BlockDecision{Blocked: false} }
