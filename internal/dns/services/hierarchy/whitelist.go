package hierarchy

import "github.com/haukened/dns-block/internal/dns/domain"

// Whitelist is the set of protected names. Adding a name also adds every
// ancestor of two or more labels, so the set reflects the whole protected
// hierarchy. Membership tests are exact.
type Whitelist struct {
	names map[string]struct{}
}

// NewWhitelist returns an empty whitelist sized for about n entries.
func NewWhitelist(n int) *Whitelist {
	return &Whitelist{names: make(map[string]struct{}, n)}
}

// Add inserts name and its ancestors below the top-level domain.
func (w *Whitelist) Add(name string) {
	it := domain.NewSubDomains(name, 1)
	for seg, ok := it.Next(); ok; seg, ok = it.Next() {
		w.names[seg] = struct{}{}
	}
}

// Contains reports whether name itself was added or is an ancestor of an added name.
func (w *Whitelist) Contains(name string) bool {
	if w == nil {
		return false
	}
	_, ok := w.names[name]
	return ok
}

// Len returns the number of protected names, ancestors included.
func (w *Whitelist) Len() int {
	if w == nil {
		return 0
	}
	return len(w.names)
}
