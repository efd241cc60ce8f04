package domain

// SubDomains iterates over the dot-delimited suffixes of a name, from the
// top-level label down to the name itself:
//
//	"ads.fb.com" -> "com", "fb.com", "ads.fb.com"
//
// A skip of N drops the first N suffixes, so skip 1 leaves out the bare TLD.
// The iterator is finite; construct a new one to start over.
type SubDomains struct {
	name   string
	offset int
}

// NewSubDomains returns an iterator over name that has already consumed skip suffixes.
func NewSubDomains(name string, skip int) *SubDomains {
	s := &SubDomains{name: name, offset: len(name)}
	for i := 0; i < skip; i++ {
		if _, ok := s.Next(); !ok {
			break
		}
	}
	return s
}

// Next returns the next suffix, or false once the full name has been returned.
func (s *SubDomains) Next() (string, bool) {
	if s.offset <= 0 {
		return "", false
	}
	s.offset--
	for s.offset > 0 && s.name[s.offset] != '.' {
		s.offset--
	}
	if s.offset == 0 {
		return s.name, true
	}
	return s.name[s.offset+1:], true
}

// Suffixes collects the remaining suffixes of NewSubDomains(name, skip).
func Suffixes(name string, skip int) []string {
	var out []string
	it := NewSubDomains(name, skip)
	for seg, ok := it.Next(); ok; seg, ok = it.Next() {
		out = append(out, seg)
	}
	return out
}
