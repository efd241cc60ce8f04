package hierarchy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/dns-block/internal/dns/domain"
)

func candidates(t *testing.T, names ...string) []domain.Domain {
	t.Helper()
	out := make([]domain.Domain, 0, len(names))
	for _, n := range names {
		d, ok := domain.NewDomain(n)
		require.True(t, ok, "invalid test name %q", n)
		out = append(out, d)
	}
	domain.SortByDots(out)
	return out
}

func TestIndex_Add(t *testing.T) {
	wl := NewWhitelist(0)
	wl.Add("keep.example.org")

	x := NewIndex(0)
	assert.Equal(t, Blocked, x.Add("fb.com", wl))
	assert.Equal(t, Subsumed, x.Add("ads.fb.com", wl))
	assert.Equal(t, Subsumed, x.Add("deep.ads.fb.com", wl))
	assert.Equal(t, Duplicate, x.Add("fb.com", wl))
	assert.Equal(t, Whitelisted, x.Add("keep.example.org", wl))
	assert.Equal(t, Whitelisted, x.Add("keep.example.org", wl))
	// the ancestor of a whitelisted name is protected as well
	assert.Equal(t, Whitelisted, x.Add("example.org", wl))
	assert.Equal(t, Blocked, x.Add("other.example.org", wl))

	assert.Equal(t, domain.Statistics{
		Parent:              2,
		Duplicate:           1,
		Whitelisted:         3,
		DistinctWhitelisted: 2,
		Blocked:             2,
	}, x.Stats())
	assert.Equal(t, []string{"fb.com", "other.example.org"}, x.Names())
	assert.Equal(t, 2, x.Len())
}

func TestIndex_AddNilWhitelist(t *testing.T) {
	x := NewIndex(0)
	assert.Equal(t, Blocked, x.Add("example.com", nil))
	assert.True(t, x.Contains("example.com"))
}

func TestIndex_Covers(t *testing.T) {
	x, _ := Build(candidates(t, "fb.com", "tracker.example.net"), nil, nil)

	tests := []struct {
		name    string
		query   string
		want    string
		wantHit bool
	}{
		{"exact", "fb.com", "fb.com", true},
		{"descendant", "ads.fb.com", "fb.com", true},
		{"deep descendant", "a.b.c.tracker.example.net", "tracker.example.net", true},
		{"ancestor is not covered", "example.net", "", false},
		{"sibling", "www.example.net", "", false},
		{"suffix without label boundary", "notfb.com", "", false},
		{"tld only", "com", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := x.Covers(tt.query)
			assert.Equal(t, tt.wantHit, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild_PredicateAndEmptyNames(t *testing.T) {
	in := candidates(t, "a.com", "b.net", "c.org")
	in = append(in, domain.Domain{})

	x, stats := Build(in, nil, func(n string) bool { return strings.HasSuffix(n, "com") })
	assert.Equal(t, []string{"a.com"}, x.Names())
	assert.Equal(t, 1, stats.Blocked)
	assert.Equal(t, 1, stats.Total())
}

func TestBuild_Minimality(t *testing.T) {
	in := candidates(t,
		"x.y.ads.example.com",
		"ads.example.com",
		"example.com",
		"cdn.example.net",
		"a.cdn.example.net",
		"b.a.cdn.example.net",
		"tracker.io",
		"tracker.io",
		"sub.tracker.io",
	)

	x, stats := Build(in, nil, nil)
	names := x.Names()
	assert.Equal(t, []string{"cdn.example.net", "example.com", "tracker.io"}, names)

	for _, a := range names {
		for _, b := range names {
			if a != b {
				assert.False(t, strings.HasSuffix(a, "."+b), "%s is covered by %s", a, b)
			}
		}
	}
	assert.Equal(t, domain.Statistics{Parent: 5, Duplicate: 1, Blocked: 3}, stats)
	assert.Equal(t, len(in), stats.Total())
}

func TestBuild_UnsortedInputKeepsDescendant(t *testing.T) {
	// without the ascending sort a child inserted before its parent stays stored
	in := []domain.Domain{
		{Name: "ads.example.com", Dots: 2},
		{Name: "example.com", Dots: 1},
	}
	x, _ := Build(in, nil, nil)
	assert.Equal(t, 2, x.Len())

	domain.SortByDots(in)
	x, _ = Build(in, nil, nil)
	assert.Equal(t, []string{"example.com"}, x.Names())
}

func TestBuild_Idempotent(t *testing.T) {
	in := candidates(t,
		"ads.example.com",
		"example.com",
		"b.tracker.net",
		"a.b.tracker.net",
		"metrics.site.org",
		"site.org.evil.io",
	)
	first, _ := Build(in, nil, nil)

	again := candidates(t, first.Names()...)
	second, stats := Build(again, nil, nil)

	assert.Equal(t, first.Names(), second.Names())
	assert.Equal(t, first.Len(), stats.Blocked)
	assert.Zero(t, stats.Parent)
	assert.Zero(t, stats.Duplicate)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "subsumed", Subsumed.String())
	assert.Equal(t, "whitelisted", Whitelisted.String())
	assert.Equal(t, "duplicate", Duplicate.String())
	assert.Equal(t, "blocked", Blocked.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
