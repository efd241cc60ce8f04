package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubDomains_NormalDomain(t *testing.T) {
	it := NewSubDomains("ads.fb.com", 0)

	seg, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, "com", seg)

	seg, ok = it.Next()
	assert.True(t, ok)
	assert.Equal(t, "fb.com", seg)

	seg, ok = it.Next()
	assert.True(t, ok)
	assert.Equal(t, "ads.fb.com", seg)

	_, ok = it.Next()
	assert.False(t, ok)
	_, ok = it.Next()
	assert.False(t, ok, "exhausted iterator must stay exhausted")
}

func TestSuffixes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		skip  int
		want  []string
	}{
		{"skip tld", "ads.fb.com", 1, []string{"fb.com", "ads.fb.com"}},
		{"skip tld deep", "many.ads.fb.com", 1, []string{"fb.com", "ads.fb.com", "many.ads.fb.com"}},
		{"no skip", "fb.com", 0, []string{"com", "fb.com"}},
		{"skip two", "many.ads.fb.com", 2, []string{"ads.fb.com", "many.ads.fb.com"}},
		{"skip everything", "fb.com", 5, nil},
		{"single label", "localhost", 0, []string{"localhost"}},
		{"single label skipped", "localhost", 1, nil},
		{"empty", "", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Suffixes(tt.input, tt.skip))
		})
	}
}

func TestSubDomains_RestartByReconstruction(t *testing.T) {
	first := Suffixes("a.b.c", 0)
	second := Suffixes("a.b.c", 0)
	assert.Equal(t, first, second)
}
