package parsers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/dns-block/internal/dns/common/log"
)

func TestArena_Domains(t *testing.T) {
	input := `# blocklist header
Ads.Example.COM
0.0.0.0 tracker.example.net # hosts style

localhost
fb.com`

	a := NewArena("test-source", input)
	assert.Equal(t, "test-source", a.Source)
	assert.Equal(t, 6, a.LineCount())

	got := a.Domains(log.NewNoopLogger())
	names := make([]string, len(got))
	for i, d := range got {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"ads.example.com", "tracker.example.net", "fb.com"}, names)
	assert.Equal(t, 2, got[0].Dots)
}

func TestArena_AppendDomainsKeepsExisting(t *testing.T) {
	first := NewArena("personal", "mine.example.com\n")
	second := NewArena("public", "theirs.example.com\n")

	got := first.Domains(log.NewNoopLogger())
	got = second.AppendDomains(got, log.NewNoopLogger())
	require.Len(t, got, 2)
	assert.Equal(t, "mine.example.com", got[0].Name)
	assert.Equal(t, "theirs.example.com", got[1].Name)
}

func TestLoadArena(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "domains.blocked")
	require.NoError(t, os.WriteFile(path, []byte("ADS.example.com\n"), 0o600))

	a, err := LoadArena(path)
	require.NoError(t, err)
	assert.Equal(t, path, a.Source)
	assert.Equal(t, "ads.example.com\n", a.Text)

	t.Run("skip path", func(t *testing.T) {
		a, err := LoadArena(SkipPath)
		require.NoError(t, err)
		assert.Empty(t, a.Text)
		assert.Equal(t, 0, a.LineCount())
		assert.Empty(t, a.Domains(log.NewNoopLogger()))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadArena(filepath.Join(dir, "nope"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
