package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type names []string

func (n names) Names() []string { return n }

func TestWriteBind_SingleName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBind(&buf, names{"example.com"}))

	want := "$TTL 60\n" +
		"@   IN    SOA  localhost. root.localhost.  (\n" +
		"        2   ; serial \n" +
		"        3H  ; refresh \n" +
		"        1H  ; retry \n" +
		"        1W  ; expiry \n" +
		"        1H) ; minimum \n" +
		"    IN    NS    localhost.\n" +
		"example.com CNAME .\n*.example.com CNAME .\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteBind_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBind(&buf))
	assert.Equal(t, BindPreamble, buf.String())
}

func TestWritePlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlain(&buf, names{"a.com", "b.com"}, nil, names{"x.net"}))
	assert.Equal(t, "a.com\nb.com\nx.net\n", buf.String())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "simple.blocked")
	require.NoError(t, WriteFile(plain, false, names{"fb.com"}, names{"tracker.net"}))
	b, err := os.ReadFile(plain)
	require.NoError(t, err)
	assert.Equal(t, "fb.com\ntracker.net\n", string(b))

	zone := filepath.Join(dir, "db.rpz")
	require.NoError(t, WriteFile(zone, true, names{"fb.com"}))
	b, err = os.ReadFile(zone)
	require.NoError(t, err)
	assert.Equal(t, BindPreamble+"fb.com CNAME .\n*.fb.com CNAME .\n", string(b))

	err = WriteFile(filepath.Join(dir, "missing", "out"), false, names{"fb.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
