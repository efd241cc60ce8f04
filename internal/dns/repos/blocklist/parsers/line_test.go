package parsers

import (
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/dns-block/internal/dns/domain"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   string
		wantOK bool
	}{
		{"plain", "ads.example.com", "ads.example.com", true},
		{"surrounding whitespace", "  ads.example.com \r", "ads.example.com", true},
		{"inline comment", "ads.example.com # tracking", "ads.example.com", true},
		{"comment glued to name", "ads.example.com#x", "ads.example.com", true},
		{"trailing dot", "ads.example.com.", "ads.example.com", true},
		{"hosts format", "0.0.0.0 tracker.example.net", "tracker.example.net", true},
		{"hosts format tabs", "127.0.0.1\ttracker.example.net\talias.example.net", "tracker.example.net", true},
		{"ipv6 hosts format", "::1 tracker.example.net", "tracker.example.net", true},
		{"wildcard marker", "*.wild.example.com", "wild.example.com", true},
		{"dot marker", ".root.example.org", "root.example.org", true},
		{"bom", "\uFEFFfirst.example.com", "first.example.com", true},
		{"uppercase is folded", "Ads.Example.COM", "ads.example.com", true},
		{"blank", "", "", false},
		{"whitespace only", " \t ", "", false},
		{"comment only", "# a comment", "", false},
		{"ip only", "0.0.0.0", "", false},
		{"ip name", "0.0.0.0 0.0.0.0", "", false},
		{"single label", "localhost", "", false},
		{"hosts single label", "127.0.0.1 localhost", "", false},
		{"empty label", "ads..example.com", "", false},
		{"inner wildcard", "ads.*.example.com", "", false},
		{"label too long", strings.Repeat("a", 64) + ".com", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLine(tt.line)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				assert.Equal(t, domain.Domain{}, got)
				return
			}
			assert.Equal(t, tt.want, got.Name)
			assert.Equal(t, strings.Count(tt.want, "."), got.Dots)
		})
	}
}

func TestParseLine_SharesLowercaseInput(t *testing.T) {
	line := "0.0.0.0 ads.example.com # comment"
	got, ok := ParseLine(line)
	require.True(t, ok)

	start := uintptr(unsafe.Pointer(unsafe.StringData(line)))
	name := uintptr(unsafe.Pointer(unsafe.StringData(got.Name)))
	assert.True(t, name >= start && name < start+uintptr(len(line)), "name should point into the input line")
}
