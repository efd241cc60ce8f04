// Package parsers turns block and whitelist files into candidate domains.
package parsers

import (
	"fmt"
	"os"
	"strings"

	logpkg "github.com/haukened/dns-block/internal/dns/common/log"
	"github.com/haukened/dns-block/internal/dns/domain"
)

// SkipPath is the file argument that stands for "no file".
const SkipPath = "-"

// Arena owns the full text of one input file. Every Domain parsed from it
// is a substring of Text, so the text stays alive for as long as any index
// holds one of its names and nothing is copied per line.
type Arena struct {
	Source string
	Text   string
}

// NewArena lowercases text once so that every parsed name can share it.
func NewArena(source, text string) *Arena {
	return &Arena{Source: source, Text: strings.ToLower(text)}
}

// LoadArena reads path into an arena. The SkipPath "-" yields an empty arena.
func LoadArena(path string) (*Arena, error) {
	if path == SkipPath {
		return &Arena{Source: path}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return NewArena(path, string(b)), nil
}

// LineCount is an upper bound on the number of domains in the arena.
func (a *Arena) LineCount() int {
	if a.Text == "" {
		return 0
	}
	return strings.Count(a.Text, "\n") + 1
}

// AppendDomains parses every line and appends the usable ones to dst.
func (a *Arena) AppendDomains(dst []domain.Domain, logger logpkg.Logger) []domain.Domain {
	text := a.Text
	parsed, skipped := 0, 0
	for len(text) > 0 {
		line := text
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			line, text = text[:i], text[i+1:]
		} else {
			text = ""
		}
		if d, ok := ParseLine(line); ok {
			dst = append(dst, d)
			parsed++
		} else {
			skipped++
		}
	}

	logger.Debug(map[string]any{
		"source":  a.Source,
		"domains": parsed,
		"skipped": skipped,
	}, "parse_arena_done")
	return dst
}

// Domains returns the usable domains of the arena in file order.
func (a *Arena) Domains(logger logpkg.Logger) []domain.Domain {
	return a.AppendDomains(make([]domain.Domain, 0, a.LineCount()), logger)
}
