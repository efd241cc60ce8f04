// Package filter rewrites a BIND query log stream, replacing queries for
// blocked names with a short annotation.
package filter

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	logpkg "github.com/haukened/dns-block/internal/dns/common/log"
	"github.com/haukened/dns-block/internal/dns/domain"
)

const (
	queryMarker  = "query: "
	queryEnd     = " "
	clientMarker = "client "
	clientEnd    = "#"
)

// Blocklist answers whether a queried name is blocked.
type Blocklist interface {
	Decide(name string) domain.BlockDecision
}

// Options configures a Filter.
type Options struct {
	Blocklist Blocklist
	// Clients restricts annotation to these client addresses. Empty means all clients.
	Clients map[string]struct{}
	Logger  logpkg.Logger
}

// Filter is a single-pass, order-preserving line transform.
type Filter struct {
	blocklist Blocklist
	clients   map[string]struct{}
	logger    logpkg.Logger
}

// New builds a Filter. A nil logger falls back to the package default.
func New(opts Options) (*Filter, error) {
	if opts.Blocklist == nil {
		return nil, errors.New("filter: blocklist is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.GetLogger()
	}
	return &Filter{blocklist: opts.Blocklist, clients: opts.Clients, logger: logger}, nil
}

// Run copies r to w line by line until EOF. Output is flushed whenever no
// more input is already buffered, so a tailing reader sees each line as soon
// as it is processed.
func (f *Filter) Run(r io.Reader, w io.Writer) error {
	in := bufio.NewReader(r)
	out := bufio.NewWriter(w)

	var lines, blocked int
	for {
		line, readErr := in.ReadBytes('\n')
		if len(line) > 0 {
			lines++
			if f.transform(out, line) {
				blocked++
			}
			if in.Buffered() == 0 {
				if err := out.Flush(); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			}
		}
		if readErr != nil {
			if err := out.Flush(); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			if errors.Is(readErr, io.EOF) {
				f.logger.Info(map[string]any{"lines": lines, "blocked": blocked}, "filter_done")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", readErr)
		}
	}
}

// transform writes either the annotation or the original line and reports
// whether the line was blocked. bufio.Writer errors are sticky and surface
// on the next Flush.
func (f *Filter) transform(out *bufio.Writer, line []byte) bool {
	name, client, ok := Extract(line)
	if !ok || !f.watching(client) {
		_, _ = out.Write(line)
		return false
	}

	dec := f.blocklist.Decide(name)
	if !dec.Blocked {
		_, _ = out.Write(line)
		return false
	}

	f.logger.Debug(map[string]any{
		"client": client,
		"domain": name,
		"rule":   dec.MatchedRule,
	}, "query_blocked")
	_, _ = out.WriteString(client)
	_ = out.WriteByte(' ')
	_, _ = out.WriteString(name)
	_, _ = out.WriteString(" blocked\n")
	return true
}

func (f *Filter) watching(client string) bool {
	if len(f.clients) == 0 {
		return true
	}
	_, ok := f.clients[client]
	return ok
}

// Extract returns the queried name and the client address of a query log
// line. Both are required; a marker without its terminator does not count.
func Extract(line []byte) (name, client string, ok bool) {
	n, ok := between(line, queryMarker, queryEnd)
	if !ok {
		return "", "", false
	}
	c, ok := between(line, clientMarker, clientEnd)
	if !ok {
		return "", "", false
	}
	return string(n), string(c), true
}

func between(line []byte, prefix, suffix string) ([]byte, bool) {
	i := bytes.Index(line, []byte(prefix))
	if i < 0 {
		return nil, false
	}
	rest := line[i+len(prefix):]
	j := bytes.Index(rest, []byte(suffix))
	if j < 0 {
		return nil, false
	}
	return rest[:j], true
}

// ParseClients builds an allow-set from a comma-separated list. Blank
// entries are ignored; an empty list yields nil, which means all clients.
func ParseClients(list string) map[string]struct{} {
	var set map[string]struct{}
	for _, c := range strings.Split(list, ",") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{})
		}
		set[c] = struct{}{}
	}
	return set
}
