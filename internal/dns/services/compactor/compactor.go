// Package compactor runs the full compaction pipeline: load the input files,
// resolve whitelist CNAMEs, and index the candidates into a minimal block set.
package compactor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/haukened/dns-block/internal/dns/common/clock"
	logpkg "github.com/haukened/dns-block/internal/dns/common/log"
	"github.com/haukened/dns-block/internal/dns/domain"
	"github.com/haukened/dns-block/internal/dns/repos/blocklist/parsers"
	"github.com/haukened/dns-block/internal/dns/services/classifier"
	"github.com/haukened/dns-block/internal/dns/services/hierarchy"
)

// Resolver returns the CNAME targets found for a batch of names.
type Resolver interface {
	Resolve(ctx context.Context, domains []string) ([]string, error)
}

// Options configures a Compactor. Resolver may be nil, in which case the
// whitelist is used as written.
type Options struct {
	Resolver Resolver
	Clock    clock.Clock
	Logger   logpkg.Logger
}

// Inputs names the three source files. Whitelist and Personal accept
// parsers.SkipPath.
type Inputs struct {
	Blocklist string
	Whitelist string
	Personal  string
}

// Timings records how long each phase took.
type Timings struct {
	Read        time.Duration // load and parse the block files
	Sort        time.Duration
	ResolveWait time.Duration // time spent waiting for whitelist resolution after sorting
	Index       time.Duration
	Total       time.Duration
}

// Fields renders the timings in milliseconds as structured log fields.
func (t Timings) Fields() map[string]any {
	return map[string]any{
		"read_ms":         t.Read.Milliseconds(),
		"sort_ms":         t.Sort.Milliseconds(),
		"resolve_wait_ms": t.ResolveWait.Milliseconds(),
		"index_ms":        t.Index.Milliseconds(),
		"total_ms":        t.Total.Milliseconds(),
	}
}

// Result is a finished compaction.
type Result struct {
	classifier.Result
	Whitelist  *hierarchy.Whitelist
	Candidates int
	CNAMEs     []string
	Timings    Timings
}

// Compactor is safe to reuse for several runs, one at a time.
type Compactor struct {
	resolver Resolver
	clock    clock.Clock
	logger   logpkg.Logger
}

// New builds a Compactor, filling in a real clock and the default logger.
func New(opts Options) *Compactor {
	c := &Compactor{resolver: opts.Resolver, clock: opts.Clock, logger: opts.Logger}
	if c.clock == nil {
		c.clock = clock.RealClock{}
	}
	if c.logger == nil {
		c.logger = logpkg.GetLogger()
	}
	return c
}

// whitelistSource is the parsed whitelist plus the CNAMEs of its entries.
type whitelistSource struct {
	entries []domain.Domain
	cnames  []string
}

// Run executes the pipeline. Any file or socket failure aborts it.
func (c *Compactor) Run(ctx context.Context, in Inputs) (*Result, error) {
	if in.Blocklist == "" || in.Blocklist == parsers.SkipPath {
		return nil, errors.New("compactor: a blocklist file is required")
	}
	sw := clock.NewStopwatch(c.clock)

	wlArena, err := parsers.LoadArena(orSkip(in.Whitelist))
	if err != nil {
		return nil, err
	}

	// resolve whitelist CNAMEs while the block files are read and sorted
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(rctx)
	var wl whitelistSource
	g.Go(func() error {
		var err error
		wl, err = c.expandWhitelist(gctx, wlArena)
		return err
	})

	candidates, err := c.loadCandidates(in)
	if err != nil {
		// the resolver goroutine must not outlive Run
		cancel()
		_ = g.Wait()
		return nil, err
	}
	res := &Result{Candidates: len(candidates)}
	res.Timings.Read = sw.Lap()

	domain.SortByDots(candidates)
	res.Timings.Sort = sw.Lap()

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to resolve whitelist: %w", err)
	}
	res.Timings.ResolveWait = sw.Lap()
	res.CNAMEs = wl.cnames
	res.Whitelist = buildWhitelist(wl)

	res.Result, err = classifier.Classify(ctx, candidates, res.Whitelist)
	if err != nil {
		return nil, err
	}
	res.Timings.Index = sw.Lap()
	res.Timings.Total = sw.Elapsed()

	c.logger.Info(map[string]any{
		"candidates": res.Candidates,
		"whitelist":  res.Whitelist.Len(),
		"cnames":     len(res.CNAMEs),
		"blocked":    res.Len(),
	}, "compaction_done")
	c.logger.Debug(res.ComStats.Fields(), "statistics_com")
	c.logger.Debug(res.NetStats.Fields(), "statistics_net")
	return res, nil
}

// loadCandidates parses the personal file first, then the public blocklist.
func (c *Compactor) loadCandidates(in Inputs) ([]domain.Domain, error) {
	personal, err := parsers.LoadArena(orSkip(in.Personal))
	if err != nil {
		return nil, err
	}
	blocked, err := parsers.LoadArena(in.Blocklist)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Domain, 0, personal.LineCount()+blocked.LineCount())
	out = personal.AppendDomains(out, c.logger)
	out = blocked.AppendDomains(out, c.logger)
	return out, nil
}

func (c *Compactor) expandWhitelist(ctx context.Context, a *parsers.Arena) (whitelistSource, error) {
	entries := a.Domains(c.logger)
	if c.resolver == nil || len(entries) == 0 {
		return whitelistSource{entries: entries}, nil
	}

	names := make([]string, len(entries))
	for i, d := range entries {
		names[i] = d.Name
	}
	cnames, err := c.resolver.Resolve(ctx, names)
	if err != nil {
		return whitelistSource{}, err
	}
	c.logger.Debug(map[string]any{
		"queried": len(names),
		"cnames":  len(cnames),
	}, "whitelist_resolved")
	return whitelistSource{entries: entries, cnames: cnames}, nil
}

// buildWhitelist indexes the explicit entries and the CNAME targets. Targets
// go through the same line parser as file entries.
func buildWhitelist(src whitelistSource) *hierarchy.Whitelist {
	wl := hierarchy.NewWhitelist(2 * (len(src.entries) + len(src.cnames)))
	for _, d := range src.entries {
		wl.Add(d.Name)
	}
	for _, target := range src.cnames {
		if d, ok := parsers.ParseLine(target); ok {
			wl.Add(d.Name)
		}
	}
	return wl
}

func orSkip(path string) string {
	if path == "" {
		return parsers.SkipPath
	}
	return path
}
