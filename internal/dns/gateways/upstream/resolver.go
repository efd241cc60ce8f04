// Package upstream resolves whitelist entries against a recursive DNS server
// to collect the CNAME targets that must be whitelisted along with them.
package upstream

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/haukened/dns-block/internal/dns/common/log"
	"github.com/haukened/dns-block/internal/dns/gateways/wire"
)

// DefaultServer is the resolver queried when none is configured.
const DefaultServer = "8.8.8.8:53"

// Standard DNS UDP message size limit without EDNS.
const maxUDPMessageSize = 512

// Error message constants for consistent error handling
const (
	errCodecRequired   = "DNS codec is required"
	errFailedToConnect = "failed to connect: %w"
	errWriteFailed     = "write failed: %w"
	errReadFailed      = "read failed: %w"
)

// DialFunc establishes a network connection; injectable for tests.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Options configures a Resolver.
type Options struct {
	// Server is the resolver address in ip:port form. Defaults to DefaultServer.
	Server string
	// ID is the transaction id put on every query. Defaults to the low 16 bits of the process id.
	ID uint16

	// options to inject for testing purposes
	Codec  wire.DNSCodec
	Dial   DialFunc
	Logger log.Logger
}

// Resolver sends one A query per domain over a single connected UDP socket
// and collects every CNAME target found in the responses.
type Resolver struct {
	server string
	id     uint16
	codec  wire.DNSCodec
	dial   DialFunc
	logger log.Logger
}

// NewResolver creates a resolver, filling in defaults for unset options.
func NewResolver(opts Options) (*Resolver, error) {
	if opts.Codec == nil {
		return nil, fmt.Errorf(errCodecRequired)
	}
	if opts.Server == "" {
		opts.Server = DefaultServer
	}
	if opts.ID == 0 {
		opts.ID = uint16(os.Getpid())
	}
	if opts.Dial == nil {
		opts.Dial = (&net.Dialer{}).DialContext
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	return &Resolver{
		server: opts.Server,
		id:     opts.ID,
		codec:  opts.Codec,
		dial:   opts.Dial,
		logger: opts.Logger,
	}, nil
}

// Server returns the resolver address queries are sent to.
func (r *Resolver) Server() string { return r.server }

// Resolve queries every domain and returns the flattened CNAME targets.
//
// A sender goroutine writes all queries while the caller's goroutine performs
// exactly one read per query sent. All queries share one transaction id and
// responses are not matched to the query that caused them; they are assumed
// to arrive one per query.
//
// There is no timeout and no retry. If a response is lost, Resolve blocks
// forever unless ctx carries a deadline, which is applied to the socket.
// Callers that cannot tolerate a stalled resolver must set one. Canceling
// ctx also unblocks a pending read.
//
// A response that fails to decode is logged and contributes no targets.
// Domains that cannot be encoded are logged and skipped.
func (r *Resolver) Resolve(ctx context.Context, domains []string) ([]string, error) {
	queries := make([][]byte, 0, len(domains))
	for _, d := range domains {
		q, err := r.codec.EncodeQuery(d, r.id)
		if err != nil {
			r.logger.Warn(map[string]any{
				"domain": d,
				"error":  err.Error(),
			}, "Skipping whitelist domain that cannot be encoded")
			continue
		}
		queries = append(queries, q)
	}
	if len(queries) == 0 {
		return nil, nil
	}

	conn, err := r.dial(ctx, "udp", r.server)
	if err != nil {
		return nil, fmt.Errorf(errFailedToConnect, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	r.logger.Debug(map[string]any{
		"server":  r.server,
		"queries": len(queries),
		"id":      r.id,
	}, "Resolving whitelist CNAMEs")

	var g errgroup.Group
	g.Go(func() error {
		for _, q := range queries {
			if _, err := conn.Write(q); err != nil {
				// Unblock the reader, it is waiting for responses that will never come.
				_ = conn.Close()
				return fmt.Errorf(errWriteFailed, err)
			}
		}
		return nil
	})

	var cnames []string
	buffer := make([]byte, maxUDPMessageSize)
	for i := 0; i < len(queries); i++ {
		n, err := conn.Read(buffer)
		if err != nil {
			if werr := g.Wait(); werr != nil {
				return nil, werr
			}
			return nil, fmt.Errorf(errReadFailed, err)
		}
		targets, err := r.codec.DecodeCNAMEs(buffer[:n])
		if err != nil {
			r.logger.Warn(map[string]any{
				"server": r.server,
				"size":   n,
				"error":  err.Error(),
			}, "Ignoring undecodable DNS response")
			continue
		}
		cnames = append(cnames, targets...)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Debug(map[string]any{
		"server": r.server,
		"cnames": cnames,
	}, "Resolved whitelist CNAMEs")

	return cnames, nil
}
