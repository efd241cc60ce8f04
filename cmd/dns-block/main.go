package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haukened/dns-block/internal/dns/common/clock"
	"github.com/haukened/dns-block/internal/dns/common/log"
	"github.com/haukened/dns-block/internal/dns/config"
	"github.com/haukened/dns-block/internal/dns/gateways/upstream"
	"github.com/haukened/dns-block/internal/dns/gateways/wire"
	"github.com/haukened/dns-block/internal/dns/repos/blocklist"
	"github.com/haukened/dns-block/internal/dns/repos/blocklist/bloom"
	"github.com/haukened/dns-block/internal/dns/repos/blocklist/lru"
	"github.com/haukened/dns-block/internal/dns/repos/output"
	"github.com/haukened/dns-block/internal/dns/services/classifier"
	"github.com/haukened/dns-block/internal/dns/services/compactor"
	"github.com/haukened/dns-block/internal/dns/services/filter"
)

const (
	version = "0.1.0-dev"
	appName = "dns-block"

	defaultOutputFile = "simple.blocked"

	// apexes listed in the info-level report
	topApexCount = 10
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	debug      int
	timing     bool
	configFile string
	resolver   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(os.Stdin, os.Stdout)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   appName,
		Short: "Compact domain blocklists into a minimal covering set",
		Long: `Compact domain blocklists into a minimal covering set.

Blocking a domain blocks everything below it, so every listed name that
is already covered by a listed ancestor is dropped. Whitelisted names and
the CNAME targets they resolve to are never blocked.

The result is written as a plain list or a BIND zone (pack), or used to
annotate a live BIND query log read from stdin (pipe).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.CountVarP(&g.debug, "debug", "d", "increase log verbosity (-d warn, -dd info, -ddd debug)")
	pf.BoolVarP(&g.timing, "timing", "t", false, "report how long each phase took")
	pf.StringVar(&g.configFile, "config", "", "TOML config file")
	pf.StringVar(&g.resolver, "resolver", "", "DNS server used to resolve whitelist CNAMEs, ip:port")

	root.AddCommand(newPackCmd(&g), newPipeCmd(&g, stdin, stdout))
	return root
}

func newPackCmd(g *globalFlags) *cobra.Command {
	var bind bool
	cmd := &cobra.Command{
		Use:   "pack [--bind] <domains.blocked> <domains.whitelist> <hosts_blocked.txt> [output_file]",
		Short: "Write the compacted block set to a file",
		Example: `  dns-block pack domains.blocked domains.whitelist hosts_blocked.txt
  dns-block pack --bind domains.blocked - - db.rpz`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFile := defaultOutputFile
			if len(args) == 4 {
				outputFile = args[3]
			}
			cfg, err := loadConfig(cmd, g, args[:3])
			if err != nil {
				return err
			}
			res, err := compact(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if err := output.WriteFile(outputFile, bind, res.Com, res.Net); err != nil {
				return err
			}
			log.Info(map[string]any{
				"file":    outputFile,
				"bind":    bind,
				"domains": res.Len(),
			}, "Wrote compacted block set")
			return nil
		},
	}
	cmd.Flags().BoolVar(&bind, "bind", false, "write a BIND zone instead of a plain list")
	return cmd
}

func newPipeCmd(g *globalFlags, stdin io.Reader, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipe [--filter ip,ip] <domains.blocked> <domains.whitelist> <hosts_blocked.txt>",
		Short: "Annotate blocked queries in a BIND query log read from stdin",
		Example: `  tail -f /var/log/named/queries.log | dns-block pipe --filter 10.0.0.30 domains.blocked - -`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g, args)
			if err != nil {
				return err
			}
			res, err := compact(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			cache, err := lru.New(cfg.CacheSize)
			if err != nil {
				return fmt.Errorf("failed to build decision cache: %w", err)
			}
			repo := blocklist.NewRepository(res, cache, bloom.NewFactory(), cfg.BloomFPRate)

			set := make(map[string]struct{}, len(cfg.Filter))
			for _, c := range cfg.Filter {
				set[c] = struct{}{}
			}
			f, err := filter.New(filter.Options{
				Blocklist: repo,
				Clients:   set,
				Logger:    log.GetLogger(),
			})
			if err != nil {
				return err
			}
			if err := f.Run(stdin, stdout); err != nil {
				return err
			}
			log.Info(repo.Stats().Fields(), "Lookup statistics")
			return nil
		},
	}
	cmd.Flags().String("filter", "", "comma-separated client addresses to watch (default all)")
	return cmd
}

// loadConfig layers the config file, environment, explicit flags and the
// positional file arguments, then configures the global logger.
func loadConfig(cmd *cobra.Command, g *globalFlags, files []string) (*config.AppConfig, error) {
	cfg, err := config.Load(config.LoadOptions{
		File:      g.configFile,
		Overrides: overrides(cmd, g, files),
	})
	if err != nil {
		return nil, err
	}
	if err := log.Configure(cfg.Env, cfg.LogLevel); err != nil {
		return nil, err
	}
	log.Debug(map[string]any{
		"version":   version,
		"env":       cfg.Env,
		"log_level": cfg.LogLevel,
		"resolver":  cfg.Resolver,
		"blocklist": cfg.Blocklist,
		"whitelist": cfg.Whitelist,
		"personal":  cfg.Personal,
	}, "Starting dns-block")
	return cfg, nil
}

// overrides maps the flags the user actually set, plus the positional input
// files, onto config keys. Unset flags leave the file and env layers alone.
func overrides(cmd *cobra.Command, g *globalFlags, files []string) map[string]any {
	o := map[string]any{
		"blocklist": files[0],
		"whitelist": files[1],
		"personal":  files[2],
	}
	flags := cmd.Flags()
	if g.debug > 0 {
		o["log_level"] = log.LevelForVerbosity(g.debug, "error")
	}
	if flags.Changed("timing") {
		o["timing"] = g.timing
	}
	if flags.Changed("resolver") {
		o["resolver"] = g.resolver
	}
	if flags.Changed("filter") {
		clients, _ := flags.GetString("filter")
		o["filter"] = clientList(filter.ParseClients(clients))
	}
	return o
}

func clientList(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// compact runs the pipeline and logs its report.
func compact(ctx context.Context, cfg *config.AppConfig) (*compactor.Result, error) {
	logger := log.GetLogger()
	resolver, err := upstream.NewResolver(upstream.Options{
		Server: cfg.Resolver,
		Codec:  wire.NewUDPCodec(logger),
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	c := compactor.New(compactor.Options{
		Resolver: resolver,
		Clock:    clock.RealClock{},
		Logger:   logger,
	})
	res, err := c.Run(ctx, compactor.Inputs{
		Blocklist: cfg.Blocklist,
		Whitelist: cfg.Whitelist,
		Personal:  cfg.Personal,
	})
	if err != nil {
		return nil, err
	}

	log.Info(res.ComStats.Fields(), "Statistics com")
	log.Info(res.NetStats.Fields(), "Statistics net")
	log.Info(res.Total.Fields(), "Statistics total")
	for _, a := range classifier.TopApexes(topApexCount, res.Com, res.Net) {
		log.Info(map[string]any{"apex": a.Apex, "entries": a.Count}, "Top blocked apex")
	}
	if cfg.Timing {
		log.Info(res.Timings.Fields(), "Phase timings")
	}
	return res, nil
}
