package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hervehildenbrand/gpmtud/internal/display"
	"github.com/hervehildenbrand/gpmtud/internal/export"
	"github.com/hervehildenbrand/gpmtud/internal/monitor"
	"github.com/hervehildenbrand/gpmtud/internal/probe"
	"github.com/hervehildenbrand/gpmtud/internal/search"
	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

// Config holds the parsed CLI configuration.
type Config struct {
	Target       string
	Strategy     string
	Min          int
	Max          int
	Increment    int
	Wait         string
	Timeout      string
	Overhead     int
	IPv4Only     bool
	IPv6Only     bool
	Table        string
	Concurrency  int
	Quiet        bool
	Brief        bool
	Verbose      bool
	Watch        bool
	Monitor      bool
	MonitorEvery string
	AlertLatency string
	AlertLoss    string
	Output       string
	Format       string
	DryRun       bool
}

// NewRootCmd creates and returns the root cobra command.
func NewRootCmd() *cobra.Command {
	var cfg Config

	cmd := &cobra.Command{
		Use:   "gpmtud <target>",
		Short: "Path MTU discovery CLI",
		Long: `gpmtud discovers the path MTU to a target host by probing it with
ICMP echo requests that have the Don't Fragment flag set, using
binary, linear, or RFC 1191 plateau table search strategies.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := search.ParseStrategy(cfg.Strategy); err != nil {
				return err
			}
			if cfg.IPv4Only && cfg.IPv6Only {
				return fmt.Errorf("--ipv4 and --ipv6 are mutually exclusive")
			}
			if countTrue(cfg.Quiet, cfg.Brief, cfg.Verbose) > 1 {
				return fmt.Errorf("--quiet, --brief, and --verbose are mutually exclusive")
			}
			if cfg.Table != "" && cfg.Strategy != string(search.StrategyPlateau) {
				return fmt.Errorf("--table requires the plateau strategy")
			}
			if _, err := time.ParseDuration(cfg.Wait); err != nil {
				return fmt.Errorf("invalid wait: %w", err)
			}
			if _, err := time.ParseDuration(cfg.Timeout); err != nil {
				return fmt.Errorf("invalid timeout: %w", err)
			}
			if _, err := parsePlateauTable(cfg.Table); err != nil {
				return err
			}
			if _, err := time.ParseDuration(cfg.MonitorEvery); err != nil {
				return fmt.Errorf("invalid monitor interval: %w", err)
			}
			if cfg.AlertLatency != "" {
				if _, err := time.ParseDuration(cfg.AlertLatency); err != nil {
					return fmt.Errorf("invalid alert-latency: %w", err)
				}
			}
			if cfg.AlertLoss != "" {
				if _, err := parseLossPercent(cfg.AlertLoss); err != nil {
					return err
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Target = args[0]

			if cfg.DryRun {
				// Just validate args and return
				return nil
			}

			return runDiscovery(cmd, &cfg)
		},
	}

	// Search flags
	cmd.Flags().StringVarP(&cfg.Strategy, "strategy", "s", "binary", "Search strategy: binary|linear-up|linear-down|plateau")
	cmd.Flags().IntVar(&cfg.Min, "min", 0, "Smallest packet size to probe (default per family)")
	cmd.Flags().IntVar(&cfg.Max, "max", 0, "Largest packet size to probe (default: outgoing interface MTU)")
	cmd.Flags().IntVarP(&cfg.Increment, "increment", "i", 10, "Step size for the linear strategies")
	cmd.Flags().StringVar(&cfg.Table, "table", "", "Comma-separated plateau sizes (plateau strategy only)")

	// Probe flags
	cmd.Flags().StringVarP(&cfg.Wait, "wait", "w", "100ms", "Wait between probes")
	cmd.Flags().StringVarP(&cfg.Timeout, "timeout", "t", "2s", "Per-probe reply timeout")
	cmd.Flags().IntVar(&cfg.Overhead, "overhead", 0, "Per-packet protocol overhead in bytes (default per family)")
	cmd.Flags().IntVar(&cfg.Concurrency, "concurrency", 8, "Maximum in-flight probes for the linear and plateau strategies")

	// IP version flags
	cmd.Flags().BoolVarP(&cfg.IPv4Only, "ipv4", "4", false, "Use IPv4 only")
	cmd.Flags().BoolVarP(&cfg.IPv6Only, "ipv6", "6", false, "Use IPv6 only")

	// Display flags
	cmd.Flags().BoolVarP(&cfg.Quiet, "quiet", "q", false, "Print only the discovered PMTU")
	cmd.Flags().BoolVarP(&cfg.Brief, "brief", "b", false, "Print the discovered PMTU as a bare integer")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Print every probe and a summary")
	cmd.Flags().BoolVar(&cfg.Watch, "watch", false, "Interactive live view (requires a terminal)")

	// Monitoring flags
	cmd.Flags().BoolVar(&cfg.Monitor, "monitor", false, "Continuous monitoring mode")
	cmd.Flags().StringVar(&cfg.MonitorEvery, "monitor-interval", "30s", "Time between discovery runs in monitoring mode")
	cmd.Flags().StringVar(&cfg.AlertLatency, "alert-latency", "", "Alert on average RTT threshold (e.g., 100ms)")
	cmd.Flags().StringVar(&cfg.AlertLoss, "alert-loss", "", "Alert on probe loss threshold (e.g., 5%)")

	// Export flags
	cmd.Flags().StringVarP(&cfg.Output, "output", "o", "", "Export to file (json/csv/txt)")
	cmd.Flags().StringVar(&cfg.Format, "format", "", "Explicit export format")

	// Other flags
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "Validate args without probing")

	cmd.AddCommand(NewIPEnumCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewUpgradeCmd(Version))

	return cmd
}

func countTrue(vals ...bool) int {
	var n int
	for _, v := range vals {
		if v {
			n++
		}
	}
	return n
}

// parsePlateauTable parses a comma-separated list of plateau sizes and
// orders them largest first. An empty string selects the default table.
func parsePlateauTable(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	table := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid plateau size %q: %w", p, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("plateau size %d must be a positive integer", n)
		}
		table = append(table, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(table)))
	return table, nil
}

// discoverParams are the resolved inputs of one discovery run, shared
// by the CLI and the MCP server.
type discoverParams struct {
	Target      string
	Strategy    search.Strategy
	Family      pmtu.Family
	Min         int
	Max         int
	Overhead    int
	Increment   int
	Interval    time.Duration
	Timeout     time.Duration
	Concurrency int
	Table       []int
}

// discovery is a prepared discovery run: target resolved, bounds
// validated, prober constructed.
type discovery struct {
	params   *discoverParams
	targetIP net.IP
	resolved *search.Resolved
	prober   *probe.ICMP
	cfg      *search.Config
}

// newDiscovery resolves the target and bounds and builds the prober.
func newDiscovery(p *discoverParams) (*discovery, error) {
	family := p.Family
	if family == "" {
		family = search.InferFamily(p.Target)
	}

	targetIP, err := probe.ResolveTarget(p.Target, family)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target: %w", err)
	}

	resolved, err := search.Resolve(p.Target, search.ResolveOptions{
		Min:      p.Min,
		Max:      p.Max,
		Overhead: p.Overhead,
		Family:   family,
		LinkMTU: func() (int, error) {
			return probe.LinkMTU(targetIP)
		},
	})
	if err != nil {
		return nil, err
	}

	probeCfg := probe.DefaultConfig()
	probeCfg.Overhead = resolved.Overhead
	if p.Timeout > 0 {
		probeCfg.Timeout = p.Timeout
	}

	prober, err := probe.NewICMP(targetIP, probeCfg)
	if err != nil {
		return nil, err
	}

	searchCfg := search.DefaultConfig()
	searchCfg.Strategy = p.Strategy
	searchCfg.Bounds = resolved.Bounds
	searchCfg.Interval = p.Interval
	if p.Increment > 0 {
		searchCfg.Increment = p.Increment
	}
	if p.Concurrency > 0 {
		searchCfg.Concurrency = p.Concurrency
	}
	searchCfg.Table = p.Table

	return &discovery{
		params:   p,
		targetIP: targetIP,
		resolved: resolved,
		prober:   prober,
		cfg:      searchCfg,
	}, nil
}

// run executes the prepared search and stamps the target and family
// onto the result.
func (d *discovery) run(ctx context.Context, callback search.ProbeCallback) (*pmtu.Result, error) {
	res, err := search.Run(ctx, d.cfg, d.prober, callback)
	if res != nil {
		res.Target = d.params.Target
		res.TargetIP = d.targetIP.String()
		res.Family = d.resolved.Family
		res.Overhead = d.resolved.Overhead
	}
	return res, err
}

// discover resolves, prepares, and runs a discovery in one call.
func discover(ctx context.Context, p *discoverParams, callback search.ProbeCallback) (*pmtu.Result, error) {
	d, err := newDiscovery(p)
	if err != nil {
		return nil, err
	}
	return d.run(ctx, callback)
}

// paramsFromConfig converts validated CLI flags into discover inputs.
func paramsFromConfig(cfg *Config) *discoverParams {
	strategy, _ := search.ParseStrategy(cfg.Strategy)
	interval, _ := time.ParseDuration(cfg.Wait)
	timeout, _ := time.ParseDuration(cfg.Timeout)
	table, _ := parsePlateauTable(cfg.Table)

	family := pmtu.Family("")
	if cfg.IPv4Only {
		family = pmtu.FamilyIPv4
	}
	if cfg.IPv6Only {
		family = pmtu.FamilyIPv6
	}

	return &discoverParams{
		Target:      cfg.Target,
		Strategy:    strategy,
		Family:      family,
		Min:         cfg.Min,
		Max:         cfg.Max,
		Overhead:    cfg.Overhead,
		Increment:   cfg.Increment,
		Interval:    interval,
		Timeout:     timeout,
		Concurrency: cfg.Concurrency,
		Table:       table,
	}
}

// verbosityFromConfig maps the verbosity flags onto a display level.
func verbosityFromConfig(cfg *Config) display.Verbosity {
	switch {
	case cfg.Quiet:
		return display.Quiet
	case cfg.Brief:
		return display.Brief
	case cfg.Verbose:
		return display.Verbose
	default:
		return display.Normal
	}
}

// runDiscovery executes the discovery based on configuration.
func runDiscovery(cmd *cobra.Command, cfg *Config) error {
	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Use monitoring mode if --monitor is set
	if cfg.Monitor {
		err := runMonitor(ctx, cmd, cfg)
		if err != nil && ctx.Err() != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "\nMonitoring stopped")
			return nil
		}
		return err
	}

	var result *pmtu.Result
	var err error

	if cfg.Watch && term.IsTerminal(int(os.Stdout.Fd())) {
		result, err = runWatchDiscovery(ctx, cfg)
	} else {
		result, err = runSimpleDiscovery(ctx, cmd, cfg)
	}

	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "\nDiscovery interrupted")
			return nil
		}
		return err
	}

	// Export if output file specified
	if cfg.Output != "" {
		format := export.Format(cfg.Format)
		if err := export.ExportToFile(cfg.Output, format, result); err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Results exported to %s\n", cfg.Output)
	}

	if !result.Determined() {
		return fmt.Errorf("could not determine path MTU to %s", cfg.Target)
	}

	return nil
}

// runSimpleDiscovery runs a discovery with plain text output.
func runSimpleDiscovery(ctx context.Context, cmd *cobra.Command, cfg *Config) (*pmtu.Result, error) {
	params := paramsFromConfig(cfg)

	d, err := newDiscovery(params)
	if err != nil {
		return nil, err
	}

	renderer := display.NewSimpleRenderer()
	renderer.Verbosity = verbosityFromConfig(cfg)

	if renderer.Verbosity >= display.Normal {
		fmt.Fprintln(cmd.OutOrStdout(), renderer.RenderHeader(cfg.Target, d.targetIP.String(),
			string(params.Strategy), d.resolved.Bounds.Min, d.resolved.Bounds.Max, d.resolved.Overhead))
	}

	var callback search.ProbeCallback
	if renderer.Verbosity == display.Verbose {
		callback = func(p pmtu.Probe) {
			fmt.Fprintln(cmd.OutOrStdout(), renderer.RenderProbe(p))
		}
	}

	result, err := d.run(ctx, callback)
	if err != nil {
		return nil, err
	}

	renderer.WriteResult(cmd.OutOrStdout(), result)

	return result, nil
}

// parseLossPercent parses a loss threshold like "5%" or "5".
func parseLossPercent(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid alert-loss %q: %w", s, err)
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("alert-loss %v%% must be between 0 and 100", v)
	}
	return v, nil
}

// runMonitor runs continuous monitoring mode: the discovery repeats at
// a fixed interval and detected changes print as they happen.
func runMonitor(ctx context.Context, cmd *cobra.Command, cfg *Config) error {
	d, err := newDiscovery(paramsFromConfig(cfg))
	if err != nil {
		return err
	}

	monCfg := monitor.DefaultConfig()
	monCfg.Interval, _ = time.ParseDuration(cfg.MonitorEvery)
	if cfg.AlertLatency != "" {
		monCfg.LatencyThreshold, _ = time.ParseDuration(cfg.AlertLatency)
	}
	if cfg.AlertLoss != "" {
		monCfg.LossThreshold, _ = parseLossPercent(cfg.AlertLoss)
	}

	mon := monitor.NewMonitor(monCfg)
	mon.SetCallback(func(changes []monitor.Change) {
		now := time.Now().Format("15:04:05")
		for _, c := range changes {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", now, c.String())
		}
	})

	fmt.Fprintf(cmd.OutOrStdout(), "Monitoring path MTU to %s (%s) every %v, press Ctrl+C to stop\n",
		cfg.Target, d.targetIP, monCfg.Interval)

	first := true
	return mon.Run(ctx, func(ctx context.Context) (*pmtu.Result, error) {
		res, err := d.run(ctx, nil)
		if err == nil && first {
			first = false
			if res.Determined() {
				fmt.Fprintf(cmd.OutOrStdout(), "Baseline PMTU: %d bytes\n", res.Estimate)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Baseline PMTU: undetermined")
			}
		}
		return res, err
	})
}

// runWatchDiscovery runs a discovery with the interactive live view.
func runWatchDiscovery(ctx context.Context, cfg *Config) (*pmtu.Result, error) {
	d, err := newDiscovery(paramsFromConfig(cfg))
	if err != nil {
		return nil, err
	}

	probeChan := make(chan pmtu.Probe, 100)
	doneChan := make(chan *pmtu.Result, 1)

	var result *pmtu.Result
	var searchErr error

	go func() {
		defer close(probeChan)

		callback := func(p pmtu.Probe) {
			probeChan <- p
		}

		result, searchErr = d.run(ctx, callback)

		doneChan <- result
		close(doneChan)
	}()

	if err := display.RunWatch(cfg.Target, d.targetIP.String(), cfg.Strategy,
		d.resolved.Bounds.Min, d.resolved.Bounds.Max, probeChan, doneChan); err != nil {
		return nil, fmt.Errorf("watch error: %w", err)
	}

	if searchErr != nil {
		return nil, searchErr
	}

	return result, nil
}
