package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hervehildenbrand/gpmtud/internal/mcpserver"
	"github.com/hervehildenbrand/gpmtud/internal/probe"
	"github.com/hervehildenbrand/gpmtud/internal/search"
	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

// NewMCPCmd creates the mcp subcommand.
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run an MCP server exposing discovery tools over stdio",
		Long: `mcp serves the discover_pmtu and enumerate_ips tools over the Model
Context Protocol on standard input and output, so MCP clients can run
path MTU discoveries and enumerate IP ranges.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := mcpserver.New(Version, mcpDiscover)
			return s.ServeStdio()
		},
	}
}

// mcpDiscover adapts tool parameters onto the shared discovery pipeline.
func mcpDiscover(ctx context.Context, opts mcpserver.DiscoverOptions) (*pmtu.Result, error) {
	params, err := mcpParams(opts)
	if err != nil {
		return nil, err
	}
	return discover(ctx, params, nil)
}

// mcpParams maps tool options onto discovery parameters. Tools expose
// no pacing knobs, so MCP runs probe with the same inter-probe wait
// and reply timeout the CLI defaults to.
func mcpParams(opts mcpserver.DiscoverOptions) (*discoverParams, error) {
	strategy, err := search.ParseStrategy(opts.Strategy)
	if err != nil {
		return nil, err
	}

	return &discoverParams{
		Target:   opts.Target,
		Strategy: strategy,
		Family:   opts.Family,
		Min:      opts.Min,
		Max:      opts.Max,
		Interval: search.DefaultConfig().Interval,
		Timeout:  probe.DefaultConfig().Timeout,
	}, nil
}
