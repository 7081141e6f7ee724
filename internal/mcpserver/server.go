// Package mcpserver exposes path MTU discovery and IP range
// enumeration as MCP tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"net/netip"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hervehildenbrand/gpmtud/internal/export"
	"github.com/hervehildenbrand/gpmtud/internal/iprange"
	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

// enumerateLimit caps how many addresses the enumerate_ips tool
// returns, so a /8 cannot flood the transport.
const enumerateLimit = 65536

// DiscoverOptions are the parameters accepted by the discover_pmtu tool.
type DiscoverOptions struct {
	Target   string
	Strategy string
	Family   pmtu.Family
	Min      int
	Max      int
}

// DiscoverFunc runs a discovery and returns its result. It is
// injectable so the server can be tested without raw socket access.
type DiscoverFunc func(ctx context.Context, opts DiscoverOptions) (*pmtu.Result, error)

// Server is the MCP server for gpmtud.
type Server struct {
	mcp      *server.MCPServer
	discover DiscoverFunc
}

// New creates an MCP server backed by the given discovery function.
func New(version string, discover DiscoverFunc) *Server {
	s := &Server{
		mcp: server.NewMCPServer(
			"gpmtud",
			version,
			server.WithToolCapabilities(false),
		),
		discover: discover,
	}

	s.mcp.AddTool(mcp.NewTool("discover_pmtu",
		mcp.WithDescription("Discover the path MTU to a target host using ICMP echo probes with the Don't Fragment flag set."),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Hostname or IP address to probe"),
		),
		mcp.WithString("strategy",
			mcp.Description("Search strategy"),
			mcp.Enum("binary", "linear-up", "linear-down", "plateau"),
		),
		mcp.WithString("family",
			mcp.Description("Address family"),
			mcp.Enum("ipv4", "ipv6"),
		),
		mcp.WithNumber("min",
			mcp.Description("Smallest packet size to probe, in bytes"),
		),
		mcp.WithNumber("max",
			mcp.Description("Largest packet size to probe, in bytes"),
		),
	), s.handleDiscover)

	s.mcp.AddTool(mcp.NewTool("enumerate_ips",
		mcp.WithDescription("Enumerate the addresses of an IP range given in CIDR notation or as start and end addresses."),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("IP range, e.g. 192.0.2.0/28 or 192.0.2.1-192.0.2.10"),
		),
		mcp.WithBoolean("hosts_only",
			mcp.Description("Omit network and broadcast addresses of CIDR ranges"),
		),
	), s.handleEnumerate)

	return s
}

// ServeStdio runs the server on standard input and output until the
// client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleDiscover(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := DiscoverOptions{
		Target:   target,
		Strategy: req.GetString("strategy", "binary"),
		Family:   pmtu.Family(req.GetString("family", "")),
		Min:      req.GetInt("min", 0),
		Max:      req.GetInt("max", 0),
	}

	res, err := s.discover(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("discovery failed: %v", err)), nil
	}

	var sb strings.Builder
	exporter := export.NewJSONExporter()
	exporter.Pretty = true
	if err := exporter.Export(&sb, res); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleEnumerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spec, err := req.RequireString("range")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hostsOnly := req.GetBool("hosts_only", false)

	r, err := iprange.Parse(spec)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	var n int
	r.Each(hostsOnly, func(a netip.Addr) bool {
		if n >= enumerateLimit {
			return false
		}
		sb.WriteString(a.String())
		sb.WriteByte('\n')
		n++
		return true
	})

	if n >= enumerateLimit {
		sb.WriteString(fmt.Sprintf("... truncated at %d addresses\n", enumerateLimit))
	}

	return mcp.NewToolResultText(sb.String()), nil
}
