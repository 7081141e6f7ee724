package search

import (
	"context"

	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

// defaultPlateauTable lists MTU plateaus observed on real networks,
// largest first: the RFC 1191 section 7.1 table extended with modern
// Ethernet, jumbo frame, PPPoE, and IPv6 minimum values.
var defaultPlateauTable = []int{
	65535, // Hyperchannel, maximum IP packet
	32000, // Just in case (RFC 1191)
	17914, // 16Mb IBM Token Ring
	9000,  // Ethernet jumbo frames
	8166,  // IEEE 802.4
	4352,  // FDDI
	2002,  // IEEE 802.5
	1500,  // Ethernet
	1492,  // PPPoE over Ethernet
	1280,  // IPv6 minimum link MTU
	1006,  // SLIP
	576,   // X.25, classic IPv4 minimum reassembly buffer
	508,   // Low-MTU serial links
	296,   // Point-to-Point low delay
	68,    // IPv4 minimum (RFC 791)
}

// DefaultPlateauTable returns a fresh copy of the built-in plateau
// table so callers cannot mutate the shared defaults.
func DefaultPlateauTable() []int {
	table := make([]int, len(defaultPlateauTable))
	copy(table, defaultPlateauTable)
	return table
}

// FilterTable returns the table entries that fall within the bounds,
// preserving order. Candidates outside [min, max] are never probed.
func FilterTable(table []int, b Bounds) []int {
	var filtered []int
	for _, size := range table {
		if size >= b.Min && size <= b.Max {
			filtered = append(filtered, size)
		}
	}
	return filtered
}

// runPlateau probes only well-known link MTU values within bounds,
// trading precision for fewer probes (RFC 1191 plateau tables). Batch
// semantics match the linear strategies. The resulting estimate is
// labeled as a plateau estimate since the true PMTU may fall between
// two table entries.
func runPlateau(ctx context.Context, cfg *Config, oracle Oracle, res *pmtu.Result, callback ProbeCallback) error {
	table := cfg.Table
	if table == nil {
		table = DefaultPlateauTable()
	}

	res.Plateau = true
	return probeBatch(ctx, cfg, oracle, FilterTable(table, cfg.Bounds), res, callback)
}
