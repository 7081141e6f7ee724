// Package display provides output rendering for discovery results.
package display

import (
	"fmt"
	"io"
	"time"

	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

// Verbosity selects the amount of detail in text output.
type Verbosity int

const (
	// Quiet prints nothing but the bare estimate.
	Quiet Verbosity = iota
	// Brief prints the bare estimate without the run header.
	Brief
	// Normal prints the decorated result sentence.
	Normal
	// Verbose additionally prints one line per probe and a summary.
	Verbose
)

// SimpleRenderer renders discovery progress and results as plain text.
type SimpleRenderer struct {
	Verbosity Verbosity
}

// NewSimpleRenderer creates a renderer with Normal verbosity.
func NewSimpleRenderer() *SimpleRenderer {
	return &SimpleRenderer{Verbosity: Normal}
}

// FormatRTT formats a duration as milliseconds.
func (r *SimpleRenderer) FormatRTT(d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)
	return fmt.Sprintf("%.2fms", ms)
}

// RenderProbe renders a single probe as a progress line (verbose only).
func (r *SimpleRenderer) RenderProbe(p pmtu.Probe) string {
	if p.Succeeded() {
		return fmt.Sprintf("  %5d bytes (payload %d): reply in %s", p.Size, p.Payload, r.FormatRTT(p.RTT))
	}
	if p.ReportedMTU > 0 {
		return fmt.Sprintf("  %5d bytes (payload %d): fragmentation needed, next-hop MTU %d", p.Size, p.Payload, p.ReportedMTU)
	}
	return fmt.Sprintf("  %5d bytes (payload %d): no reply", p.Size, p.Payload)
}

// RenderHeader renders the run header printed before probing starts.
func (r *SimpleRenderer) RenderHeader(target, targetIP, strategy string, min, max, overhead int) string {
	return fmt.Sprintf("pmtud to %s (%s), %s search, bounds %d-%d bytes, overhead %d",
		target, targetIP, strategy, min, max, overhead)
}

// RenderResult renders the final estimate. Quiet and Brief modes print
// the bare integer; Normal and Verbose print the decorated sentence,
// with plateau estimates labeled as such.
func (r *SimpleRenderer) RenderResult(res *pmtu.Result) string {
	if !res.Determined() {
		return ""
	}
	if r.Verbosity <= Brief {
		return fmt.Sprintf("%d", res.Estimate)
	}
	if res.Plateau {
		return fmt.Sprintf("IP PMTU plateau estimate is %d bytes", res.Estimate)
	}
	return fmt.Sprintf("IP PMTU is %d bytes", res.Estimate)
}

// RenderSummary renders the probe statistics line (verbose only).
func (r *SimpleRenderer) RenderSummary(res *pmtu.Result) string {
	return fmt.Sprintf("%d probes, %d replies, %.1f%% loss, %v",
		res.ProbeCount(), res.SuccessCount(), res.LossPercent(),
		res.Duration().Round(time.Millisecond))
}

// WriteResult writes the final result rendering for the configured
// verbosity to the writer.
func (r *SimpleRenderer) WriteResult(w io.Writer, res *pmtu.Result) {
	if r.Verbosity == Verbose {
		fmt.Fprintln(w, r.RenderSummary(res))
	}
	if line := r.RenderResult(res); line != "" {
		fmt.Fprintln(w, line)
	}
}
