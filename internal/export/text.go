package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

// TextExporter exports discovery results to human-readable text format.
type TextExporter struct{}

// NewTextExporter creates a new text exporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Export writes the discovery result as text to the writer.
func (e *TextExporter) Export(w io.Writer, res *pmtu.Result) error {
	// Header
	fmt.Fprintf(w, "Path MTU discovery to %s (%s)\n", res.Target, res.TargetIP)
	fmt.Fprintf(w, "Family: %s\n", res.Family)
	fmt.Fprintf(w, "Strategy: %s\n", res.Strategy)
	fmt.Fprintf(w, "Bounds: %d-%d bytes (overhead %d)\n", res.Min, res.Max, res.Overhead)
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintln(w)

	// Probes
	for _, p := range res.Probes {
		e.writeProbe(w, p)
	}

	// Summary
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 70))
	if res.Determined() {
		if res.Plateau {
			fmt.Fprintf(w, "PMTU plateau estimate: %d bytes\n", res.Estimate)
		} else {
			fmt.Fprintf(w, "PMTU: %d bytes\n", res.Estimate)
		}
	} else {
		fmt.Fprintln(w, "PMTU not determined (no probe succeeded)")
	}
	fmt.Fprintf(w, "Probes: %d sent, %d replies, %.1f%% loss\n",
		res.ProbeCount(), res.SuccessCount(), res.LossPercent())
	if !res.StartTime.IsZero() && !res.EndTime.IsZero() {
		fmt.Fprintf(w, "Duration: %v\n", res.Duration().Round(time.Millisecond))
	}

	return nil
}

func (e *TextExporter) writeProbe(w io.Writer, p pmtu.Probe) {
	if p.Succeeded() {
		ms := float64(p.RTT) / float64(time.Millisecond)
		fmt.Fprintf(w, "%5d bytes (payload %d)  reply in %.2fms\n", p.Size, p.Payload, ms)
		return
	}

	line := fmt.Sprintf("%5d bytes (payload %d)  no reply", p.Size, p.Payload)
	if p.ReportedMTU > 0 {
		line += fmt.Sprintf(" [next-hop MTU %d]", p.ReportedMTU)
	}
	fmt.Fprintln(w, line)
}
