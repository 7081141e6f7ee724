package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

// CSVExporter exports discovery results to CSV format.
type CSVExporter struct{}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Export writes the discovery result as CSV to the writer,
// one row per probe.
func (e *CSVExporter) Export(w io.Writer, res *pmtu.Result) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Write header
	header := []string{
		"target", "target_ip", "family", "strategy",
		"size", "payload", "success", "rtt_ms", "reported_mtu",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Write data rows
	for _, p := range res.Probes {
		row := e.probeToRow(res, p)
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return nil
}

// probeToRow converts a probe to a CSV row.
func (e *CSVExporter) probeToRow(res *pmtu.Result, p pmtu.Probe) []string {
	rtt := ""
	if p.Succeeded() {
		rtt = fmt.Sprintf("%.2f", float64(p.RTT)/float64(time.Millisecond))
	}

	reported := ""
	if p.ReportedMTU > 0 {
		reported = fmt.Sprintf("%d", p.ReportedMTU)
	}

	return []string{
		res.Target,
		res.TargetIP,
		string(res.Family),
		res.Strategy,
		fmt.Sprintf("%d", p.Size),
		fmt.Sprintf("%d", p.Payload),
		fmt.Sprintf("%t", p.Succeeded()),
		rtt,
		reported,
	}
}
