// Package export provides functionality to export discovery results to various formats.
package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

// ExportedResult is the JSON representation of a discovery result.
type ExportedResult struct {
	Target      string          `json:"target"`
	TargetIP    string          `json:"targetIP"`
	Family      string          `json:"family"`
	Strategy    string          `json:"strategy"`
	Min         int             `json:"min"`
	Max         int             `json:"max"`
	Overhead    int             `json:"overhead"`
	Estimate    int             `json:"estimate,omitempty"`
	Plateau     bool            `json:"plateau,omitempty"`
	Determined  bool            `json:"determined"`
	LossPercent float64         `json:"lossPercent"`
	StartTime   time.Time       `json:"startTime,omitempty"`
	EndTime     time.Time       `json:"endTime,omitempty"`
	Probes      []ExportedProbe `json:"probes"`
}

// ExportedProbe is the JSON representation of a single probe.
type ExportedProbe struct {
	Size        int     `json:"size"`
	Payload     int     `json:"payload"`
	Success     bool    `json:"success"`
	RTT         float64 `json:"rtt,omitempty"` // in ms
	ReportedMTU int     `json:"reportedMtu,omitempty"`
}

// JSONExporter exports discovery results to JSON format.
type JSONExporter struct {
	Pretty bool // Whether to pretty-print the JSON
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{
		Pretty: false,
	}
}

// Export writes the discovery result as JSON to the writer.
func (e *JSONExporter) Export(w io.Writer, res *pmtu.Result) error {
	exported := e.convert(res)

	encoder := json.NewEncoder(w)
	if e.Pretty {
		encoder.SetIndent("", "  ")
	}

	return encoder.Encode(exported)
}

// convert transforms a Result to an ExportedResult.
func (e *JSONExporter) convert(res *pmtu.Result) *ExportedResult {
	exported := &ExportedResult{
		Target:      res.Target,
		TargetIP:    res.TargetIP,
		Family:      string(res.Family),
		Strategy:    res.Strategy,
		Min:         res.Min,
		Max:         res.Max,
		Overhead:    res.Overhead,
		Estimate:    res.Estimate,
		Plateau:     res.Plateau,
		Determined:  res.Determined(),
		LossPercent: res.LossPercent(),
		StartTime:   res.StartTime,
		EndTime:     res.EndTime,
		Probes:      make([]ExportedProbe, 0, len(res.Probes)),
	}

	for _, p := range res.Probes {
		exported.Probes = append(exported.Probes, e.convertProbe(p))
	}

	return exported
}

// convertProbe transforms a Probe to an ExportedProbe.
func (e *JSONExporter) convertProbe(p pmtu.Probe) ExportedProbe {
	return ExportedProbe{
		Size:        p.Size,
		Payload:     p.Payload,
		Success:     p.Succeeded(),
		RTT:         float64(p.RTT) / float64(time.Millisecond),
		ReportedMTU: p.ReportedMTU,
	}
}
