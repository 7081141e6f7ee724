package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

func sampleResult() *pmtu.Result {
	res := pmtu.NewResult("example.com", "93.184.216.34", pmtu.FamilyIPv4, "binary")
	res.Min = 68
	res.Max = 1500
	res.Overhead = 28
	res.AddProbe(pmtu.Probe{Size: 784, Payload: 756, Outcome: pmtu.OutcomeSuccess, RTT: 5 * time.Millisecond})
	res.AddProbe(pmtu.Probe{Size: 1493, Payload: 1465, Outcome: pmtu.OutcomeFailure, ReportedMTU: 1492})
	res.Estimate = 784
	return res
}

func TestJSONExporter_Export_ProducesValidJSON(t *testing.T) {
	e := NewJSONExporter()
	var buf bytes.Buffer

	if err := e.Export(&buf, sampleResult()); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	var exported ExportedResult
	if err := json.Unmarshal(buf.Bytes(), &exported); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
}

func TestJSONExporter_Export_IncludesTarget(t *testing.T) {
	e := NewJSONExporter()
	var buf bytes.Buffer

	if err := e.Export(&buf, sampleResult()); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	var exported ExportedResult
	if err := json.Unmarshal(buf.Bytes(), &exported); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if exported.Target != "example.com" {
		t.Errorf("expected target 'example.com', got %q", exported.Target)
	}
	if exported.TargetIP != "93.184.216.34" {
		t.Errorf("expected targetIP '93.184.216.34', got %q", exported.TargetIP)
	}
}

func TestJSONExporter_Export_IncludesProbes(t *testing.T) {
	e := NewJSONExporter()
	var buf bytes.Buffer

	if err := e.Export(&buf, sampleResult()); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	var exported ExportedResult
	if err := json.Unmarshal(buf.Bytes(), &exported); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(exported.Probes) != 2 {
		t.Fatalf("expected 2 probes, got %d", len(exported.Probes))
	}
	if !exported.Probes[0].Success {
		t.Error("expected first probe to be successful")
	}
	if exported.Probes[0].RTT != 5.0 {
		t.Errorf("expected RTT 5.0ms, got %v", exported.Probes[0].RTT)
	}
	if exported.Probes[1].ReportedMTU != 1492 {
		t.Errorf("expected reported MTU 1492, got %d", exported.Probes[1].ReportedMTU)
	}
}

func TestJSONExporter_Export_IncludesEstimate(t *testing.T) {
	e := NewJSONExporter()
	var buf bytes.Buffer

	if err := e.Export(&buf, sampleResult()); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	var exported ExportedResult
	if err := json.Unmarshal(buf.Bytes(), &exported); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if exported.Estimate != 784 {
		t.Errorf("expected estimate 784, got %d", exported.Estimate)
	}
	if !exported.Determined {
		t.Error("expected determined to be true")
	}
}

func TestJSONExporter_Export_PrettyPrints(t *testing.T) {
	e := NewJSONExporter()
	e.Pretty = true
	var buf bytes.Buffer

	if err := e.Export(&buf, sampleResult()); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("expected indented output in pretty mode")
	}
}
