package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

func TestCSVExporter_Export_ProducesValidCSV(t *testing.T) {
	e := NewCSVExporter()
	var buf bytes.Buffer

	if err := e.Export(&buf, sampleResult()); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	reader := csv.NewReader(&buf)
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	// header + 2 probes
	if len(records) != 3 {
		t.Errorf("expected 3 records, got %d", len(records))
	}
}

func TestCSVExporter_Export_IncludesHeader(t *testing.T) {
	e := NewCSVExporter()
	var buf bytes.Buffer

	if err := e.Export(&buf, sampleResult()); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if !strings.Contains(first, "size") || !strings.Contains(first, "rtt_ms") {
		t.Errorf("expected header columns, got %q", first)
	}
}

func TestCSVExporter_Export_IncludesProbeData(t *testing.T) {
	e := NewCSVExporter()
	var buf bytes.Buffer

	if err := e.Export(&buf, sampleResult()); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "784") {
		t.Error("expected probe size in output")
	}
	if !strings.Contains(out, "5.00") {
		t.Error("expected RTT in output")
	}
	if !strings.Contains(out, "1492") {
		t.Error("expected reported MTU in output")
	}
}

func TestCSVExporter_Export_FailedProbeHasEmptyRTT(t *testing.T) {
	e := NewCSVExporter()
	res := pmtu.NewResult("example.com", "93.184.216.34", pmtu.FamilyIPv4, "binary")
	res.AddProbe(pmtu.Probe{Size: 9000, Payload: 8972, Outcome: pmtu.OutcomeFailure})

	var buf bytes.Buffer
	if err := e.Export(&buf, res); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	reader := csv.NewReader(bytes.NewReader(buf.Bytes()))
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	row := records[1]
	if row[7] != "" {
		t.Errorf("expected empty rtt_ms for failed probe, got %q", row[7])
	}
	if row[6] != "false" {
		t.Errorf("expected success=false, got %q", row[6])
	}
}
