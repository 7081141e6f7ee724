package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

func makeResult() *pmtu.Result {
	res := pmtu.NewResult("example.com", "93.184.216.34", pmtu.FamilyIPv4, "binary")
	res.Min = 68
	res.Max = 1500
	res.Overhead = 28
	return res
}

func TestSimpleRenderer_RenderProbe_Success(t *testing.T) {
	r := NewSimpleRenderer()
	p := pmtu.Probe{Size: 1500, Payload: 1472, Outcome: pmtu.OutcomeSuccess, RTT: 5 * time.Millisecond}

	result := r.RenderProbe(p)

	if !strings.Contains(result, "1500 bytes") {
		t.Errorf("expected size in output, got %q", result)
	}
	if !strings.Contains(result, "payload 1472") {
		t.Errorf("expected payload in output, got %q", result)
	}
	if !strings.Contains(result, "5.00ms") {
		t.Errorf("expected RTT in output, got %q", result)
	}
}

func TestSimpleRenderer_RenderProbe_NoReply(t *testing.T) {
	r := NewSimpleRenderer()
	p := pmtu.Probe{Size: 9000, Payload: 8972, Outcome: pmtu.OutcomeFailure}

	result := r.RenderProbe(p)

	if !strings.Contains(result, "no reply") {
		t.Errorf("expected 'no reply' in output, got %q", result)
	}
}

func TestSimpleRenderer_RenderProbe_FragNeeded(t *testing.T) {
	r := NewSimpleRenderer()
	p := pmtu.Probe{Size: 1500, Payload: 1472, Outcome: pmtu.OutcomeFailure, ReportedMTU: 1400}

	result := r.RenderProbe(p)

	if !strings.Contains(result, "fragmentation needed") {
		t.Errorf("expected fragmentation notice in output, got %q", result)
	}
	if !strings.Contains(result, "1400") {
		t.Errorf("expected next-hop MTU in output, got %q", result)
	}
}

func TestSimpleRenderer_RenderHeader(t *testing.T) {
	r := NewSimpleRenderer()

	result := r.RenderHeader("example.com", "93.184.216.34", "binary", 68, 1500, 28)

	if !strings.Contains(result, "pmtud to example.com") {
		t.Errorf("expected target in header, got %q", result)
	}
	if !strings.Contains(result, "93.184.216.34") {
		t.Errorf("expected resolved IP in header, got %q", result)
	}
	if !strings.Contains(result, "binary search") {
		t.Errorf("expected strategy in header, got %q", result)
	}
	if !strings.Contains(result, "68-1500") {
		t.Errorf("expected bounds in header, got %q", result)
	}
}

func TestSimpleRenderer_RenderResult_Determined(t *testing.T) {
	r := NewSimpleRenderer()
	res := makeResult()
	res.Estimate = 1492

	result := r.RenderResult(res)

	if result != "IP PMTU is 1492 bytes" {
		t.Errorf("expected decorated result, got %q", result)
	}
}

func TestSimpleRenderer_RenderResult_Plateau(t *testing.T) {
	r := NewSimpleRenderer()
	res := makeResult()
	res.Strategy = "plateau"
	res.Plateau = true
	res.Estimate = 1492

	result := r.RenderResult(res)

	if result != "IP PMTU plateau estimate is 1492 bytes" {
		t.Errorf("expected plateau label, got %q", result)
	}
}

func TestSimpleRenderer_RenderResult_QuietIsBareInteger(t *testing.T) {
	r := &SimpleRenderer{Verbosity: Quiet}
	res := makeResult()
	res.Estimate = 1500

	result := r.RenderResult(res)

	if result != "1500" {
		t.Errorf("expected bare integer, got %q", result)
	}
}

func TestSimpleRenderer_RenderResult_BriefIsBareInteger(t *testing.T) {
	r := &SimpleRenderer{Verbosity: Brief}
	res := makeResult()
	res.Estimate = 1492

	result := r.RenderResult(res)

	if result != "1492" {
		t.Errorf("expected bare integer, got %q", result)
	}
}

func TestSimpleRenderer_RenderResult_Undetermined(t *testing.T) {
	r := NewSimpleRenderer()
	res := makeResult()

	if result := r.RenderResult(res); result != "" {
		t.Errorf("expected empty render for undetermined result, got %q", result)
	}
}

func TestSimpleRenderer_RenderSummary(t *testing.T) {
	r := &SimpleRenderer{Verbosity: Verbose}
	res := makeResult()
	res.AddProbe(pmtu.Probe{Size: 784, Payload: 756, Outcome: pmtu.OutcomeSuccess, RTT: time.Millisecond})
	res.AddProbe(pmtu.Probe{Size: 1143, Payload: 1115, Outcome: pmtu.OutcomeFailure})

	result := r.RenderSummary(res)

	if !strings.Contains(result, "2 probes") {
		t.Errorf("expected probe count in summary, got %q", result)
	}
	if !strings.Contains(result, "1 replies") {
		t.Errorf("expected reply count in summary, got %q", result)
	}
	if !strings.Contains(result, "50.0% loss") {
		t.Errorf("expected loss percentage in summary, got %q", result)
	}
}

func TestSimpleRenderer_WriteResult_VerboseIncludesSummary(t *testing.T) {
	r := &SimpleRenderer{Verbosity: Verbose}
	res := makeResult()
	res.AddProbe(pmtu.Probe{Size: 1492, Payload: 1464, Outcome: pmtu.OutcomeSuccess, RTT: time.Millisecond})
	res.Estimate = 1492

	var buf bytes.Buffer
	r.WriteResult(&buf, res)
	out := buf.String()

	if !strings.Contains(out, "1 probes") {
		t.Errorf("expected summary line in verbose output, got %q", out)
	}
	if !strings.Contains(out, "IP PMTU is 1492 bytes") {
		t.Errorf("expected result line in verbose output, got %q", out)
	}
}

func TestSimpleRenderer_FormatRTT_FormatsMilliseconds(t *testing.T) {
	r := NewSimpleRenderer()

	result := r.FormatRTT(5 * time.Millisecond)
	if result != "5.00ms" {
		t.Errorf("expected '5.00ms', got %q", result)
	}

	result = r.FormatRTT(500 * time.Microsecond)
	if result != "0.50ms" {
		t.Errorf("expected '0.50ms', got %q", result)
	}
}
