package monitor

import (
	"testing"
	"time"

	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

func TestNewMonitor_CreatesMonitor(t *testing.T) {
	cfg := DefaultConfig()
	m := NewMonitor(cfg)

	if m == nil {
		t.Fatal("expected non-nil monitor")
	}
}

func TestMonitorConfig_DefaultValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Interval != 30*time.Second {
		t.Errorf("expected interval 30s, got %v", cfg.Interval)
	}
	if cfg.LatencyThreshold != 0 {
		t.Error("expected no latency threshold by default")
	}
	if cfg.LossThreshold != 0 {
		t.Error("expected no loss threshold by default")
	}
	if !cfg.AlertOnMTU {
		t.Error("expected PMTU alerting by default")
	}
}

func TestMonitor_DetectChanges_DetectsMTUChange(t *testing.T) {
	cfg := DefaultConfig()
	m := NewMonitor(cfg)

	prev := createRun(1500, 5*time.Millisecond, 0)
	curr := createRun(1400, 5*time.Millisecond, 0)

	changes := m.DetectChanges(prev, curr)

	if len(changes) == 0 {
		t.Fatal("expected PMTU change to be detected")
	}

	hasMTUChange := false
	for _, c := range changes {
		if c.Type == ChangeTypeMTU {
			hasMTUChange = true
			break
		}
	}
	if !hasMTUChange {
		t.Error("expected ChangeTypeMTU")
	}
}

func TestMonitor_DetectChanges_DetectsLostReachability(t *testing.T) {
	cfg := DefaultConfig()
	m := NewMonitor(cfg)

	prev := createRun(1500, 5*time.Millisecond, 0)
	curr := createRun(0, 0, 3) // nothing answered

	changes := m.DetectChanges(prev, curr)

	hasReachChange := false
	for _, c := range changes {
		if c.Type == ChangeTypeReachability {
			hasReachChange = true
			break
		}
	}
	if !hasReachChange {
		t.Error("expected ChangeTypeReachability")
	}
}

func TestMonitor_DetectChanges_DetectsLatencyIncrease(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LatencyThreshold = 50 * time.Millisecond
	m := NewMonitor(cfg)

	prev := createRun(1500, 10*time.Millisecond, 0)
	curr := createRun(1500, 100*time.Millisecond, 0)

	changes := m.DetectChanges(prev, curr)

	hasLatencyChange := false
	for _, c := range changes {
		if c.Type == ChangeTypeLatency {
			hasLatencyChange = true
			break
		}
	}
	if !hasLatencyChange {
		t.Error("expected ChangeTypeLatency")
	}
}

func TestMonitor_DetectChanges_DetectsLossIncrease(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LossThreshold = 5.0
	m := NewMonitor(cfg)

	prev := createRun(1500, 5*time.Millisecond, 0)
	curr := createRun(1500, 5*time.Millisecond, 3)

	changes := m.DetectChanges(prev, curr)

	hasLossChange := false
	for _, c := range changes {
		if c.Type == ChangeTypeLoss {
			hasLossChange = true
			break
		}
	}
	if !hasLossChange {
		t.Error("expected ChangeTypeLoss")
	}
}

func TestMonitor_DetectChanges_NoChangeForIdentical(t *testing.T) {
	cfg := DefaultConfig()
	m := NewMonitor(cfg)

	run := createRun(1500, 5*time.Millisecond, 0)

	changes := m.DetectChanges(run, run)

	if len(changes) != 0 {
		t.Errorf("expected no changes, got %d", len(changes))
	}
}

func TestMonitor_DetectChanges_NilBaseline(t *testing.T) {
	cfg := DefaultConfig()
	m := NewMonitor(cfg)

	if changes := m.DetectChanges(nil, createRun(1500, time.Millisecond, 0)); changes != nil {
		t.Errorf("expected nil changes without a baseline, got %v", changes)
	}
}

func TestChange_String_FormatsNicely(t *testing.T) {
	change := Change{
		Type:    ChangeTypeMTU,
		Message: "PMTU changed from 1500 to 1400 bytes",
	}

	str := change.String()

	if str == "" {
		t.Error("expected non-empty string")
	}
}

// createRun builds a discovery result with the given estimate, RTT for
// successful probes, and number of additional failed probes.
func createRun(estimate int, rtt time.Duration, failed int) *pmtu.Result {
	res := pmtu.NewResult("target", "192.0.2.1", pmtu.FamilyIPv4, "binary")
	if estimate > 0 {
		res.AddProbe(pmtu.Probe{Size: estimate, Outcome: pmtu.OutcomeSuccess, RTT: rtt})
		res.Estimate = estimate
	}
	for i := 0; i < failed; i++ {
		res.AddProbe(pmtu.Probe{Size: estimate + 1 + i, Outcome: pmtu.OutcomeFailure})
	}
	return res
}
