// Package monitor provides continuous path MTU monitoring with change detection.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

// ChangeType represents the type of change detected.
type ChangeType string

const (
	ChangeTypeMTU          ChangeType = "mtu"
	ChangeTypeLatency      ChangeType = "latency"
	ChangeTypeLoss         ChangeType = "loss"
	ChangeTypeReachability ChangeType = "reachability"
)

// Change represents a detected change between discovery runs.
type Change struct {
	Type      ChangeType
	Message   string
	Timestamp time.Time
	OldValue  interface{}
	NewValue  interface{}
}

// String formats the change for display.
func (c Change) String() string {
	return fmt.Sprintf("[%s] %s", c.Type, c.Message)
}

// Config holds monitoring configuration.
type Config struct {
	Interval         time.Duration // Time between discovery runs
	LatencyThreshold time.Duration // Alert if average RTT exceeds this
	LossThreshold    float64       // Alert if loss % exceeds this
	AlertOnMTU       bool          // Alert on PMTU changes
}

// DefaultConfig returns the default monitoring configuration.
func DefaultConfig() *Config {
	return &Config{
		Interval:   30 * time.Second,
		AlertOnMTU: true,
	}
}

// ChangeCallback is called when changes are detected.
type ChangeCallback func([]Change)

// Monitor performs continuous path MTU monitoring.
type Monitor struct {
	config   *Config
	callback ChangeCallback
	previous *pmtu.Result
}

// NewMonitor creates a new monitor with the given configuration.
func NewMonitor(cfg *Config) *Monitor {
	return &Monitor{
		config: cfg,
	}
}

// SetCallback sets the callback for change notifications.
func (m *Monitor) SetCallback(cb ChangeCallback) {
	m.callback = cb
}

// DetectChanges compares two discovery runs and returns detected changes.
func (m *Monitor) DetectChanges(prev, curr *pmtu.Result) []Change {
	if prev == nil || curr == nil {
		return nil
	}

	var changes []Change

	// PMTU change
	if m.config.AlertOnMTU && prev.Determined() && curr.Determined() && prev.Estimate != curr.Estimate {
		changes = append(changes, Change{
			Type:      ChangeTypeMTU,
			Message:   fmt.Sprintf("PMTU changed from %d to %d bytes", prev.Estimate, curr.Estimate),
			Timestamp: time.Now(),
			OldValue:  prev.Estimate,
			NewValue:  curr.Estimate,
		})
	}

	// Target stopped or resumed answering
	if prev.Determined() && !curr.Determined() {
		changes = append(changes, Change{
			Type:      ChangeTypeReachability,
			Message:   "PMTU undetermined: no probe succeeded",
			Timestamp: time.Now(),
			OldValue:  prev.Estimate,
			NewValue:  0,
		})
	}
	if !prev.Determined() && curr.Determined() {
		changes = append(changes, Change{
			Type:      ChangeTypeReachability,
			Message:   fmt.Sprintf("PMTU determined again: %d bytes", curr.Estimate),
			Timestamp: time.Now(),
			OldValue:  0,
			NewValue:  curr.Estimate,
		})
	}

	// Latency change
	if m.config.LatencyThreshold > 0 {
		prevRTT := avgRTT(prev)
		currRTT := avgRTT(curr)
		if currRTT > m.config.LatencyThreshold && currRTT > prevRTT {
			changes = append(changes, Change{
				Type:      ChangeTypeLatency,
				Message:   fmt.Sprintf("Average RTT increased from %.1fms to %.1fms (threshold: %.1fms)", msec(prevRTT), msec(currRTT), msec(m.config.LatencyThreshold)),
				Timestamp: time.Now(),
				OldValue:  prevRTT,
				NewValue:  currRTT,
			})
		}
	}

	// Loss change
	if m.config.LossThreshold > 0 {
		prevLoss := prev.LossPercent()
		currLoss := curr.LossPercent()
		if currLoss > m.config.LossThreshold && currLoss > prevLoss {
			changes = append(changes, Change{
				Type:      ChangeTypeLoss,
				Message:   fmt.Sprintf("Probe loss increased from %.1f%% to %.1f%% (threshold: %.1f%%)", prevLoss, currLoss, m.config.LossThreshold),
				Timestamp: time.Now(),
				OldValue:  prevLoss,
				NewValue:  currLoss,
			})
		}
	}

	return changes
}

// Run starts the monitoring loop. discoverFn runs one full discovery;
// a failed run is skipped, not fatal.
func (m *Monitor) Run(ctx context.Context, discoverFn func(context.Context) (*pmtu.Result, error)) error {
	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	// Initial run establishes the baseline
	result, err := discoverFn(ctx)
	if err != nil {
		return fmt.Errorf("initial discovery failed: %w", err)
	}
	m.previous = result

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			result, err := discoverFn(ctx)
			if err != nil {
				continue
			}

			changes := m.DetectChanges(m.previous, result)
			if len(changes) > 0 && m.callback != nil {
				m.callback(changes)
			}

			m.previous = result
		}
	}
}

// avgRTT averages the RTT of the successful probes of a run.
func avgRTT(res *pmtu.Result) time.Duration {
	var total time.Duration
	var n int
	for _, p := range res.Probes {
		if p.Succeeded() {
			total += p.RTT
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / time.Duration(n)
}

func msec(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
