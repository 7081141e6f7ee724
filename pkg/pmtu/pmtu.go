// Package pmtu defines the unified data model for path MTU discovery results.
package pmtu

import (
	"fmt"
	"time"
)

// Family identifies the IP address family a discovery run operates on.
type Family string

const (
	FamilyIPv4 Family = "ipv4"
	FamilyIPv6 Family = "ipv6"
)

// Outcome is the result of a single probe. Timeouts and ICMP errors are
// both failures; the prober makes no distinction between them.
type Outcome int

const (
	OutcomeFailure Outcome = iota
	OutcomeSuccess
)

// String formats the outcome for display.
func (o Outcome) String() string {
	if o == OutcomeSuccess {
		return "success"
	}
	return "failure"
}

// Probe records a single probe attempt. A probe is ephemeral: issued,
// resolved, then appended to the result's probe log.
type Probe struct {
	// Size is the total IP packet size in bytes, including protocol overhead.
	Size int

	// Payload is the echo payload size handed to the ICMP facility
	// (Size minus the resolved overhead).
	Payload int

	// Outcome indicates whether a matching reply arrived within the timeout.
	Outcome Outcome

	// RTT is the round-trip time for successful probes.
	RTT time.Duration

	// ReportedMTU is the next-hop MTU carried in an ICMP Fragmentation
	// Needed / Packet Too Big response, if one was seen. Informational
	// only; the probe still counts as a failure.
	ReportedMTU int
}

// Succeeded returns true if the probe received a matching reply.
func (p Probe) Succeeded() bool {
	return p.Outcome == OutcomeSuccess
}

// String formats the probe for display.
func (p Probe) String() string {
	if p.Succeeded() {
		return fmt.Sprintf("%d bytes: reply in %v", p.Size, p.RTT.Round(time.Microsecond))
	}
	if p.ReportedMTU > 0 {
		return fmt.Sprintf("%d bytes: fragmentation needed (next-hop MTU %d)", p.Size, p.ReportedMTU)
	}
	return fmt.Sprintf("%d bytes: no reply", p.Size)
}

// Result contains the complete outcome of one discovery run.
type Result struct {
	Target    string    // Target hostname or literal as given
	TargetIP  string    // Resolved target IP
	Family    Family    // Address family used for probing
	Strategy  string    // Search strategy name
	Min       int       // Lower search bound (bytes)
	Max       int       // Upper search bound (bytes)
	Overhead  int       // Per-packet protocol overhead (bytes)
	Probes    []Probe   // Ordered probe log
	Estimate  int       // Discovered PMTU in bytes (0 if undetermined)
	Plateau   bool      // Estimate came from a plateau table (less exact)
	StartTime time.Time // When the search started
	EndTime   time.Time // When the search completed
}

// NewResult creates a Result for the given target.
func NewResult(target, targetIP string, family Family, strategy string) *Result {
	return &Result{
		Target:   target,
		TargetIP: targetIP,
		Family:   family,
		Strategy: strategy,
		Probes:   make([]Probe, 0),
	}
}

// AddProbe appends a probe record to the result.
func (r *Result) AddProbe(p Probe) {
	r.Probes = append(r.Probes, p)
}

// Determined returns true if at least one probe succeeded and an
// estimate was produced.
func (r *Result) Determined() bool {
	return r.Estimate > 0
}

// MaxSuccess returns the largest successful probe size seen, or 0 if no
// probe succeeded. This is the estimate every strategy reports.
func (r *Result) MaxSuccess() int {
	best := 0
	for _, p := range r.Probes {
		if p.Succeeded() && p.Size > best {
			best = p.Size
		}
	}
	return best
}

// ProbeCount returns the number of probes issued during the run.
func (r *Result) ProbeCount() int {
	return len(r.Probes)
}

// SuccessCount returns the number of probes that received a reply.
func (r *Result) SuccessCount() int {
	var n int
	for _, p := range r.Probes {
		if p.Succeeded() {
			n++
		}
	}
	return n
}

// LossPercent calculates the probe loss percentage across the run.
func (r *Result) LossPercent() float64 {
	if len(r.Probes) == 0 {
		return 0
	}
	var failed int
	for _, p := range r.Probes {
		if !p.Succeeded() {
			failed++
		}
	}
	return float64(failed) / float64(len(r.Probes)) * 100
}

// Duration returns the wall-clock duration of the run.
func (r *Result) Duration() time.Duration {
	if r.StartTime.IsZero() || r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}
