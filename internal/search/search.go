// Package search implements the path MTU search strategies and the
// bounds/overhead resolution that precedes them.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

// Strategy selects how the candidate size space is explored.
type Strategy string

const (
	StrategyBinary     Strategy = "binary"
	StrategyLinearUp   Strategy = "linear-up"
	StrategyLinearDown Strategy = "linear-down"
	StrategyPlateau    Strategy = "plateau"
)

// ParseStrategy converts a CLI strategy name into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyBinary, StrategyLinearUp, StrategyLinearDown, StrategyPlateau:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("invalid strategy %q: must be binary, linear-up, linear-down, or plateau", s)
	}
}

// Oracle issues a single probe of the given total packet size and
// reports the outcome. Implementations must not retry; retry policy,
// if any, belongs to the strategy.
type Oracle interface {
	Probe(ctx context.Context, size int) pmtu.Probe
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(ctx context.Context, size int) pmtu.Probe

// Probe implements Oracle.
func (f OracleFunc) Probe(ctx context.Context, size int) pmtu.Probe {
	return f(ctx, size)
}

// ProbeCallback is called as each probe resolves. For the batch
// strategies it may be invoked from multiple goroutines.
type ProbeCallback func(pmtu.Probe)

// Config holds search configuration. Defaults come from DefaultConfig;
// callers override fields before Run.
type Config struct {
	Strategy Strategy

	// Bounds brackets the candidate sizes. The bounds are assumed, not
	// verified, to bracket the true PMTU.
	Bounds Bounds

	// Interval is the fixed inter-probe wait: between probes for binary
	// search, between dispatches for the batch strategies.
	Interval time.Duration

	// Increment is the step size for the linear strategies.
	Increment int

	// Concurrency caps simultaneously in-flight probes for the batch
	// strategies.
	Concurrency int

	// Table holds the plateau candidates, largest first. Nil selects
	// DefaultPlateauTable.
	Table []int
}

// DefaultConfig returns the default search configuration. Bounds are
// left zero; they come from the resolver.
func DefaultConfig() *Config {
	return &Config{
		Strategy:    StrategyBinary,
		Interval:    100 * time.Millisecond,
		Increment:   10,
		Concurrency: 8,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := ParseStrategy(string(c.Strategy)); err != nil {
		return err
	}
	if err := c.Bounds.Validate(); err != nil {
		return err
	}
	if c.Interval < 0 {
		return errors.New("inter-probe interval must not be negative")
	}
	if c.Increment <= 0 && (c.Strategy == StrategyLinearUp || c.Strategy == StrategyLinearDown) {
		return errors.New("increment must be positive")
	}
	if c.Concurrency <= 0 {
		return errors.New("concurrency must be positive")
	}
	return nil
}

// Run executes the configured strategy against the oracle and returns
// the discovery result. The result is populated even when no probe
// succeeded; callers check Determined(). The callback, if non-nil, is
// invoked for every resolved probe.
func Run(ctx context.Context, cfg *Config, oracle Oracle, callback ProbeCallback) (*pmtu.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search config: %w", err)
	}

	res := pmtu.NewResult("", "", "", string(cfg.Strategy))
	res.Min = cfg.Bounds.Min
	res.Max = cfg.Bounds.Max
	res.StartTime = time.Now()

	var err error
	switch cfg.Strategy {
	case StrategyBinary:
		err = runBinary(ctx, cfg, oracle, res, callback)
	case StrategyLinearUp:
		err = runLinear(ctx, cfg, oracle, res, callback, false)
	case StrategyLinearDown:
		err = runLinear(ctx, cfg, oracle, res, callback, true)
	case StrategyPlateau:
		err = runPlateau(ctx, cfg, oracle, res, callback)
	}

	res.EndTime = time.Now()
	if err != nil {
		return res, err
	}

	res.Estimate = res.MaxSuccess()
	return res, nil
}

// wait sleeps for the inter-probe interval, honoring cancellation.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
