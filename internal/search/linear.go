package search

import (
	"context"
	"sort"
	"sync"

	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

// runLinear steps through the candidate space with a fixed increment,
// upward from min or downward from max. Iterations have no dependency
// on prior outcomes, so probes are dispatched without waiting for
// earlier replies; the full candidate set is always issued.
func runLinear(ctx context.Context, cfg *Config, oracle Oracle, res *pmtu.Result, callback ProbeCallback, down bool) error {
	var sizes []int
	if down {
		for s := cfg.Bounds.Max; s >= cfg.Bounds.Min; s -= cfg.Increment {
			sizes = append(sizes, s)
		}
	} else {
		// Standard step enumeration: max itself is only probed if
		// reached exactly by stepping. Known imprecision, preserved.
		for s := cfg.Bounds.Min; s <= cfg.Bounds.Max; s += cfg.Increment {
			sizes = append(sizes, s)
		}
	}

	return probeBatch(ctx, cfg, oracle, sizes, res, callback)
}

// probeBatch fires one probe per candidate with a fixed delay between
// dispatches (not between completions), capped at cfg.Concurrency
// in-flight probes, then joins all outcomes and records them sorted by
// size. Shared by the linear and plateau strategies.
func probeBatch(ctx context.Context, cfg *Config, oracle Oracle, sizes []int, res *pmtu.Result, callback ProbeCallback) error {
	sem := make(chan struct{}, cfg.Concurrency)
	probes := make([]pmtu.Probe, 0, len(sizes))

	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, size := range sizes {
		if err := ctx.Err(); err != nil {
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(size int) {
			defer wg.Done()
			defer func() { <-sem }()

			p := oracle.Probe(ctx, size)
			mu.Lock()
			probes = append(probes, p)
			mu.Unlock()
			if callback != nil {
				callback(p)
			}
		}(size)

		if i < len(sizes)-1 {
			if err := wait(ctx, cfg.Interval); err != nil {
				break
			}
		}
	}

	wg.Wait()

	sort.Slice(probes, func(i, j int) bool { return probes[i].Size < probes[j].Size })
	for _, p := range probes {
		res.AddProbe(p)
	}

	return ctx.Err()
}
