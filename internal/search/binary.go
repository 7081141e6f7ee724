package search

import (
	"context"

	"github.com/hervehildenbrand/gpmtud/pkg/pmtu"
)

// runBinary bisects the candidate space. Sizes strictly below low are
// known-or-assumed to succeed, sizes strictly above high to fail; the
// initial bounds seed those assumptions. Each probe outcome gates the
// next decision, so probes are strictly sequential. Terminates as soon
// as low > high, taking O(log(max-min)) probes.
func runBinary(ctx context.Context, cfg *Config, oracle Oracle, res *pmtu.Result, callback ProbeCallback) error {
	low := cfg.Bounds.Min
	high := cfg.Bounds.Max

	for low <= high {
		if err := ctx.Err(); err != nil {
			return err
		}

		size := (low + high) / 2
		p := oracle.Probe(ctx, size)
		res.AddProbe(p)
		if callback != nil {
			callback(p)
		}

		if p.Succeeded() {
			low = size + 1
		} else {
			high = size - 1
		}

		if low <= high {
			if err := wait(ctx, cfg.Interval); err != nil {
				return err
			}
		}
	}

	return nil
}
