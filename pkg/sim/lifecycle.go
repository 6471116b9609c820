// Package sim drives simulation runs: the Init/Step/Finish/Collect
// lifecycle, the convergence state machine, per-edge usage statistics and
// the experiment wiring that ties topology, oscillator state, coupling and
// reporting together.
package sim

import (
	"context"
)

// Lifecycle is the contract a runnable simulation fulfills. Step reports
// true once the run reached a terminal stop condition; Finish produces the
// final aggregates and Collect hands back the result.
type Lifecycle[R any] interface {
	Init(ctx context.Context) error
	Step(ctx context.Context) (done bool, err error)
	Finish(ctx context.Context) error
	Collect() R
}

// Run executes a lifecycle to completion. Cancellation is honored between
// steps only; a step in flight always completes.
func Run[R any](ctx context.Context, lc Lifecycle[R]) (R, error) {
	var zero R

	if err := lc.Init(ctx); err != nil {
		return zero, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		done, err := lc.Step(ctx)
		if err != nil {
			return zero, err
		}
		if done {
			break
		}
	}

	if err := lc.Finish(ctx); err != nil {
		return zero, err
	}
	return lc.Collect(), nil
}
