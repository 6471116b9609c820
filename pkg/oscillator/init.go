package oscillator

import (
	"fmt"

	"github.com/tmercer/syncwave/pkg/randx"
)

// InitOptions configures state initialization. Periods are drawn from a
// normal distribution; local clocks get a bounded uniform skew so vertices do
// not start in lock-step.
type InitOptions struct {
	PeriodMean   float64
	PeriodStdDev float64
	MaxClockSkew int64
}

// resampleAttempts bounds rejection sampling of non-positive periods.
const resampleAttempts = 100

// Initialize samples per-vertex periods and clock skews for n vertices.
func Initialize(n int, opts InitOptions, src *randx.Source) (*Store, error) {
	periods := make([]float64, n)
	clocks := make([]int64, n)

	for v := 0; v < n; v++ {
		period, err := samplePeriod(opts, src)
		if err != nil {
			return nil, err
		}
		periods[v] = period
		clocks[v] = src.ClockSkew(opts.MaxClockSkew)
	}

	return NewStore(periods, clocks)
}

// SamplePeriods draws n periods from Normal(mean, stddev), rejecting
// non-positive draws. Exposed for the hierarchical frequency scheme, which
// samples around per-cluster means.
func SamplePeriods(n int, mean, stddev float64, src *randx.Source) ([]float64, error) {
	periods := make([]float64, n)
	for i := 0; i < n; i++ {
		period, err := samplePeriod(InitOptions{PeriodMean: mean, PeriodStdDev: stddev}, src)
		if err != nil {
			return nil, err
		}
		periods[i] = period
	}
	return periods, nil
}

func samplePeriod(opts InitOptions, src *randx.Source) (float64, error) {
	for attempt := 0; attempt < resampleAttempts; attempt++ {
		period, err := src.Normal(opts.PeriodMean, opts.PeriodStdDev)
		if err != nil {
			return 0, err
		}
		if period > 0 {
			return period, nil
		}
	}
	return 0, fmt.Errorf("%w: mean %g stddev %g yields non-positive periods",
		ErrSamplerFailed, opts.PeriodMean, opts.PeriodStdDev)
}
