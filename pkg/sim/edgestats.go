package sim

import (
	"golang.org/x/exp/constraints"
)

// EdgeStats counts how often each edge was the active coupling edge. The
// counts feed reporting only; nothing in the dynamics reads them.
type EdgeStats struct {
	counts []int64
}

// NewEdgeStats creates a tracker for the given number of edges.
func NewEdgeStats(edges int) *EdgeStats {
	return &EdgeStats{counts: make([]int64, edges)}
}

// Record increments the counter of one edge.
func (s *EdgeStats) Record(edgeIdx int) {
	s.counts[edgeIdx]++
}

// Count returns the raw counter of one edge.
func (s *EdgeStats) Count(edgeIdx int) int64 {
	return s.counts[edgeIdx]
}

// Normalized returns the counters min-max scaled into [0,1], indexed like
// the graph's edge list.
func (s *EdgeStats) Normalized() []float64 {
	return MinMaxNormalize(s.counts)
}

// MinMaxNormalize scales values into [0,1]. A constant slice maps to all
// zeros: with no spread there is nothing to rank.
func MinMaxNormalize[T constraints.Integer | constraints.Float](values []T) []float64 {
	if len(values) == 0 {
		return nil
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	out := make([]float64, len(values))
	if max == min {
		return out
	}

	span := float64(max - min)
	for i, v := range values {
		out[i] = float64(v-min) / span
	}
	return out
}
