// Package oscillator holds the per-vertex oscillator state and the circular
// order parameter. Each vertex carries a phase, an intrinsic period, an
// integer local clock and cached sine/cosine of the phase, recomputed on
// every advance.
package oscillator

import (
	"fmt"
	"math"
)

// State is the mutable oscillator state of one vertex.
type State struct {
	Phase  float64 // in [0, 2*pi)
	Period float64 // strictly positive
	Clock  int64   // local clock ticks, >= 0
	Sin    float64 // cached sin(Phase)
	Cos    float64 // cached cos(Phase)
}

// Store owns one State per vertex, indexed by vertex id. The slice layout
// gives the parallel advance phase a natural ownership partition: each worker
// updates a disjoint index range.
type Store struct {
	states []State
}

// NewStore creates a store from explicit periods and clock skews. Every
// period must be positive; phases are derived from the clocks.
func NewStore(periods []float64, clocks []int64) (*Store, error) {
	if len(periods) != len(clocks) {
		return nil, fmt.Errorf("%w: %d periods for %d clocks",
			ErrStateMismatch, len(periods), len(clocks))
	}

	st := &Store{states: make([]State, len(periods))}
	for v := range periods {
		if periods[v] <= 0 {
			return nil, fmt.Errorf("%w: vertex %d period %g", ErrInvalidPeriod, v, periods[v])
		}
		if clocks[v] < 0 {
			return nil, fmt.Errorf("%w: vertex %d clock %d", ErrInvalidClock, v, clocks[v])
		}
		st.states[v] = State{Period: periods[v], Clock: clocks[v]}
		st.syncPhase(v)
	}
	return st, nil
}

// Len returns the number of vertices in the store.
func (st *Store) Len() int {
	return len(st.states)
}

// Phase returns the phase of vertex v.
func (st *Store) Phase(v int) float64 {
	return st.states[v].Phase
}

// Period returns the period of vertex v.
func (st *Store) Period(v int) float64 {
	return st.states[v].Period
}

// Clock returns the local clock of vertex v.
func (st *Store) Clock(v int) int64 {
	return st.states[v].Clock
}

// Sin returns the cached sine of vertex v's phase.
func (st *Store) Sin(v int) float64 {
	return st.states[v].Sin
}

// Cos returns the cached cosine of vertex v's phase.
func (st *Store) Cos(v int) float64 {
	return st.states[v].Cos
}

// AdjustPeriod applies delta to vertex v's period only if the result stays
// positive, and reports whether the adjustment was applied. This is the
// numeric guard of the coupling law: adjustments that would drive the period
// non-positive are discarded, not clamped.
func (st *Store) AdjustPeriod(v int, delta float64) bool {
	next := st.states[v].Period + delta
	if next <= 0 {
		return false
	}
	st.states[v].Period = next
	return true
}

// Advance increments vertex v's local clock by one tick and recomputes the
// phase and its cached sine/cosine. Safe to call concurrently for distinct
// vertices; it touches only v's entry.
func (st *Store) Advance(v int) {
	st.states[v].Clock++
	st.syncPhase(v)
}

// syncPhase derives phase = 2*pi * ((clock mod period) / period) and refreshes
// the trig cache.
func (st *Store) syncPhase(v int) {
	s := &st.states[v]
	s.Phase = 2 * math.Pi * math.Mod(float64(s.Clock), s.Period) / s.Period
	s.Sin = math.Sin(s.Phase)
	s.Cos = math.Cos(s.Phase)
}
