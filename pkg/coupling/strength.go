// Package coupling implements the pairwise coupling engine: the shared
// phase-difference adjustment law, the directed coupling-strength map, the
// degree weighting modes, neighbor selection policies and the cluster
// pacemaker decoupling rule.
package coupling

import (
	"github.com/tmercer/syncwave/pkg/topology"
)

// Pair is an ordered (source, target) vertex pair. Strengths are asymmetric:
// the entry for (v,w) is independent of the entry for (w,v).
type Pair struct {
	From int
	To   int
}

// StrengthMap holds directed coupling strengths. Entries are created once at
// setup and only ever mutated by the pacemaker rule, which zeroes them. The
// insertion order is kept so density sums are reproducible.
type StrengthMap struct {
	strengths map[Pair]float64
	pairs     []Pair
}

// NewStrengthMap creates an empty strength map.
func NewStrengthMap() *StrengthMap {
	return &StrengthMap{strengths: make(map[Pair]float64)}
}

// UniformFromGraph creates a strength map with one entry per edge direction,
// all set to strength s.
func UniformFromGraph(g *topology.Graph, s float64) *StrengthMap {
	sm := NewStrengthMap()
	for _, e := range g.Edges() {
		sm.Set(e.A, e.B, s)
		sm.Set(e.B, e.A, s)
	}
	return sm
}

// Set stores the strength for the directed pair (from, to).
func (sm *StrengthMap) Set(from, to int, s float64) {
	p := Pair{From: from, To: to}
	if _, exists := sm.strengths[p]; !exists {
		sm.pairs = append(sm.pairs, p)
	}
	sm.strengths[p] = s
}

// Get returns the strength for (from, to), zero if no entry exists.
func (sm *StrengthMap) Get(from, to int) float64 {
	return sm.strengths[Pair{From: from, To: to}]
}

// Zero sets an existing entry to zero. Missing entries are left absent.
func (sm *StrengthMap) Zero(from, to int) {
	p := Pair{From: from, To: to}
	if _, exists := sm.strengths[p]; exists {
		sm.strengths[p] = 0
	}
}

// Len returns the number of directed entries.
func (sm *StrengthMap) Len() int {
	return len(sm.pairs)
}

// Density returns the sum of all directed strengths. Iteration follows
// insertion order so the sum is bit-stable across runs.
func (sm *StrengthMap) Density() float64 {
	total := 0.0
	for _, p := range sm.pairs {
		total += sm.strengths[p]
	}
	return total
}
