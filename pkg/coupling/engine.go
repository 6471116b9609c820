package coupling

import (
	"fmt"
	"math"

	"github.com/tmercer/syncwave/pkg/oscillator"
	"github.com/tmercer/syncwave/pkg/randx"
	"github.com/tmercer/syncwave/pkg/topology"
)

// NeighborSelector picks the coupling partner of a vertex for one step. The
// second return is false when the vertex has no usable neighbor (isolated
// vertices make the interaction a no-op).
type NeighborSelector interface {
	Select(g *topology.Graph, v int, src *randx.Source) (int, bool)
}

// UniformSelector picks a uniformly random neighbor, the default gossip
// contact policy.
type UniformSelector struct{}

// Select implements NeighborSelector.
func (UniformSelector) Select(g *topology.Graph, v int, src *randx.Source) (int, bool) {
	neighbors := g.Neighbors(v)
	if len(neighbors) == 0 {
		return 0, false
	}
	return neighbors[src.Intn(len(neighbors))], true
}

// EngineConfig holds the immutable knobs of the coupling engine.
type EngineConfig struct {
	Mode WeightMode
	// SamplingProbability, when in (0,1), rescales strengths by 1/p to
	// compensate for sparse sampling of coupling interactions. Zero or one
	// disables compensation.
	SamplingProbability float64
}

// Engine performs the pairwise coupling phase of a step. All adjustments run
// sequentially in vertex order; two interactions may touch the same vertex,
// so this loop must never be parallelized without per-vertex ownership.
type Engine struct {
	g          *topology.Graph
	st         *oscillator.Store
	strengths  *StrengthMap
	selector   NeighborSelector
	src        *randx.Source
	mode       WeightMode
	compensate float64
	avgDegree  float64
	onEdge     func(v, w int)
}

// NewEngine validates the configuration against the topology and builds an
// engine. Weighted modes reject graphs with zero-degree vertices up front;
// discovering the division mid-run would be a silent correctness bug.
func NewEngine(g *topology.Graph, st *oscillator.Store, strengths *StrengthMap,
	selector NeighborSelector, cfg EngineConfig, src *randx.Source) (*Engine, error) {

	if st.Len() != g.VertexCount() {
		return nil, fmt.Errorf("%w: store holds %d states for %d vertices",
			topology.ErrInvalidTopology, st.Len(), g.VertexCount())
	}

	if cfg.Mode != Unweighted {
		for v := 0; v < g.VertexCount(); v++ {
			if g.Degree(v) == 0 {
				return nil, fmt.Errorf("%w: vertex %d", ErrZeroDegreeVertex, v)
			}
		}
	}

	compensate := 1.0
	if p := cfg.SamplingProbability; p > 0 && p < 1 {
		compensate = 1 / p
	} else if p < 0 || p > 1 {
		return nil, fmt.Errorf("%w: sampling probability %g", ErrInvalidProbability, p)
	}

	if selector == nil {
		selector = UniformSelector{}
	}

	return &Engine{
		g:          g,
		st:         st,
		strengths:  strengths,
		selector:   selector,
		src:        src,
		mode:       cfg.Mode,
		compensate: compensate,
		avgDegree:  g.AverageDegree(),
	}, nil
}

// OnEdge registers a callback invoked once per coupling interaction with the
// two endpoints, used for edge usage statistics.
func (e *Engine) OnEdge(fn func(v, w int)) {
	e.onEdge = fn
}

// Strengths returns the engine's strength map.
func (e *Engine) Strengths() *StrengthMap {
	return e.strengths
}

// CoupleStep runs one coupling phase: every vertex selects one partner and
// performs a single pairwise adjustment. Selection is independent per vertex,
// so a vertex can be adjusted several times within the same step.
func (e *Engine) CoupleStep() {
	for v := 0; v < e.g.VertexCount(); v++ {
		w, ok := e.selector.Select(e.g, v, e.src)
		if !ok {
			continue
		}
		e.couple(v, w)
	}
}

// couple applies the shared phase-difference adjustment law to both
// endpoints. Adjustments that would drive a period non-positive are
// discarded by the store.
func (e *Engine) couple(v, w int) {
	diff := e.st.Phase(w) - e.st.Phase(v)

	adjV := math.Sin(diff) * e.effectiveStrength(v, w)
	adjW := math.Sin(-diff) * e.effectiveStrength(w, v)

	e.st.AdjustPeriod(v, adjV)
	e.st.AdjustPeriod(w, adjW)

	if e.onEdge != nil {
		e.onEdge(v, w)
	}
}

// effectiveStrength scales the raw directed strength s(v->w) by the
// configured weighting mode and the sampling compensation factor. v is the
// vertex being adjusted.
func (e *Engine) effectiveStrength(v, w int) float64 {
	s := e.strengths.Get(v, w)

	switch e.mode {
	case DegreeWeighted:
		s /= float64(e.g.Degree(v))
	case DoubleDegreeWeighted:
		s *= float64(e.g.Degree(w)) / e.avgDegree
		s /= float64(e.g.Degree(v))
	}

	return s * e.compensate
}
