package coupling

import (
	"fmt"

	"github.com/tmercer/syncwave/pkg/randx"
	"github.com/tmercer/syncwave/pkg/topology"
)

// Pacemaker implements the cluster decoupling rule of the cluster-Kuramoto
// policy. The first time a cluster's local order crosses the threshold, its
// boundary vertices probabilistically zero their strength toward external
// neighbors. The per-cluster flag flips false to true exactly once and never
// reverts, so each cluster is evaluated at most once per run.
type Pacemaker struct {
	switched  []bool
	threshold float64
	prob      float64
}

// NewPacemaker creates a pacemaker for the given number of clusters.
func NewPacemaker(clusters int, threshold, prob float64) (*Pacemaker, error) {
	if prob <= 0 || prob > 1 {
		return nil, fmt.Errorf("%w: pacemaker probability %g", ErrInvalidProbability, prob)
	}
	return &Pacemaker{
		switched:  make([]bool, clusters),
		threshold: threshold,
		prob:      prob,
	}, nil
}

// Switched reports whether cluster c has entered pacemaker mode.
func (p *Pacemaker) Switched(c int) bool {
	return p.switched[c]
}

// Evaluate checks every cluster's order against the threshold and performs
// the decoupling for clusters crossing it for the first time. It mutates the
// strength map and must therefore run on the sequential path of a step,
// strictly after the order measurement and before the next coupling phase.
// Returns the number of clusters that switched and the number of directed
// strengths zeroed.
func (p *Pacemaker) Evaluate(g *topology.Graph, strengths *StrengthMap,
	clusterOrders []float64, src *randx.Source) (switched, zeroed int) {

	for c, order := range clusterOrders {
		if p.switched[c] || order < p.threshold {
			continue
		}
		p.switched[c] = true
		switched++

		for _, v := range g.ClusterMembers(c) {
			if !g.IsBoundary(v) {
				continue
			}
			for _, w := range g.Neighbors(v) {
				if g.ClusterID(w) == c {
					continue
				}
				// Independent per-edge draw; zeroing s(v->w) removes w's
				// influence on v while leaving v's pull on w intact.
				if src.Float64() < p.prob {
					strengths.Zero(v, w)
					zeroed++
				}
			}
		}
	}
	return switched, zeroed
}
