package coupling

import (
	"github.com/tmercer/syncwave/pkg/oscillator"
	"github.com/tmercer/syncwave/pkg/randx"
	"github.com/tmercer/syncwave/pkg/topology"
)

// FrequencyParams describes the hierarchical natural-frequency scheme of the
// cluster-Kuramoto policy: a per-cluster mean drawn from a global normal
// distribution, then each member's period drawn around its cluster mean.
// The result is within-cluster homogeneity and between-cluster heterogeneity.
type FrequencyParams struct {
	GlobalMean    float64
	GlobalStdDev  float64
	ClusterStdDev float64
}

// HierarchicalPeriods samples one period per vertex. Cluster means are drawn
// in cluster-id order and member periods in vertex-id order, keeping the
// draw sequence deterministic for a given seed.
func HierarchicalPeriods(g *topology.Graph, params FrequencyParams, src *randx.Source) ([]float64, error) {
	means := make([]float64, g.ClusterCount())
	for c := range means {
		sampled, err := oscillator.SamplePeriods(1, params.GlobalMean, params.GlobalStdDev, src)
		if err != nil {
			return nil, err
		}
		means[c] = sampled[0]
	}

	periods := make([]float64, g.VertexCount())
	for v := range periods {
		sampled, err := oscillator.SamplePeriods(1, means[g.ClusterID(v)], params.ClusterStdDev, src)
		if err != nil {
			return nil, err
		}
		periods[v] = sampled[0]
	}
	return periods, nil
}
