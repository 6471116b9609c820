package topology

import (
	"fmt"

	"github.com/tmercer/syncwave/pkg/randx"
)

// GeneratorConfig describes a clustered random graph. TargetModularity biases
// edge placement toward intra-cluster pairs; the realized modularity is
// reported by Graph.Modularity and will track the target only approximately.
type GeneratorConfig struct {
	Vertices         int
	Edges            int
	Clusters         int
	TargetModularity float64
}

// placementAttempts bounds the rejection-sampling loop per edge.
const placementAttempts = 200

// GenerateClustered builds a random graph whose vertices are split evenly
// across clusters, with edges placed intra-cluster with a probability derived
// from the target modularity.
func GenerateClustered(cfg GeneratorConfig, src *randx.Source) (*Graph, error) {
	if cfg.Clusters > cfg.Vertices {
		return nil, fmt.Errorf("%w: %d clusters for %d vertices",
			ErrInvalidTopology, cfg.Clusters, cfg.Vertices)
	}

	maxEdges := cfg.Vertices * (cfg.Vertices - 1) / 2
	if cfg.Edges > maxEdges {
		return nil, fmt.Errorf("%w: %d edges, maximum %d", ErrTooDense, cfg.Edges, maxEdges)
	}

	// Contiguous block assignment keeps cluster sizes within one of each other.
	clusterOf := make([]int, cfg.Vertices)
	for v := 0; v < cfg.Vertices; v++ {
		clusterOf[v] = v * cfg.Clusters / cfg.Vertices
	}

	g, err := NewGraph(cfg.Vertices, cfg.Clusters, clusterOf)
	if err != nil {
		return nil, err
	}

	// For a random partition into k clusters a fraction 1/k of edges lands
	// intra-cluster; modularity shifts that fraction up by Q.
	pIntra := cfg.TargetModularity + 1/float64(cfg.Clusters)
	if pIntra > 1 {
		pIntra = 1
	}
	if pIntra < 0 {
		pIntra = 0
	}

	for placed := 0; placed < cfg.Edges; placed++ {
		if err := placeEdge(g, src, pIntra); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func placeEdge(g *Graph, src *randx.Source, pIntra float64) error {
	for attempt := 0; attempt < placementAttempts; attempt++ {
		a := src.Intn(g.VertexCount())

		var b int
		if src.Float64() < pIntra {
			members := g.ClusterMembers(g.ClusterID(a))
			if len(members) < 2 {
				continue
			}
			b = members[src.Intn(len(members))]
		} else {
			b = src.Intn(g.VertexCount())
			if g.ClusterCount() > 1 && g.ClusterID(b) == g.ClusterID(a) {
				continue
			}
		}

		if a == b {
			continue
		}
		if _, exists := g.EdgeIndex(a, b); exists {
			continue
		}
		return g.AddEdge(a, b)
	}
	return fmt.Errorf("%w: gave up after %d attempts", ErrTooDense, placementAttempts)
}

// GenerateComplete builds a fully connected graph with a single cluster,
// used by convergence regression tests.
func GenerateComplete(vertices int) (*Graph, error) {
	clusterOf := make([]int, vertices)
	g, err := NewGraph(vertices, 1, clusterOf)
	if err != nil {
		return nil, err
	}
	for a := 0; a < vertices; a++ {
		for b := a + 1; b < vertices; b++ {
			if err := g.AddEdge(a, b); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}
