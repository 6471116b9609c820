package topology

import (
	"errors"
	"math"
	"testing"

	"github.com/tmercer/syncwave/pkg/randx"
)

// buildTwoClusterGraph creates 6 vertices in 2 clusters with one bridge edge:
// cluster 0: 0-1-2 (triangle), cluster 1: 3-4-5 (triangle), bridge 2-3.
func buildTwoClusterGraph(t *testing.T) *Graph {
	t.Helper()

	g, err := NewGraph(6, 2, []int{0, 0, 0, 1, 1, 1})
	if err != nil {
		t.Fatalf("Failed to create graph: %v", err)
	}

	pairs := [][2]int{{0, 1}, {1, 2}, {0, 2}, {3, 4}, {4, 5}, {3, 5}, {2, 3}}
	for _, p := range pairs {
		if err := g.AddEdge(p[0], p[1]); err != nil {
			t.Fatalf("Failed to add edge %v: %v", p, err)
		}
	}
	return g
}

func TestGraph_BasicQueries(t *testing.T) {
	g := buildTwoClusterGraph(t)

	if g.VertexCount() != 6 {
		t.Errorf("Expected 6 vertices, got %d", g.VertexCount())
	}
	if g.EdgeCount() != 7 {
		t.Errorf("Expected 7 edges, got %d", g.EdgeCount())
	}
	if g.Degree(2) != 3 {
		t.Errorf("Expected degree 3 for vertex 2, got %d", g.Degree(2))
	}
	if g.ClusterID(4) != 1 {
		t.Errorf("Expected cluster 1 for vertex 4, got %d", g.ClusterID(4))
	}
	if got := g.AverageDegree(); math.Abs(got-14.0/6.0) > 1e-12 {
		t.Errorf("Expected average degree 14/6, got %f", got)
	}
}

func TestGraph_BoundaryAndInterCluster(t *testing.T) {
	g := buildTwoClusterGraph(t)

	if !g.IsBoundary(2) || !g.IsBoundary(3) {
		t.Error("Vertices 2 and 3 should be boundary vertices")
	}
	if g.IsBoundary(0) || g.IsBoundary(5) {
		t.Error("Vertices 0 and 5 should not be boundary vertices")
	}

	if !g.IsInterCluster(Edge{A: 2, B: 3}) {
		t.Error("Edge 2-3 should be inter-cluster")
	}
	if g.IsInterCluster(Edge{A: 0, B: 1}) {
		t.Error("Edge 0-1 should be intra-cluster")
	}
}

func TestGraph_RejectsBadEdges(t *testing.T) {
	g := buildTwoClusterGraph(t)

	if err := g.AddEdge(0, 0); !errors.Is(err, ErrInvalidTopology) {
		t.Errorf("Expected self-loop rejection, got %v", err)
	}
	if err := g.AddEdge(1, 0); !errors.Is(err, ErrDuplicateEdge) {
		t.Errorf("Expected duplicate rejection, got %v", err)
	}
	if err := g.AddEdge(0, 99); !errors.Is(err, ErrVertexNotFound) {
		t.Errorf("Expected out-of-range rejection, got %v", err)
	}
}

func TestGraph_RejectsBadClusterAssignment(t *testing.T) {
	if _, err := NewGraph(3, 2, []int{0, 1}); !errors.Is(err, ErrInvalidTopology) {
		t.Errorf("Expected short assignment rejection, got %v", err)
	}
	if _, err := NewGraph(3, 2, []int{0, 1, 2}); !errors.Is(err, ErrInvalidTopology) {
		t.Errorf("Expected out-of-range cluster rejection, got %v", err)
	}
}

func TestGraph_Modularity(t *testing.T) {
	g := buildTwoClusterGraph(t)

	// m=7, intra per cluster = 3, degree sums 7 and 7.
	// Q = 2*(3/7 - (7/14)^2) = 6/7 - 1/2
	want := 6.0/7.0 - 0.5
	if got := g.Modularity(); math.Abs(got-want) > 1e-12 {
		t.Errorf("Expected modularity %f, got %f", want, got)
	}
}

func TestGraph_ModularityEmptyGraph(t *testing.T) {
	g, err := NewGraph(4, 2, []int{0, 0, 1, 1})
	if err != nil {
		t.Fatalf("Failed to create graph: %v", err)
	}
	if got := g.Modularity(); got != 0 {
		t.Errorf("Expected zero modularity with no edges, got %f", got)
	}
}

func TestGenerateClustered_Shape(t *testing.T) {
	src := randx.New(11)
	g, err := GenerateClustered(GeneratorConfig{
		Vertices:         60,
		Edges:            180,
		Clusters:         4,
		TargetModularity: 0.6,
	}, src)
	if err != nil {
		t.Fatalf("GenerateClustered failed: %v", err)
	}

	if g.VertexCount() != 60 || g.EdgeCount() != 180 {
		t.Fatalf("Unexpected shape: %d vertices, %d edges", g.VertexCount(), g.EdgeCount())
	}

	total := 0
	for c := 0; c < g.ClusterCount(); c++ {
		total += len(g.ClusterMembers(c))
	}
	if total != 60 {
		t.Errorf("Cluster members cover %d of 60 vertices", total)
	}

	// Strong intra-cluster bias should produce clearly positive modularity.
	if q := g.Modularity(); q < 0.3 {
		t.Errorf("Expected modularity >= 0.3 for target 0.6, got %f", q)
	}
}

func TestGenerateClustered_TooDense(t *testing.T) {
	src := randx.New(1)
	_, err := GenerateClustered(GeneratorConfig{
		Vertices: 4,
		Edges:    10,
		Clusters: 2,
	}, src)
	if !errors.Is(err, ErrTooDense) {
		t.Errorf("Expected ErrTooDense, got %v", err)
	}
}

func TestGenerateComplete(t *testing.T) {
	g, err := GenerateComplete(5)
	if err != nil {
		t.Fatalf("GenerateComplete failed: %v", err)
	}
	if g.EdgeCount() != 10 {
		t.Errorf("Expected 10 edges in K5, got %d", g.EdgeCount())
	}
	for v := 0; v < 5; v++ {
		if g.Degree(v) != 4 {
			t.Errorf("Expected degree 4 for vertex %d, got %d", v, g.Degree(v))
		}
	}
}
