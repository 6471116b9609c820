// Package topology provides the network the oscillators live on: an
// undirected graph with a cluster partition, degree/neighbor queries, an
// inter-cluster edge test and Newman modularity over the partition.
package topology

import (
	"fmt"
)

// Edge is an unordered vertex pair, stored with A < B.
type Edge struct {
	A int
	B int
}

// Graph is an undirected graph over vertices 0..n-1 with a fixed cluster
// partition. It is immutable once built; the simulation core only reads it.
type Graph struct {
	adj       [][]int
	clusterOf []int
	members   [][]int
	edges     []Edge
	edgeIndex map[Edge]int
}

// NewGraph creates an edgeless graph with the given cluster assignment.
// clusterOf[v] must be in [0, clusters) for every vertex.
func NewGraph(vertices, clusters int, clusterOf []int) (*Graph, error) {
	if vertices <= 0 {
		return nil, fmt.Errorf("%w: vertex count %d", ErrInvalidTopology, vertices)
	}
	if clusters <= 0 {
		return nil, fmt.Errorf("%w: cluster count %d", ErrInvalidTopology, clusters)
	}
	if len(clusterOf) != vertices {
		return nil, fmt.Errorf("%w: cluster assignment covers %d of %d vertices",
			ErrInvalidTopology, len(clusterOf), vertices)
	}

	g := &Graph{
		adj:       make([][]int, vertices),
		clusterOf: make([]int, vertices),
		members:   make([][]int, clusters),
		edges:     make([]Edge, 0),
		edgeIndex: make(map[Edge]int),
	}

	for v, c := range clusterOf {
		if c < 0 || c >= clusters {
			return nil, fmt.Errorf("%w: vertex %d assigned to cluster %d of %d",
				ErrInvalidTopology, v, c, clusters)
		}
		g.clusterOf[v] = c
		g.members[c] = append(g.members[c], v)
	}

	return g, nil
}

// AddEdge inserts an undirected edge. Self-loops and duplicates are rejected.
func (g *Graph) AddEdge(a, b int) error {
	if a < 0 || a >= len(g.adj) || b < 0 || b >= len(g.adj) {
		return fmt.Errorf("%w: edge (%d,%d)", ErrVertexNotFound, a, b)
	}
	if a == b {
		return fmt.Errorf("%w: self-loop on vertex %d", ErrInvalidTopology, a)
	}

	e := normalize(a, b)
	if _, exists := g.edgeIndex[e]; exists {
		return fmt.Errorf("%w: edge (%d,%d)", ErrDuplicateEdge, e.A, e.B)
	}

	g.edgeIndex[e] = len(g.edges)
	g.edges = append(g.edges, e)
	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
	return nil
}

func normalize(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int {
	return len(g.adj)
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Edges returns the edge list in insertion order. Callers must not mutate it.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// EdgeIndex returns the position of edge (a,b) in the edge list.
func (g *Graph) EdgeIndex(a, b int) (int, bool) {
	idx, ok := g.edgeIndex[normalize(a, b)]
	return idx, ok
}

// Degree returns the number of neighbors of v.
func (g *Graph) Degree(v int) int {
	return len(g.adj[v])
}

// Neighbors returns the neighbor list of v. Callers must not mutate it.
func (g *Graph) Neighbors(v int) []int {
	return g.adj[v]
}

// AverageDegree returns 2m/n, the mean vertex degree.
func (g *Graph) AverageDegree() float64 {
	if len(g.adj) == 0 {
		return 0
	}
	return 2 * float64(len(g.edges)) / float64(len(g.adj))
}

// ClusterID returns the cluster a vertex belongs to.
func (g *Graph) ClusterID(v int) int {
	return g.clusterOf[v]
}

// ClusterCount returns the number of clusters in the partition.
func (g *Graph) ClusterCount() int {
	return len(g.members)
}

// ClusterMembers returns the vertices of a cluster. Callers must not mutate it.
func (g *Graph) ClusterMembers(c int) []int {
	return g.members[c]
}

// IsInterCluster reports whether the edge crosses a cluster boundary.
func (g *Graph) IsInterCluster(e Edge) bool {
	return g.clusterOf[e.A] != g.clusterOf[e.B]
}

// IsBoundary reports whether v has at least one inter-cluster edge.
func (g *Graph) IsBoundary(v int) bool {
	own := g.clusterOf[v]
	for _, w := range g.adj[v] {
		if g.clusterOf[w] != own {
			return true
		}
	}
	return false
}

// Modularity computes Newman's Q for the cluster partition:
// Q = sum over clusters of (intraEdges/m - (degreeSum/2m)^2).
func (g *Graph) Modularity() float64 {
	m := float64(len(g.edges))
	if m == 0 {
		return 0
	}

	intra := make([]float64, len(g.members))
	degSum := make([]float64, len(g.members))

	for _, e := range g.edges {
		if !g.IsInterCluster(e) {
			intra[g.clusterOf[e.A]]++
		}
	}
	for v := range g.adj {
		degSum[g.clusterOf[v]] += float64(len(g.adj[v]))
	}

	q := 0.0
	for c := range g.members {
		frac := degSum[c] / (2 * m)
		q += intra[c]/m - frac*frac
	}
	return q
}
