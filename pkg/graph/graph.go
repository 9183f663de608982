// Package graph provides the search engine used for grid movement: an indexed
// min-heap, an adjacency-list graph built from a grid topology and a cost
// policy, single-pair A* and single-source Dijkstra.
//
// Graphs are snapshots. A graph built from a topology is only valid while that
// topology's terrain is unchanged; rebuild it after any terrain edit.
package graph

import (
	"errors"
	"fmt"
	"math"
)

// Graph errors.
var (
	ErrInvalidVertex    = errors.New("invalid vertex")
	ErrCapacityExceeded = errors.New("heap capacity exceeded")
	ErrInvalidWeight    = errors.New("invalid edge weight")
)

// NoEdge is the cost a policy returns when a move is not allowed.
// It is distinct from every real cost, including zero.
const NoEdge = math.MaxFloat64

// Unreachable is the distance reported for vertices that cannot be reached.
var Unreachable = math.Inf(1)

// Topology is the view of a grid the builder needs.
type Topology interface {
	NumVertices() int
	MaxNeighbors() int
	// Neighbor returns the vertex in the given neighbour slot, if any.
	Neighbor(v, slot int) (int, bool)
	IsWalkable(v int) bool
}

// epocher is implemented by topologies that version their terrain.
type epocher interface {
	Epoch() uint64
}

// CostPolicy maps "move from vertex v through neighbour slot" to an edge
// weight, or NoEdge when the move is illegal.
type CostPolicy interface {
	EdgeCost(from, slot int) float64
}

// CostFunc adapts a plain function to CostPolicy.
type CostFunc func(from, slot int) float64

// EdgeCost implements CostPolicy.
func (f CostFunc) EdgeCost(from, slot int) float64 { return f(from, slot) }

// Edge is a directed, weighted connection to a neighbouring vertex.
type Edge struct {
	To     int
	Weight float64
}

// Graph is an adjacency list indexed by vertex id.
type Graph struct {
	edges [][]Edge
	epoch uint64
}

// New creates a graph with n vertices and no edges.
func New(n int) *Graph {
	if n < 0 {
		n = 0
	}
	return &Graph{edges: make([][]Edge, n)}
}

// NumVertices returns the number of vertices.
func (g *Graph) NumVertices() int { return len(g.edges) }

// Valid reports whether v is a vertex of g.
func (g *Graph) Valid(v int) bool { return v >= 0 && v < len(g.edges) }

// Edges returns the outgoing edges of v. The slice must not be modified.
func (g *Graph) Edges(v int) []Edge {
	if !g.Valid(v) {
		return nil
	}
	return g.edges[v]
}

// NumEdges returns the total number of directed edges.
func (g *Graph) NumEdges() int {
	n := 0
	for _, list := range g.edges {
		n += len(list)
	}
	return n
}

// Epoch returns the terrain epoch the graph was built from.
func (g *Graph) Epoch() uint64 { return g.epoch }

// SetEpoch records the terrain epoch the graph was built from.
func (g *Graph) SetEpoch(epoch uint64) { g.epoch = epoch }

// AddEdge appends a directed edge. Weights must be finite and non-negative.
func (g *Graph) AddEdge(from, to int, weight float64) error {
	if !g.Valid(from) {
		return fmt.Errorf("%w: edge source %d", ErrInvalidVertex, from)
	}
	if !g.Valid(to) {
		return fmt.Errorf("%w: edge target %d", ErrInvalidVertex, to)
	}
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return fmt.Errorf("%w: %v on %d->%d", ErrInvalidWeight, weight, from, to)
	}
	g.edges[from] = append(g.edges[from], Edge{To: to, Weight: weight})
	return nil
}

// Build converts a topology and a cost policy into a graph at native grid
// resolution. A non-walkable vertex has no outgoing edges, and no edge ever
// enters a non-walkable vertex, whatever the policy returns for it.
func Build(t Topology, p CostPolicy) (*Graph, error) {
	n := t.NumVertices()
	maxNeighbors := t.MaxNeighbors()
	g := New(n)
	if e, ok := t.(epocher); ok {
		g.epoch = e.Epoch()
	}

	for v := 0; v < n; v++ {
		if !t.IsWalkable(v) {
			continue
		}

		for slot := 0; slot < maxNeighbors; slot++ {
			neighbor, ok := t.Neighbor(v, slot)
			if !ok || !t.IsWalkable(neighbor) {
				continue
			}

			cost := p.EdgeCost(v, slot)
			if cost == NoEdge {
				continue
			}
			if err := g.AddEdge(v, neighbor, cost); err != nil {
				return nil, fmt.Errorf("building slot %d of vertex %d: %w", slot, v, err)
			}
		}
	}

	return g, nil
}
