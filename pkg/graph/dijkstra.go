package graph

import (
	"fmt"
	"math"
)

// DistanceResult is the outcome of a single-source search.
// Distances[v] is Unreachable when v cannot be reached; Predecessors[v] is
// the previous vertex on a shortest path to v, or -1.
type DistanceResult struct {
	Source       int
	Distances    []float64
	Predecessors []int
}

// Reachable reports whether v has a finite distance.
func (r DistanceResult) Reachable(v int) bool {
	return v >= 0 && v < len(r.Distances) && !math.IsInf(r.Distances[v], 1)
}

// PathTo reconstructs a shortest path from the source to v using the
// shortest-path tree recorded by FindDistances.
func (r DistanceResult) PathTo(v int) PathResult {
	if !r.Reachable(v) {
		return NoPath()
	}
	if v == r.Source {
		return PathResult{Found: true, Path: []int{v}, Weight: 0}
	}
	return PathResult{
		Found:  true,
		Path:   walkBack(r.Predecessors, r.Source, v),
		Weight: r.Distances[v],
	}
}

// FindDistances computes the lowest-cost distance from source to every
// vertex of g using Dijkstra's algorithm.
func FindDistances(g *Graph, source int) (DistanceResult, error) {
	if !g.Valid(source) {
		return DistanceResult{}, fmt.Errorf("%w: source %d of %d", ErrInvalidVertex, source, g.NumVertices())
	}

	n := g.NumVertices()
	result := DistanceResult{
		Source:       source,
		Distances:    make([]float64, n),
		Predecessors: make([]int, n),
	}

	// Every vertex starts in the heap at +Inf; only the source is lowered.
	pending := NewMinHeap(n)
	for v := 0; v < n; v++ {
		result.Distances[v] = math.Inf(1)
		result.Predecessors[v] = -1
		if err := pending.Insert(v, math.Inf(1)); err != nil {
			return DistanceResult{}, err
		}
	}
	result.Distances[source] = 0
	pending.DecreaseKey(source, 0)

	for !pending.IsEmpty() {
		current, _ := pending.ExtractMin()
		if math.IsInf(result.Distances[current], 1) {
			// Everything left in the heap is unreachable.
			break
		}

		for _, edge := range g.edges[current] {
			next := edge.To
			if !pending.Contains(next) {
				continue
			}
			candidate := result.Distances[current] + edge.Weight
			if candidate < result.Distances[next] {
				result.Distances[next] = candidate
				result.Predecessors[next] = current
				pending.DecreaseKey(next, candidate)
			}
		}
	}

	return result, nil
}
