package graph

import (
	"fmt"
	"math"
)

// Heuristic estimates the remaining cost from one vertex to another.
// It must never overestimate the true cost (admissible) and, because
// finalized vertices are never reopened, should be consistent.
type Heuristic func(from, to int) float64

// PathResult is the outcome of a single-pair search.
// Path runs from source to destination, both inclusive. When Found is false
// Path is nil and Weight is Unreachable.
type PathResult struct {
	Found  bool
	Path   []int
	Weight float64
}

// NoPath is the result reported when the destination cannot be reached.
func NoPath() PathResult {
	return PathResult{Found: false, Weight: Unreachable}
}

// FindPath finds the lowest-cost path from source to dest using A*.
// A nil heuristic behaves like Dijkstra restricted to dest.
func FindPath(g *Graph, source, dest int, h Heuristic) (PathResult, error) {
	if !g.Valid(source) {
		return NoPath(), fmt.Errorf("%w: source %d of %d", ErrInvalidVertex, source, g.NumVertices())
	}
	if !g.Valid(dest) {
		return NoPath(), fmt.Errorf("%w: destination %d of %d", ErrInvalidVertex, dest, g.NumVertices())
	}
	if source == dest {
		return PathResult{Found: true, Path: []int{source}, Weight: 0}, nil
	}
	if h == nil {
		h = func(int, int) float64 { return 0 }
	}

	n := g.NumVertices()
	distances := make([]float64, n)
	predecessors := make([]int, n)
	for v := range distances {
		distances[v] = math.Inf(1)
		predecessors[v] = -1
	}

	open := NewMinHeap(n)
	distances[source] = 0
	if err := open.Insert(source, h(source, dest)); err != nil {
		return NoPath(), err
	}

	for !open.IsEmpty() {
		current, _ := open.ExtractMin()
		if current == dest {
			break
		}

		for _, edge := range g.edges[current] {
			next := edge.To
			if open.Finalized(next) {
				continue
			}

			tentative := distances[current] + edge.Weight
			if tentative >= distances[next] {
				continue
			}

			distances[next] = tentative
			predecessors[next] = current
			priority := tentative + h(next, dest)
			if open.Contains(next) {
				open.DecreaseKey(next, priority)
			} else if err := open.Insert(next, priority); err != nil {
				return NoPath(), err
			}
		}
	}

	if predecessors[dest] == -1 {
		return NoPath(), nil
	}
	return PathResult{
		Found:  true,
		Path:   walkBack(predecessors, source, dest),
		Weight: distances[dest],
	}, nil
}

// walkBack follows predecessors from dest to source and returns the path in
// forward order.
func walkBack(predecessors []int, source, dest int) []int {
	var path []int
	for v := dest; v != -1; v = predecessors[v] {
		path = append(path, v)
		if v == source {
			break
		}
	}
	// Reverse path (it's built from dest to source)
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
