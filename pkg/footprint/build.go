package footprint

import (
	"fmt"

	"github.com/Faultbox/gridmove/pkg/graph"
	"github.com/Faultbox/gridmove/pkg/grid"
)

// Policy prices moving a whole size×size block one step in a direction.
// anchor is the native index of the block's lowest-coordinate cell.
type Policy interface {
	FootprintEdgeCost(anchor, size int, dir grid.Direction) float64
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc func(anchor, size int, dir grid.Direction) float64

// FootprintEdgeCost implements Policy.
func (f PolicyFunc) FootprintEdgeCost(anchor, size int, dir grid.Direction) float64 {
	return f(anchor, size, dir)
}

// MaxCost turns a per-cell cost policy into a footprint policy. A block step
// costs as much as the most expensive cell on its leading edge: the row or
// column of cells that moves into new ground. Diagonal steps have two
// leading edges. Any NoEdge on a leading edge forbids the step.
type MaxCost struct {
	Grid  *grid.Square
	Cells graph.CostPolicy
}

// FootprintEdgeCost implements Policy.
func (m MaxCost) FootprintEdgeCost(anchor, size int, dir grid.Direction) float64 {
	ax, ay := m.Grid.Coordinates(anchor)
	vertical, horizontal, diagonal := dir.Components()
	if !diagonal {
		switch dir {
		case grid.North, grid.South:
			vertical, horizontal = dir, -1
		default:
			vertical, horizontal = -1, dir
		}
	}

	worst := 0.0
	// Leading row: top for north moves, bottom for south moves.
	if vertical >= 0 {
		y := ay
		if vertical == grid.North {
			y = ay + size - 1
		}
		for x := ax; x < ax+size; x++ {
			c, ok := m.cellCost(x, y, dir)
			if !ok {
				return graph.NoEdge
			}
			worst = max(worst, c)
		}
	}
	// Leading column: right for east moves, left for west moves.
	if horizontal >= 0 {
		x := ax
		if horizontal == grid.East {
			x = ax + size - 1
		}
		for y := ay; y < ay+size; y++ {
			c, ok := m.cellCost(x, y, dir)
			if !ok {
				return graph.NoEdge
			}
			worst = max(worst, c)
		}
	}
	return worst
}

func (m MaxCost) cellCost(x, y int, dir grid.Direction) (float64, bool) {
	v, ok := m.Grid.Index(x, y)
	if !ok {
		return 0, false
	}
	c := m.Cells.EdgeCost(v, int(dir))
	return c, c != graph.NoEdge
}

// Build creates the footprint graph for size×size creatures on t.
// An anchor whose block contains a non-walkable cell has no outgoing edges,
// and no edge leads to such an anchor.
func Build(t grid.Topology, size int, p Policy) (*graph.Graph, Mapping, error) {
	sq, ok := t.(*grid.Square)
	if !ok {
		return nil, Mapping{}, fmt.Errorf("%w: got %T", ErrUnsupportedTopology, t)
	}
	m, err := NewMapping(sq.Width(), sq.Height(), size)
	if err != nil {
		return nil, Mapping{}, err
	}

	open := make([]bool, m.NumVertices())
	for v := range open {
		ax, ay := m.Anchor(v)
		open[v] = blockWalkable(sq, ax, ay, size)
	}

	g := graph.New(m.NumVertices())
	g.SetEpoch(sq.Epoch())
	for v := 0; v < m.NumVertices(); v++ {
		if !open[v] {
			continue
		}
		ax, ay := m.Anchor(v)
		anchor := m.NativeIndex(v)

		for dir := grid.Direction(0); dir < grid.NumDirections; dir++ {
			nx, ny := sq.Step(ax, ay, dir, 1)
			to, ok := m.Vertex(nx, ny)
			if !ok || !open[to] {
				continue
			}

			cost := p.FootprintEdgeCost(anchor, size, dir)
			if cost == graph.NoEdge {
				continue
			}
			if err := g.AddEdge(v, to, cost); err != nil {
				return nil, Mapping{}, fmt.Errorf("footprint %d step %s from anchor %d: %w", size, dir, anchor, err)
			}
		}
	}

	return g, m, nil
}

// blockWalkable checks every cell of the size×size block at (x, y).
func blockWalkable(sq *grid.Square, x, y, size int) bool {
	for dy := 0; dy < size; dy++ {
		for dx := 0; dx < size; dx++ {
			v, ok := sq.Index(x+dx, y+dy)
			if !ok || !sq.IsWalkable(v) {
				return false
			}
		}
	}
	return true
}
