package graph

import (
	"errors"
	"math"
	"testing"
)

// testGrid is a 4-connected grid topology with unit-cost policy.
// Slots are N, E, S, W with N = +y.
type testGrid struct {
	width, height int
	blocked       map[int]bool
	epoch         uint64
}

func newTestGrid(width, height int, blocked ...int) *testGrid {
	g := &testGrid{width: width, height: height, blocked: make(map[int]bool)}
	for _, b := range blocked {
		g.blocked[b] = true
	}
	return g
}

func (g *testGrid) NumVertices() int     { return g.width * g.height }
func (g *testGrid) MaxNeighbors() int    { return 4 }
func (g *testGrid) IsWalkable(v int) bool { return !g.blocked[v] }
func (g *testGrid) Epoch() uint64        { return g.epoch }

func (g *testGrid) Neighbor(v, slot int) (int, bool) {
	x, y := v%g.width, v/g.width
	switch slot {
	case 0:
		y++
	case 1:
		x++
	case 2:
		y--
	case 3:
		x--
	}
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return 0, false
	}
	return y*g.width + x, true
}

var unitCost = CostFunc(func(int, int) float64 { return 1 })

func mustBuild(t *testing.T, topo Topology, p CostPolicy) *Graph {
	t.Helper()
	g, err := Build(topo, p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestBuild_EdgeCount(t *testing.T) {
	g := mustBuild(t, newTestGrid(4, 4), unitCost)

	// 4x4 grid: 2*4*3 undirected edges, both directions.
	if got := g.NumEdges(); got != 48 {
		t.Errorf("NumEdges = %d, want 48", got)
	}
	if got := len(g.Edges(0)); got != 2 {
		t.Errorf("corner vertex has %d edges, want 2", got)
	}
	if got := len(g.Edges(5)); got != 4 {
		t.Errorf("interior vertex has %d edges, want 4", got)
	}
}

func TestBuild_NonWalkable(t *testing.T) {
	g := mustBuild(t, newTestGrid(4, 4, 5), unitCost)

	if len(g.Edges(5)) != 0 {
		t.Errorf("blocked vertex has %d outgoing edges", len(g.Edges(5)))
	}
	for v := 0; v < g.NumVertices(); v++ {
		for _, e := range g.Edges(v) {
			if e.To == 5 {
				t.Errorf("edge %d->5 enters a blocked vertex", v)
			}
		}
	}
}

func TestBuild_NoEdgeOmitted(t *testing.T) {
	// Only northward moves allowed.
	policy := CostFunc(func(_, slot int) float64 {
		if slot == 0 {
			return 1
		}
		return NoEdge
	})
	g := mustBuild(t, newTestGrid(3, 3), policy)

	if got := g.NumEdges(); got != 6 {
		t.Errorf("NumEdges = %d, want 6", got)
	}
}

func TestBuild_ZeroWeightIsAnEdge(t *testing.T) {
	g := mustBuild(t, newTestGrid(2, 1), CostFunc(func(int, int) float64 { return 0 }))
	if g.NumEdges() != 2 {
		t.Errorf("NumEdges = %d, want 2", g.NumEdges())
	}
}

func TestBuild_InvalidWeight(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
	}{
		{"negative", -1},
		{"NaN", math.NaN()},
		{"infinite", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(newTestGrid(2, 2), CostFunc(func(int, int) float64 { return tt.weight }))
			if !errors.Is(err, ErrInvalidWeight) {
				t.Errorf("error = %v, want ErrInvalidWeight", err)
			}
		})
	}
}

func TestBuild_RecordsEpoch(t *testing.T) {
	topo := newTestGrid(2, 2)
	topo.epoch = 7
	g := mustBuild(t, topo, unitCost)
	if g.Epoch() != 7 {
		t.Errorf("Epoch = %d, want 7", g.Epoch())
	}
}

func TestAddEdge_InvalidVertex(t *testing.T) {
	g := New(3)
	if err := g.AddEdge(0, 3, 1); !errors.Is(err, ErrInvalidVertex) {
		t.Errorf("AddEdge(0, 3) error = %v, want ErrInvalidVertex", err)
	}
	if err := g.AddEdge(-1, 0, 1); !errors.Is(err, ErrInvalidVertex) {
		t.Errorf("AddEdge(-1, 0) error = %v, want ErrInvalidVertex", err)
	}
}
