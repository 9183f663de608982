package rules

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/Faultbox/gridmove/pkg/graph"
	"github.com/Faultbox/gridmove/pkg/grid"
)

// ErrScript is returned when a cost script fails to compile or run, or
// produces an unusable result.
var ErrScript = errors.New("cost script error")

// Script is a ruleset whose step costs come from a tengo script.
//
// The script sees these globals:
//
//	diagonal        bool   step is a diagonal
//	dangerous       bool   destination is dangerous terrain
//	from_dangerous  bool   origin is dangerous terrain
//	dx, dy          int    slot step (axial on hex grids)
//
// and assigns either `cost = <number>` or `blocked = true`. cost defaults to
// 1. An optional `min_cost` assignment lowers the heuristic scale; values
// above the cheapest step the script produces are ignored.
//
// Costs depend only on those inputs, so the script runs once per distinct
// combination when the ruleset is created.
type Script struct {
	name    string
	topo    grid.Topology
	corners CornerRule
	minCost float64
	// costs[slot][dangerous][fromDangerous]
	costs [][2][2]float64
}

// LoadScript reads and compiles a cost script from disk.
func LoadScript(path string, topo grid.Topology, corners CornerRule) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cost script: %w", err)
	}
	return NewScript(path, src, topo, corners)
}

// NewScript compiles src and evaluates it for every slot of topo.
func NewScript(name string, src []byte, topo grid.Topology, corners CornerRule) (*Script, error) {
	script := tengo.NewScript(src)
	globals := []struct {
		name  string
		value any
	}{
		{"cost", 1},
		{"blocked", false},
		{"min_cost", nil},
		{"diagonal", false},
		{"dangerous", false},
		{"from_dangerous", false},
		{"dx", 0},
		{"dy", 0},
	}
	for _, g := range globals {
		if err := script.Add(g.name, g.value); err != nil {
			return nil, fmt.Errorf("%w: %s: declaring %s: %v", ErrScript, name, g.name, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrScript, name, err)
	}

	s := &Script{
		name:    name,
		topo:    topo,
		corners: corners,
		minCost: math.Inf(1),
		costs:   make([][2][2]float64, topo.MaxNeighbors()),
	}

	var override float64
	hasOverride := false
	for slot := range s.costs {
		_, _, diagonal := topo.Diagonal(slot)
		dx, dy := topo.Offset(slot)
		for d := 0; d < 2; d++ {
			for fd := 0; fd < 2; fd++ {
				c := compiled.Clone()
				if err := setInputs(c, diagonal, d == 1, fd == 1, dx, dy); err != nil {
					return nil, fmt.Errorf("%w: %s: %v", ErrScript, name, err)
				}
				if err := c.Run(); err != nil {
					return nil, fmt.Errorf("%w: %s: %v", ErrScript, name, err)
				}

				cost, err := scriptResult(c)
				if err != nil {
					return nil, fmt.Errorf("%w: %s slot %d: %v", ErrScript, name, slot, err)
				}
				s.costs[slot][d][fd] = cost
				if cost != graph.NoEdge && cost < s.minCost {
					s.minCost = cost
				}

				if v := c.Get("min_cost"); !v.IsUndefined() {
					override, hasOverride = v.Float(), true
				}
			}
		}
	}

	// min_cost may only lower the scale; a larger one would overestimate.
	if hasOverride {
		s.minCost = min(override, s.minCost)
	}
	if math.IsInf(s.minCost, 1) {
		// Every step is blocked; any scale is admissible.
		s.minCost = 0
	}
	return s, nil
}

func setInputs(c *tengo.Compiled, diagonal, dangerous, fromDangerous bool, dx, dy int) error {
	inputs := []struct {
		name  string
		value any
	}{
		{"diagonal", diagonal},
		{"dangerous", dangerous},
		{"from_dangerous", fromDangerous},
		{"dx", dx},
		{"dy", dy},
	}
	for _, in := range inputs {
		if err := c.Set(in.name, in.value); err != nil {
			return err
		}
	}
	return nil
}

func scriptResult(c *tengo.Compiled) (float64, error) {
	if c.Get("blocked").Bool() {
		return graph.NoEdge, nil
	}

	v := c.Get("cost")
	switch v.ValueType() {
	case "int", "float":
	default:
		return 0, fmt.Errorf("cost must be a number, got %s", v.ValueType())
	}
	cost := v.Float()
	if cost < 0 || math.IsNaN(cost) || math.IsInf(cost, 0) {
		return 0, fmt.Errorf("%w: %v", graph.ErrInvalidWeight, cost)
	}
	return cost, nil
}

// Name returns the script name.
func (s *Script) Name() string { return "script:" + s.name }

// MinCost returns the cheapest step the script produced, or its min_cost
// when that is lower.
func (s *Script) MinCost() float64 { return s.minCost }

// EdgeCost implements graph.CostPolicy.
func (s *Script) EdgeCost(from, slot int) float64 {
	if slot < 0 || slot >= len(s.costs) {
		return graph.NoEdge
	}
	to, ok := stepTarget(s.topo, from, slot)
	if !ok {
		return graph.NoEdge
	}
	if a, b, diagonal := s.topo.Diagonal(slot); diagonal && s.corners == CornerStrict {
		if !cornersOpen(s.topo, from, a, b) {
			return graph.NoEdge
		}
	}
	return s.costs[slot][boolIndex(s.topo.IsDangerousTerrain(to))][boolIndex(s.topo.IsDangerousTerrain(from))]
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}
