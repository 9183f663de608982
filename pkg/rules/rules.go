// Package rules provides movement cost policies for tabletop rulesets.
//
// A Ruleset prices a single step from a cell into one of its neighbour slots.
// Steps into missing or non-walkable cells, and diagonal steps that cut a
// blocked corner, cost graph.NoEdge.
package rules

import (
	"fmt"
	"math"
	"strings"

	"github.com/Faultbox/gridmove/pkg/graph"
	"github.com/Faultbox/gridmove/pkg/grid"
)

// Ruleset is a named cost policy.
type Ruleset interface {
	graph.CostPolicy
	Name() string
	// MinCost is a lower bound on the cost of any single step. Multiplied by
	// the topology's step distance it gives an admissible heuristic.
	MinCost() float64
}

// CornerRule decides whether a diagonal step may pass a blocked corner.
type CornerRule uint8

// Corner rules.
const (
	// CornerStrict forbids a diagonal when either adjacent cardinal cell is
	// missing or non-walkable.
	CornerStrict CornerRule = iota
	// CornerIgnore allows diagonals past blocked corners.
	CornerIgnore
)

// String returns the config name of the rule.
func (c CornerRule) String() string {
	switch c {
	case CornerStrict:
		return "strict"
	case CornerIgnore:
		return "ignore"
	default:
		return fmt.Sprintf("corner(%d)", c)
	}
}

// ParseCornerRule converts a config value into a CornerRule.
// An empty string selects CornerStrict.
func ParseCornerRule(s string) (CornerRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return CornerStrict, nil
	case "ignore":
		return CornerIgnore, nil
	default:
		return CornerStrict, fmt.Errorf("unknown corner rule %q", s)
	}
}

// Table is a ruleset described by a handful of step costs.
type Table struct {
	name string
	topo grid.Topology

	// Cardinal is the cost of a non-diagonal step.
	Cardinal float64
	// Diagonal is the cost of a diagonal step, or graph.NoEdge to forbid them.
	Diagonal float64
	// DangerousFactor multiplies the step cost when the destination is
	// dangerous terrain.
	DangerousFactor float64
	Corners         CornerRule
}

// NewTable creates a table ruleset over topo.
func NewTable(name string, topo grid.Topology, cardinal, diagonal, dangerous float64, corners CornerRule) *Table {
	return &Table{
		name:            name,
		topo:            topo,
		Cardinal:        cardinal,
		Diagonal:        diagonal,
		DangerousFactor: dangerous,
		Corners:         corners,
	}
}

// DnD5e prices every step at 1 and doubles it on dangerous terrain.
func DnD5e(topo grid.Topology, corners CornerRule) *Table {
	return NewTable("dnd5e", topo, 1, 1, 2, corners)
}

// Pathfinder prices diagonals at 1.5, so two diagonals cost 3 squares.
func Pathfinder(topo grid.Topology, corners CornerRule) *Table {
	return NewTable("pathfinder", topo, 1, 1.5, 2, corners)
}

// Cardinal forbids diagonal steps.
func Cardinal(topo grid.Topology) *Table {
	return NewTable("cardinal", topo, 1, graph.NoEdge, 2, CornerStrict)
}

// Uniform prices every slot at 1. It is the default for hex grids.
func Uniform(topo grid.Topology, corners CornerRule) *Table {
	return NewTable("uniform", topo, 1, 1, 2, corners)
}

// Name returns the ruleset name.
func (t *Table) Name() string { return t.name }

// MinCost returns the cheapest possible single step.
func (t *Table) MinCost() float64 {
	step := t.Cardinal
	if t.Diagonal != graph.NoEdge && t.Diagonal < step {
		step = t.Diagonal
	}
	if t.DangerousFactor < 1 {
		step *= t.DangerousFactor
	}
	return step
}

// EdgeCost implements graph.CostPolicy.
func (t *Table) EdgeCost(from, slot int) float64 {
	to, ok := stepTarget(t.topo, from, slot)
	if !ok {
		return graph.NoEdge
	}

	cost := t.Cardinal
	if a, b, diagonal := t.topo.Diagonal(slot); diagonal {
		if t.Diagonal == graph.NoEdge {
			return graph.NoEdge
		}
		if t.Corners == CornerStrict && !cornersOpen(t.topo, from, a, b) {
			return graph.NoEdge
		}
		cost = t.Diagonal
	}

	if t.topo.IsDangerousTerrain(to) {
		cost *= t.DangerousFactor
	}
	return cost
}

// stepTarget returns the neighbour in slot when both ends are walkable.
func stepTarget(topo grid.Topology, from, slot int) (int, bool) {
	if !topo.IsWalkable(from) {
		return -1, false
	}
	to, ok := topo.Neighbor(from, slot)
	if !ok || !topo.IsWalkable(to) {
		return -1, false
	}
	return to, true
}

// cornersOpen reports whether both cardinal cells beside a diagonal step
// exist and are walkable.
func cornersOpen(topo grid.Topology, from, a, b int) bool {
	ca, ok := topo.Neighbor(from, a)
	if !ok || !topo.IsWalkable(ca) {
		return false
	}
	cb, ok := topo.Neighbor(from, b)
	return ok && topo.IsWalkable(cb)
}

// FloorCost converts a path weight into whole movement units, the way
// movement budgets are charged.
func FloorCost(weight float64) float64 {
	if math.IsInf(weight, 0) || math.IsNaN(weight) {
		return weight
	}
	return math.Floor(weight + 1e-9)
}
