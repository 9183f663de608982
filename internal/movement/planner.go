// Package movement plans creature moves on a grid under a ruleset.
//
// A Planner owns one graph per footprint size, built lazily and rebuilt
// whenever the grid's terrain epoch changes. All inputs and outputs use
// native cell indices; footprint vertices never leave the package.
package movement

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/gridmove/internal/logger"
	"github.com/Faultbox/gridmove/pkg/footprint"
	"github.com/Faultbox/gridmove/pkg/graph"
	"github.com/Faultbox/gridmove/pkg/grid"
	"github.com/Faultbox/gridmove/pkg/rules"
)

// ErrInvalidSpeed is returned for negative movement budgets.
var ErrInvalidSpeed = errors.New("invalid movement speed")

// Route is a planned path between two anchor cells.
type Route struct {
	graph.PathResult
	// Cost is the weight floored to whole movement units.
	Cost float64
}

// Field holds the distances from one anchor cell to every native cell.
type Field struct {
	Source    int
	Size      int
	Distances []float64 // per native cell, the cheapest footprint covering it

	result  graph.DistanceResult
	mapping footprint.Mapping
}

// PathTo returns the cheapest route to the given anchor cell.
func (f Field) PathTo(anchor int) Route {
	v, ok := f.mapping.VertexFromNative(anchor)
	if !ok {
		return Route{PathResult: graph.NoPath(), Cost: graph.Unreachable}
	}
	return newRoute(f.result.PathTo(v), f.mapping)
}

// Planner answers path and reach queries on one grid. It is not safe for
// concurrent use.
type Planner struct {
	topo   grid.Topology
	rules  rules.Ruleset
	log    *zap.Logger
	graphs map[int]*sizedGraph
	epoch  uint64
}

type sizedGraph struct {
	g *graph.Graph
	m footprint.Mapping
}

// New creates a planner. A nil log uses the global "movement" logger.
func New(topo grid.Topology, rs rules.Ruleset, log *zap.Logger) *Planner {
	if log == nil {
		log = logger.Named("movement")
	}
	return &Planner{
		topo:   topo,
		rules:  rs,
		log:    log,
		graphs: make(map[int]*sizedGraph),
		epoch:  topo.Epoch(),
	}
}

// Topology returns the planner's grid.
func (p *Planner) Topology() grid.Topology { return p.topo }

// Ruleset returns the planner's cost policy.
func (p *Planner) Ruleset() rules.Ruleset { return p.rules }

// Path finds the cheapest route for a size×size creature from the anchor
// cell src to the anchor cell dst.
func (p *Planner) Path(src, dst, size int) (Route, error) {
	sg, err := p.graph(size)
	if err != nil {
		return Route{}, err
	}
	from, err := p.vertex(sg, src)
	if err != nil {
		return Route{}, err
	}
	to, err := p.vertex(sg, dst)
	if err != nil {
		return Route{}, err
	}

	res, err := graph.FindPath(sg.g, from, to, p.heuristic(sg.m))
	if err != nil {
		return Route{}, err
	}
	route := newRoute(res, sg.m)

	if route.Found {
		p.log.Debug("path found",
			zap.Int("src", src),
			zap.Int("dst", dst),
			zap.Int("size", size),
			zap.Int("steps", len(route.Path)-1),
			zap.Float64("weight", route.Weight),
		)
	} else {
		p.log.Debug("no path", zap.Int("src", src), zap.Int("dst", dst), zap.Int("size", size))
	}
	return route, nil
}

// Move is Path limited to a movement budget: a route whose floored cost
// exceeds speed is reported as not found.
func (p *Planner) Move(src, dst, size int, speed float64) (Route, error) {
	if speed < 0 {
		return Route{}, fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	route, err := p.Path(src, dst, size)
	if err != nil || !route.Found {
		return route, err
	}
	if route.Cost > speed {
		p.log.Debug("move out of range",
			zap.Int("src", src),
			zap.Int("dst", dst),
			zap.Float64("cost", route.Cost),
			zap.Float64("speed", speed),
		)
		return Route{PathResult: graph.NoPath(), Cost: graph.Unreachable}, nil
	}
	return route, nil
}

// Distances computes the cost of reaching every native cell from the anchor
// cell src. For creatures larger than one cell a native cell takes the
// cheapest footprint that covers it.
func (p *Planner) Distances(src, size int) (Field, error) {
	sg, err := p.graph(size)
	if err != nil {
		return Field{}, err
	}
	from, err := p.vertex(sg, src)
	if err != nil {
		return Field{}, err
	}

	res, err := graph.FindDistances(sg.g, from)
	if err != nil {
		return Field{}, err
	}
	native, err := sg.m.ExpandDistances(res.Distances)
	if err != nil {
		return Field{}, err
	}
	return Field{
		Source:    src,
		Size:      size,
		Distances: native,
		result:    res,
		mapping:   sg.m,
	}, nil
}

// Reachable lists, in ascending order, the native cells a size×size
// creature starting at src can occupy after spending at most speed.
func (p *Planner) Reachable(src, size int, speed float64) ([]int, error) {
	if speed < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	field, err := p.Distances(src, size)
	if err != nil {
		return nil, err
	}

	var cells []int
	for v, d := range field.Distances {
		if rules.FloorCost(d) <= speed {
			cells = append(cells, v)
		}
	}
	sort.Ints(cells)

	p.log.Debug("reach computed",
		zap.Int("src", src),
		zap.Int("size", size),
		zap.Float64("speed", speed),
		zap.Int("cells", len(cells)),
	)
	return cells, nil
}

// Invalidate drops every cached graph.
func (p *Planner) Invalidate() {
	clear(p.graphs)
}

// graph returns the cached graph for size, rebuilding all graphs first if
// the terrain changed since they were built.
func (p *Planner) graph(size int) (*sizedGraph, error) {
	if epoch := p.topo.Epoch(); epoch != p.epoch {
		p.log.Debug("terrain changed, dropping graphs",
			zap.Uint64("old_epoch", p.epoch),
			zap.Uint64("epoch", epoch),
			zap.Int("cached", len(p.graphs)),
		)
		p.Invalidate()
		p.epoch = epoch
	}
	if sg, ok := p.graphs[size]; ok {
		return sg, nil
	}

	sg, err := p.build(size)
	if err != nil {
		return nil, err
	}
	p.graphs[size] = sg

	p.log.Debug("graph built",
		zap.String("ruleset", p.rules.Name()),
		zap.Int("size", size),
		zap.Int("vertices", sg.g.NumVertices()),
		zap.Int("edges", sg.g.NumEdges()),
		zap.Uint64("epoch", sg.g.Epoch()),
	)
	return sg, nil
}

func (p *Planner) build(size int) (*sizedGraph, error) {
	if size == 1 {
		m, err := footprint.NewMapping(p.topo.Width(), p.topo.Height(), 1)
		if err != nil {
			return nil, err
		}
		g, err := graph.Build(p.topo, p.rules)
		if err != nil {
			return nil, fmt.Errorf("building %s graph: %w", p.rules.Name(), err)
		}
		return &sizedGraph{g: g, m: m}, nil
	}

	sq, _ := p.topo.(*grid.Square)
	g, m, err := footprint.Build(p.topo, size, footprint.MaxCost{Grid: sq, Cells: p.rules})
	if err != nil {
		return nil, fmt.Errorf("building %s graph for size %d: %w", p.rules.Name(), size, err)
	}
	return &sizedGraph{g: g, m: m}, nil
}

func (p *Planner) vertex(sg *sizedGraph, cell int) (int, error) {
	v, ok := sg.m.VertexFromNative(cell)
	if !ok {
		return 0, fmt.Errorf("%w: cell %d cannot anchor a size %d creature", graph.ErrInvalidVertex, cell, sg.m.Size())
	}
	return v, nil
}

// heuristic scales grid distance between anchors by the cheapest step.
func (p *Planner) heuristic(m footprint.Mapping) graph.Heuristic {
	minCost := p.rules.MinCost()
	if minCost <= 0 {
		return nil
	}
	return func(from, to int) float64 {
		return minCost * float64(p.topo.Distance(m.NativeIndex(from), m.NativeIndex(to)))
	}
}

func newRoute(res graph.PathResult, m footprint.Mapping) Route {
	if !res.Found {
		return Route{PathResult: res, Cost: graph.Unreachable}
	}
	res.Path = m.ExpandPath(res.Path)
	return Route{PathResult: res, Cost: rules.FloorCost(res.Weight)}
}
