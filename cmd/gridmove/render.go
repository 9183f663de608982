package main

import (
	"bufio"
	"io"

	"github.com/zyedidia/generic/mapset"

	"github.com/Faultbox/gridmove/pkg/grid"
)

// Overlay glyphs drawn over terrain.
const (
	glyphStart = 'S'
	glyphGoal  = 'G'
	glyphPath  = '*'
	glyphReach = 'o'
)

// overlay marks the cells a command wants highlighted.
type overlay struct {
	start, goal int
	size        int
	path        mapset.Set[int]
	reach       mapset.Set[int]
}

func newOverlay(size int) *overlay {
	return &overlay{
		start: -1,
		goal:  -1,
		size:  size,
		path:  mapset.New[int](),
		reach: mapset.New[int](),
	}
}

// addPath marks every cell covered by the footprints anchored along path.
func (o *overlay) addPath(topo grid.Topology, path []int) {
	for _, anchor := range path {
		o.cover(topo, anchor, o.path.Put)
	}
}

// addReach marks native cells that can be reached.
func (o *overlay) addReach(cells []int) {
	for _, v := range cells {
		o.reach.Put(v)
	}
}

func (o *overlay) cover(topo grid.Topology, anchor int, put func(int)) {
	ax, ay := topo.Coordinates(anchor)
	for dy := 0; dy < o.size; dy++ {
		for dx := 0; dx < o.size; dx++ {
			if v, ok := topo.Index(ax+dx, ay+dy); ok {
				put(v)
			}
		}
	}
}

func (o *overlay) covers(topo grid.Topology, anchor, v int) bool {
	if anchor < 0 {
		return false
	}
	hit := false
	o.cover(topo, anchor, func(c int) { hit = hit || c == v })
	return hit
}

func (o *overlay) glyph(topo grid.Topology, v int) rune {
	switch {
	case o.covers(topo, o.start, v):
		return glyphStart
	case o.covers(topo, o.goal, v):
		return glyphGoal
	case o.path.Has(v):
		return glyphPath
	case o.reach.Has(v):
		return glyphReach
	default:
		return topo.Terrain(v).Rune()
	}
}

// render draws topo with north at the top, one rune per cell. A nil
// overlay draws terrain only.
func render(w io.Writer, topo grid.Topology, o *overlay) error {
	if o == nil {
		o = newOverlay(1)
	}
	bw := bufio.NewWriter(w)
	for y := topo.Height() - 1; y >= 0; y-- {
		for x := 0; x < topo.Width(); x++ {
			v, _ := topo.Index(x, y)
			bw.WriteRune(o.glyph(topo, v))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
