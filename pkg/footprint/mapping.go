// Package footprint maps creatures larger than one cell onto a coarser
// "footprint graph".
//
// A creature of size W occupies a W×W block of native cells anchored at its
// lowest-coordinate corner. Every anchor position whose block fits on the grid
// is one vertex of the footprint graph, which is therefore
// (nativeWidth-(W-1)) × (nativeHeight-(W-1)) vertices large.
package footprint

import (
	"errors"
	"fmt"
	"math"
)

// Footprint errors.
var (
	ErrInvalidSize         = errors.New("invalid footprint size")
	ErrUnsupportedTopology = errors.New("footprints larger than one cell need a square grid")
	ErrDistanceLenMismatch = errors.New("distance slice length mismatch")
)

// Mapping converts between native grid cells and footprint graph vertices.
type Mapping struct {
	nativeW, nativeH int
	size             int
	width, height    int
}

// NewMapping creates the mapping for a size×size footprint on a
// nativeW×nativeH grid.
func NewMapping(nativeW, nativeH, size int) (Mapping, error) {
	if size < 1 {
		return Mapping{}, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if size > nativeW || size > nativeH {
		return Mapping{}, fmt.Errorf("%w: %d does not fit a %dx%d grid", ErrInvalidSize, size, nativeW, nativeH)
	}
	return Mapping{
		nativeW: nativeW,
		nativeH: nativeH,
		size:    size,
		width:   nativeW - (size - 1),
		height:  nativeH - (size - 1),
	}, nil
}

// Size returns the footprint edge length.
func (m Mapping) Size() int { return m.size }

// Width returns the footprint graph width.
func (m Mapping) Width() int { return m.width }

// Height returns the footprint graph height.
func (m Mapping) Height() int { return m.height }

// NumVertices returns the number of anchor positions.
func (m Mapping) NumVertices() int { return m.width * m.height }

// NativeWidth returns the width of the native grid.
func (m Mapping) NativeWidth() int { return m.nativeW }

// NativeHeight returns the height of the native grid.
func (m Mapping) NativeHeight() int { return m.nativeH }

// Vertex returns the footprint vertex for a native anchor at (x, y).
// ok is false when the block would not fit on the grid.
func (m Mapping) Vertex(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return -1, false
	}
	return ToVertex(x, y, m.width), true
}

// Anchor returns the native coordinates of footprint vertex v.
func (m Mapping) Anchor(v int) (x, y int) {
	return FromVertex(v, m.width)
}

// VertexFromNative returns the footprint vertex anchored at native cell idx.
func (m Mapping) VertexFromNative(idx int) (int, bool) {
	if idx < 0 || idx >= m.nativeW*m.nativeH {
		return -1, false
	}
	return m.Vertex(idx%m.nativeW, idx/m.nativeW)
}

// NativeIndex returns the native cell index of the anchor of v.
// Each footprint row is size-1 cells narrower than a native row.
func (m Mapping) NativeIndex(v int) int {
	return v + (v/m.width)*(m.size-1)
}

// Covers reports whether the block anchored at v contains native (x, y).
func (m Mapping) Covers(v, x, y int) bool {
	ax, ay := m.Anchor(v)
	return x >= ax && x < ax+m.size && y >= ay && y < ay+m.size
}

// ExpandDistances projects footprint distances onto the native grid.
// Every native cell takes the cheapest distance of any placement covering
// it; uncovered cells are +Inf.
func (m Mapping) ExpandDistances(fd []float64) ([]float64, error) {
	native := make([]float64, m.nativeW*m.nativeH)
	for i := range native {
		native[i] = math.Inf(1)
	}
	if err := m.ExpandDistancesInto(native, fd); err != nil {
		return nil, err
	}
	return native, nil
}

// ExpandDistancesInto lowers dst with the footprint distances fd. A cell is
// only ever replaced by a smaller value, so repeated passes are idempotent.
func (m Mapping) ExpandDistancesInto(dst, fd []float64) error {
	if len(fd) != m.NumVertices() {
		return fmt.Errorf("%w: %d footprint distances for %d vertices", ErrDistanceLenMismatch, len(fd), m.NumVertices())
	}
	if len(dst) != m.nativeW*m.nativeH {
		return fmt.Errorf("%w: %d native distances for %d cells", ErrDistanceLenMismatch, len(dst), m.nativeW*m.nativeH)
	}

	for v, d := range fd {
		if math.IsInf(d, 1) {
			continue
		}
		ax, ay := m.Anchor(v)
		for dy := 0; dy < m.size; dy++ {
			row := (ay + dy) * m.nativeW
			for dx := 0; dx < m.size; dx++ {
				i := row + ax + dx
				if d < dst[i] {
					dst[i] = d
				}
			}
		}
	}
	return nil
}

// ExpandPath converts a footprint path into native anchor indices.
func (m Mapping) ExpandPath(fp []int) []int {
	if fp == nil {
		return nil
	}
	native := make([]int, len(fp))
	for i, v := range fp {
		native[i] = m.NativeIndex(v)
	}
	return native
}

// ToVertex returns the footprint vertex of a native anchor at (x, y) in a
// footprint graph graphWidth vertices wide. For a size W footprint on a
// native grid N cells wide, graphWidth is N-(W-1).
func ToVertex(x, y, graphWidth int) int {
	return y*graphWidth + x
}

// FromVertex is the inverse of ToVertex.
func FromVertex(v, graphWidth int) (x, y int) {
	return v % graphWidth, v / graphWidth
}
