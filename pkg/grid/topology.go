package grid

import (
	"errors"
	"fmt"
)

// ErrInvalidDimensions is returned when a grid would have no cells.
var ErrInvalidDimensions = errors.New("invalid grid dimensions")

// Topology is a grid of cells addressed by vertex id.
// Vertex v sits at (v % Width, v / Width).
type Topology interface {
	Width() int
	Height() int
	NumVertices() int
	// MaxNeighbors is the number of neighbour slots per vertex.
	MaxNeighbors() int
	Neighbor(v, slot int) (int, bool)
	IsWalkable(v int) bool
	IsDangerousTerrain(v int) bool
	Terrain(v int) Terrain
	Index(x, y int) (int, bool)
	Coordinates(v int) (x, y int)
	// Offset returns the coordinate step of a neighbour slot. Hex grids
	// report axial (q, r) steps.
	Offset(slot int) (dx, dy int)
	// Diagonal returns the two slots a diagonal move squeezes between.
	// ok is false when slot is not a diagonal.
	Diagonal(slot int) (a, b int, ok bool)
	// Distance is the minimum number of steps between two vertices on an
	// open grid.
	Distance(a, b int) int
	// Epoch changes every time terrain is edited.
	Epoch() uint64
}

// cells holds the terrain shared by every topology.
type cells struct {
	width   int
	height  int
	terrain []Terrain
	epoch   uint64
}

func newCells(width, height int) (cells, error) {
	if width <= 0 || height <= 0 {
		return cells{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return cells{
		width:   width,
		height:  height,
		terrain: make([]Terrain, width*height),
	}, nil
}

func (c *cells) Width() int       { return c.width }
func (c *cells) Height() int      { return c.height }
func (c *cells) NumVertices() int { return len(c.terrain) }
func (c *cells) Epoch() uint64    { return c.epoch }

func (c *cells) valid(v int) bool { return v >= 0 && v < len(c.terrain) }

// Terrain returns the terrain of v. Out-of-range vertices are Blocked.
func (c *cells) Terrain(v int) Terrain {
	if !c.valid(v) {
		return Blocked
	}
	return c.terrain[v]
}

// IsWalkable checks if vertex v can be entered.
func (c *cells) IsWalkable(v int) bool {
	return c.Terrain(v).IsWalkable()
}

// IsDangerousTerrain checks if vertex v is dangerous terrain.
func (c *cells) IsDangerousTerrain(v int) bool {
	return c.Terrain(v).IsDangerous()
}

// Index converts (x, y) into a vertex id.
func (c *cells) Index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return -1, false
	}
	return y*c.width + x, true
}

// Coordinates converts a vertex id into (x, y).
func (c *cells) Coordinates(v int) (x, y int) {
	return v % c.width, v / c.width
}

// SetTerrain changes the terrain of v and advances the epoch.
func (c *cells) SetTerrain(v int, t Terrain) error {
	if !c.valid(v) {
		return fmt.Errorf("vertex %d out of range [0, %d)", v, len(c.terrain))
	}
	if c.terrain[v] == t {
		return nil
	}
	c.terrain[v] = t
	c.epoch++
	return nil
}

// SetTerrainAt changes the terrain at (x, y).
func (c *cells) SetTerrainAt(x, y int, t Terrain) error {
	v, ok := c.Index(x, y)
	if !ok {
		return fmt.Errorf("cell (%d,%d) outside %dx%d grid", x, y, c.width, c.height)
	}
	return c.SetTerrain(v, t)
}

// Fill sets every cell to t.
func (c *cells) Fill(t Terrain) {
	for i := range c.terrain {
		c.terrain[i] = t
	}
	c.epoch++
}

// Count returns the number of cells with each terrain.
func (c *cells) Count() map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, t := range c.terrain {
		counts[t]++
	}
	return counts
}
