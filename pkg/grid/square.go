package grid

// Square is a square grid with eight neighbours per cell.
// Neighbour slots are the Direction values N, NE, E, SE, S, SW, W, NW.
type Square struct {
	cells
}

// NewSquare creates an all-open square grid.
func NewSquare(width, height int) (*Square, error) {
	c, err := newCells(width, height)
	if err != nil {
		return nil, err
	}
	return &Square{cells: c}, nil
}

// MaxNeighbors returns 8.
func (s *Square) MaxNeighbors() int { return NumDirections }

// Neighbor returns the vertex one step from v in the direction of slot.
func (s *Square) Neighbor(v, slot int) (int, bool) {
	if !s.valid(v) || !Direction(slot).Valid() {
		return -1, false
	}
	x, y := s.Coordinates(v)
	dx, dy := Direction(slot).Offset()
	return s.Index(x+dx, y+dy)
}

// Offset returns the (dx, dy) step of slot.
func (s *Square) Offset(slot int) (dx, dy int) { return Direction(slot).Offset() }

// Step moves (x, y) by n cells in direction d. The result may lie outside
// the grid.
func (s *Square) Step(x, y int, d Direction, n int) (int, int) {
	dx, dy := d.Offset()
	return x + dx*n, y + dy*n
}

// Diagonal returns the cardinal slots on either side of a diagonal slot.
func (s *Square) Diagonal(slot int) (a, b int, ok bool) {
	v, h, ok := Direction(slot).Components()
	return int(v), int(h), ok
}

// Distance returns the Chebyshev distance between two vertices.
func (s *Square) Distance(a, b int) int {
	ax, ay := s.Coordinates(a)
	bx, by := s.Coordinates(b)
	return max(abs(ax-bx), abs(ay-by))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
