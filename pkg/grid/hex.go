package grid

// Hex is a hexagonal grid stored as offset columns: odd columns are shifted
// half a cell north. Vertex v sits at column x = v % Width, row y = v / Width.
// Neighbours and distances are computed in axial coordinates (q, r) where
// q = x and r = y - x/2.
type Hex struct {
	cells
}

// HexNeighbors is the number of neighbour slots on a hex grid.
const HexNeighbors = 6

// hexDirections are the axial neighbour offsets, clockwise from north.
var hexDirections = [HexNeighbors][2]int{
	{0, 1},  // N
	{1, 0},  // NE
	{1, -1}, // SE
	{0, -1}, // S
	{-1, 0}, // SW
	{-1, 1}, // NW
}

// NewHex creates an all-open hex grid.
func NewHex(width, height int) (*Hex, error) {
	c, err := newCells(width, height)
	if err != nil {
		return nil, err
	}
	return &Hex{cells: c}, nil
}

// MaxNeighbors returns 6.
func (h *Hex) MaxNeighbors() int { return HexNeighbors }

// Neighbor returns the vertex adjacent to v in the given slot.
func (h *Hex) Neighbor(v, slot int) (int, bool) {
	if !h.valid(v) || slot < 0 || slot >= HexNeighbors {
		return -1, false
	}
	q, r := h.Axial(v)
	d := hexDirections[slot]
	return h.FromAxial(q+d[0], r+d[1])
}

// Offset returns the axial (dq, dr) step of slot.
func (h *Hex) Offset(slot int) (dq, dr int) {
	if slot < 0 || slot >= HexNeighbors {
		return 0, 0
	}
	return hexDirections[slot][0], hexDirections[slot][1]
}

// Diagonal always reports false; hex moves never cut corners.
func (h *Hex) Diagonal(int) (int, int, bool) { return 0, 0, false }

// Axial converts a vertex into axial coordinates.
func (h *Hex) Axial(v int) (q, r int) {
	x, y := h.Coordinates(v)
	return x, y - x/2
}

// FromAxial converts axial coordinates into a vertex id.
func (h *Hex) FromAxial(q, r int) (int, bool) {
	if q < 0 {
		return -1, false
	}
	return h.Index(q, r+q/2)
}

// Distance returns the number of hex steps between two vertices.
func (h *Hex) Distance(a, b int) int {
	aq, ar := h.Axial(a)
	bq, br := h.Axial(b)
	dq := aq - bq
	dr := ar - br
	return (abs(dq) + abs(dr) + abs(dq+dr)) / 2
}
