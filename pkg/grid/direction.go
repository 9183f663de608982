package grid

// Direction is a square-grid neighbour slot.
// North is +y, so moving north adds the grid width to a vertex.
type Direction int

// Directions in neighbour slot order.
const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// NumDirections is the number of square-grid neighbour slots.
const NumDirections = 8

var directionNames = [NumDirections]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

var directionOffsets = [NumDirections][2]int{
	{0, 1}, {1, 1}, {1, 0}, {1, -1},
	{0, -1}, {-1, -1}, {-1, 0}, {-1, 1},
}

// String returns the compass abbreviation.
func (d Direction) String() string {
	if !d.Valid() {
		return "?"
	}
	return directionNames[d]
}

// Valid reports whether d is one of the eight directions.
func (d Direction) Valid() bool { return d >= 0 && d < NumDirections }

// IsDiagonal returns true for NE, SE, SW and NW.
func (d Direction) IsDiagonal() bool { return d.Valid() && d%2 == 1 }

// Offset returns the (dx, dy) step for the direction.
func (d Direction) Offset() (dx, dy int) {
	if !d.Valid() {
		return 0, 0
	}
	o := directionOffsets[d]
	return o[0], o[1]
}

// Components returns the two cardinal directions that make up a diagonal.
// The vertical component comes first. ok is false for cardinal directions.
func (d Direction) Components() (vertical, horizontal Direction, ok bool) {
	switch d {
	case NorthEast:
		return North, East, true
	case SouthEast:
		return South, East, true
	case SouthWest:
		return South, West, true
	case NorthWest:
		return North, West, true
	default:
		return d, d, false
	}
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	return (d + NumDirections/2) % NumDirections
}
