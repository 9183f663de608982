// Package grid provides the cell topologies movement runs on: square grids
// with eight neighbours and hex grids with six.
package grid

import (
	"fmt"
	"strings"
)

// Terrain is the movement class of a single cell.
type Terrain uint8

// Terrain constants.
const (
	Open      Terrain = iota // Normal walkable ground
	Blocked                  // Cannot be entered
	Dangerous                // Walkable, but costs more to enter
)

// String returns a lowercase terrain name.
func (t Terrain) String() string {
	switch t {
	case Open:
		return "open"
	case Blocked:
		return "blocked"
	case Dangerous:
		return "dangerous"
	default:
		return fmt.Sprintf("terrain(%d)", t)
	}
}

// IsWalkable returns true if the terrain can be entered.
func (t Terrain) IsWalkable() bool {
	return t == Open || t == Dangerous
}

// IsDangerous returns true if the terrain is dangerous.
func (t Terrain) IsDangerous() bool {
	return t == Dangerous
}

// Rune returns the character used for the terrain in map rows and renders.
func (t Terrain) Rune() rune {
	switch t {
	case Blocked:
		return '#'
	case Dangerous:
		return '~'
	default:
		return '.'
	}
}

// ParseTerrain converts a terrain name into a Terrain.
func ParseTerrain(s string) (Terrain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open", "":
		return Open, nil
	case "blocked", "wall":
		return Blocked, nil
	case "dangerous", "difficult":
		return Dangerous, nil
	default:
		return Open, fmt.Errorf("unknown terrain %q", s)
	}
}

// TerrainFromRune converts a map row character into a Terrain.
func TerrainFromRune(r rune) (Terrain, bool) {
	switch r {
	case '.', ' ':
		return Open, true
	case '#':
		return Blocked, true
	case '~':
		return Dangerous, true
	default:
		return Open, false
	}
}
