// Package mapfile loads movement grids from disk.
//
// Two formats are supported: a YAML description with terrain rows, polygon
// zones and per-cell overrides, and the binary GAT (Ground Altitude Table)
// files used by Ragnarok Online maps.
package mapfile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/gridmove/pkg/grid"
)

// ErrInvalidMap is returned for map files that parse but describe an
// unusable grid.
var ErrInvalidMap = errors.New("invalid map")

// Kind is the grid layout of a map.
type Kind string

// Map kinds.
const (
	KindSquare Kind = "square"
	KindHex    Kind = "hex"
)

// Grid is a topology whose terrain can be edited.
type Grid interface {
	grid.Topology
	SetTerrain(v int, t grid.Terrain) error
	SetTerrainAt(x, y int, t grid.Terrain) error
	Fill(t grid.Terrain)
	Count() map[grid.Terrain]int
}

// Map is a loaded movement grid.
type Map struct {
	Name   string
	Kind   Kind
	Grid   Grid
	Source string
}

// Square returns the grid as a square grid, if it is one.
func (m *Map) Square() (*grid.Square, bool) {
	sq, ok := m.Grid.(*grid.Square)
	return sq, ok
}

// maxDimension bounds map width and height; real maps stay well below it.
const maxDimension = 4096

// newGrid creates an all-open grid of the given kind.
func newGrid(kind Kind, width, height int) (Grid, error) {
	if width > maxDimension || height > maxDimension {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d cells per side", ErrInvalidMap, width, height, maxDimension)
	}
	var (
		g   Grid
		err error
	)
	switch kind {
	case KindSquare, "":
		g, err = grid.NewSquare(width, height)
	case KindHex:
		g, err = grid.NewHex(width, height)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidMap, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}
	return g, nil
}

// Load reads a map file, choosing the format by extension. A path of the
// form "archive.grf#entry" loads a GAT map from inside a GRF archive.
func Load(path string) (*Map, error) {
	var (
		m   *Map
		err error
	)
	if archive, entry, ok := SplitArchivePath(path); ok {
		m, err = loadFromArchive(archive, entry)
		if err != nil {
			return nil, err
		}
		m.Source = path
		return m, nil
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		m, err = LoadYAML(path)
	case ".gat":
		m, err = LoadGAT(path)
	default:
		return nil, fmt.Errorf("%w: unsupported map extension %q", ErrInvalidMap, ext)
	}
	if err != nil {
		return nil, err
	}
	m.Source = path
	return m, nil
}
