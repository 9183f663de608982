package mapfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/gridmove/pkg/grid"
)

// GAT format errors.
var (
	ErrInvalidGATMagic       = errors.New("invalid GAT magic: expected 'GRAT'")
	ErrUnsupportedGATVersion = errors.New("unsupported GAT version")
	ErrTruncatedGATData      = errors.New("truncated GAT data")
)

// gatMagic opens every GAT file.
const gatMagic = "GRAT"


// GATCellType is the walkability class stored for each GAT cell.
type GATCellType uint32

// Cell type constants.
const (
	GATWalkable      GATCellType = 0
	GATBlocked       GATCellType = 1
	GATWater         GATCellType = 2 // Deep water
	GATWalkableWater GATCellType = 3 // Shore/shallow water
	GATSnipeable     GATCellType = 4 // Cliff: blocks walking, not projectiles
	GATBlockedSnipe  GATCellType = 5
)

// Terrain converts a GAT cell type to movement terrain. Shallow water is
// walkable but dangerous; everything that cannot be walked is Blocked.
func (t GATCellType) Terrain() grid.Terrain {
	switch t {
	case GATWalkable:
		return grid.Open
	case GATWalkableWater:
		return grid.Dangerous
	default:
		return grid.Blocked
	}
}

// gatHeader is the fixed-size prefix of a GAT file.
type gatHeader struct {
	Magic  [4]byte
	Minor  uint8
	Major  uint8
	Width  uint32
	Height uint32
}

// gatCell is one on-disk cell: four corner altitudes and a type.
type gatCell struct {
	Heights [4]float32
	Type    GATCellType
}

const (
	gatHeaderSize = 14
	gatCellSize   = 20
)

// ParseGAT converts raw GAT bytes into a square map.
func ParseGAT(data []byte) (*Map, error) {
	if len(data) < gatHeaderSize {
		return nil, ErrTruncatedGATData
	}

	var hdr gatHeader
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedGATData)
	}
	if string(hdr.Magic[:]) != gatMagic {
		return nil, ErrInvalidGATMagic
	}
	// 1.2, 1.3, 2.x and 3.x share the cell layout.
	if hdr.Major < 1 || hdr.Major > 3 {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedGATVersion, hdr.Major, hdr.Minor)
	}
	if hdr.Width == 0 || hdr.Height == 0 || hdr.Width > maxDimension || hdr.Height > maxDimension {
		return nil, fmt.Errorf("%w: GAT dimensions %dx%d", ErrInvalidMap, hdr.Width, hdr.Height)
	}

	width, height := int(hdr.Width), int(hdr.Height)
	if need := gatHeaderSize + width*height*gatCellSize; len(data) < need {
		return nil, fmt.Errorf("%w: %d bytes, need %d for %dx%d cells", ErrTruncatedGATData, len(data), need, width, height)
	}

	sq, err := grid.NewSquare(width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}

	// GAT rows run south to north, matching vertex order.
	var cell gatCell
	for v := 0; v < width*height; v++ {
		if err := binary.Read(r, binary.LittleEndian, &cell); err != nil {
			return nil, fmt.Errorf("%w: cell %d", ErrTruncatedGATData, v)
		}
		if t := cell.Type.Terrain(); t != grid.Open {
			if err := sq.SetTerrain(v, t); err != nil {
				return nil, err
			}
		}
	}

	return &Map{Kind: KindSquare, Grid: sq}, nil
}

// LoadGAT reads a GAT file from disk. The map is named after the file.
func LoadGAT(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GAT file: %w", err)
	}
	m, err := ParseGAT(data)
	if err != nil {
		return nil, err
	}
	m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return m, nil
}
