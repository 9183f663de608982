package mapfile

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/gridmove/pkg/grid"
)

// document is the on-disk YAML layout.
type document struct {
	Name   string         `yaml:"name"`
	Kind   Kind           `yaml:"kind"`
	Width  int            `yaml:"width"`
	Height int            `yaml:"height"`
	Fill   string         `yaml:"fill,omitempty"`
	Rows   []string       `yaml:"rows,omitempty"`
	Zones  []Zone         `yaml:"zones,omitempty"`
	Cells  []CellOverride `yaml:"cells,omitempty"`
}

// Zone paints every cell whose centre lies inside Polygon.
// Polygon vertices are in cell units: cell (x, y) spans [x, x+1) × [y, y+1).
type Zone struct {
	Terrain string       `yaml:"terrain"`
	Polygon [][2]float64 `yaml:"polygon"`
}

// CellOverride sets the terrain of a single cell.
type CellOverride struct {
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	Terrain string `yaml:"terrain"`
}

// LoadYAML reads a YAML map from disk.
func LoadYAML(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML builds a map from YAML.
//
// Terrain is applied in layers: fill, then rows, then zones in order, then
// cells.
// rows[0] is the northmost row (y = height-1), so the file reads the way the
// map is drawn. Files that are not valid UTF-8 are decoded as EUC-KR.
func ParseYAML(data []byte) (*Map, error) {
	data, err := toUTF8(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing map yaml: %w", err)
	}

	if len(doc.Rows) > 0 {
		if doc.Height == 0 {
			doc.Height = len(doc.Rows)
		}
		if doc.Width == 0 {
			doc.Width = utf8.RuneCountInString(doc.Rows[0])
		}
	}

	g, err := newGrid(doc.Kind, doc.Width, doc.Height)
	if err != nil {
		return nil, err
	}
	if doc.Fill != "" {
		t, err := grid.ParseTerrain(doc.Fill)
		if err != nil {
			return nil, fmt.Errorf("%w: fill: %v", ErrInvalidMap, err)
		}
		g.Fill(t)
	}
	if err := applyRows(g, doc.Rows); err != nil {
		return nil, err
	}
	if err := rasterise(g, doc.Zones); err != nil {
		return nil, err
	}
	for _, c := range doc.Cells {
		t, err := grid.ParseTerrain(c.Terrain)
		if err != nil {
			return nil, fmt.Errorf("%w: cell (%d,%d): %v", ErrInvalidMap, c.X, c.Y, err)
		}
		if err := g.SetTerrainAt(c.X, c.Y, t); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
		}
	}

	kind := doc.Kind
	if kind == "" {
		kind = KindSquare
	}
	return &Map{
		Name: strings.TrimSpace(doc.Name),
		Kind: kind,
		Grid: g,
	}, nil
}

// toUTF8 returns data unchanged when it is valid UTF-8 and decodes it as
// EUC-KR otherwise. Legacy Ragnarok tooling writes EUC-KR.
func toUTF8(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decoding EUC-KR: %w", err)
	}
	return decoded, nil
}

func applyRows(g Grid, rows []string) error {
	if len(rows) == 0 {
		return nil
	}
	if len(rows) != g.Height() {
		return fmt.Errorf("%w: %d rows for height %d", ErrInvalidMap, len(rows), g.Height())
	}

	for i, row := range rows {
		y := g.Height() - 1 - i
		if n := utf8.RuneCountInString(row); n != g.Width() {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidMap, i, n, g.Width())
		}
		x := 0
		for _, r := range row {
			t, ok := grid.TerrainFromRune(r)
			if !ok {
				return fmt.Errorf("%w: row %d: unknown terrain %q", ErrInvalidMap, i, r)
			}
			if err := g.SetTerrainAt(x, y, t); err != nil {
				return err
			}
			x++
		}
	}
	return nil
}

// MarshalYAML encodes a map as rows, north first.
func MarshalYAML(m *Map) ([]byte, error) {
	g := m.Grid
	doc := document{
		Name:   m.Name,
		Kind:   m.Kind,
		Width:  g.Width(),
		Height: g.Height(),
		Rows:   make([]string, 0, g.Height()),
	}

	var b strings.Builder
	for y := g.Height() - 1; y >= 0; y-- {
		b.Reset()
		for x := 0; x < g.Width(); x++ {
			v, _ := g.Index(x, y)
			b.WriteRune(g.Terrain(v).Rune())
		}
		doc.Rows = append(doc.Rows, b.String())
	}

	return yaml.Marshal(&doc)
}
