package mapfile

import (
	"fmt"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/Faultbox/gridmove/pkg/grid"
)

// zoneEntry wraps a zone polygon for R-tree storage.
type zoneEntry struct {
	order   int
	terrain grid.Terrain
	polygon orb.Polygon
	bbox    rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (z *zoneEntry) Bounds() rtreego.Rect {
	return z.bbox
}

// minExtent keeps degenerate bounding boxes valid for rtreego.
const minExtent = 1e-9

// rasterise paints zones onto g. When zones overlap, the later one wins.
func rasterise(g Grid, zones []Zone) error {
	if len(zones) == 0 {
		return nil
	}

	tree := rtreego.NewTree(2, 25, 50)
	for i, z := range zones {
		entry, err := newZoneEntry(i, z)
		if err != nil {
			return err
		}
		tree.Insert(entry)
	}

	for v := 0; v < g.NumVertices(); v++ {
		x, y := g.Coordinates(v)
		centre := orb.Point{float64(x) + 0.5, float64(y) + 0.5}

		best := -1
		var terrain grid.Terrain
		for _, item := range tree.SearchIntersect(rtreego.Point{centre[0], centre[1]}.ToRect(minExtent)) {
			entry := item.(*zoneEntry)
			if entry.order <= best || !planar.PolygonContains(entry.polygon, centre) {
				continue
			}
			best, terrain = entry.order, entry.terrain
		}

		if best >= 0 {
			if err := g.SetTerrain(v, terrain); err != nil {
				return err
			}
		}
	}
	return nil
}

func newZoneEntry(order int, z Zone) (*zoneEntry, error) {
	t, err := grid.ParseTerrain(z.Terrain)
	if err != nil {
		return nil, fmt.Errorf("%w: zone %d: %v", ErrInvalidMap, order, err)
	}
	if len(z.Polygon) < 3 {
		return nil, fmt.Errorf("%w: zone %d needs at least 3 points, got %d", ErrInvalidMap, order, len(z.Polygon))
	}

	ring := make(orb.Ring, 0, len(z.Polygon)+1)
	for _, p := range z.Polygon {
		ring = append(ring, orb.Point{p[0], p[1]})
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	polygon := orb.Polygon{ring}

	b := polygon.Bound()
	bbox, err := rtreego.NewRect(
		rtreego.Point{b.Min[0], b.Min[1]},
		[]float64{max(b.Max[0]-b.Min[0], minExtent), max(b.Max[1]-b.Min[1], minExtent)},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: zone %d bounds: %v", ErrInvalidMap, order, err)
	}

	return &zoneEntry{
		order:   order,
		terrain: t,
		polygon: polygon,
		bbox:    bbox,
	}, nil
}
