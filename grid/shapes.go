package grid

import (
	"math"
	"strings"

	"github.com/gogpu/gg"
)

// Margins applied to the cell size for the inside and outside outlines.
const (
	insideMargin = 0.4
	outsideRatio = 1.0 / 12
)

// CellPolygon returns the corners of a cell of the given size centred at the
// origin. It returns nil for None, whose cell is a circle.
func CellPolygon(t Topology, size float64) []gg.Point {
	h := size / 2
	switch t {
	case Square:
		return []gg.Point{{X: -h, Y: -h}, {X: h, Y: -h}, {X: h, Y: h}, {X: -h, Y: h}}
	case HexVertical:
		return hexagon(size/math.Sqrt(3), 0)
	case HexHorizontal:
		return hexagon(size/math.Sqrt(3), math.Pi/6)
	case Isometric:
		return []gg.Point{{X: 0, Y: -h}, {X: size, Y: 0}, {X: 0, Y: h}, {X: -size, Y: 0}}
	}
	return nil
}

func hexagon(r, phase float64) []gg.Point {
	pts := make([]gg.Point, 6)
	for i := range pts {
		a := phase + float64(i)*math.Pi/3
		pts[i] = gg.Pt(r*math.Cos(a), r*math.Sin(a))
	}
	return pts
}

// CellOutline returns the closed outline of a cell of the given size.
func CellOutline(t Topology, size float64) *gg.Path {
	p := gg.NewPath()
	pts := CellPolygon(t, size)
	if pts == nil {
		p.Circle(0, 0, size/2)
		return p
	}
	addPolygon(p, pts)
	return p
}

func addPolygon(p *gg.Path, pts []gg.Point) {
	for i, q := range pts {
		if i == 0 {
			p.MoveTo(q.X, q.Y)
		} else {
			p.LineTo(q.X, q.Y)
		}
	}
	p.Close()
}

// ShapeCache holds the inside and outside cell outlines of every topology for
// one cell size. It is immutable after construction and safe to share.
type ShapeCache struct {
	size    float64
	inside  map[Topology]*gg.Path
	outside map[Topology]*gg.Path
}

// NewShapeCache builds the outlines for cells of the given size. Inside
// outlines are sized cellSize+0.4 and outside ones cellSize+cellSize/12.
func NewShapeCache(cellSize float64) *ShapeCache {
	if cellSize <= 0 {
		cellSize = DefaultSize
	}
	c := &ShapeCache{
		size:    cellSize,
		inside:  make(map[Topology]*gg.Path),
		outside: make(map[Topology]*gg.Path),
	}
	for _, t := range Topologies() {
		c.inside[t] = CellOutline(t, InsideSize(cellSize))
		c.outside[t] = CellOutline(t, OutsideSize(cellSize))
	}
	return c
}

// InsideSize is the size of the inside outline of a cell.
func InsideSize(cellSize float64) float64 { return cellSize + insideMargin }

// OutsideSize is the size of the outside outline of a cell.
func OutsideSize(cellSize float64) float64 { return cellSize + cellSize*outsideRatio }

// Size returns the cell size the cache was built for.
func (c *ShapeCache) Size() float64 { return c.size }

// Inside returns the shared inside outline. Callers must not modify it.
func (c *ShapeCache) Inside(t Topology) *gg.Path { return c.inside[t] }

// Outside returns the shared outside outline. Callers must not modify it.
func (c *ShapeCache) Outside(t Topology) *gg.Path { return c.outside[t] }

func normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}
