package grid

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/gogpu/gg"
)

// Footprint is the set of cells a token occupies. Scale below 1 marks tokens
// smaller than a cell; they are drawn as a scaled single cell.
type Footprint struct {
	Cells []Cell
	Scale float64
}

// SingleCell is the footprint of a medium token.
func SingleCell() Footprint { return Footprint{Cells: []Cell{{}}, Scale: 1} }

// Signature returns a stable text form usable as a cache key component.
func (f Footprint) Signature() string {
	cells := slices.Clone(f.Cells)
	slices.SortFunc(cells, func(a, b Cell) int {
		return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.X, b.X))
	})
	var sb strings.Builder
	fmt.Fprintf(&sb, "%g:", f.Scale)
	for _, c := range cells {
		fmt.Fprintf(&sb, "%d,%d;", c.X, c.Y)
	}
	return sb.String()
}

func (f Footprint) scaled() bool { return f.Scale > 0 && f.Scale < 1 }

// FootprintRing returns the band between the outside and inside outlines of
// every cell in the footprint, recentred on the centre of its bounds. The
// result is built from the exact union boundary of the cells, so shared
// interior edges do not appear.
func FootprintRing(g Grid, f Footprint) *gg.Path {
	if g.Topology == None || f.scaled() || len(f.Cells) == 0 {
		s := f.Scale
		if s <= 0 {
			s = 1
		}
		p := CellOutline(g.Topology, OutsideSize(g.Size)*s)
		return appendPath(p, CellOutline(g.Topology, InsideSize(g.Size)*s).Reversed())
	}

	loops := unionBoundary(g, f.Cells)
	sign := 1.0
	if signedArea(CellPolygon(g.Topology, g.Size)) < 0 {
		sign = -1
	}
	outside := (OutsideSize(g.Size) - g.Size) / 2
	inside := (InsideSize(g.Size) - g.Size) / 2

	p := gg.NewPath()
	for _, l := range loops {
		addPolygon(p, offsetLoop(l, outside*sign))
	}
	for _, l := range loops {
		o := offsetLoop(l, inside*sign)
		slices.Reverse(o)
		addPolygon(p, o)
	}
	b := p.BoundingBox()
	return p.Transform(gg.Translate(-(b.Min.X+b.Max.X)/2, -(b.Min.Y+b.Max.Y)/2))
}

// Bounds returns the rectangle enclosing a footprint ring.
func Bounds(ring *gg.Path) *gg.Path {
	b := ring.BoundingBox()
	p := gg.NewPath()
	p.Rectangle(b.Min.X, b.Min.Y, b.Width(), b.Height())
	return p
}

// RoundedBounds returns the bounds of a footprint ring with rounded corners.
func RoundedBounds(ring *gg.Path, radius float64) *gg.Path {
	b := ring.BoundingBox()
	p := gg.NewPath()
	p.RoundedRectangle(b.Min.X, b.Min.Y, b.Width(), b.Height(), radius)
	return p
}

// ConvexHull returns the convex hull of a footprint ring.
func ConvexHull(ring *gg.Path) *gg.Path {
	hull := convexHull(ring.Flatten(0.25))
	p := gg.NewPath()
	if len(hull) > 0 {
		addPolygon(p, hull)
	}
	return p
}

// convexHull uses Andrew's monotone chain and returns the hull in
// counter-clockwise order without repeating the first point.
func convexHull(pts []gg.Point) []gg.Point {
	pts = slices.Clone(pts)
	slices.SortFunc(pts, func(a, b gg.Point) int {
		return cmp.Or(cmp.Compare(a.X, b.X), cmp.Compare(a.Y, b.Y))
	})
	pts = slices.CompactFunc(pts, func(a, b gg.Point) bool { return a == b })
	if len(pts) < 3 {
		return pts
	}
	cross := func(o, a, b gg.Point) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}
	hull := make([]gg.Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

type vkey [2]int64

func keyOf(p gg.Point) vkey {
	return vkey{int64(math.Round(p.X * 1e4)), int64(math.Round(p.Y * 1e4))}
}

type edge struct{ a, b vkey }

// unionBoundary returns the closed boundary loops of the union of the cells.
// Edges shared by two cells cancel; the rest are chained into loops that keep
// the orientation of the cell polygons.
func unionBoundary(g Grid, cells []Cell) [][]gg.Point {
	poly := CellPolygon(g.Topology, g.Size)
	points := make(map[vkey]gg.Point)
	edges := make(map[edge]bool)
	for _, c := range slices.Compact(sortedCells(cells)) {
		ctr := g.CellCenter(c)
		for i := range poly {
			a := poly[i].Add(ctr)
			b := poly[(i+1)%len(poly)].Add(ctr)
			ka, kb := keyOf(a), keyOf(b)
			points[ka], points[kb] = a, b
			if edges[edge{kb, ka}] {
				delete(edges, edge{kb, ka})
				continue
			}
			edges[edge{ka, kb}] = true
		}
	}

	remaining := make([]edge, 0, len(edges))
	for e := range edges {
		remaining = append(remaining, e)
	}
	slices.SortFunc(remaining, func(x, y edge) int {
		return cmp.Or(cmp.Compare(x.a[1], y.a[1]), cmp.Compare(x.a[0], y.a[0]),
			cmp.Compare(x.b[1], y.b[1]), cmp.Compare(x.b[0], y.b[0]))
	})
	next := make(map[vkey][]edge)
	for _, e := range remaining {
		next[e.a] = append(next[e.a], e)
	}

	used := make(map[edge]bool)
	var loops [][]gg.Point
	for _, start := range remaining {
		if used[start] {
			continue
		}
		var loop []gg.Point
		e := start
		for !used[e] {
			used[e] = true
			loop = append(loop, points[e.a])
			found := false
			for _, n := range next[e.b] {
				if !used[n] {
					e, found = n, true
					break
				}
			}
			if !found {
				break
			}
		}
		loops = append(loops, simplify(loop))
	}
	return loops
}

func sortedCells(cells []Cell) []Cell {
	out := slices.Clone(cells)
	slices.SortFunc(out, func(a, b Cell) int {
		return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.X, b.X))
	})
	return out
}

// simplify drops vertices lying on the straight line between their neighbours.
func simplify(loop []gg.Point) []gg.Point {
	if len(loop) < 4 {
		return loop
	}
	out := make([]gg.Point, 0, len(loop))
	n := len(loop)
	for i, p := range loop {
		prev, next := loop[(i+n-1)%n], loop[(i+1)%n]
		if math.Abs(p.Sub(prev).Cross(next.Sub(p))) > 1e-9 {
			out = append(out, p)
		}
	}
	return out
}

// offsetLoop moves every edge of a loop by d along its right-hand normal
// (in y-down coordinates), joining edges with mitres. A negative d moves
// the edges the other way.
func offsetLoop(loop []gg.Point, d float64) []gg.Point {
	n := len(loop)
	if n < 3 {
		return loop
	}
	normal := func(a, b gg.Point) gg.Point {
		v := b.Sub(a)
		l := math.Hypot(v.X, v.Y)
		return gg.Pt(v.Y/l, -v.X/l)
	}
	out := make([]gg.Point, n)
	for i := range loop {
		prev, cur, next := loop[(i+n-1)%n], loop[i], loop[(i+1)%n]
		n1, n2 := normal(prev, cur), normal(cur, next)
		k := 1 + n1.Dot(n2)
		if k < 1e-9 {
			out[i] = cur.Add(n1.Mul(d))
			continue
		}
		out[i] = cur.Add(n1.Add(n2).Mul(d / k))
	}
	return out
}

func signedArea(loop []gg.Point) float64 {
	var a float64
	for i, p := range loop {
		q := loop[(i+1)%len(loop)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

func appendPath(dst, src *gg.Path) *gg.Path {
	for _, e := range src.Elements() {
		switch e := e.(type) {
		case gg.MoveTo:
			dst.MoveTo(e.Point.X, e.Point.Y)
		case gg.LineTo:
			dst.LineTo(e.Point.X, e.Point.Y)
		case gg.QuadTo:
			dst.QuadraticTo(e.Control.X, e.Control.Y, e.Point.X, e.Point.Y)
		case gg.CubicTo:
			dst.CubicTo(e.Control1.X, e.Control1.Y, e.Control2.X, e.Control2.Y, e.Point.X, e.Point.Y)
		case gg.Close:
			dst.Close()
		}
	}
	return dst
}
