package grid

import (
	"math"
	"testing"

	"github.com/gogpu/gg"
)

const eps = 1e-6

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestParseTopology(t *testing.T) {
	tests := []struct {
		in   string
		want Topology
	}{
		{"square", Square},
		{"HEX_HORI", HexHorizontal},
		{"hex-vertical", HexVertical},
		{"iso", Isometric},
		{"gridless", None},
	}
	for _, tt := range tests {
		got, err := ParseTopology(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseTopology(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseTopology("triangle"); err == nil {
		t.Error("ParseTopology(triangle) returned nil error")
	}
}

func TestGridFlags(t *testing.T) {
	if !New(Isometric, 50).IsIsometric() {
		t.Error("isometric grid not reported isometric")
	}
	if !New(HexVertical, 50).IsHex() || !New(HexVertical, 50).IsHexVertical() {
		t.Error("hex vertical flags wrong")
	}
	if New(Square, 50).IsHex() {
		t.Error("square grid reported hex")
	}
	if g := New(Square, 0); g.Size != DefaultSize {
		t.Errorf("New(Square, 0).Size = %v, want %v", g.Size, DefaultSize)
	}
}

func TestCellPolygonSizes(t *testing.T) {
	tests := []struct {
		topo   Topology
		wantW  float64
		wantH  float64
		corner int
	}{
		{Square, 60, 60, 4},
		{HexVertical, 120 / math.Sqrt(3), 60, 6},
		{HexHorizontal, 60, 120 / math.Sqrt(3), 6},
		{Isometric, 120, 60, 4},
	}
	for _, tt := range tests {
		t.Run(tt.topo.String(), func(t *testing.T) {
			pts := CellPolygon(tt.topo, 60)
			if len(pts) != tt.corner {
				t.Fatalf("len = %d, want %d", len(pts), tt.corner)
			}
			p := CellOutline(tt.topo, 60)
			b := p.BoundingBox()
			if !near(b.Width(), tt.wantW) || !near(b.Height(), tt.wantH) {
				t.Errorf("size = %vx%v, want %vx%v", b.Width(), b.Height(), tt.wantW, tt.wantH)
			}
			if !near(b.Min.X+b.Max.X, 0) || !near(b.Min.Y+b.Max.Y, 0) {
				t.Errorf("outline not centred: %+v", b)
			}
		})
	}
}

func TestShapeCacheSizes(t *testing.T) {
	c := NewShapeCache(120)
	in := c.Inside(Square).BoundingBox()
	out := c.Outside(Square).BoundingBox()
	if !near(in.Width(), 120.4) {
		t.Errorf("inside width = %v, want 120.4", in.Width())
	}
	if !near(out.Width(), 130) {
		t.Errorf("outside width = %v, want 130", out.Width())
	}
	for _, topo := range Topologies() {
		if c.Inside(topo) == nil || c.Outside(topo) == nil {
			t.Errorf("missing outlines for %v", topo)
		}
	}
	if c.Outside(Square) != c.Outside(Square) {
		t.Error("outlines should be shared")
	}
}

func TestCellCentersAdjacentHexesShareEdges(t *testing.T) {
	for _, topo := range []Topology{HexVertical, HexHorizontal, Isometric, Square} {
		t.Run(topo.String(), func(t *testing.T) {
			g := New(topo, 50)
			loops := unionBoundary(g, []Cell{{0, 0}, {1, 0}})
			if len(loops) != 1 {
				t.Fatalf("adjacent cells produced %d boundary loops, want 1", len(loops))
			}
		})
	}
}

func TestFootprintRingSingleCell(t *testing.T) {
	g := New(Square, 100)
	ring := FootprintRing(g, SingleCell())
	b := ring.BoundingBox()
	want := OutsideSize(100)
	if !near(b.Width(), want) || !near(b.Height(), want) {
		t.Errorf("ring bounds = %vx%v, want %v square", b.Width(), b.Height(), want)
	}
	if ring.Contains(gg.Pt(0, 0)) {
		t.Error("ring interior should be empty")
	}
	if !ring.Contains(gg.Pt(0, -(want+InsideSize(100))/4)) {
		t.Error("point inside the band not contained")
	}
}

func TestFootprintRingUnion(t *testing.T) {
	g := New(Square, 100)
	ring := FootprintRing(g, Footprint{Cells: []Cell{{0, 0}, {1, 0}, {0, 1}, {1, 1}}, Scale: 1})
	b := ring.BoundingBox()
	want := 200 + (OutsideSize(100) - 100)
	if !near(b.Width(), want) || !near(b.Height(), want) {
		t.Errorf("2x2 ring bounds = %vx%v, want %v", b.Width(), b.Height(), want)
	}
	if !near(b.Min.X+b.Max.X, 0) {
		t.Error("ring not recentred")
	}
	// The shared edges between the four cells must not be part of the band.
	if ring.Contains(gg.Pt(0, 0)) || ring.Contains(gg.Pt(50, 0)) {
		t.Error("interior of union is filled")
	}
}

func TestFootprintRingL(t *testing.T) {
	g := New(Square, 100)
	ring := FootprintRing(g, Footprint{Cells: []Cell{{0, 0}, {0, 1}, {1, 1}}, Scale: 1})
	var moves int
	for _, e := range ring.Elements() {
		if _, ok := e.(gg.MoveTo); ok {
			moves++
		}
	}
	if moves != 2 {
		t.Errorf("L footprint produced %d subpaths, want 2", moves)
	}
	hull := ConvexHull(ring)
	if hull.Area() == 0 {
		t.Error("convex hull is empty")
	}
}

func TestFootprintRingScaled(t *testing.T) {
	g := New(Square, 100)
	ring := FootprintRing(g, Footprint{Cells: []Cell{{0, 0}}, Scale: 0.5})
	b := ring.BoundingBox()
	if !near(b.Width(), OutsideSize(100)*0.5) {
		t.Errorf("scaled ring width = %v, want %v", b.Width(), OutsideSize(100)*0.5)
	}
}

func TestBoundsDerivations(t *testing.T) {
	g := New(HexVertical, 100)
	ring := FootprintRing(g, Footprint{Cells: []Cell{{0, 0}, {1, 0}}, Scale: 1})
	rb := ring.BoundingBox()
	if got := Bounds(ring).BoundingBox(); !near(got.Min.X, rb.Min.X) || !near(got.Max.Y, rb.Max.Y) {
		t.Errorf("Bounds() = %+v, want %+v", got, rb)
	}
	rr := RoundedBounds(ring, 100.0/24).BoundingBox()
	if !near(rr.Width(), rb.Width()) || !near(rr.Height(), rb.Height()) {
		t.Errorf("RoundedBounds() = %+v, want %+v", rr, rb)
	}
}

func TestConvexHull(t *testing.T) {
	pts := []gg.Point{{0, 0}, {2, 0}, {1, 1}, {2, 2}, {0, 2}, {1, 0}}
	hull := convexHull(pts)
	if len(hull) != 4 {
		t.Errorf("hull = %v, want 4 corners", hull)
	}
}

func TestFootprintSignatureIsOrderIndependent(t *testing.T) {
	a := Footprint{Cells: []Cell{{1, 0}, {0, 0}}, Scale: 1}
	b := Footprint{Cells: []Cell{{0, 0}, {1, 0}}, Scale: 1}
	if a.Signature() != b.Signature() {
		t.Errorf("%q != %q", a.Signature(), b.Signature())
	}
}
