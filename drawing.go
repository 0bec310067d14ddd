package halo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gg"
	"github.com/srwiley/oksvg"
	"golang.org/x/image/math/fixed"
)

// ErrEmptyPath is returned when path data contains no drawable segment.
var ErrEmptyPath = errors.New("halo: empty path data")

// ParsePath parses SVG path data ("M 0 0 L 10 0 ...") into a path centred on
// the centre of its bounding box.
func ParsePath(d string) (*gg.Path, error) {
	if strings.TrimSpace(d) == "" {
		return nil, ErrEmptyPath
	}
	var pc oksvg.PathCursor
	if err := pc.CompilePath(d); err != nil {
		return nil, fmt.Errorf("halo: parse path: %w", err)
	}

	a := &pathAdder{path: gg.NewPath()}
	pc.Path.AddTo(a)
	if len(a.path.Elements()) == 0 {
		return nil, ErrEmptyPath
	}

	b := a.path.BoundingBox()
	cx := (b.Min.X + b.Max.X) / 2
	cy := (b.Min.Y + b.Max.Y) / 2
	return a.path.Transform(gg.Translate(-cx, -cy)), nil
}

// pathAdder receives fixed-point segments from oksvg and builds a gg.Path.
type pathAdder struct {
	path *gg.Path
	open bool
}

func pt(p fixed.Point26_6) (float64, float64) {
	return float64(p.X) / 64, float64(p.Y) / 64
}

func (a *pathAdder) Start(p fixed.Point26_6) {
	x, y := pt(p)
	a.path.MoveTo(x, y)
	a.open = true
}

func (a *pathAdder) Line(p fixed.Point26_6) {
	x, y := pt(p)
	a.path.LineTo(x, y)
}

func (a *pathAdder) QuadBezier(b, c fixed.Point26_6) {
	bx, by := pt(b)
	cx, cy := pt(c)
	a.path.QuadraticTo(bx, by, cx, cy)
}

func (a *pathAdder) CubeBezier(b, c, d fixed.Point26_6) {
	bx, by := pt(b)
	cx, cy := pt(c)
	dx, dy := pt(d)
	a.path.CubicTo(bx, by, cx, cy, dx, dy)
}

func (a *pathAdder) Stop(closeLoop bool) {
	if closeLoop && a.open {
		a.path.Close()
	}
	a.open = false
}
