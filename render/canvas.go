package render

import (
	"image/color"

	"github.com/gogpu/gg"
)

// Canvas is the drawing surface a Renderer paints on. *gg.Context
// satisfies it.
type Canvas interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticTo(cx, cy, x, y float64)
	CubicTo(c1x, c1y, c2x, c2y, x, y float64)
	ClosePath()
	ClearPath()

	SetColor(c color.Color)
	SetLineWidth(width float64)
	SetLineJoin(join gg.LineJoin)
	SetLineCap(lineCap gg.LineCap)
	Stroke() error
	Fill() error

	PushLayer(mode gg.BlendMode, opacity float64)
	PopLayer()
	DrawImageEx(img *gg.ImageBuf, opts gg.DrawImageOptions)
}

var _ Canvas = (*gg.Context)(nil)

// tracePath replays p onto the canvas as the current path.
func tracePath(c Canvas, p *gg.Path) {
	c.ClearPath()
	for _, el := range p.Elements() {
		switch e := el.(type) {
		case gg.MoveTo:
			c.MoveTo(e.Point.X, e.Point.Y)
		case gg.LineTo:
			c.LineTo(e.Point.X, e.Point.Y)
		case gg.QuadTo:
			c.QuadraticTo(e.Control.X, e.Control.Y, e.Point.X, e.Point.Y)
		case gg.CubicTo:
			c.CubicTo(e.Control1.X, e.Control1.Y, e.Control2.X, e.Control2.Y, e.Point.X, e.Point.Y)
		case gg.Close:
			c.ClosePath()
		}
	}
}

// strokePath strokes p with the given colour and width.
func strokePath(c Canvas, p *gg.Path, col color.Color, width float64) error {
	tracePath(c, p)
	c.SetColor(col)
	c.SetLineWidth(width)
	return c.Stroke()
}
