package render

import (
	"image/color"
	"math"

	"github.com/gogpu/gg"

	"github.com/gogpu/halo"
)

// painter strokes a placed shape in one halo style.
type painter func(r *Renderer, c Canvas, p *gg.Path, f *frame) error

var painters = map[halo.Style]painter{
	halo.StyleLine: (*Renderer).paintLine,
	halo.StyleGlow: (*Renderer).paintGlow,
	halo.StyleTube: (*Renderer).paintTube,
}

// Stroke width limits, in pixels.
const (
	lineMin     = 0.6
	lineMax     = 10.0
	glowMax     = 4.0
	tubeMin     = 4.5
	tubeMax     = 12.0
	tubeOffsetK = 1.0 / 3
)

func (r *Renderer) paintLine(c Canvas, p *gg.Path, f *frame) error {
	c.SetLineJoin(gg.LineJoinRound)
	c.SetLineCap(gg.LineCapButt)
	w := clamp(r.lineWidth*f.zoom, lineMin, lineMax)
	return strokePath(c, p, f.halo.Colour(), w)
}

// paintGlow strokes widening, fading passes. Filled glows are stroked only.
func (r *Renderer) paintGlow(c Canvas, p *gg.Path, f *frame) error {
	// TODO: fill the interior with the first pass colour for filled halos
	// once the inner clip geometry is settled.
	c.SetLineJoin(gg.LineJoinRound)
	c.SetLineCap(gg.LineCapButt)
	start := min(r.lineWidth*f.zoom, glowMax)
	base := baseColour(f)
	for _, step := range glowSteps() {
		col := base
		col.A = uint8(math.Round(float64(base.A) * step.Opacity))
		if err := strokePath(c, p, col, start*step.Width); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) paintTube(c Canvas, p *gg.Path, f *frame) error {
	colours := r.tubeColours(f)
	start := clamp(r.lineWidth*f.zoom, tubeMin, tubeMax)
	off := start * tubeOffsetK
	shadow := p.Transform(gg.Translate(off, off))
	highlight := p.Transform(gg.Translate(-off, -off))

	c.SetLineJoin(gg.LineJoinRound)
	c.SetLineCap(gg.LineCapRound)
	for i, w := range tubeWidths() {
		target := p
		switch {
		case i < Passes/3:
			target = shadow
		case i >= 2*Passes/3:
			target = highlight
		}
		if err := strokePath(c, target, colours[i], start*w); err != nil {
			return err
		}
	}
	return nil
}

// tubeColours returns the halo's own twelve colours, or synthesizes them
// from the base colour and stores them on the halo.
func (r *Renderer) tubeColours(f *frame) []color.NRGBA {
	if cs := f.halo.Colours(); len(cs) == Passes {
		return cs
	}
	cs := TubeColours(baseColour(f))
	f.halo.SetColours(cs)
	return cs
}

func clamp(v, lo, hi float64) float64 { return max(lo, min(v, hi)) }
