package render

import (
	"errors"
	"image"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/halo/svg"
)

// ErrNoSize is returned for SVG artifacts without usable dimensions.
var ErrNoSize = errors.New("render: svg has no size")

// paintImage resamples img to cover the token and composites it. SVG
// rasters are already at their final size and are centred exactly; other
// images sit higher on isometric figures to follow the footprint.
func (r *Renderer) paintImage(c Canvas, f *frame, img image.Image, sized bool) error {
	if img == nil {
		return ErrEmptyArtifact
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	dst := img
	if !sized {
		s, ok := fitScale(f.loc, f.halo, w, h)
		if !ok {
			return ErrEmptyArtifact
		}
		w, h = math.Ceil(w*s), math.Ceil(h*s)
		scaled := image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)
		dst = scaled
	}

	div := 2.0
	if f.isoFig && !sized {
		div = 4.0 / 3
	}
	m := f.place.Multiply(gg.Translate(-w/2, -h/div))
	return composite(c, dst, m, f.halo.Opacity())
}

func (r *Renderer) paintSVG(c Canvas, f *frame) error {
	doc := f.artifact.SVG
	w, h, ok := svg.Size(doc)
	if !ok {
		return ErrNoSize
	}
	s, ok := fitScale(f.loc, f.halo, w, h)
	if !ok {
		return ErrNoSize
	}
	w, h = w*s, h*s
	sized, err := svg.NewEditor(doc).SetSize(w, h).Document()
	if err != nil {
		return err
	}
	img, err := svg.Rasterize(sized, int(math.Ceil(w)), int(math.Ceil(h)))
	if err != nil {
		return err
	}
	return r.paintImage(c, f, img, true)
}

// composite draws img through the affine m. Pure translations go straight
// to the canvas; anything else is resampled into a scratch image covering
// the transformed bounds first.
func composite(c Canvas, img image.Image, m gg.Matrix, opacity float64) error {
	if opacity <= 0 {
		return nil
	}
	if m.A == 1 && m.B == 0 && m.D == 0 && m.E == 1 {
		c.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
			X:         m.C,
			Y:         m.F,
			Opacity:   opacity,
			BlendMode: gg.BlendNormal,
		})
		return nil
	}

	b := img.Bounds()
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range []gg.Point{
		gg.Pt(0, 0), gg.Pt(float64(b.Dx()), 0),
		gg.Pt(0, float64(b.Dy())), gg.Pt(float64(b.Dx()), float64(b.Dy())),
	} {
		q := m.TransformPoint(p)
		minX, minY = min(minX, q.X), min(minY, q.Y)
		maxX, maxY = max(maxX, q.X), max(maxY, q.Y)
	}
	x0, y0 := math.Floor(minX), math.Floor(minY)
	rw, rh := int(math.Ceil(maxX-x0)), int(math.Ceil(maxY-y0))
	if rw <= 0 || rh <= 0 {
		return ErrEmptyArtifact
	}

	local := gg.Translate(-x0, -y0).Multiply(m).Multiply(gg.Translate(-float64(b.Min.X), -float64(b.Min.Y)))
	scratch := image.NewNRGBA(image.Rect(0, 0, rw, rh))
	aff := f64.Aff3{local.A, local.B, local.C, local.D, local.E, local.F}
	draw.BiLinear.Transform(scratch, aff, img, b, draw.Over, nil)

	c.DrawImageEx(gg.ImageBufFromImage(scratch), gg.DrawImageOptions{
		X:         x0,
		Y:         y0,
		Opacity:   opacity,
		BlendMode: gg.BlendNormal,
	})
	return nil
}
