// Package render paints resolved halos around tokens.
//
// A Renderer places the artifact a store.Resolver returns for a token: it
// recentres the artifact on the token anchor, scales it to cover the token,
// applies the halo rotation and the isometric adjustment, and then paints
// it. Shapes are stroked by the halo style (line, glow or tube); raster
// images are resampled and composited; SVG documents are resized and
// rasterized first.
//
// Render never panics on bad input. The worst outcome for a token is that
// nothing is drawn for it this frame.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sync/atomic"

	"github.com/gogpu/gg"

	"github.com/gogpu/halo"
	"github.com/gogpu/halo/grid"
	"github.com/gogpu/halo/store"
	"github.com/gogpu/halo/token"
)

// DefaultLineWidth is the base halo stroke width at zoom 1.
const DefaultLineWidth = 2.0

// ErrEmptyArtifact is returned when an artifact has no drawable extent.
var ErrEmptyArtifact = errors.New("render: empty artifact")

// View describes the frame being drawn.
type View struct {
	// Zoom is the map-to-screen scale; zero means 1.
	Zoom float64
	Grid grid.Grid
}

func (v View) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

// Renderer paints halos. It is meant to be driven from a single render
// goroutine; the resolver it wraps may be shared.
type Renderer struct {
	resolver  *store.Resolver
	lineWidth float64
	debug     bool
	count     atomic.Uint64
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLineWidth sets the base stroke width.
func WithLineWidth(w float64) Option {
	return func(r *Renderer) {
		if w > 0 {
			r.lineWidth = w
		}
	}
}

// WithDebug makes tokens without a halo show a tube halo cycling through
// every halo type, and outlines token bounds.
func WithDebug(on bool) Option {
	return func(r *Renderer) { r.debug = on }
}

// New returns a Renderer drawing artifacts from res.
func New(res *store.Resolver, opts ...Option) *Renderer {
	r := &Renderer{resolver: res, lineWidth: DefaultLineWidth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Debug reports whether debug rendering is on.
func (r *Renderer) Debug() bool { return r.debug }

// frame carries the per-token state of one Render call.
type frame struct {
	loc      *token.Location
	tok      *token.Token
	halo     *halo.Halo
	zoom     float64
	isoGrid  bool
	isoFig   bool
	origin   gg.Point
	place    gg.Matrix
	artifact *store.Artifact
}

// Render draws the halo of the token at loc.
func (r *Renderer) Render(c Canvas, loc *token.Location, v View) error {
	if c == nil || loc == nil || loc.Token == nil {
		return nil
	}
	tok := loc.Token
	h := tok.EffectiveHalo()
	if h == nil {
		if !r.debug {
			return nil
		}
		h = r.debugHalo()
	}
	if r.debug {
		defer r.advance()
	}
	if h.Opacity() <= 0 {
		return nil
	}

	if v.Grid.Size > 0 && v.Grid != r.resolver.Grid() {
		r.resolver.SetGrid(v.Grid)
	}
	f := &frame{
		loc:     loc,
		tok:     tok,
		halo:    h,
		zoom:    v.zoom(),
		isoGrid: r.resolver.Grid().IsIsometric(),
	}
	f.isoFig = tok.Shape == token.Figure && !tok.FlippedIso
	f.origin = loc.Center.Add(tok.Anchor.Mul(f.zoom))
	f.place = placement(f)
	f.artifact = r.resolver.Resolve(h, loc)
	if f.artifact == nil {
		return nil
	}

	var err error
	switch f.artifact.Kind {
	case store.KindShape:
		err = r.paintShape(c, f)
	case store.KindImage:
		err = r.paintImage(c, f, f.artifact.Image, false)
	case store.KindSVG:
		err = r.paintSVG(c, f)
	default:
		err = fmt.Errorf("render: unknown artifact kind %v", f.artifact.Kind)
	}
	if err != nil {
		halo.Logger().Warn("render: halo not drawn", "token", tok.Name, "type", h.Type(), "err", err)
		return err
	}
	if r.debug {
		r.outlineBounds(c, loc)
	}
	return nil
}

// placement returns the transform from artifact space, centred on the
// origin, to screen space, excluding the fit scale.
func placement(f *frame) gg.Matrix {
	m := gg.Translate(f.origin.X, f.origin.Y)
	if f.isoGrid {
		switch {
		case f.halo.IsoFlipped():
			m = m.Multiply(store.IsoTransform())
		case f.isoFig:
			m = m.Multiply(gg.Translate(0, f.loc.ScaledHeight/4))
		}
	}
	if theta := rotation(f.halo, f.tok); theta != 0 {
		m = m.Multiply(gg.Rotate(theta))
	}
	return m
}

func rotation(h *halo.Halo, t *token.Token) float64 {
	theta := h.Rotation()
	if h.UseFacing() && t.HasFacing {
		theta += t.Facing
	}
	return theta
}

// fitScale is the uniform scale covering the token with an artifact of
// size w x h, times the halo scale factor.
func fitScale(loc *token.Location, h *halo.Halo, w, ht float64) (float64, bool) {
	var s float64
	switch {
	case w > 0 && ht > 0:
		s = max(loc.ScaledWidth/w, loc.ScaledHeight/ht)
	case w > 0:
		s = loc.ScaledWidth / w
	case ht > 0:
		s = loc.ScaledHeight / ht
	default:
		return 0, false
	}
	s *= h.ScaleFactor()
	if s <= 0 || math.IsInf(s, 0) || math.IsNaN(s) {
		return 0, false
	}
	return s, true
}

func (r *Renderer) paintShape(c Canvas, f *frame) error {
	base := f.artifact.Shape
	if base == nil || len(base.Elements()) == 0 {
		return ErrEmptyArtifact
	}
	bb := base.BoundingBox()
	s, ok := fitScale(f.loc, f.halo, bb.Width(), bb.Height())
	if !ok {
		return ErrEmptyArtifact
	}
	cx, cy := (bb.Min.X+bb.Max.X)/2, (bb.Min.Y+bb.Max.Y)/2
	m := f.place.Multiply(gg.Scale(s, s)).Multiply(gg.Translate(-cx, -cy))
	p := base.Transform(m)

	paint, ok := painters[f.halo.Style()]
	if !ok {
		return fmt.Errorf("render: unknown style %v", f.halo.Style())
	}
	layered := f.halo.Opacity() < 1
	if layered {
		c.PushLayer(gg.BlendNormal, f.halo.Opacity())
		defer c.PopLayer()
	}
	return paint(r, c, p, f)
}

// baseColour is the colour derived styles start from: the token's halo
// colour when set, otherwise the halo's primary colour.
func baseColour(f *frame) color.NRGBA {
	if f.tok.HaloColour != nil {
		return *f.tok.HaloColour
	}
	return f.halo.Colour()
}

// debugDrawing is a cog outline used for DRAWING halos in debug mode.
const debugDrawing = "m14 0.047 -0.73 2.4c-1.1 0.14 -2.1 0.43 -3.2 0.85l-1.8 -1.7 -1.6 0.95 0.56 2.4c-0.87 0.67 -1.6 1.4 -2.3 2.3l-2.4 -0.56 -0.95 1.6 1.7 1.8c-0.42 1 -0.7 2.1 -0.85 3.2l-2.4 0.73v1.9l2.4 0.73c0.14 1.1 0.43 2.1 0.85 3.2l-1.7 1.8 0.95 1.6 2.4 -0.56c0.67 0.87 1.4 1.6 2.3 2.3l-0.56 2.4 1.6 0.95 1.8 -1.7c1 0.42 2.1 0.7 3.2 0.85l0.73 2.4h1.9l0.73 -2.4c1.1 -0.14 2.1 -0.43 3.2 -0.85l1.8 1.7 1.6 -0.95 -0.56 -2.4c0.87 -0.67 1.6 -1.4 2.3 -2.3l2.4 0.56 0.95 -1.6 -1.7 -1.8c0.42 -1 0.7 -2.1 0.85 -3.2l2.4 -0.73v-1.9l-2.3 -0.73c-0.21 -1.1 -0.5 -2.2 -0.86 -3.2l1.6 -1.8 -0.95 -1.6 -2.4 0.56c-0.67 -0.87 -1.4 -1.6 -2.3 -2.4l0.53 -2.4 -1.6 -0.95 -1.8 1.6c-1 -0.36 -2.1 -0.64 -3.2 -0.86l-0.73 -2.3z"

// DebugType returns the halo type the next halo-less token is drawn with in
// debug mode.
func (r *Renderer) DebugType() halo.Type {
	types := halo.Types()
	return types[r.count.Load()%uint64(len(types))]
}

func (r *Renderer) advance() { r.count.Add(1) }

func (r *Renderer) debugHalo() *halo.Halo {
	h := halo.Default(halo.DefaultColour)
	if err := h.SetType(r.DebugType()); err != nil {
		halo.Logger().Debug("render: debug type rejected", "err", err)
	}
	if err := h.SetStyle(halo.StyleTube); err != nil {
		halo.Logger().Debug("render: debug style rejected", "err", err)
	}
	if h.Type() == halo.TypeDrawing {
		if err := h.AddDrawing(debugDrawing); err != nil {
			halo.Logger().Debug("render: debug drawing rejected", "err", err)
		}
	}
	return h
}

var debugBlue = color.NRGBA{B: 255, A: 255}

func (r *Renderer) outlineBounds(c Canvas, loc *token.Location) {
	p := gg.NewPath()
	b := loc.Bounds
	p.Rectangle(b.Min.X, b.Min.Y, b.Width(), b.Height())
	if err := strokePath(c, p, debugBlue, 1); err != nil {
		halo.Logger().Debug("render: bounds outline failed", "err", err)
	}
}
