// Package token holds the token and on-screen placement data a halo is
// fitted to.
package token

import (
	"image/color"

	"github.com/gogpu/gg"
	"github.com/google/uuid"

	"github.com/gogpu/halo"
	"github.com/gogpu/halo/grid"
)

// Shape classifies how a token image is drawn.
type Shape int

const (
	TopDown Shape = iota
	Figure
	Circle
	Square
)

// Token is the subset of a game token read by halo resolution and rendering.
type Token struct {
	ID   uuid.UUID
	Name string

	// Halo is the configured halo; nil when only HaloColour is set.
	Halo       *halo.Halo
	HaloColour *color.NRGBA

	Shape      Shape
	FlippedIso bool

	// Facing is in radians and only meaningful when HasFacing is set.
	Facing    float64
	HasFacing bool

	// Anchor offsets the image from the footprint centre, in map units.
	Anchor gg.Point

	Footprint grid.Footprint
}

// New returns a single-cell token with a fresh ID.
func New(name string) *Token {
	return &Token{ID: uuid.New(), Name: name, Footprint: grid.SingleCell()}
}

// HasHalo reports whether the token carries a halo or a halo colour.
func (t *Token) HasHalo() bool { return t.Halo != nil || t.HaloColour != nil }

// EffectiveHalo returns the configured halo, or a default halo in
// HaloColour when only a colour is set. It returns nil when neither is.
func (t *Token) EffectiveHalo() *halo.Halo {
	switch {
	case t.Halo != nil:
		return t.Halo
	case t.HaloColour != nil:
		return halo.Default(*t.HaloColour)
	}
	return nil
}

// Location is where a token is drawn in the current frame, in screen pixels.
type Location struct {
	Token *Token

	// Center is the screen position of the footprint centre.
	Center gg.Point

	// ScaledWidth and ScaledHeight are the on-screen token size, zoom applied.
	ScaledWidth, ScaledHeight float64

	// Bounds caches the on-screen rectangle covered by the token image.
	Bounds gg.Rect
}

// NewLocation places t at center with the given on-screen size.
func NewLocation(t *Token, center gg.Point, w, h float64) *Location {
	return &Location{
		Token:        t,
		Center:       center,
		ScaledWidth:  w,
		ScaledHeight: h,
		Bounds: gg.Rect{
			Min: gg.Pt(center.X-w/2, center.Y-h/2),
			Max: gg.Pt(center.X+w/2, center.Y+h/2),
		},
	}
}
