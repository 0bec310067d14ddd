package halo

import (
	"image/color"
	"math"
	"testing"

	"github.com/gogpu/gg"
)

func TestNewReturnsFreshDefaults(t *testing.T) {
	a := New()
	b := New()
	if a == b {
		t.Fatal("New() returned the same instance twice")
	}
	a.AddColour(color.White)
	if len(b.Colours()) != 1 {
		t.Errorf("mutating one default halo changed another: %v", b.Colours())
	}
	if b.Type() != TypeCell || b.Style() != StyleLine {
		t.Errorf("defaults = %v/%v, want CELL/LINE", b.Type(), b.Style())
	}
	if b.ScaleFactor() != DefaultScaleFactor || b.Opacity() != 1 {
		t.Errorf("scale/opacity = %v/%v", b.ScaleFactor(), b.Opacity())
	}
}

func TestEqualAndHash(t *testing.T) {
	build := func() *Halo {
		h := New()
		_ = h.SetType(TypeCircle)
		_ = h.SetStyle(StyleTube)
		h.SetRotation(0.5)
		h.AddColour(color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		if err := h.AddDrawing("M 0 0 L 10 0 L 10 10 Z"); err != nil {
			t.Fatal(err)
		}
		return h
	}
	a, b := build(), build()
	if !a.Equal(b) {
		t.Fatal("identically built halos are not equal")
	}
	if a.Hash() != b.Hash() {
		t.Error("equal halos have different hashes")
	}

	tests := []struct {
		name   string
		mutate func(h *Halo)
	}{
		{"type", func(h *Halo) { _ = h.SetType(TypeSnowflake) }},
		{"style", func(h *Halo) { _ = h.SetStyle(StyleGlow) }},
		{"filled", func(h *Halo) { h.SetFilled(true) }},
		{"iso", func(h *Halo) { h.SetIsoFlipped(true) }},
		{"facing", func(h *Halo) { h.SetUseFacing(true) }},
		{"opacity", func(h *Halo) { h.SetOpacity(0.3) }},
		{"image", func(h *Halo) { h.SetImageID("abc") }},
		{"scale", func(h *Halo) { h.SetScaleFactor(2) }},
		{"rotation", func(h *Halo) { h.SetRotation(1) }},
		{"stock", func(h *Halo) { _ = h.SetStockImage(StockSpike) }},
		{"colour", func(h *Halo) { h.AddColour(color.Black) }},
		{"drawing", func(h *Halo) { _ = h.AddDrawing("M 0 0 L 5 5") }},
		{"filters", func(h *Halo) { h.SetFilters([]string{"glow"}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := a.Clone()
			tt.mutate(c)
			if a.Equal(c) {
				t.Error("halos still equal after mutation")
			}
			if a.Hash() == c.Hash() {
				t.Error("hash unchanged after mutation")
			}
		})
	}
}

func TestColourFallback(t *testing.T) {
	h := New()
	h.SetColours(nil)
	c1 := h.Colour()
	if c1.A != 0xff {
		t.Errorf("fallback colour alpha = %d, want opaque", c1.A)
	}
	if c2 := h.Colour(); c1 != c2 {
		t.Errorf("fallback colour not stable: %v then %v", c1, c2)
	}
}

func TestRemoveColour(t *testing.T) {
	h := New()
	red := color.NRGBA{R: 255, A: 255}
	h.AddColour(red)
	if !h.RemoveColour(red) {
		t.Fatal("RemoveColour() = false for present colour")
	}
	if h.RemoveColour(red) {
		t.Error("RemoveColour() = true for absent colour")
	}
	if got := len(h.Colours()); got != 1 {
		t.Errorf("len(Colours()) = %d, want 1", got)
	}
}

func TestAddDrawingCentresPath(t *testing.T) {
	h := New()
	if err := h.AddDrawing("M 0 0 L 10 0 L 10 20 L 0 20 Z"); err != nil {
		t.Fatal(err)
	}
	b := h.Drawing().BoundingBox()
	want := gg.Rect{Min: gg.Pt(-5, -10), Max: gg.Pt(5, 10)}
	if b != want {
		t.Errorf("bounds = %+v, want %+v", b, want)
	}
	if len(h.Drawings()) != len(h.SVGPaths()) {
		t.Error("drawings and path data out of step")
	}
}

func TestAddDrawingRejectsEmpty(t *testing.T) {
	h := New()
	if err := h.AddDrawing("   "); err == nil {
		t.Fatal("AddDrawing(blank) returned nil error")
	}
	if h.HasDrawing() || h.HasSVGPath() {
		t.Error("failed AddDrawing modified the halo")
	}
}

func TestSetOpacityClamps(t *testing.T) {
	h := New()
	h.SetOpacity(4)
	if h.Opacity() != 1 {
		t.Errorf("Opacity() = %v, want 1", h.Opacity())
	}
	h.SetOpacity(-1)
	if h.Opacity() != 0 {
		t.Errorf("Opacity() = %v, want 0", h.Opacity())
	}
}

func TestSettersRejectUnknownEnums(t *testing.T) {
	h := New()
	if err := h.SetType(Type(99)); err == nil {
		t.Error("SetType(99) accepted")
	}
	if err := h.SetStyle(Style(-1)); err == nil {
		t.Error("SetStyle(-1) accepted")
	}
	if err := h.SetStockImage(StockImage(42)); err == nil {
		t.Error("SetStockImage(42) accepted")
	}
}

func TestRotationNegativeZeroHashesAsZero(t *testing.T) {
	a, b := New(), New()
	a.SetRotation(0)
	b.SetRotation(math.Copysign(0, -1))
	if !a.Equal(b) {
		t.Fatal("0 and -0 rotations are not Equal")
	}
	if a.Hash() != b.Hash() {
		t.Error("Equal halos hash differently")
	}
	if math.Signbit(b.Rotation()) {
		t.Error("Rotation() kept the sign of -0")
	}
}

func TestRotationIgnoresNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		h := New()
		h.SetRotation(1.5)
		h.SetRotation(v)
		if h.Rotation() != 1.5 {
			t.Errorf("SetRotation(%v) changed rotation to %v", v, h.Rotation())
		}
		if !h.Equal(h.Clone()) || h.Hash() != h.Clone().Hash() {
			t.Errorf("SetRotation(%v): halo differs from its clone", v)
		}
	}
}

func TestOpacityNegativeZero(t *testing.T) {
	a, b := New(), New()
	a.SetOpacity(0)
	b.SetOpacity(math.Copysign(0, -1))
	if !a.Equal(b) || a.Hash() != b.Hash() {
		t.Error("0 and -0 opacity differ")
	}
}
