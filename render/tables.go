package render

import (
	"image/color"
	"math"
	"slices"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// Passes is the number of stroke passes of the glow and tube styles.
const Passes = 12

// specularMark is the tube pass that carries the brightest colour.
const specularMark = Passes * 2 / 3

// GlowStep is one pass of the glow style. Width is a multiple of the base
// stroke width and Opacity the alpha applied to the glow colour.
type GlowStep struct {
	Width   float64
	Opacity float64
}

func easeInSine(t float64) float64  { return 1 - math.Cos(t*math.Pi/2) }
func easeOutSine(t float64) float64 { return math.Sin(t * math.Pi / 2) }

var glowSteps = sync.OnceValue(func() []GlowStep {
	var grow, decay [Passes + 1]float64
	total := 0.0
	for i := range grow {
		t := float64(i)/Passes + 1
		grow[i] = easeInSine(t) - 1
		decay[i] = easeOutSine(t)
		total += decay[i]
	}
	steps := make([]GlowStep, Passes)
	opacity := 1.0
	for i := range steps {
		opacity -= decay[i] / total
		steps[i] = GlowStep{
			Width:   1 + 2*grow[i+1],
			Opacity: max(opacity, 0),
		}
	}
	return steps
})

// GlowSteps returns the glow decay table. Widths grow from just above the
// base width to three times it while the opacity falls towards zero.
func GlowSteps() []GlowStep { return slices.Clone(glowSteps()) }

var tubeWidths = sync.OnceValue(func() []float64 {
	w := make([]float64, Passes)
	for i := range w {
		w[i] = math.Cos(float64(i) * math.Pi / (2 * Passes))
	}
	return w
})

// TubeWidths returns the per-pass stroke width factors of the tube style,
// falling off as a quarter cosine from 1.
func TubeWidths() []float64 { return slices.Clone(tubeWidths()) }

var tubeColours sync.Map // color.NRGBA -> []color.NRGBA

// TubeColours derives the twelve tube pass colours from c. Brightness
// follows a cosine ramp centred on the specular pass; darker inputs are
// lifted more. Results are memoized per input colour.
func TubeColours(c color.NRGBA) []color.NRGBA {
	if v, ok := tubeColours.Load(c); ok {
		return slices.Clone(v.([]color.NRGBA))
	}
	base := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	h, s, v := base.Hsv()
	lift := (1 - v) * 0.7

	out := make([]color.NRGBA, Passes)
	for i := range out {
		d := math.Abs(float64(i - specularMark))
		ramp := math.Cos(d * math.Pi / (2 * Passes))
		r, g, b := colorful.Hsv(h, s, min(v*ramp+lift*ramp*ramp, 1)).Clamped().RGB255()
		out[i] = color.NRGBA{R: r, G: g, B: b, A: c.A}
	}
	v2, _ := tubeColours.LoadOrStore(c, out)
	return slices.Clone(v2.([]color.NRGBA))
}
