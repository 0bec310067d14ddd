package halo

import (
	"fmt"
	"image/color"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// DefaultColour is the colour of a freshly created halo.
var DefaultColour = color.NRGBA{R: 0xff, G: 0xc8, B: 0x00, A: 0xff}

var black = color.NRGBA{A: 0xff}

// extra names accepted on top of the SVG 1.1 named colours.
var extraColours = map[string]color.NRGBA{
	"transparent": {},
	"darkgray":    {R: 0x40, G: 0x40, B: 0x40, A: 0xff},
	"lightgray":   {R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff},
}

// ResolveColour converts a colour name or literal to a colour. Named colours
// are matched case-insensitively; "#rgb", "#rrggbb", "#aarrggbb", "0x..." and
// decimal ARGB integers are parsed. Unrecognized input yields opaque black.
func ResolveColour(s string) color.NRGBA {
	c, ok := parseColour(s)
	if !ok {
		Logger().Debug("unrecognized colour, using black", "colour", s)
		return black
	}
	return c
}

func parseColour(s string) (color.NRGBA, bool) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return color.NRGBA{}, false
	}
	if c, ok := extraColours[name]; ok {
		return c, true
	}
	if c, ok := colornames.Map[name]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}, true
	}

	var digits string
	switch {
	case strings.HasPrefix(name, "#"):
		digits = name[1:]
	case strings.HasPrefix(name, "0x"):
		digits = name[2:]
	default:
		v, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			return color.NRGBA{}, false
		}
		c := FromARGB(int32(v))
		if v >= 0 && v <= 0xffffff {
			c.A = 0xff
		}
		return c, true
	}

	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	switch len(digits) {
	case 6:
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
	case 8:
		return color.NRGBA{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
	}
	return color.NRGBA{}, false
}

// FormatColour writes c as #rrggbb, or #aarrggbb when it is not opaque.
func FormatColour(c color.Color) string {
	n := toNRGBA(c)
	if n.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.A, n.R, n.G, n.B)
}

// ARGB packs c into the raw integer colour value used on the wire.
func ARGB(c color.NRGBA) int32 {
	return int32(uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B))
}

// FromARGB unpacks a raw integer colour value.
func FromARGB(v int32) color.NRGBA {
	u := uint32(v)
	return color.NRGBA{A: uint8(u >> 24), R: uint8(u >> 16), G: uint8(u >> 8), B: uint8(u)}
}

func toNRGBA(c color.Color) color.NRGBA {
	if n, ok := c.(color.NRGBA); ok {
		return n
	}
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

// fallbackColour returns a saturated colour whose hue is chosen
// pseudo-randomly from seed, so a given halo always gets the same one.
func fallbackColour(seed uint64) color.NRGBA {
	r := rand.New(rand.NewPCG(seed, 0x9e3779b97f4a7c15))
	c := colorful.Hsv(r.Float64()*360, 0.85, 0.95).Clamped()
	cr, cg, cb := c.RGB255()
	return color.NRGBA{R: cr, G: cg, B: cb, A: 0xff}
}
