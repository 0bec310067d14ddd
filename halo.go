// Package halo describes the decorative surround drawn around a game token.
//
// A Halo is a plain value: the shape or source it is built from (Type), the
// paint strategy (Style), colours and placement adjustments. Sub-packages turn
// it into pixels:
//
//   - grid builds the per-topology cell outlines and footprint geometry
//   - svg edits and rasterizes stock SVG templates without a DOM
//   - store resolves a halo to a cached renderable artifact
//   - render places the artifact on a token and paints it
//   - props reads and writes halo properties as text
package halo

import (
	"encoding/binary"
	"hash/fnv"
	"image/color"
	"math"
	"slices"

	"github.com/gogpu/gg"
)

// DefaultScaleFactor overscans the token so the halo surrounds it.
const DefaultScaleFactor = 1.15

// Halo describes one halo configuration. The zero value is not useful; use New.
// A Halo is not safe for concurrent mutation.
type Halo struct {
	typ         Type
	style       Style
	filled      bool
	isoFlipped  bool
	useFacing   bool
	opacity     float64
	imageRef    string
	scaleFactor float64
	rotation    float64
	stockImage  StockImage
	colours     []color.NRGBA
	drawings    []*gg.Path
	rawPaths    []string
	filters     []string
}

// New returns a fresh default halo: a cell outline painted as a line in the
// default colour.
func New() *Halo {
	return &Halo{
		typ:         TypeCell,
		style:       StyleLine,
		opacity:     1,
		scaleFactor: DefaultScaleFactor,
		colours:     []color.NRGBA{DefaultColour},
	}
}

// Default returns a default halo painted in c.
func Default(c color.Color) *Halo {
	h := New()
	h.colours[0] = toNRGBA(c)
	return h
}

func (h *Halo) Type() Type { return h.typ }

// SetType sets the halo type. Unknown values are rejected.
func (h *Halo) SetType(t Type) error {
	if !t.Valid() {
		return &EnumError{Kind: "type", Value: t.String(), Allowed: typeTags[:]}
	}
	h.typ = t
	return nil
}

func (h *Halo) Style() Style { return h.style }

// SetStyle sets the paint strategy. Unknown values are rejected.
func (h *Halo) SetStyle(s Style) error {
	if !s.Valid() {
		return &EnumError{Kind: "style", Value: s.String(), Allowed: styleTags[:]}
	}
	h.style = s
	return nil
}

func (h *Halo) Filled() bool         { return h.filled }
func (h *Halo) SetFilled(v bool)     { h.filled = v }
func (h *Halo) IsoFlipped() bool     { return h.isoFlipped }
func (h *Halo) SetIsoFlipped(v bool) { h.isoFlipped = v }
func (h *Halo) UseFacing() bool      { return h.useFacing }
func (h *Halo) SetUseFacing(v bool)  { h.useFacing = v }

// Opacity is in [0, 1].
func (h *Halo) Opacity() float64 { return h.opacity }

// SetOpacity clamps v to [0, 1]. NaN means fully opaque.
func (h *Halo) SetOpacity(v float64) {
	if math.IsNaN(v) {
		v = 1
	}
	h.opacity = positiveZero(min(max(v, 0), 1))
}

// ImageID is the content address of a user image, empty when unset.
func (h *Halo) ImageID() string       { return h.imageRef }
func (h *Halo) SetImageID(ref string) { h.imageRef = ref }
func (h *Halo) HasImageID() bool      { return h.imageRef != "" }

// ScaleFactor multiplies the fitted size of the halo.
func (h *Halo) ScaleFactor() float64 { return h.scaleFactor }

// SetScaleFactor ignores non-positive values.
func (h *Halo) SetScaleFactor(v float64) {
	if v > 0 && !math.IsInf(v, 0) {
		h.scaleFactor = v
	}
}

// Rotation is in radians.
func (h *Halo) Rotation() float64 { return h.rotation }

// SetRotation ignores NaN and infinite angles. Negative zero is stored as
// zero so that equal halos hash alike.
func (h *Halo) SetRotation(r float64) {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return
	}
	h.rotation = positiveZero(r)
}

func positiveZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}

func (h *Halo) StockImage() StockImage { return h.stockImage }

// SetStockImage sets the catalog entry; StockNone clears it.
func (h *Halo) SetStockImage(id StockImage) error {
	if !id.Valid() {
		return &EnumError{Kind: "stock image", Value: id.String(), Allowed: stockTags[1:]}
	}
	h.stockImage = id
	return nil
}

func (h *Halo) HasStockImage() bool { return h.stockImage != StockNone }

// Colour returns the primary colour. When the colour list is empty a
// pseudo-random colour derived from the rest of the halo is returned instead,
// so the result is always paintable.
func (h *Halo) Colour() color.NRGBA {
	if len(h.colours) > 0 {
		return h.colours[0]
	}
	return fallbackColour(h.Hash())
}

// Colours returns a copy of the colour list.
func (h *Halo) Colours() []color.NRGBA { return slices.Clone(h.colours) }

// SetColours replaces the colour list.
func (h *Halo) SetColours(cs []color.NRGBA) { h.colours = slices.Clone(cs) }

// AddColour appends c to the colour list.
func (h *Halo) AddColour(c color.Color) { h.colours = append(h.colours, toNRGBA(c)) }

// RemoveColour removes the first occurrence of c and reports whether it was found.
func (h *Halo) RemoveColour(c color.Color) bool {
	n := toNRGBA(c)
	i := slices.Index(h.colours, n)
	if i < 0 {
		return false
	}
	h.colours = slices.Delete(h.colours, i, i+1)
	return true
}

// Drawings returns the parsed drawing geometries. Callers must not modify them.
func (h *Halo) Drawings() []*gg.Path { return slices.Clone(h.drawings) }

// Drawing returns the first drawing, or nil.
func (h *Halo) Drawing() *gg.Path {
	if len(h.drawings) == 0 {
		return nil
	}
	return h.drawings[0]
}

// SVGPaths returns the path data the drawings were parsed from.
func (h *Halo) SVGPaths() []string { return slices.Clone(h.rawPaths) }

func (h *Halo) HasDrawing() bool { return len(h.drawings) > 0 }
func (h *Halo) HasSVGPath() bool { return len(h.rawPaths) > 0 }

// AddDrawing parses d and appends it. On error the halo is unchanged.
func (h *Halo) AddDrawing(d string) error {
	p, err := ParsePath(d)
	if err != nil {
		return err
	}
	h.drawings = append(h.drawings, p)
	h.rawPaths = append(h.rawPaths, d)
	return nil
}

// SetDrawings replaces all drawings. On error the halo is unchanged.
func (h *Halo) SetDrawings(ds []string) error {
	paths := make([]*gg.Path, 0, len(ds))
	for _, d := range ds {
		p, err := ParsePath(d)
		if err != nil {
			return err
		}
		paths = append(paths, p)
	}
	h.drawings = paths
	h.rawPaths = slices.Clone(ds)
	return nil
}

func (h *Halo) ClearDrawings() {
	h.drawings = nil
	h.rawPaths = nil
}

// Filters lists the SVG filters applied to stock image halos.
func (h *Halo) Filters() []string         { return slices.Clone(h.filters) }
func (h *Halo) SetFilters(names []string) { h.filters = slices.Clone(names) }

// Clone returns a deep copy. Drawing geometries are shared since they are
// never modified after parsing.
func (h *Halo) Clone() *Halo {
	c := *h
	c.colours = slices.Clone(h.colours)
	c.drawings = slices.Clone(h.drawings)
	c.rawPaths = slices.Clone(h.rawPaths)
	c.filters = slices.Clone(h.filters)
	return &c
}

// Equal reports whether h and o have identical attributes.
func (h *Halo) Equal(o *Halo) bool {
	if h == o {
		return true
	}
	if h == nil || o == nil {
		return false
	}
	return h.typ == o.typ &&
		h.style == o.style &&
		h.filled == o.filled &&
		h.isoFlipped == o.isoFlipped &&
		h.useFacing == o.useFacing &&
		sameFloat(h.opacity, o.opacity) &&
		h.imageRef == o.imageRef &&
		sameFloat(h.scaleFactor, o.scaleFactor) &&
		sameFloat(h.rotation, o.rotation) &&
		h.stockImage == o.stockImage &&
		slices.Equal(h.colours, o.colours) &&
		slices.Equal(h.rawPaths, o.rawPaths) &&
		slices.Equal(h.filters, o.filters) &&
		slices.EqualFunc(h.drawings, o.drawings, pathsEqual)
}

// sameFloat compares bit patterns, matching what Hash digests.
func sameFloat(a, b float64) bool { return math.Float64bits(a) == math.Float64bits(b) }

func pathsEqual(a, b *gg.Path) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return slices.Equal(a.Elements(), b.Elements())
}

// Hash returns a 64-bit FNV-1a digest of every attribute. Equal halos have
// equal hashes; the converse does not hold, so use Equal to confirm a match.
func (h *Halo) Hash() uint64 {
	d := fnv.New64a()
	var buf [8]byte
	u := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		d.Write(buf[:])
	}
	f := func(v float64) { u(math.Float64bits(v)) }
	b := func(v bool) {
		if v {
			u(1)
		} else {
			u(0)
		}
	}
	s := func(v string) {
		u(uint64(len(v)))
		d.Write([]byte(v))
	}

	u(uint64(h.typ))
	u(uint64(h.style))
	b(h.filled)
	b(h.isoFlipped)
	b(h.useFacing)
	f(h.opacity)
	s(h.imageRef)
	f(h.scaleFactor)
	f(h.rotation)
	u(uint64(h.stockImage))
	u(uint64(len(h.colours)))
	for _, c := range h.colours {
		u(uint64(uint32(ARGB(c))))
	}
	u(uint64(len(h.rawPaths)))
	for _, p := range h.rawPaths {
		s(p)
	}
	u(uint64(len(h.filters)))
	for _, n := range h.filters {
		s(n)
	}
	return d.Sum64()
}
