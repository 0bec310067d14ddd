package svg

import (
	"strconv"
	"strings"
	"sync"
)

// ViewBox is the user coordinate system of a document.
type ViewBox struct {
	X, Y, Width, Height float64
}

// Empty reports whether the box has no area.
func (v ViewBox) Empty() bool { return v.Width <= 0 || v.Height <= 0 }

// Dimensions are the intrinsic size of a document. Width or Height is -1
// when it could not be resolved.
type Dimensions struct {
	Width, Height float64
	ViewBox       ViewBox
}

// Valid reports whether both axes are resolved and the view box has area.
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0 && !d.ViewBox.Empty()
}

// Root is the parsed root element of a document.
type Root struct {
	Attrs map[string]string
	Dimensions
}

var parsed sync.Map // string -> *Root

// Parse reads the attributes of the root element and derives the intrinsic
// dimensions. Results are cached per document text and must not be modified.
// It returns nil when the document has no root element.
func Parse(doc string) *Root {
	if v, ok := parsed.Load(doc); ok {
		return v.(*Root)
	}
	tag, ok := Scan(doc)
	if !ok {
		return nil
	}
	r := &Root{Attrs: attrs(tag.Attributes(doc))}
	r.Dimensions = derive(r.Attrs)
	v, _ := parsed.LoadOrStore(doc, r)
	return v.(*Root)
}

// Size returns the intrinsic width and height of doc.
func Size(doc string) (w, h float64, ok bool) {
	r := Parse(doc)
	if r == nil || !r.Valid() {
		return 0, 0, false
	}
	return r.Width, r.Height, true
}

func derive(a map[string]string) Dimensions {
	d := Dimensions{Width: length(a["width"]), Height: length(a["height"])}
	vb, hasVB := viewBox(a["viewbox"])
	if hasVB {
		d.ViewBox = vb
		if d.Width < 0 {
			d.Width = vb.Width
		}
		if d.Height < 0 {
			d.Height = vb.Height
		}
	} else if d.Width > 0 && d.Height > 0 {
		d.ViewBox = ViewBox{Width: d.Width, Height: d.Height}
	}
	return d
}

// length parses a length, dropping absolute unit suffixes. Percentages and
// garbage are unresolved.
func length(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, "%") {
		return -1
	}
	s = strings.TrimRight(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return -1
	}
	return v
}

func viewBox(s string) (ViewBox, bool) {
	f := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r' })
	if len(f) != 4 {
		return ViewBox{}, false
	}
	var n [4]float64
	for i, p := range f {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return ViewBox{}, false
		}
		n[i] = v
	}
	return ViewBox{X: n[0], Y: n[1], Width: n[2], Height: n[3]}, true
}
