package svg

import (
	"errors"
	"fmt"
	"image/color"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gogpu/halo"
)

// ErrNoRoot is returned when a document has no usable root element.
var ErrNoRoot = errors.New("svg: no root element")

const filterUnits = `filterUnits="userSpaceOnUse" primitiveUnits="objectBoundingBox"`

var (
	sizeAttr     = regexp.MustCompile(`(?i)\s(width|height)\s*=\s*("[^"]*"|'[^']*')`)
	unitsAttr    = regexp.MustCompile(`(?i)\s(filterUnits|primitiveUnits)\s*=\s*("[^"]*"|'[^']*')`)
	filterOpen   = regexp.MustCompile(`(?i)<filter\b`)
	placeholders = regexp.MustCompile(`"#0(\d\d)"`)
)

type where int

const (
	atAttrs where = iota
	atChildren
)

type edit struct {
	at   where
	text string
}

// Editor applies structural edits to a document without building a tree.
// Edits are queued against the root's insertion points and written in one
// pass from the highest index to the lowest. Methods chain; the first error
// sticks and is reported by Document.
type Editor struct {
	doc     string
	root    RootTag
	pending []edit
	err     error
}

// NewEditor starts an edit session on doc.
func NewEditor(doc string) *Editor {
	e := &Editor{doc: doc}
	e.locate()
	return e
}

func (e *Editor) locate() {
	root, ok := Scan(e.doc)
	if !ok {
		e.err = ErrNoRoot
		return
	}
	e.root = root
}

// apply writes pending edits and recomputes the insertion points.
func (e *Editor) apply() {
	if e.err != nil || len(e.pending) == 0 {
		return
	}
	type ins struct {
		index int
		seq   int
		text  string
	}
	var list []ins
	var children []string
	for i, p := range e.pending {
		switch p.at {
		case atAttrs:
			list = append(list, ins{e.root.AttrPoint, i, " " + p.text + " "})
		case atChildren:
			children = append(children, p.text)
		}
	}
	if len(children) > 0 {
		text := " " + strings.Join(children, " ") + " "
		if e.root.SelfClosing {
			// Reopen the root so it can hold children.
			e.doc = e.doc[:e.root.ChildPoint-2] + ">" + text + "</svg>" + e.doc[e.root.ChildPoint:]
		} else {
			list = append(list, ins{e.root.ChildPoint, len(e.pending), text})
		}
	}
	slices.SortFunc(list, func(a, b ins) int {
		if a.index != b.index {
			return b.index - a.index
		}
		return b.seq - a.seq
	})
	doc := e.doc
	for _, in := range list {
		doc = doc[:in.index] + in.text + doc[in.index:]
	}
	e.doc = doc
	e.pending = e.pending[:0]
	e.locate()
}

// AddFilter injects the named filter from the filter catalog and applies it
// to the root element. Unknown names set an error.
func (e *Editor) AddFilter(name string) *Editor {
	if e.err != nil {
		return e
	}
	frag, ok := LookupFilter(name)
	if !ok {
		e.err = fmt.Errorf("svg: unknown filter %q", name)
		return e
	}
	id := filterID(frag, name)
	frag = unitsAttr.ReplaceAllString(frag, "")
	frag = filterOpen.ReplaceAllLiteralString(frag, "<filter "+filterUnits)
	e.pending = append(e.pending,
		edit{atChildren, "<defs>" + frag + "</defs>"},
		edit{atAttrs, fmt.Sprintf(`filter="url(#%s)"`, id)},
	)
	return e
}

func filterID(frag, name string) string {
	if open := filterOpen.FindStringIndex(frag); open != nil {
		if end := strings.IndexByte(frag[open[1]:], '>'); end >= 0 {
			if id, ok := attrs(frag[open[1] : open[1]+end])["id"]; ok {
				return id
			}
		}
	}
	return strings.ToLower(strings.TrimPrefix(name, filterPrefix))
}

// SetSize replaces the width and height of the root element.
func (e *Editor) SetSize(w, h float64) *Editor {
	e.apply()
	if e.err != nil {
		return e
	}
	attrText := e.doc[e.root.AttrPoint:e.root.ChildPoint]
	stripped := sizeAttr.ReplaceAllString(attrText, "")
	e.doc = e.doc[:e.root.AttrPoint] + stripped + e.doc[e.root.ChildPoint:]
	e.locate()
	e.pending = append(e.pending, edit{atAttrs, fmt.Sprintf(`width="%s" height="%s"`, num(w), num(h))})
	return e
}

// ReplaceColours binds the colour placeholders "#000" to "#099" to colours.
// Placeholder n takes colours[n], or the last colour when the list is
// shorter. A nil entry makes its slot fully transparent. An empty list
// leaves the document unchanged.
func (e *Editor) ReplaceColours(colours []color.Color) *Editor {
	e.apply()
	if e.err != nil || len(colours) == 0 {
		return e
	}
	maxIndex := -1
	for _, m := range placeholders.FindAllStringSubmatch(e.doc, -1) {
		n, _ := strconv.Atoi(m[1])
		maxIndex = max(maxIndex, n)
	}
	if maxIndex < 0 {
		return e
	}

	var defs strings.Builder
	defs.WriteString("<defs>")
	for i := 0; i <= maxIndex; i++ {
		c := colours[min(i, len(colours)-1)]
		fill, alpha := "#000000", 0.0
		if c != nil {
			n := color.NRGBAModel.Convert(c).(color.NRGBA)
			fill = fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
			alpha = float64(n.A) / 255
		}
		fmt.Fprintf(&defs, `<linearGradient id="colour%d"><stop stop-color="%s" stop-opacity="%s"/></linearGradient>`,
			i, fill, num(alpha))
	}
	defs.WriteString("</defs>")

	e.doc = placeholders.ReplaceAllStringFunc(e.doc, func(s string) string {
		n, _ := strconv.Atoi(s[3:5])
		return fmt.Sprintf(`"url(#colour%d)"`, n)
	})
	e.locate()
	if e.err == nil {
		e.pending = append(e.pending, edit{atChildren, defs.String()})
	}
	return e
}

// Document applies pending edits and returns the result. On error the
// caller should skip the enhancement and use the unedited document.
func (e *Editor) Document() (string, error) {
	e.apply()
	if e.err != nil {
		halo.Logger().Warn("svg edit failed", "err", e.err)
		return "", e.err
	}
	return e.doc, nil
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
