package svg

import (
	"errors"
	"image/color"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/halo"
)

func TestScan(t *testing.T) {
	doc := `<?xml version="1.0"?><!-- <svg fake> --><!DOCTYPE svg><SVG title="a>b" width="10"><g/></SVG>`
	r, ok := Scan(doc)
	if !ok {
		t.Fatal("Scan() found no root")
	}
	if got := doc[r.Start:r.AttrPoint]; got != "<SVG" {
		t.Errorf("tag name = %q", got)
	}
	if got := doc[r.ChildPoint:]; !strings.HasPrefix(got, "<g/>") {
		t.Errorf("child point at %q", got)
	}
	if r.SelfClosing {
		t.Error("root reported self-closing")
	}
}

func TestScanRejects(t *testing.T) {
	for _, doc := range []string{"", "<svgx></svgx>", "<svg width='1'", "<html></html>"} {
		if _, ok := Scan(doc); ok {
			t.Errorf("Scan(%q) found a root", doc)
		}
	}
}

func TestParseAttributes(t *testing.T) {
	r := Parse(`<svg xmlns="http://www.w3.org/2000/svg" ViewBox = '0 0 8 4' data-x="a=b"></svg>`)
	if r == nil {
		t.Fatal("Parse() = nil")
	}
	want := map[string]string{
		"xmlns":   "http://www.w3.org/2000/svg",
		"viewbox": "0 0 8 4",
		"data-x":  "a=b",
	}
	if diff := cmp.Diff(want, r.Attrs); diff != "" {
		t.Errorf("attrs (-want +got):\n%s", diff)
	}
}

func TestDimensionDerivation(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		want  Dimensions
		valid bool
	}{
		{
			name:  "viewbox only",
			doc:   `<svg viewBox="0 0 100 50"></svg>`,
			want:  Dimensions{Width: 100, Height: 50, ViewBox: ViewBox{Width: 100, Height: 50}},
			valid: true,
		},
		{
			name:  "explicit only",
			doc:   `<svg width="40" height="20"></svg>`,
			want:  Dimensions{Width: 40, Height: 20, ViewBox: ViewBox{Width: 40, Height: 20}},
			valid: true,
		},
		{
			name:  "units stripped",
			doc:   `<svg width="40px" height="2.5in" viewBox="1,2,3,4"></svg>`,
			want:  Dimensions{Width: 40, Height: 2.5, ViewBox: ViewBox{X: 1, Y: 2, Width: 3, Height: 4}},
			valid: true,
		},
		{
			name: "percent unresolved",
			doc:  `<svg width="100%" height="20"></svg>`,
			want: Dimensions{Width: -1, Height: 20},
		},
		{
			name: "empty viewbox",
			doc:  `<svg width="10" height="10" viewBox="0 0 0 0"></svg>`,
			want: Dimensions{Width: 10, Height: 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Parse(tt.doc)
			if diff := cmp.Diff(tt.want, r.Dimensions); diff != "" {
				t.Errorf("dimensions (-want +got):\n%s", diff)
			}
			if r.Valid() != tt.valid {
				t.Errorf("Valid() = %v, want %v", r.Valid(), tt.valid)
			}
		})
	}
}

func TestParseIsCached(t *testing.T) {
	doc := `<svg width="3" height="4"></svg>`
	if Parse(doc) != Parse(doc) {
		t.Error("Parse() did not reuse the cached result")
	}
}

var (
	widthAttr  = regexp.MustCompile(`\swidth="([^"]*)"`)
	heightAttr = regexp.MustCompile(`\sheight="([^"]*)"`)
)

func rootText(t *testing.T, doc string) string {
	t.Helper()
	r, ok := Scan(doc)
	if !ok {
		t.Fatalf("no root in %q", doc)
	}
	return doc[r.Start:r.ChildPoint]
}

func TestSetSizeIsIdempotent(t *testing.T) {
	doc := `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10" viewBox="0 0 10 10"><rect stroke-width="2" width="5" height="5"/></svg>`
	out, err := NewEditor(doc).SetSize(20, 30).SetSize(64, 48.5).Document()
	if err != nil {
		t.Fatal(err)
	}
	root := rootText(t, out)
	w := widthAttr.FindAllStringSubmatch(root, -1)
	h := heightAttr.FindAllStringSubmatch(root, -1)
	if len(w) != 1 || len(h) != 1 {
		t.Fatalf("root = %q, want exactly one width and height", root)
	}
	if w[0][1] != "64" || h[0][1] != "48.5" {
		t.Errorf("size = %s x %s, want 64 x 48.5", w[0][1], h[0][1])
	}
	if !strings.Contains(out, `<rect stroke-width="2" width="5" height="5"/>`) {
		t.Errorf("child attributes were touched: %q", out)
	}
	if wd, ht, ok := Size(out); !ok || wd != 64 || ht != 48.5 {
		t.Errorf("Size() = %v, %v, %v", wd, ht, ok)
	}
}

func TestReplaceColours(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`<svg viewBox="0 0 10 10">`)
	for i := range 6 {
		sb.WriteString(`<rect fill="#00` + string(rune('0'+i)) + `"/>`)
	}
	sb.WriteString(`</svg>`)

	red := color.NRGBA{R: 255, A: 255}
	green := color.NRGBA{G: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	out, err := NewEditor(sb.String()).ReplaceColours([]color.Color{red, green, blue}).Document()
	if err != nil {
		t.Fatal(err)
	}

	grad := regexp.MustCompile(`<linearGradient id="colour(\d+)"><stop stop-color="([^"]+)" stop-opacity="([^"]+)"/></linearGradient>`)
	got := map[string]string{}
	for _, m := range grad.FindAllStringSubmatch(out, -1) {
		got[m[1]] = m[2]
	}
	want := map[string]string{
		"0": "#ff0000", "1": "#00ff00", "2": "#0000ff",
		"3": "#0000ff", "4": "#0000ff", "5": "#0000ff",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("gradients (-want +got):\n%s", diff)
	}
	if strings.Count(out, "<linearGradient") != 6 {
		t.Errorf("want 6 gradients in %q", out)
	}
	for i := range 6 {
		ref := `fill="url(#colour` + string(rune('0'+i)) + `)"`
		if !strings.Contains(out, ref) {
			t.Errorf("missing %s", ref)
		}
	}
	if placeholders.MatchString(out) {
		t.Error("placeholders left in document")
	}
	// Definitions precede their first use.
	if strings.Index(out, "<defs>") > strings.Index(out, "url(#colour0)") {
		t.Error("gradient definitions follow their use")
	}
}

func TestReplaceColoursNilIsTransparent(t *testing.T) {
	doc := `<svg viewBox="0 0 1 1"><rect fill="#000"/><rect fill="#001"/></svg>`
	out, err := NewEditor(doc).ReplaceColours([]color.Color{nil, color.White}).Document()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `<linearGradient id="colour0"><stop stop-color="#000000" stop-opacity="0"/>`) {
		t.Errorf("nil colour not transparent: %q", out)
	}
	if !strings.Contains(out, `<linearGradient id="colour1"><stop stop-color="#ffffff" stop-opacity="1"/>`) {
		t.Errorf("white not opaque: %q", out)
	}
}

func TestReplaceColoursNoop(t *testing.T) {
	doc := `<svg viewBox="0 0 1 1"><rect fill="#000000"/></svg>`
	for _, cs := range [][]color.Color{nil, {color.White}} {
		out, err := NewEditor(doc).ReplaceColours(cs).Document()
		if err != nil || out != doc {
			t.Errorf("ReplaceColours(%v) = %q, %v; want unchanged", cs, out, err)
		}
	}
}

func TestAddFilter(t *testing.T) {
	doc := `<svg viewBox="0 0 10 10"><circle r="4"/></svg>`
	out, err := NewEditor(doc).AddFilter("Glow").Document()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(rootText(t, out), `filter="url(#glow)"`) {
		t.Errorf("root missing filter reference: %q", out)
	}
	if !strings.Contains(out, `<filter `+filterUnits) {
		t.Errorf("filter units not forced: %q", out)
	}
	if strings.Count(out, "filterUnits") != 1 {
		t.Errorf("duplicate filterUnits: %q", out)
	}
}

func TestAddFilterUnknown(t *testing.T) {
	_, err := NewEditor(`<svg></svg>`).AddFilter("sparkle").SetSize(1, 1).Document()
	if err == nil {
		t.Fatal("unknown filter accepted")
	}
}

func TestEditorMalformed(t *testing.T) {
	_, err := NewEditor("not svg").SetSize(4, 4).ReplaceColours([]color.Color{color.Black}).Document()
	if !errors.Is(err, ErrNoRoot) {
		t.Errorf("error = %v, want ErrNoRoot", err)
	}
}

func TestEditorSelfClosingRoot(t *testing.T) {
	out, err := NewEditor(`<svg width="1" height="1"/>`).AddFilter("blur").Document()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(out, "</defs> </svg>") {
		t.Errorf("self-closing root not reopened: %q", out)
	}
}

func TestFilters(t *testing.T) {
	names := Filters()
	for _, want := range []string{"blur", "glow", "shadow"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Filters() = %v, missing %q", names, want)
		}
	}
	if _, ok := LookupFilter("filter.SHADOW"); !ok {
		t.Error("LookupFilter with prefix and upper case failed")
	}
}

func TestCatalog(t *testing.T) {
	c := NewCatalog()
	for _, id := range halo.StockImages() {
		doc, raster, ok := c.Lookup(id)
		if !ok || raster != nil {
			t.Errorf("Lookup(%v) = raster %v, ok %v", id, raster, ok)
			continue
		}
		if _, _, valid := Size(doc); !valid {
			t.Errorf("template %v has no valid dimensions", id)
		}
	}
	if _, _, ok := c.Lookup(halo.StockNone); ok {
		t.Error("Lookup(StockNone) succeeded")
	}
}

func TestRasterizeTemplate(t *testing.T) {
	doc, _, _ := NewCatalog().Lookup(halo.StockRingStack)
	doc, err := NewEditor(doc).ReplaceColours([]color.Color{color.NRGBA{R: 200, A: 255}}).Document()
	if err != nil {
		t.Fatal(err)
	}
	img, err := Rasterize(doc, 64, 64)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Fatalf("bounds = %v", b)
	}
	if _, err := Rasterize(doc, 0, 10); !errors.Is(err, ErrSize) {
		t.Errorf("Rasterize(0, 10) error = %v", err)
	}
}
