package props

import (
	"strconv"
	"strings"

	"github.com/gogpu/halo"
	"github.com/gogpu/halo/svg"
)

// Get returns the properties of h. With delim "json" the result is a
// map[string]any; otherwise it is a "key=value" string joined by delim,
// ";" when delim is empty. Optional properties are present only when set.
func Get(h *halo.Halo, delim string) any {
	colours := make([]string, 0, len(h.Colours()))
	for _, c := range h.Colours() {
		colours = append(colours, halo.FormatColour(c))
	}

	if delim == JSON {
		m := map[string]any{
			"type":     h.Type().String(),
			"style":    h.Style().String(),
			"filled":   h.Filled(),
			"isoflip":  h.IsoFlipped(),
			"facing":   h.UseFacing(),
			"opacity":  h.Opacity(),
			"rotation": h.Rotation(),
			"scale":    h.ScaleFactor(),
			"colours":  colours,
		}
		if h.HasImageID() {
			m["image"] = h.ImageID()
		}
		if h.HasStockImage() {
			m["stockimage"] = h.StockImage().String()
		}
		if h.HasSVGPath() {
			m["drawing"] = h.SVGPaths()
		}
		if fs := h.Filters(); len(fs) > 0 {
			m["filters"] = fs
		}
		return m
	}

	if delim == "" {
		delim = DefaultDelimiter
	}
	entries := []string{
		"type=" + h.Type().String(),
		"style=" + h.Style().String(),
		"filled=" + strconv.FormatBool(h.Filled()),
		"isoflip=" + strconv.FormatBool(h.IsoFlipped()),
		"facing=" + strconv.FormatBool(h.UseFacing()),
		"opacity=" + num(h.Opacity()),
		"rotation=" + num(h.Rotation()),
		"scale=" + num(h.ScaleFactor()),
		"colours=" + strings.Join(colours, ","),
	}
	if h.HasImageID() {
		entries = append(entries, "image="+h.ImageID())
	}
	if h.HasStockImage() {
		entries = append(entries, "stockimage="+h.StockImage().String())
	}
	if h.HasSVGPath() {
		// The string form carries the first path only.
		entries = append(entries, "drawing="+h.SVGPaths()[0])
	}
	if fs := h.Filters(); len(fs) > 0 {
		entries = append(entries, "filters="+strings.Join(fs, ","))
	}
	return strings.Join(entries, delim)
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Types lists the halo type tags. See List for delim.
func Types(delim string) any {
	names := make([]string, 0, len(halo.Types()))
	for _, t := range halo.Types() {
		names = append(names, t.String())
	}
	return List(names, delim)
}

// Styles lists the halo style tags.
func Styles(delim string) any {
	names := make([]string, 0, len(halo.Styles()))
	for _, s := range halo.Styles() {
		names = append(names, s.String())
	}
	return List(names, delim)
}

// Images lists the stock image tags.
func Images(delim string) any {
	names := make([]string, 0, len(halo.StockImages()))
	for _, id := range halo.StockImages() {
		names = append(names, id.String())
	}
	return List(names, delim)
}

// Filters lists the SVG filter names.
func Filters(delim string) any { return List(svg.Filters(), delim) }

// List returns names as a []string when delim is "json" or empty, and as a
// delim-joined string otherwise.
func List(names []string, delim string) any {
	if delim == "" || delim == JSON {
		return names
	}
	return strings.Join(names, delim)
}
