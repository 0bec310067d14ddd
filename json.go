package halo

import (
	"encoding/json"
	"fmt"
)

type jsonHalo struct {
	Type        string   `json:"type"`
	Style       string   `json:"style"`
	StockImage  string   `json:"stockImage,omitempty"`
	Filled      bool     `json:"filled,omitempty"`
	IsoFlipped  bool     `json:"isoFlipped,omitempty"`
	UseFacing   bool     `json:"useFacing,omitempty"`
	Opacity     float64  `json:"opacity"`
	ScaleFactor float64  `json:"scaleFactor"`
	Rotation    float64  `json:"rotation"`
	ImageRef    string   `json:"imageReference,omitempty"`
	Colours     []string `json:"colours,omitempty"`
	SVGPaths    []string `json:"svgPaths,omitempty"`
	Filters     []string `json:"filters,omitempty"`
}

// MarshalJSON writes the halo with string enum tags and #aarrggbb colours.
func (h *Halo) MarshalJSON() ([]byte, error) {
	j := jsonHalo{
		Type:        h.typ.String(),
		Style:       h.style.String(),
		StockImage:  h.stockImage.String(),
		Filled:      h.filled,
		IsoFlipped:  h.isoFlipped,
		UseFacing:   h.useFacing,
		Opacity:     h.opacity,
		ScaleFactor: h.scaleFactor,
		Rotation:    h.rotation,
		ImageRef:    h.imageRef,
		SVGPaths:    h.rawPaths,
		Filters:     h.filters,
	}
	for _, c := range h.colours {
		j.Colours = append(j.Colours, FormatColour(c))
	}
	return json.Marshal(j)
}

// UnmarshalJSON reads a halo written by MarshalJSON. Drawing geometry is
// parsed from the path data.
func (h *Halo) UnmarshalJSON(b []byte) error {
	var j jsonHalo
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	n := New()
	var err error
	if n.typ, err = ParseType(j.Type); err != nil {
		return err
	}
	if n.style, err = ParseStyle(j.Style); err != nil {
		return err
	}
	if n.stockImage, err = ParseStockImage(j.StockImage); err != nil {
		return err
	}
	n.filled, n.isoFlipped, n.useFacing = j.Filled, j.IsoFlipped, j.UseFacing
	n.SetOpacity(j.Opacity)
	n.SetScaleFactor(j.ScaleFactor)
	n.SetRotation(j.Rotation)
	n.imageRef = j.ImageRef
	n.colours = nil
	for _, s := range j.Colours {
		c, ok := parseColour(s)
		if !ok {
			return fmt.Errorf("halo: bad colour %q", s)
		}
		n.colours = append(n.colours, c)
	}
	if err := n.SetDrawings(j.SVGPaths); err != nil {
		return err
	}
	if len(j.SVGPaths) == 0 {
		n.ClearDrawings()
	}
	n.filters = j.Filters
	*h = *n
	return nil
}
