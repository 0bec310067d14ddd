package halo

import (
	"fmt"
	"strings"
)

// Type selects the shape or source a halo is built from.
// Ordinals are part of the wire format and must not be reordered.
type Type int

const (
	TypeCell Type = iota
	TypeCircle
	TypeRectangle
	TypeRoundedRectangle
	TypeSnowflake
	TypeFootprint
	TypeFootprintBounds
	TypeFootprintConvex
	TypeRoundedFootprintBounds
	TypeDrawing
	TypeImage
	TypeStockImage
)

var typeTags = [...]string{
	TypeCell:                   "CELL",
	TypeCircle:                 "CIRCLE",
	TypeRectangle:              "RECTANGLE",
	TypeRoundedRectangle:       "ROUNDED_RECTANGLE",
	TypeSnowflake:              "SNOWFLAKE",
	TypeFootprint:              "FOOTPRINT",
	TypeFootprintBounds:        "FOOTPRINT_BOUNDS",
	TypeFootprintConvex:        "FOOTPRINT_CONVEX",
	TypeRoundedFootprintBounds: "ROUNDED_FOOTPRINT_BOUNDS",
	TypeDrawing:                "DRAWING",
	TypeImage:                  "IMAGE",
	TypeStockImage:             "STOCK_IMAGE",
}

// Types returns every halo type in ordinal order.
func Types() []Type {
	out := make([]Type, len(typeTags))
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

// Valid reports whether t is a declared type.
func (t Type) Valid() bool { return t >= 0 && int(t) < len(typeTags) }

// String returns the stable tag of t.
func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeTags[t]
}

// IsFootprint reports whether the type is derived from the token footprint.
func (t Type) IsFootprint() bool {
	switch t {
	case TypeFootprint, TypeFootprintBounds, TypeFootprintConvex, TypeRoundedFootprintBounds:
		return true
	}
	return false
}

// IsImage reports whether the type resolves to imagery rather than geometry.
func (t Type) IsImage() bool { return t == TypeImage || t == TypeStockImage }

// ParseType parses a type tag, ignoring case and accepting '-' or ' ' for '_'.
func ParseType(s string) (Type, error) {
	i, ok := lookupTag(typeTags[:], s)
	if !ok {
		return 0, &EnumError{Kind: "type", Value: s, Allowed: typeTags[:]}
	}
	return Type(i), nil
}

// Style selects the paint strategy for shape-based halos.
type Style int

const (
	StyleLine Style = iota
	StyleGlow
	StyleTube
)

var styleTags = [...]string{
	StyleLine: "LINE",
	StyleGlow: "GLOW",
	StyleTube: "TUBE",
}

// Styles returns every style in ordinal order.
func Styles() []Style { return []Style{StyleLine, StyleGlow, StyleTube} }

// Valid reports whether s is a declared style.
func (s Style) Valid() bool { return s >= 0 && int(s) < len(styleTags) }

func (s Style) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Style(%d)", int(s))
	}
	return styleTags[s]
}

// ParseStyle parses a style tag.
func ParseStyle(s string) (Style, error) {
	i, ok := lookupTag(styleTags[:], s)
	if !ok {
		return 0, &EnumError{Kind: "style", Value: s, Allowed: styleTags[:]}
	}
	return Style(i), nil
}

// StockImage names an entry of the stock halo catalog. The zero value means
// no stock image is set.
type StockImage int

const (
	StockNone StockImage = iota
	StockCog
	StockCurlicue
	StockFireCircle
	StockGraduatedHex
	StockGraduatedIso
	StockGraduatedSquare
	StockGreg
	StockHexaCircle
	StockHypnoSwirl
	StockMagicCircle
	StockRingStack
	StockSpike
	StockSpirograph
	StockThisWay
	StockTreFoliage
)

var stockTags = [...]string{
	StockNone:            "",
	StockCog:             "COG",
	StockCurlicue:        "CURLICUE",
	StockFireCircle:      "FIRECIRCLE",
	StockGraduatedHex:    "GRADUATED_HEX",
	StockGraduatedIso:    "GRADUATED_ISO",
	StockGraduatedSquare: "GRADUATED_SQUARE",
	StockGreg:            "GREG",
	StockHexaCircle:      "HEXACIRCLE",
	StockHypnoSwirl:      "HYPNOSWIRL",
	StockMagicCircle:     "MAGIC_CIRCLE",
	StockRingStack:       "RINGSTACK",
	StockSpike:           "SPIKE",
	StockSpirograph:      "SPIROGRAPH",
	StockThisWay:         "THIS_WAY",
	StockTreFoliage:      "TREFOLIAGE",
}

// DefaultStockImage is used when a stock image halo has no catalog id.
const DefaultStockImage = StockCog

// StockImages returns every catalog entry, excluding StockNone.
func StockImages() []StockImage {
	out := make([]StockImage, 0, len(stockTags)-1)
	for i := 1; i < len(stockTags); i++ {
		out = append(out, StockImage(i))
	}
	return out
}

// Valid reports whether id names a catalog entry or StockNone.
func (id StockImage) Valid() bool { return id >= 0 && int(id) < len(stockTags) }

func (id StockImage) String() string {
	if !id.Valid() {
		return fmt.Sprintf("StockImage(%d)", int(id))
	}
	return stockTags[id]
}

// ParseStockImage parses a catalog tag. The empty string yields StockNone.
func ParseStockImage(s string) (StockImage, error) {
	if strings.TrimSpace(s) == "" {
		return StockNone, nil
	}
	i, ok := lookupTag(stockTags[1:], s)
	if !ok {
		return 0, &EnumError{Kind: "stock image", Value: s, Allowed: stockTags[1:]}
	}
	return StockImage(i + 1), nil
}

func lookupTag(tags []string, s string) (int, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for i, tag := range tags {
		if tag != "" && tag == norm {
			return i, true
		}
	}
	return 0, false
}

// EnumError reports a value outside an enum's allowed set.
type EnumError struct {
	Kind    string
	Value   string
	Allowed []string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("halo: illegal %s %q, allowed values: %s", e.Kind, e.Value, strings.Join(e.Allowed, ", "))
}
