package halo

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gg"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the persisted halo record.
const (
	fieldType        protowire.Number = 1
	fieldStyle       protowire.Number = 2
	fieldStockImage  protowire.Number = 3
	fieldFilled      protowire.Number = 4
	fieldIsoFlipped  protowire.Number = 5
	fieldUseFacing   protowire.Number = 6
	fieldScaleFactor protowire.Number = 7
	fieldRotation    protowire.Number = 8
	fieldImageRef    protowire.Number = 9
	fieldColourList  protowire.Number = 10
	fieldSVGPaths    protowire.Number = 11
	fieldPathList    protowire.Number = 12
	fieldOpacity     protowire.Number = 13
	fieldTypeTag     protowire.Number = 14
	fieldStyleTag    protowire.Number = 15
	fieldStockTag    protowire.Number = 16
	fieldFilters     protowire.Number = 17
)

// Path and segment messages.
const (
	fieldSegment protowire.Number = 1
	fieldOp      protowire.Number = 1
	fieldCoords  protowire.Number = 2
)

const (
	opMove = iota
	opLine
	opQuad
	opCubic
	opClose
)

// ErrWire is wrapped by every decoding error.
var ErrWire = errors.New("halo: malformed wire record")

// MarshalWire encodes h as a protocol buffer record. Enums are written both as
// ordinals and as stable string tags; empty optional fields are omitted.
func MarshalWire(h *Halo) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(h.typ))
	b = protowire.AppendTag(b, fieldStyle, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(h.style))
	if h.stockImage != StockNone {
		b = protowire.AppendTag(b, fieldStockImage, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(h.stockImage))
	}
	b = appendBool(b, fieldFilled, h.filled)
	b = appendBool(b, fieldIsoFlipped, h.isoFlipped)
	b = appendBool(b, fieldUseFacing, h.useFacing)
	b = appendDouble(b, fieldScaleFactor, h.scaleFactor)
	b = appendDouble(b, fieldRotation, h.rotation)
	if h.imageRef != "" {
		b = protowire.AppendTag(b, fieldImageRef, protowire.BytesType)
		b = protowire.AppendString(b, h.imageRef)
	}
	if len(h.colours) > 0 {
		var packed []byte
		for _, c := range h.colours {
			packed = protowire.AppendVarint(packed, uint64(int64(ARGB(c))))
		}
		b = protowire.AppendTag(b, fieldColourList, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	for _, s := range h.rawPaths {
		b = protowire.AppendTag(b, fieldSVGPaths, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}
	for _, p := range h.drawings {
		b = protowire.AppendTag(b, fieldPathList, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalPath(p))
	}
	b = appendDouble(b, fieldOpacity, h.opacity)
	b = protowire.AppendTag(b, fieldTypeTag, protowire.BytesType)
	b = protowire.AppendString(b, h.typ.String())
	b = protowire.AppendTag(b, fieldStyleTag, protowire.BytesType)
	b = protowire.AppendString(b, h.style.String())
	if h.stockImage != StockNone {
		b = protowire.AppendTag(b, fieldStockTag, protowire.BytesType)
		b = protowire.AppendString(b, h.stockImage.String())
	}
	for _, f := range h.filters {
		b = protowire.AppendTag(b, fieldFilters, protowire.BytesType)
		b = protowire.AppendString(b, f)
	}
	return b
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func marshalPath(p *gg.Path) []byte {
	var b []byte
	for _, e := range p.Elements() {
		var op uint64
		var pts []gg.Point
		switch e := e.(type) {
		case gg.MoveTo:
			op, pts = opMove, []gg.Point{e.Point}
		case gg.LineTo:
			op, pts = opLine, []gg.Point{e.Point}
		case gg.QuadTo:
			op, pts = opQuad, []gg.Point{e.Control, e.Point}
		case gg.CubicTo:
			op, pts = opCubic, []gg.Point{e.Control1, e.Control2, e.Point}
		case gg.Close:
			op = opClose
		}
		var seg []byte
		seg = protowire.AppendTag(seg, fieldOp, protowire.VarintType)
		seg = protowire.AppendVarint(seg, op)
		if len(pts) > 0 {
			var coords []byte
			for _, q := range pts {
				coords = protowire.AppendFixed64(coords, math.Float64bits(q.X))
				coords = protowire.AppendFixed64(coords, math.Float64bits(q.Y))
			}
			seg = protowire.AppendTag(seg, fieldCoords, protowire.BytesType)
			seg = protowire.AppendBytes(seg, coords)
		}
		b = protowire.AppendTag(b, fieldSegment, protowire.BytesType)
		b = protowire.AppendBytes(b, seg)
	}
	return b
}

// UnmarshalWire decodes a record written by MarshalWire. Unknown fields are
// skipped. String tags take precedence over ordinals when both are present.
func UnmarshalWire(b []byte) (*Halo, error) {
	h := &Halo{opacity: 1, scaleFactor: DefaultScaleFactor}
	var typeTag, styleTag, stockTag string
	var paths []*gg.Path

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, wireErr(n)
		}
		b = b[n:]

		switch {
		case typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, wireErr(n)
			}
			b = b[n:]
			switch num {
			case fieldType:
				h.typ = Type(v)
			case fieldStyle:
				h.style = Style(v)
			case fieldStockImage:
				h.stockImage = StockImage(v)
			case fieldFilled:
				h.filled = v != 0
			case fieldIsoFlipped:
				h.isoFlipped = v != 0
			case fieldUseFacing:
				h.useFacing = v != 0
			case fieldColourList:
				h.colours = append(h.colours, FromARGB(int32(v)))
			}
		case typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return nil, wireErr(n)
			}
			b = b[n:]
			f := math.Float64frombits(v)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("%w: field %d is not finite", ErrWire, num)
			}
			switch num {
			case fieldScaleFactor:
				h.SetScaleFactor(f)
			case fieldRotation:
				h.SetRotation(f)
			case fieldOpacity:
				h.SetOpacity(f)
			}
		case typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, wireErr(n)
			}
			b = b[n:]
			switch num {
			case fieldImageRef:
				h.imageRef = string(v)
			case fieldColourList:
				for len(v) > 0 {
					c, n := protowire.ConsumeVarint(v)
					if n < 0 {
						return nil, wireErr(n)
					}
					v = v[n:]
					h.colours = append(h.colours, FromARGB(int32(c)))
				}
			case fieldSVGPaths:
				h.rawPaths = append(h.rawPaths, string(v))
			case fieldPathList:
				p, err := unmarshalPath(v)
				if err != nil {
					return nil, err
				}
				paths = append(paths, p)
			case fieldTypeTag:
				typeTag = string(v)
			case fieldStyleTag:
				styleTag = string(v)
			case fieldStockTag:
				stockTag = string(v)
			case fieldFilters:
				h.filters = append(h.filters, string(v))
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, wireErr(n)
			}
			b = b[n:]
		}
	}

	if typeTag != "" {
		t, err := ParseType(typeTag)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrWire, err)
		}
		h.typ = t
	}
	if styleTag != "" {
		s, err := ParseStyle(styleTag)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrWire, err)
		}
		h.style = s
	}
	if stockTag != "" {
		id, err := ParseStockImage(stockTag)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrWire, err)
		}
		h.stockImage = id
	}
	if !h.typ.Valid() || !h.style.Valid() || !h.stockImage.Valid() {
		return nil, fmt.Errorf("%w: enum out of range", ErrWire)
	}

	// Geometry is rebuilt from the path data when the two lists disagree.
	if len(paths) == len(h.rawPaths) {
		h.drawings = paths
	} else if err := h.SetDrawings(h.rawPaths); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWire, err)
	}
	return h, nil
}

func unmarshalPath(b []byte) (*gg.Path, error) {
	p := gg.NewPath()
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, wireErr(n)
		}
		b = b[n:]
		if num != fieldSegment || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, wireErr(n)
			}
			b = b[n:]
			continue
		}
		seg, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, wireErr(n)
		}
		b = b[n:]
		if err := appendSegment(p, seg); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func appendSegment(p *gg.Path, b []byte) error {
	var op uint64
	var c []float64
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return wireErr(n)
		}
		b = b[n:]
		switch {
		case num == fieldOp && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return wireErr(n)
			}
			b = b[n:]
			op = v
		case num == fieldCoords && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return wireErr(n)
			}
			b = b[n:]
			for len(v) > 0 {
				f, n := protowire.ConsumeFixed64(v)
				if n < 0 {
					return wireErr(n)
				}
				v = v[n:]
				c = append(c, math.Float64frombits(f))
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return wireErr(n)
			}
			b = b[n:]
		}
	}

	want := map[uint64]int{opMove: 2, opLine: 2, opQuad: 4, opCubic: 6, opClose: 0}
	if w, ok := want[op]; !ok || len(c) != w {
		return fmt.Errorf("%w: segment op %d with %d coordinates", ErrWire, op, len(c))
	}
	switch op {
	case opMove:
		p.MoveTo(c[0], c[1])
	case opLine:
		p.LineTo(c[0], c[1])
	case opQuad:
		p.QuadraticTo(c[0], c[1], c[2], c[3])
	case opCubic:
		p.CubicTo(c[0], c[1], c[2], c[3], c[4], c[5])
	case opClose:
		p.Close()
	}
	return nil
}

func wireErr(n int) error {
	return fmt.Errorf("%w: %w", ErrWire, protowire.ParseError(n))
}
