// Package grid provides the map grid geometry halos are fitted to: cell
// outlines per topology, cell centres and the outline of multi-cell footprints.
package grid

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
)

// Topology is the cell layout of a map grid.
type Topology int

const (
	Square Topology = iota
	HexHorizontal
	HexVertical
	Isometric
	None
)

var topologyTags = [...]string{
	Square:        "SQUARE",
	HexHorizontal: "HEX_HORI",
	HexVertical:   "HEX_VERT",
	Isometric:     "ISOMETRIC",
	None:          "NONE",
}

// Topologies lists every supported topology.
func Topologies() []Topology { return []Topology{Square, HexHorizontal, HexVertical, Isometric, None} }

func (t Topology) String() string {
	if t < 0 || int(t) >= len(topologyTags) {
		return fmt.Sprintf("Topology(%d)", int(t))
	}
	return topologyTags[t]
}

// ParseTopology accepts the tags returned by String, case-insensitively, and
// the aliases "hex", "iso" and "gridless".
func ParseTopology(s string) (Topology, error) {
	switch normalize(s) {
	case "SQUARE":
		return Square, nil
	case "HEX_HORI", "HEX_HORIZONTAL", "HEX":
		return HexHorizontal, nil
	case "HEX_VERT", "HEX_VERTICAL":
		return HexVertical, nil
	case "ISOMETRIC", "ISO":
		return Isometric, nil
	case "NONE", "GRIDLESS":
		return None, nil
	}
	return 0, fmt.Errorf("grid: unknown topology %q", s)
}

// DefaultSize is the cell size used when a grid has none.
const DefaultSize = 100.0

// Grid describes the grid of one zone.
type Grid struct {
	Topology Topology
	Size     float64
}

// New returns a grid, substituting DefaultSize for a non-positive size.
func New(t Topology, size float64) Grid {
	if size <= 0 {
		size = DefaultSize
	}
	return Grid{Topology: t, Size: size}
}

func (g Grid) IsIsometric() bool   { return g.Topology == Isometric }
func (g Grid) IsHex() bool         { return g.Topology == HexHorizontal || g.Topology == HexVertical }
func (g Grid) IsHexVertical() bool { return g.Topology == HexVertical }

// Cell addresses one grid cell by column and row.
type Cell struct {
	X, Y int
}

// CellCenter returns the centre of c in map coordinates.
func (g Grid) CellCenter(c Cell) gg.Point {
	s := g.Size
	r := s / math.Sqrt(3)
	switch g.Topology {
	case HexVertical:
		y := float64(c.Y) * s
		if odd(c.X) {
			y += s / 2
		}
		return gg.Pt(float64(c.X)*1.5*r, y)
	case HexHorizontal:
		x := float64(c.X) * s
		if odd(c.Y) {
			x += s / 2
		}
		return gg.Pt(x, float64(c.Y)*1.5*r)
	case Isometric:
		return gg.Pt(float64(c.X-c.Y)*s, float64(c.X+c.Y)*s/2)
	default:
		return gg.Pt(float64(c.X)*s, float64(c.Y)*s)
	}
}

func odd(n int) bool { return n%2 != 0 }
