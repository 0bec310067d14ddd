// Package store resolves halos into drawable artifacts and caches them.
//
// A Resolver turns a halo plus the token it decorates into one of three
// artifact kinds: a vector shape, a raster image or an SVG document. Results
// are memoized per halo value, grid and footprint; fallbacks used while an
// image is loading, or when synthesis fails, are never cached so the real
// artifact is picked up as soon as it becomes available.
//
// A Resolver is safe for concurrent use. Concurrent misses on the same key
// may synthesize twice; the last write wins.
package store

import (
	"encoding/binary"
	"hash/fnv"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/cache"

	"github.com/gogpu/halo"
	"github.com/gogpu/halo/grid"
	"github.com/gogpu/halo/svg"
	"github.com/gogpu/halo/token"
)

// Kind classifies an Artifact.
type Kind int

const (
	KindShape Kind = iota
	KindImage
	KindSVG
)

func (k Kind) String() string {
	switch k {
	case KindShape:
		return "shape"
	case KindImage:
		return "image"
	case KindSVG:
		return "svg"
	}
	return "unknown"
}

// Artifact is a resolved halo. Exactly one of Shape, Image or SVG is set,
// as selected by Kind. Artifacts are shared and must not be modified.
type Artifact struct {
	Kind  Kind
	Shape *gg.Path
	Image image.Image
	SVG   string
}

// ImageSource provides uploaded images by reference. ok is false while the
// image is not resident.
type ImageSource interface {
	Image(ref string) (img image.Image, ok bool)
}

// SVGSource provides stock image templates.
type SVGSource interface {
	Lookup(id halo.StockImage) (doc string, raster image.Image, ok bool)
}

// DefaultCapacity is the per-shard capacity of the artifact cache.
const DefaultCapacity = 64

const (
	shapeRatio  = 0.8
	boundsRatio = 1.0 / 24
)

type entry struct {
	halo      *halo.Halo
	grid      grid.Grid
	signature string
	artifact  *Artifact
}

// Resolver maps halos to artifacts.
type Resolver struct {
	mu     sync.RWMutex
	grid   grid.Grid
	shapes *grid.ShapeCache

	cache       *cache.ShardedCache[uint64, []*entry]
	images      ImageSource
	catalog     SVGSource
	placeholder *Artifact
}

// Option configures a Resolver.
type Option func(*options)

type options struct {
	images      ImageSource
	catalog     SVGSource
	capacity    int
	placeholder image.Image
}

// WithImages sets the source for IMAGE halos.
func WithImages(src ImageSource) Option {
	return func(o *options) { o.images = src }
}

// WithCatalog sets the source for STOCK_IMAGE halos. The default is the
// built-in template catalog.
func WithCatalog(src SVGSource) Option {
	return func(o *options) { o.catalog = src }
}

// WithCapacity sets the per-shard cache capacity.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithPlaceholder replaces the image shown while an image halo is loading.
func WithPlaceholder(img image.Image) Option {
	return func(o *options) { o.placeholder = img }
}

// New returns a Resolver for grid g.
func New(g grid.Grid, opts ...Option) *Resolver {
	o := options{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	if o.catalog == nil {
		o.catalog = svg.NewCatalog()
	}
	if o.placeholder == nil {
		o.placeholder = LoadingImage()
	}
	if g.Size <= 0 {
		g.Size = grid.DefaultSize
	}
	return &Resolver{
		grid:        g,
		shapes:      grid.NewShapeCache(g.Size),
		cache:       cache.NewSharded[uint64, []*entry](o.capacity, cache.Uint64Hasher),
		images:      o.images,
		catalog:     o.catalog,
		placeholder: &Artifact{Kind: KindImage, Image: o.placeholder},
	}
}

// Grid returns the grid artifacts are resolved against.
func (r *Resolver) Grid() grid.Grid {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.grid
}

// SetGrid switches the grid. The cache is cleared when the grid changes.
func (r *Resolver) SetGrid(g grid.Grid) {
	if g.Size <= 0 {
		g.Size = grid.DefaultSize
	}
	r.mu.Lock()
	if g == r.grid {
		r.mu.Unlock()
		return
	}
	if g.Size != r.grid.Size {
		r.shapes = grid.NewShapeCache(g.Size)
	}
	r.grid = g
	r.mu.Unlock()

	r.cache.Clear()
	halo.Logger().Debug("store: grid changed", "topology", g.Topology, "size", g.Size)
}

// Len returns the number of cached buckets.
func (r *Resolver) Len() int { return r.cache.Len() }

// Stats returns cache statistics.
func (r *Resolver) Stats() cache.Stats { return r.cache.Stats() }

// Clear drops all cached artifacts.
func (r *Resolver) Clear() { r.cache.Clear() }

// Resolve returns the artifact for h drawn around the token at loc. loc may
// be nil, in which case footprint types use a single cell. Resolve never
// returns nil for a non-nil halo.
func (r *Resolver) Resolve(h *halo.Halo, loc *token.Location) *Artifact {
	if h == nil {
		return nil
	}
	r.mu.RLock()
	g, shapes := r.grid, r.shapes
	r.mu.RUnlock()

	fp := grid.SingleCell()
	if loc != nil && loc.Token != nil && len(loc.Token.Footprint.Cells) > 0 {
		fp = loc.Token.Footprint
	}
	var sig string
	if h.Type().IsFootprint() {
		sig = fp.Signature()
	}
	key := bucketKey(h, g, sig)

	bucket, _ := r.cache.Get(key)
	for _, e := range bucket {
		if e.grid == g && e.signature == sig && e.halo.Equal(h) {
			return e.artifact
		}
	}

	art := r.synthesize(h, g, shapes, fp)
	if art == nil {
		return r.fallback(h, g, shapes)
	}
	next := make([]*entry, 0, len(bucket)+1)
	next = append(next, bucket...)
	next = append(next, &entry{halo: h.Clone(), grid: g, signature: sig, artifact: art})
	r.cache.Set(key, next)
	return art
}

func bucketKey(h *halo.Halo, g grid.Grid, sig string) uint64 {
	f := fnv.New64a()
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], h.Hash())
	f.Write(b[:])
	binary.LittleEndian.PutUint64(b[:], uint64(g.Topology))
	f.Write(b[:])
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(g.Size))
	f.Write(b[:])
	f.Write([]byte(sig))
	return f.Sum64()
}

func (r *Resolver) fallback(h *halo.Halo, g grid.Grid, shapes *grid.ShapeCache) *Artifact {
	if h.Type().IsImage() {
		halo.Logger().Debug("store: image not ready, using placeholder", "type", h.Type())
		return r.placeholder
	}
	halo.Logger().Info("store: using fallback shape", "type", h.Type())
	return &Artifact{Kind: KindShape, Shape: shapes.Outside(g.Topology)}
}

// synthesize builds the artifact for h, or returns nil when it cannot.
func (r *Resolver) synthesize(h *halo.Halo, g grid.Grid, shapes *grid.ShapeCache, fp grid.Footprint) *Artifact {
	size := g.Size
	var p *gg.Path
	isoTransform := false

	switch h.Type() {
	case halo.TypeCell:
		p = shapes.Outside(g.Topology)
	case halo.TypeCircle:
		rh := size * math.Sqrt2 * shapeRatio
		rv := rh
		if g.IsIsometric() {
			rv = rh / 2
		}
		p = gg.NewPath()
		p.Ellipse(0, 0, rh/2, rv/2)
	case halo.TypeRectangle:
		rh := size * math.Sqrt2 * shapeRatio
		p = gg.NewPath()
		p.Rectangle(-rh/2, -rh/2, rh, rh)
		isoTransform = true
	case halo.TypeRoundedRectangle:
		p = roundedRectangle(g)
		isoTransform = true
	case halo.TypeSnowflake:
		p = Snowflake(size * math.Sqrt2 * shapeRatio)
		isoTransform = true
	case halo.TypeFootprint:
		p = grid.FootprintRing(g, fp)
	case halo.TypeFootprintBounds:
		p = grid.Bounds(grid.FootprintRing(g, fp))
	case halo.TypeFootprintConvex:
		p = grid.ConvexHull(grid.FootprintRing(g, fp))
	case halo.TypeRoundedFootprintBounds:
		p = grid.RoundedBounds(grid.FootprintRing(g, fp), size*boundsRatio)
	case halo.TypeDrawing:
		p = h.Drawing()
	case halo.TypeStockImage:
		return r.stockImage(h)
	case halo.TypeImage:
		if r.images == nil || !h.HasImageID() {
			return nil
		}
		img, ok := r.images.Image(h.ImageID())
		if !ok || img == nil {
			return nil
		}
		return &Artifact{Kind: KindImage, Image: img}
	default:
		halo.Logger().Info("store: unhandled halo type", "type", h.Type())
	}

	if p == nil || len(p.Elements()) == 0 {
		return nil
	}
	if isoTransform && g.IsIsometric() {
		p = p.Transform(IsoTransform())
	}
	return &Artifact{Kind: KindShape, Shape: p}
}

// IsoTransform maps a top-down shape onto the isometric plane: a quarter
// turn of 45 degrees followed by halving the height.
func IsoTransform() gg.Matrix {
	return gg.Scale(1, 0.5).Multiply(gg.Rotate(math.Pi / 4))
}

func roundedRectangle(g grid.Grid) *gg.Path {
	size := g.Size
	wf, hf := math.Sqrt2, math.Sqrt2
	if g.IsHexVertical() {
		wf = math.Sqrt(3)
	}
	if g.Topology == grid.HexHorizontal {
		hf = math.Sqrt(3)
	}
	rh, rv := size*shapeRatio*wf, size*shapeRatio*hf
	radius := max(min(rh, rv)-size/2, 0) / 2
	p := gg.NewPath()
	p.RoundedRectangle(-rh/2, -rv/2, rh, rv, radius)
	return p
}

// Snowflake returns a six-armed snowflake outline spanning diameter,
// centred on the origin.
func Snowflake(diameter float64) *gg.Path {
	r := diameter / 2
	b := gg.BuildPath()
	for i := range 6 {
		a := float64(i) * math.Pi / 3
		dir := gg.Pt(math.Cos(a), math.Sin(a))
		tip := dir.Mul(r)
		b.MoveTo(0, 0).LineTo(tip.X, tip.Y)
		// Two pairs of side branches along each arm.
		for _, at := range []float64{0.45, 0.7} {
			base := dir.Mul(r * at)
			branch := r * (1 - at) * 0.6
			for _, side := range []float64{-1, 1} {
				ba := a + side*math.Pi/4
				end := base.Add(gg.Pt(math.Cos(ba), math.Sin(ba)).Mul(branch))
				b.MoveTo(base.X, base.Y).LineTo(end.X, end.Y)
			}
		}
	}
	b.Polygon(0, 0, r*0.15, 6)
	return b.Build()
}

func (r *Resolver) stockImage(h *halo.Halo) *Artifact {
	if r.catalog == nil {
		return nil
	}
	id := h.StockImage()
	if id == halo.StockNone {
		id = halo.DefaultStockImage
	}
	doc, raster, ok := r.catalog.Lookup(id)
	if !ok {
		halo.Logger().Warn("store: stock image missing", "id", id)
		return nil
	}
	if raster != nil {
		return &Artifact{Kind: KindImage, Image: raster}
	}

	if filters := h.Filters(); len(filters) > 0 {
		ed := svg.NewEditor(doc)
		for _, f := range filters {
			ed.AddFilter(f)
		}
		if out, err := ed.Document(); err == nil {
			doc = out
		}
	}
	colours := []color.Color{h.Colour()}
	if cs := h.Colours(); len(cs) > 0 {
		colours = colours[:0]
		for _, c := range cs {
			colours = append(colours, c)
		}
	}
	if out, err := svg.NewEditor(doc).ReplaceColours(colours).Document(); err == nil {
		doc = out
	}
	return &Artifact{Kind: KindSVG, SVG: doc}
}
