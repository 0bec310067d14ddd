package svg

import (
	"embed"
	"image"
	"strings"
	"sync"

	"github.com/gogpu/halo"
)

//go:embed templates/*.svg
var templates embed.FS

// Catalog maps stock image ids to SVG templates or raster fallbacks.
// It is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	svgs    map[halo.StockImage]string
	rasters map[halo.StockImage]image.Image
}

// NewCatalog returns a catalog holding the built-in templates.
func NewCatalog() *Catalog {
	c := &Catalog{
		svgs:    make(map[halo.StockImage]string),
		rasters: make(map[halo.StockImage]image.Image),
	}
	for _, id := range halo.StockImages() {
		b, err := templates.ReadFile("templates/" + strings.ToLower(id.String()) + ".svg")
		if err != nil {
			halo.Logger().Debug("svg: no built-in template", "id", id)
			continue
		}
		c.svgs[id] = string(b)
	}
	return c
}

// Register adds or replaces the SVG template for id.
func (c *Catalog) Register(id halo.StockImage, doc string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.svgs[id] = doc
	delete(c.rasters, id)
}

// RegisterRaster sets a raster fallback for id, used as is.
func (c *Catalog) RegisterRaster(id halo.StockImage, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rasters[id] = img
	delete(c.svgs, id)
}

// Lookup returns the SVG template or raster fallback for id. ok is false
// when the catalog has neither.
func (c *Catalog) Lookup(id halo.StockImage) (doc string, raster image.Image, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if img, found := c.rasters[id]; found {
		return "", img, true
	}
	doc, ok = c.svgs[id]
	return doc, nil, ok
}
