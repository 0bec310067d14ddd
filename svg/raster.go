package svg

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// ErrSize is returned for non-positive raster sizes.
var ErrSize = errors.New("svg: invalid raster size")

// Rasterize renders doc into a w×h image, fitting the view box to it.
func Rasterize(doc string, w, h int) (*image.NRGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrSize
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(doc), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("svg: read: %w", err)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return img, nil
}
