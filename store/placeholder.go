package store

import (
	"image"
	"math"
	"sync"

	"github.com/gogpu/gg"
)

// LoadingSize is the edge length of the loading placeholder, in pixels.
const LoadingSize = 64

// LoadingImage returns the image shown in place of an image halo that has
// not been loaded yet: a broken ring in muted grey. It is drawn once.
var LoadingImage = sync.OnceValue(func() image.Image {
	dc := gg.NewContext(LoadingSize, LoadingSize)
	defer dc.Close()

	c := float64(LoadingSize) / 2
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineWidth(LoadingSize / 10)
	dc.SetRGBA(0.55, 0.55, 0.55, 0.9)
	for i := range 3 {
		start := float64(i)*2*math.Pi/3 + math.Pi/12
		dc.MoveTo(c+c*0.7*math.Cos(start), c+c*0.7*math.Sin(start))
		dc.DrawArc(c, c, c*0.7, start, start+math.Pi/2)
	}
	if err := dc.Stroke(); err != nil {
		return image.NewNRGBA(image.Rect(0, 0, LoadingSize, LoadingSize))
	}
	return dc.Image()
})
