// Command halodemo opens a window showing a ring of tokens with every halo
// style, plus bare tokens drawn by the debug renderer, which steps through
// the halo types on each redraw.
package main

import (
	"flag"
	"image"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/gg"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/draw"

	"github.com/gogpu/halo"
	"github.com/gogpu/halo/grid"
	"github.com/gogpu/halo/render"
	"github.com/gogpu/halo/store"
	"github.com/gogpu/halo/token"
)

type game struct {
	w, h     int
	grid     grid.Grid
	renderer *render.Renderer
	locs     []*token.Location
	zoom     float64

	frame  *ebiten.Image
	pixels *image.RGBA
	ticks  int
	every  int
	paused bool
	dirty  bool
}

func newGame(w, h, count int, topology grid.Topology, every int) *game {
	g := grid.New(topology, 64)
	gm := &game{
		w:        w,
		h:        h,
		grid:     g,
		renderer: render.New(store.New(g), render.WithDebug(true)),
		zoom:     1,
		frame:    ebiten.NewImage(w, h),
		pixels:   image.NewRGBA(image.Rect(0, 0, w, h)),
		every:    max(every, 1),
		dirty:    true,
	}

	radius := 0.35 * float64(min(w, h))
	styles := halo.Styles()
	for i := range count {
		a := 2 * math.Pi * float64(i) / float64(count)
		t := token.New("token")
		t.Facing = a
		t.HasFacing = true
		// Every third token is left bare for the debug renderer.
		if i%3 != 0 {
			hl := halo.Default(halo.DefaultColour)
			if err := hl.SetType(halo.Types()[i%len(halo.Types())]); err != nil {
				log.Fatal(err)
			}
			if err := hl.SetStyle(styles[i%len(styles)]); err != nil {
				log.Fatal(err)
			}
			if hl.Type() == halo.TypeDrawing {
				if err := hl.SetDrawings([]string{"M -20 -20 L 20 -20 L 0 25 Z"}); err != nil {
					log.Fatal(err)
				}
			}
			t.Halo = hl
		}
		center := gg.Pt(float64(w)/2+radius*math.Cos(a), float64(h)/2+radius*math.Sin(a))
		gm.locs = append(gm.locs, token.NewLocation(t, center, g.Size, g.Size))
	}
	return gm
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.zoom *= 1.25
		g.dirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.zoom /= 1.25
		g.dirty = true
	}
	if !g.paused {
		g.ticks++
		if g.ticks%g.every == 0 {
			g.dirty = true
		}
	}
	if g.dirty {
		g.dirty = false
		return g.redraw()
	}
	return nil
}

func (g *game) redraw() error {
	dc := gg.NewContext(g.w, g.h)
	defer dc.Close()
	dc.SetRGB(0.12, 0.13, 0.15)
	dc.Clear()

	view := render.View{Zoom: g.zoom, Grid: g.grid}
	for _, loc := range g.locs {
		scaled := token.NewLocation(loc.Token, loc.Center, loc.ScaledWidth*g.zoom, loc.ScaledHeight*g.zoom)
		if err := g.renderer.Render(dc, scaled, view); err != nil {
			halo.Logger().Warn("halodemo: render failed", "token", loc.Token.ID, "err", err)
		}
	}
	draw.Draw(g.pixels, g.pixels.Bounds(), dc.Image(), image.Point{}, draw.Src)
	g.frame.WritePixels(g.pixels.Pix)
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.frame, nil)
}

func (g *game) Layout(_, _ int) (int, int) { return g.w, g.h }

func main() {
	var (
		width  = flag.Int("width", 800, "window width")
		height = flag.Int("height", 600, "window height")
		count  = flag.Int("tokens", 12, "number of tokens")
		topo   = flag.String("grid", "square", "grid topology")
		every  = flag.Int("every", 30, "ticks between debug type changes")
	)
	flag.Parse()

	halo.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	t, err := grid.ParseTopology(*topo)
	if err != nil {
		log.Fatal(err)
	}
	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("halos")
	if err := ebiten.RunGame(newGame(*width, *height, *count, t, *every)); err != nil {
		log.Fatal(err)
	}
}
