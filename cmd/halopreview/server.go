package main

import (
	"bytes"
	"errors"
	"image/png"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v3"
	"github.com/gogpu/gg"

	"github.com/gogpu/halo"
	"github.com/gogpu/halo/grid"
	"github.com/gogpu/halo/internal/assets"
	"github.com/gogpu/halo/props"
	"github.com/gogpu/halo/render"
	"github.com/gogpu/halo/store"
	"github.com/gogpu/halo/token"
)

// Query parameters consumed by /render itself; the rest are halo properties.
var renderParams = map[string]bool{"w": true, "h": true, "grid": true, "size": true, "token": true}

type server struct {
	images  *assets.Cache
	maxSize int

	mu        sync.Mutex
	renderers map[grid.Grid]*render.Renderer
}

func newServer(images *assets.Cache, maxSize int) *server {
	return &server{images: images, maxSize: maxSize, renderers: make(map[grid.Grid]*render.Renderer)}
}

// renderer returns the renderer for g, one per grid so that requests for
// different grids do not flush each other's cache.
func (s *server) renderer(g grid.Grid) *render.Renderer {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.renderers[g]
	if !ok {
		r = render.New(store.New(g, store.WithImages(s.images)))
		s.renderers[g] = r
	}
	return r
}

func (s *server) routes(app *fiber.App) {
	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/render", s.render)
	app.Get("/types", listing(props.Types))
	app.Get("/styles", listing(props.Styles))
	app.Get("/images", listing(props.Images))
	app.Get("/filters", listing(props.Filters))
	app.Post("/assets", s.upload)
}

func listing(list func(string) any) fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.JSON(list(props.JSON))
	}
}

func badRequest(c fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

func (s *server) intParam(c fiber.Ctx, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > s.maxSize {
		return 0, errors.New("bad " + key + ": " + v)
	}
	return n, nil
}

func (s *server) render(c fiber.Ctx) error {
	w, err := s.intParam(c, "w", 256)
	if err != nil {
		return badRequest(c, err)
	}
	ht, err := s.intParam(c, "h", w)
	if err != nil {
		return badRequest(c, err)
	}
	topology := grid.Square
	if v := c.Query("grid"); v != "" {
		if topology, err = grid.ParseTopology(v); err != nil {
			return badRequest(c, err)
		}
	}
	size, err := s.intParam(c, "size", min(w, ht)/2)
	if err != nil {
		return badRequest(c, err)
	}

	h := halo.Default(halo.DefaultColour)
	input := make(map[string]any)
	for k, v := range c.Queries() {
		if !renderParams[k] {
			input[k] = v
		}
	}
	if err := props.Apply(h, input); err != nil {
		return badRequest(c, err)
	}

	tok := token.New("preview")
	tok.Halo = h
	if v := c.Query("token"); v != "" {
		props.SetTokenColour(tok, v)
	}
	g := grid.New(topology, float64(size))
	loc := token.NewLocation(tok, gg.Pt(float64(w)/2, float64(ht)/2), g.Size, g.Size)

	dc := gg.NewContext(w, ht)
	defer dc.Close()
	if err := s.renderer(g).Render(dc, loc, render.View{Zoom: 1, Grid: g}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(buf.Bytes())
}

func (s *server) upload(c fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return badRequest(c, errors.New("body required"))
	}
	key, err := s.images.Put(c.Context(), body)
	if err != nil {
		return badRequest(c, err)
	}
	halo.Logger().Info("halopreview: asset stored", "key", key, "bytes", len(body))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"key": key})
}
