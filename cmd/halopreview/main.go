// Command halopreview serves rendered halo previews and stores halo images.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/gogpu/halo"
	"github.com/gogpu/halo/internal/assets"
)

func newApp(cfg Config, srv *server) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Halo Preview",
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}?${queryParams}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	srv.routes(app)
	return app
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	halo.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.level()})))

	ctx := context.Background()
	db, err := assets.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("Failed to open asset store: %v", err)
	}
	defer db.Close()

	images := assets.NewCache(db, cfg.Workers)
	defer images.Close()
	if err := images.Preload(ctx); err != nil {
		log.Fatalf("Failed to preload assets: %v", err)
	}

	app := newApp(cfg, newServer(images, cfg.MaxSize))
	halo.Logger().Info("halopreview: listening", "addr", cfg.Addr, "db", cfg.DB, "assets", images.Len())
	if err := app.Listen(cfg.Addr); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
