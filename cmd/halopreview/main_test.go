package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/halo/internal/assets"
)

func testApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := assets.Open(context.Background(), filepath.Join(t.TempDir(), "assets.db"))
	if err != nil {
		t.Fatal(err)
	}
	images := assets.NewCache(db, 1)
	t.Cleanup(func() {
		images.Close()
		db.Close()
	})
	return newApp(defaultConfig(), newServer(images, 1024))
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func TestRenderPNG(t *testing.T) {
	app := testApp(t)
	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/render?type=circle&style=tube&colours=red&w=120&h=80&grid=hex", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	img, err := png.Decode(bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("bounds = %v", b)
	}
}

func TestRenderRejectsBadInput(t *testing.T) {
	app := testApp(t)
	for _, q := range []string{"type=hexagon", "w=-3", "grid=triangles", "w=99999"} {
		resp, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/render?"+q, nil))
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, resp.StatusCode)
		}
	}
}

func TestListings(t *testing.T) {
	app := testApp(t)
	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/styles", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got []string
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"LINE", "GLOW", "TUBE"}, got); diff != "" {
		t.Errorf("styles (-want +got):\n%s", diff)
	}
}

func TestUploadAsset(t *testing.T) {
	app := testApp(t)
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	resp, body := do(t, app, httptest.NewRequest(http.MethodPost, "/assets", bytes.NewReader(data)))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var out struct{ Key string }
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if out.Key != assets.Key(data) {
		t.Errorf("key = %q, want %q", out.Key, assets.Key(data))
	}

	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/render?type=image&image=asset://"+out.Key, nil))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("render of uploaded image: status = %d", resp.StatusCode)
	}

	resp, _ = do(t, app, httptest.NewRequest(http.MethodPost, "/assets", bytes.NewReader([]byte("not an image"))))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("junk upload: status = %d, want 400", resp.StatusCode)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "halo.yaml")
	if err := os.WriteFile(path, []byte("addr: \":9000\"\nworkers: 2\nlog_level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HALO_DB", "/tmp/other.db")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	want := defaultConfig()
	want.Addr = ":9000"
	want.Workers = 2
	want.LogLevel = "debug"
	want.DB = "/tmp/other.db"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
	if cfg.level().String() != "DEBUG" {
		t.Errorf("level = %v", cfg.level())
	}
}

func TestLoadConfigUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "halo.yaml")
	if err := os.WriteFile(path, []byte("adress: \":9000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("misspelt key accepted")
	}
}
