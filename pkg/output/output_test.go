package output

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/mrjoshuak/go-openexr/exr"
)

func TestCreateOutputDir(t *testing.T) {
	root := t.TempDir()

	dir, err := CreateOutputDir(root, "spheregrid")
	if err != nil {
		t.Fatalf("CreateOutputDir() error: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("Expected directory at %s", dir)
	}

	// Creating it again is fine
	if _, err := CreateOutputDir(root, "spheregrid"); err != nil {
		t.Errorf("Second CreateOutputDir() error: %v", err)
	}
}

func TestRenderFilename(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	if got := RenderFilename(ts); got != "render_20240309_140507" {
		t.Errorf("Unexpected filename %q", got)
	}
}

func TestWritePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 0, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	path := filepath.Join(t.TempDir(), "out.png")
	if err := WritePNG(path, img); err != nil {
		t.Fatalf("WritePNG() error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer f.Close()

	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	r, g, b, _ := decoded.At(1, 0).RGBA()
	if r>>8 != 200 || g>>8 != 100 || b>>8 != 50 {
		t.Errorf("Unexpected pixel (%d, %d, %d)", r>>8, g>>8, b>>8)
	}
}

func TestNewEXRImage_FlipsRows(t *testing.T) {
	// Bottom row bright, top row dark
	linear := []core.Vec3{
		core.NewVec3(2, 2, 2), core.NewVec3(3, 3, 3),
		core.NewVec3(0, 0, 0), core.NewVec3(0.5, 0.25, 0.125),
	}

	img, err := NewEXRImage(linear, 2, 2)
	if err != nil {
		t.Fatalf("NewEXRImage() error: %v", err)
	}

	if r, _, _, a := img.RGBA(0, 1); r != 2 || a != 1 {
		t.Errorf("Expected bottom-left radiance 2, got r=%f a=%f", r, a)
	}
	if r, g, b, _ := img.RGBA(1, 0); r != 0.5 || g != 0.25 || b != 0.125 {
		t.Errorf("Expected top-right (0.5, 0.25, 0.125), got (%f, %f, %f)", r, g, b)
	}

	if _, err := NewEXRImage(linear, 3, 2); err == nil {
		t.Error("Expected error for pixel count mismatch")
	}
}

func TestWriteEXR(t *testing.T) {
	linear := []core.Vec3{
		core.NewVec3(0.25, 0.5, 1),
		core.NewVec3(4, 0, 0.75),
	}

	path := filepath.Join(t.TempDir(), "out.exr")
	if err := WriteEXR(path, linear, 2, 1); err != nil {
		t.Fatalf("WriteEXR() error: %v", err)
	}

	decoded, err := exr.DecodeFile(path)
	if err != nil {
		t.Fatalf("exr.DecodeFile() error: %v", err)
	}
	if decoded.Bounds().Dx() != 2 || decoded.Bounds().Dy() != 1 {
		t.Fatalf("Unexpected bounds %v", decoded.Bounds())
	}

	origin := decoded.Bounds().Min
	r, g, b, _ := decoded.RGBA(origin.X+1, origin.Y)
	// Half floats represent these values exactly
	if math.Abs(float64(r)-4) > 1e-3 || g != 0 || math.Abs(float64(b)-0.75) > 1e-3 {
		t.Errorf("Expected HDR value (4, 0, 0.75), got (%f, %f, %f)", r, g, b)
	}
}
