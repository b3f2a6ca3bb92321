// Package output writes finished renders to disk
package output

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/mrjoshuak/go-openexr/exr"
)

// CreateOutputDir creates output/<name> under root and returns its path
func CreateOutputDir(root, name string) (string, error) {
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return dir, nil
}

// RenderFilename returns a timestamped base name like render_20060102_150405
func RenderFilename(t time.Time) string {
	return "render_" + t.Format("20060102_150405")
}

// WritePNG encodes img as a PNG file at path
func WritePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return file.Close()
}

// NewEXRImage converts linear radiance, rows ordered bottom to top, into a
// float image with the origin at the top left. No gamma is applied.
func NewEXRImage(linear []core.Vec3, width, height int) (*exr.RGBAImage, error) {
	if len(linear) != width*height {
		return nil, fmt.Errorf("got %d pixels for a %dx%d image", len(linear), width, height)
	}

	img := exr.NewRGBAImage(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := (height - 1 - y) * width
		for x := 0; x < width; x++ {
			c := linear[row+x]
			img.SetRGBA(x, y, float32(c.X), float32(c.Y), float32(c.Z), 1)
		}
	}
	return img, nil
}

// WriteEXR writes linear radiance to an OpenEXR file at path
func WriteEXR(path string, linear []core.Vec3, width, height int) error {
	img, err := NewEXRImage(linear, width, height)
	if err != nil {
		return err
	}
	if err := exr.EncodeFile(path, img); err != nil {
		return fmt.Errorf("failed to encode EXR: %w", err)
	}
	return nil
}
