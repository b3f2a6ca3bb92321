package renderer

import (
	"image"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// RenderStats summarizes the state of a progressive render after a pass
type RenderStats struct {
	TotalPixels      int     // Pixels in the image
	SamplesPerPixel  uint64  // Accumulated samples per pixel
	TotalSamples     uint64  // Samples taken across the whole image
	AverageLuminance float64 // Mean display luminance of the current readback
}

// NewRenderStats derives statistics from the renderer's current readback
func NewRenderStats(r *Renderer, img *image.RGBA) RenderStats {
	pixels := r.width * r.height
	return RenderStats{
		TotalPixels:      pixels,
		SamplesPerPixel:  r.samples,
		TotalSamples:     uint64(pixels) * r.samples,
		AverageLuminance: CalculateAverageLuminance(img),
	}
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of an image
// with channels scaled to [0, 1]
func CalculateAverageLuminance(img *image.RGBA) float64 {
	bounds := img.Bounds()
	count := bounds.Dx() * bounds.Dy()
	if count == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			rgb := core.NewVec3(float64(c.R), float64(c.G), float64(c.B)).Divide(255)
			total += rgb.Luminance()
		}
	}
	return total / float64(count)
}
