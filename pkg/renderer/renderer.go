package renderer

import (
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrBufferSize reports a buffer whose length does not match the image
	ErrBufferSize = errors.New("buffer size does not match image")
	// ErrInvalidImage reports an unusable image configuration
	ErrInvalidImage = errors.New("invalid image configuration")
)

// Config contains configuration for the renderer
type Config struct {
	NumWorkers int   // Number of parallel workers (0 = use CPU count)
	TileSize   int   // Edge length of each tile in pixels
	Seed       int64 // Base seed for the per-tile random streams

	// NewSampler builds the random stream for one tile. Nil uses a seeded
	// math/rand source.
	NewSampler func(seed int64) core.Sampler
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		NumWorkers: 0,
		TileSize:   32,
		Seed:       42,
	}
}

// PassStats describes one completed pass
type PassStats struct {
	Pass     int           // 1-based pass number
	Duration time.Duration // Wall time of the pass
	Pixels   int           // Pixels sampled in the pass
	Samples  uint64        // Accumulated samples per pixel after the pass
}

// Renderer owns the accumulation buffer and drives full-image sampling passes.
// Render and Restore must not be called concurrently with each other or
// with readback.
type Renderer struct {
	scene  *scene.Scene
	camera *scene.Camera
	image  scene.Image
	config Config

	width, height  int
	uDenom, vDenom float64

	accumulated []core.Vec3 // Linear radiance sums, row-major, y=0 at the bottom
	output      []byte      // RGB8, same row order as accumulated
	samples     uint64

	tiles      []*Tile
	workerPool *WorkerPool
}

// New creates a renderer with a zeroed accumulation buffer and starts its workers
func New(s *scene.Scene, camera *scene.Camera, img scene.Image, config Config) (*Renderer, error) {
	if s == nil || camera == nil {
		return nil, fmt.Errorf("%w: scene and camera are required", ErrInvalidImage)
	}
	if img.Width < 1 || img.Height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidImage, img.Width, img.Height)
	}
	if img.MaxDepth < 0 {
		return nil, fmt.Errorf("%w: negative max depth %d", ErrInvalidImage, img.MaxDepth)
	}
	if config.TileSize <= 0 {
		config.TileSize = DefaultConfig().TileSize
	}
	if config.NewSampler == nil {
		config.NewSampler = func(seed int64) core.Sampler { return core.NewSeededSampler(seed) }
	}

	r := &Renderer{
		scene:       s,
		camera:      camera,
		image:       img,
		config:      config,
		width:       img.Width,
		height:      img.Height,
		uDenom:      denominator(img.Width),
		vDenom:      denominator(img.Height),
		accumulated: make([]core.Vec3, img.Pixels()),
		output:      make([]byte, 3*img.Pixels()),
		tiles:       NewTileGrid(img.Width, img.Height, config.TileSize),
	}
	r.workerPool = NewWorkerPool(config.NumWorkers, len(r.tiles), r.renderTile)
	r.workerPool.Start()

	return r, nil
}

// denominator maps pixel indices onto [0, 1]. A single row or column has
// nothing to span, so it divides by 1.
func denominator(n int) float64 {
	if n <= 1 {
		return 1
	}
	return float64(n - 1)
}

// seedTiles gives every tile a fresh stream derived from the base seed, the
// tile ID and the samples already accumulated. Pass n always draws the same
// numbers, whether the render ran straight through or resumed from a checkpoint.
func (r *Renderer) seedTiles() {
	epoch := int64(r.samples) * int64(len(r.tiles))
	for _, tile := range r.tiles {
		tile.Sampler = r.config.NewSampler(r.config.Seed + epoch + int64(tile.ID))
	}
}

// Render performs one full-image sampling pass: one jittered sample per pixel,
// added to the accumulation buffer.
func (r *Renderer) Render() PassStats {
	start := time.Now()
	r.seedTiles()
	r.samples++

	for i, tile := range r.tiles {
		r.workerPool.SubmitTask(TileTask{Tile: tile, TaskID: i})
	}

	pixels := 0
	for range r.tiles {
		result, ok := r.workerPool.GetResult()
		if !ok {
			break
		}
		pixels += result.Pixels
	}

	return PassStats{
		Pass:     int(r.samples),
		Duration: time.Since(start),
		Pixels:   pixels,
		Samples:  r.samples,
	}
}

// Readback refreshes the RGB8 output buffer from the accumulation buffer.
// It leaves the accumulation buffer and sample count untouched.
func (r *Renderer) Readback() {
	r.readbackInto(r.output)
}

// ReadbackInto writes the RGB8 conversion into dst, which must hold exactly
// 3*width*height bytes.
func (r *Renderer) ReadbackInto(dst []byte) error {
	if len(dst) != 3*len(r.accumulated) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrBufferSize, len(dst), 3*len(r.accumulated))
	}
	r.readbackInto(dst)
	return nil
}

func (r *Renderer) readbackInto(dst []byte) {
	if r.samples == 0 {
		clear(dst)
		return
	}

	scale := 1.0 / float64(r.samples)
	for i, acc := range r.accumulated {
		c := acc.Multiply(scale)
		dst[3*i] = toByte(c.X)
		dst[3*i+1] = toByte(c.Y)
		dst[3*i+2] = toByte(c.Z)
	}
}

// toByte applies the gamma 2 curve and quantizes to [0, 255]
func toByte(linear float64) byte {
	return byte(256 * mgl64.Clamp(math.Sqrt(linear), 0.0, 0.999))
}

// Output returns a copy of the RGB8 buffer as of the last Readback, rows
// ordered bottom to top
func (r *Renderer) Output() []byte {
	out := make([]byte, len(r.output))
	copy(out, r.output)
	return out
}

// Image returns the last readback as an image with the origin at the top left
func (r *Renderer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	for y := 0; y < r.height; y++ {
		src := r.output[3*y*r.width:]
		// Output row y is image row height-1-y
		dst := img.Pix[(r.height-1-y)*img.Stride:]
		for x := 0; x < r.width; x++ {
			dst[4*x] = src[3*x]
			dst[4*x+1] = src[3*x+1]
			dst[4*x+2] = src[3*x+2]
			dst[4*x+3] = 255
		}
	}
	return img
}

// Average returns the mean linear radiance of every pixel, rows bottom to top
func (r *Renderer) Average() []core.Vec3 {
	avg := make([]core.Vec3, len(r.accumulated))
	if r.samples == 0 {
		return avg
	}
	scale := 1.0 / float64(r.samples)
	for i, acc := range r.accumulated {
		avg[i] = acc.Multiply(scale)
	}
	return avg
}

// Accumulated returns a copy of the raw accumulation buffer
func (r *Renderer) Accumulated() []core.Vec3 {
	acc := make([]core.Vec3, len(r.accumulated))
	copy(acc, r.accumulated)
	return acc
}

// Samples returns the number of completed passes
func (r *Renderer) Samples() uint64 {
	return r.samples
}

// Restore replaces the accumulation buffer and sample count, e.g. from a checkpoint
func (r *Renderer) Restore(accumulated []core.Vec3, samples uint64) error {
	if len(accumulated) != len(r.accumulated) {
		return fmt.Errorf("%w: got %d pixels, want %d", ErrBufferSize, len(accumulated), len(r.accumulated))
	}
	copy(r.accumulated, accumulated)
	r.samples = samples
	return nil
}

// ImageConfig returns the image the renderer was built for
func (r *Renderer) ImageConfig() scene.Image {
	return r.image
}

// Scene returns the scene being rendered
func (r *Renderer) Scene() *scene.Scene {
	return r.scene
}

// NumWorkers returns the size of the worker pool
func (r *Renderer) NumWorkers() int {
	return r.workerPool.GetNumWorkers()
}

// PixelRay returns the un-jittered camera ray through pixel (x, y), where y
// counts rows from the top of the displayed image
func (r *Renderer) PixelRay(x, y int) core.Ray {
	u := float64(x) / r.uDenom
	v := float64(r.height-y) / r.vDenom
	return r.camera.GetRay(u, v)
}

// TraceRay follows the un-jittered ray through pixel (x, y) and logs every bounce
func (r *Renderer) TraceRay(x, y int, logger core.Logger) core.Vec3 {
	ray := r.PixelRay(x, y)
	sampler := r.config.NewSampler(r.config.Seed)
	return r.scene.Trace(ray, r.image.MaxDepth, sampler, logger)
}

// TracePath follows the un-jittered ray through pixel (x, y) and returns every bounce
func (r *Renderer) TracePath(x, y int) scene.Path {
	ray := r.PixelRay(x, y)
	sampler := r.config.NewSampler(r.config.Seed)
	return r.scene.TracePath(ray, r.image.MaxDepth, sampler)
}

// Close stops the worker pool. The renderer must not be used afterwards.
func (r *Renderer) Close() {
	r.workerPool.Stop()
}
