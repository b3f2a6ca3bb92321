package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/checkpoint"
	"github.com/df07/go-progressive-pathtracer/pkg/loaders"
	"github.com/df07/go-progressive-pathtracer/pkg/output"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// options holds the parsed command line
type options struct {
	sceneType  string
	width      int
	passes     int
	maxDepth   int
	workers    int
	seed       int64
	writeEXR   bool
	checkpoint string
	resume     string
	trace      string
	outputRoot string
}

func main() {
	var opts options
	flag.StringVar(&opts.sceneType, "scene", "default", "Built-in scene name or path to a .json scene file")
	flag.IntVar(&opts.width, "width", 0, "Image width in pixels (0 = scene default)")
	flag.IntVar(&opts.passes, "passes", 0, "Number of progressive passes (0 = scene default)")
	flag.IntVar(&opts.maxDepth, "depth", 0, "Maximum bounces per path (0 = scene default)")
	flag.IntVar(&opts.workers, "workers", 0, "Number of parallel workers (0 = auto-detect CPU count)")
	flag.Int64Var(&opts.seed, "seed", renderer.DefaultConfig().Seed, "Base random seed")
	flag.BoolVar(&opts.writeEXR, "exr", false, "Also write the linear radiance as OpenEXR")
	flag.StringVar(&opts.checkpoint, "checkpoint", "", "Write a checkpoint to this path after rendering")
	flag.StringVar(&opts.resume, "resume", "", "Resume from a checkpoint written by -checkpoint")
	flag.StringVar(&opts.trace, "trace", "", "Trace the ray through pixel x,y and log every bounce instead of rendering")
	flag.StringVar(&opts.outputRoot, "output", "output", "Root directory for rendered images")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Progressive Path Tracer")
		fmt.Println("Usage: pathtracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		for _, p := range scene.Presets() {
			fmt.Printf("  %-12s - %s\n", p.ID, p.Description)
		}
		fmt.Println("  <file>.json  - Scene description file")
		fmt.Println()
		fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png")
		return
	}

	if err := run(opts); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(opts options) error {
	setup, err := createScene(opts.sceneType)
	if err != nil {
		return err
	}

	img := setup.Image
	if opts.width > 0 {
		img = scene.NewImage(setup.Camera.AspectRatio, opts.width, img.Samples, img.MaxDepth)
	}
	if opts.passes > 0 {
		img.Samples = opts.passes
	}
	if opts.maxDepth > 0 {
		img.MaxDepth = opts.maxDepth
	}

	camera, err := setup.NewCamera()
	if err != nil {
		return err
	}

	config := renderer.DefaultConfig()
	config.NumWorkers = opts.workers
	config.Seed = opts.seed

	r, err := renderer.New(setup.Scene, camera, img, config)
	if err != nil {
		return err
	}
	defer r.Close()

	logger := renderer.NewDefaultLogger()

	if opts.trace != "" {
		x, y, err := parsePixel(opts.trace, img.Width, img.Height)
		if err != nil {
			return err
		}
		r.TraceRay(x, y, logger)
		return nil
	}

	if opts.resume != "" {
		c, err := checkpoint.LoadFile(opts.resume)
		if err != nil {
			return err
		}
		if err := c.Apply(r); err != nil {
			return err
		}
		fmt.Printf("Resumed from %s at %d samples/pixel\n", opts.resume, r.Samples())
	}

	fmt.Printf("Rendering %s: %dx%d, %d passes, max depth %d, %d spheres\n",
		opts.sceneType, img.Width, img.Height, img.Samples, img.MaxDepth, setup.Scene.SphereCount())

	// Ctrl-C stops after the current pass and still saves what was accumulated
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	startTime := time.Now()
	passChan, errChan := renderer.RenderProgressive(ctx, r, img.Samples, logger)
	var last renderer.PassResult
	for result := range passChan {
		last = result
	}
	if err := <-errChan; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if r.Samples() == 0 {
		return errors.New("no passes completed")
	}

	fmt.Printf("Render completed in %v\n", time.Since(startTime))
	fmt.Printf("Samples per pixel: %d, average luminance %.4f\n", r.Samples(), last.Stats.AverageLuminance)

	outputDir, err := output.CreateOutputDir(opts.outputRoot, sceneName(opts.sceneType))
	if err != nil {
		return err
	}
	base := filepath.Join(outputDir, output.RenderFilename(time.Now()))

	r.Readback()
	if err := output.WritePNG(base+".png", r.Image()); err != nil {
		return err
	}
	fmt.Printf("Render saved as %s.png\n", base)

	if opts.writeEXR {
		if err := output.WriteEXR(base+".exr", r.Average(), img.Width, img.Height); err != nil {
			return err
		}
		fmt.Printf("Linear radiance saved as %s.exr\n", base)
	}

	if opts.checkpoint != "" {
		if err := checkpoint.SaveFile(opts.checkpoint, checkpoint.Capture(r)); err != nil {
			return err
		}
		fmt.Printf("Checkpoint saved as %s\n", opts.checkpoint)
	}

	return nil
}

// createScene resolves a built-in preset name or a JSON scene path
func createScene(sceneType string) (*scene.Setup, error) {
	return loaders.Resolve(sceneType)
}

// sceneName returns the output subdirectory for a scene argument
func sceneName(sceneType string) string {
	if strings.HasSuffix(sceneType, ".json") {
		return strings.TrimSuffix(filepath.Base(sceneType), ".json")
	}
	return sceneType
}

// parsePixel parses "x,y" with y counted from the top of the image
func parsePixel(s string, width, height int) (int, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid pixel %q, expected x,y", s)
	}

	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid x coordinate: %w", err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid y coordinate: %w", err)
	}

	if x < 0 || x >= width || y < 0 || y >= height {
		return 0, 0, fmt.Errorf("pixel (%d, %d) outside %dx%d image", x, y, width, height)
	}
	return x, y, nil
}
