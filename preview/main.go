// Command preview opens a window that shows a progressive render refining pass by pass
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/loaders"
	"github.com/df07/go-progressive-pathtracer/pkg/output"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

func main() {
	sceneType := flag.String("scene", "default", "Built-in scene name or path to a .json scene file")
	width := flag.Int("width", 0, "Image width in pixels (0 = scene default)")
	passes := flag.Int("passes", 0, "Number of progressive passes (0 = scene default)")
	workers := flag.Int("workers", 0, "Number of parallel workers (0 = auto-detect CPU count)")
	flag.Parse()

	setup, err := loaders.Resolve(*sceneType)
	if err != nil {
		log.Fatalf("Error loading scene: %v", err)
	}
	if *width > 0 {
		setup.Image = scene.NewImage(setup.Camera.AspectRatio, *width, setup.Image.Samples, setup.Image.MaxDepth)
	}
	if *passes > 0 {
		setup.Image.Samples = *passes
	}

	camera, err := setup.NewCamera()
	if err != nil {
		log.Fatalf("Error creating camera: %v", err)
	}

	config := renderer.DefaultConfig()
	config.NumWorkers = *workers
	r, err := renderer.New(setup.Scene, camera, setup.Image, config)
	if err != nil {
		log.Fatalf("Error creating renderer: %v", err)
	}

	p := newPreview(r, setup.Image, strings.TrimSuffix(filepath.Base(*sceneType), ".json"))
	p.run()
}

// preview owns the window and the render goroutine feeding it
type preview struct {
	renderer *renderer.Renderer
	image    scene.Image
	name     string

	mu     sync.Mutex
	latest *image.RGBA // Most recent pass, nil before the first one

	imgCanvas *canvas.Image
	progress  *widget.ProgressBar
	status    *widget.Label
}

func newPreview(r *renderer.Renderer, img scene.Image, name string) *preview {
	blank := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	imgCanvas := canvas.NewImageFromImage(blank)
	imgCanvas.FillMode = canvas.ImageFillContain
	imgCanvas.SetMinSize(fyne.NewSize(float32(img.Width), float32(img.Height)))

	return &preview{
		renderer:  r,
		image:     img,
		name:      name,
		imgCanvas: imgCanvas,
		progress:  widget.NewProgressBar(),
		status:    widget.NewLabel("Idle"),
	}
}

func (p *preview) run() {
	a := app.New()
	w := a.NewWindow(fmt.Sprintf("Path Tracer - %s", p.name))

	ctx, cancel := context.WithCancel(context.Background())

	saveButton := widget.NewButton("Save PNG", func() {
		path, err := p.save()
		if err != nil {
			p.status.SetText(fmt.Sprintf("Save failed: %v", err))
			return
		}
		p.status.SetText("Saved " + path)
	})
	stopButton := widget.NewButton("Stop", cancel)

	controls := container.NewVBox(
		p.progress,
		container.NewHBox(saveButton, stopButton),
		p.status,
	)
	w.SetContent(container.NewBorder(nil, controls, nil, nil, p.imgCanvas))

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.render(ctx, newStatusLogger(p.status))
	}()

	w.SetOnClosed(func() {
		cancel()
		<-done
		p.renderer.Close()
	})
	w.ShowAndRun()
}

// render drives the passes and pushes every readback to the window
func (p *preview) render(ctx context.Context, logger core.Logger) {
	start := time.Now()
	passChan, errChan := renderer.RenderProgressive(ctx, p.renderer, p.image.Samples, logger)

	for result := range passChan {
		p.mu.Lock()
		p.latest = result.Image
		p.mu.Unlock()

		p.imgCanvas.Image = result.Image
		p.imgCanvas.Refresh()
		p.progress.SetValue(float64(result.Pass.Pass) / float64(p.image.Samples))
	}

	if err := <-errChan; err != nil {
		p.status.SetText(fmt.Sprintf("Stopped after %d passes", p.renderer.Samples()))
		return
	}
	p.status.SetText(fmt.Sprintf("Done: %d passes in %v", p.renderer.Samples(), time.Since(start).Round(time.Millisecond)))
}

// save writes the latest pass to output/<scene>/
func (p *preview) save() (string, error) {
	p.mu.Lock()
	img := p.latest
	p.mu.Unlock()
	if img == nil {
		return "", fmt.Errorf("nothing rendered yet")
	}

	dir, err := output.CreateOutputDir("output", p.name)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, output.RenderFilename(time.Now())+".png")
	return path, output.WritePNG(path, img)
}

// statusLogger shows the last progress line in the status label and echoes it to the log
type statusLogger struct {
	label *widget.Label
}

func newStatusLogger(label *widget.Label) core.Logger {
	return &statusLogger{label: label}
}

func (l *statusLogger) Printf(format string, args ...interface{}) {
	message := strings.TrimSpace(fmt.Sprintf(format, args...))
	log.Print(message)
	l.label.SetText(message)
}
