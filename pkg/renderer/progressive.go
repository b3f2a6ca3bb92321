package renderer

import (
	"context"
	"fmt"
	"image"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// PassResult contains the result of a single pass
type PassResult struct {
	Pass   PassStats
	Image  *image.RGBA // Readback after the pass, origin at the top left
	Stats  RenderStats
	IsLast bool
}

// RenderProgressive runs passes one after another on a separate goroutine,
// reading back after each and sending the result on the returned channel.
// Cancellation is checked between passes; a pass in flight always completes.
// The caller keeps ownership of r and should not touch it until the pass
// channel is closed.
func RenderProgressive(ctx context.Context, r *Renderer, passes int, logger core.Logger) (<-chan PassResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(passChan)
		defer close(errChan)

		logger.Printf("Starting progressive rendering with %d passes on %d workers...\n", passes, r.NumWorkers())

		for pass := 1; pass <= passes; pass++ {
			select {
			case <-ctx.Done():
				logger.Printf("Rendering cancelled before pass %d\n", pass)
				errChan <- ctx.Err()
				return
			default:
			}

			stats := r.Render()
			r.Readback()
			img := r.Image()

			logger.Printf("Pass %d completed in %v (%d samples/pixel)\n", pass, stats.Duration, stats.Samples)

			result := PassResult{
				Pass:   stats,
				Image:  img,
				Stats:  NewRenderStats(r, img),
				IsLast: pass == passes,
			}

			select {
			case passChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return passChan, errChan
}
