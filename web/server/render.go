package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

// PassUpdate is sent via SSE after every completed pass
type PassUpdate struct {
	PassNumber       int     `json:"passNumber"`
	TotalPasses      int     `json:"totalPasses"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	ImageData        string  `json:"imageData"` // Base64 encoded PNG
	ElapsedMs        int64   `json:"elapsedMs"`
	PassMs           int64   `json:"passMs"`
	SamplesPerPixel  uint64  `json:"samplesPerPixel"`
	TotalSamples     uint64  `json:"totalSamples"`
	AverageLuminance float64 `json:"averageLuminance"`
	SphereCount      int     `json:"sphereCount"`
	IsComplete       bool    `json:"isComplete"`
}

// handleRender runs a progressive render and streams a preview after each pass via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)
	ctx := r.Context()

	req := &RenderRequest{}
	setup, err := s.parseCommonSceneParams(r, req)
	if err != nil {
		s.writeSSEEvent(w, "error", fmt.Sprintf("Invalid request: %v", err))
		return
	}
	if req.Passes, err = parseIntParam(r.URL.Query(), "passes", setup.Image.Samples, MinPasses, MaxPasses); err != nil {
		s.writeSSEEvent(w, "error", fmt.Sprintf("Invalid request: %v", err))
		return
	}

	camera, err := setup.NewCamera()
	if err != nil {
		s.writeSSEEvent(w, "error", err.Error())
		return
	}

	config := renderer.DefaultConfig()
	config.Seed = req.Seed
	rt, err := renderer.New(setup.Scene, camera, setup.Image, config)
	if err != nil {
		s.writeSSEEvent(w, "error", err.Error())
		return
	}
	defer rt.Close()

	consoleChan, webLogger := s.setupConsoleLogging()
	webLogger.Printf("Rendering %s at %dx%d, %d passes, max depth %d\n",
		req.Scene, setup.Image.Width, setup.Image.Height, req.Passes, setup.Image.MaxDepth)

	startTime := time.Now()
	passChan, errChan := renderer.RenderProgressive(ctx, rt, req.Passes, webLogger)

	// The handler goroutine is the only writer to w
renderLoop:
	for {
		select {
		case msg := <-consoleChan:
			s.writeConsoleMessage(w, msg)

		case result, ok := <-passChan:
			if !ok {
				break renderLoop
			}
			update, err := s.newPassUpdate(result, req, setup.Scene.SphereCount(), startTime)
			if err != nil {
				log.Printf("Error encoding pass %d: %v", result.Pass.Pass, err)
				continue
			}
			data, err := json.Marshal(update)
			if err != nil {
				log.Printf("Error marshaling pass update: %v", err)
				continue
			}
			s.writeSSEEvent(w, "passComplete", string(data))

		case <-ctx.Done():
			// Client disconnected; wait for the pass in flight before the workers stop
			for range passChan {
			}
			return
		}
	}

	s.flushConsole(w, consoleChan)

	if err := <-errChan; err != nil {
		if !errors.Is(err, context.Canceled) {
			s.writeSSEEvent(w, "error", fmt.Sprintf("Rendering failed: %v", err))
		}
		return
	}
	s.writeSSEEvent(w, "complete", "Rendering completed")
}

// newPassUpdate converts a pass result into the SSE payload
func (s *Server) newPassUpdate(result renderer.PassResult, req *RenderRequest, sphereCount int, startTime time.Time) (PassUpdate, error) {
	imageData, err := s.imageToBase64PNG(result.Image)
	if err != nil {
		return PassUpdate{}, err
	}

	bounds := result.Image.Bounds()
	return PassUpdate{
		PassNumber:       result.Pass.Pass,
		TotalPasses:      req.Passes,
		Width:            bounds.Dx(),
		Height:           bounds.Dy(),
		ImageData:        imageData,
		ElapsedMs:        time.Since(startTime).Milliseconds(),
		PassMs:           result.Pass.Duration.Milliseconds(),
		SamplesPerPixel:  result.Stats.SamplesPerPixel,
		TotalSamples:     result.Stats.TotalSamples,
		AverageLuminance: result.Stats.AverageLuminance,
		SphereCount:      sphereCount,
		IsComplete:       result.IsLast,
	}, nil
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan)
	return consoleChan, webLogger
}

// writeConsoleMessage sends one console message as an SSE event
func (s *Server) writeConsoleMessage(w http.ResponseWriter, msg ConsoleMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling console message: %v", err)
		return
	}
	s.writeSSEEvent(w, "console", string(data))
}

// flushConsole sends any console messages still buffered
func (s *Server) flushConsole(w http.ResponseWriter, consoleChan chan ConsoleMessage) {
	for {
		select {
		case msg := <-consoleChan:
			s.writeConsoleMessage(w, msg)
		default:
			return
		}
	}
}

// writeSSEEvent writes a single SSE event and flushes it to the client
func (s *Server) writeSSEEvent(w http.ResponseWriter, event, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
		return nil
	}
	return fmt.Errorf("streaming not supported")
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
