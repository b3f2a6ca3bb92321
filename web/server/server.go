package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/df07/go-progressive-pathtracer/pkg/loaders"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// Request limits shared by the render, inspect and scene-config endpoints
const (
	MinWidth        = 16
	MaxWidth        = 2000
	MinPasses       = 1
	MaxPasses       = 10000
	MinMaxDepth     = 1
	MaxMaxDepth     = 500
	jsonScenePrefix = "json:"
)

// Server handles web requests for the progressive path tracer
type Server struct {
	port      int
	scenesDir string
}

// NewServer creates a new web server. JSON scenes are discovered in scenesDir.
func NewServer(port int, scenesDir string) *Server {
	return &Server{port: port, scenesDir: scenesDir}
}

// RenderRequest represents a render or inspect request from the client
type RenderRequest struct {
	Scene    string `json:"scene"`    // Preset ID or "json:<name>"
	Width    int    `json:"width"`    // Image width, height follows the camera aspect ratio
	Passes   int    `json:"passes"`   // Number of progressive passes
	MaxDepth int    `json:"maxDepth"` // Bounce budget per sample
	Seed     int64  `json:"seed"`     // Base seed for the per-tile random streams
}

// Handler returns the HTTP routes served by Start
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir("static/")))

	// API endpoints
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleScenes lists the built-in presets and the JSON scene files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	response, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// createSetup builds the scene named by a preset ID or "json:<name>"
func (s *Server) createSetup(sceneID string) (*scene.Setup, error) {
	if name, ok := strings.CutPrefix(sceneID, jsonScenePrefix); ok {
		// Only plain file names inside the scenes directory are allowed
		if name == "" || name != filepath.Base(name) {
			return nil, fmt.Errorf("%w: %q", scene.ErrUnknownScene, sceneID)
		}
		return loaders.LoadScene(filepath.Join(s.scenesDir, name+".json"))
	}
	return scene.LookupPreset(sceneID)
}

// parseCommonSceneParams parses the scene and size parameters shared by
// render and inspect requests and resolves them against the scene defaults
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) (*scene.Setup, error) {
	query := r.URL.Query()

	req.Scene = query.Get("scene")
	if req.Scene == "" {
		req.Scene = "default"
	}

	setup, err := s.createSetup(req.Scene)
	if err != nil {
		return nil, err
	}

	if req.Width, err = parseIntParam(query, "width", setup.Image.Width, MinWidth, MaxWidth); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", setup.Image.MaxDepth, MinMaxDepth, MaxMaxDepth); err != nil {
		return nil, err
	}
	if seed := query.Get("seed"); seed != "" {
		if req.Seed, err = strconv.ParseInt(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %s", seed)
		}
	} else {
		req.Seed = 42
	}

	setup.Image = scene.NewImage(setup.Camera.AspectRatio, req.Width, setup.Image.Samples, req.MaxDepth)
	return setup, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	sceneID := r.URL.Query().Get("scene")
	if sceneID == "" {
		sceneID = "default"
	}

	setup, err := s.createSetup(sceneID)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Unknown scene: "+sceneID)
		return
	}

	response := map[string]interface{}{
		"scene": sceneID,
		"defaults": map[string]interface{}{
			"width":       setup.Image.Width,
			"height":      setup.Image.Height,
			"passes":      setup.Image.Samples,
			"maxDepth":    setup.Image.MaxDepth,
			"aspectRatio": setup.Camera.AspectRatio,
			"sphereCount": setup.Scene.SphereCount(),
		},
		"limits": map[string]interface{}{
			"width":    map[string]int{"min": MinWidth, "max": MaxWidth},
			"passes":   map[string]int{"min": MinPasses, "max": MaxPasses},
			"maxDepth": map[string]int{"min": MinMaxDepth, "max": MaxMaxDepth},
		},
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
