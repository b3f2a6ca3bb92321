package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

const testScene = `{
  "name": "Test Ball",
  "group": "Tests",
  "camera": {"lookFrom": [0, 0, 2], "lookAt": [0, 0, 0], "up": [0, 1, 0], "vfov": 60, "aspectRatio": 1},
  "image": {"width": 32, "samples": 2, "maxDepth": 4},
  "materials": [{"name": "red", "type": "lambertian", "albedo": [0.8, 0.1, 0.1]}],
  "spheres": [{"center": [0, 0, 0], "radius": 0.5, "material": "red"}]
}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ball.json"), []byte(testScene), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return NewServer(0, dir)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("Unexpected body %s", rec.Body.String())
	}
}

func TestHandleScenes(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/scenes")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var response scene.ScenesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if len(response.Groups) != 2 {
		t.Fatalf("Expected built-in and Tests groups, got %+v", response.Groups)
	}
	if response.Groups[1].Name != "Tests" || response.Groups[1].Scenes[0].ID != "json:ball" {
		t.Errorf("Unexpected JSON scene group %+v", response.Groups[1])
	}
}

func TestHandleSceneConfig(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		scene      string
		wantStatus int
		wantWidth  float64
	}{
		{"default", http.StatusOK, 400},
		{"json:ball", http.StatusOK, 32},
		{"nonexistent", http.StatusBadRequest, 0},
		{"json:../ball", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.scene, func(t *testing.T) {
			rec := get(t, s, "/api/scene-config?scene="+url.QueryEscape(tt.scene))
			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var response struct {
				Defaults map[string]float64 `json:"defaults"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if response.Defaults["width"] != tt.wantWidth {
				t.Errorf("Expected width %v, got %v", tt.wantWidth, response.Defaults["width"])
			}
			if response.Defaults["sphereCount"] < 1 {
				t.Errorf("Expected spheres, got %v", response.Defaults["sphereCount"])
			}
		})
	}
}

func TestHandleRender_StreamsEveryPass(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/render?scene=default&width=32&passes=3&maxDepth=4")

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected SSE content type, got %q", ct)
	}

	body := rec.Body.String()
	if n := strings.Count(body, "event: passComplete\n"); n != 3 {
		t.Errorf("Expected 3 passComplete events, got %d", n)
	}
	if !strings.Contains(body, "event: console\n") {
		t.Error("Expected console events")
	}
	if !strings.HasSuffix(body, "event: complete\ndata: Rendering completed\n\n") {
		t.Errorf("Expected stream to end with complete event, got tail %q", body[max(0, len(body)-80):])
	}

	// The last pass update reports the final sample count
	var last PassUpdate
	for _, block := range strings.Split(body, "\n\n") {
		if data, ok := strings.CutPrefix(block, "event: passComplete\ndata: "); ok {
			if err := json.Unmarshal([]byte(data), &last); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
		}
	}
	if last.SamplesPerPixel != 3 || !last.IsComplete || last.Width != 32 || last.Height != 18 {
		t.Errorf("Unexpected final update %+v", last)
	}
	if last.ImageData == "" {
		t.Error("Expected preview image data")
	}
}

func TestHandleRender_InvalidRequest(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/api/render?scene=nonexistent",
		"/api/render?scene=default&width=1",
		"/api/render?scene=default&passes=0",
		"/api/render?scene=default&seed=abc",
	} {
		body := get(t, s, path).Body.String()
		if !strings.HasPrefix(body, "event: error\n") {
			t.Errorf("%s: expected error event, got %q", path, body)
		}
	}
}

func TestHandleInspect(t *testing.T) {
	s := newTestServer(t)

	// The ball fills the middle of the frame
	rec := get(t, s, "/api/inspect?scene=json:ball&x=16&y=16")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response InspectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if !response.Hit || response.MaterialType != "lambertian" || response.GeometryType != "sphere" {
		t.Errorf("Unexpected inspection %+v", response)
	}
	if len(response.Path.Bounces) == 0 {
		t.Error("Expected the traced path")
	}

	// The corners see only sky
	rec = get(t, s, "/api/inspect?scene=json:ball&x=0&y=0")
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if response.Hit {
		t.Errorf("Expected a miss at the corner, got %+v", response)
	}
}

func TestHandleInspect_BadCoordinates(t *testing.T) {
	s := newTestServer(t)

	for _, query := range []string{"x=a&y=0", "x=0&y=b", "x=32&y=0", "x=0&y=-1"} {
		rec := get(t, s, "/api/inspect?scene=json:ball&"+query)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", query, rec.Code)
		}
	}
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		expected  int
		expectErr bool
	}{
		{"default when missing", "", 7, false},
		{"valid value", "n=12", 12, false},
		{"below minimum", "n=0", 0, true},
		{"above maximum", "n=101", 0, true},
		{"not a number", "n=x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			got, err := parseIntParam(values, "n", 7, 1, 100)
			if tt.expectErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil || got != tt.expected {
				t.Errorf("Expected %d, got %d (%v)", tt.expected, got, err)
			}
		})
	}
}
