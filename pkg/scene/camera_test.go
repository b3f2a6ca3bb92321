package scene

import (
	"errors"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

func TestNewCamera_RayDirections(t *testing.T) {
	config := DefaultCameraConfig()
	config.AspectRatio = 2.0

	camera, err := NewCamera(config)
	if err != nil {
		t.Fatalf("NewCamera() error: %v", err)
	}

	// A 90 degree fov puts the viewport 2 high and 4 wide at distance 1
	tests := []struct {
		name     string
		s, t     float64
		expected core.Vec3
	}{
		{"center", 0.5, 0.5, core.NewVec3(0, 0, -1)},
		{"lower left", 0, 0, core.NewVec3(-2, -1, -1).Normalize()},
		{"upper right", 1, 1, core.NewVec3(2, 1, -1).Normalize()},
		{"top middle", 0.5, 1, core.NewVec3(0, 1, -1).Normalize()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := camera.GetRay(tt.s, tt.t)
			if !ray.Origin.Equals(config.LookFrom) {
				t.Errorf("Expected origin %v, got %v", config.LookFrom, ray.Origin)
			}
			if !ray.Direction.ApproxEquals(tt.expected, 1e-9) {
				t.Errorf("Expected direction %v, got %v", tt.expected, ray.Direction)
			}
		})
	}
}

func TestNewCamera_LooksAtTarget(t *testing.T) {
	config := CameraConfig{
		LookFrom:    core.NewVec3(-2, 2, 1),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        20,
		AspectRatio: 16.0 / 9.0,
	}
	camera, err := NewCamera(config)
	if err != nil {
		t.Fatalf("NewCamera() error: %v", err)
	}

	expected := config.LookAt.Subtract(config.LookFrom).Normalize()
	ray := camera.GetRay(0.5, 0.5)
	if !ray.Direction.ApproxEquals(expected, 1e-9) {
		t.Errorf("Center ray should point at the target: expected %v, got %v", expected, ray.Direction)
	}

	// Increasing t moves up the image
	up := camera.GetRay(0.5, 1)
	if up.Direction.Y <= ray.Direction.Y {
		t.Errorf("Top ray %v should point higher than center ray %v", up.Direction, ray.Direction)
	}
}

func TestNewCamera_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*CameraConfig)
	}{
		{"zero fov", func(c *CameraConfig) { c.VFov = 0 }},
		{"straight angle fov", func(c *CameraConfig) { c.VFov = 180 }},
		{"zero aspect", func(c *CameraConfig) { c.AspectRatio = 0 }},
		{"look at self", func(c *CameraConfig) { c.LookAt = c.LookFrom }},
		{"up parallel to view", func(c *CameraConfig) { c.Up = core.NewVec3(0, 0, 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultCameraConfig()
			tt.modify(&config)
			if _, err := NewCamera(config); !errors.Is(err, ErrInvalidCamera) {
				t.Errorf("Expected ErrInvalidCamera, got %v", err)
			}
		})
	}
}

func TestNewImage_DerivesHeight(t *testing.T) {
	tests := []struct {
		name           string
		aspect         float64
		width          int
		expectedHeight int
	}{
		{"16:9", 16.0 / 9.0, 400, 225},
		{"square", 1.0, 800, 800},
		{"truncates", 3.0, 100, 33},
		{"at least one row", 100.0, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := NewImage(tt.aspect, tt.width, 10, 5)
			if img.Height != tt.expectedHeight {
				t.Errorf("Expected height %d, got %d", tt.expectedHeight, img.Height)
			}
			if img.Pixels() != tt.width*tt.expectedHeight {
				t.Errorf("Expected %d pixels, got %d", tt.width*tt.expectedHeight, img.Pixels())
			}
		})
	}
}
