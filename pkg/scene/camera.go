package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidCamera reports a camera configuration with no usable basis
var ErrInvalidCamera = errors.New("invalid camera")

// CameraConfig describes where the camera sits and what it sees
type CameraConfig struct {
	LookFrom    core.Vec3 `json:"lookFrom"`
	LookAt      core.Vec3 `json:"lookAt"`
	Up          core.Vec3 `json:"up"`
	VFov        float64   `json:"vfov"`        // Vertical field of view in degrees
	AspectRatio float64   `json:"aspectRatio"` // Width over height
}

// DefaultCameraConfig looks down -z from the origin with a 90 degree field of view
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 16.0 / 9.0,
	}
}

// Camera generates rays for rendering. It is immutable once built.
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
}

// NewCamera derives the viewport basis from the configuration
func NewCamera(config CameraConfig) (*Camera, error) {
	if !(config.VFov > 0 && config.VFov < 180) {
		return nil, fmt.Errorf("%w: vertical fov %g outside (0, 180)", ErrInvalidCamera, config.VFov)
	}
	if !(config.AspectRatio > 0) || math.IsInf(config.AspectRatio, 0) {
		return nil, fmt.Errorf("%w: aspect ratio %g must be positive", ErrInvalidCamera, config.AspectRatio)
	}

	w := config.LookFrom.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	if w.NearZero() || u.NearZero() {
		return nil, fmt.Errorf("%w: look-from, look-at and up do not span a basis", ErrInvalidCamera)
	}
	v := w.Cross(u)

	viewportHeight := 2.0 * math.Tan(mgl64.DegToRad(config.VFov)/2)
	viewportWidth := config.AspectRatio * viewportHeight

	origin := config.LookFrom
	horizontal := u.Multiply(viewportWidth)
	vertical := v.Multiply(viewportHeight)
	lowerLeftCorner := origin.Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w)

	return &Camera{
		origin:          origin,
		horizontal:      horizontal,
		vertical:        vertical,
		lowerLeftCorner: lowerLeftCorner,
	}, nil
}

// GetRay generates a ray for image-plane coordinates (s, t).
// (0, 0) is the lower-left corner; jitter may push s and t slightly past [0, 1].
func (c *Camera) GetRay(s, t float64) core.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin)

	return core.NewRay(c.origin, direction)
}

// Origin returns the camera position
func (c *Camera) Origin() core.Vec3 {
	return c.origin
}
