package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// ShadowEpsilon is the lower bound of the hit interval for every bounce.
// It keeps a scattered ray from re-hitting the surface it just left.
const ShadowEpsilon = 0.001

var (
	// ErrInvalidRadius reports a sphere with a non-positive radius
	ErrInvalidRadius = errors.New("sphere radius must be positive")
	// ErrInvalidHandle reports a material handle outside the material table
	ErrInvalidHandle = errors.New("material handle out of range")
	// ErrInvalidMaterial reports material parameters outside their valid range
	ErrInvalidMaterial = material.ErrInvalidMaterial
	// ErrNoWorld reports a scene without an aggregate surface
	ErrNoWorld = errors.New("scene has no world")
)

// Scene contains the surfaces and the material table they reference
type Scene struct {
	World     geometry.Surface
	Materials []material.Material
}

// New validates and assembles a scene. Every check the render loop relies on
// happens here, so the hot path does no defensive checking.
func New(world geometry.Surface, materials []material.Material) (*Scene, error) {
	if world == nil {
		return nil, ErrNoWorld
	}

	for i, m := range materials {
		if err := material.Validate(m); err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
	}

	var err error
	index := 0
	geometry.Walk(world, func(s *geometry.Sphere) {
		defer func() { index++ }()
		if err != nil {
			return
		}
		if !(s.Radius > 0) || math.IsInf(s.Radius, 0) {
			err = fmt.Errorf("sphere %d radius %g: %w", index, s.Radius, ErrInvalidRadius)
			return
		}
		if !s.Center.IsFinite() {
			err = fmt.Errorf("sphere %d center %v is not finite", index, s.Center)
			return
		}
		if int(s.Material) < 0 || int(s.Material) >= len(materials) {
			err = fmt.Errorf("sphere %d handle %d with %d materials: %w", index, s.Material, len(materials), ErrInvalidHandle)
		}
	})
	if err != nil {
		return nil, err
	}

	return &Scene{World: world, Materials: materials}, nil
}

// SphereCount returns the number of spheres reachable from the world
func (s *Scene) SphereCount() int {
	count := 0
	geometry.Walk(s.World, func(*geometry.Sphere) { count++ })
	return count
}

// RayColor estimates the radiance arriving along ray with at most depth bounces.
// Attenuations are collected on the way out and applied innermost first, the
// same order the recursive formulation composes them.
func (s *Scene) RayColor(ray core.Ray, depth int, sampler core.Sampler) core.Vec3 {
	var stack [64]core.Vec3
	attenuations := stack[:0]

	var color core.Vec3
	for {
		if depth <= 0 {
			return core.Vec3{}
		}

		hit, ok := s.World.Hit(ray, ShadowEpsilon, math.Inf(1))
		if !ok {
			color = Background(ray.Direction)
			break
		}

		scatter, ok := s.Materials[hit.Material].Scatter(ray, hit, sampler)
		if !ok {
			return core.Vec3{}
		}

		attenuations = append(attenuations, scatter.Attenuation)
		ray = scatter.Scattered
		depth--
	}

	for i := len(attenuations) - 1; i >= 0; i-- {
		color = color.MultiplyVec(attenuations[i])
	}
	return color
}
