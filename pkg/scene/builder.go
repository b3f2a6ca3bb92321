package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// ErrUnknownScene reports a preset name that is not registered
var ErrUnknownScene = errors.New("unknown scene")

// Builder collects materials and spheres, handing out material handles
type Builder struct {
	materials []material.Material
	world     *geometry.List
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{world: geometry.NewList()}
}

// Material registers a material and returns its handle
func (b *Builder) Material(m material.Material) material.Handle {
	b.materials = append(b.materials, m)
	return material.Handle(len(b.materials) - 1)
}

// Sphere adds a sphere to the world
func (b *Builder) Sphere(center core.Vec3, radius float64, mat material.Handle) *Builder {
	b.world.Add(geometry.NewSphere(center, radius, mat))
	return b
}

// Build validates and returns the scene
func (b *Builder) Build() (*Scene, error) {
	return New(b.world, b.materials)
}

// Setup bundles a scene with the camera and image it is meant to be rendered with
type Setup struct {
	Scene  *Scene
	Camera CameraConfig
	Image  Image
}

// NewCamera builds the setup's camera
func (s *Setup) NewCamera() (*Camera, error) {
	return NewCamera(s.Camera)
}

// Preset is a built-in scene
type Preset struct {
	ID          string
	DisplayName string
	Description string
	Build       func() (*Setup, error)
}

var presets = map[string]Preset{
	"default": {
		ID:          "default",
		DisplayName: "Default Scene",
		Description: "Diffuse, glass and metal spheres on a large ground sphere",
		Build:       NewDefaultScene,
	},
	"spheregrid": {
		ID:          "spheregrid",
		DisplayName: "Sphere Grid",
		Description: "10x10 grid of rainbow-colored metallic spheres",
		Build:       NewSphereGridScene,
	},
	"glass": {
		ID:          "glass",
		DisplayName: "Glass Spheres",
		Description: "Dielectrics of increasing refractive index in front of a mirror",
		Build:       NewGlassScene,
	},
}

// Presets returns the built-in scenes sorted by ID
func Presets() []Preset {
	list := make([]Preset, 0, len(presets))
	for _, p := range presets {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// LookupPreset builds the built-in scene with the given ID
func LookupPreset(id string) (*Setup, error) {
	p, ok := presets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}
	setup, err := p.Build()
	if err != nil {
		return nil, fmt.Errorf("building scene %q: %w", id, err)
	}
	return setup, nil
}
