package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// NewGlassScene lines up water, glass and diamond spheres in front of a mirror
func NewGlassScene() (*Setup, error) {
	b := NewBuilder()

	ground := b.Material(material.NewLambertian(core.NewVec3(0.45, 0.45, 0.5)))
	mirror := b.Material(material.NewMetal(core.NewVec3(0.95, 0.95, 0.95), 0.0))
	backdrop := b.Material(material.NewLambertian(core.NewVec3(0.7, 0.3, 0.2)))

	indices := []float64{1.0, 1.33, 1.5, 2.42}
	for i, ri := range indices {
		h := b.Material(material.NewDielectric(ri))
		x := -2.25 + 1.5*float64(i)
		b.Sphere(core.NewVec3(x, 0.6, 0), 0.6, h)
	}

	b.Sphere(core.NewVec3(0, -1000, 0), 1000, ground).
		Sphere(core.NewVec3(0, 4, -16), 8, mirror).
		Sphere(core.NewVec3(-1.5, 0.25, -1.5), 0.25, backdrop).
		Sphere(core.NewVec3(1.5, 0.25, -1.5), 0.25, backdrop)

	s, err := b.Build()
	if err != nil {
		return nil, err
	}

	aspect := 2.0
	return &Setup{
		Scene: s,
		Camera: CameraConfig{
			LookFrom:    core.NewVec3(0, 2, 6),
			LookAt:      core.NewVec3(0, 0.5, 0),
			Up:          core.NewVec3(0, 1, 0),
			VFov:        35,
			AspectRatio: aspect,
		},
		Image: NewImage(aspect, 600, 200, 50),
	}, nil
}
