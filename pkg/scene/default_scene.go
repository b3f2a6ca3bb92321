package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// NewDefaultScene creates three spheres (diffuse, glass, metal) on a ground sphere
func NewDefaultScene() (*Setup, error) {
	b := NewBuilder()

	ground := b.Material(material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0)))
	lambertianBlue := b.Material(material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5)))
	glass := b.Material(material.NewDielectric(1.5))
	metalGold := b.Material(material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0))
	metalSilver := b.Material(material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.3))

	b.Sphere(core.NewVec3(0, -100.5, -1), 100, ground).
		Sphere(core.NewVec3(0, 0, -1), 0.5, lambertianBlue).
		Sphere(core.NewVec3(-1, 0, -1), 0.5, glass).
		Sphere(core.NewVec3(1, 0, -1), 0.5, metalGold).
		Sphere(core.NewVec3(0.35, -0.35, -0.45), 0.15, metalSilver)

	s, err := b.Build()
	if err != nil {
		return nil, err
	}

	aspect := 16.0 / 9.0
	return &Setup{
		Scene: s,
		Camera: CameraConfig{
			LookFrom:    core.NewVec3(-2, 2, 1),
			LookAt:      core.NewVec3(0, 0, -1),
			Up:          core.NewVec3(0, 1, 0),
			VFov:        30,
			AspectRatio: aspect,
		},
		Image: NewImage(aspect, 400, 100, 50),
	}, nil
}
