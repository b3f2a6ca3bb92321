package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Vec3 // Base color/reflectance
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// Scatter implements the Material interface for lambertian scattering
func (l *Lambertian) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	direction := hit.Normal.Add(core.RandomUnitVector(sampler))

	// The unit vector nearly cancelled the normal
	if direction.NearZero() {
		return ScatterResult{
			Scattered:   core.Ray{Origin: hit.Point, Direction: hit.Normal},
			Attenuation: l.Albedo,
		}, true
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: l.Albedo,
	}, true
}

func (*Lambertian) material() {}
