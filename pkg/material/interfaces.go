package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Handle is an index into a scene's material table
type Handle int

// Material is the closed set of scattering models: *Lambertian, *Metal and
// *Dielectric. The unexported method keeps other packages from adding variants.
type Material interface {
	// Scatter returns the bounced ray and its attenuation, or false if the
	// path is absorbed.
	Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool)

	material()
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // Color attenuation
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Unit normal, always opposing the incoming ray
	Material  Handle    // Material of the hit object
	T         float64   // Parameter t along the ray
	FrontFace bool      // Whether the outward normal already opposed the ray
}

// NewHitRecord builds a record for a hit at parameter t, orienting the
// outward normal against the ray.
func NewHitRecord(ray core.Ray, t float64, outwardNormal core.Vec3, handle Handle) HitRecord {
	h := HitRecord{
		Point:    ray.At(t),
		T:        t,
		Material: handle,
	}
	h.SetFaceNormal(ray, outwardNormal)
	return h
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}
