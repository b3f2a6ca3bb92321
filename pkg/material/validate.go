package material

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidMaterial reports material parameters outside their valid range
var ErrInvalidMaterial = errors.New("invalid material")

// Validate checks a material's parameters once, before it is used for rendering
func Validate(m Material) error {
	switch v := m.(type) {
	case *Lambertian:
		if !v.Albedo.IsFinite() {
			return fmt.Errorf("%w: lambertian albedo %v is not finite", ErrInvalidMaterial, v.Albedo)
		}
	case *Metal:
		if !v.Albedo.IsFinite() {
			return fmt.Errorf("%w: metal albedo %v is not finite", ErrInvalidMaterial, v.Albedo)
		}
		if v.Fuzzness < 0 || v.Fuzzness > 1 || math.IsNaN(v.Fuzzness) {
			return fmt.Errorf("%w: metal fuzz %g outside [0, 1]", ErrInvalidMaterial, v.Fuzzness)
		}
	case *Dielectric:
		if !(v.RefractiveIndex > 0) || math.IsInf(v.RefractiveIndex, 0) {
			return fmt.Errorf("%w: refractive index %g must be positive", ErrInvalidMaterial, v.RefractiveIndex)
		}
	case nil:
		return fmt.Errorf("%w: nil material", ErrInvalidMaterial)
	}
	return nil
}

// Kind returns a short lowercase name for the material variant
func Kind(m Material) string {
	switch m.(type) {
	case *Lambertian:
		return "lambertian"
	case *Metal:
		return "metal"
	case *Dielectric:
		return "dielectric"
	default:
		return "unknown"
	}
}
