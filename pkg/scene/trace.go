package scene

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Outcome describes how a bounce ended
type Outcome string

const (
	OutcomeScattered Outcome = "scattered"
	OutcomeAbsorbed  Outcome = "absorbed"
	OutcomeMissed    Outcome = "missed"
	OutcomeMaxDepth  Outcome = "max-depth"
)

// Bounce records one step of a traced path
type Bounce struct {
	Depth        int                `json:"depth"` // Remaining bounce budget when this ray was cast
	Ray          core.Ray           `json:"ray"`
	Outcome      Outcome            `json:"outcome"`
	Hit          material.HitRecord `json:"hit"`
	MaterialKind string             `json:"materialKind,omitempty"`
	Attenuation  core.Vec3          `json:"attenuation"`
}

// Path is the full history of one traced ray
type Path struct {
	Bounces []Bounce  `json:"bounces"`
	Color   core.Vec3 `json:"color"`
}

// TracePath follows a single ray like RayColor and records every bounce
func (s *Scene) TracePath(ray core.Ray, depth int, sampler core.Sampler) Path {
	var path Path
	for {
		bounce := Bounce{Depth: depth, Ray: ray}

		if depth <= 0 {
			bounce.Outcome = OutcomeMaxDepth
			path.Bounces = append(path.Bounces, bounce)
			return path
		}

		hit, ok := s.World.Hit(ray, ShadowEpsilon, math.Inf(1))
		if !ok {
			bounce.Outcome = OutcomeMissed
			path.Bounces = append(path.Bounces, bounce)
			path.Color = Background(ray.Direction)
			break
		}

		mat := s.Materials[hit.Material]
		bounce.Hit = hit
		bounce.MaterialKind = material.Kind(mat)

		scatter, ok := mat.Scatter(ray, hit, sampler)
		if !ok {
			bounce.Outcome = OutcomeAbsorbed
			path.Bounces = append(path.Bounces, bounce)
			return path
		}

		bounce.Outcome = OutcomeScattered
		bounce.Attenuation = scatter.Attenuation
		path.Bounces = append(path.Bounces, bounce)

		ray = scatter.Scattered
		depth--
	}

	for i := len(path.Bounces) - 1; i >= 0; i-- {
		if path.Bounces[i].Outcome == OutcomeScattered {
			path.Color = path.Color.MultiplyVec(path.Bounces[i].Attenuation)
		}
	}
	return path
}

// Trace follows a single ray and logs each bounce
func (s *Scene) Trace(ray core.Ray, depth int, sampler core.Sampler, logger core.Logger) core.Vec3 {
	path := s.TracePath(ray, depth, sampler)
	for _, b := range path.Bounces {
		switch b.Outcome {
		case OutcomeMaxDepth:
			logger.Printf("Ray hit max depth.\n")
		case OutcomeMissed:
			logger.Printf("Tracing ray %d with o: %v, d: %v\n", b.Depth, b.Ray.Origin, b.Ray.Direction)
			logger.Printf("No hit.\n")
		default:
			logger.Printf("Tracing ray %d with o: %v, d: %v\n", b.Depth, b.Ray.Origin, b.Ray.Direction)
			logger.Printf("Ray %d hit %s (material %d) at t=%.6f p=%v n=%v front=%t: %s\n",
				b.Depth, b.MaterialKind, b.Hit.Material, b.Hit.T, b.Hit.Point, b.Hit.Normal, b.Hit.FrontFace, b.Outcome)
		}
	}
	logger.Printf("Result: %v\n", path.Color)
	return path.Color
}
