package scene

import "github.com/df07/go-progressive-pathtracer/pkg/core"

var (
	skyHorizon = core.NewVec3(1.0, 1.0, 1.0)
	skyZenith  = core.NewVec3(0.5, 0.7, 1.0)
)

// Background returns the sky gradient for a unit direction, blending white
// to sky blue by t = 0.5*(y + 1)
func Background(direction core.Vec3) core.Vec3 {
	t := 0.5 * (direction.Y + 1.0)
	return skyHorizon.Multiply(1.0 - t).Add(skyZenith.Multiply(t))
}
