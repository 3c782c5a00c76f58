package integrator

import (
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
)

// MinHitDistance is the lower bound of the intersection range; it keeps scattered rays
// from re-hitting the surface they start on (shadow acne)
const MinHitDistance = 0.001

// PathTracingIntegrator implements single-path unidirectional path tracing over a sky gradient
type PathTracingIntegrator struct {
	TopColor    core.Color // Sky color straight up
	BottomColor core.Color // Sky color straight down
}

// NewPathTracingIntegrator creates an integrator with the white to sky-blue background
func NewPathTracingIntegrator() *PathTracingIntegrator {
	return &PathTracingIntegrator{
		TopColor:    core.NewVec3(0.5, 0.7, 1.0),
		BottomColor: core.NewVec3(1.0, 1.0, 1.0),
	}
}

// RayColor computes the color for a single ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world geometry.Shape, depth int, sampler core.Sampler) core.Color {
	color, _ := pt.Trace(ray, world, depth, sampler)
	return color
}

// Trace computes the color for a ray and also reports how many ray segments were intersected
// against the world. The bounce recursion is unrolled into a loop carrying the product of
// attenuations seen so far.
func (pt *PathTracingIntegrator) Trace(ray core.Ray, world geometry.Shape, depth int, sampler core.Sampler) (core.Color, int) {
	throughput := core.NewVec3(1, 1, 1)
	segments := 0

	for ; depth > 0; depth-- {
		segments++
		hit, isHit := world.Hit(ray, MinHitDistance, math.Inf(1))
		if !isHit {
			return throughput.MultiplyVec(pt.Background(ray)), segments
		}

		scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
		if !didScatter {
			// Material absorbed the ray
			return core.Color{}, segments
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		ray = scatter.Scattered
	}

	// Bounce budget exhausted, no more light is gathered
	return core.Color{}, segments
}

// Background returns a gradient color based on ray direction
func (pt *PathTracingIntegrator) Background(r core.Ray) core.Color {
	unitDirection := r.Direction.Normalize()

	// Use the y-component to create a gradient (map from -1,1 to 0,1)
	t := 0.5 * (unitDirection.Y + 1.0)

	// Linear interpolation: (1-t)*bottom + t*top
	return pt.BottomColor.Multiply(1.0 - t).Add(pt.TopColor.Multiply(t))
}
