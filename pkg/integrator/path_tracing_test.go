package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// MockShape implements geometry.Shape for testing
type MockShape struct {
	hitFn func(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
}

func (m MockShape) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	return m.hitFn(ray, tMin, tMax)
}

// createTestWorld creates a lambertian sphere resting on a large ground sphere
func createTestWorld() *geometry.HittableList {
	return geometry.NewHittableList(
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3))),
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))),
	)
}

func TestPathTracingDepthTermination(t *testing.T) {
	world := createTestWorld()
	integrator := NewPathTracingIntegrator()
	sampler := core.NewSeededSampler(42)

	rays := []core.Ray{
		core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), // at the sphere
		core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)),  // at the sky
	}

	for _, ray := range rays {
		color := integrator.RayColor(ray, world, 0, sampler)
		if color != (core.Vec3{}) {
			t.Errorf("Expected black color for depth 0, got %v", color)
		}
	}

	// Positive depth should gather some light from the sky eventually
	accum := core.Vec3{}
	for i := 0; i < 50; i++ {
		accum = accum.Add(integrator.RayColor(rays[0], world, 10, sampler))
	}
	if accum == (core.Vec3{}) {
		t.Error("Expected non-black color for positive depth")
	}
}

func TestPathTracingSkyGradient(t *testing.T) {
	world := geometry.NewHittableList()
	integrator := NewPathTracingIntegrator()
	sampler := core.NewSeededSampler(42)

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Vec3
	}{
		{"straight up", core.NewVec3(0, 1, 0), core.NewVec3(0.5, 0.7, 1.0)},
		{"straight down", core.NewVec3(0, -1, 0), core.NewVec3(1.0, 1.0, 1.0)},
		{"horizon", core.NewVec3(0, 0, -1), core.NewVec3(0.75, 0.85, 1.0)},
		{"unnormalized up", core.NewVec3(0, 5, 0), core.NewVec3(0.5, 0.7, 1.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(core.NewVec3(0, 0, 0), tt.direction)
			color := integrator.RayColor(ray, world, 50, sampler)
			if !color.ApproxEquals(tt.expected, 1e-12) {
				t.Errorf("Expected %v, got %v", tt.expected, color)
			}
		})
	}
}

func TestPathTracingAbsorbedRayIsBlack(t *testing.T) {
	// A metal whose mirror direction always points into the surface never scatters
	world := MockShape{hitFn: func(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
		return &material.HitRecord{
			Point:     ray.At(1),
			Normal:    ray.Direction.Normalize(), // Deliberately along the ray
			T:         1,
			FrontFace: true,
			Material:  material.NewMetal(core.NewVec3(1, 1, 1), 0),
		}, true
	}}

	integrator := NewPathTracingIntegrator()
	color := integrator.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), world, 10, core.NewSeededSampler(1))
	if color != (core.Vec3{}) {
		t.Errorf("Expected black for an absorbed ray, got %v", color)
	}
}

func TestPathTracingAttenuationProduct(t *testing.T) {
	// Two mirrors facing each other along z; the ray bounces between them until the budget runs out
	albedo := core.NewVec3(0.5, 0.8, 1.0)
	mirror := material.NewMetal(albedo, 0)
	world := geometry.NewHittableList(
		geometry.NewSphere(core.NewVec3(0, 0, -1001), 1000, mirror),
		geometry.NewSphere(core.NewVec3(0, 0, 1001), 1000, mirror),
	)
	integrator := NewPathTracingIntegrator()
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))

	color, segments := integrator.Trace(ray, world, 5, core.NewSeededSampler(1))
	if color != (core.Vec3{}) {
		t.Errorf("Trapped ray should exhaust its budget and return black, got %v", color)
	}
	if segments != 5 {
		t.Errorf("Expected 5 traced segments, got %d", segments)
	}

	// One mirror only: a single bounce then the sky straight up the z axis (horizon color)
	single := geometry.NewHittableList(geometry.NewSphere(core.NewVec3(0, 0, -1001), 1000, mirror))
	color, segments = integrator.Trace(ray, single, 5, core.NewSeededSampler(1))
	expected := albedo.MultiplyVec(core.NewVec3(0.75, 0.85, 1.0))
	if !color.ApproxEquals(expected, 1e-9) {
		t.Errorf("Expected %v, got %v", expected, color)
	}
	if segments != 2 {
		t.Errorf("Expected 2 traced segments, got %d", segments)
	}
}

// recursiveRayColor is the textbook recursive formulation used as a reference
func recursiveRayColor(pt *PathTracingIntegrator, ray core.Ray, world geometry.Shape, depth int, sampler core.Sampler) core.Vec3 {
	if depth <= 0 {
		return core.Vec3{}
	}
	hit, isHit := world.Hit(ray, MinHitDistance, math.Inf(1))
	if !isHit {
		return pt.Background(ray)
	}
	scatter, ok := hit.Material.Scatter(ray, *hit, sampler)
	if !ok {
		return core.Vec3{}
	}
	return scatter.Attenuation.MultiplyVec(recursiveRayColor(pt, scatter.Scattered, world, depth-1, sampler))
}

func TestPathTracingMatchesRecursiveFormulation(t *testing.T) {
	world := geometry.NewHittableList(
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))),
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, material.NewDielectric(1.5)),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), -0.45, material.NewDielectric(1.5)),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)),
	)
	integrator := NewPathTracingIntegrator()

	iterativeSampler := core.NewSeededSampler(99)
	recursiveSampler := core.NewSeededSampler(99)
	directions := core.NewSeededSampler(5)

	for i := 0; i < 200; i++ {
		dir := core.NewVec3(directions.Range(-1.5, 1.5), directions.Range(-1, 1), -1)
		ray := core.NewRay(core.Vec3{}, dir)

		got := integrator.RayColor(ray, world, 20, iterativeSampler)
		expected := recursiveRayColor(integrator, ray, world, 20, recursiveSampler)
		if !got.ApproxEquals(expected, 1e-12) {
			t.Fatalf("Ray %d: iterative %v differs from recursive %v", i, got, expected)
		}
	}
}
