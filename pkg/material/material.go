package material

import (
	"fmt"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// Kind identifies the scattering model of a Material
type Kind int

const (
	KindLambertian Kind = iota
	KindMetal
	KindDielectric
)

// String returns the lowercase name used in scene files and listings
func (k Kind) String() string {
	switch k {
	case KindLambertian:
		return "lambertian"
	case KindMetal:
		return "metal"
	case KindDielectric:
		return "dielectric"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a scene-file material type name to its Kind
func ParseKind(name string) (Kind, error) {
	switch name {
	case "lambertian", "diffuse":
		return KindLambertian, nil
	case "metal":
		return KindMetal, nil
	case "dielectric", "glass":
		return KindDielectric, nil
	default:
		return 0, fmt.Errorf("unknown material type %q", name)
	}
}

// Material is a small immutable value describing how light scatters off a surface.
// Only the fields belonging to Kind are meaningful. The zero value is a black Lambertian.
type Material struct {
	Kind            Kind
	Albedo          core.Color // Lambertian and Metal base color
	Fuzz            float64    // Metal roughness in [0, 1]
	RefractiveIndex float64    // Dielectric index of refraction
}

// NewLambertian creates a perfectly diffuse material
func NewLambertian(albedo core.Color) Material {
	return Material{Kind: KindLambertian, Albedo: albedo}
}

// NewMetal creates a metallic material; fuzz is clamped to [0, 1]
func NewMetal(albedo core.Color, fuzz float64) Material {
	return Material{Kind: KindMetal, Albedo: albedo, Fuzz: max(0.0, min(1.0, fuzz))}
}

// NewDielectric creates a clear refractive material such as glass (1.5) or water (1.33)
func NewDielectric(refractiveIndex float64) Material {
	return Material{Kind: KindDielectric, RefractiveIndex: refractiveIndex}
}

// Scatter computes the attenuation and scattered ray for rayIn hitting the surface at hit.
// The boolean is false when the ray is absorbed.
func (m Material) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	switch m.Kind {
	case KindMetal:
		return scatterMetal(m, rayIn, hit, sampler)
	case KindDielectric:
		return scatterDielectric(m, rayIn, hit, sampler)
	default:
		return scatterLambertian(m, rayIn, hit, sampler)
	}
}

// String describes the material for logs and scene listings
func (m Material) String() string {
	switch m.Kind {
	case KindMetal:
		return fmt.Sprintf("metal(albedo=%.2f,%.2f,%.2f fuzz=%.2f)", m.Albedo.X, m.Albedo.Y, m.Albedo.Z, m.Fuzz)
	case KindDielectric:
		return fmt.Sprintf("dielectric(ior=%.2f)", m.RefractiveIndex)
	default:
		return fmt.Sprintf("lambertian(albedo=%.2f,%.2f,%.2f)", m.Albedo.X, m.Albedo.Y, m.Albedo.Z)
	}
}
