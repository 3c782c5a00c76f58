package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// File is the JSON scene description
type File struct {
	Camera    CameraFile              `json:"camera"`
	Sampling  SamplingFile            `json:"sampling"`
	Materials map[string]MaterialFile `json:"materials"`
	Spheres   []SphereFile            `json:"spheres"`
}

// CameraFile is the camera section of a scene file. Absent keys stay nil and keep the
// default camera's value; any present value, zero included, is used as given.
type CameraFile struct {
	LookFrom      *[3]float64 `json:"lookFrom"`
	LookAt        *[3]float64 `json:"lookAt"`
	Up            *[3]float64 `json:"up"`
	Width         *int        `json:"width"`
	AspectRatio   *float64    `json:"aspectRatio"`
	VFov          *float64    `json:"vfov"`
	Aperture      *float64    `json:"aperture"`
	FocusDistance *float64    `json:"focusDistance"`
}

// SamplingFile is the sampling section of a scene file
type SamplingFile struct {
	SamplesPerPixel int `json:"samplesPerPixel"`
	MaxDepth        int `json:"maxDepth"`
}

// MaterialFile is a named material. Type is one of lambertian, metal or dielectric.
type MaterialFile struct {
	Type            string     `json:"type"`
	Albedo          [3]float64 `json:"albedo"`
	Fuzz            float64    `json:"fuzz"`
	RefractiveIndex float64    `json:"refractiveIndex"`
}

// SphereFile places a sphere using a material by name
type SphereFile struct {
	Center   [3]float64 `json:"center"`
	Radius   float64    `json:"radius"`
	Material string     `json:"material"`
}

// Load reads a JSON scene file from disk
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene file: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// Decode parses a JSON scene description. Missing camera and sampling fields fall back
// to the defaults of the basic scene.
func Decode(r io.Reader) (*Scene, error) {
	var file File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return file.Build()
}

// Build turns a decoded scene file into a renderable scene
func (f File) Build() (*Scene, error) {
	materials := make(map[string]material.Material, len(f.Materials))
	for name, mf := range f.Materials {
		mat, err := mf.toMaterial()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = mat
	}

	defaults := NewBasicScene()
	cameraConfig := f.Camera.apply(defaults.CameraConfig)
	if cameraConfig.AspectRatio <= 0 || cameraConfig.VFov <= 0 {
		return nil, fmt.Errorf("camera: aspect ratio %g and vfov %g must be positive", cameraConfig.AspectRatio, cameraConfig.VFov)
	}

	spp := defaults.SamplingConfig.SamplesPerPixel
	if f.Sampling.SamplesPerPixel != 0 {
		spp = f.Sampling.SamplesPerPixel
	}
	maxDepth := defaults.SamplingConfig.MaxDepth
	if f.Sampling.MaxDepth != 0 {
		maxDepth = f.Sampling.MaxDepth
	}

	s := NewScene(cameraConfig, spp, maxDepth)
	if err := s.SamplingConfig.Validate(); err != nil {
		return nil, err
	}

	for i, sf := range f.Spheres {
		mat, ok := materials[sf.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d: undefined material %q", i, sf.Material)
		}
		s.AddSphere(vec(sf.Center), sf.Radius, mat)
	}

	return s, nil
}

// apply overrides every field of config that is present in the file
func (cf CameraFile) apply(config renderer.CameraConfig) renderer.CameraConfig {
	if cf.LookFrom != nil {
		config.Center = vec(*cf.LookFrom)
	}
	if cf.LookAt != nil {
		config.LookAt = vec(*cf.LookAt)
	}
	if cf.Up != nil {
		config.Up = vec(*cf.Up)
	}
	if cf.Width != nil {
		config.Width = *cf.Width
	}
	if cf.AspectRatio != nil {
		config.AspectRatio = *cf.AspectRatio
	}
	if cf.VFov != nil {
		config.VFov = *cf.VFov
	}
	if cf.Aperture != nil {
		config.Aperture = *cf.Aperture
	}
	if cf.FocusDistance != nil {
		config.FocusDistance = *cf.FocusDistance
	}
	return config
}

func (mf MaterialFile) toMaterial() (material.Material, error) {
	kind, err := material.ParseKind(mf.Type)
	if err != nil {
		return material.Material{}, err
	}

	switch kind {
	case material.KindMetal:
		return material.NewMetal(vec(mf.Albedo), mf.Fuzz), nil
	case material.KindDielectric:
		if mf.RefractiveIndex <= 0 {
			return material.Material{}, fmt.Errorf("refractive index must be positive, got %g", mf.RefractiveIndex)
		}
		return material.NewDielectric(mf.RefractiveIndex), nil
	default:
		return material.NewLambertian(vec(mf.Albedo)), nil
	}
}

func vec(v [3]float64) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}
