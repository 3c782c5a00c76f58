package scene

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *renderer.Camera
	CameraConfig   renderer.CameraConfig
	World          *geometry.HittableList // Objects in the scene, tested in insertion order
	SamplingConfig renderer.SamplingConfig
}

// NewScene builds a scene with an empty world from a camera configuration.
// The sampling image size follows the camera's width and aspect ratio.
func NewScene(cameraConfig renderer.CameraConfig, samplesPerPixel, maxDepth int) *Scene {
	return &Scene{
		Camera:       renderer.NewCamera(cameraConfig),
		CameraConfig: cameraConfig,
		World:        geometry.NewHittableList(),
		SamplingConfig: renderer.SamplingConfig{
			Width:           cameraConfig.Width,
			Height:          cameraConfig.ImageHeight(),
			SamplesPerPixel: samplesPerPixel,
			MaxDepth:        maxDepth,
		},
	}
}

// GetCamera implements renderer.Scene
func (s *Scene) GetCamera() *renderer.Camera {
	return s.Camera
}

// GetWorld implements renderer.Scene
func (s *Scene) GetWorld() geometry.Shape {
	return s.World
}

// AddSphere adds a sphere to the world
func (s *Scene) AddSphere(center core.Point, radius float64, mat material.Material) {
	s.World.Add(geometry.NewSphere(center, radius, mat))
}

// GetPrimitiveCount returns the number of objects in the world
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}

// ApplyCameraOverride rebuilds the camera with the non-zero fields of override
// and keeps the sampling size in step with it
func (s *Scene) ApplyCameraOverride(override renderer.CameraConfig) {
	s.CameraConfig = renderer.MergeCameraConfig(s.CameraConfig, override)
	s.Camera = renderer.NewCamera(s.CameraConfig)
	s.SamplingConfig.Width = s.CameraConfig.Width
	s.SamplingConfig.Height = s.CameraConfig.ImageHeight()
}

func applyOverrides(config renderer.CameraConfig, overrides []renderer.CameraConfig) renderer.CameraConfig {
	for _, override := range overrides {
		config = renderer.MergeCameraConfig(config, override)
	}
	return config
}
