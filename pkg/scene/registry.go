package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// ErrUnknownScene is returned when a scene name is not registered
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo describes a built-in scene
type SceneInfo struct {
	Name        string `json:"name"`        // Identifier used on the command line and in the API
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"`
	Seeded      bool   `json:"seeded"` // Layout depends on the sampler
}

// Factory builds a scene. Scenes that don't need randomness ignore the sampler.
type Factory func(sampler core.Sampler, cameraOverrides ...renderer.CameraConfig) *Scene

type entry struct {
	info    SceneInfo
	factory Factory
}

// Registry maps scene names to their builders
type Registry struct {
	entries map[string]entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// DefaultRegistry returns a registry holding every built-in scene
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(SceneInfo{
		Name:        "basic",
		DisplayName: "Basic",
		Description: "A single sphere resting on a ground sphere",
	}, func(_ core.Sampler, overrides ...renderer.CameraConfig) *Scene {
		return NewBasicScene(overrides...)
	})
	r.Register(SceneInfo{
		Name:        "materials",
		DisplayName: "Materials",
		Description: "Diffuse, hollow glass and metal spheres side by side",
	}, func(_ core.Sampler, overrides ...renderer.CameraConfig) *Scene {
		return NewMaterialsScene(overrides...)
	})
	r.Register(SceneInfo{
		Name:        "random",
		DisplayName: "Random Spheres",
		Description: "A field of small random spheres around three large ones, with depth of field",
		Seeded:      true,
	}, NewRandomScene)
	return r
}

// Register adds or replaces a scene
func (r *Registry) Register(info SceneInfo, factory Factory) {
	r.entries[info.Name] = entry{info: info, factory: factory}
}

// List returns every registered scene sorted by name
func (r *Registry) List() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(r.entries))
	for _, e := range r.entries {
		scenes = append(scenes, e.info)
	}
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes
}

// Has reports whether a scene is registered under name
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Info returns the description of a registered scene
func (r *Registry) Info(name string) (SceneInfo, bool) {
	e, ok := r.entries[name]
	return e.info, ok
}

// Create builds the named scene
func (r *Registry) Create(name string, sampler core.Sampler, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return e.factory(sampler, cameraOverrides...), nil
}
