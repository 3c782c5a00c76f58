package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
)

// ErrInvalidConfig is returned when a sampling configuration cannot be rendered
var ErrInvalidConfig = errors.New("invalid sampling config")

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// Validate checks that every field is positive
func (c SamplingConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("%w: samples per pixel %d", ErrInvalidConfig, c.SamplesPerPixel)
	case c.MaxDepth <= 0:
		return fmt.Errorf("%w: max depth %d", ErrInvalidConfig, c.MaxDepth)
	}
	return nil
}

// Scene interface to avoid circular imports
type Scene interface {
	GetCamera() *Camera
	GetWorld() geometry.Shape
}

// ProgressFunc is called after every completed image row
type ProgressFunc func(rowsDone, totalRows int)

// Raytracer handles the rendering process
type Raytracer struct {
	scene      Scene
	config     SamplingConfig
	integrator integrator.Integrator
	tracer     segmentTracer // integrator, when it also reports traced segments
	sampler    core.Sampler
	logger     core.Logger
}

// NewRaytracer creates a new raytracer. The sampler is used for pixel jitter, lens and
// scattering draws and must not be shared with another render.
func NewRaytracer(scene Scene, config SamplingConfig, sampler core.Sampler, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = core.NopLogger{}
	}
	rt := &Raytracer{
		scene:   scene,
		config:  config,
		sampler: sampler,
		logger:  logger,
	}
	rt.SetIntegrator(integrator.NewPathTracingIntegrator())
	return rt
}

// SetIntegrator replaces the light transport algorithm
func (rt *Raytracer) SetIntegrator(integrator integrator.Integrator) {
	rt.integrator = integrator
	rt.tracer, _ = integrator.(segmentTracer)
}

// segmentTracer is implemented by integrators that report traced segments
type segmentTracer interface {
	Trace(ray core.Ray, world geometry.Shape, depth int, sampler core.Sampler) (core.Color, int)
}

// samplePixel traces every sample of pixel (i, j), where j counts rows from the bottom
func (rt *Raytracer) samplePixel(camera *Camera, world geometry.Shape, i, j int, stats *RenderStats) core.Color {
	var ps PixelStats

	// Dividing by (size - 1) maps the last pixel column and row onto the viewport edge
	uScale := float64(max(rt.config.Width-1, 1))
	vScale := float64(max(rt.config.Height-1, 1))

	for sample := 0; sample < rt.config.SamplesPerPixel; sample++ {
		u := (float64(i) + rt.sampler.Get1D()) / uScale
		v := (float64(j) + rt.sampler.Get1D()) / vScale
		ray := camera.GetRay(u, v, rt.sampler)

		if rt.tracer != nil {
			color, segments := rt.tracer.Trace(ray, world, rt.config.MaxDepth, rt.sampler)
			stats.RaySegments += segments
			ps.AddSample(color)
		} else {
			ps.AddSample(rt.integrator.RayColor(ray, world, rt.config.MaxDepth, rt.sampler))
		}
	}

	stats.TotalSamples += ps.SampleCount
	return ps.ColorAccum
}

// RenderPass renders the full frame with multi-sampling and returns an image.
// Rows are rendered from the top of the image to the bottom. Cancellation is checked
// before every row; a cancelled pass returns the partial image with ctx.Err().
func (rt *Raytracer) RenderPass(ctx context.Context, progress ProgressFunc) (*image.RGBA, RenderStats, error) {
	width, height := rt.config.Width, rt.config.Height
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	camera := rt.scene.GetCamera()
	world := rt.scene.GetWorld()

	stats := RenderStats{
		Width:           width,
		Height:          height,
		TotalPixels:     width * height,
		SamplesPerPixel: rt.config.SamplesPerPixel,
		MaxDepth:        rt.config.MaxDepth,
	}
	start := time.Now()

	for j := height - 1; j >= 0; j-- {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return img, stats, err
		}

		rt.logger.Printf("Scan lines remaining: %d\n", j)
		for i := 0; i < width; i++ {
			colorAccum := rt.samplePixel(camera, world, i, j, &stats)
			img.SetRGBA(i, height-1-j, ToneMap(colorAccum, rt.config.SamplesPerPixel))
		}
		if progress != nil {
			progress(height-j, height)
		}
	}

	stats.Duration = time.Since(start)
	return img, stats, nil
}

// ToneMap averages an accumulated color over its samples, applies gamma 2 correction and
// quantizes each channel to [0, 255]
func ToneMap(colorAccum core.Color, samples int) color.RGBA {
	c := colorAccum.Multiply(1.0 / float64(samples)).
		GammaCorrect(2.0).
		Clamp(0.0, 0.999)

	return color.RGBA{
		R: uint8(256 * c.X),
		G: uint8(256 * c.Y),
		B: uint8(256 * c.Z),
		A: 255,
	}
}
