package renderer

import (
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// MockScene implements Scene for testing
type MockScene struct {
	camera *Camera
	world  geometry.Shape
}

func (m MockScene) GetCamera() *Camera       { return m.camera }
func (m MockScene) GetWorld() geometry.Shape { return m.world }

func newBasicScene() MockScene {
	return MockScene{
		camera: NewCamera(basicCameraConfig()),
		world: geometry.NewHittableList(
			geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))),
			geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))),
		),
	}
}

func TestRaytracer_EndToEndBasicScene(t *testing.T) {
	scene := newBasicScene()
	config := SamplingConfig{Width: 400, Height: 225, SamplesPerPixel: 1, MaxDepth: 1}
	sampler := core.NewSequenceSampler(0.5)

	rowsSeen := 0
	raytracer := NewRaytracer(scene, config, sampler, nil)
	img, stats, err := raytracer.RenderPass(context.Background(), func(rowsDone, totalRows int) {
		rowsSeen++
		if rowsDone != rowsSeen || totalRows != 225 {
			t.Fatalf("Unexpected progress %d/%d after %d rows", rowsDone, totalRows, rowsSeen)
		}
	})
	if err != nil {
		t.Fatalf("RenderPass failed: %v", err)
	}

	if rowsSeen != 225 {
		t.Errorf("Expected 225 progress callbacks, got %d", rowsSeen)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 225 {
		t.Fatalf("Expected 400x225 image, got %v", b)
	}

	// With one bounce any surface hit exhausts the budget and is black
	black := color.RGBA{0, 0, 0, 255}
	if c := img.RGBAAt(200, 112); c != black {
		t.Errorf("Expected center pixel to hit the sphere (black), got %v", c)
	}
	if c := img.RGBAAt(200, 224); c != black {
		t.Errorf("Expected bottom pixel to hit the ground (black), got %v", c)
	}

	// Top row sees the sky gradient
	sky := integrator.NewPathTracingIntegrator()
	for _, x := range []int{0, 200, 399} {
		u := (float64(x) + 0.5) / 399
		v := (224 + 0.5) / 224.0
		expected := ToneMap(sky.Background(scene.camera.GetRay(u, v, sampler)), 1)

		got := img.RGBAAt(x, 0)
		if got != expected {
			t.Errorf("Top row pixel %d: expected sky %v, got %v", x, expected, got)
		}
		if got.B <= got.R {
			t.Errorf("Top row pixel %d should be bluish, got %v", x, got)
		}
	}

	if stats.TotalPixels != 400*225 || stats.TotalSamples != 400*225 {
		t.Errorf("Unexpected pixel/sample counts: %+v", stats)
	}
	if stats.RaySegments != stats.TotalSamples {
		t.Errorf("Depth 1 should trace exactly one segment per sample, got %d for %d samples", stats.RaySegments, stats.TotalSamples)
	}
}

func TestRaytracer_MultiSampleDeterministicBySeed(t *testing.T) {
	config := SamplingConfig{Width: 32, Height: 18, SamplesPerPixel: 4, MaxDepth: 8}

	imgA, _, _ := NewRaytracer(newBasicScene(), config, core.NewSeededSampler(3), nil).RenderPass(context.Background(), nil)
	imgB, _, _ := NewRaytracer(newBasicScene(), config, core.NewSeededSampler(3), nil).RenderPass(context.Background(), nil)

	for i := range imgA.Pix {
		if imgA.Pix[i] != imgB.Pix[i] {
			t.Fatal("Renders with the same seed should be identical")
		}
	}
}

func TestRaytracer_CustomIntegrator(t *testing.T) {
	config := SamplingConfig{Width: 4, Height: 4, SamplesPerPixel: 2, MaxDepth: 3}
	raytracer := NewRaytracer(newBasicScene(), config, core.NewSeededSampler(1), nil)

	raytracer.SetIntegrator(constantIntegrator{color: core.NewVec3(0.25, 0.25, 0.25)})

	img, stats, _ := raytracer.RenderPass(context.Background(), nil)
	expected := ToneMap(core.NewVec3(0.5, 0.5, 0.5), 2)
	if c := img.RGBAAt(1, 1); c != expected {
		t.Errorf("Expected %v, got %v", expected, c)
	}
	if stats.RaySegments != 0 {
		t.Errorf("Integrators without segment counts should leave RaySegments at 0, got %d", stats.RaySegments)
	}

	// Switching back to the path tracer restores segment counting
	raytracer.SetIntegrator(integrator.NewPathTracingIntegrator())
	_, stats, _ = raytracer.RenderPass(context.Background(), nil)
	if stats.RaySegments < stats.TotalSamples {
		t.Errorf("Expected at least one segment per sample, got %d for %d samples", stats.RaySegments, stats.TotalSamples)
	}
}

func TestRaytracer_CancelledMidRender(t *testing.T) {
	config := SamplingConfig{Width: 8, Height: 6, SamplesPerPixel: 1, MaxDepth: 2}
	raytracer := NewRaytracer(newBasicScene(), config, core.NewSeededSampler(1), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rowsSeen := 0
	img, stats, err := raytracer.RenderPass(ctx, func(rowsDone, totalRows int) {
		rowsSeen = rowsDone
		if rowsDone == 2 {
			cancel()
		}
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if rowsSeen != 2 {
		t.Errorf("Expected rendering to stop after 2 rows, got %d", rowsSeen)
	}
	if stats.TotalSamples != 2*8 {
		t.Errorf("Expected %d samples before cancellation, got %d", 2*8, stats.TotalSamples)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Errorf("Partial image should keep full bounds, got %v", img.Bounds())
	}
	// Rows below the cancellation point are left untouched
	if c := img.RGBAAt(0, 5); c.A != 0 {
		t.Errorf("Expected unrendered bottom row, got %v", c)
	}
}

func TestRaytracer_AlreadyCancelled(t *testing.T) {
	config := SamplingConfig{Width: 4, Height: 4, SamplesPerPixel: 1, MaxDepth: 1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, stats, err := NewRaytracer(newBasicScene(), config, core.NewSeededSampler(1), nil).RenderPass(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if stats.TotalSamples != 0 {
		t.Errorf("No samples should be taken, got %d", stats.TotalSamples)
	}
}

type constantIntegrator struct {
	color core.Color
}

func (c constantIntegrator) RayColor(core.Ray, geometry.Shape, int, core.Sampler) core.Color {
	return c.color
}

func TestToneMap(t *testing.T) {
	tests := []struct {
		name     string
		accum    core.Vec3
		samples  int
		expected color.RGBA
	}{
		{"black", core.NewVec3(0, 0, 0), 1, color.RGBA{0, 0, 0, 255}},
		{"white clamps to 255", core.NewVec3(1, 1, 1), 1, color.RGBA{255, 255, 255, 255}},
		{"overexposed clamps to 255", core.NewVec3(40, 40, 40), 10, color.RGBA{255, 255, 255, 255}},
		{"quarter becomes half after gamma", core.NewVec3(0.25, 0.25, 0.25), 1, color.RGBA{128, 128, 128, 255}},
		{"averaged over samples", core.NewVec3(1, 0, 0.25), 4, color.RGBA{128, 0, 64, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToneMap(tt.accum, tt.samples); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSamplingConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      SamplingConfig
		expectError bool
	}{
		{"defaults", DefaultSamplingConfig(), false},
		{"zero width", SamplingConfig{Width: 0, Height: 10, SamplesPerPixel: 1, MaxDepth: 1}, true},
		{"zero samples", SamplingConfig{Width: 10, Height: 10, SamplesPerPixel: 0, MaxDepth: 1}, true},
		{"negative depth", SamplingConfig{Width: 10, Height: 10, SamplesPerPixel: 1, MaxDepth: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("Expected ErrInvalidConfig, got %v", err)
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
