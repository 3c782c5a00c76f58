package renderer

import (
	"image"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Width           int           // Image width in pixels
	Height          int           // Image height in pixels
	TotalPixels     int           // Total number of pixels rendered
	TotalSamples    int           // Total number of camera rays traced
	SamplesPerPixel int           // Samples taken for every pixel
	MaxDepth        int           // Bounce budget per camera ray
	RaySegments     int           // Ray segments intersected against the scene, bounces included
	Duration        time.Duration // Wall time of the pass
}

// AverageDepth returns the mean number of segments traced per camera ray
func (s RenderStats) AverageDepth() float64 {
	if s.TotalSamples == 0 {
		return 0
	}
	return float64(s.RaySegments) / float64(s.TotalSamples)
}

// SegmentsPerSecond returns the intersection throughput of the pass
func (s RenderStats) SegmentsPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.RaySegments) / s.Duration.Seconds()
}

// PixelStats accumulates the color samples of a single pixel
type PixelStats struct {
	ColorAccum  core.Color // RGB accumulator for final result
	SampleCount int        // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Color) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of an image in [0, 1]
func CalculateAverageLuminance(img *image.RGBA) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			total += 0.2126*float64(c.R)/255.0 + 0.7152*float64(c.G)/255.0 + 0.0722*float64(c.B)/255.0
		}
	}
	return total / float64(pixels)
}
