package cmd

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-weekend-raytracer/pkg/config"
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/log"
	"github.com/df07/go-weekend-raytracer/pkg/output"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// Output path that sends a PPM image to stdout
const stdoutPath = "-"

// RenderFrame renders a single image of a built-in scene or a JSON scene file.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	renderID := uuid.NewString()
	seed := config.ResolveSeed(ctx.Int64("seed"))
	sampler := core.NewSeededSampler(seed)

	sc, name, err := loadScene(ctx, sampler)
	if err != nil {
		return err
	}

	samplingConfig := sc.SamplingConfig
	if ctx.String("scene-file") == "" || ctx.IsSet("spp") {
		samplingConfig.SamplesPerPixel = ctx.Int("spp")
	}
	if ctx.String("scene-file") == "" || ctx.IsSet("depth") {
		samplingConfig.MaxDepth = ctx.Int("depth")
	}
	if err := samplingConfig.Validate(); err != nil {
		return err
	}

	logger.Noticef("[%s] rendering %s (%d spheres) at %dx%d, %d spp, depth %d, seed %d",
		renderID, name, sc.GetPrimitiveCount(), samplingConfig.Width, samplingConfig.Height,
		samplingConfig.SamplesPerPixel, samplingConfig.MaxDepth, seed)

	rt := renderer.NewRaytracer(sc, samplingConfig, sampler, log.Printer(logger))
	img, stats, err := rt.RenderPass(context.Background(), progressLogger(renderID))
	if err != nil {
		return err
	}

	out := ctx.String("out")
	if err := writeImage(ctx, out, img); err != nil {
		return err
	}

	displayRenderStats(renderID, out, stats, renderer.CalculateAverageLuminance(img))
	return nil
}

// loadScene resolves the scene named by the command flags and applies the camera overrides
func loadScene(ctx *cli.Context, sampler core.Sampler) (*scene.Scene, string, error) {
	override := renderer.CameraConfig{}
	if path := ctx.String("scene-file"); path != "" {
		sc, err := scene.Load(path)
		if err != nil {
			return nil, "", err
		}
		if ctx.IsSet("width") {
			override.Width = ctx.Int("width")
		}
		if ctx.IsSet("aspect") {
			override.AspectRatio = ctx.Float64("aspect")
		}
		sc.ApplyCameraOverride(override)
		return sc, path, nil
	}

	override.Width = ctx.Int("width")
	override.AspectRatio = ctx.Float64("aspect")
	if override.Width <= 0 || override.AspectRatio <= 0 {
		return nil, "", fmt.Errorf("%w: width %d, aspect %g", renderer.ErrInvalidConfig, override.Width, override.AspectRatio)
	}

	name := ctx.String("scene")
	sc, err := scene.DefaultRegistry().Create(name, sampler, override)
	if err != nil {
		return nil, "", err
	}
	return sc, name, nil
}

func writeImage(ctx *cli.Context, out string, img image.Image) error {
	if out == stdoutPath {
		return output.WritePPM(ctx.App.Writer, img)
	}
	if err := output.Save(out, img); err != nil {
		return err
	}
	logger.Noticef("render saved as %s", out)
	return nil
}

// progressLogger reports every tenth of the image at info level
func progressLogger(renderID string) renderer.ProgressFunc {
	lastDecile := 0
	return func(rowsDone, totalRows int) {
		decile := rowsDone * 10 / totalRows
		if decile > lastDecile {
			lastDecile = decile
			logger.Infof("[%s] %d%% (%d/%d rows)", renderID, decile*10, rowsDone, totalRows)
		}
	}
}

func displayRenderStats(renderID, out string, stats renderer.RenderStats, luminance float64) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Statistic", "Value"})
	table.Append([]string{"Render id", renderID})
	table.Append([]string{"Image", fmt.Sprintf("%dx%d", stats.Width, stats.Height)})
	table.Append([]string{"Samples per pixel", fmt.Sprintf("%d", stats.SamplesPerPixel)})
	table.Append([]string{"Max depth", fmt.Sprintf("%d", stats.MaxDepth)})
	table.Append([]string{"Camera rays", fmt.Sprintf("%d", stats.TotalSamples)})
	table.Append([]string{"Ray segments", fmt.Sprintf("%d", stats.RaySegments)})
	table.Append([]string{"Average depth", fmt.Sprintf("%.2f", stats.AverageDepth())})
	table.Append([]string{"Segments/s", fmt.Sprintf("%.0f", stats.SegmentsPerSecond())})
	table.Append([]string{"Average luminance", fmt.Sprintf("%.3f", luminance)})
	table.SetFooter([]string{"Render time", stats.Duration.String()})

	table.Render()
	logger.Noticef("render statistics for %s\n%s", out, buf.String())
}
