package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/df07/go-weekend-raytracer/cmd"
	"github.com/df07/go-weekend-raytracer/pkg/config"
	"github.com/df07/go-weekend-raytracer/pkg/log"
)

func newApp(cfg config.Config) *cli.App {
	app := cli.NewApp()
	app.Name = "raytracer"
	app.Usage = "render sphere scenes with a Monte Carlo path tracer"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Value: cfg.LogLevel,
			Usage: "log level (debug, info, notice, warning, error)",
		},
	}

	sceneFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "scene, s",
			Value: cfg.Scene,
			Usage: "built-in scene name (see the scenes command)",
		},
		cli.IntFlag{
			Name:  "width",
			Value: cfg.Width,
			Usage: "image width in pixels",
		},
		cli.IntFlag{
			Name:  "spp",
			Value: cfg.SamplesPerPixel,
			Usage: "samples per pixel",
		},
		cli.IntFlag{
			Name:  "depth",
			Value: cfg.MaxDepth,
			Usage: "maximum number of ray bounces",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a single frame",
			Description: `
Render a built-in scene, or a JSON scene file when --scene-file is given, and
write it as PNG or PPM depending on the output extension. Use "-" as the output
to write a PPM image to stdout.`,
			Flags: append(sceneFlags,
				cli.Float64Flag{
					Name:  "aspect",
					Value: cfg.AspectRatio,
					Usage: "image aspect ratio (width / height)",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: cfg.Seed,
					Usage: "random seed; 0 picks one from the clock",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: cfg.Output,
					Usage: "output image (.png, .ppm or - for stdout)",
				},
				cli.StringFlag{
					Name:  "scene-file, f",
					Usage: "JSON scene description to render instead of a built-in scene",
				},
			),
			Action: cmd.RenderFrame,
		},
		{
			Name:   "scenes",
			Usage:  "list built-in scenes",
			Action: cmd.ListScenes,
		},
		{
			Name:  "serve",
			Usage: "serve the render API over HTTP",
			Flags: append(sceneFlags,
				cli.IntFlag{
					Name:  "port, p",
					Value: cfg.Port,
					Usage: "port to serve on",
				},
			),
			Action: cmd.Serve,
		},
	}

	return app
}

func main() {
	logger := log.New("raytracer")

	cfg, err := config.Load()
	if err != nil {
		logger.Error(err)
		os.Exit(1)
	}

	if err := newApp(cfg).Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
