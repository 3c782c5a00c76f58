package cmd

import (
	"github.com/urfave/cli"

	"github.com/df07/go-weekend-raytracer/pkg/scene"
	"github.com/df07/go-weekend-raytracer/web/server"
)

// Serve starts the render web server.
func Serve(ctx *cli.Context) error {
	setupLogging(ctx)

	port := ctx.Int("port")
	srv := server.NewServer(port, scene.DefaultRegistry(), server.Defaults{
		Scene:           ctx.String("scene"),
		Width:           ctx.Int("width"),
		SamplesPerPixel: ctx.Int("spp"),
		MaxDepth:        ctx.Int("depth"),
	})

	logger.Noticef("visit http://localhost:%d/api/scenes to list scenes", port)
	return srv.Start()
}
