package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// ListScenes prints the built-in scenes.
func ListScenes(ctx *cli.Context) error {
	setupLogging(ctx)

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Name", "Seeded", "Description"})

	scenes := scene.DefaultRegistry().List()
	for _, info := range scenes {
		table.Append([]string{info.Name, info.DisplayName, fmt.Sprintf("%t", info.Seeded), info.Description})
	}

	table.Render()
	return nil
}
