package cmd

import (
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-raytracer-accel/internal/logger"
	"github.com/df07/go-raytracer-accel/pkg/scene"
)

// Stats builds each named scene, every builtin by default, and prints its
// tree statistics.
func Stats(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Scene", "Metric", "Value"})

	for _, name := range sceneArgs(ctx, scene.Names()...) {
		s, _, err := loadScene(name, cfg)
		if err != nil {
			return err
		}
		appendBuildRows(table, name, s)
	}
	table.Render()
	return nil
}

// List prints the builtin scenes and the scene files in the scenes directory.
func List(ctx *cli.Context) error {
	scenes, err := scene.ListAllScenes(ScenesDir)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"ID", "Name", "Group", "Description"})
	for _, info := range scenes {
		table.Append([]string{info.ID, info.Name, info.Group, info.Description})
	}
	table.Render()
	return nil
}
