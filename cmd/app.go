package cmd

import (
	"github.com/urfave/cli"

	"github.com/df07/go-raytracer-accel/internal/config"
)

// NewApp assembles the command-line application
func NewApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "raytracer-accel"
	app.Usage = "build and benchmark ray intersection acceleration structures"
	app.Version = "0.1.0"
	app.Flags = config.GlobalFlags()

	buildFlags := config.BuildFlags()
	app.Commands = []cli.Command{
		{
			Name:  "bench",
			Usage: "build scenes and cast one camera ray per pixel in parallel",
			Description: `
Build the tree for each scene, then trace a primary ray per pixel from the
scene's viewpoint plus one occlusion ray per hit, spread over a worker pool.
Prints build statistics and ray throughput.

A scene is a builtin generator name, a .yaml scene description, or the name
of a description in the scenes directory.`,
			ArgsUsage: "[scene ...]",
			Flags:     append(append([]cli.Flag{}, buildFlags...), config.CastFlags()...),
			Action:    Bench,
		},
		{
			Name:        "verify",
			Usage:       "compare tree queries against a brute-force scan",
			Description: `Cast random rays at each scene (every builtin by default) and exit non-zero if nearest-hit or occlusion answers differ from a linear scan.`,
			ArgsUsage:   "[scene ...]",
			Flags:       append(append([]cli.Flag{}, buildFlags...), config.VerifyFlags()...),
			Action:      Verify,
		},
		{
			Name:      "stats",
			Usage:     "print tree build statistics",
			ArgsUsage: "[scene ...]",
			Flags:     buildFlags,
			Action:    Stats,
		},
		{
			Name:   "list",
			Usage:  "list builtin scenes and scene files",
			Action: List,
		},
	}
	return app
}
