package main

import (
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "raybvh"
	app.Usage = "build bounding volume hierarchies and cast rays through them"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable debug logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render the benchmark scene to an image",
			Description: `
Build a seeded grid of random meshes, or place the given .tri files in a row,
and shade every primary ray by its barycentric coordinates.

The output format follows the file extension (.png or .bmp).`,
			ArgsUsage: "[mesh1.tri mesh2.tri ...]",
			Flags:     append(sceneFlags(), outFlag),
			Action:    renderFrame,
		},
		{
			Name:        "bench",
			Usage:       "time scene construction and ray casting",
			Description: `Build the scene, cast one ray per pixel and print tree statistics and timings.`,
			ArgsUsage:   "[mesh1.tri mesh2.tri ...]",
			Flags:       sceneFlags(),
			Action:      bench,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

var outFlag = cli.StringFlag{Name: "out, o", Value: "frame.png", Usage: "output image, .png or .bmp"}

func sceneFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{Name: "width", Value: 256, Usage: "frame width"},
		cli.IntFlag{Name: "height", Value: 256, Usage: "frame height"},
		cli.IntFlag{Name: "workers", Usage: "render goroutines (default: number of CPUs)"},
		cli.Float64Flag{Name: "fov", Value: 45, Usage: "vertical field of view in degrees"},
		cli.Int64Flag{Name: "seed", Usage: "seed for the random scene"},
		cli.IntFlag{Name: "side", Value: 10, Usage: "grid side, the scene has side*side instances"},
		cli.IntFlag{Name: "tris", Value: 1000, Usage: "triangles per random mesh"},
	}
}
