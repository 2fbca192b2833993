package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/lightloom/go-ray-engine/cmd"
	"github.com/lightloom/go-ray-engine/pkg/integrator"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "go-ray-engine"
	app.Usage = "progressive path tracing with parallel sample accumulation"
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
	}

	sceneFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "scene",
			Value: "default",
			Usage: "scene to render (default, showcase)",
		},
		cli.IntFlag{
			Name:  "width",
			Value: 1024,
			Usage: "viewport width in pixels",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 600,
			Usage: "viewport height in pixels",
		},
		cli.IntFlag{
			Name:  "iterations",
			Value: 1,
			Usage: "samples per pixel per pass",
		},
		cli.IntFlag{
			Name:  "max-depth",
			Value: integrator.DefaultMaxDepth,
			Usage: "path tracing bounce limit",
		},
		cli.IntFlag{
			Name:  "workers",
			Usage: "rendering pool size, 0 selects a size from the hardware threads",
		},
		cli.BoolFlag{
			Name:  "serial",
			Usage: "sample on a single goroutine instead of the tile pool",
		},
		cli.StringFlag{
			Name:  "history-db",
			Usage: "sqlite file for recording run statistics",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "accumulate a fixed number of passes and save a PNG",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "passes",
					Value: 32,
					Usage: "number of accumulation passes",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "output image path, defaults to output/<scene>/render_<timestamp>.png",
				},
			}, sceneFlags...),
			Action: cmd.RenderFrame,
		},
		{
			Name:  "benchmark",
			Usage: "trace continuously for a fixed duration and report the sustained rate",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "duration",
					Value: 30,
					Usage: "benchmark duration in seconds",
				},
			}, sceneFlags...),
			Action: cmd.Benchmark,
		},
		{
			Name:  "serve",
			Usage: "serve the progressive web interface",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "port",
					Value: 8080,
					Usage: "port to listen on",
				},
				cli.IntFlag{
					Name:  "workers",
					Usage: "rendering pool size, 0 selects a size from the hardware threads",
				},
				cli.StringFlag{
					Name:  "history-db",
					Value: "runs.db",
					Usage: "sqlite file for recording run statistics",
				},
			},
			Action: cmd.Serve,
		},
		{
			Name:  "history",
			Usage: "list recorded runs",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "history-db",
					Value: "runs.db",
					Usage: "sqlite file holding recorded runs",
				},
				cli.IntFlag{
					Name:  "limit",
					Value: 20,
					Usage: "number of runs to list",
				},
				cli.BoolFlag{
					Name:  "json",
					Usage: "write the runs to stdout as JSON instead of a table",
				},
			},
			Action: cmd.History,
		},
	}

	app.Run(os.Args)
}
