// Package cli contains the sslmotion command line tool: planning, plotting and benchmarking
// scenario files, running a closed-loop simulation, and managing configuration files.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	flagConfig = "config"
	flagDebug  = "debug"
	flagSeed   = "seed"
	flagJSON   = "json"
	flagOut    = "out"
	flagRuns   = "runs"
	flagTicks  = "ticks"
	flagTick   = "tick"
	flagWatch  = "watch"
	flagLog    = "log-file"
	flagBins   = "bins"
)

var app = &cli.App{
	Name:            "sslmotion",
	Usage:           "plan and follow paths for small size league robots",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "load configuration from `FILE`",
		},
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.Int64Flag{
			Name:  flagSeed,
			Value: 1,
			Usage: "random seed for the planner",
		},
		&cli.StringFlag{
			Name:  flagLog,
			Usage: "also write logs to `FILE`, rotating it as it grows",
		},
	},
	Before: openLogFile,
	After:  closeLogFile,
	Commands: []*cli.Command{
		{
			Name:      "plan",
			Usage:     "plan a path for a scenario",
			ArgsUsage: "<scenario.json>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  flagJSON,
					Usage: "print the path as JSON",
				},
			},
			Action: PlanAction,
		},
		{
			Name:      "plot",
			Usage:     "render the search trees and the chosen path of a scenario",
			ArgsUsage: "<scenario.json>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     flagOut,
					Aliases:  []string{"o"},
					Usage:    "write the image to `FILE`",
					Required: true,
				},
			},
			Action: PlotAction,
		},
		{
			Name:      "bench",
			Usage:     "plan a scenario repeatedly and report latency and success statistics",
			ArgsUsage: "<scenario.json>",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  flagRuns,
					Value: 100,
					Usage: "number of planning attempts",
				},
				&cli.IntFlag{
					Name:  flagBins,
					Value: 10,
					Usage: "number of latency histogram bins, 0 to skip the histogram",
				},
			},
			Action: BenchAction,
		},
		{
			Name:      "simulate",
			Usage:     "drive the scenario robot to its goal in a kinematic simulation",
			ArgsUsage: "<scenario.json>",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  flagTicks,
					Value: 300,
					Usage: "number of control ticks",
				},
				&cli.DurationFlag{
					Name:  flagTick,
					Value: defaultTick,
					Usage: "simulated and real time per tick",
				},
				&cli.BoolFlag{
					Name:  flagWatch,
					Usage: "reload the configuration file when it changes",
				},
			},
			Action: SimulateAction,
		},
		{
			Name:   "defaults",
			Usage:  "print the default configuration",
			Action: DefaultsAction,
		},
		{
			Name:   "schema",
			Usage:  "print the JSON schema of configuration files",
			Action: SchemaAction,
		},
		{
			Name:      "validate",
			Usage:     "check a configuration file",
			ArgsUsage: "<config.json>",
			Action:    ValidateAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
