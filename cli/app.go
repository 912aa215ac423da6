// Package cli contains the planararm command line: solving, rendering and serving an arm.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"

	// Register the arm models selectable from config.
	_ "go.viam.com/planararm/components/arm/fake"
	_ "go.viam.com/planararm/components/arm/sim"
	"go.viam.com/planararm/logging"
	"go.viam.com/planararm/render"
)

// Flags.
const (
	flagDebug     = "debug"
	flagDegrees   = "degrees"
	flagJSON      = "json"
	flagModelPath = "model-path"
	flagOut       = "out"
	flagWidth     = "width"
	flagHeight    = "height"
	flagScale     = "scale"
	flagConfig    = "config"
)

type app struct {
	logger logging.Logger
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	a := &app{}
	modelPathFlag := &cli.PathFlag{
		Name:  flagModelPath,
		Usage: "load the arm geometry from `FILE` instead of the built in one",
	}
	degreesFlag := &cli.BoolFlag{
		Name:  flagDegrees,
		Usage: "joint angles are given in degrees",
	}

	return &cli.App{
		Name:            "planararm",
		Usage:           "solve, draw and serve a planar six joint arm",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			a.logger = logging.NewBlankLogger("planararm")
			a.logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
			if c.Bool(flagDebug) {
				a.logger.SetLevel(logging.DEBUG)
			} else {
				a.logger.SetLevel(logging.INFO)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "solve",
				Usage:     "print the pose of every segment for six joint angles",
				ArgsUsage: "<a0> <a1> <a2> <a3> <a4> <a5>",
				Flags: []cli.Flag{
					degreesFlag,
					modelPathFlag,
					&cli.BoolFlag{
						Name:  flagJSON,
						Usage: "print poses as JSON instead of a table",
					},
				},
				Action: a.solveAction,
			},
			{
				Name:      "render",
				Usage:     "draw the arm for six joint angles into a PNG file",
				ArgsUsage: "<a0> <a1> <a2> <a3> <a4> <a5>",
				Flags: []cli.Flag{
					degreesFlag,
					modelPathFlag,
					&cli.PathFlag{
						Name:     flagOut,
						Aliases:  []string{"o"},
						Required: true,
						Usage:    "write the PNG to `FILE`",
					},
					&cli.IntFlag{
						Name:  flagWidth,
						Value: render.DefaultWidth,
						Usage: "image width in pixels",
					},
					&cli.IntFlag{
						Name:  flagHeight,
						Value: render.DefaultHeight,
						Usage: "image height in pixels",
					},
					&cli.Float64Flag{
						Name:  flagScale,
						Value: render.DefaultScale,
						Usage: "pixels per meter",
					},
				},
				Action: a.renderAction,
			},
			{
				Name:  "serve",
				Usage: "drive an arm and serve it over HTTP",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:    flagConfig,
						Aliases: []string{"c"},
						Usage:   "load configuration from `FILE`",
					},
				},
				Action: a.serveAction,
			},
			{
				Name:      "schema",
				Usage:     "print the JSON schema of the config file, a geometry file or an arm model's attributes",
				ArgsUsage: "<config|geometry|MODEL>",
				Action:    a.schemaAction,
			},
		},
	}
}
