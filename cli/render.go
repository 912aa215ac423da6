package cli

import (
	"github.com/urfave/cli/v2"

	"go.viam.com/planararm/components/arm"
	"go.viam.com/planararm/render"
)

func (a *app) renderAction(c *cli.Context) error {
	angles, err := parseJointArgs(c)
	if err != nil {
		return err
	}
	solver, err := arm.SolverFromModelPath(c.Path(flagModelPath))
	if err != nil {
		return err
	}
	poses, err := solver.SolvePose(angles)
	if err != nil {
		return err
	}

	renderer := render.NewImageRenderer(c.Int(flagWidth), c.Int(flagHeight), c.Float64(flagScale))
	renderer.LinkLength = solver.Geometry().SubChains[0].LinkLength
	out := c.Path(flagOut)
	if err := renderer.SavePNG(out, poses); err != nil {
		return err
	}
	a.logger.Infow("frame written", "path", out, "width", renderer.Width, "height", renderer.Height)
	return nil
}
