package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	pb "go.viam.com/api/component/arm/v1"

	"go.viam.com/planararm/components/arm"
	"go.viam.com/planararm/kinematics"
	"go.viam.com/planararm/referenceframe"
	"go.viam.com/planararm/utils"
	"go.viam.com/planararm/web"
)

// parseJointArgs reads six finite joint angles from the positional arguments and returns them in
// radians.
func parseJointArgs(c *cli.Context) ([]float64, error) {
	args := c.Args().Slice()
	if len(args) != kinematics.NumJoints {
		return nil, kinematics.NewInvalidAngleVectorError(len(args))
	}
	values := make([]float64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, errors.Errorf("joint angle %d: %q is not a number", i, arg)
		}
		values[i] = v
	}
	if !utils.AllFinite(values...) {
		return nil, errors.Errorf("joint angles must be finite, got %v", values)
	}
	if c.Bool(flagDegrees) {
		inputs, err := referenceframe.InputsFromJointPositions(&pb.JointPositions{Values: values}, kinematics.NumJoints)
		if err != nil {
			return nil, err
		}
		return referenceframe.InputsToFloats(inputs), nil
	}
	return values, nil
}

func (a *app) solveAction(c *cli.Context) error {
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
	a.logger.Debugw("solved", "geometry", solver.Geometry().Name, "radians", web.FormatAngles(angles))

	if c.Bool(flagJSON) {
		encoder := json.NewEncoder(c.App.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(web.PosesResponse{Poses: web.PosesToJSON(poses)})
	}
	_, err = fmt.Fprintln(c.App.Writer, PoseTable(poses))
	return err
}

// PoseTable prints out a table of each segment, with its rotation and position.
func PoseTable(poses kinematics.PoseSet) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Segment", "Rotation (rad)", "Rotation (deg)", "X", "Y", "Z"})
	for i, pose := range poses {
		t.AppendRow(table.Row{
			i,
			kinematics.SegmentName(i),
			fmt.Sprintf("%.4f", pose.RotationZ),
			fmt.Sprintf("%.2f", utils.RadToDeg(utils.WrapAngle(pose.RotationZ))),
			fmt.Sprintf("%.4f", pose.Position.X),
			fmt.Sprintf("%.4f", pose.Position.Y),
			fmt.Sprintf("%.4f", pose.Position.Z),
		})
	}
	return t.Render()
}
