// Package referenceframe holds the joint input vocabulary shared by the arm, the solver front
// ends and the network surface.
package referenceframe

import (
	"math"

	"github.com/pkg/errors"
	pb "go.viam.com/api/component/arm/v1"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/planararm/utils"
)

// Input wraps the input to a mutable frame, e.g. a joint angle. Revolute inputs are in radians.
type Input struct {
	Value float64
}

// FloatsToInputs wraps a slice of floats in Inputs.
func FloatsToInputs(floats []float64) []Input {
	inputs := make([]Input, len(floats))
	for i, f := range floats {
		inputs[i] = Input{f}
	}
	return inputs
}

// InputsToFloats unwraps Inputs to raw floats.
func InputsToFloats(inputs []Input) []float64 {
	floats := make([]float64, len(inputs))
	for i, f := range inputs {
		floats[i] = f.Value
	}
	return floats
}

// CopyInputs returns a copy of the given inputs that shares no memory with them.
func CopyInputs(inputs []Input) []Input {
	if inputs == nil {
		return nil
	}
	out := make([]Input, len(inputs))
	copy(out, inputs)
	return out
}

// JointPositionsToRadians converts the given positions into a slice of radians.
func JointPositionsToRadians(jp *pb.JointPositions) []float64 {
	n := make([]float64, len(jp.Values))
	for idx, d := range jp.Values {
		n[idx] = utils.DegToRad(d)
	}
	return n
}

// JointPositionsFromRadians converts the given slice of radians into joint positions
// (represented in degrees).
func JointPositionsFromRadians(radians []float64) *pb.JointPositions {
	n := make([]float64, len(radians))
	for idx, a := range radians {
		n[idx] = utils.RadToDeg(a)
	}
	return &pb.JointPositions{Values: n}
}

// InputsFromJointPositions converts degree joint positions to radian inputs, checking that
// there are exactly dof of them.
func InputsFromJointPositions(jp *pb.JointPositions, dof int) ([]Input, error) {
	if jp == nil {
		return nil, errors.New("jointPositions cannot be nil")
	}
	if len(jp.Values) != dof {
		return nil, NewIncorrectDoFError(len(jp.Values), dof)
	}
	return FloatsToInputs(JointPositionsToRadians(jp)), nil
}

// InterpolateInputs will return a set of inputs that are the specified percent between the two
// given sets of inputs. For example, setting by to 0.5 will return the inputs halfway between the
// from/to values, and 0.25 would return one quarter of the way from "from" to "to".
func InterpolateInputs(from, to []Input, by float64) []Input {
	newVals := make([]Input, 0, len(from))
	for i, j1 := range from {
		newVals = append(newVals, Input{j1.Value + ((to[i].Value - j1.Value) * by)})
	}
	return newVals
}

// MaxInterpolationSteps bounds the number of waypoints InterpolationSteps builds.
const MaxInterpolationSteps = 10000

// InterpolationSteps returns the evenly spaced intermediate inputs from "from" to "to", ending on
// "to" exactly. The start itself is not included.
func InterpolationSteps(from, to []Input, steps int) ([][]Input, error) {
	if len(from) != len(to) {
		return nil, NewIncorrectDoFError(len(to), len(from))
	}
	if steps < 1 {
		return nil, NewInterpolationStepsError(steps)
	}
	if steps > MaxInterpolationSteps {
		return nil, NewTooManyInterpolationStepsError(steps)
	}
	out := make([][]Input, 0, steps)
	for i := 1; i < steps; i++ {
		out = append(out, InterpolateInputs(from, to, float64(i)/float64(steps)))
	}
	return append(out, CopyInputs(to)), nil
}

// InputsL2Distance returns the two-norm between two Input sets. Sets of different lengths are
// infinitely far apart.
func InputsL2Distance(from, to []Input) float64 {
	if len(from) != len(to) {
		return math.Inf(1)
	}
	diff := make([]float64, 0, len(from))
	for i, f := range from {
		diff = append(diff, f.Value-to[i].Value)
	}
	// 2 is the L value returning a standard L2 Normalization
	return floats.Norm(diff, 2)
}
