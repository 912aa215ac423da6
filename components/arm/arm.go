// Package arm defines the joint driven arm that feeds the pose solver. An Arm owns the live joint
// angle vector and always hands out consistent copies of it.
package arm

import (
	"context"

	"go.viam.com/planararm/kinematics"
	"go.viam.com/planararm/referenceframe"
)

// An Arm is a six joint planar arm.
type Arm interface {
	// Name returns the configured name of the arm.
	Name() string

	// JointPositions returns a snapshot of the current joint angles in radians. The returned
	// slice is never shared with the arm.
	JointPositions(ctx context.Context) ([]referenceframe.Input, error)

	// MoveToJointPositions moves the arm to the given joint angles.
	MoveToJointPositions(ctx context.Context, positions []referenceframe.Input) error

	// MoveThroughJointPositions moves the arm through each of the given joint angle vectors in
	// order.
	MoveThroughJointPositions(ctx context.Context, positions [][]referenceframe.Input) error

	// SegmentPoses solves the pose of every segment for the current joint angles.
	SegmentPoses(ctx context.Context) (kinematics.PoseSet, error)

	// Geometry returns the chain geometry the arm is solved with.
	Geometry(ctx context.Context) (kinematics.ChainGeometry, error)

	// Stop stops any motion in progress.
	Stop(ctx context.Context) error

	// IsMoving returns whether the arm is moving.
	IsMoving(ctx context.Context) (bool, error)

	Close(ctx context.Context) error
}

// CheckDesiredJointPositions validates that the desired joint positions form a full joint angle
// vector. Values themselves are never range checked; the arm has no joint limits.
func CheckDesiredJointPositions(desired []referenceframe.Input) error {
	if len(desired) != kinematics.NumJoints {
		return referenceframe.NewIncorrectDoFError(len(desired), kinematics.NumJoints)
	}
	return nil
}

// SolverFromModelPath returns the solver for the geometry file at path, or the default solver
// when path is empty.
func SolverFromModelPath(path string) (*kinematics.Solver, error) {
	if path == "" {
		return kinematics.DefaultSolver(), nil
	}
	geometry, err := kinematics.ParseChainGeometryFile(path)
	if err != nil {
		return nil, err
	}
	return kinematics.NewSolver(geometry)
}

// InitialInputs returns the joint inputs an arm starts from: the configured values, or all
// zeros when none are configured.
func InitialInputs(initial []float64) ([]referenceframe.Input, error) {
	if len(initial) == 0 {
		return referenceframe.FloatsToInputs(make([]float64, kinematics.NumJoints)), nil
	}
	inputs := referenceframe.FloatsToInputs(initial)
	if err := CheckDesiredJointPositions(inputs); err != nil {
		return nil, err
	}
	return inputs, nil
}
