// Package kinematics computes the planar forward kinematics of the six joint arm: from six joint
// angles to a rotation and position for each of its seven segments.
//
// The chain is a fixed base at the origin with three independent two-link sub-chains. Within a
// sub-chain both links are positioned from the drive joint's angle, while the distal link's
// rotation also adds the distal joint's angle.
package kinematics

import (
	"github.com/golang/geo/r3"

	"go.viam.com/planararm/referenceframe"
)

// Solver maps joint angles to segment poses for one ChainGeometry. It holds no mutable state and
// is safe for concurrent use.
type Solver struct {
	geometry ChainGeometry
}

var defaultSolver = &Solver{geometry: DefaultChainGeometry()}

// NewSolver returns a solver for the given geometry after validating it.
func NewSolver(geometry ChainGeometry) (*Solver, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	return &Solver{geometry: geometry}, nil
}

// DefaultSolver returns the solver for DefaultChainGeometry.
func DefaultSolver() *Solver {
	return defaultSolver
}

// Geometry returns the geometry this solver was built with.
func (s *Solver) Geometry() ChainGeometry {
	return s.geometry
}

// ComputeRotations returns the rotation about +z of each segment, base first. Angles are in
// radians and are not range checked.
func (s *Solver) ComputeRotations(angles []float64) ([]float64, error) {
	if len(angles) != NumJoints {
		return nil, NewInvalidAngleVectorError(len(angles))
	}
	rotations := make([]float64, NumSegments)
	for i, sc := range s.geometry.SubChains {
		drive := angles[sc.DriveJoint]
		rotations[proximalSegment(i)] = drive + sc.ProximalRotationBias
		rotations[distalSegment(i)] = (angles[sc.DistalJoint] + drive) + sc.DistalRotationBias
	}
	return rotations, nil
}

// ComputePositions returns the position of each segment, base first. The base is always at the
// origin and every Z is 0.
func (s *Solver) ComputePositions(angles []float64) ([]r3.Vector, error) {
	if len(angles) != NumJoints {
		return nil, NewInvalidAngleVectorError(len(angles))
	}
	positions := make([]r3.Vector, NumSegments)
	for i, sc := range s.geometry.SubChains {
		disp := sc.displacement(angles[sc.DriveJoint])
		proximal := sc.Anchor.Add(disp)
		positions[proximalSegment(i)] = proximal
		positions[distalSegment(i)] = proximal.Add(disp)
	}
	return positions, nil
}

// SolvePose returns the full pose of every segment for the given joint angles. It is the single
// call a renderer needs per frame.
func (s *Solver) SolvePose(angles []float64) (PoseSet, error) {
	rotations, err := s.ComputeRotations(angles)
	if err != nil {
		return nil, err
	}
	positions, err := s.ComputePositions(angles)
	if err != nil {
		return nil, err
	}
	poses := make(PoseSet, NumSegments)
	for i := range poses {
		poses[i] = SegmentPose{RotationZ: rotations[i], Position: positions[i]}
	}
	return poses, nil
}

// SolvePoseFromInputs is SolvePose for joint inputs.
func (s *Solver) SolvePoseFromInputs(inputs []referenceframe.Input) (PoseSet, error) {
	return s.SolvePose(referenceframe.InputsToFloats(inputs))
}

// ComputeRotations is Solver.ComputeRotations with the default geometry.
func ComputeRotations(angles []float64) ([]float64, error) {
	return defaultSolver.ComputeRotations(angles)
}

// ComputePositions is Solver.ComputePositions with the default geometry.
func ComputePositions(angles []float64) ([]r3.Vector, error) {
	return defaultSolver.ComputePositions(angles)
}

// SolvePose is Solver.SolvePose with the default geometry.
func SolvePose(angles []float64) (PoseSet, error) {
	return defaultSolver.SolvePose(angles)
}
