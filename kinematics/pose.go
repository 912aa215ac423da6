package kinematics

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/planararm/utils"
)

// SegmentPose is the placement of one segment: a rotation about +z and a position in the z=0
// plane.
type SegmentPose struct {
	RotationZ float64
	Position  r3.Vector
}

// Quaternion returns the unit quaternion for a rotation of RotationZ about the +z axis.
func (p SegmentPose) Quaternion() quat.Number {
	sin, cos := math.Sincos(p.RotationZ / 2)
	return quat.Number{Real: cos, Kmag: sin}
}

// AlmostEqual reports whether both poses agree to within epsilon in rotation and in each
// position coordinate.
func (p SegmentPose) AlmostEqual(other SegmentPose, epsilon float64) bool {
	return utils.Float64AlmostEqual(p.RotationZ, other.RotationZ, epsilon) &&
		utils.Float64AlmostEqual(p.Position.X, other.Position.X, epsilon) &&
		utils.Float64AlmostEqual(p.Position.Y, other.Position.Y, epsilon) &&
		utils.Float64AlmostEqual(p.Position.Z, other.Position.Z, epsilon)
}

// PoseSet is one pose per segment, indexed by segment with the base at 0. Solvers always return
// exactly NumSegments poses.
type PoseSet []SegmentPose

// Segment returns the pose of segment idx.
func (ps PoseSet) Segment(idx int) (SegmentPose, error) {
	if idx < 0 || idx >= len(ps) {
		return SegmentPose{}, NewSegmentOutOfRangeError(idx)
	}
	return ps[idx], nil
}

// Rotations returns the RotationZ of every segment in order.
func (ps PoseSet) Rotations() []float64 {
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = p.RotationZ
	}
	return out
}

// Positions returns the position of every segment in order.
func (ps PoseSet) Positions() []r3.Vector {
	out := make([]r3.Vector, len(ps))
	for i, p := range ps {
		out[i] = p.Position
	}
	return out
}

// AlmostEqual reports whether both sets have the same length and pairwise almost equal poses.
func (ps PoseSet) AlmostEqual(other PoseSet, epsilon float64) bool {
	if len(ps) != len(other) {
		return false
	}
	for i := range ps {
		if !ps[i].AlmostEqual(other[i], epsilon) {
			return false
		}
	}
	return true
}
