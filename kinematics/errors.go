package kinematics

import "github.com/pkg/errors"

// ErrInvalidAngleVector is returned when a solve is requested with anything other than exactly
// NumJoints joint angles.
var ErrInvalidAngleVector = errors.New("invalid angle vector length")

// NewInvalidAngleVectorError wraps ErrInvalidAngleVector with the offending length.
func NewInvalidAngleVectorError(got int) error {
	return errors.Wrapf(ErrInvalidAngleVector, "expected %d joint angles, got %d", NumJoints, got)
}

// NewSegmentOutOfRangeError is used when a segment index outside [0, NumSegments) is requested.
func NewSegmentOutOfRangeError(idx int) error {
	return errors.Errorf("segment %d out of range, arm has %d segments", idx, NumSegments)
}
