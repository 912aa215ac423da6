package kinematics

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const (
	// NumJoints is the number of driven joints, and so the length of every joint angle vector.
	NumJoints = 6
	// NumSegments is the number of rigid segments: the fixed base plus one per driven joint.
	NumSegments = NumJoints + 1
	// NumSubChains is the number of independent two-link sub-chains hanging off the base.
	NumSubChains = 3

	// DefaultLinkLength is the length of every link of the reference arm, in meters.
	DefaultLinkLength = 0.04011
)

// SubChain describes two rigid links of equal length hinged at a shared proximal joint. Its
// proximal segment is 2*i+1 and its distal segment is 2*i+2, where i is its index in the chain.
//
// Both segments are positioned from the drive joint alone. The distal joint only adds to the
// distal segment's rotation.
type SubChain struct {
	Name string
	// DriveJoint is the joint index that rotates the proximal segment and positions both segments.
	DriveJoint int
	// DistalJoint is the joint index whose angle is added to DriveJoint for the distal rotation.
	DistalJoint int
	// Anchor is the fixed offset of the proximal hinge from the base, with Z always 0.
	Anchor     r3.Vector
	LinkLength float64
	// PositionBias is added to the drive angle before computing the link displacement.
	PositionBias float64
	// ProximalRotationBias and DistalRotationBias are the mechanical zero offsets of the
	// segments' mounting.
	ProximalRotationBias float64
	DistalRotationBias   float64
}

// proximalSegment returns the segment index of the link nearest the base of sub-chain chainIdx.
func proximalSegment(chainIdx int) int {
	return 2*chainIdx + 1
}

// distalSegment returns the segment index of the outer link of sub-chain chainIdx.
func distalSegment(chainIdx int) int {
	return 2*chainIdx + 2
}

// displacement is the vector from one hinge of the sub-chain to the next.
func (sc SubChain) displacement(driveAngle float64) r3.Vector {
	theta := driveAngle + sc.PositionBias
	return r3.Vector{X: sc.LinkLength * math.Cos(theta), Y: sc.LinkLength * math.Sin(theta)}
}

// ChainGeometry is the immutable description of the arm: a fixed base at the origin and three
// sub-chains, in segment order.
type ChainGeometry struct {
	Name      string
	SubChains [NumSubChains]SubChain
}

// DefaultChainGeometry returns the geometry of the reference six joint arm.
func DefaultChainGeometry() ChainGeometry {
	return ChainGeometry{
		Name: "vinci-arm",
		SubChains: [NumSubChains]SubChain{
			{
				Name:                 "left",
				DriveJoint:           0,
				DistalJoint:          1,
				Anchor:               r3.Vector{X: -0.0771, Y: -0.0445},
				LinkLength:           DefaultLinkLength,
				PositionBias:         -2.6180,
				ProximalRotationBias: -1.0472,
				DistalRotationBias:   2.0944,
			},
			{
				Name:                 "right",
				DriveJoint:           2,
				DistalJoint:          3,
				Anchor:               r3.Vector{X: 0.0771, Y: -0.0445},
				LinkLength:           DefaultLinkLength,
				PositionBias:         -0.5236,
				ProximalRotationBias: -2.0944,
				DistalRotationBias:   -2.0944,
			},
			{
				Name:                 "top",
				DriveJoint:           4,
				DistalJoint:          5,
				Anchor:               r3.Vector{X: 0, Y: 0.089},
				LinkLength:           DefaultLinkLength,
				PositionBias:         1.5708,
				ProximalRotationBias: 0,
				DistalRotationBias:   0,
			},
		},
	}
}

// Validate returns every problem with the geometry combined into one error.
func (g ChainGeometry) Validate() error {
	var errs error
	seen := map[int]string{}
	claim := func(joint int, owner string) {
		if joint < 0 || joint >= NumJoints {
			errs = multierr.Append(errs, errors.Errorf("%s: joint index %d out of range [0, %d)", owner, joint, NumJoints))
			return
		}
		if prev, ok := seen[joint]; ok {
			errs = multierr.Append(errs, errors.Errorf("%s: joint %d already used by %s", owner, joint, prev))
			return
		}
		seen[joint] = owner
	}

	for i, sc := range g.SubChains {
		owner := sc.Name
		if owner == "" {
			owner = fmt.Sprintf("sub-chain %d", i)
		}
		claim(sc.DriveJoint, owner)
		claim(sc.DistalJoint, owner)
		if !(sc.LinkLength > 0) || math.IsInf(sc.LinkLength, 0) {
			errs = multierr.Append(errs, errors.Errorf("%s: link length must be positive and finite, got %v", owner, sc.LinkLength))
		}
		for _, field := range []struct {
			name  string
			value float64
		}{
			{"anchor x", sc.Anchor.X},
			{"anchor y", sc.Anchor.Y},
			{"position bias", sc.PositionBias},
			{"proximal rotation bias", sc.ProximalRotationBias},
			{"distal rotation bias", sc.DistalRotationBias},
		} {
			if math.IsNaN(field.value) || math.IsInf(field.value, 0) {
				errs = multierr.Append(errs, errors.Errorf("%s: %s must be finite", owner, field.name))
			}
		}
		if sc.Anchor.Z != 0 {
			errs = multierr.Append(errs, errors.Errorf("%s: anchor must lie in the z=0 plane", owner))
		}
	}
	return errs
}

// SegmentName returns the display name of a segment, "arm0" being the base.
func SegmentName(idx int) string {
	return fmt.Sprintf("arm%d", idx)
}
