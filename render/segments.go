// Package render places the solved segments of the arm and draws them.
package render

import (
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/planararm/kinematics"
)

// initialOffsets are where segments sit on the x axis before the first pose is applied.
var initialOffsets = [kinematics.NumSegments]float64{-0.1, 0, 0.03, 0.1, 0.13, 0.2, 0.23}

// Segment is one drawable link of the arm.
type Segment struct {
	Name string
	Pose kinematics.SegmentPose
	// Posed is false until a solved pose has been applied.
	Posed bool
}

// SegmentSet owns the seven drawable segments. It is safe for concurrent use.
type SegmentSet struct {
	mu       sync.RWMutex
	segments [kinematics.NumSegments]Segment
	applied  uint64
}

// NewSegmentSet returns the segments at their initial offsets.
func NewSegmentSet() *SegmentSet {
	set := &SegmentSet{}
	for i := range set.segments {
		set.segments[i] = Segment{
			Name: kinematics.SegmentName(i),
			Pose: kinematics.SegmentPose{Position: r3.Vector{X: initialOffsets[i]}},
		}
	}
	return set
}

// Apply writes every pose of a solved pose set onto its segment.
func (s *SegmentSet) Apply(poses kinematics.PoseSet) error {
	if len(poses) != kinematics.NumSegments {
		return errors.Errorf("expected %d segment poses, got %d", kinematics.NumSegments, len(poses))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, pose := range poses {
		s.segments[i].Pose = pose
		s.segments[i].Posed = true
	}
	s.applied++
	return nil
}

// Snapshot returns a copy of the segments.
func (s *SegmentSet) Snapshot() []Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Segment, len(s.segments))
	copy(out, s.segments[:])
	return out
}

// Applied returns how many pose sets have been applied.
func (s *SegmentSet) Applied() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applied
}

// SegmentsFromPoses returns posed segments without going through a SegmentSet.
func SegmentsFromPoses(poses kinematics.PoseSet) []Segment {
	out := make([]Segment, len(poses))
	for i, pose := range poses {
		out[i] = Segment{Name: kinematics.SegmentName(i), Pose: pose, Posed: true}
	}
	return out
}
