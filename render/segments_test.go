package render

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/planararm/kinematics"
)

func TestNewSegmentSet(t *testing.T) {
	set := NewSegmentSet()
	segments := set.Snapshot()
	test.That(t, len(segments), test.ShouldEqual, kinematics.NumSegments)
	for i, seg := range segments {
		test.That(t, seg.Name, test.ShouldEqual, kinematics.SegmentName(i))
		test.That(t, seg.Posed, test.ShouldBeFalse)
		test.That(t, seg.Pose.Position.X, test.ShouldEqual, initialOffsets[i])
		test.That(t, seg.Pose.Position.Y, test.ShouldEqual, 0.0)
	}
	test.That(t, segments[0].Pose.Position.X, test.ShouldEqual, -0.1)
	test.That(t, segments[6].Pose.Position.X, test.ShouldEqual, 0.23)
	test.That(t, set.Applied(), test.ShouldEqual, uint64(0))
}

func TestApply(t *testing.T) {
	set := NewSegmentSet()
	poses, err := kinematics.SolvePose([]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6})
	test.That(t, err, test.ShouldBeNil)

	test.That(t, set.Apply(poses), test.ShouldBeNil)
	test.That(t, set.Applied(), test.ShouldEqual, uint64(1))
	for i, seg := range set.Snapshot() {
		test.That(t, seg.Posed, test.ShouldBeTrue)
		test.That(t, seg.Pose, test.ShouldResemble, poses[i])
	}

	err = set.Apply(poses[:6])
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "expected 7 segment poses, got 6")
	test.That(t, set.Applied(), test.ShouldEqual, uint64(1))
}

func TestSnapshotIsACopy(t *testing.T) {
	set := NewSegmentSet()
	segments := set.Snapshot()
	segments[3].Name = "changed"
	test.That(t, set.Snapshot()[3].Name, test.ShouldEqual, "arm3")
}

func TestSegmentsFromPoses(t *testing.T) {
	poses, err := kinematics.SolvePose(make([]float64, 6))
	test.That(t, err, test.ShouldBeNil)
	segments := SegmentsFromPoses(poses)
	test.That(t, len(segments), test.ShouldEqual, 7)
	test.That(t, segments[2].Name, test.ShouldEqual, "arm2")
	test.That(t, segments[2].Pose, test.ShouldResemble, poses[2])
}
