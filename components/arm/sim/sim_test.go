package sim

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.viam.com/planararm/components/arm"
	"go.viam.com/planararm/logging"
	"go.viam.com/planararm/referenceframe"
)

func newTestArm(t *testing.T, conf *Config) (*Arm, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	sa, err := NewArm(context.Background(), "simArm", conf, mock, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	t.Cleanup(func() {
		test.That(t, sa.Close(context.Background()), test.ShouldBeNil)
	})
	return sa, mock
}

// startMove issues a move in the background and waits for it to be in flight.
func startMove(t *testing.T, sa *Arm, target []float64) <-chan error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() {
		errCh <- sa.MoveToJointPositions(context.Background(), referenceframe.FloatsToInputs(target))
	}()
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		moving, err := sa.IsMoving(context.Background())
		test.That(tb, err, test.ShouldBeNil)
		test.That(tb, moving, test.ShouldBeTrue)
	})
	return errCh
}

func currentJoints(t *testing.T, sa *Arm) []float64 {
	t.Helper()
	joints, err := sa.JointPositions(context.Background())
	test.That(t, err, test.ShouldBeNil)
	return referenceframe.InputsToFloats(joints)
}

func TestConfigValidate(t *testing.T) {
	test.That(t, (&Config{}).Validate("arm"), test.ShouldBeNil)
	test.That(t, (&Config{Speed: 2, SimulateTime: true}).Validate("arm"), test.ShouldBeNil)

	err := (&Config{Speed: -1}).Validate("arm")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "speed must be a non-negative number")

	err = (&Config{InitialJoints: []float64{1, 2}}).Validate("arm")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "Expected 6, got 2")
}

func TestMoveOverTime(t *testing.T) {
	sa, mock := newTestArm(t, &Config{Speed: 1})

	errCh := startMove(t, sa, []float64{1, -0.5, 0, 0, 0, 0})

	// Half a second in, the first joint is half way and the second has arrived.
	mock.Add(500 * time.Millisecond)
	sa.UpdateForTime(mock.Now())
	joints := currentJoints(t, sa)
	test.That(t, joints[0], test.ShouldAlmostEqual, 0.5)
	test.That(t, joints[1], test.ShouldAlmostEqual, -0.5)

	moving, err := sa.IsMoving(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, moving, test.ShouldBeTrue)

	mock.Add(time.Second)
	sa.UpdateForTime(mock.Now())
	test.That(t, <-errCh, test.ShouldBeNil)
	test.That(t, currentJoints(t, sa), test.ShouldResemble, []float64{1, -0.5, 0, 0, 0, 0})

	moving, err = sa.IsMoving(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, moving, test.ShouldBeFalse)

	// Stopping after arrival changes nothing.
	test.That(t, sa.Stop(context.Background()), test.ShouldBeNil)
	test.That(t, currentJoints(t, sa)[0], test.ShouldEqual, 1.0)
}

func TestStop(t *testing.T) {
	sa, mock := newTestArm(t, &Config{Speed: 2})

	errCh := startMove(t, sa, []float64{2, 0, 0, 0, 0, 0})
	mock.Add(250 * time.Millisecond)
	sa.UpdateForTime(mock.Now())
	test.That(t, sa.Stop(context.Background()), test.ShouldBeNil)
	test.That(t, <-errCh, test.ShouldBeError, ErrStopped)

	mock.Add(time.Second)
	sa.UpdateForTime(mock.Now())
	test.That(t, currentJoints(t, sa)[0], test.ShouldAlmostEqual, 0.5)
}

func TestNewMoveSupersedesOld(t *testing.T) {
	sa, mock := newTestArm(t, &Config{})

	first := startMove(t, sa, []float64{1, 0, 0, 0, 0, 0})
	second := make(chan error, 1)
	go func() {
		second <- sa.MoveToJointPositions(context.Background(), referenceframe.FloatsToInputs([]float64{-1, 0, 0, 0, 0, 0}))
	}()
	// The first move only fails once the second one is in flight.
	test.That(t, <-first, test.ShouldBeError, ErrStopped)

	mock.Add(2 * time.Second)
	sa.UpdateForTime(mock.Now())
	test.That(t, <-second, test.ShouldBeNil)
	test.That(t, currentJoints(t, sa)[0], test.ShouldEqual, -1.0)
}

func TestMoveCancelled(t *testing.T) {
	sa, _ := newTestArm(t, &Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sa.MoveToJointPositions(ctx, referenceframe.FloatsToInputs([]float64{1, 0, 0, 0, 0, 0}))
	test.That(t, err, test.ShouldBeError, context.Canceled)

	err = sa.MoveToJointPositions(context.Background(), referenceframe.FloatsToInputs([]float64{1}))
	test.That(t, err, test.ShouldBeError, referenceframe.NewIncorrectDoFError(1, 6))
}

func TestCloseFailsMoveInFlight(t *testing.T) {
	mock := clock.NewMock()
	sa, err := NewArm(context.Background(), "simArm", &Config{}, mock, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	errCh := startMove(t, sa, []float64{1, 0, 0, 0, 0, 0})
	test.That(t, sa.Close(context.Background()), test.ShouldBeNil)
	test.That(t, <-errCh, test.ShouldBeError, context.Canceled)
}

func TestSimulateTime(t *testing.T) {
	sa, mock := newTestArm(t, &Config{Speed: 10, SimulateTime: true})

	errCh := startMove(t, sa, []float64{0, 0, 0, 0, 1, 0})
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		mock.Add(tickInterval)
		joints, err := sa.JointPositions(context.Background())
		test.That(tb, err, test.ShouldBeNil)
		test.That(tb, joints[4].Value, test.ShouldEqual, 1.0)
	})
	test.That(t, <-errCh, test.ShouldBeNil)
}

func TestConfigBuiltArmMovesOnItsOwn(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger := logging.NewTestLogger(t)

	a, err := arm.New(ctx, Model, "simArm", map[string]interface{}{"speed": 100}, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, a.Close(context.Background()), test.ShouldBeNil)
	}()

	target := []float64{0.1, 0, 0, 0, 0, -0.1}
	test.That(t, a.MoveToJointPositions(ctx, referenceframe.FloatsToInputs(target)), test.ShouldBeNil)
	joints, err := a.JointPositions(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, referenceframe.InputsToFloats(joints), test.ShouldResemble, target)

	_, err = arm.New(ctx, Model, "simArm", map[string]interface{}{"simulate-time": false}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "simulate-time")
}

func TestSegmentPosesFollowMotion(t *testing.T) {
	sa, mock := newTestArm(t, &Config{InitialJoints: []float64{0.2, 0, 0, 0, 0, 0}})

	before, err := sa.SegmentPoses(context.Background())
	test.That(t, err, test.ShouldBeNil)

	errCh := startMove(t, sa, []float64{0.2, 0, 0, 0, 0.5, 0})
	mock.Add(time.Second)
	sa.UpdateForTime(mock.Now())
	test.That(t, <-errCh, test.ShouldBeNil)

	after, err := sa.SegmentPoses(context.Background())
	test.That(t, err, test.ShouldBeNil)
	for i := 0; i < 5; i++ {
		test.That(t, after[i], test.ShouldResemble, before[i])
	}
	test.That(t, after[5].RotationZ, test.ShouldAlmostEqual, 0.5)
	test.That(t, after[6].RotationZ, test.ShouldAlmostEqual, 0.5)
}

func TestRegisteredConstructor(t *testing.T) {
	built, err := arm.New(context.Background(), Model, "fromAttrs", map[string]interface{}{"speed": 3}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, built.Close(context.Background()), test.ShouldBeNil)
	}()
	sa, ok := built.(*Arm)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, sa.speed, test.ShouldEqual, 3.0)

	_, isReconfigurable := built.(arm.Reconfigurable)
	test.That(t, isReconfigurable, test.ShouldBeFalse)
}
