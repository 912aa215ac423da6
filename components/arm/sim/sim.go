// Package sim implements an arm that moves to joint positions over time. Time is supplied by a
// clock, so tests can advance it deterministically.
package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/planararm/components/arm"
	"go.viam.com/planararm/kinematics"
	"go.viam.com/planararm/logging"
	"go.viam.com/planararm/referenceframe"
	"go.viam.com/planararm/utils"
)

// Model is the name used to refer to the simulated arm model.
const Model = "simulated"

// DefaultSpeed is the joint speed in radians per second used when none is configured.
const DefaultSpeed = 1.0

const tickInterval = 10 * time.Millisecond

// ErrStopped is returned by a move that was interrupted by Stop.
var ErrStopped = errors.New("stopped before reaching target")

// operation has the following states:
// 1. Zero value: no operation in flight.
// 2. Started: targetInputs != nil, done and stopped both false.
// 3. Succeeded: done.
// 4. Interrupted: stopped.
// finished is closed on entering either of the last two states.
type operation struct {
	targetInputs []float64
	done         bool
	stopped      bool
	finished     chan struct{}
}

func (op operation) isMoving() bool {
	return op.targetInputs != nil && !op.done && !op.stopped
}

// Config is used for converting config attributes.
type Config struct {
	ModelFilePath string    `json:"model-path,omitempty"`
	InitialJoints []float64 `json:"initial-joints,omitempty"`

	// Speed is how quickly every joint moves, in radians per second.
	Speed float64 `json:"speed,omitempty"`

	// SimulateTime runs a background goroutine that advances the arm from its clock. Without it
	// the owner must call Arm.UpdateForTime for the arm to move. Arms built from config have no
	// such owner and always simulate time, so it is not a config attribute.
	SimulateTime bool `json:"-"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	_, err := conf.validate(path)
	return err
}

// validate checks the config and returns the solver for its geometry.
func (conf *Config) validate(path string) (*kinematics.Solver, error) {
	if conf.Speed < 0 || !utils.AllFinite(conf.Speed) {
		return nil, goutils.NewConfigValidationError(path, errors.Errorf("speed must be a non-negative number, got %v", conf.Speed))
	}
	if len(conf.InitialJoints) != 0 && len(conf.InitialJoints) != kinematics.NumJoints {
		return nil, goutils.NewConfigValidationError(path,
			referenceframe.NewIncorrectDoFError(len(conf.InitialJoints), kinematics.NumJoints))
	}
	solver, err := arm.SolverFromModelPath(conf.ModelFilePath)
	if err != nil {
		return nil, goutils.NewConfigValidationError(path, err)
	}
	return solver, nil
}

func init() {
	arm.RegisterModel(Model, func(
		ctx context.Context, name string, attributes map[string]interface{}, logger logging.Logger,
	) (arm.Arm, error) {
		conf, err := arm.DecodeAttributes[Config](attributes)
		if err != nil {
			return nil, err
		}
		conf.SimulateTime = true
		return NewArm(ctx, name, conf, clock.New(), logger)
	})
	arm.RegisterAttributeSchema(Model, &Config{})
}

// Arm is an arm whose joints travel toward their target at a fixed speed.
type Arm struct {
	name   string
	solver *kinematics.Solver
	speed  float64
	clk    clock.Clock

	ctx    context.Context
	cancel func()

	mu sync.Mutex
	// currInputs is always updated along with lastUpdated.
	currInputs  []float64
	lastUpdated time.Time
	operation   operation

	timeSimulation utils.StoppableWorkers

	logger logging.Logger
}

// NewArm returns a new simulated arm reading time from clk.
func NewArm(ctx context.Context, name string, conf *Config, clk clock.Clock, logger logging.Logger) (*Arm, error) {
	solver, err := conf.validate(name)
	if err != nil {
		return nil, err
	}
	initial, err := arm.InitialInputs(conf.InitialJoints)
	if err != nil {
		return nil, err
	}

	speed := DefaultSpeed
	if conf.Speed > 0 {
		speed = conf.Speed
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	sa := &Arm{
		name:        name,
		solver:      solver,
		speed:       speed,
		clk:         clk,
		ctx:         cancelCtx,
		cancel:      cancel,
		currInputs:  referenceframe.InputsToFloats(initial),
		lastUpdated: clk.Now(),
		logger:      logger,
	}

	if conf.SimulateTime {
		sa.timeSimulation = utils.NewStoppableWorkers(sa.simulateTime)
	}
	return sa, nil
}

func (sa *Arm) simulateTime(ctx context.Context) {
	ticker := sa.clk.Ticker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sa.UpdateForTime(now)
		}
	}
}

// Name returns the name of the arm.
func (sa *Arm) Name() string {
	return sa.name
}

// UpdateForTime advances every moving joint by the time elapsed since the last update. Each joint
// travels at full speed, so joints with less travel finish first. Only this method moves the arm.
func (sa *Arm) UpdateForTime(now time.Time) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	elapsed := now.Sub(sa.lastUpdated)
	sa.lastUpdated = now
	if !sa.operation.isMoving() {
		return
	}

	anyJointStillMoving := false
	for jointIdx, curr := range sa.currInputs {
		// Signed by direction of travel.
		diffRads := sa.operation.targetInputs[jointIdx] - curr

		toTravelRads := elapsed.Seconds() * sa.speed
		const epsilon = 1e-9
		if toTravelRads > math.Abs(diffRads)-epsilon {
			sa.currInputs[jointIdx] = sa.operation.targetInputs[jointIdx]
			continue
		}
		if diffRads < 0 {
			toTravelRads = -toTravelRads
		}
		sa.currInputs[jointIdx] = curr + toTravelRads
		anyJointStillMoving = true
	}

	if !anyJointStillMoving {
		sa.operation.done = true
		close(sa.operation.finished)
	}
}

// MoveToJointPositions starts a move and blocks until the target is reached, the arm is stopped
// or closed, or ctx is done.
func (sa *Arm) MoveToJointPositions(ctx context.Context, target []referenceframe.Input) error {
	if err := arm.CheckDesiredJointPositions(target); err != nil {
		return err
	}

	sa.mu.Lock()
	if sa.operation.isMoving() {
		// A new command supersedes the one in flight.
		sa.operation.stopped = true
		close(sa.operation.finished)
	}
	op := operation{
		targetInputs: referenceframe.InputsToFloats(target),
		finished:     make(chan struct{}),
	}
	sa.operation = op
	distance := referenceframe.InputsL2Distance(referenceframe.FloatsToInputs(sa.currInputs), target)
	sa.mu.Unlock()

	sa.logger.Debugw("move started", "target", op.targetInputs, "distance", distance)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-sa.ctx.Done():
		return sa.ctx.Err()
	case <-op.finished:
	}

	sa.mu.Lock()
	defer sa.mu.Unlock()
	// A newer move may have replaced op.
	if sa.operation.finished == op.finished && sa.operation.done {
		return nil
	}
	return ErrStopped
}

// MoveThroughJointPositions moves through each of the goals in order.
func (sa *Arm) MoveThroughJointPositions(ctx context.Context, positions [][]referenceframe.Input) error {
	for _, goal := range positions {
		if err := sa.MoveToJointPositions(ctx, goal); err != nil {
			return err
		}
	}
	return nil
}

// JointPositions returns a copy of the current joint positions.
func (sa *Arm) JointPositions(ctx context.Context) ([]referenceframe.Input, error) {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	return referenceframe.FloatsToInputs(sa.currInputs), nil
}

// SegmentPoses solves the segment poses for the joints as they are right now.
func (sa *Arm) SegmentPoses(ctx context.Context) (kinematics.PoseSet, error) {
	joints, err := sa.JointPositions(ctx)
	if err != nil {
		return nil, err
	}
	return sa.solver.SolvePoseFromInputs(joints)
}

// Geometry returns the chain geometry of the arm.
func (sa *Arm) Geometry(ctx context.Context) (kinematics.ChainGeometry, error) {
	return sa.solver.Geometry(), nil
}

// IsMoving returns whether a move is in flight.
func (sa *Arm) IsMoving(ctx context.Context) (bool, error) {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	return sa.operation.isMoving(), nil
}

// Stop interrupts the move in flight, leaving the joints where they are.
func (sa *Arm) Stop(ctx context.Context) error {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	// Only mark moving operations, so a finished move still reports that it reached its goal.
	if !sa.operation.isMoving() {
		return nil
	}
	sa.operation.stopped = true
	close(sa.operation.finished)
	return nil
}

// Close stops time simulation and fails any move in flight.
func (sa *Arm) Close(ctx context.Context) error {
	sa.cancel()
	if sa.timeSimulation != nil {
		sa.timeSimulation.Stop()
	}
	return nil
}
