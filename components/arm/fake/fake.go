// Package fake implements a fake arm that moves to every commanded position immediately.
package fake

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/planararm/components/arm"
	"go.viam.com/planararm/kinematics"
	"go.viam.com/planararm/logging"
	"go.viam.com/planararm/referenceframe"
)

// Model is the name used to refer to the fake arm model.
const Model = "fake"

// Config is used for converting config attributes.
type Config struct {
	ModelFilePath string    `json:"model-path,omitempty"`
	InitialJoints []float64 `json:"initial-joints,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	_, err := conf.validate(path)
	return err
}

// validate checks the config and returns the solver for its geometry.
func (conf *Config) validate(path string) (*kinematics.Solver, error) {
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
		return NewArm(ctx, name, conf, logger)
	})
	arm.RegisterAttributeSchema(Model, &Config{})
}

// NewArm returns a new fake arm.
func NewArm(ctx context.Context, name string, conf *Config, logger logging.Logger) (*Arm, error) {
	solver, err := conf.validate(name)
	if err != nil {
		return nil, err
	}
	joints, err := arm.InitialInputs(conf.InitialJoints)
	if err != nil {
		return nil, err
	}
	return &Arm{
		name:   name,
		logger: logger,
		joints: joints,
		solver: solver,
	}, nil
}

// Arm is a fake arm that can simply read and set joint positions.
type Arm struct {
	name       string
	CloseCount int
	logger     logging.Logger

	mu     sync.RWMutex
	joints []referenceframe.Input
	solver *kinematics.Solver
}

// Name returns the name of the arm.
func (a *Arm) Name() string {
	return a.name
}

// Reconfigure atomically swaps the arm's geometry in place. The current joint positions are kept,
// so initial-joints only applies when the arm is built and a changed value is ignored here.
func (a *Arm) Reconfigure(ctx context.Context, attributes map[string]interface{}) error {
	conf, err := arm.DecodeAttributes[Config](attributes)
	if err != nil {
		return err
	}
	solver, err := conf.validate(a.name)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.solver = solver
	return nil
}

// MoveToJointPositions sets the joints.
func (a *Arm) MoveToJointPositions(ctx context.Context, joints []referenceframe.Input) error {
	if err := arm.CheckDesiredJointPositions(joints); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	copy(a.joints, joints)
	a.logger.Debugw("joints set", "joints", referenceframe.InputsToFloats(a.joints))
	return nil
}

// MoveThroughJointPositions moves the fake arm through the given inputs.
func (a *Arm) MoveThroughJointPositions(ctx context.Context, positions [][]referenceframe.Input) error {
	for _, goal := range positions {
		if err := a.MoveToJointPositions(ctx, goal); err != nil {
			return err
		}
	}
	return nil
}

// JointPositions returns a copy of the joints.
func (a *Arm) JointPositions(ctx context.Context) ([]referenceframe.Input, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return referenceframe.CopyInputs(a.joints), nil
}

// SegmentPoses solves the segment poses for the joints as they are right now.
func (a *Arm) SegmentPoses(ctx context.Context) (kinematics.PoseSet, error) {
	a.mu.RLock()
	joints := referenceframe.CopyInputs(a.joints)
	solver := a.solver
	a.mu.RUnlock()

	poses, err := solver.SolvePoseFromInputs(joints)
	if err != nil {
		return nil, errors.Wrapf(err, "fake arm %q", a.name)
	}
	return poses, nil
}

// Geometry returns the chain geometry of the fake arm.
func (a *Arm) Geometry(ctx context.Context) (kinematics.ChainGeometry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.solver.Geometry(), nil
}

// Stop doesn't do anything for a fake arm.
func (a *Arm) Stop(ctx context.Context) error {
	return nil
}

// IsMoving is always false for a fake arm.
func (a *Arm) IsMoving(ctx context.Context) (bool, error) {
	return false, nil
}

// Close does nothing.
func (a *Arm) Close(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.CloseCount++
	return nil
}
