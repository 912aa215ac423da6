package referenceframe

import "github.com/pkg/errors"

// NewIncorrectDoFError returns an error indicating that the number of provided inputs does not
// match the number of degrees of freedom of the arm.
func NewIncorrectDoFError(actual, expected int) error {
	return errors.Errorf("number of inputs does not match degrees of freedom. Expected %d, got %d", expected, actual)
}

// NewInterpolationStepsError is used when an interpolation is requested with a non positive
// number of steps.
func NewInterpolationStepsError(steps int) error {
	return errors.Errorf("interpolation needs at least one step, got %d", steps)
}

// NewTooManyInterpolationStepsError is used when an interpolation asks for more than
// MaxInterpolationSteps steps.
func NewTooManyInterpolationStepsError(steps int) error {
	return errors.Errorf("interpolation allows at most %d steps, got %d", MaxInterpolationSteps, steps)
}
