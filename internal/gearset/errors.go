package gearset

import (
	"errors"
	"fmt"
)

// Domain errors for gear train recomputes.
var (
	// ErrInfeasibleConstraint indicates no integer tooth count satisfies the
	// epicyclic relation for the current solve-for target.
	ErrInfeasibleConstraint = errors.New("gearset: tooth counts cannot satisfy ring = sun + 2*planet")

	// ErrDegenerateGearTrain indicates tooth counts that leave the geometry undefined.
	ErrDegenerateGearTrain = errors.New("gearset: degenerate gear train")

	// ErrInvalidParameter indicates a parameter outside its valid range.
	ErrInvalidParameter = errors.New("gearset: invalid parameter")
)

// ConstraintError records the triple that could not be solved.
type ConstraintError struct {
	SolveFor Role
	Sun      int
	Planet   int
	Ring     int
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("this configuration of sun and ring gears is not allowed (solve for %s: sun=%d planet=%d ring=%d)",
		e.SolveFor, e.Sun, e.Planet, e.Ring)
}

func (e *ConstraintError) Unwrap() error {
	return ErrInfeasibleConstraint
}
