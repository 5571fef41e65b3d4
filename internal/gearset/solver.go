package gearset

import "fmt"

// Solve fills in the tooth count named by t.SolveFor so that
// ring = sun + 2*planet holds. The other two counts are never touched, and
// on failure the dependent count keeps its previous value. Pitch diameters
// are refreshed after a successful solve.
func Solve(t *Train) error {
	switch t.SolveFor {
	case RolePlanet:
		diff := t.RingTeeth - t.SunTeeth
		if diff <= 0 || diff%2 != 0 {
			return constraintError(t)
		}
		t.PlanetTeeth = diff / 2
	case RoleSun:
		sun := t.RingTeeth - 2*t.PlanetTeeth
		if sun <= 0 {
			return constraintError(t)
		}
		t.SunTeeth = sun
	case RoleRing:
		t.RingTeeth = t.SunTeeth + 2*t.PlanetTeeth
	default:
		return fmt.Errorf("%w: unknown solve-for role %s", ErrInvalidParameter, t.SolveFor)
	}
	t.RefreshPitch()
	return nil
}

func constraintError(t *Train) *ConstraintError {
	return &ConstraintError{
		SolveFor: t.SolveFor,
		Sun:      t.SunTeeth,
		Planet:   t.PlanetTeeth,
		Ring:     t.RingTeeth,
	}
}
