package gearset

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Role identifies one of the three gears of a train.
type Role int

const (
	RoleSun Role = iota
	RolePlanet
	RoleRing
)

// Roles lists the gear roles in the order they are generated.
var Roles = []Role{RoleSun, RolePlanet, RoleRing}

func (r Role) String() string {
	switch r {
	case RoleSun:
		return "sun"
	case RolePlanet:
		return "planet"
	case RoleRing:
		return "ring"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

func (r Role) valid() bool {
	return r == RoleSun || r == RolePlanet || r == RoleRing
}

// ParseRole accepts "sun", "planet" or "ring" in any case.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sun":
		return RoleSun, nil
	case "planet":
		return RolePlanet, nil
	case "ring":
		return RoleRing, nil
	}
	return 0, fmt.Errorf("%w: unknown gear role %q (want sun, planet or ring)", ErrInvalidParameter, s)
}

// Triple is a sun/planet/ring tooth count combination.
type Triple struct {
	Sun    int
	Planet int
	Ring   int
}

// Consistent reports whether ring = sun + 2*planet.
func (tr Triple) Consistent() bool {
	return tr.Ring == tr.Sun+2*tr.Planet
}

// PlanetInstance is one physical planet gear in the arena.
type PlanetInstance struct {
	Index    int
	Position r2.Vec
	Rotation float64 // degrees about the train axis
	Visible  bool

	// Angle is the orbit angle in degrees and Slot the mesh slot index of
	// the last placement.
	Angle float64
	Slot  int

	Gear *GearHandle
}

// Train holds the parameters of one planetary gear train.
type Train struct {
	Module        float64
	PressureAngle float64
	HelixAngle    float64
	DoubleHelix   bool
	Height        float64
	Clearance     float64
	Backlash      float64

	SolveFor    Role
	SunTeeth    int
	PlanetTeeth int
	RingTeeth   int

	SunAngle  float64
	RingAngle float64

	PlanetCount int

	SunPitchDiameter    float64
	PlanetPitchDiameter float64
	RingPitchDiameter   float64

	Planets []PlanetInstance

	SunGear  *GearHandle
	RingGear *GearHandle

	lastValid *Triple
}

// PitchDiameter returns module * teeth.
func PitchDiameter(module float64, teeth int) float64 {
	return module * float64(teeth)
}

// RefreshPitch recomputes the derived pitch diameters.
func (t *Train) RefreshPitch() {
	t.SunPitchDiameter = PitchDiameter(t.Module, t.SunTeeth)
	t.PlanetPitchDiameter = PitchDiameter(t.Module, t.PlanetTeeth)
	t.RingPitchDiameter = PitchDiameter(t.Module, t.RingTeeth)
}

// Teeth returns the tooth count of a role.
func (t *Train) Teeth(r Role) int {
	switch r {
	case RoleSun:
		return t.SunTeeth
	case RolePlanet:
		return t.PlanetTeeth
	case RoleRing:
		return t.RingTeeth
	}
	return 0
}

// Triple returns the current tooth counts.
func (t *Train) Triple() Triple {
	return Triple{Sun: t.SunTeeth, Planet: t.PlanetTeeth, Ring: t.RingTeeth}
}

// Editable reports whether the tooth count of r may be set by the user.
// The solve-for count is derived and therefore read-only.
func (t *Train) Editable(r Role) bool {
	return r != t.SolveFor
}

// VisiblePlanets counts planets currently shown.
func (t *Train) VisiblePlanets() int {
	n := 0
	for i := range t.Planets {
		if t.Planets[i].Visible {
			n++
		}
	}
	return n
}

// Adopt carries the planet arena, gear handles and last solved triple of a
// previous revision of the same train into t. Used when a train is rebuilt
// from a reloaded file so planet identities survive the reload. The arena is
// copied, so recomputing t never moves the planets of prev.
func (t *Train) Adopt(prev *Train) {
	if prev == nil {
		return
	}
	t.Planets = append([]PlanetInstance(nil), prev.Planets...)
	t.SunGear = prev.SunGear
	t.RingGear = prev.RingGear
	if prev.lastValid != nil {
		tr := *prev.lastValid
		t.lastValid = &tr
	}
}

// Validate rejects parameters outside their ranges before any computation.
func (t *Train) Validate() error {
	finite := []struct {
		name string
		v    float64
	}{
		{"module", t.Module},
		{"pressure angle", t.PressureAngle},
		{"helix angle", t.HelixAngle},
		{"height", t.Height},
		{"clearance", t.Clearance},
		{"backlash", t.Backlash},
		{"sun angle", t.SunAngle},
		{"ring angle", t.RingAngle},
	}
	for _, f := range finite {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParameter, f.name)
		}
	}

	switch {
	case t.Module <= 0:
		return fmt.Errorf("%w: module must be positive, got %g", ErrInvalidParameter, t.Module)
	case t.PlanetCount < 0:
		return fmt.Errorf("%w: planet count must not be negative, got %d", ErrInvalidParameter, t.PlanetCount)
	case t.Height < 0:
		return fmt.Errorf("%w: height must not be negative, got %g", ErrInvalidParameter, t.Height)
	case t.Clearance < 0:
		return fmt.Errorf("%w: clearance must not be negative, got %g", ErrInvalidParameter, t.Clearance)
	case t.Backlash < 0:
		return fmt.Errorf("%w: backlash must not be negative, got %g", ErrInvalidParameter, t.Backlash)
	case !t.SolveFor.valid():
		return fmt.Errorf("%w: unknown solve-for role %s", ErrInvalidParameter, t.SolveFor)
	}

	for _, r := range Roles {
		if r == t.SolveFor {
			continue
		}
		if n := t.Teeth(r); n < 0 {
			return fmt.Errorf("%w: %s teeth must not be negative, got %d", ErrInvalidParameter, r, n)
		}
	}
	return nil
}
