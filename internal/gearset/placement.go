package gearset

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Phase holds the meshing quantities shared by every planet of a placement.
type Phase struct {
	CenterDistance    float64
	RingPlanetRatio   float64
	Theta0            float64 // base mesh increment, degrees
	TransmissionRatio float64
	Theta             float64 // phase of the first planet, degrees
	Step              float64 // valid slots per planet

	// parity is the theta0 multiplier: 2 for an odd planet tooth count, 1
	// for an even one.
	parity int
}

// MeshPhase computes the meshing phase of t. It fails with
// ErrDegenerateGearTrain when a tooth count would divide by zero.
func MeshPhase(t *Train) (Phase, error) {
	if err := checkDegenerate(t); err != nil {
		return Phase{}, err
	}

	sun := float64(t.SunTeeth)
	planet := float64(t.PlanetTeeth)
	ring := float64(t.RingTeeth)

	p := Phase{parity: 2 - (t.PlanetTeeth+1)%2}
	p.CenterDistance = (PitchDiameter(t.Module, t.PlanetTeeth) + PitchDiameter(t.Module, t.SunTeeth)) / 2
	p.RingPlanetRatio = ring / planet
	p.Theta0 = 180 / (ring + sun) * float64(p.parity)
	p.TransmissionRatio = ring/sun + 1
	p.Theta = p.Theta0 + (t.SunAngle-t.RingAngle)/p.TransmissionRatio
	if t.PlanetCount > 0 {
		p.Step = 180 / (2 * p.Theta0 * float64(t.PlanetCount))
	}
	return p, nil
}

// Slot returns the mesh slot of logical planet i, floor(Step*i). It is
// evaluated on the integer form (ring+sun)*i / (2*parity*count) of the same
// quotient so exact multiples never round down.
func (p Phase) Slot(t *Train, i int) int {
	if t.PlanetCount <= 0 {
		return 0
	}
	return (t.RingTeeth + t.SunTeeth) * i / (2 * p.parity * t.PlanetCount)
}

// SlotAngle returns the orbit angle in degrees of a planet in the given slot.
func (p Phase) SlotAngle(ringAngle float64, slot int) float64 {
	return p.Theta + ringAngle + 4*p.Theta0*float64(slot)
}

// PlanetRotation returns the spin of every planet in degrees.
func (p Phase) PlanetRotation(ringAngle float64) float64 {
	return p.Theta*(1-p.RingPlanetRatio) + ringAngle
}

func checkDegenerate(t *Train) error {
	switch {
	case t.PlanetTeeth <= 0:
		return fmt.Errorf("%w: planet teeth must be positive, got %d", ErrDegenerateGearTrain, t.PlanetTeeth)
	case t.SunTeeth <= 0:
		return fmt.Errorf("%w: sun teeth must be positive, got %d", ErrDegenerateGearTrain, t.SunTeeth)
	case t.RingTeeth+t.SunTeeth <= 0:
		return fmt.Errorf("%w: ring + sun teeth must be positive, got %d", ErrDegenerateGearTrain, t.RingTeeth+t.SunTeeth)
	}
	return nil
}

// Place positions the first PlanetCount planets of t and hides the rest.
//
// The arena only grows: missing instances are appended hidden and then shown,
// instances past PlanetCount are hidden and keep their last pose. On error
// nothing in t is modified.
func Place(t *Train) error {
	ph, err := MeshPhase(t)
	if err != nil {
		return err
	}

	t.RefreshPitch()
	for len(t.Planets) < t.PlanetCount {
		t.Planets = append(t.Planets, PlanetInstance{Index: len(t.Planets)})
	}

	rotation := ph.PlanetRotation(t.RingAngle)
	for i := range t.Planets {
		planet := &t.Planets[i]
		if i >= t.PlanetCount {
			planet.Visible = false
			continue
		}

		slot := ph.Slot(t, i)
		angle := ph.SlotAngle(t.RingAngle, slot)
		rad := angle * math.Pi / 180

		planet.Visible = true
		planet.Slot = slot
		planet.Angle = angle
		planet.Position = r2.Vec{
			X: ph.CenterDistance * math.Cos(rad),
			Y: ph.CenterDistance * math.Sin(rad),
		}
		planet.Rotation = rotation
	}
	return nil
}
