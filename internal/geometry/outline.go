// Package geometry provides a lightweight gear body factory for gear train
// layouts. Bodies describe the pitch, tip and root circles of a spur or
// helical gear and a trapezoidal tooth outline for rendering; they are not
// solid models.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/gearset/internal/gearset"
	"gonum.org/v1/gonum/spatial/r2"
)

var ErrInvalidRequest = errors.New("geometry: invalid gear request")

// Outline is the 2D description of one gear.
type Outline struct {
	req gearset.GearRequest

	PitchRadius float64
	TipRadius   float64
	RootRadius  float64
	BaseRadius  float64
	Internal    bool
}

// OutlineFactory builds Outline bodies. Ring gears come out internal.
type OutlineFactory struct{}

func (OutlineFactory) Generate(req gearset.GearRequest) (gearset.GearBody, error) {
	return NewOutline(req)
}

// NewOutline derives the circles of a gear from its request. The addendum is
// one module and the dedendum (1+clearance) modules; an internal gear has its
// tips inside the pitch circle.
func NewOutline(req gearset.GearRequest) (*Outline, error) {
	if req.Teeth <= 0 {
		return nil, fmt.Errorf("%w: %s teeth must be positive, got %d", ErrInvalidRequest, req.Role, req.Teeth)
	}
	if req.Module <= 0 {
		return nil, fmt.Errorf("%w: module must be positive, got %g", ErrInvalidRequest, req.Module)
	}

	m := req.Module
	o := &Outline{
		req:         req,
		PitchRadius: m * float64(req.Teeth) / 2,
		Internal:    req.Role == gearset.RoleRing,
	}
	o.BaseRadius = o.PitchRadius * math.Cos(req.PressureAngle*math.Pi/180)

	addendum := m
	dedendum := (1 + req.Clearance) * m
	if o.Internal {
		o.TipRadius = o.PitchRadius - addendum
		o.RootRadius = o.PitchRadius + dedendum
	} else {
		o.TipRadius = o.PitchRadius + addendum
		o.RootRadius = math.Max(o.PitchRadius-dedendum, 0)
	}
	return o, nil
}

func (o *Outline) Request() gearset.GearRequest { return o.req }

// Twist returns the rotation in degrees of the top face relative to the
// bottom face of a helical gear. Double helical gears twist to mid height and
// back, so their top face is not rotated.
func (o *Outline) Twist() float64 {
	if o.req.HelixAngle == 0 || o.req.DoubleHelix || o.PitchRadius == 0 {
		return 0
	}
	return o.req.Height * math.Tan(o.req.HelixAngle*math.Pi/180) / o.PitchRadius * 180 / math.Pi
}

// Profile returns a closed trapezoidal tooth outline centred on the origin
// and rotated by rotation degrees. Each tooth contributes four points.
// Backlash narrows the tip land.
func (o *Outline) Profile(rotation float64) []r2.Vec {
	n := o.req.Teeth
	pitch := 2 * math.Pi / float64(n)
	rot := rotation * math.Pi / 180

	// tooth occupies half the pitch at the pitch circle, the tip land a quarter
	tipHalf := pitch / 8
	if o.PitchRadius > 0 {
		tipHalf -= o.req.Backlash / (4 * o.PitchRadius)
	}
	tipHalf = math.Max(tipHalf, 0)
	rootHalf := pitch / 4

	points := make([]r2.Vec, 0, 4*n)
	for i := 0; i < n; i++ {
		c := rot + float64(i)*pitch
		points = append(points,
			polar(o.RootRadius, c-rootHalf),
			polar(o.TipRadius, c-tipHalf),
			polar(o.TipRadius, c+tipHalf),
			polar(o.RootRadius, c+rootHalf),
		)
	}
	return points
}

func polar(r, a float64) r2.Vec {
	return r2.Vec{X: r * math.Cos(a), Y: r * math.Sin(a)}
}

// Set holds the outlines of the three gears of a layout.
type Set struct {
	Sun, Planet, Ring *Outline
}

// ForLayout builds outlines for the triple a layout was placed with.
func ForLayout(layout *gearset.Layout) (Set, error) {
	placed := *layout.Train
	placed.SunTeeth = layout.Triple.Sun
	placed.PlanetTeeth = layout.Triple.Planet
	placed.RingTeeth = layout.Triple.Ring

	var (
		set Set
		err error
	)
	if set.Sun, err = NewOutline(placed.GearRequest(gearset.RoleSun)); err != nil {
		return Set{}, err
	}
	if set.Planet, err = NewOutline(placed.GearRequest(gearset.RolePlanet)); err != nil {
		return Set{}, err
	}
	if set.Ring, err = NewOutline(placed.GearRequest(gearset.RoleRing)); err != nil {
		return Set{}, err
	}
	return set, nil
}
