package gearset

// GearRequest carries everything a gear-profile generator needs for one gear.
type GearRequest struct {
	Role          Role
	Teeth         int
	Module        float64
	PressureAngle float64
	HelixAngle    float64
	DoubleHelix   bool
	Height        float64
	Clearance     float64
	Backlash      float64
}

// GearBody is an opaque gear body returned by a GearFactory.
type GearBody interface {
	Request() GearRequest
}

// GearFactory generates gear bodies. Implementations are external to the
// layout engine; see package geometry for the built-in outline factory.
type GearFactory interface {
	Generate(req GearRequest) (GearBody, error)
}

// FactoryFunc adapts a function to GearFactory.
type FactoryFunc func(req GearRequest) (GearBody, error)

func (f FactoryFunc) Generate(req GearRequest) (GearBody, error) {
	return f(req)
}

// GearHandle pairs a generated body with the request it was built from.
type GearHandle struct {
	Body    GearBody
	Request GearRequest
}

// GearRequest builds the generator request for role r. The sun helix is
// negated so it meshes against the planets of a fixed-axis train.
func (t *Train) GearRequest(r Role) GearRequest {
	helix := t.HelixAngle
	if r == RoleSun {
		helix = -helix
	}
	return GearRequest{
		Role:          r,
		Teeth:         t.Teeth(r),
		Module:        t.Module,
		PressureAngle: t.PressureAngle,
		HelixAngle:    helix,
		DoubleHelix:   t.DoubleHelix,
		Height:        t.Height,
		Clearance:     t.Clearance,
		Backlash:      t.Backlash,
	}
}
