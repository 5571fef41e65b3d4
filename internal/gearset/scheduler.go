package gearset

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
)

// Pose is the placement of one gear as published to the host.
type Pose struct {
	Role     Role
	Index    int
	Position r2.Vec
	Rotation float64
	Visible  bool
}

// Diagnostic is a recoverable problem surfaced to the user.
type Diagnostic struct {
	Err     error
	Message string
}

// Layout is the result of one recompute.
type Layout struct {
	Train *Train

	// Triple is the tooth count combination placement ran against. It
	// differs from the train fields only after an infeasible solve.
	Triple Triple
	Phase  Phase

	Sun     Pose
	Ring    Pose
	Planets []Pose

	Diagnostics []Diagnostic
}

// VisiblePlanets returns the poses of the shown planets in index order.
func (l *Layout) VisiblePlanets() []Pose {
	out := make([]Pose, 0, len(l.Planets))
	for _, p := range l.Planets {
		if p.Visible {
			out = append(out, p)
		}
	}
	return out
}

// Scheduler runs the solver and the placement engine in order.
type Scheduler struct {
	factory GearFactory
	logger  *zap.Logger
}

type Option func(*Scheduler)

// WithFactory makes Execute generate gear bodies through f.
func WithFactory(f GearFactory) Option {
	return func(s *Scheduler) { s.factory = f }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute recomputes t after a parameter change.
//
// Invalid parameters are rejected before anything is mutated. An infeasible
// solve is reported as a diagnostic and placement runs against the last
// triple that solved. A degenerate train aborts the recompute and leaves the
// planet poses untouched.
func (s *Scheduler) Execute(t *Train) (*Layout, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	var diags []Diagnostic
	placed := t
	if err := Solve(t); err != nil {
		var ce *ConstraintError
		if !errors.As(err, &ce) {
			return nil, err
		}
		diags = append(diags, Diagnostic{Err: err, Message: ce.Error()})
		s.logger.Warn("tooth counts not solvable, keeping previous triple",
			zap.Stringer("solve_for", ce.SolveFor),
			zap.Int("sun", ce.Sun),
			zap.Int("planet", ce.Planet),
			zap.Int("ring", ce.Ring))

		if t.lastValid != nil {
			view := *t
			view.SunTeeth = t.lastValid.Sun
			view.PlanetTeeth = t.lastValid.Planet
			view.RingTeeth = t.lastValid.Ring
			placed = &view
		}
	}

	t.RefreshPitch()
	if err := Place(placed); err != nil {
		s.logger.Error("placement failed", zap.Error(err))
		return nil, err
	}
	if placed != t {
		t.Planets = placed.Planets
	} else if len(diags) == 0 {
		// only a triple that solved and placed is a fallback
		tr := t.Triple()
		t.lastValid = &tr
	}

	if err := s.generate(placed); err != nil {
		return nil, err
	}
	if placed != t {
		t.SunGear = placed.SunGear
		t.RingGear = placed.RingGear
	}

	ph, _ := MeshPhase(placed)
	layout := &Layout{
		Train:       t,
		Triple:      placed.Triple(),
		Phase:       ph,
		Sun:         Pose{Role: RoleSun, Rotation: t.SunAngle, Visible: true},
		Ring:        Pose{Role: RoleRing, Rotation: t.RingAngle, Visible: true},
		Planets:     make([]Pose, len(t.Planets)),
		Diagnostics: diags,
	}
	for i, p := range t.Planets {
		layout.Planets[i] = Pose{
			Role:     RolePlanet,
			Index:    p.Index,
			Position: p.Position,
			Rotation: p.Rotation,
			Visible:  p.Visible,
		}
	}

	s.logger.Debug("gear train recomputed",
		zap.Int("sun", layout.Triple.Sun),
		zap.Int("planet", layout.Triple.Planet),
		zap.Int("ring", layout.Triple.Ring),
		zap.Int("planets", t.PlanetCount),
		zap.Int("pool", len(t.Planets)))
	return layout, nil
}

// generate asks the factory for every gear whose request changed since its
// body was built. Hidden planets keep their bodies.
func (s *Scheduler) generate(t *Train) error {
	if s.factory == nil {
		return nil
	}
	if err := s.ensure(&t.SunGear, t.GearRequest(RoleSun)); err != nil {
		return err
	}
	if err := s.ensure(&t.RingGear, t.GearRequest(RoleRing)); err != nil {
		return err
	}
	planetReq := t.GearRequest(RolePlanet)
	for i := range t.Planets {
		if !t.Planets[i].Visible {
			continue
		}
		if err := s.ensure(&t.Planets[i].Gear, planetReq); err != nil {
			return fmt.Errorf("planet %d: %w", i, err)
		}
	}
	return nil
}

func (s *Scheduler) ensure(h **GearHandle, req GearRequest) error {
	if *h != nil && (*h).Request == req {
		return nil
	}
	body, err := s.factory.Generate(req)
	if err != nil {
		return fmt.Errorf("generate %s gear: %w", req.Role, err)
	}
	*h = &GearHandle{Body: body, Request: req}
	s.logger.Debug("gear body generated", zap.Stringer("role", req.Role), zap.Int("teeth", req.Teeth))
	return nil
}
