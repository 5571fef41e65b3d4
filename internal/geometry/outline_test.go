package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/gearset/internal/gearset"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestNewOutline_External(t *testing.T) {
	o, err := NewOutline(gearset.GearRequest{Role: gearset.RoleSun, Teeth: 17, Module: 2, Clearance: 0.25, PressureAngle: 20})
	if err != nil {
		t.Fatal(err)
	}
	if o.PitchRadius != 17 {
		t.Errorf("pitch radius %f, want 17", o.PitchRadius)
	}
	if o.TipRadius != 19 {
		t.Errorf("tip radius %f, want 19", o.TipRadius)
	}
	if o.RootRadius != 14.5 {
		t.Errorf("root radius %f, want 14.5", o.RootRadius)
	}
	if want := 17 * math.Cos(20*math.Pi/180); math.Abs(o.BaseRadius-want) > 1e-12 {
		t.Errorf("base radius %f, want %f", o.BaseRadius, want)
	}
	if o.Internal {
		t.Error("sun should not be internal")
	}
}

func TestNewOutline_Ring(t *testing.T) {
	o, err := NewOutline(gearset.GearRequest{Role: gearset.RoleRing, Teeth: 53, Module: 1, Clearance: 0.25})
	if err != nil {
		t.Fatal(err)
	}
	if !o.Internal {
		t.Fatal("ring should be internal")
	}
	if o.TipRadius >= o.PitchRadius || o.RootRadius <= o.PitchRadius {
		t.Errorf("internal gear radii: tip %f pitch %f root %f", o.TipRadius, o.PitchRadius, o.RootRadius)
	}
}

func TestNewOutline_Invalid(t *testing.T) {
	tests := []gearset.GearRequest{
		{Role: gearset.RolePlanet, Teeth: 0, Module: 1},
		{Role: gearset.RolePlanet, Teeth: 10, Module: 0},
	}
	for _, req := range tests {
		if _, err := NewOutline(req); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("NewOutline(%+v) = %v, want ErrInvalidRequest", req, err)
		}
	}
}

func TestFactory_ImplementsGearFactory(t *testing.T) {
	var f gearset.GearFactory = OutlineFactory{}
	req := gearset.GearRequest{Role: gearset.RolePlanet, Teeth: 18, Module: 1}
	body, err := f.Generate(req)
	if err != nil {
		t.Fatal(err)
	}
	if body.Request() != req {
		t.Errorf("body request %+v, want %+v", body.Request(), req)
	}
}

func TestProfile(t *testing.T) {
	o, _ := NewOutline(gearset.GearRequest{Role: gearset.RolePlanet, Teeth: 12, Module: 1, Clearance: 0.25})
	pts := o.Profile(0)
	if len(pts) != 48 {
		t.Fatalf("expected 48 points, got %d", len(pts))
	}
	for i, p := range pts {
		r := r2.Norm(p)
		want := o.RootRadius
		if i%4 == 1 || i%4 == 2 {
			want = o.TipRadius
		}
		if math.Abs(r-want) > 1e-9 {
			t.Errorf("point %d radius %f, want %f", i, r, want)
		}
	}

	rotated := o.Profile(30)
	if math.Abs(math.Atan2(rotated[1].Y, rotated[1].X)-math.Atan2(pts[1].Y, pts[1].X)-math.Pi/6) > 1e-9 {
		t.Error("profile rotation not applied")
	}
}

func TestTwist(t *testing.T) {
	spur, _ := NewOutline(gearset.GearRequest{Role: gearset.RoleSun, Teeth: 20, Module: 1, Height: 5})
	if spur.Twist() != 0 {
		t.Errorf("spur gear twist %f", spur.Twist())
	}

	helical, _ := NewOutline(gearset.GearRequest{Role: gearset.RoleSun, Teeth: 20, Module: 1, Height: 5, HelixAngle: 45})
	if want := 5.0 / 10 * 180 / math.Pi; math.Abs(helical.Twist()-want) > 1e-9 {
		t.Errorf("helical twist %f, want %f", helical.Twist(), want)
	}

	double, _ := NewOutline(gearset.GearRequest{Role: gearset.RoleSun, Teeth: 20, Module: 1, Height: 5, HelixAngle: 45, DoubleHelix: true})
	if double.Twist() != 0 {
		t.Errorf("double helix twist %f", double.Twist())
	}
}
