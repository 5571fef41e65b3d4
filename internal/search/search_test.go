package search

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/gearset/internal/gearset"
)

func TestEvaluate_Even(t *testing.T) {
	c, err := Evaluate(gearset.Triple{Sun: 17, Planet: 18, Ring: 53}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Even() {
		t.Errorf("17/18/53 with 5 planets should be even, max deviation %f", c.MaxDeviation)
	}
	if len(c.Slots) != 5 || c.Slots[4] != 28 {
		t.Errorf("unexpected slots %v", c.Slots)
	}
}

func TestEvaluate_Uneven(t *testing.T) {
	c, err := Evaluate(gearset.Triple{Sun: 17, Planet: 18, Ring: 53}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if c.Even() {
		t.Error("17/18/53 with 3 planets cannot be evenly spaced")
	}
	if c.MeanDeviation > c.MaxDeviation || c.MeanDeviation <= 0 {
		t.Errorf("mean %f max %f", c.MeanDeviation, c.MaxDeviation)
	}
}

func TestEvaluate_Degenerate(t *testing.T) {
	_, err := Evaluate(gearset.Triple{Sun: 10, Planet: 0, Ring: 10}, 3)
	if !errors.Is(err, gearset.ErrDegenerateGearTrain) {
		t.Errorf("expected degenerate error, got %v", err)
	}
}

func TestRun(t *testing.T) {
	opts := Options{RingMin: 50, RingMax: 56, PlanetCount: 3, MinTeeth: 12, Workers: 2}
	got, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 {
		t.Fatal("expected candidates")
	}
	for i, c := range got {
		if !c.Triple.Consistent() {
			t.Errorf("candidate %+v violates the epicyclic relation", c.Triple)
		}
		if c.Triple.Sun < 12 || c.Triple.Planet < 12 {
			t.Errorf("candidate %+v below minimum teeth", c.Triple)
		}
		if i > 0 && got[i-1].MaxDeviation > c.MaxDeviation+evenTolerance {
			t.Errorf("results not sorted at %d", i)
		}
	}
}

func TestRun_EvenOnly(t *testing.T) {
	opts := Options{RingMin: 40, RingMax: 70, PlanetCount: 3, MinTeeth: 9, EvenOnly: true}
	got, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 {
		t.Fatal("expected evenly spaced candidates")
	}
	for _, c := range got {
		if !c.Even() {
			t.Errorf("%+v is not even", c.Triple)
		}
		// even spacing needs (sun + ring) divisible by the planet count
		if (c.Triple.Sun+c.Triple.Ring)%3 != 0 {
			t.Errorf("%+v: sun+ring not divisible by 3", c.Triple)
		}
	}
}

func TestRun_Invalid(t *testing.T) {
	for _, opts := range []Options{
		{RingMin: 10, RingMax: 5, PlanetCount: 3, MinTeeth: 5},
		{RingMin: 40, RingMax: 50, PlanetCount: 0, MinTeeth: 5},
	} {
		if _, err := Run(context.Background(), opts); !errors.Is(err, gearset.ErrInvalidParameter) {
			t.Errorf("Run(%+v) = %v, want ErrInvalidParameter", opts, err)
		}
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, DefaultOptions()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
