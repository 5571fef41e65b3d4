// Package search enumerates tooth count combinations for a planetary train
// and ranks them by how evenly the planets end up spaced.
package search

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/san-kum/gearset/internal/gearset"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const evenTolerance = 1e-6

type Options struct {
	RingMin     int
	RingMax     int
	PlanetCount int
	MinTeeth    int  // smallest sun or planet tooth count considered
	EvenOnly    bool // keep only evenly spaced candidates
	Workers     int
}

func DefaultOptions() Options {
	return Options{RingMin: 40, RingMax: 80, PlanetCount: 3, MinTeeth: 9}
}

// Candidate is one feasible tooth count combination.
type Candidate struct {
	Triple gearset.Triple
	Slots  []int

	// Deviations of each planet from ideal 360/N spacing, degrees.
	MaxDeviation  float64
	MeanDeviation float64
}

func (c Candidate) Even() bool {
	return c.MaxDeviation < evenTolerance
}

func (o Options) validate() error {
	switch {
	case o.PlanetCount < 1:
		return fmt.Errorf("%w: planet count must be at least 1", gearset.ErrInvalidParameter)
	case o.MinTeeth < 1:
		return fmt.Errorf("%w: minimum teeth must be at least 1", gearset.ErrInvalidParameter)
	case o.RingMin > o.RingMax:
		return fmt.Errorf("%w: ring range %d..%d is empty", gearset.ErrInvalidParameter, o.RingMin, o.RingMax)
	}
	return nil
}

// Run evaluates every ring tooth count in range concurrently and returns
// the candidates ordered by maximum spacing deviation, then ring size.
func Run(ctx context.Context, opts Options) ([]Candidate, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		mu      sync.Mutex
		results []Candidate
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for ring := opts.RingMin; ring <= opts.RingMax; ring++ {
		ring := ring
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			found, err := forRing(ring, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if math.Abs(a.MaxDeviation-b.MaxDeviation) > evenTolerance {
			return a.MaxDeviation < b.MaxDeviation
		}
		if a.Triple.Ring != b.Triple.Ring {
			return a.Triple.Ring < b.Triple.Ring
		}
		return a.Triple.Sun < b.Triple.Sun
	})
	return results, nil
}

func forRing(ring int, opts Options) ([]Candidate, error) {
	var out []Candidate
	for planet := opts.MinTeeth; ring-2*planet >= opts.MinTeeth; planet++ {
		c, err := Evaluate(gearset.Triple{Sun: ring - 2*planet, Planet: planet, Ring: ring}, opts.PlanetCount)
		if err != nil {
			return nil, err
		}
		if opts.EvenOnly && !c.Even() {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Evaluate places count planets on the given triple and measures their
// spacing.
func Evaluate(tr gearset.Triple, count int) (Candidate, error) {
	t := &gearset.Train{
		Module:      1,
		SolveFor:    gearset.RoleRing,
		SunTeeth:    tr.Sun,
		PlanetTeeth: tr.Planet,
		RingTeeth:   tr.Ring,
		PlanetCount: count,
	}
	if err := gearset.Place(t); err != nil {
		return Candidate{}, err
	}

	c := Candidate{Triple: tr, Slots: make([]int, count)}
	devs := make([]float64, count)
	first := t.Planets[0].Angle
	for i := 0; i < count; i++ {
		c.Slots[i] = t.Planets[i].Slot
		ideal := first + 360*float64(i)/float64(count)
		devs[i] = math.Abs(t.Planets[i].Angle - ideal)
	}
	c.MaxDeviation = floats.Max(devs)
	c.MeanDeviation = stat.Mean(devs, nil)
	return c, nil
}
