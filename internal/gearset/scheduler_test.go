package gearset

import (
	"errors"
	"math"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"
)

type fakeBody struct {
	Req GearRequest
}

func (b fakeBody) Request() GearRequest { return b.Req }

type countingFactory struct {
	calls map[Role]int
	last  map[Role]GearRequest
	fail  error
}

func newCountingFactory() *countingFactory {
	return &countingFactory{calls: map[Role]int{}, last: map[Role]GearRequest{}}
}

func (f *countingFactory) Generate(req GearRequest) (GearBody, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.calls[req.Role]++
	f.last[req.Role] = req
	return fakeBody{Req: req}, nil
}

var _ = Describe("Scheduler", func() {
	var (
		sched   *Scheduler
		factory *countingFactory
		train   *Train
	)

	BeforeEach(func() {
		factory = newCountingFactory()
		sched = NewScheduler(WithFactory(factory))
		train = &Train{
			Module:        1,
			PressureAngle: 20,
			HelixAngle:    15,
			Height:        5,
			Clearance:     0.25,
			SolveFor:      RoleRing,
			SunTeeth:      17,
			PlanetTeeth:   18,
			RingTeeth:     1,
			PlanetCount:   3,
		}
	})

	It("solves before placing", func() {
		layout, err := sched.Execute(train)
		Expect(err).NotTo(HaveOccurred())
		Expect(train.RingTeeth).To(Equal(53))
		Expect(layout.Triple).To(Equal(Triple{Sun: 17, Planet: 18, Ring: 53}))
		Expect(layout.Diagnostics).To(BeEmpty())
		Expect(layout.VisiblePlanets()).To(HaveLen(3))
		Expect(train.RingPitchDiameter).To(BeNumerically("==", 53))
	})

	It("publishes sun and ring rotations at the origin", func() {
		train.SunAngle = 30
		train.RingAngle = -12
		layout, err := sched.Execute(train)
		Expect(err).NotTo(HaveOccurred())
		Expect(layout.Sun.Rotation).To(Equal(30.0))
		Expect(layout.Ring.Rotation).To(Equal(-12.0))
		Expect(layout.Sun.Position).To(Equal(r2.Vec{}))
		Expect(layout.Ring.Position).To(Equal(r2.Vec{}))
	})

	Context("when the solve is infeasible", func() {
		BeforeEach(func() {
			train.SolveFor = RolePlanet
			train.RingTeeth = 53
			train.PlanetTeeth = 1
		})

		It("keeps the previous triple and still places", func() {
			_, err := sched.Execute(train)
			Expect(err).NotTo(HaveOccurred())
			Expect(train.PlanetTeeth).To(Equal(18))

			train.RingTeeth = 54
			layout, err := sched.Execute(train)
			Expect(err).NotTo(HaveOccurred())
			Expect(train.PlanetTeeth).To(Equal(18))
			Expect(layout.Diagnostics).To(HaveLen(1))
			Expect(errors.Is(layout.Diagnostics[0].Err, ErrInfeasibleConstraint)).To(BeTrue())
			Expect(layout.Triple).To(Equal(Triple{Sun: 17, Planet: 18, Ring: 53}))

			for _, p := range layout.VisiblePlanets() {
				Expect(r2.Norm(p.Position)).To(BeNumerically("~", 17.5, 1e-9))
			}
		})

		It("does not fall back to a triple that failed to place", func() {
			_, err := sched.Execute(train)
			Expect(err).NotTo(HaveOccurred())
			Expect(train.Triple()).To(Equal(Triple{Sun: 17, Planet: 18, Ring: 53}))

			train.SolveFor = RoleRing
			train.SunTeeth = 0
			_, err = sched.Execute(train)
			Expect(errors.Is(err, ErrDegenerateGearTrain)).To(BeTrue())
			Expect(train.RingTeeth).To(Equal(36))

			train.SolveFor = RolePlanet
			train.SunTeeth = 17
			train.RingTeeth = 54
			layout, err := sched.Execute(train)
			Expect(err).NotTo(HaveOccurred())
			Expect(layout.Diagnostics).To(HaveLen(1))
			Expect(layout.Triple).To(Equal(Triple{Sun: 17, Planet: 18, Ring: 53}))
			Expect(layout.VisiblePlanets()).To(HaveLen(3))
		})

		It("places against the current counts when nothing solved yet", func() {
			train.RingTeeth = 54
			train.PlanetTeeth = 18
			layout, err := sched.Execute(train)
			Expect(err).NotTo(HaveOccurred())
			Expect(layout.Diagnostics).To(HaveLen(1))
			Expect(layout.Triple).To(Equal(Triple{Sun: 17, Planet: 18, Ring: 54}))
		})
	})

	It("rejects invalid parameters without mutating the train", func() {
		train.Module = -1
		before := train.Triple()
		_, err := sched.Execute(train)
		Expect(errors.Is(err, ErrInvalidParameter)).To(BeTrue())
		Expect(train.Triple()).To(Equal(before))
		Expect(train.Planets).To(BeEmpty())
	})

	It("aborts on a degenerate train and leaves poses untouched", func() {
		_, err := sched.Execute(train)
		Expect(err).NotTo(HaveOccurred())
		before := append([]PlanetInstance(nil), train.Planets...)

		train.PlanetTeeth = 0
		train.PlanetCount = 5
		layout, err := sched.Execute(train)
		Expect(errors.Is(err, ErrDegenerateGearTrain)).To(BeTrue())
		Expect(layout).To(BeNil())
		Expect(cmp.Diff(before, train.Planets)).To(BeEmpty())
	})

	Describe("planet arena", func() {
		visible := func(l *Layout) int { return len(l.VisiblePlanets()) }

		It("shows k planets and hides the rest of the pool", func() {
			counts := []int{4, 2, 6, 0, 3}
			maxSeen := 0
			for _, k := range counts {
				train.PlanetCount = k
				layout, err := sched.Execute(train)
				Expect(err).NotTo(HaveOccurred())
				if k > maxSeen {
					maxSeen = k
				}
				Expect(visible(layout)).To(Equal(k))
				Expect(layout.Planets).To(HaveLen(maxSeen))
				Expect(len(layout.Planets) - visible(layout)).To(Equal(maxSeen - k))
			}
		})

		It("reuses the same identities across shrink and grow", func() {
			train.PlanetCount = 3
			_, err := sched.Execute(train)
			Expect(err).NotTo(HaveOccurred())

			train.PlanetCount = 5
			_, err = sched.Execute(train)
			Expect(err).NotTo(HaveOccurred())
			first := make([]*GearHandle, 5)
			for i := range train.Planets {
				first[i] = train.Planets[i].Gear
			}

			train.PlanetCount = 3
			_, err = sched.Execute(train)
			Expect(err).NotTo(HaveOccurred())
			Expect(train.Planets[3].Visible).To(BeFalse())
			Expect(train.Planets[4].Visible).To(BeFalse())

			train.PlanetCount = 5
			layout, err := sched.Execute(train)
			Expect(err).NotTo(HaveOccurred())
			Expect(train.Planets).To(HaveLen(5))
			for i := range train.Planets {
				Expect(train.Planets[i].Index).To(Equal(i))
				Expect(train.Planets[i].Gear).To(BeIdenticalTo(first[i]))
				Expect(layout.Planets[i].Visible).To(BeTrue())
			}
			Expect(factory.calls[RolePlanet]).To(Equal(5))
		})
	})

	Describe("gear generation", func() {
		It("negates the sun helix angle", func() {
			_, err := sched.Execute(train)
			Expect(err).NotTo(HaveOccurred())
			Expect(factory.last[RoleSun].HelixAngle).To(Equal(-15.0))
			Expect(factory.last[RoleRing].HelixAngle).To(Equal(15.0))
			Expect(factory.last[RolePlanet].HelixAngle).To(Equal(15.0))
			Expect(factory.last[RoleRing].Teeth).To(Equal(53))
		})

		It("generates each gear once until its request changes", func() {
			for i := 0; i < 3; i++ {
				train.SunAngle = float64(i) * 10
				_, err := sched.Execute(train)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(factory.calls[RoleSun]).To(Equal(1))
			Expect(factory.calls[RoleRing]).To(Equal(1))
			Expect(factory.calls[RolePlanet]).To(Equal(3))

			train.Module = 2
			_, err := sched.Execute(train)
			Expect(err).NotTo(HaveOccurred())
			Expect(factory.calls[RoleSun]).To(Equal(2))
			Expect(factory.calls[RoleRing]).To(Equal(2))
			Expect(factory.calls[RolePlanet]).To(Equal(6))
		})

		It("reports factory failures", func() {
			factory.fail = errors.New("kernel unavailable")
			_, err := sched.Execute(train)
			Expect(err).To(MatchError(ContainSubstring("kernel unavailable")))
		})
	})

	It("carries identities through Adopt", func() {
		_, err := sched.Execute(train)
		Expect(err).NotTo(HaveOccurred())

		reloaded := *train
		reloaded.Planets = nil
		reloaded.SunGear = nil
		reloaded.RingGear = nil
		reloaded.Adopt(train)
		Expect(reloaded.Planets).To(HaveLen(3))
		Expect(reloaded.SunGear).To(BeIdenticalTo(train.SunGear))
		Expect(reloaded.Planets[0].Gear).To(BeIdenticalTo(train.Planets[0].Gear))
	})

	It("leaves the adopted revision's poses alone when the new one fails", func() {
		_, err := sched.Execute(train)
		Expect(err).NotTo(HaveOccurred())
		before := append([]PlanetInstance(nil), train.Planets...)

		reloaded := *train
		reloaded.Planets = nil
		reloaded.Adopt(train)
		reloaded.SunAngle = 40
		reloaded.Module = 3
		factory.fail = errors.New("kernel unavailable")

		_, err = sched.Execute(&reloaded)
		Expect(err).To(HaveOccurred())
		Expect(reloaded.Planets[0].Position).NotTo(Equal(before[0].Position))
		Expect(cmp.Diff(before, train.Planets)).To(BeEmpty())
	})

	It("keeps the first planet on the reference phase", func() {
		train.PlanetCount = 1
		layout, err := sched.Execute(train)
		Expect(err).NotTo(HaveOccurred())
		want := layout.Phase.Theta * math.Pi / 180
		p := layout.Planets[0].Position
		Expect(math.Atan2(p.Y, p.X)).To(BeNumerically("~", want, 1e-9))
	})
})
