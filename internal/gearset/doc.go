// Package gearset computes the layout of a planetary (epicyclic) gear train.
//
// A train is one sun, one internal ring and a pool of planets sharing a
// common module. The package provides:
//
//   - [Train]: the parameters of one gear train and its planet arena
//   - [Solve]: fills in the dependent tooth count from ring = sun + 2*planet
//   - [Place]: positions every active planet at a valid meshing phase
//   - [Scheduler]: runs Solve then Place and publishes a [Layout]
//
// # Example
//
//	t := &gearset.Train{Module: 1, SolveFor: gearset.RoleRing, SunTeeth: 17, PlanetTeeth: 18, PlanetCount: 3}
//	s := gearset.NewScheduler(gearset.WithFactory(geometry.OutlineFactory{}))
//	layout, err := s.Execute(t)
//
// # Planet identity
//
// Planets live in an index-addressed arena. Growing PlanetCount appends new
// instances, shrinking it only hides the tail, so instance i always stands
// for logical slot i.
//
// # Thread Safety
//
// A Train and its arena are NOT safe for concurrent recomputes. Callers must
// serialize Execute calls per train.
package gearset
