package config

import "sort"

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"three": {
		Module: 1, PressureAngle: 20, Height: 5, Clearance: 0.25, SolveFor: "ring",
		SunTeeth: 18, PlanetTeeth: 18, PlanetCount: 3,
	},
	"compact": {
		Module: 0.5, PressureAngle: 20, Height: 3, Clearance: 0.25, SolveFor: "planet",
		SunTeeth: 12, RingTeeth: 48, PlanetCount: 4,
	},
	"odd_planet": {
		Module: 1, PressureAngle: 20, Height: 5, Clearance: 0.25, SolveFor: "ring",
		SunTeeth: 16, PlanetTeeth: 17, PlanetCount: 3,
	},
	"helical": {
		Module: 1.5, PressureAngle: 20, HelixAngle: 20, Height: 10, Clearance: 0.25, SolveFor: "sun",
		PlanetTeeth: 15, RingTeeth: 60, PlanetCount: 5,
	},
	"herringbone": {
		Module: 2, PressureAngle: 20, HelixAngle: 30, DoubleHelix: true, Height: 16, Clearance: 0.25,
		SolveFor: "ring", SunTeeth: 21, PlanetTeeth: 21, PlanetCount: 6,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
