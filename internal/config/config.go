package config

import (
	"fmt"
	"os"

	"github.com/san-kum/gearset/internal/gearset"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModule        = 1.0
	DefaultPressureAngle = 20.0
	DefaultPlanets       = 5
	DefaultHeight        = 5.0
	DefaultClearance     = 0.25
	DefaultSunTeeth      = 17
	DefaultPlanetTeeth   = 18
	DefaultRingTeeth     = 53
	DefaultSolveFor      = "ring"
)

// Config is the on-disk form of a gear train.
type Config struct {
	Module        float64 `yaml:"module" json:"module"`
	PressureAngle float64 `yaml:"pressure_angle" json:"pressure_angle"`
	HelixAngle    float64 `yaml:"helix_angle" json:"helix_angle"`
	DoubleHelix   bool    `yaml:"double_helix" json:"double_helix"`
	Height        float64 `yaml:"height" json:"height"`
	Clearance     float64 `yaml:"clearance" json:"clearance"`
	Backlash      float64 `yaml:"backlash" json:"backlash"`
	SolveFor      string  `yaml:"solve_for" json:"solve_for"`
	SunTeeth      int     `yaml:"sun_teeth" json:"sun_teeth"`
	PlanetTeeth   int     `yaml:"planet_teeth" json:"planet_teeth"`
	RingTeeth     int     `yaml:"ring_teeth" json:"ring_teeth"`
	SunAngle      float64 `yaml:"sun_angle" json:"sun_angle"`
	RingAngle     float64 `yaml:"ring_angle" json:"ring_angle"`
	PlanetCount   int     `yaml:"planet_count" json:"planet_count"`
}

func DefaultConfig() *Config {
	return &Config{
		Module:        DefaultModule,
		PressureAngle: DefaultPressureAngle,
		Height:        DefaultHeight,
		Clearance:     DefaultClearance,
		SolveFor:      DefaultSolveFor,
		SunTeeth:      DefaultSunTeeth,
		PlanetTeeth:   DefaultPlanetTeeth,
		RingTeeth:     DefaultRingTeeth,
		PlanetCount:   DefaultPlanets,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults, so omitted keys keep their
// default values.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Train converts the config into a gear train ready for recompute.
func (c *Config) Train() (*gearset.Train, error) {
	role, err := gearset.ParseRole(c.SolveFor)
	if err != nil {
		return nil, fmt.Errorf("solve_for: %w", err)
	}
	t := &gearset.Train{
		Module:        c.Module,
		PressureAngle: c.PressureAngle,
		HelixAngle:    c.HelixAngle,
		DoubleHelix:   c.DoubleHelix,
		Height:        c.Height,
		Clearance:     c.Clearance,
		Backlash:      c.Backlash,
		SolveFor:      role,
		SunTeeth:      c.SunTeeth,
		PlanetTeeth:   c.PlanetTeeth,
		RingTeeth:     c.RingTeeth,
		SunAngle:      c.SunAngle,
		RingAngle:     c.RingAngle,
		PlanetCount:   c.PlanetCount,
	}
	t.RefreshPitch()
	return t, nil
}

// FromTrain captures the user-settable parameters of t.
func FromTrain(t *gearset.Train) *Config {
	return &Config{
		Module:        t.Module,
		PressureAngle: t.PressureAngle,
		HelixAngle:    t.HelixAngle,
		DoubleHelix:   t.DoubleHelix,
		Height:        t.Height,
		Clearance:     t.Clearance,
		Backlash:      t.Backlash,
		SolveFor:      t.SolveFor.String(),
		SunTeeth:      t.SunTeeth,
		PlanetTeeth:   t.PlanetTeeth,
		RingTeeth:     t.RingTeeth,
		SunAngle:      t.SunAngle,
		RingAngle:     t.RingAngle,
		PlanetCount:   t.PlanetCount,
	}
}
