// Package config provides configuration loading and access for the solver.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Grid          GridConfig          `yaml:"grid"`
	Scene         SceneConfig         `yaml:"scene"`
	Physics       PhysicsConfig       `yaml:"physics"`
	Advection     AdvectionConfig     `yaml:"advection"`
	Reinit        ReinitConfig        `yaml:"reinit"`
	Extrapolation ExtrapolationConfig `yaml:"extrapolation"`
	Pressure      PressureConfig      `yaml:"pressure"`
	Volume        VolumeConfig        `yaml:"volume"`
	Driver        DriverConfig        `yaml:"driver"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GridConfig holds the staggered grid layout.
type GridConfig struct {
	Resolution    int     `yaml:"resolution"`     // Cells per axis, boundary band included
	BoundaryWidth int     `yaml:"boundary_width"` // Cells of collider band on each side
	Length        float64 `yaml:"length"`         // Domain length in meters (interior)
}

// SceneConfig selects the initial liquid and collider layout.
type SceneConfig struct {
	Name string `yaml:"name"` // box, droplet, falling, slope, bigball
}

// PhysicsConfig holds material and body force parameters.
type PhysicsConfig struct {
	Gravity               float64 `yaml:"gravity"` // m/s^2, applied along -y
	GravityEnabled        bool    `yaml:"gravity_enabled"`
	SurfaceTensionEnabled bool    `yaml:"surface_tension_enabled"`
	SurfaceTension        float64 `yaml:"surface_tension"` // N/m
	LiquidDensity         float64 `yaml:"liquid_density"`  // kg/m^3
}

// AdvectionConfig holds the semi-Lagrangian integrator order.
type AdvectionConfig struct {
	RKOrder int `yaml:"rk_order"`
}

// ReinitConfig holds level-set redistancing parameters.
type ReinitConfig struct {
	MaxSteps           int     `yaml:"max_steps"`           // Band width in cells (<=0 = whole grid)
	ExtrapolationClear float64 `yaml:"extrapolation_clear"` // Clear value for collider cells, in spacings
}

// ExtrapolationConfig holds velocity extension parameters.
type ExtrapolationConfig struct {
	VelocitySteps int `yaml:"velocity_steps"`
}

// PressureConfig holds linear solver parameters.
type PressureConfig struct {
	Tolerance     float64 `yaml:"tolerance"` // Relative to max |rhs|
	MaxIterations int     `yaml:"max_iterations"`
}

// VolumeConfig holds the volume-drift controller parameters.
type VolumeConfig struct {
	Enabled bool    `yaml:"enabled"`
	Gain    float64 `yaml:"gain"` // Proportional gain is gain/dt
}

// DriverConfig holds frame stepping and export parameters.
type DriverConfig struct {
	FrameRate   float64 `yaml:"frame_rate"`
	Courant     float64 `yaml:"courant"`
	EndFrame    int     `yaml:"end_frame"`
	Supersample int     `yaml:"supersample"` // Mask pixels per cell per axis
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"` // Sub-steps averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Spacing        float64 // Grid.Length / (Resolution - 2*BoundaryWidth)
	SecondPerFrame float64 // 1 / Driver.FrameRate
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Defaults returns a fresh copy of the embedded defaults with derived values.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate rejects configurations the solver cannot run.
func (c *Config) Validate() error {
	if c.Grid.BoundaryWidth < 1 || c.Grid.Resolution <= 2*c.Grid.BoundaryWidth {
		return fmt.Errorf("config: grid resolution %d too small for boundary width %d",
			c.Grid.Resolution, c.Grid.BoundaryWidth)
	}
	if !(c.Grid.Length > 0) {
		return fmt.Errorf("config: grid length must be positive, got %v", c.Grid.Length)
	}
	if c.Advection.RKOrder < 1 || c.Advection.RKOrder > 4 {
		return fmt.Errorf("config: rk_order must be in [1,4], got %d", c.Advection.RKOrder)
	}
	if !(c.Driver.FrameRate > 0) || !(c.Driver.Courant > 0) {
		return fmt.Errorf("config: frame_rate and courant must be positive")
	}
	if !(c.Physics.LiquidDensity > 0) {
		return fmt.Errorf("config: liquid_density must be positive, got %v", c.Physics.LiquidDensity)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	interior := c.Grid.Resolution - 2*c.Grid.BoundaryWidth
	if interior > 0 {
		c.Derived.Spacing = c.Grid.Length / float64(interior)
	}
	if c.Driver.FrameRate > 0 {
		c.Derived.SecondPerFrame = 1 / c.Driver.FrameRate
	}

	if c.Driver.Supersample < 1 {
		c.Driver.Supersample = 4
	}
	if c.Telemetry.PerfWindow < 1 {
		c.Telemetry.PerfWindow = 60
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
