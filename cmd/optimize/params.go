package main

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/pivot/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector maps solver settings to the unit cube CMA-ES searches.
type ParamVector struct {
	Specs []ParamSpec

	lo, span []float64
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	pv := &ParamVector{
		Specs: []ParamSpec{
			{Name: "volume_gain", Path: "volume.gain", Min: 0.01, Max: 0.5, Default: 0.1},
			{Name: "courant", Path: "driver.courant", Min: 0.3, Max: 2.0, Default: 1.0},
			{Name: "reinit_steps", Path: "reinit.max_steps", Min: 2, Max: 12, Default: 5},
			{Name: "extrapolation_clear", Path: "reinit.extrapolation_clear", Min: 1.0, Max: 3.0, Default: 1.5},
		},
	}
	pv.lo = make([]float64, len(pv.Specs))
	pv.span = make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		pv.lo[i] = spec.Min
		pv.span[i] = spec.Max - spec.Min
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	out := floats.SubTo(make([]float64, len(raw)), raw, pv.lo)
	floats.Div(out, pv.span)
	return out
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	out := floats.MulTo(make([]float64, len(normalized)), normalized, pv.span)
	floats.Add(out, pv.lo)
	return out
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Max(spec.Min, math.Min(spec.Max, v[i]))
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Volume.Gain = clamped[0]
	cfg.Driver.Courant = clamped[1]
	cfg.Reinit.MaxSteps = int(math.Round(clamped[2]))
	cfg.Reinit.ExtrapolationClear = clamped[3]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Volume.Gain,
		cfg.Driver.Courant,
		float64(cfg.Reinit.MaxSteps),
		cfg.Reinit.ExtrapolationClear,
	}
}
