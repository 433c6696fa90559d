// Package config defines the immutable per-run parameter sets consumed by
// the solver: build parameters, material properties, and mesh geometry.
// Configs load from JSON files, validate before any stepping begins, and
// carry unit-tagged quantities that are converted to SI exactly once.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/meltpool.report/internal/units"
)

// Boundary condition literals for MeshParameters.
const (
	BoundaryFlux        = "flux"
	BoundaryTemperature = "temperature"
)

// ConfigError reports an invalid or missing configuration value. It is
// always fatal and always raised before the first solver step.
type ConfigError struct {
	File  string // source file, empty for in-memory configs
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("config %s: %s: %s", e.File, e.Field, e.Msg)
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

// BuildParameters are the machine-side process constants.
type BuildParameters struct {
	BeamDiameter       units.Quantity `json:"beam_diameter"`
	BeamPower          units.Quantity `json:"beam_power"`
	ScanVelocity       units.Quantity `json:"scan_velocity"`
	TemperaturePreheat units.Quantity `json:"temperature_preheat"`
}

// DefaultBuildParameters returns a typical laser powder bed setup.
func DefaultBuildParameters() BuildParameters {
	return BuildParameters{
		BeamDiameter:       units.Q(5e-5, units.Meter),
		BeamPower:          units.Q(200, units.Watt),
		ScanVelocity:       units.Q(0.8, units.MeterPerSecond),
		TemperaturePreheat: units.Q(300, units.Kelvin),
	}
}

// Validate checks dimensions and physical plausibility.
func (b BuildParameters) Validate() error {
	checks := []struct {
		field string
		q     units.Quantity
		dim   units.Dimension
	}{
		{"beam_diameter", b.BeamDiameter, units.DimLength},
		{"beam_power", b.BeamPower, units.DimPower},
		{"scan_velocity", b.ScanVelocity, units.DimVelocity},
		{"temperature_preheat", b.TemperaturePreheat, units.DimTemperature},
	}
	for _, c := range checks {
		if err := c.q.CheckDimension(c.dim); err != nil {
			return &ConfigError{Field: c.field, Msg: err.Error()}
		}
	}
	if b.BeamDiameter.SI() <= 0 {
		return &ConfigError{Field: "beam_diameter", Msg: "must be positive"}
	}
	if b.ScanVelocity.SI() <= 0 {
		return &ConfigError{Field: "scan_velocity", Msg: "must be positive"}
	}
	if b.BeamPower.SI() < 0 {
		return &ConfigError{Field: "beam_power", Msg: "must not be negative"}
	}
	return nil
}

// MaterialConfig are the thermophysical constants of the powder material.
type MaterialConfig struct {
	Name                 string         `json:"name"`
	SpecificHeatCapacity units.Quantity `json:"specific_heat_capacity"`
	Absorptivity         units.Quantity `json:"absorptivity"`
	ThermalConductivity  units.Quantity `json:"thermal_conductivity"`
	ThermalDiffusivity   units.Quantity `json:"thermal_diffusivity"`
	Density              units.Quantity `json:"density"`
	TemperatureMelt      units.Quantity `json:"temperature_melt"`
	TemperatureLiquidus  units.Quantity `json:"temperature_liquidus"`
	TemperatureSolidus   units.Quantity `json:"temperature_solidus"`
}

// DefaultMaterialConfig returns stainless steel 316L.
func DefaultMaterialConfig() MaterialConfig {
	m := MaterialConfig{
		Name:                 "Stainless Steel 316L",
		SpecificHeatCapacity: units.Q(455, units.JoulePerKilogramKelvin),
		Absorptivity:         units.Q(1.0, units.Dimensionless),
		ThermalConductivity:  units.Q(8.9, units.WattPerMeterKelvin),
		Density:              units.Q(7910, units.KilogramPerCubicMeter),
		TemperatureMelt:      units.Q(1673, units.Kelvin),
		TemperatureLiquidus:  units.Q(1710.26, units.Kelvin),
		TemperatureSolidus:   units.Q(1683.68, units.Kelvin),
	}
	m.ThermalDiffusivity = units.Q(m.diffusivitySI(), units.SquareMeterPerSecond)
	return m
}

// diffusivitySI derives k / (rho * c_p) in m^2/s.
func (m MaterialConfig) diffusivitySI() float64 {
	return m.ThermalConductivity.SI() / (m.Density.SI() * m.SpecificHeatCapacity.SI())
}

// Validate checks dimensions and fills ThermalDiffusivity from conductivity,
// density and specific heat when it is absent.
func (m *MaterialConfig) Validate() error {
	checks := []struct {
		field string
		q     units.Quantity
		dim   units.Dimension
	}{
		{"specific_heat_capacity", m.SpecificHeatCapacity, units.DimSpecificHeat},
		{"absorptivity", m.Absorptivity, units.DimDimensionless},
		{"thermal_conductivity", m.ThermalConductivity, units.DimConductivity},
		{"density", m.Density, units.DimDensity},
		{"temperature_melt", m.TemperatureMelt, units.DimTemperature},
	}
	for _, c := range checks {
		if err := c.q.CheckDimension(c.dim); err != nil {
			return &ConfigError{Field: c.field, Msg: err.Error()}
		}
	}
	if m.Density.SI() <= 0 {
		return &ConfigError{Field: "density", Msg: "must be positive"}
	}
	if m.SpecificHeatCapacity.SI() <= 0 {
		return &ConfigError{Field: "specific_heat_capacity", Msg: "must be positive"}
	}
	if m.ThermalDiffusivity == (units.Quantity{}) {
		m.ThermalDiffusivity = units.Q(m.diffusivitySI(), units.SquareMeterPerSecond)
	}
	if err := m.ThermalDiffusivity.CheckDimension(units.DimDiffusivity); err != nil {
		return &ConfigError{Field: "thermal_diffusivity", Msg: err.Error()}
	}
	if m.ThermalDiffusivity.SI() <= 0 {
		return &ConfigError{Field: "thermal_diffusivity", Msg: "must be positive"}
	}
	return nil
}

// AxisBounds describe one axis of the simulation domain. The range built
// from them is half-open: End is exclusive.
type AxisBounds struct {
	Start units.Quantity `json:"start"`
	End   units.Quantity `json:"end"`
	Step  units.Quantity `json:"step"`
}

func (a AxisBounds) validate(axis string) error {
	for _, c := range []struct {
		field string
		q     units.Quantity
	}{
		{axis + "_start", a.Start},
		{axis + "_end", a.End},
		{axis + "_step", a.Step},
	} {
		if err := c.q.CheckDimension(units.DimLength); err != nil {
			return &ConfigError{Field: c.field, Msg: err.Error()}
		}
	}
	if a.Step.SI() <= 0 {
		return &ConfigError{Field: axis + "_step", Msg: "step must be positive"}
	}
	if a.End.SI() <= a.Start.SI() {
		return &ConfigError{Field: axis + "_end", Msg: "end must be greater than start"}
	}
	return nil
}

// MeshParameters describe the simulation domain geometry.
type MeshParameters struct {
	X AxisBounds `json:"x"`
	Y AxisBounds `json:"y"`
	Z AxisBounds `json:"z"`

	// Initial tool position.
	XInitial units.Quantity `json:"x_initial"`
	YInitial units.Quantity `json:"y_initial"`
	ZInitial units.Quantity `json:"z_initial"`

	// Padding added around the toolpath bounding box when deriving the
	// domain from a toolpath.
	XPad units.Quantity `json:"x_pad"`
	YPad units.Quantity `json:"y_pad"`
	ZPad units.Quantity `json:"z_pad"`

	BoundaryCondition string `json:"boundary_condition"`
}

// DefaultMeshParameters returns a 10mm square domain, 0.8mm deep, with
// 10 micron steps.
func DefaultMeshParameters() MeshParameters {
	return MeshParameters{
		X: AxisBounds{
			Start: units.Q(0, units.Meter),
			End:   units.Q(1e-2, units.Meter),
			Step:  units.Q(1e-5, units.Meter),
		},
		Y: AxisBounds{
			Start: units.Q(0, units.Meter),
			End:   units.Q(1e-2, units.Meter),
			Step:  units.Q(1e-5, units.Meter),
		},
		Z: AxisBounds{
			Start: units.Q(-8e-4, units.Meter),
			End:   units.Q(0, units.Meter),
			Step:  units.Q(1e-5, units.Meter),
		},
		XInitial: units.Q(0, units.Meter),
		YInitial: units.Q(0, units.Meter),
		ZInitial: units.Q(0, units.Meter),

		XPad: units.Q(2e-4, units.Meter),
		YPad: units.Q(2e-4, units.Meter),
		ZPad: units.Q(1e-4, units.Meter),

		BoundaryCondition: BoundaryTemperature,
	}
}

// Validate checks bounds, step sizes and the boundary condition literal.
func (m MeshParameters) Validate() error {
	if err := m.X.validate("x"); err != nil {
		return err
	}
	if err := m.Y.validate("y"); err != nil {
		return err
	}
	if err := m.Z.validate("z"); err != nil {
		return err
	}
	switch m.BoundaryCondition {
	case BoundaryFlux, BoundaryTemperature:
	default:
		return &ConfigError{
			Field: "boundary_condition",
			Msg:   fmt.Sprintf("unsupported value %q (expected %q or %q)", m.BoundaryCondition, BoundaryFlux, BoundaryTemperature),
		}
	}
	return nil
}

// Load reads a JSON config file into dst and validates it when dst
// implements a Validate method. Missing files are fatal I/O errors.
func Load(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	switch v := dst.(type) {
	case interface{ Validate() error }:
		if err := v.Validate(); err != nil {
			if ce, ok := err.(*ConfigError); ok {
				ce.File = path
			}
			return err
		}
	}
	return nil
}

// Save writes a config as indented JSON, creating parent directories.
func Save(path string, cfg interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
