package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/meltpool.report/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	b := DefaultBuildParameters()
	require.NoError(t, b.Validate())

	m := DefaultMaterialConfig()
	require.NoError(t, m.Validate())

	mesh := DefaultMeshParameters()
	require.NoError(t, mesh.Validate())
}

func TestMaterialDiffusivityDerived(t *testing.T) {
	m := DefaultMaterialConfig()
	m.ThermalDiffusivity = units.Quantity{}
	require.NoError(t, m.Validate())

	// k / (rho * c_p) for 316L
	want := 8.9 / (7910.0 * 455.0)
	assert.InDelta(t, want, m.ThermalDiffusivity.SI(), want*1e-9)
}

func TestBuildParametersValidation(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*BuildParameters)
		field  string
	}{
		{"zero_diameter", func(b *BuildParameters) { b.BeamDiameter.Magnitude = 0 }, "beam_diameter"},
		{"negative_velocity", func(b *BuildParameters) { b.ScanVelocity.Magnitude = -1 }, "scan_velocity"},
		{"negative_power", func(b *BuildParameters) { b.BeamPower.Magnitude = -5 }, "beam_power"},
		{"wrong_dimension", func(b *BuildParameters) { b.BeamPower.Units = units.Meter }, "beam_power"},
		{"unknown_unit", func(b *BuildParameters) { b.BeamDiameter.Units = "cubit" }, "beam_diameter"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := DefaultBuildParameters()
			tc.mutate(&b)
			err := b.Validate()
			require.Error(t, err)
			ce, ok := err.(*ConfigError)
			require.True(t, ok, "expected *ConfigError, got %T", err)
			assert.Equal(t, tc.field, ce.Field)
		})
	}
}

func TestMeshParametersValidation(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*MeshParameters)
		field  string
	}{
		{"zero_step", func(m *MeshParameters) { m.X.Step.Magnitude = 0 }, "x_step"},
		{"inverted_bounds", func(m *MeshParameters) { m.Y.End = units.Q(-1, units.Meter) }, "y_end"},
		{"bad_boundary", func(m *MeshParameters) { m.BoundaryCondition = "adiabatic" }, "boundary_condition"},
		{"step_wrong_dimension", func(m *MeshParameters) { m.Z.Step.Units = units.Second }, "z_step"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := DefaultMeshParameters()
			tc.mutate(&m)
			err := m.Validate()
			require.Error(t, err)
			ce, ok := err.(*ConfigError)
			require.True(t, ok)
			assert.Equal(t, tc.field, ce.Field)
		})
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "build", "default.json")

	b := DefaultBuildParameters()
	require.NoError(t, Save(path, b))

	var loaded BuildParameters
	require.NoError(t, Load(path, &loaded))
	assert.Equal(t, b, loaded)
}

func TestLoadMissingFileFatal(t *testing.T) {
	var b BuildParameters
	err := Load(filepath.Join(t.TempDir(), "nope.json"), &b)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errUnwrapAll(err)))
}

func TestLoadInvalidConfigCarriesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mesh.json")

	m := DefaultMeshParameters()
	m.BoundaryCondition = "wrong"
	require.NoError(t, Save(path, m))

	var loaded MeshParameters
	err := Load(path, &loaded)
	require.Error(t, err)
	ce, ok := err.(*ConfigError)
	require.True(t, ok)
	assert.Equal(t, path, ce.File)
}

func errUnwrapAll(err error) error {
	for {
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		next := u.Unwrap()
		if next == nil {
			return err
		}
		err = next
	}
}

func TestAxisCellCount(t *testing.T) {
	// Half-open convention: [0, 1cm) with 10um step is exactly 1000 cells.
	m := DefaultMeshParameters()
	n := int(math.Ceil((m.X.End.SI() - m.X.Start.SI()) / m.X.Step.SI()))
	assert.Equal(t, 1000, n)
}
