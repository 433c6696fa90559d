package procmap

import (
	"context"
	"testing"

	"github.com/banshee-data/meltpool.report/internal/config"
	"github.com/banshee-data/meltpool.report/internal/segmenter"
	"github.com/banshee-data/meltpool.report/internal/solver/mesh"
	"github.com/banshee-data/meltpool.report/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMeshParams() config.MeshParameters {
	return config.MeshParameters{
		X:                 config.AxisBounds{Start: units.Q(0, "meter"), End: units.Q(2e-4, "meter"), Step: units.Q(1e-5, "meter")},
		Y:                 config.AxisBounds{Start: units.Q(0, "meter"), End: units.Q(2e-4, "meter"), Step: units.Q(1e-5, "meter")},
		Z:                 config.AxisBounds{Start: units.Q(-6e-5, "meter"), End: units.Q(0, "meter"), Step: units.Q(1e-5, "meter")},
		XInitial:          units.Q(0, "meter"),
		YInitial:          units.Q(1e-4, "meter"),
		ZInitial:          units.Q(0, "meter"),
		BoundaryCondition: config.BoundaryFlux,
	}
}

func testSegments(n int, step float64) []segmenter.Segment {
	const y = 1e-4
	segs := make([]segmenter.Segment, n)
	for i := range segs {
		x0 := float64(i) * step
		segs[i] = segmenter.Segment{
			X:          units.Q(x0, "meter"),
			Y:          units.Q(y, "meter"),
			Z:          units.Q(0, "meter"),
			E:          units.Q(1e-4, "meter"),
			XNext:      units.Q(x0+step, "meter"),
			YNext:      units.Q(y, "meter"),
			ZNext:      units.Q(0, "meter"),
			ENext:      units.Q(1e-4, "meter"),
			AngleXY:    units.Q(0, "radian"),
			DistanceXY: units.Q(step, "meter"),
			Travel:     false,
		}
	}
	return segs
}

func TestParseRangeSpec(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    RangeSpec
		wantErr bool
	}{
		{name: "valid", in: "100:300:50", want: RangeSpec{Min: 100, Max: 300, Step: 50}},
		{name: "whitespace", in: " 0.4 : 1.2 : 0.4 ", want: RangeSpec{Min: 0.4, Max: 1.2, Step: 0.4}},
		{name: "two parts", in: "100:300", wantErr: true},
		{name: "bad number", in: "a:300:50", wantErr: true},
		{name: "zero step", in: "100:300:0", wantErr: true},
		{name: "negative step", in: "100:300:-50", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRangeSpec(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRangeSpecValues(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3}, RangeSpec{Min: 1, Max: 3, Step: 1}.Values())
	assert.Equal(t, []float64{5}, RangeSpec{Min: 5, Max: 5, Step: 1}.Values())
	assert.Nil(t, RangeSpec{Min: 3, Max: 1, Step: 1}.Values())
	assert.Nil(t, RangeSpec{Min: 0, Max: 1e9, Step: 1}.Values())
}

func TestSweepPointsCartesian(t *testing.T) {
	s := &Sweep{Powers: []float64{100, 200}, Velocities: []float64{0.4, 0.8, 1.2}}

	points := s.Points()
	require.Len(t, points, 6)
	assert.Equal(t, Point{BeamPower: 100, ScanVelocity: 0.4}, points[0])
	assert.Equal(t, Point{BeamPower: 100, ScanVelocity: 1.2}, points[2])
	assert.Equal(t, Point{BeamPower: 200, ScanVelocity: 0.4}, points[3])
}

func TestMeasureMeltPool(t *testing.T) {
	m := mesh.New()
	require.NoError(t, m.InitializeGrid(testMeshParams(), 300))
	_, _, nz := m.Dims()

	// A 3x2x1 molten block on the free surface.
	for i := 4; i <= 6; i++ {
		for j := 10; j <= 11; j++ {
			m.Grid[m.Idx(i, j, nz-1)] = 1900
		}
	}

	pool, err := MeasureMeltPool(m, 1673)
	require.NoError(t, err)
	assert.InDelta(t, 3e-5, pool.Length, 1e-12)
	assert.InDelta(t, 2e-5, pool.Width, 1e-12)
	assert.InDelta(t, 1e-5, pool.Depth, 1e-12)
	assert.Equal(t, 6, pool.Cells)
	assert.Equal(t, 1900.0, pool.Peak)
}

func TestMeasureMeltPoolNotMelted(t *testing.T) {
	m := mesh.New()
	require.NoError(t, m.InitializeGrid(testMeshParams(), 300))

	pool, err := MeasureMeltPool(m, 1673)
	assert.ErrorIs(t, err, ErrNotMelted)
	assert.Equal(t, 0, pool.Cells)
	assert.Equal(t, 300.0, pool.Peak)
}

func TestMeasureMeltPoolUninitialized(t *testing.T) {
	_, err := MeasureMeltPool(mesh.New(), 1673)
	assert.ErrorIs(t, err, mesh.ErrGridNotInitialized)
}

func TestSweepRun(t *testing.T) {
	s := &Sweep{
		Base:       config.DefaultBuildParameters(),
		Material:   config.DefaultMaterialConfig(),
		Mesh:       testMeshParams(),
		Segments:   testSegments(2, 1e-5),
		Powers:     []float64{100, 400},
		Velocities: []float64{0.8},
		Workers:    2,
	}

	results, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		require.NoError(t, r.Err)
	}

	// Sorted by power, and more power means a hotter pool.
	assert.Equal(t, 100.0, results[0].Point.BeamPower)
	assert.Equal(t, 400.0, results[1].Point.BeamPower)
	assert.Greater(t, results[1].MeltPool.Peak, results[0].MeltPool.Peak)
}

func TestSweepRunEmpty(t *testing.T) {
	s := &Sweep{Base: config.DefaultBuildParameters(), Material: config.DefaultMaterialConfig(), Mesh: testMeshParams()}
	_, err := s.Run(context.Background())
	assert.Error(t, err)
}

func TestSweepRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &Sweep{
		Base:       config.DefaultBuildParameters(),
		Material:   config.DefaultMaterialConfig(),
		Mesh:       testMeshParams(),
		Segments:   testSegments(1, 1e-5),
		Powers:     []float64{100},
		Velocities: []float64{0.8},
	}
	_, err := s.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
