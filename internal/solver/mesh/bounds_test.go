package mesh

import (
	"testing"

	"github.com/banshee-data/meltpool.report/internal/config"
	"github.com/banshee-data/meltpool.report/internal/segmenter"
	"github.com/banshee-data/meltpool.report/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fitSegment(x0, y0, x1, y1 float64) segmenter.Segment {
	return segmenter.Segment{
		X:     units.Q(x0, units.Meter),
		Y:     units.Q(y0, units.Meter),
		XNext: units.Q(x1, units.Meter),
		YNext: units.Q(y1, units.Meter),
	}
}

func TestFitToSegments(t *testing.T) {
	params := testMeshParams(10, 4, 1e-5, config.BoundaryFlux)
	params.XPad = units.Q(2e-5, units.Meter)
	params.YPad = units.Q(3e-5, units.Meter)

	segs := []segmenter.Segment{
		fitSegment(1e-4, 2e-4, 5e-4, 2e-4),
		fitSegment(5e-4, 2e-4, 5e-4, 7e-4),
	}

	fitted, err := FitToSegments(params, segs)
	require.NoError(t, err)

	assert.InDelta(t, 1e-4-2e-5, fitted.X.Start.SI(), 1e-12)
	assert.InDelta(t, 5e-4+2e-5, fitted.X.End.SI(), 1e-12)
	assert.InDelta(t, 2e-4-3e-5, fitted.Y.Start.SI(), 1e-12)
	assert.InDelta(t, 7e-4+3e-5, fitted.Y.End.SI(), 1e-12)

	// Tool starts at the first segment's start point; z and steps untouched.
	assert.InDelta(t, 1e-4, fitted.XInitial.SI(), 1e-12)
	assert.InDelta(t, 2e-4, fitted.YInitial.SI(), 1e-12)
	assert.Equal(t, params.Z, fitted.Z)
	assert.Equal(t, params.X.Step, fitted.X.Step)

	m := New()
	require.NoError(t, m.InitializeGrid(fitted, 300))
}

func TestFitToSegmentsZeroPad(t *testing.T) {
	params := testMeshParams(10, 4, 1e-5, config.BoundaryFlux)
	params.XPad = units.Quantity{}
	params.YPad = units.Quantity{}

	fitted, err := FitToSegments(params, []segmenter.Segment{fitSegment(0, 0, 4e-4, 0)})
	require.NoError(t, err)
	assert.InDelta(t, 0, fitted.X.Start.SI(), 1e-12)
	assert.InDelta(t, 4e-4, fitted.X.End.SI(), 1e-12)
}

func TestFitToSegmentsErrors(t *testing.T) {
	params := testMeshParams(10, 4, 1e-5, config.BoundaryFlux)

	_, err := FitToSegments(params, nil)
	assert.Error(t, err)

	params.XPad = units.Q(1, "second")
	_, err = FitToSegments(params, []segmenter.Segment{fitSegment(0, 0, 1e-4, 0)})
	require.Error(t, err)
	var ce *config.ConfigError
	assert.ErrorAs(t, err, &ce)

	params.XPad = units.Q(-1e-5, units.Meter)
	_, err = FitToSegments(params, []segmenter.Segment{fitSegment(0, 0, 1e-4, 0)})
	assert.Error(t, err)
}
