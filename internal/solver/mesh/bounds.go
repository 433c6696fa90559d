package mesh

import (
	"fmt"
	"math"

	"github.com/banshee-data/meltpool.report/internal/config"
	"github.com/banshee-data/meltpool.report/internal/segmenter"
	"github.com/banshee-data/meltpool.report/internal/units"
)

// FitToSegments widens the x and y bounds of params to cover the segments'
// bounding box plus the configured padding, and starts the tool at the
// first segment's start point. Z bounds are untouched: layer depth comes
// from the process, not from the toolpath footprint. Steps are preserved.
func FitToSegments(params config.MeshParameters, segments []segmenter.Segment) (config.MeshParameters, error) {
	if len(segments) == 0 {
		return params, fmt.Errorf("cannot fit mesh bounds: no segments")
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, seg := range segments {
		for _, x := range []float64{seg.X.SI(), seg.XNext.SI()} {
			minX = math.Min(minX, x)
			maxX = math.Max(maxX, x)
		}
		for _, y := range []float64{seg.Y.SI(), seg.YNext.SI()} {
			minY = math.Min(minY, y)
			maxY = math.Max(maxY, y)
		}
	}

	xPad, err := padSI(params.XPad, "x_pad")
	if err != nil {
		return params, err
	}
	yPad, err := padSI(params.YPad, "y_pad")
	if err != nil {
		return params, err
	}

	params.X.Start = units.Q(minX-xPad, units.Meter)
	params.X.End = units.Q(maxX+xPad, units.Meter)
	params.Y.Start = units.Q(minY-yPad, units.Meter)
	params.Y.End = units.Q(maxY+yPad, units.Meter)
	params.XInitial = units.Q(segments[0].X.SI(), units.Meter)
	params.YInitial = units.Q(segments[0].Y.SI(), units.Meter)
	return params, nil
}

// padSI reads a padding quantity, treating the zero value as no padding.
func padSI(q units.Quantity, field string) (float64, error) {
	if q.Units == "" && q.Magnitude == 0 {
		return 0, nil
	}
	if err := q.CheckDimension(units.DimLength); err != nil {
		return 0, &config.ConfigError{Field: field, Msg: err.Error()}
	}
	if q.SI() < 0 {
		return 0, &config.ConfigError{Field: field, Msg: "padding must not be negative"}
	}
	return q.SI(), nil
}
