package segmenter

import (
	"fmt"
	"math"

	"github.com/banshee-data/meltpool.report/internal/units"
)

// SegmentCommands subdivides every consecutive command pair into segments
// no longer than maxSegmentLength in the XY plane.
//
// Each pair contributes floor(d / L) full-length pieces plus a remainder
// piece when one exists; a zero-distance pair still contributes exactly one
// zero-length segment so no interval is ever dropped. All sub-segments of a
// pair share the travel flag computed from the next command's deposition.
// Sub-segment angles are recomputed from each piece's own displacement off
// a running endpoint rather than a fixed fraction of the total heading,
// which keeps long runs consistent with accumulated floating-point state.
func SegmentCommands(commands []Command, maxSegmentLength units.Quantity) ([]Segment, error) {
	if err := maxSegmentLength.CheckDimension(units.DimLength); err != nil {
		return nil, fmt.Errorf("invalid max segment length: %w", err)
	}
	if maxSegmentLength.SI() <= 0 {
		return nil, fmt.Errorf("max segment length must be positive, got %v", maxSegmentLength)
	}
	if len(commands) < 2 {
		return nil, nil
	}

	// Commands from one parse share a single length unit; segmentation
	// stays in that unit so persisted magnitudes match the source file.
	unit := commands[0].X.Units
	maxLen, err := maxSegmentLength.To(unit)
	if err != nil {
		return nil, fmt.Errorf("invalid max segment length: %w", err)
	}
	limit := maxLen.Magnitude

	var segments []Segment

	for i := 0; i < len(commands)-1; i++ {
		current := commands[i]
		next := commands[i+1]

		dx := next.X.Magnitude - current.X.Magnitude
		dy := next.Y.Magnitude - current.Y.Magnitude
		distance := math.Sqrt(dx*dx + dy*dy)

		quotient := math.Floor(distance / limit)
		remainder := distance - quotient*limit

		distances := make([]float64, 0, int(quotient)+1)
		for n := 0; n < int(quotient); n++ {
			distances = append(distances, limit)
		}
		if remainder > 0 {
			distances = append(distances, remainder)
		}
		if len(distances) == 0 {
			// Zero-distance pair: emit one zero-length segment rather than
			// dropping the interval.
			distances = append(distances, 0)
		}

		// Travel is decided once per pair from the next command.
		travel := next.E.Magnitude <= 0

		prevX := current.X.Magnitude
		prevY := current.Y.Magnitude
		prevZ := current.Z.Magnitude
		prevE := current.E.Magnitude
		prevAngle := math.Atan2(dy, dx)

		for j, d := range distances {
			nextX := prevX + d*math.Cos(prevAngle)
			nextY := prevY + d*math.Sin(prevAngle)
			nextAngle := math.Atan2(nextY-prevY, nextX-prevX)

			// Interior pieces keep the current command's z and e; only the
			// final piece lands on the next command's values.
			nextZ := current.Z.Magnitude
			nextE := current.E.Magnitude
			if j == len(distances)-1 {
				nextZ = next.Z.Magnitude
				nextE = next.E.Magnitude
			}

			segments = append(segments, Segment{
				X: units.Q(prevX, unit),
				Y: units.Q(prevY, unit),
				Z: units.Q(prevZ, unit),
				E: units.Q(prevE, unit),

				XNext: units.Q(nextX, unit),
				YNext: units.Q(nextY, unit),
				ZNext: units.Q(nextZ, unit),
				ENext: units.Q(nextE, unit),

				AngleXY:    units.Q(nextAngle, units.Radian),
				DistanceXY: units.Q(d, unit),
				Travel:     travel,
			})

			prevX, prevY, prevAngle = nextX, nextY, nextAngle
		}
	}

	return segments, nil
}
