// Package segmenter parses G-code motion instructions into absolute machine
// commands and subdivides the straight path between consecutive commands
// into bounded-length segments for the solver.
package segmenter

import (
	"fmt"

	"github.com/banshee-data/meltpool.report/internal/units"
)

// Command is an absolute machine position snapshot after one parsed linear
// move. Axes missing from the instruction persist from the previous command
// (modal semantics); the deposition value e defaults to zero per
// instruction. Commands are never mutated after they are appended.
type Command struct {
	X units.Quantity `json:"x"`
	Y units.Quantity `json:"y"`
	Z units.Quantity `json:"z"`
	E units.Quantity `json:"e"`
}

// Segment is a bounded-length slice of straight motion between two
// commands. Travel segments deposit no material but still occupy dwell
// time in the solver.
type Segment struct {
	X units.Quantity `json:"x"`
	Y units.Quantity `json:"y"`
	Z units.Quantity `json:"z"`
	E units.Quantity `json:"e"`

	XNext units.Quantity `json:"x_next"`
	YNext units.Quantity `json:"y_next"`
	ZNext units.Quantity `json:"z_next"`
	ENext units.Quantity `json:"e_next"`

	AngleXY    units.Quantity `json:"angle_xy"`
	DistanceXY units.Quantity `json:"distance_xy"`
	Travel     bool           `json:"travel"`
}

// DwellTime returns the time the heat source spends traversing the segment
// at the given scan velocity, in seconds.
func (s Segment) DwellTime(scanVelocity units.Quantity) (float64, error) {
	v := scanVelocity.SI()
	if v <= 0 {
		return 0, fmt.Errorf("scan velocity must be positive, got %v", scanVelocity)
	}
	d := s.DistanceXY.SI()
	if d < 0 {
		return 0, fmt.Errorf("negative segment distance %v", s.DistanceXY)
	}
	return d / v, nil
}

// ParseError reports a malformed instruction line. The parser recovers by
// skipping the line; it never aborts the file.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
