package procmap

import (
	"fmt"
	"strconv"
	"strings"
)

// RangeSpec defines a swept parameter range.
type RangeSpec struct {
	Min  float64
	Max  float64
	Step float64
}

// ParseRangeSpec parses a "min:max:step" string into a RangeSpec.
func ParseRangeSpec(s string) (RangeSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return RangeSpec{}, fmt.Errorf("invalid range format %q: expected min:max:step", s)
	}

	min, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid min value %q: %w", parts[0], err)
	}

	max, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid max value %q: %w", parts[1], err)
	}

	step, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid step value %q: %w", parts[2], err)
	}

	if step <= 0 {
		return RangeSpec{}, fmt.Errorf("step must be positive, got %f", step)
	}

	return RangeSpec{Min: min, Max: max, Step: step}, nil
}

// Values expands the range into the inclusive list of swept values. A range
// that would expand to an unreasonable point count returns nil; callers
// should validate before launching a sweep.
func (r RangeSpec) Values() []float64 {
	const maxValues = 10000
	if r.Step <= 0 || r.Min > r.Max {
		return nil
	}
	if int((r.Max-r.Min)/r.Step)+1 > maxValues {
		return nil
	}

	var result []float64
	for v := r.Min; v <= r.Max+r.Step/1000; v += r.Step {
		result = append(result, v)
	}
	return result
}
