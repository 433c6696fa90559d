package units

import "fmt"

// Quantity is a magnitude tagged with a unit string. It is the wire and
// config representation of every physical value; internal math extracts SI
// magnitudes once and works on bare float64s.
type Quantity struct {
	Magnitude float64 `json:"magnitude"`
	Units     string  `json:"units"`
}

// Q constructs a Quantity.
func Q(magnitude float64, unit string) Quantity {
	return Quantity{Magnitude: magnitude, Units: unit}
}

// To converts the quantity into the target unit. Conversion across
// dimensions (for example meters into seconds) is an error.
func (q Quantity) To(target string) (Quantity, error) {
	from, ok := unitTable[q.Units]
	if !ok {
		return Quantity{}, fmt.Errorf("unknown unit %q", q.Units)
	}
	to, ok := unitTable[target]
	if !ok {
		return Quantity{}, fmt.Errorf("unknown unit %q", target)
	}
	if from.dim != to.dim {
		return Quantity{}, fmt.Errorf("cannot convert %s (%s) to %s (%s)", q.Units, from.dim, target, to.dim)
	}
	return Quantity{Magnitude: q.Magnitude * from.factor / to.factor, Units: target}, nil
}

// SI returns the magnitude in the dimension's SI base unit. It panics on an
// unknown unit string; configs are validated before any physics runs, so an
// unknown unit reaching SI is a programmer error.
func (q Quantity) SI() float64 {
	info, ok := unitTable[q.Units]
	if !ok {
		panic(fmt.Sprintf("units: SI conversion of unknown unit %q", q.Units))
	}
	return q.Magnitude * info.factor
}

// Dimension returns the quantity's physical dimension.
func (q Quantity) Dimension() (Dimension, error) {
	return DimensionOf(q.Units)
}

// CheckDimension validates that the quantity carries a known unit of the
// expected dimension.
func (q Quantity) CheckDimension(want Dimension) error {
	dim, err := DimensionOf(q.Units)
	if err != nil {
		return err
	}
	if dim != want {
		return fmt.Errorf("expected %s, got %s (%q)", want, dim, q.Units)
	}
	return nil
}

func (q Quantity) String() string {
	return fmt.Sprintf("%g %s", q.Magnitude, q.Units)
}
