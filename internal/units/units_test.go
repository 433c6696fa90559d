package units

import (
	"encoding/json"
	"math"
	"testing"
)

func TestQuantityTo(t *testing.T) {
	testCases := []struct {
		name      string
		q         Quantity
		target    string
		expected  float64
		expectErr bool
	}{
		{"mm_to_m", Q(3.0, Millimeter), Meter, 0.003, false},
		{"m_to_mm", Q(0.5, Meter), Millimeter, 500, false},
		{"short_aliases", Q(2.0, "mm"), "m", 0.002, false},
		{"identity", Q(1.25, Meter), Meter, 1.25, false},
		{"kw_to_w", Q(0.2, Kilowatt), Watt, 200, false},
		{"mmps_to_mps", Q(800, MillimeterPerSecond), MeterPerSecond, 0.8, false},
		{"deg_to_rad", Q(180, Degree), Radian, math.Pi, false},
		{"cross_dimension", Q(1, Meter), Second, 0, true},
		{"unknown_source", Q(1, "furlong"), Meter, 0, true},
		{"unknown_target", Q(1, Meter), "furlong", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.q.To(tc.target)
			if tc.expectErr {
				if err == nil {
					t.Fatalf("expected error converting %v to %s", tc.q, tc.target)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got.Magnitude-tc.expected) > 1e-12 {
				t.Errorf("magnitude: expected %g, got %g", tc.expected, got.Magnitude)
			}
			if got.Units != tc.target {
				t.Errorf("units: expected %q, got %q", tc.target, got.Units)
			}
		})
	}
}

func TestQuantitySI(t *testing.T) {
	if got := Q(1500, Millimeter).SI(); math.Abs(got-1.5) > 1e-12 {
		t.Errorf("expected 1.5, got %g", got)
	}
	if got := Q(300, Kelvin).SI(); got != 300 {
		t.Errorf("expected 300, got %g", got)
	}
}

func TestQuantityJSONRoundTrip(t *testing.T) {
	q := Q(5e-5, Meter)
	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Quantity
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != q {
		t.Errorf("round trip mismatch: %v != %v", back, q)
	}
}

func TestCheckDimension(t *testing.T) {
	if err := Q(1, Millimeter).CheckDimension(DimLength); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Q(1, Millimeter).CheckDimension(DimTime); err == nil {
		t.Error("expected dimension mismatch error")
	}
	if !IsValid(Meter) || IsValid("parsec") {
		t.Error("IsValid misclassified units")
	}
}
