// Package units provides unit-tagged quantities and validation for the
// physical values that cross configuration and persistence boundaries.
// All internal physics math runs in canonical SI (meters, seconds, kelvin);
// conversion happens only when loading configs or writing archives.
package units

import (
	"fmt"
	"math"
)

// Unit constants
const (
	Meter      = "meter"
	Millimeter = "millimeter"
	Centimeter = "centimeter"
	Micrometer = "micrometer"

	Second      = "second"
	Millisecond = "millisecond"

	MeterPerSecond      = "meter / second"
	MillimeterPerSecond = "millimeter / second"

	Kelvin = "kelvin"

	Watt     = "watt"
	Kilowatt = "kilowatt"

	Radian = "radian"
	Degree = "degree"

	SquareMeterPerSecond = "meter ** 2 / second"
	JoulePerKilogramKelvin = "joule / (kilogram * kelvin)"
	WattPerMeterKelvin     = "watt / (meter * kelvin)"
	KilogramPerCubicMeter  = "kilogram / meter ** 3"

	Dimensionless = "dimensionless"
)

// Dimension identifies the physical dimension a unit measures. Quantities
// only convert within one dimension.
type Dimension string

const (
	DimLength        Dimension = "length"
	DimTime          Dimension = "time"
	DimVelocity      Dimension = "velocity"
	DimTemperature   Dimension = "temperature"
	DimPower         Dimension = "power"
	DimAngle         Dimension = "angle"
	DimDiffusivity   Dimension = "diffusivity"
	DimSpecificHeat  Dimension = "specific_heat"
	DimConductivity  Dimension = "conductivity"
	DimDensity       Dimension = "density"
	DimDimensionless Dimension = "dimensionless"
)

// unitInfo maps a unit string to its dimension and multiplicative factor
// into that dimension's SI base unit.
type unitInfo struct {
	dim    Dimension
	factor float64
}

var unitTable = map[string]unitInfo{
	Meter:      {DimLength, 1},
	Millimeter: {DimLength, 1e-3},
	Centimeter: {DimLength, 1e-2},
	Micrometer: {DimLength, 1e-6},
	"m":        {DimLength, 1},
	"mm":       {DimLength, 1e-3},
	"cm":       {DimLength, 1e-2},
	"um":       {DimLength, 1e-6},

	Second:      {DimTime, 1},
	Millisecond: {DimTime, 1e-3},
	"s":         {DimTime, 1},
	"ms":        {DimTime, 1e-3},

	MeterPerSecond:      {DimVelocity, 1},
	MillimeterPerSecond: {DimVelocity, 1e-3},
	"m/s":               {DimVelocity, 1},
	"mm/s":              {DimVelocity, 1e-3},

	Kelvin: {DimTemperature, 1},
	"K":    {DimTemperature, 1},

	Watt:     {DimPower, 1},
	Kilowatt: {DimPower, 1e3},
	"W":      {DimPower, 1},
	"kW":     {DimPower, 1e3},

	Radian: {DimAngle, 1},
	"rad":  {DimAngle, 1},

	SquareMeterPerSecond: {DimDiffusivity, 1},
	"m**2/s":             {DimDiffusivity, 1},

	JoulePerKilogramKelvin: {DimSpecificHeat, 1},
	WattPerMeterKelvin:     {DimConductivity, 1},
	KilogramPerCubicMeter:  {DimDensity, 1},

	Dimensionless: {DimDimensionless, 1},
	"":            {DimDimensionless, 1},
}

func init() {
	unitTable[Degree] = unitInfo{DimAngle, math.Pi / 180}
	unitTable["deg"] = unitInfo{DimAngle, math.Pi / 180}
}

// IsValid checks if the given unit string is known.
func IsValid(unit string) bool {
	_, ok := unitTable[unit]
	return ok
}

// DimensionOf returns the dimension of a unit string.
func DimensionOf(unit string) (Dimension, error) {
	info, ok := unitTable[unit]
	if !ok {
		return "", fmt.Errorf("unknown unit %q", unit)
	}
	return info.dim, nil
}
