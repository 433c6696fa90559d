// Package model implements the analytic heat source evaluated on the
// solver mesh. The Eagar-Tsai model is a closed-form moving Gaussian
// source: the temperature contribution of one segment is a backward-time
// integral of an instantaneous point-source kernel over the dwell time.
package model

import (
	"fmt"
	"math"

	"github.com/banshee-data/meltpool.report/internal/config"
	"github.com/banshee-data/meltpool.report/internal/segmenter"
	"github.com/banshee-data/meltpool.report/internal/solver/mesh"
	"gonum.org/v1/gonum/integrate/quad"
)

// tauFloor is the lower quadrature bound. The kernel is numerically
// singular at tau=0 even though the singularity is analytically removable.
const tauFloor = 1e-7

// quadInterval is the dwell time covered by one quadrature point when the
// order is not overridden.
const quadInterval = 1e-4

// EagarTsai is a pure function of (BuildParameters, MaterialConfig): given
// a segment it produces the local temperature field in the source-centered
// frame. Callers graft the result to align it with the tool position.
type EagarTsai struct {
	absorptivity float64
	specificHeat float64
	diffusivity  float64
	density      float64

	// sigma is the Gaussian source parameter, a quarter of the nominal
	// beam diameter.
	sigma    float64
	power    float64
	velocity float64
	preheat  float64

	// num fixes the quadrature order; zero scales it with dwell time.
	num int
}

// Option configures an EagarTsai model.
type Option func(*EagarTsai)

// WithQuadraturePoints fixes the number of Gauss-Legendre points instead
// of scaling the order with dwell time.
func WithQuadraturePoints(n int) Option {
	return func(et *EagarTsai) { et.num = n }
}

// NewEagarTsai precomputes the SI coefficients of the kernel.
func NewEagarTsai(build config.BuildParameters, material config.MaterialConfig, opts ...Option) (*EagarTsai, error) {
	if err := build.Validate(); err != nil {
		return nil, err
	}
	if err := material.Validate(); err != nil {
		return nil, err
	}

	et := &EagarTsai{
		absorptivity: material.Absorptivity.SI(),
		specificHeat: material.SpecificHeatCapacity.SI(),
		diffusivity:  material.ThermalDiffusivity.SI(),
		density:      material.Density.SI(),

		sigma:    build.BeamDiameter.SI() / 4,
		power:    build.BeamPower.SI(),
		velocity: build.ScanVelocity.SI(),
		preheat:  build.TemperaturePreheat.SI(),
	}
	for _, opt := range opts {
		opt(et)
	}
	return et, nil
}

// Solve evaluates the temperature field the segment deposits, on the
// mesh's centered axes. The result is preheat plus rise; a zero dwell time
// returns the uniform preheat field, and travel segments zero out beam
// power but still run the same integral for dimensional consistency.
func (et *EagarTsai) Solve(m *mesh.Mesh, seg segmenter.Segment) ([]float64, error) {
	phiQ, err := seg.AngleXY.To("radian")
	if err != nil {
		return nil, fmt.Errorf("invalid segment angle: %w", err)
	}
	phi := phiQ.Magnitude

	distance := seg.DistanceXY.SI()
	if distance < 0 {
		return nil, fmt.Errorf("negative segment distance %v", seg.DistanceXY)
	}
	dt := distance / et.velocity

	xs, ys, zs := m.XRangeCentered, m.YRangeCentered, m.ZRangeCentered
	nx, ny, nz := len(xs), len(ys), len(zs)

	theta := make([]float64, nx*ny*nz)
	for i := range theta {
		theta[i] = et.preheat
	}
	if dt == 0 {
		return theta, nil
	}

	power := et.power
	if seg.Travel {
		power = 0
	}

	// Coefficient for equation 16 in Wolfer et al. (K m / s).
	d := et.diffusivity
	c := et.absorptivity * power /
		(2 * math.Pi * et.sigma * et.sigma * et.density * et.specificHeat * math.Pow(math.Pi, 1.5))

	n := et.num
	if n == 0 {
		n = maxInt(1, int(dt/quadInterval))
	}

	nodes := make([]float64, n)
	weights := make([]float64, n)
	quad.Legendre{}.FixedLocations(nodes, weights, tauFloor, dt)

	xint := make([]float64, nx)
	yint := make([]float64, ny)
	zint := make([]float64, nz)

	for q, tau := range nodes {
		xTravel := -et.velocity * tau * math.Cos(phi)
		yTravel := -et.velocity * tau * math.Sin(phi)

		lambda2 := 4 * d * tau
		gamma2 := 2*et.sigma*et.sigma + lambda2
		start := math.Pow(lambda2, -1.5)

		// Shared planar term: sigma * lambda * sqrt(2 pi) / gamma^2.
		term := et.sigma * math.Sqrt(lambda2) * math.Sqrt(2*math.Pi) / gamma2

		// The kernel is separable; fold the scalar prefactor and the
		// quadrature weight into the x vector.
		scale := weights[q] * c * start * term * term
		for i, x := range xs {
			dx := x - xTravel
			xint[i] = scale * math.Exp(-dx*dx/gamma2)
		}
		for j, y := range ys {
			dy := y - yTravel
			yint[j] = math.Exp(-dy * dy / gamma2)
		}
		for k, z := range zs {
			zint[k] = 2 * math.Exp(-z*z/lambda2)
		}

		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				xy := xint[i] * yint[j]
				row := (i*ny + j) * nz
				for k := 0; k < nz; k++ {
					theta[row+k] += xy * zint[k]
				}
			}
		}
	}

	return theta, nil
}

// Preheat returns the model's ambient baseline temperature in kelvin.
func (et *EagarTsai) Preheat() float64 { return et.preheat }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
