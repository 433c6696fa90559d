package mesh

import (
	"fmt"
	"math"

	"github.com/banshee-data/meltpool.report/internal/config"
	"gonum.org/v1/gonum/floats"
)

// Diffuse relaxes the temperature field over dt seconds of isotropic
// diffusion with the given diffusivity (m^2/s).
//
// The grid is padded by max(4*sigma_axis, 1) cells per axis with reflect
// padding, the padded border is sign-adjusted for the boundary condition,
// and a single isotropic Gaussian blur with sigma equal to the mean of the
// per-axis cell sigmas is applied before cropping back. gridOffset (the
// ambient/preheat temperature) is subtracted first and re-added after so
// diffusion acts on temperature rise only; otherwise the baseline would
// leak through the signed boundary.
//
// dt == 0 is an explicit no-op. dt < 0 is an error.
func (m *Mesh) Diffuse(dt, diffusivity, gridOffset float64, boundaryCondition string) error {
	if !m.initialized {
		return ErrGridNotInitialized
	}
	if dt < 0 {
		return fmt.Errorf("mesh: negative diffusion time %g", dt)
	}
	if dt == 0 {
		return nil
	}
	if diffusivity <= 0 {
		return fmt.Errorf("mesh: diffusivity must be positive, got %g", diffusivity)
	}
	switch boundaryCondition {
	case config.BoundaryFlux, config.BoundaryTemperature:
	default:
		return fmt.Errorf("mesh: unsupported boundary condition %q", boundaryCondition)
	}

	// Wolfer et al. section 2.2: diffusion over dt equals a Gaussian blur
	// with sigma = sqrt(2 D dt).
	sigma := math.Sqrt(2 * diffusivity * dt)
	sigmaX := sigma / m.XStep
	sigmaY := sigma / m.YStep
	sigmaZ := sigma / m.ZStep

	padX := maxInt(int(4*sigmaX), 1)
	padY := maxInt(int(4*sigmaY), 1)
	padZ := maxInt(int(4*sigmaZ), 1)

	if padX > m.nx-1 || padY > m.ny-1 || padZ > m.nz-1 {
		return fmt.Errorf("mesh: diffusion length %g exceeds domain (pad %d,%d,%d for shape %d,%d,%d)",
			sigma, padX, padY, padZ, m.nx, m.ny, m.nz)
	}

	px, py, pz := m.nx+2*padX, m.ny+2*padY, m.nz+2*padZ
	padded := make([]float64, px*py*pz)

	// Reflect padding of the offset-normalized grid. Reflection excludes
	// the edge sample, matching numpy's "reflect" mode.
	for i := 0; i < px; i++ {
		si := reflectIndex(i-padX, m.nx)
		for j := 0; j < py; j++ {
			sj := reflectIndex(j-padY, m.ny)
			dst := (i*py + j) * pz
			src := m.Idx(si, sj, 0)
			for k := 0; k < pz; k++ {
				sk := reflectIndex(k-padZ, m.nz)
				padded[dst+k] = m.Grid[src+sk] - gridOffset
			}
		}
	}

	if boundaryCondition == config.BoundaryTemperature {
		// Negate five of the six padded faces, applied as full slabs in
		// sequence so overlapping corner regions flip twice. The z-high
		// face stays un-negated: the top/free surface is insulating while
		// the other faces pin temperature.
		negateSlab(padded, px, py, pz, px-padX, px, 0, py, 0, pz)
		negateSlab(padded, px, py, pz, 0, padX, 0, py, 0, pz)
		negateSlab(padded, px, py, pz, 0, px, py-padY, py, 0, pz)
		negateSlab(padded, px, py, pz, 0, px, 0, padY, 0, pz)
		negateSlab(padded, px, py, pz, 0, px, 0, py, 0, padZ)
	}
	// Flux: all six faces keep the un-negated reflect padding, which is
	// the zero-flux mirror already.

	// The kernel support must stay inside the padded volume; a radius
	// larger than the smallest pad would let convolveAxis's zero padding
	// bleed into the cropped interior and violate the zero-flux mirror.
	sigmaBar := (sigmaX + sigmaY + sigmaZ) / 3
	kernel := gaussianKernel(sigmaBar, minInt(padX, minInt(padY, padZ)))
	if len(kernel) > 1 {
		padded = convolveAxis(padded, px, py, pz, kernel, 0)
		padded = convolveAxis(padded, px, py, pz, kernel, 1)
		padded = convolveAxis(padded, px, py, pz, kernel, 2)
	}

	// Crop back to the original shape and restore the baseline.
	for i := 0; i < m.nx; i++ {
		for j := 0; j < m.ny; j++ {
			src := ((i+padX)*py + (j + padY)) * pz
			dst := m.Idx(i, j, 0)
			for k := 0; k < m.nz; k++ {
				m.Grid[dst+k] = padded[src+padZ+k] + gridOffset
			}
		}
	}
	return nil
}

// reflectIndex maps a possibly out-of-range axis coordinate into [0, n)
// by mirroring about the array ends without repeating the edge sample.
func reflectIndex(u, n int) int {
	if u < 0 {
		return -u
	}
	if u >= n {
		return 2*n - 2 - u
	}
	return u
}

// negateSlab flips the sign of the box [i0,i1) x [j0,j1) x [k0,k1).
func negateSlab(a []float64, _, py, pz, i0, i1, j0, j1, k0, k1 int) {
	for i := i0; i < i1; i++ {
		for j := j0; j < j1; j++ {
			row := (i*py + j) * pz
			for k := k0; k < k1; k++ {
				a[row+k] = -a[row+k]
			}
		}
	}
}

// gaussianKernel builds a normalized 1D Gaussian truncated at 4 sigma,
// with the radius capped at maxRadius. A sub-cell sigma yields the
// identity kernel.
func gaussianKernel(sigma float64, maxRadius int) []float64 {
	radius := int(4*sigma + 0.5)
	if radius > maxRadius {
		radius = maxRadius
	}
	if radius < 1 {
		return []float64{1}
	}
	kernel := make([]float64, 2*radius+1)
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
	}
	floats.Scale(1/floats.Sum(kernel), kernel)
	return kernel
}

// convolveAxis applies a 1D kernel along one axis of a flat (nx, ny, nz)
// volume with zero padding, producing an output of the same shape. An
// isotropic 3D Gaussian is exactly separable into three such passes.
func convolveAxis(src []float64, nx, ny, nz int, kernel []float64, axis int) []float64 {
	dst := make([]float64, len(src))
	radius := len(kernel) / 2

	var dim, stride int
	switch axis {
	case 0:
		dim, stride = nx, ny*nz
	case 1:
		dim, stride = ny, nz
	default:
		dim, stride = nz, 1
	}

	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			base := (i*ny + j) * nz
			for k := 0; k < nz; k++ {
				var pos int
				switch axis {
				case 0:
					pos = i
				case 1:
					pos = j
				default:
					pos = k
				}

				var sum float64
				for t, w := range kernel {
					p := pos + t - radius
					if p < 0 || p >= dim {
						continue
					}
					sum += w * src[base+k+(p-pos)*stride]
				}
				dst[base+k] = sum
			}
		}
	}
	return dst
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
