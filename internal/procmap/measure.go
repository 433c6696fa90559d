package procmap

import (
	"errors"

	"github.com/banshee-data/meltpool.report/internal/solver/mesh"
)

// ErrNotMelted reports that a sweep point never pushed any grid cell past
// the melt temperature.
var ErrNotMelted = errors.New("no cell reached melt temperature")

// MeltPool holds the bounding-box dimensions of the molten region on a
// grid, in metres. Length runs along x, width along y, depth along z.
type MeltPool struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Depth  float64 `json:"depth"`

	// Cells is the number of cells at or above melt temperature, Peak the
	// hottest cell in kelvin.
	Cells int     `json:"cells"`
	Peak  float64 `json:"peak"`
}

// MeasureMeltPool measures the molten bounding box of a grid against a
// melt temperature in kelvin.
func MeasureMeltPool(m *mesh.Mesh, meltTemperature float64) (MeltPool, error) {
	nx, ny, nz := m.Dims()
	if nx == 0 || ny == 0 || nz == 0 {
		return MeltPool{}, mesh.ErrGridNotInitialized
	}

	var pool MeltPool
	iMin, iMax := nx, -1
	jMin, jMax := ny, -1
	kMin, kMax := nz, -1

	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				v := m.At(i, j, k)
				if v > pool.Peak {
					pool.Peak = v
				}
				if v < meltTemperature {
					continue
				}
				pool.Cells++
				if i < iMin {
					iMin = i
				}
				if i > iMax {
					iMax = i
				}
				if j < jMin {
					jMin = j
				}
				if j > jMax {
					jMax = j
				}
				if k < kMin {
					kMin = k
				}
				if k > kMax {
					kMax = k
				}
			}
		}
	}

	if pool.Cells == 0 {
		return pool, ErrNotMelted
	}

	pool.Length = float64(iMax-iMin+1) * m.XStep
	pool.Width = float64(jMax-jMin+1) * m.YStep
	pool.Depth = float64(kMax-kMin+1) * m.ZStep
	return pool, nil
}
