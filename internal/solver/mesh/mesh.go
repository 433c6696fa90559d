// Package mesh owns the 3D temperature field the solver evolves: axis
// vectors, spatial indexing, diffusive relaxation, and the graft operation
// that merges heat-source contributions into the global grid.
//
// A Mesh is single-writer state. It is created once per run, mutated by
// every segment step, and never shared across concurrent runs.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/meltpool.report/internal/config"
	"github.com/banshee-data/meltpool.report/internal/segmenter"
)

// ErrGridNotInitialized is returned when Diffuse, Graft or UpdateXY is
// invoked before InitializeGrid. That is a programmer error and must fail
// loudly rather than silently no-op.
var ErrGridNotInitialized = errors.New("mesh: grid not initialized")

// Mesh is the solver's 3D temperature field plus the tool position tracked
// against it. All magnitudes are SI (meters, seconds, kelvin). The grid is
// a flat slice in x-major order: index (i*ny + j)*nz + k.
type Mesh struct {
	// Current tool position and its nearest grid index.
	X, Y, Z                float64
	XIndex, YIndex, ZIndex int

	XStart, YStart, ZStart float64
	XEnd, YEnd, ZEnd       float64
	XStep, YStep, ZStep    float64

	// Absolute axis vectors and their tool-centered counterparts. The
	// centered vectors are aligned to the grid's middle index so the heat
	// source model evaluates in a source-centered frame; Graft re-aligns
	// the result. The z axis is not centered: its surface stays at z=0.
	XRange, YRange, ZRange                         []float64
	XRangeCentered, YRangeCentered, ZRangeCentered []float64

	Grid []float64

	nx, ny, nz  int
	initialized bool
}

// New returns an empty mesh. InitializeGrid must be called before any
// stepping operation.
func New() *Mesh {
	return &Mesh{}
}

// arange builds a half-open range [start, end) with the given step. The
// exclusive end matters: it changes the grid shape by one cell versus an
// inclusive range and downstream indexing depends on it.
func arange(start, end, step float64) []float64 {
	n := int(math.Ceil((end - start) / step))
	if n < 0 {
		n = 0
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// InitializeGrid builds the axis vectors from the mesh parameters and fills
// the grid with fillValue (the preheat temperature).
func (m *Mesh) InitializeGrid(params config.MeshParameters, fillValue float64) error {
	if err := params.Validate(); err != nil {
		return err
	}

	m.XStart, m.XEnd, m.XStep = params.X.Start.SI(), params.X.End.SI(), params.X.Step.SI()
	m.YStart, m.YEnd, m.YStep = params.Y.Start.SI(), params.Y.End.SI(), params.Y.Step.SI()
	m.ZStart, m.ZEnd, m.ZStep = params.Z.Start.SI(), params.Z.End.SI(), params.Z.Step.SI()

	m.XRange = arange(m.XStart, m.XEnd, m.XStep)
	m.YRange = arange(m.YStart, m.YEnd, m.YStep)
	m.ZRange = arange(m.ZStart, m.ZEnd, m.ZStep)

	m.nx, m.ny, m.nz = len(m.XRange), len(m.YRange), len(m.ZRange)
	if m.nx == 0 || m.ny == 0 || m.nz == 0 {
		return &config.ConfigError{Field: "bounds", Msg: "empty axis range"}
	}

	m.XRangeCentered = centered(m.XRange)
	m.YRangeCentered = centered(m.YRange)
	m.ZRangeCentered = append([]float64(nil), m.ZRange...)

	m.X = params.XInitial.SI()
	m.Y = params.YInitial.SI()
	m.Z = params.ZInitial.SI()
	m.XIndex = int(math.Round((m.X - m.XStart) / m.XStep))
	m.YIndex = int(math.Round((m.Y - m.YStart) / m.YStep))
	m.ZIndex = int(math.Round((m.Z - m.ZStart) / m.ZStep))

	m.Grid = make([]float64, m.nx*m.ny*m.nz)
	for i := range m.Grid {
		m.Grid[i] = fillValue
	}

	m.initialized = true
	return nil
}

// centered shifts an axis vector so its middle index sits at zero.
func centered(r []float64) []float64 {
	out := make([]float64, len(r))
	mid := r[len(r)/2]
	for i, v := range r {
		out[i] = v - mid
	}
	return out
}

// Dims returns the grid shape.
func (m *Mesh) Dims() (nx, ny, nz int) {
	return m.nx, m.ny, m.nz
}

// Idx converts (i, j, k) into the flat grid index.
func (m *Mesh) Idx(i, j, k int) int {
	return (i*m.ny+j)*m.nz + k
}

// At returns the temperature at (i, j, k).
func (m *Mesh) At(i, j, k int) float64 {
	return m.Grid[m.Idx(i, j, k)]
}

// UpdateXY moves the tool to the segment's authoritative endpoint. Using
// the prescribed position rather than integrating velocity over time
// prevents index drift over long runs.
func (m *Mesh) UpdateXY(seg segmenter.Segment) error {
	if !m.initialized {
		return ErrGridNotInitialized
	}

	xNext := seg.XNext.SI()
	yNext := seg.YNext.SI()

	m.X, m.Y = xNext, yNext
	m.XIndex = int(math.Round((xNext - m.XStart) / m.XStep))
	m.YIndex = int(math.Round((yNext - m.YStart) / m.YStep))
	return nil
}

// Graft aligns a heat-source-centered local field to the tool's current
// grid index and adds it into the grid. Alignment is a cyclic shift along
// x and y only; gridOffset is subtracted so the ambient baseline carried by
// the local field is not double counted.
//
// The cyclic shift wraps heat across domain edges for tool positions near
// the boundary. That is an accepted approximation given sufficient domain
// padding; clamping instead would break the energy balance the reflect
// padding boundary conditions rely on.
func (m *Mesh) Graft(local []float64, gridOffset float64) error {
	if !m.initialized {
		return ErrGridNotInitialized
	}
	if len(local) != len(m.Grid) {
		return fmt.Errorf("mesh: local field has %d cells, grid has %d", len(local), len(m.Grid))
	}

	xRoll := m.XIndex - m.nx/2
	yRoll := m.YIndex - m.ny/2

	for i := 0; i < m.nx; i++ {
		si := mod(i-xRoll, m.nx)
		for j := 0; j < m.ny; j++ {
			sj := mod(j-yRoll, m.ny)
			dst := m.Idx(i, j, 0)
			src := m.Idx(si, sj, 0)
			for k := 0; k < m.nz; k++ {
				m.Grid[dst+k] += local[src+k] - gridOffset
			}
		}
	}
	return nil
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}

// Clone returns a deep copy of the mesh. Snapshot persistence runs on
// copies so the stepping loop can keep mutating the original.
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.XRange = append([]float64(nil), m.XRange...)
	c.YRange = append([]float64(nil), m.YRange...)
	c.ZRange = append([]float64(nil), m.ZRange...)
	c.XRangeCentered = append([]float64(nil), m.XRangeCentered...)
	c.YRangeCentered = append([]float64(nil), m.YRangeCentered...)
	c.ZRangeCentered = append([]float64(nil), m.ZRangeCentered...)
	c.Grid = append([]float64(nil), m.Grid...)
	return &c
}
