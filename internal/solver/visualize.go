package solver

import (
	"fmt"

	"github.com/banshee-data/meltpool.report/internal/solver/mesh"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// topSurface adapts the free surface (highest z plane) of a mesh to the
// grid interface the heat map plotter consumes. Axes are reported in
// millimetres to keep tick labels readable.
type topSurface struct {
	m *mesh.Mesh
}

func (s topSurface) Dims() (c, r int) {
	nx, ny, _ := s.m.Dims()
	return nx, ny
}

func (s topSurface) Z(c, r int) float64 {
	_, _, nz := s.m.Dims()
	return s.m.At(c, r, nz-1)
}

func (s topSurface) X(c int) float64 { return s.m.XRange[c] * 1e3 }
func (s topSurface) Y(r int) float64 { return s.m.YRange[r] * 1e3 }

// RenderTopSurface writes a heat map of the mesh free surface to a PNG
// (or any extension the plot package recognises).
func RenderTopSurface(m *mesh.Mesh, title, path string) error {
	nx, ny, nz := m.Dims()
	if nx == 0 || ny == 0 || nz == 0 {
		return mesh.ErrGridNotInitialized
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (mm)"
	p.Y.Label.Text = "y (mm)"

	hm := plotter.NewHeatMap(topSurface{m}, palette.Heat(16, 1))
	p.Add(hm)

	if err := p.Save(18*vg.Centimeter, 14*vg.Centimeter, path); err != nil {
		return fmt.Errorf("failed to render heat map %s: %w", path, err)
	}
	return nil
}
