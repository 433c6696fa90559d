package mesh

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"math"
	"path/filepath"

	"github.com/banshee-data/meltpool.report/internal/fsutil"
)

// archive is the persisted form of a mesh: the named axis arrays, the
// scalar bounds, and the grid itself, gob-encoded and gzip-compressed.
type archive struct {
	XRange, YRange, ZRange                         []float64
	XRangeCentered, YRangeCentered, ZRangeCentered []float64

	XStart, YStart, ZStart float64
	XEnd, YEnd, ZEnd       float64
	XStep, YStep, ZStep    float64

	Grid []float64
}

// Save writes the mesh archive to w.
func (m *Mesh) Save(w io.Writer) error {
	if !m.initialized {
		return ErrGridNotInitialized
	}
	gz := gzip.NewWriter(w)
	enc := gob.NewEncoder(gz)
	a := archive{
		XRange: m.XRange, YRange: m.YRange, ZRange: m.ZRange,
		XRangeCentered: m.XRangeCentered, YRangeCentered: m.YRangeCentered, ZRangeCentered: m.ZRangeCentered,
		XStart: m.XStart, YStart: m.YStart, ZStart: m.ZStart,
		XEnd: m.XEnd, YEnd: m.YEnd, ZEnd: m.ZEnd,
		XStep: m.XStep, YStep: m.YStep, ZStep: m.ZStep,
		Grid: m.Grid,
	}
	if err := enc.Encode(a); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode mesh archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to compress mesh archive: %w", err)
	}
	return nil
}

// Load reconstructs a mesh from an archive written by Save. Subsequent
// Diffuse and Graft calls behave identically to a freshly initialized
// equivalent; the tool position resets to the domain origin.
func Load(r io.Reader) (*Mesh, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open mesh archive: %w", err)
	}
	defer gz.Close()

	var a archive
	if err := gob.NewDecoder(gz).Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode mesh archive: %w", err)
	}

	m := &Mesh{
		XRange: a.XRange, YRange: a.YRange, ZRange: a.ZRange,
		XRangeCentered: a.XRangeCentered, YRangeCentered: a.YRangeCentered, ZRangeCentered: a.ZRangeCentered,
		XStart: a.XStart, YStart: a.YStart, ZStart: a.ZStart,
		XEnd: a.XEnd, YEnd: a.YEnd, ZEnd: a.ZEnd,
		XStep: a.XStep, YStep: a.YStep, ZStep: a.ZStep,
		Grid: a.Grid,

		nx: len(a.XRange), ny: len(a.YRange), nz: len(a.ZRange),
	}
	if m.nx == 0 || m.ny == 0 || m.nz == 0 {
		return nil, fmt.Errorf("mesh archive has an empty axis (%d, %d, %d)", m.nx, m.ny, m.nz)
	}
	if len(m.Grid) != m.nx*m.ny*m.nz {
		return nil, fmt.Errorf("mesh archive grid has %d cells, expected %d", len(m.Grid), m.nx*m.ny*m.nz)
	}

	m.X, m.Y, m.Z = m.XStart, m.YStart, m.ZStart
	m.XIndex = int(math.Round((m.X - m.XStart) / m.XStep))
	m.YIndex = int(math.Round((m.Y - m.YStart) / m.YStep))
	m.ZIndex = int(math.Round((m.Z - m.ZStart) / m.ZStep))
	m.initialized = true
	return m, nil
}

// SaveFile writes the mesh archive at path, creating parent directories.
func (m *Mesh) SaveFile(fs fsutil.FileSystem, path string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot %s: %w", path, err)
	}
	if err := m.Save(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a mesh archive from path.
func LoadFile(fs fsutil.FileSystem, path string) (*Mesh, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}
