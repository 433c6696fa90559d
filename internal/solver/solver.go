// Package solver sequences parsed segments through the thermal mesh and
// the heat source model, persisting snapshots along the way. One run owns
// one mesh; the per-segment loop is strictly single-threaded because every
// step depends on the state the previous step left behind.
package solver

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/banshee-data/meltpool.report/internal/config"
	"github.com/banshee-data/meltpool.report/internal/fsutil"
	"github.com/banshee-data/meltpool.report/internal/segmenter"
	"github.com/banshee-data/meltpool.report/internal/solver/mesh"
	"github.com/banshee-data/meltpool.report/internal/solver/model"
	"github.com/google/uuid"
)

// SnapshotStore records snapshot locations for a run. Implemented by
// storage.Store; nil disables indexing.
type SnapshotStore interface {
	InsertSnapshot(runID string, segmentIndex int, path string) error
}

// RunOptions configure one layer simulation.
type RunOptions struct {
	// Name labels the run; empty generates a timestamped name.
	Name string

	// OutDir is where mesh snapshots are written. Empty disables
	// snapshot persistence entirely.
	OutDir string

	// SnapshotEvery persists every Nth segment's mesh. Zero defaults to 1
	// (every segment) when OutDir is set.
	SnapshotEvery int

	// QuadraturePoints overrides the heat source quadrature order.
	QuadraturePoints int

	// FS is the filesystem snapshots are written through. Nil uses the OS.
	FS fsutil.FileSystem

	// Store, when set, receives one row per persisted snapshot.
	Store SnapshotStore
}

// Result summarises a completed run.
type Result struct {
	RunID    string
	Name     string
	Mesh     *mesh.Mesh
	Segments int

	// PeakTemperatures holds the grid maximum after each segment step, in
	// kelvin. Input for the segment report.
	PeakTemperatures []float64

	SnapshotsWritten int
	SnapshotsFailed  int
	Elapsed          time.Duration
}

// snapshotJob carries a mesh copy to the persistence worker. The copy is
// mandatory: the stepping loop mutates the live mesh immediately after
// dispatch.
type snapshotJob struct {
	mesh  *mesh.Mesh
	index int
	path  string
}

// RunLayer simulates one layer's segments on a fresh mesh.
//
// Cancellation is cooperative and checked once per segment boundary;
// mid-diffuse cancellation is meaningless. Math and configuration failures
// abort the whole run, since a partial grid cannot be resumed without
// replaying from segment zero. Snapshot write failures are the one soft
// error: they
// are logged and skipped, by driver policy, and reported in the result.
func RunLayer(ctx context.Context, segments []segmenter.Segment, build config.BuildParameters,
	material config.MaterialConfig, meshParams config.MeshParameters, opts RunOptions) (*Result, error) {

	start := time.Now()

	if opts.Name == "" {
		opts.Name = "run_" + time.Now().Format("20060102_150405")
	}
	if opts.FS == nil {
		opts.FS = fsutil.OSFileSystem{}
	}
	if opts.SnapshotEvery <= 0 {
		opts.SnapshotEvery = 1
	}

	// Validate here rather than relying on the caller: it also fills
	// ThermalDiffusivity from conductivity when the config leaves it out.
	if err := material.Validate(); err != nil {
		return nil, err
	}

	et, err := model.NewEagarTsai(build, material, modelOptions(opts)...)
	if err != nil {
		return nil, err
	}

	preheat := build.TemperaturePreheat.SI()
	m := mesh.New()
	if err := m.InitializeGrid(meshParams, preheat); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:            uuid.NewString(),
		Name:             opts.Name,
		Mesh:             m,
		Segments:         len(segments),
		PeakTemperatures: make([]float64, 0, len(segments)),
	}

	// Snapshot persistence is the only offloadable operation in the loop:
	// it never feeds back into grid state. One worker keeps writes ordered.
	var (
		jobs chan snapshotJob
		done chan struct{}
	)
	if opts.OutDir != "" {
		jobs = make(chan snapshotJob, 4)
		done = make(chan struct{})
		go func() {
			defer close(done)
			for job := range jobs {
				if err := job.mesh.SaveFile(opts.FS, job.path); err != nil {
					log.Printf("[solver] skipping snapshot %d: %v", job.index, err)
					result.SnapshotsFailed++
					continue
				}
				result.SnapshotsWritten++
				if opts.Store != nil {
					if err := opts.Store.InsertSnapshot(result.RunID, job.index, job.path); err != nil {
						log.Printf("[solver] failed to index snapshot %d: %v", job.index, err)
					}
				}
			}
		}()
	}
	finish := func() {
		if jobs != nil {
			close(jobs)
			<-done
			jobs = nil
		}
	}
	defer finish()

	diffusivity := material.ThermalDiffusivity.SI()
	zfill := len(fmt.Sprintf("%d", len(segments)))

	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run %s cancelled at segment %d: %w", result.RunID, i, err)
		}

		dt, err := seg.DwellTime(build.ScanVelocity)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}

		if err := m.Diffuse(dt, diffusivity, preheat, meshParams.BoundaryCondition); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		if err := m.UpdateXY(seg); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}

		theta, err := et.Solve(m, seg)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		if err := m.Graft(theta, preheat); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}

		result.PeakTemperatures = append(result.PeakTemperatures, gridMax(m.Grid))

		if jobs != nil && i%opts.SnapshotEvery == 0 {
			name := fmt.Sprintf("%0*d.mesh.gz", zfill, i)
			jobs <- snapshotJob{
				mesh:  m.Clone(),
				index: i,
				path:  filepath.Join(opts.OutDir, "meshes", name),
			}
		}
	}

	finish()
	result.Elapsed = time.Since(start)
	log.Printf("[solver] run %s (%s): %d segments in %s, %d snapshots (%d failed)",
		result.RunID, result.Name, result.Segments, result.Elapsed, result.SnapshotsWritten, result.SnapshotsFailed)
	return result, nil
}

func modelOptions(opts RunOptions) []model.Option {
	if opts.QuadraturePoints > 0 {
		return []model.Option{model.WithQuadraturePoints(opts.QuadraturePoints)}
	}
	return nil
}

func gridMax(grid []float64) float64 {
	max := grid[0]
	for _, v := range grid[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
