// Package procmap builds process maps: melt pool dimensions measured over
// a grid of beam power and scan velocity combinations. Each sweep point is
// an independent layer simulation, so points fan out across a worker pool.
package procmap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"

	"github.com/banshee-data/meltpool.report/internal/config"
	"github.com/banshee-data/meltpool.report/internal/segmenter"
	"github.com/banshee-data/meltpool.report/internal/solver"
	"github.com/banshee-data/meltpool.report/internal/units"
)

// Point is one power and velocity combination, in SI units.
type Point struct {
	BeamPower    float64 `json:"beam_power"`
	ScanVelocity float64 `json:"scan_velocity"`
}

// PointResult pairs a sweep point with its measured melt pool. Err records
// a per-point failure; the rest of the sweep is unaffected.
type PointResult struct {
	Point    Point    `json:"point"`
	MeltPool MeltPool `json:"melt_pool"`
	Melted   bool     `json:"melted"`
	Err      error    `json:"-"`
}

// Sweep describes a full process map run. Base supplies every build
// parameter the sweep does not touch; Powers and Velocities replace
// BeamPower and ScanVelocity point by point.
type Sweep struct {
	Base     config.BuildParameters
	Material config.MaterialConfig
	Mesh     config.MeshParameters
	Segments []segmenter.Segment

	// Powers in watts, Velocities in metres per second.
	Powers     []float64
	Velocities []float64

	// Workers caps concurrent simulations. Zero or negative uses GOMAXPROCS.
	Workers int

	QuadraturePoints int
}

// Points expands the sweep into its cartesian product, powers outermost.
func (s *Sweep) Points() []Point {
	points := make([]Point, 0, len(s.Powers)*len(s.Velocities))
	for _, p := range s.Powers {
		for _, v := range s.Velocities {
			points = append(points, Point{BeamPower: p, ScanVelocity: v})
		}
	}
	return points
}

// Run simulates every sweep point and returns results sorted by power then
// velocity. Per-point simulation failures land in PointResult.Err; only
// sweep-level problems (empty sweep, cancellation) fail the whole run.
func (s *Sweep) Run(ctx context.Context) ([]PointResult, error) {
	points := s.Points()
	if len(points) == 0 {
		return nil, fmt.Errorf("empty sweep: no power and velocity combinations")
	}
	if len(s.Segments) == 0 {
		return nil, fmt.Errorf("empty sweep: no segments to simulate")
	}
	if err := s.Material.Validate(); err != nil {
		return nil, err
	}

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(points) {
		workers = len(points)
	}

	meltTemperature := s.Material.TemperatureMelt.SI()
	jobs := make(chan Point)
	results := make(chan PointResult, len(points))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				results <- s.runPoint(ctx, p, meltTemperature)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, p := range points {
			select {
			case jobs <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sweep cancelled: %w", err)
	}

	out := make([]PointResult, 0, len(points))
	for r := range results {
		if r.Err != nil {
			log.Printf("[procmap] point P=%gW v=%gm/s failed: %v", r.Point.BeamPower, r.Point.ScanVelocity, r.Err)
		}
		out = append(out, r)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Point.BeamPower != out[b].Point.BeamPower {
			return out[a].Point.BeamPower < out[b].Point.BeamPower
		}
		return out[a].Point.ScanVelocity < out[b].Point.ScanVelocity
	})
	return out, nil
}

func (s *Sweep) runPoint(ctx context.Context, p Point, meltTemperature float64) PointResult {
	build := s.Base
	build.BeamPower = units.Q(p.BeamPower, units.Watt)
	build.ScanVelocity = units.Q(p.ScanVelocity, units.MeterPerSecond)

	result, err := solver.RunLayer(ctx, s.Segments, build, s.Material, s.Mesh, solver.RunOptions{
		Name:             fmt.Sprintf("procmap_P%g_v%g", p.BeamPower, p.ScanVelocity),
		QuadraturePoints: s.QuadraturePoints,
	})
	if err != nil {
		return PointResult{Point: p, Err: err}
	}

	pool, err := MeasureMeltPool(result.Mesh, meltTemperature)
	if errors.Is(err, ErrNotMelted) {
		return PointResult{Point: p, MeltPool: pool, Melted: false}
	}
	if err != nil {
		return PointResult{Point: p, Err: err}
	}
	return PointResult{Point: p, MeltPool: pool, Melted: true}
}
