// Command solver runs a single-layer melt pool simulation over a segment
// file and persists mesh snapshots, plots, and an optional run index.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/banshee-data/meltpool.report/internal/config"
	"github.com/banshee-data/meltpool.report/internal/segmenter"
	"github.com/banshee-data/meltpool.report/internal/solver"
	"github.com/banshee-data/meltpool.report/internal/solver/mesh"
	"github.com/banshee-data/meltpool.report/internal/solver/storage"
	"github.com/banshee-data/meltpool.report/internal/version"
)

func main() {
	var (
		segmentsPath = flag.String("segments", "", "segment JSON produced by the segment command (required)")
		buildPath    = flag.String("build", "", "build parameters JSON; empty uses defaults")
		materialPath = flag.String("material", "", "material config JSON; empty uses defaults")
		meshPath     = flag.String("mesh", "", "mesh parameters JSON; empty uses defaults")
		fitMesh      = flag.Bool("fit-mesh", false, "derive x/y bounds from the toolpath bounding box plus mesh padding")
		initDir      = flag.String("init-config", "", "write default config files to this directory and exit")
		name         = flag.String("name", "", "run name; empty generates one")
		outDir       = flag.String("out", "solver_out", "output directory for mesh snapshots; empty disables snapshots")
		every        = flag.Int("snapshot-every", 1, "persist every Nth segment's mesh")
		quadPoints   = flag.Int("quadrature-points", 0, "override heat source quadrature order; 0 derives from dwell time")
		reportPath   = flag.String("report", "", "write a per-segment peak temperature HTML chart here")
		imagePath    = flag.String("image", "", "write a final free-surface heat map here")
		dbPath       = flag.String("db", "", "sqlite run index; empty disables indexing")
	)
	flag.Parse()
	log.Printf("[solver] version %s", version.String())

	if *initDir != "" {
		writeDefaultConfigs(*initDir)
		return
	}
	if *segmentsPath == "" {
		log.Fatal("[solver] -segments is required")
	}

	build := config.DefaultBuildParameters()
	material := config.DefaultMaterialConfig()
	meshParams := config.DefaultMeshParameters()
	loadConfig(*buildPath, &build)
	loadConfig(*materialPath, &material)
	loadConfig(*meshPath, &meshParams)
	if err := material.Validate(); err != nil {
		log.Fatalf("[solver] invalid material config: %v", err)
	}

	segments, err := segmenter.LoadSegments(*segmentsPath)
	if err != nil {
		log.Fatalf("[solver] failed to load segments: %v", err)
	}
	if len(segments) == 0 {
		log.Fatalf("[solver] %s contains no segments", *segmentsPath)
	}

	if *fitMesh {
		meshParams, err = mesh.FitToSegments(meshParams, segments)
		if err != nil {
			log.Fatalf("[solver] failed to fit mesh bounds: %v", err)
		}
		log.Printf("[solver] fitted mesh to toolpath: x [%s, %s), y [%s, %s)",
			meshParams.X.Start, meshParams.X.End, meshParams.Y.Start, meshParams.Y.End)
	}

	opts := solver.RunOptions{
		Name:             *name,
		OutDir:           *outDir,
		SnapshotEvery:    *every,
		QuadraturePoints: *quadPoints,
	}

	var store *storage.Store
	if *dbPath != "" {
		store, err = storage.Open(*dbPath)
		if err != nil {
			log.Fatalf("[solver] failed to open run index: %v", err)
		}
		defer store.Close()
		opts.Store = store
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := solver.RunLayer(ctx, segments, build, material, meshParams, opts)
	if err != nil {
		log.Fatalf("[solver] run failed: %v", err)
	}

	peak := 0.0
	for _, v := range result.PeakTemperatures {
		if v > peak {
			peak = v
		}
	}

	if store != nil {
		err := store.InsertRun(storage.Run{
			ID:              result.RunID,
			Name:            result.Name,
			Segments:        result.Segments,
			PeakTemperature: peak,
			Elapsed:         result.Elapsed,
		})
		if err != nil {
			log.Printf("[solver] failed to index run: %v", err)
		}
	}

	if *reportPath != "" {
		if err := solver.WriteSegmentReport(*reportPath, result, material.TemperatureMelt.SI()); err != nil {
			log.Fatalf("[solver] %v", err)
		}
		log.Printf("[solver] wrote segment report to %s", *reportPath)
	}
	if *imagePath != "" {
		if err := solver.RenderTopSurface(result.Mesh, result.Name, *imagePath); err != nil {
			log.Fatalf("[solver] %v", err)
		}
		log.Printf("[solver] wrote heat map to %s", *imagePath)
	}
}

func loadConfig(path string, dst interface{}) {
	if path == "" {
		return
	}
	if err := config.Load(path, dst); err != nil {
		log.Fatalf("[solver] failed to load config %s: %v", path, err)
	}
}

func writeDefaultConfigs(dir string) {
	files := map[string]interface{}{
		"build.json":    config.DefaultBuildParameters(),
		"material.json": config.DefaultMaterialConfig(),
		"mesh.json":     config.DefaultMeshParameters(),
	}
	for name, cfg := range files {
		path := filepath.Join(dir, name)
		if err := config.Save(path, cfg); err != nil {
			log.Fatalf("[solver] failed to write %s: %v", path, err)
		}
		log.Printf("[solver] wrote %s", path)
	}
}
