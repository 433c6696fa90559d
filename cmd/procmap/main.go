// Command procmap sweeps beam power and scan velocity over a fixed
// toolpath and writes the measured melt pool dimensions as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/meltpool.report/internal/config"
	"github.com/banshee-data/meltpool.report/internal/procmap"
	"github.com/banshee-data/meltpool.report/internal/segmenter"
	"github.com/banshee-data/meltpool.report/internal/version"
)

func main() {
	var (
		segmentsPath = flag.String("segments", "", "segment JSON produced by the segment command (required)")
		buildPath    = flag.String("build", "", "build parameters JSON; empty uses defaults")
		materialPath = flag.String("material", "", "material config JSON; empty uses defaults")
		meshPath     = flag.String("mesh", "", "mesh parameters JSON; empty uses defaults")
		powerSpec    = flag.String("power", "100:400:100", "beam power sweep, watts, min:max:step")
		velocitySpec = flag.String("velocity", "0.4:1.2:0.4", "scan velocity sweep, m/s, min:max:step")
		workers      = flag.Int("workers", 0, "concurrent simulations; 0 uses all CPUs")
		quadPoints   = flag.Int("quadrature-points", 0, "override heat source quadrature order")
		outPath      = flag.String("out", "procmap.json", "output file for sweep results")
	)
	flag.Parse()
	log.Printf("[procmap] version %s", version.String())

	if *segmentsPath == "" {
		log.Fatal("[procmap] -segments is required")
	}

	powers, err := procmap.ParseRangeSpec(*powerSpec)
	if err != nil {
		log.Fatalf("[procmap] invalid -power: %v", err)
	}
	velocities, err := procmap.ParseRangeSpec(*velocitySpec)
	if err != nil {
		log.Fatalf("[procmap] invalid -velocity: %v", err)
	}

	build := config.DefaultBuildParameters()
	material := config.DefaultMaterialConfig()
	meshParams := config.DefaultMeshParameters()
	loadConfig(*buildPath, &build)
	loadConfig(*materialPath, &material)
	loadConfig(*meshPath, &meshParams)

	segments, err := segmenter.LoadSegments(*segmentsPath)
	if err != nil {
		log.Fatalf("[procmap] failed to load segments: %v", err)
	}

	sweep := &procmap.Sweep{
		Base:             build,
		Material:         material,
		Mesh:             meshParams,
		Segments:         segments,
		Powers:           powers.Values(),
		Velocities:       velocities.Values(),
		Workers:          *workers,
		QuadraturePoints: *quadPoints,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("[procmap] sweeping %d points over %d segments", len(sweep.Points()), len(segments))
	results, err := sweep.Run(ctx)
	if err != nil {
		log.Fatalf("[procmap] sweep failed: %v", err)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		log.Fatalf("[procmap] failed to encode results: %v", err)
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		log.Fatalf("[procmap] failed to write %s: %v", *outPath, err)
	}
	log.Printf("[procmap] wrote %d results (%d failed) to %s", len(results), failed, *outPath)
}

func loadConfig(path string, dst interface{}) {
	if path == "" {
		return
	}
	if err := config.Load(path, dst); err != nil {
		log.Fatalf("[procmap] failed to load config %s: %v", path, err)
	}
}
