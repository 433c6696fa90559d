// Command segment parses a toolpath file and splits its drawing moves into
// solver-ready segments.
package main

import (
	"flag"
	"log"

	"github.com/banshee-data/meltpool.report/internal/segmenter"
	"github.com/banshee-data/meltpool.report/internal/units"
)

func main() {
	var (
		gcodePath = flag.String("gcode", "", "toolpath file to parse (required)")
		unit      = flag.String("unit", "millimeter", "length unit of toolpath coordinates")
		maxLength = flag.Float64("max-segment-length", 1.0, "maximum sub-segment length, in -unit")
		layer     = flag.Int("layer", -1, "only emit this layer (0-based); -1 emits all layers")
		outPath   = flag.String("out", "segments.json", "output file for segment JSON")
	)
	flag.Parse()

	if *gcodePath == "" {
		log.Fatal("[segment] -gcode is required")
	}
	if !units.IsValid(*unit) {
		log.Fatalf("[segment] unknown unit %q", *unit)
	}

	toolpath, err := segmenter.ParseFile(*gcodePath, *unit)
	if err != nil {
		log.Fatalf("[segment] failed to parse %s: %v", *gcodePath, err)
	}
	log.Printf("[segment] parsed %d commands, %d layers, %d lines skipped",
		len(toolpath.Commands), len(toolpath.LayerChangeIndexes)+1, toolpath.SkippedLines)

	commands := toolpath.Commands
	if *layer >= 0 {
		layers := toolpath.Layers()
		if *layer >= len(layers) {
			log.Fatalf("[segment] layer %d out of range (%d layers)", *layer, len(layers))
		}
		commands = layers[*layer]
	}

	segments, err := segmenter.SegmentCommands(commands, units.Q(*maxLength, *unit))
	if err != nil {
		log.Fatalf("[segment] failed to segment commands: %v", err)
	}

	if err := segmenter.SaveSegments(*outPath, segments); err != nil {
		log.Fatalf("[segment] failed to write %s: %v", *outPath, err)
	}
	log.Printf("[segment] wrote %d segments to %s", len(segments), *outPath)
}
