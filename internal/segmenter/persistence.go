package segmenter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveSegments writes the ordered segment list as indented JSON. Every
// coordinate is persisted as a magnitude plus unit string so a load
// reconstructs identical values.
func SaveSegments(path string, segments []Segment) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create segments directory: %w", err)
	}
	data, err := json.MarshalIndent(segments, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode segments: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write segments %s: %w", path, err)
	}
	return nil
}

// LoadSegments reads a segment list written by SaveSegments.
func LoadSegments(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read segments %s: %w", path, err)
	}
	var segments []Segment
	if err := json.Unmarshal(data, &segments); err != nil {
		return nil, fmt.Errorf("failed to decode segments %s: %w", path, err)
	}
	return segments, nil
}
