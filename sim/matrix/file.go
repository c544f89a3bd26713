package matrix

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hamk-uas/logistics-sim/sim"
)

// File is the on-disk matrix format: the coordinates the matrix was built for,
// in location order, next to distance_matrix and duration_matrix.
type File struct {
	Coordinates []sim.Coordinates `json:"coordinates"`
	sim.Matrix
}

// FileProvider reads a precomputed matrix from a JSON file written by WriteFile.
type FileProvider struct {
	Path string
}

// Matrix implements Provider. The file must have been built for coords, in
// the same order, within DefaultTolerance.
func (f *FileProvider) Matrix(_ context.Context, coords []sim.Coordinates) (*sim.Matrix, error) {
	file, err := ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	if len(file.Coordinates) == 0 {
		return nil, fmt.Errorf("matrix file %s has no coordinates recorded; re-export it with the matrix command", f.Path)
	}
	if !SameCoordinates(file.Coordinates, coords, DefaultTolerance) {
		return nil, fmt.Errorf("matrix file %s was built for other locations (%d recorded, %d requested); re-export it for this scenario and seed",
			f.Path, len(file.Coordinates), len(coords))
	}
	if err := file.Matrix.Validate(len(coords)); err != nil {
		return nil, fmt.Errorf("matrix file %s: %w", f.Path, err)
	}
	return &file.Matrix, nil
}

// ReadFile decodes a matrix JSON file.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading matrix file: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing matrix file: %w", err)
	}
	return &f, nil
}

// WriteFile encodes m, built for coords, as JSON to path.
func WriteFile(path string, coords []sim.Coordinates, m *sim.Matrix) error {
	data, err := json.Marshal(File{Coordinates: coords, Matrix: *m})
	if err != nil {
		return fmt.Errorf("encoding matrix: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing matrix file: %w", err)
	}
	return nil
}
