package matrix

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamk-uas/logistics-sim/sim"
)

func TestFileProvider_ReadsWrittenMatrix(t *testing.T) {
	// GIVEN a 2×2 matrix written to disk for two locations
	path := filepath.Join(t.TempDir(), "matrix.json")
	coords := lineCoords(2)
	m := sim.NewMatrix(2)
	m.Distances[0][1], m.Distances[1][0] = 1200, 1300
	m.Durations[0][1], m.Durations[1][0] = 2.5, 3
	require.NoError(t, WriteFile(path, coords, m))

	// WHEN a file provider reads it for the same locations
	got, err := (&FileProvider{Path: path}).Matrix(context.Background(), coords)

	// THEN the contents round-trip
	require.NoError(t, err)
	assert.Equal(t, m.Distances, got.Distances)
	assert.Equal(t, m.Durations, got.Durations)
}

func TestFileProvider_OtherLocations_ReturnsError(t *testing.T) {
	// GIVEN a matrix file built for one placement of two locations
	path := filepath.Join(t.TempDir(), "matrix.json")
	require.NoError(t, WriteFile(path, lineCoords(2), sim.NewMatrix(2)))
	moved := []sim.Coordinates{{Lon: 0, Lat: 60}, {Lon: 1.5, Lat: 60.1}}

	// WHEN it is requested for a different placement of the same size
	_, err := (&FileProvider{Path: path}).Matrix(context.Background(), moved)

	// THEN the mismatch is reported instead of returning wrong distances
	require.Error(t, err)
	assert.Contains(t, err.Error(), "other locations")
}

func TestFileProvider_SizeMismatch_ReturnsError(t *testing.T) {
	// GIVEN a 2×2 matrix file
	path := filepath.Join(t.TempDir(), "matrix.json")
	require.NoError(t, WriteFile(path, lineCoords(2), sim.NewMatrix(2)))

	// WHEN it is requested for three locations
	_, err := (&FileProvider{Path: path}).Matrix(context.Background(), lineCoords(3))

	// THEN it is rejected
	assert.Error(t, err)
}

func TestFileProvider_NoCoordinates_ReturnsError(t *testing.T) {
	// GIVEN a bare matrix file without the coordinates it was built for
	path := filepath.Join(t.TempDir(), "matrix.json")
	body := `{"distance_matrix": [[0, 5], [5, 0]], "duration_matrix": [[0, 1], [1, 0]]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	// WHEN a provider reads it
	_, err := (&FileProvider{Path: path}).Matrix(context.Background(), lineCoords(2))

	// THEN it is refused since the locations cannot be checked
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no coordinates")
}

func TestReadFile_UsesDistanceAndDurationKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matrix.json")
	body := `{"coordinates": [{"lon": 22.2, "lat": 60.4}, {"lon": 22.3, "lat": 60.5}],
		"distance_matrix": [[0, 5], [5, 0]], "duration_matrix": [[0, 1], [1, 0]]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	f, err := ReadFile(path)

	require.NoError(t, err)
	assert.Equal(t, 5.0, f.Distance(0, 1))
	assert.Equal(t, 1.0, f.Duration(1, 0))
	assert.Equal(t, sim.Coordinates{Lon: 22.3, Lat: 60.5}, f.Coordinates[1])
}

func TestReadFile_MissingFile_ReturnsError(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
