package sim

import (
	"fmt"
	"math"
)

// Matrix holds the distance (meters) and duration (minutes) between every pair of
// locations, indexed by location index. It is supplied whole by a matrix provider
// and is immutable for the lifetime of a run.
type Matrix struct {
	Distances [][]float64 `json:"distance_matrix"`
	Durations [][]float64 `json:"duration_matrix"`
}

// NewMatrix allocates an n×n zero matrix pair.
func NewMatrix(n int) *Matrix {
	m := &Matrix{
		Distances: make([][]float64, n),
		Durations: make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		m.Distances[i] = make([]float64, n)
		m.Durations[i] = make([]float64, n)
	}
	return m
}

// Size returns the number of rows of the distance matrix.
func (m *Matrix) Size() int {
	return len(m.Distances)
}

// Distance returns the distance in meters from location i to location j.
func (m *Matrix) Distance(i, j int) float64 {
	return m.Distances[i][j]
}

// Duration returns the travel time in minutes from location i to location j.
func (m *Matrix) Duration(i, j int) float64 {
	return m.Durations[i][j]
}

// Validate checks that both matrices are n×n with finite non-negative entries.
func (m *Matrix) Validate(n int) error {
	if m == nil {
		return fmt.Errorf("matrix is nil")
	}
	if err := validateSquare("distance", m.Distances, n); err != nil {
		return err
	}
	return validateSquare("duration", m.Durations, n)
}

func validateSquare(name string, rows [][]float64, n int) error {
	if len(rows) != n {
		return fmt.Errorf("%s matrix has %d rows, want %d (sites + terminals + depots)", name, len(rows), n)
	}
	for i, row := range rows {
		if len(row) != n {
			return fmt.Errorf("%s matrix row %d has %d columns, want %d", name, i, len(row), n)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("%s matrix entry [%d][%d] = %v must be finite and non-negative", name, i, j, v)
			}
		}
	}
	return nil
}
