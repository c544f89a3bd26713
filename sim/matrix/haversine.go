package matrix

import (
	"context"
	"fmt"
	"math"

	"github.com/hamk-uas/logistics-sim/sim"
)

const earthRadiusMeters = 6371008.8

// HaversineProvider estimates road distance as great-circle distance times
// RoadFactor, driven at a constant SpeedKmh. Used for offline runs.
type HaversineProvider struct {
	RoadFactor float64
	SpeedKmh   float64
}

// Matrix implements Provider.
func (h *HaversineProvider) Matrix(_ context.Context, coords []sim.Coordinates) (*sim.Matrix, error) {
	if h.SpeedKmh <= 0 || h.RoadFactor <= 0 {
		return nil, fmt.Errorf("haversine provider needs positive speed and road factor, got %v km/h and %v", h.SpeedKmh, h.RoadFactor)
	}
	metersPerMinute := h.SpeedKmh * 1000 / 60
	n := len(coords)
	m := sim.NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := Haversine(coords[i], coords[j]) * h.RoadFactor
			m.Distances[i][j], m.Distances[j][i] = d, d
			m.Durations[i][j], m.Durations[j][i] = d/metersPerMinute, d/metersPerMinute
		}
	}
	return m, nil
}

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b sim.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	s := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(s)))
}
