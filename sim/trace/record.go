// Package trace holds the telemetry a simulation run produces: the append-only
// log event stream, vehicle position samples, daily monitoring snapshots and
// routing decisions. This package has no dependencies on sim/ and stores pure data types.
package trace

// LogRecord is one entry of the log event stream.
type LogRecord struct {
	Time    float64 `json:"time"` // virtual minutes
	Level   string  `json:"level"`
	Message string  `json:"message"`
}

// PositionSample captures a vehicle position at a tracking tick.
type PositionSample struct {
	Vehicle   int
	Time      float64
	Longitude float64
	Latitude  float64
}

// MonitoringRecord is the daily fleet-operator snapshot of all pickup sites.
type MonitoringRecord struct {
	Time                float64
	Day                 int
	TotalLevel          float64 // tonnes summed over sites
	MeanFillRatio       float64
	MaxFillRatio        float64
	SitesAboveThreshold int
	SitesOverCapacity   int
}

// RoutingRecord captures one daily routing tick.
type RoutingRecord struct {
	Time            float64
	Day             int
	OptimizerCalled bool
	PlanDays        int // days returned by the optimizer on this tick, 0 if not called
	RemainingDays   int // buffered days left after this tick
	Assigned        int // vehicles that started a route
	Skipped         int // vehicles with a route that could not be started
	Error           string
}
