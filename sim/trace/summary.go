package trace

import (
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	LogCounts          map[string]int `json:"log_counts"` // level → count
	PositionSamples    int            `json:"position_samples"`
	MonitoringDays     int            `json:"monitoring_days"`
	MeanFillRatio      float64        `json:"mean_fill_ratio"`
	PeakFillRatio      float64        `json:"peak_fill_ratio"`
	RoutingTicks       int            `json:"routing_ticks"`
	OptimizerCalls     int            `json:"optimizer_calls"`
	FailedRoutingTicks int            `json:"failed_routing_ticks"`
	RoutesAssigned     int            `json:"routes_assigned"`
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		LogCounts: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	for _, l := range st.Logs {
		summary.LogCounts[l.Level]++
	}
	summary.PositionSamples = len(st.Positions)

	summary.MonitoringDays = len(st.Monitoring)
	if len(st.Monitoring) > 0 {
		means := lo.Map(st.Monitoring, func(m MonitoringRecord, _ int) float64 { return m.MeanFillRatio })
		summary.MeanFillRatio = stat.Mean(means, nil)
		summary.PeakFillRatio = lo.MaxBy(st.Monitoring, func(a, b MonitoringRecord) bool {
			return a.MaxFillRatio > b.MaxFillRatio
		}).MaxFillRatio
	}

	summary.RoutingTicks = len(st.Routings)
	for _, r := range st.Routings {
		if r.OptimizerCalled {
			summary.OptimizerCalls++
		}
		if r.Error != "" {
			summary.FailedRoutingTicks++
		}
		summary.RoutesAssigned += r.Assigned
	}

	return summary
}

// VehicleSummary reports one vehicle's end-of-run counters.
type VehicleSummary struct {
	Index           int     `json:"index"`
	HomeDepot       int     `json:"home_depot"`
	Odometer        float64 `json:"odometer_m"`
	TotalRunTime    float64 `json:"total_run_time_min"`
	Overtime        float64 `json:"overtime_min"`
	RoutesCompleted int     `json:"routes_completed"`
	RoutesRejected  int     `json:"routes_rejected"`
	Overloads       int     `json:"overloads"`
	Collected       float64 `json:"collected_t"`
	LoadLevel       float64 `json:"load_level_t"`
}

// SiteSummary reports one pickup site's end-of-run state.
type SiteSummary struct {
	Index           int     `json:"index"`
	Capacity        float64 `json:"capacity_t"`
	Level           float64 `json:"level_t"`
	DailyGrowthRate float64 `json:"daily_growth_rate_t"`
	Collected       float64 `json:"collected_t"`
	OverflowDays    int     `json:"overflow_days"`
}

// RunSummary is the end-of-run report.
type RunSummary struct {
	RunID          string           `json:"run_id"`
	Scenario       string           `json:"scenario"`
	Seed           uint64           `json:"seed"`
	RuntimeDays    int              `json:"runtime_days"`
	EndTime        float64          `json:"end_time_min"`
	Warnings       int              `json:"warnings"`
	TotalCollected float64          `json:"total_collected_t"`
	TotalDistance  float64          `json:"total_distance_m"`
	OverflowDays   int              `json:"overflow_days"`
	Overloads      int              `json:"overloads"`
	Sites          []SiteSummary    `json:"sites"`
	Vehicles       []VehicleSummary `json:"vehicles"`
	Trace          *TraceSummary    `json:"trace"`
}

// Totals fills the fleet-wide aggregate fields from Sites and Vehicles.
func (r *RunSummary) Totals() {
	r.TotalCollected = lo.SumBy(r.Vehicles, func(v VehicleSummary) float64 { return v.Collected })
	r.TotalDistance = lo.SumBy(r.Vehicles, func(v VehicleSummary) float64 { return v.Odometer })
	r.Overloads = lo.SumBy(r.Vehicles, func(v VehicleSummary) int { return v.Overloads })
	r.OverflowDays = lo.SumBy(r.Sites, func(s SiteSummary) int { return s.OverflowDays })
}
