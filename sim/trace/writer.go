package trace

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Output file names written by WriteDir.
const (
	PositionsFile  = "positions.csv"
	LogsFile       = "log.jsonl"
	MonitoringFile = "monitoring.csv"
	RoutingFile    = "routing.csv"
	SummaryFile    = "summary.json"
)

var (
	positionsHeader  = []string{"vehicle", "time", "longitude", "latitude"}
	monitoringHeader = []string{"time", "day", "total_level", "mean_fill_ratio", "max_fill_ratio", "sites_above_threshold", "sites_over_capacity"}
	routingHeader    = []string{"time", "day", "optimizer_called", "plan_days", "remaining_days", "assigned", "skipped", "error"}
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WritePositionsCSV writes position samples as vehicle,time,longitude,latitude rows.
func WritePositionsCSV(w io.Writer, samples []PositionSample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(positionsHeader); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{strconv.Itoa(s.Vehicle), formatFloat(s.Time), formatFloat(s.Longitude), formatFloat(s.Latitude)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMonitoringCSV writes one row per daily monitoring snapshot.
func WriteMonitoringCSV(w io.Writer, records []MonitoringRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(monitoringHeader); err != nil {
		return err
	}
	for _, m := range records {
		row := []string{
			formatFloat(m.Time),
			strconv.Itoa(m.Day),
			formatFloat(m.TotalLevel),
			formatFloat(m.MeanFillRatio),
			formatFloat(m.MaxFillRatio),
			strconv.Itoa(m.SitesAboveThreshold),
			strconv.Itoa(m.SitesOverCapacity),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRoutingCSV writes one row per routing tick.
func WriteRoutingCSV(w io.Writer, records []RoutingRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(routingHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			formatFloat(r.Time),
			strconv.Itoa(r.Day),
			strconv.FormatBool(r.OptimizerCalled),
			strconv.Itoa(r.PlanDays),
			strconv.Itoa(r.RemainingDays),
			strconv.Itoa(r.Assigned),
			strconv.Itoa(r.Skipped),
			r.Error,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLogsJSONL writes the log event stream, one JSON object per line.
func WriteLogsJSONL(w io.Writer, logs []LogRecord) error {
	enc := json.NewEncoder(w)
	for _, l := range logs {
		if err := enc.Encode(l); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummaryJSON writes the run summary as indented JSON.
func WriteSummaryJSON(w io.Writer, summary *RunSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// WriteDir writes every telemetry stream and the summary into dir, creating it if needed.
func WriteDir(dir string, st *SimulationTrace, summary *RunSummary) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if st == nil {
		st = NewSimulationTrace()
	}
	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{PositionsFile, func(w io.Writer) error { return WritePositionsCSV(w, st.Positions) }},
		{LogsFile, func(w io.Writer) error { return WriteLogsJSONL(w, st.Logs) }},
		{MonitoringFile, func(w io.Writer) error { return WriteMonitoringCSV(w, st.Monitoring) }},
		{RoutingFile, func(w io.Writer) error { return WriteRoutingCSV(w, st.Routings) }},
		{SummaryFile, func(w io.Writer) error { return WriteSummaryJSON(w, summary) }},
	}
	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.name), f.write); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
