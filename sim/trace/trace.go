package trace

// SimulationTrace collects telemetry records during a simulation run.
// All streams are append-only and kept in virtual-time order.
type SimulationTrace struct {
	Logs       []LogRecord
	Positions  []PositionSample
	Monitoring []MonitoringRecord
	Routings   []RoutingRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace() *SimulationTrace {
	return &SimulationTrace{
		Logs:       make([]LogRecord, 0),
		Positions:  make([]PositionSample, 0),
		Monitoring: make([]MonitoringRecord, 0),
		Routings:   make([]RoutingRecord, 0),
	}
}

// RecordLog appends a log event.
func (st *SimulationTrace) RecordLog(record LogRecord) {
	st.Logs = append(st.Logs, record)
}

// RecordPosition appends a vehicle position sample.
func (st *SimulationTrace) RecordPosition(sample PositionSample) {
	st.Positions = append(st.Positions, sample)
}

// RecordMonitoring appends a daily monitoring snapshot.
func (st *SimulationTrace) RecordMonitoring(record MonitoringRecord) {
	st.Monitoring = append(st.Monitoring, record)
}

// RecordRouting appends a routing tick record.
func (st *SimulationTrace) RecordRouting(record RoutingRecord) {
	st.Routings = append(st.Routings, record)
}
