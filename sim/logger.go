package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/hamk-uas/logistics-sim/sim/trace"
)

// Logger is the log sink entities write to.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// nopLogger discards everything. Used when an entity is built without a simulator.
type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}

func orNop(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	return l
}

// FormatTime renders virtual minutes as "  3d 04:05".
func FormatTime(minutes float64) string {
	total := int(math.Floor(minutes))
	days := total / MinutesPerDay
	hours := (total % MinutesPerDay) / 60
	mins := total % 60
	return fmt.Sprintf("%3dd %02d:%02d", days, hours, mins)
}

// FormatTons renders a mass as "1.234t".
func FormatTons(tons float64) string {
	return fmt.Sprintf("%.3ft", tons)
}

// FormatPercent renders a ratio as "80%".
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.0f%%", ratio*100)
}

// eventLog writes time-prefixed lines to logrus and appends them to the trace's
// append-only log stream.
type eventLog struct {
	clock    *Scheduler
	trace    *trace.SimulationTrace
	warnings int
}

func (l *eventLog) record(level logrus.Level, msg string) {
	now := l.clock.Now()
	if l.trace != nil {
		l.trace.RecordLog(trace.LogRecord{Time: now, Level: level.String(), Message: msg})
	}
	if level == logrus.WarnLevel {
		l.warnings++
	}
	logrus.StandardLogger().Logf(level, "%s - %s", FormatTime(now), msg)
}

// entityLog prefixes every message with the entity name, e.g. "Vehicle #1: ".
type entityLog struct {
	log    *eventLog
	prefix string
}

func (e entityLog) Debugf(format string, args ...any) {
	if !logrus.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	e.log.record(logrus.DebugLevel, e.prefix+fmt.Sprintf(format, args...))
}

func (e entityLog) Infof(format string, args ...any) {
	e.log.record(logrus.InfoLevel, e.prefix+fmt.Sprintf(format, args...))
}

func (e entityLog) Warnf(format string, args ...any) {
	e.log.record(logrus.WarnLevel, e.prefix+fmt.Sprintf(format, args...))
}
