package sim

import (
	"fmt"
	"math"
)

// MinutesPerDay is the length of a daily tick in virtual minutes.
const MinutesPerDay = 24 * 60

// Process is a suspendable unit of simulation work.
// Resume is invoked at the virtual time the process asked to be woken up at.
// A process suspends itself again by calling Scheduler.Timeout before returning;
// a process that returns without scheduling anything has terminated.
type Process interface {
	Resume(s *Scheduler)
}

// ProcessFunc adapts a plain function to the Process interface.
type ProcessFunc func(s *Scheduler)

// Resume implements Process.
func (f ProcessFunc) Resume(s *Scheduler) { f(s) }

// Scheduler owns the virtual clock and the set of suspended processes.
//
// Thread-safety: NOT thread-safe. All processes run on the goroutine calling Run.
type Scheduler struct {
	// Clock is the current virtual time in minutes. It never decreases.
	Clock float64
	// Horizon is the virtual time at which Run stops. Wakeups at or after the
	// horizon are abandoned.
	Horizon float64
	// Resumed counts process resumptions, useful for determinism checks.
	Resumed uint64

	queue   *EventHeap
	nextSeq uint64
}

// NewScheduler creates a scheduler whose run ends at horizon minutes.
// A non-positive horizon means "run until the queue drains".
func NewScheduler(horizon float64) *Scheduler {
	if horizon <= 0 {
		horizon = math.Inf(1)
	}
	return &Scheduler{
		Horizon: horizon,
		queue:   NewEventHeap(),
	}
}

// Now returns the current virtual time in minutes.
func (s *Scheduler) Now() float64 {
	return s.Clock
}

// Timeout suspends p for delay minutes. Processes scheduled for the same
// resume time are resumed in the order Timeout was called.
func (s *Scheduler) Timeout(delay float64, p Process) {
	if delay < 0 || math.IsNaN(delay) {
		panic(fmt.Sprintf("Scheduler.Timeout: invalid delay %v", delay))
	}
	if p == nil {
		panic("Scheduler.Timeout: nil process")
	}
	s.nextSeq++
	s.queue.Schedule(&Wakeup{
		at:      s.Clock + delay,
		seq:     s.nextSeq,
		process: p,
	})
}

// Start registers p to be resumed at the current virtual time.
func (s *Scheduler) Start(p Process) {
	s.Timeout(0, p)
}

// Pending returns the number of suspended processes.
func (s *Scheduler) Pending() int {
	return s.queue.Len()
}

// NextTime returns the resume time of the earliest suspended process.
// ok is false when nothing is pending.
func (s *Scheduler) NextTime() (t float64, ok bool) {
	next := s.queue.Peek()
	if next == nil {
		return 0, false
	}
	return next.at, true
}

// Step resumes the earliest process if its resume time is before until.
// Returns false when nothing was resumed.
func (s *Scheduler) Step(until float64) bool {
	next := s.queue.Peek()
	if next == nil || next.at >= until {
		return false
	}
	s.queue.PopNext()
	s.Clock = next.at
	s.Resumed++
	next.process.Resume(s)
	return true
}

// RunUntil resumes processes in time order until the next wakeup is at or after t,
// then advances the clock to t (if finite and not already passed).
func (s *Scheduler) RunUntil(t float64) {
	for s.Step(t) {
	}
	if !math.IsInf(t, 1) && t > s.Clock {
		s.Clock = t
	}
}

// Run drives the simulation until the horizon. Processes still pending at the
// horizon are abandoned without running further.
func (s *Scheduler) Run() {
	s.RunUntil(s.Horizon)
}
