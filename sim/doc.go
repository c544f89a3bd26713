// Package sim provides the discrete-event simulation engine for the waste-collection
// fleet simulator.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - scheduler.go: virtual clock, process wake-ups and the run loop
//   - pickup_site.go: site level, daily growth and level listeners
//   - vehicle.go: vehicle route state machine, pickups and position interpolation
//   - routing.go: RoutingInput/RoutingOutput and the buffered routing plan
//   - simulator.go: construction order and the periodic coordinators
//
// # Architecture
//
// All entity behaviour is expressed as Process values multiplexed onto one virtual
// clock. A process runs until it asks the Scheduler for a Timeout or returns without
// rescheduling (terminated). Only one process runs at any instant, so entity state is
// mutated without locks.
//
// The sim package defines the kernel, the entities and the collaborator interfaces;
// implementations of the collaborators live in sub-packages:
//   - sim/matrix/: distance/duration matrix providers and the SQLite matrix cache
//   - sim/optimizer/: route optimizers (built-in greedy planner, external process)
//   - sim/trace/: telemetry records, summary and writers
//
// # Key Interfaces
//
//   - Process: a suspendable unit of work resumed by the Scheduler
//   - RouteOptimizer: turns a RoutingInput snapshot into days of per-vehicle routes
//   - LevelDispatcher: resolves level-listener handles to handlers
//   - Logger: time-prefixed log sink used by entities
package sim
