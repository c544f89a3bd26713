// Package optimizer provides the route optimizers the simulator can call:
// a built-in greedy planner and an adapter for an external optimizer process
// speaking the routing_input.json / routing_output.json file protocol.
package optimizer

import (
	"fmt"
	"time"

	"github.com/hamk-uas/logistics-sim/sim"
)

// New returns the optimizer named by cfg.Routing.Optimizer.
func New(cfg sim.Config) (sim.RouteOptimizer, error) {
	switch cfg.Routing.Optimizer {
	case "greedy":
		return &Greedy{
			Threshold:   cfg.FleetOperator.RelativeLevelThresholdForPickup,
			HorizonDays: cfg.Routing.HorizonDays,
		}, nil
	case "exec":
		if len(cfg.Routing.Command) == 0 {
			return nil, fmt.Errorf("exec optimizer needs routing.command")
		}
		return &Exec{
			Command: cfg.Routing.Command,
			WorkDir: cfg.Routing.WorkDir,
			Timeout: time.Duration(cfg.Routing.TimeoutSeconds * float64(time.Second)),
		}, nil
	default:
		return nil, fmt.Errorf("unknown route optimizer %q", cfg.Routing.Optimizer)
	}
}
