package sim

import (
	"context"
	"math"
)

// newLineNetwork places n pickup sites at lon=i and one depot at lon=n, all on
// lat 0. Every leg takes legMinutes and covers 1000 m per unit of index distance.
// Sites start empty with capacity 10 and no listeners.
func newLineNetwork(n int, legMinutes float64) *Network {
	sites := make([]Coordinates, n)
	for i := range sites {
		sites[i] = Coordinates{Lon: float64(i)}
	}
	table := NewLocationTable(sites, nil, []Coordinates{{Lon: float64(n)}})
	m := NewMatrix(table.Len())
	for i := 0; i < table.Len(); i++ {
		for j := 0; j < table.Len(); j++ {
			if i != j {
				m.Durations[i][j] = legMinutes
				m.Distances[i][j] = 1000 * math.Abs(float64(i-j))
			}
		}
	}
	net := &Network{Locations: table, Matrix: m}
	for i := 0; i < n; i++ {
		net.Sites = append(net.Sites, NewPickupSite(i, i, 10, 0, 1, nil, nil))
	}
	return net
}

// uniformMatrix returns an n×n matrix with every off-diagonal leg equal.
func uniformMatrix(n int, meters, minutes float64) *Matrix {
	m := NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				m.Distances[i][j] = meters
				m.Durations[i][j] = minutes
			}
		}
	}
	return m
}

// countingOptimizer returns a fixed output and counts calls.
type countingOptimizer struct {
	calls  int
	output func(in *RoutingInput) *RoutingOutput
	err    error
}

func (o *countingOptimizer) Optimize(_ context.Context, in *RoutingInput) (*RoutingOutput, error) {
	o.calls++
	if o.err != nil {
		return nil, o.err
	}
	if o.output == nil {
		return &RoutingOutput{}, nil
	}
	return o.output(in), nil
}

// emptyDays returns an output of n days with no routes.
func emptyDays(n int) func(*RoutingInput) *RoutingOutput {
	return func(in *RoutingInput) *RoutingOutput {
		out := &RoutingOutput{Days: make([]RoutingOutputDay, n)}
		for d := range out.Days {
			out.Days[d].Vehicles = make([]RoutingOutputVehicle, len(in.Vehicles))
		}
		return out
	}
}

// thresholdPlanner sends each vehicle, one day at a time, from its home depot
// through the sites above threshold (round-robin over vehicles) and back.
func thresholdPlanner(threshold float64) func(*RoutingInput) *RoutingOutput {
	return func(in *RoutingInput) *RoutingOutput {
		day := RoutingOutputDay{Vehicles: make([]RoutingOutputVehicle, len(in.Vehicles))}
		v := 0
		for _, s := range in.PickupSites {
			if s.Level < threshold*s.Capacity {
				continue
			}
			home := in.Depots[in.Vehicles[v].HomeDepotIndex].LocationIndex
			r := day.Vehicles[v].Route
			if len(r) == 0 {
				r = []int{home}
			}
			day.Vehicles[v].Route = append(r, s.LocationIndex)
			v = (v + 1) % len(in.Vehicles)
		}
		for i := range day.Vehicles {
			if len(day.Vehicles[i].Route) > 0 {
				home := in.Depots[in.Vehicles[i].HomeDepotIndex].LocationIndex
				day.Vehicles[i].Route = append(day.Vehicles[i].Route, home)
			}
		}
		return &RoutingOutput{Days: []RoutingOutputDay{day}}
	}
}

// newTestSimulator builds a simulator over the default scenario with a uniform matrix.
func newTestSimulator(cfg Config, opt RouteOptimizer) (*Simulator, error) {
	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	table := BuildLocationTable(cfg.Area, rng.ForSubsystem(SubsystemArea))
	return NewSimulator(cfg, table, uniformMatrix(table.Len(), 2000, 20), opt, rng)
}
