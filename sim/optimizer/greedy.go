package optimizer

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/hamk-uas/logistics-sim/sim"
)

// Greedy plans HorizonDays days of nearest-neighbour routes.
//
// For each day, sites whose projected level reaches Threshold·capacity are
// candidates. Vehicles are planned in index order: each leaves its home depot,
// repeatedly drives to the nearest candidate (ties broken by lower site index)
// that still fits its remaining load and its route duration including the
// pickup dwell and the drive back, and finally returns to the depot. A vehicle
// with no feasible candidate gets an empty route for the day.
//
// Levels are projected forward with each site's growth rate and reduced by the
// planned pickups, so later days see the effect of earlier ones.
type Greedy struct {
	Threshold   float64 // fraction of capacity that makes a site a candidate
	HorizonDays int
}

// Optimize implements sim.RouteOptimizer.
func (g *Greedy) Optimize(ctx context.Context, in *sim.RoutingInput) (*sim.RoutingOutput, error) {
	if g.HorizonDays <= 0 {
		return nil, fmt.Errorf("greedy optimizer: horizon_days must be positive, got %d", g.HorizonDays)
	}
	for i, v := range in.Vehicles {
		if v.HomeDepotIndex < 0 || v.HomeDepotIndex >= len(in.Depots) {
			return nil, fmt.Errorf("greedy optimizer: vehicle %d home depot index %d out of range", i, v.HomeDepotIndex)
		}
	}

	levels := lo.Map(in.PickupSites, func(s sim.RoutingInputPickupSite, _ int) float64 { return s.Level })
	out := &sim.RoutingOutput{Days: make([]sim.RoutingOutputDay, 0, g.HorizonDays)}

	for d := 0; d < g.HorizonDays; d++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d > 0 {
			for i, s := range in.PickupSites {
				levels[i] += s.GrowthRate * sim.MinutesPerDay
			}
		}
		out.Days = append(out.Days, g.planDay(in, levels))
	}
	return out, nil
}

// planDay builds one day of routes and subtracts the planned pickups from levels.
func (g *Greedy) planDay(in *sim.RoutingInput, levels []float64) sim.RoutingOutputDay {
	claimed := make([]bool, len(in.PickupSites))
	day := sim.RoutingOutputDay{Vehicles: make([]sim.RoutingOutputVehicle, len(in.Vehicles))}

	for vi, v := range in.Vehicles {
		depot := in.Depots[v.HomeDepotIndex].LocationIndex
		current := depot
		var elapsed, load float64
		var stops []int

		for load < v.LoadCapacity {
			feasible := lo.Filter(lo.Range(len(in.PickupSites)), func(si int, _ int) bool {
				s := in.PickupSites[si]
				if claimed[si] || levels[si] <= 0 || levels[si] < g.Threshold*s.Capacity {
					return false
				}
				total := elapsed + in.DurationMatrix[current][s.LocationIndex] + v.PickupDuration + in.DurationMatrix[s.LocationIndex][depot]
				return total <= v.MaxRouteDuration
			})
			if len(feasible) == 0 {
				break
			}
			next := lo.MinBy(feasible, func(a, b int) bool {
				return in.DurationMatrix[current][in.PickupSites[a].LocationIndex] < in.DurationMatrix[current][in.PickupSites[b].LocationIndex]
			})

			loc := in.PickupSites[next].LocationIndex
			amount := min(levels[next], v.LoadCapacity-load)
			elapsed += in.DurationMatrix[current][loc] + v.PickupDuration
			load += amount
			levels[next] -= amount
			claimed[next] = true
			stops = append(stops, loc)
			current = loc
		}

		if len(stops) > 0 {
			route := make([]int, 0, len(stops)+2)
			route = append(route, depot)
			route = append(route, stops...)
			route = append(route, depot)
			day.Vehicles[vi].Route = route
		} else {
			day.Vehicles[vi].Route = []int{}
		}
	}
	return day
}
