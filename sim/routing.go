package sim

import "context"

// RoutingInputPickupSite is the optimizer's view of one pickup site.
type RoutingInputPickupSite struct {
	Capacity      float64 `json:"capacity"`       // tonnes
	Level         float64 `json:"level"`          // tonnes
	GrowthRate    float64 `json:"growth_rate"`    // tonnes per minute
	LocationIndex int     `json:"location_index"` // row in the matrices
}

// RoutingInputDepot is the optimizer's view of one depot.
type RoutingInputDepot struct {
	LocationIndex int `json:"location_index"`
}

// RoutingInputTerminal is the optimizer's view of one terminal.
type RoutingInputTerminal struct {
	LocationIndex int `json:"location_index"`
}

// RoutingInputVehicle is the optimizer's view of one vehicle.
type RoutingInputVehicle struct {
	LoadCapacity     float64 `json:"load_capacity"`
	HomeDepotIndex   int     `json:"home_depot_index"` // index into RoutingInput.Depots
	MaxRouteDuration float64 `json:"max_route_duration"`
	PickupDuration   float64 `json:"pickup_duration"`
}

// RoutingInput is the snapshot submitted to a route optimizer.
type RoutingInput struct {
	Time           float64                  `json:"time"` // virtual minutes at snapshot
	PickupSites    []RoutingInputPickupSite `json:"pickup_sites"`
	Depots         []RoutingInputDepot      `json:"depots"`
	Terminals      []RoutingInputTerminal   `json:"terminals"`
	Vehicles       []RoutingInputVehicle    `json:"vehicles"`
	DistanceMatrix [][]float64              `json:"distance_matrix"`
	DurationMatrix [][]float64              `json:"duration_matrix"`
}

// RoutingOutputVehicle is one vehicle's route for one day, as location indexes.
type RoutingOutputVehicle struct {
	Route []int `json:"route"`
}

// RoutingOutputDay holds one route per vehicle, indexed by vehicle index.
type RoutingOutputDay struct {
	Vehicles []RoutingOutputVehicle `json:"vehicles"`
}

// RouteFor returns the route of vehicle i, or nil when the day has none.
func (d RoutingOutputDay) RouteFor(i int) []int {
	if i < 0 || i >= len(d.Vehicles) {
		return nil
	}
	return d.Vehicles[i].Route
}

// RoutingOutput is an optimizer response: zero or more consecutive days of routes.
type RoutingOutput struct {
	Days []RoutingOutputDay `json:"days"`
}

// RouteOptimizer produces multi-day route plans.
// Implementations may return zero days; the caller retries on its next tick.
type RouteOptimizer interface {
	Optimize(ctx context.Context, input *RoutingInput) (*RoutingOutput, error)
}

// RouteOptimizerFunc adapts a function to RouteOptimizer.
type RouteOptimizerFunc func(ctx context.Context, input *RoutingInput) (*RoutingOutput, error)

// Optimize implements RouteOptimizer.
func (f RouteOptimizerFunc) Optimize(ctx context.Context, input *RoutingInput) (*RoutingOutput, error) {
	return f(ctx, input)
}

// RoutingPlan buffers optimizer output and hands it out one day at a time.
type RoutingPlan struct {
	days []RoutingOutputDay
	// Requests counts how many outputs have been stored.
	Requests int
}

// Remaining returns the number of buffered days.
func (p *RoutingPlan) Remaining() int {
	return len(p.days)
}

// Refill replaces the buffer with out's days.
func (p *RoutingPlan) Refill(out *RoutingOutput) {
	p.Requests++
	if out == nil {
		p.days = nil
		return
	}
	p.days = append([]RoutingOutputDay(nil), out.Days...)
}

// PopDay removes and returns the first buffered day.
func (p *RoutingPlan) PopDay() (RoutingOutputDay, bool) {
	if len(p.days) == 0 {
		return RoutingOutputDay{}, false
	}
	day := p.days[0]
	p.days = p.days[1:]
	return day, true
}

// NewRoutingInput snapshots the network and fleet at time now.
func NewRoutingInput(now float64, net *Network, vehicles []*Vehicle) *RoutingInput {
	in := &RoutingInput{
		Time:           now,
		PickupSites:    make([]RoutingInputPickupSite, 0, len(net.Sites)),
		Vehicles:       make([]RoutingInputVehicle, 0, len(vehicles)),
		DistanceMatrix: net.Matrix.Distances,
		DurationMatrix: net.Matrix.Durations,
	}
	for _, s := range net.Sites {
		in.PickupSites = append(in.PickupSites, RoutingInputPickupSite{
			Capacity:      s.Capacity,
			Level:         s.Level,
			GrowthRate:    s.DailyGrowthRate / MinutesPerDay,
			LocationIndex: s.LocationIndex,
		})
	}
	for _, idx := range net.Locations.IndexesOf(KindDepot) {
		in.Depots = append(in.Depots, RoutingInputDepot{LocationIndex: idx})
	}
	for _, idx := range net.Locations.IndexesOf(KindTerminal) {
		in.Terminals = append(in.Terminals, RoutingInputTerminal{LocationIndex: idx})
	}
	for _, v := range vehicles {
		in.Vehicles = append(in.Vehicles, RoutingInputVehicle{
			LoadCapacity:     v.LoadCapacity,
			HomeDepotIndex:   v.HomeDepotIndex,
			MaxRouteDuration: v.MaxRouteDuration,
			PickupDuration:   v.PickupDuration,
		})
	}
	if in.Depots == nil {
		in.Depots = []RoutingInputDepot{}
	}
	if in.Terminals == nil {
		in.Terminals = []RoutingInputTerminal{}
	}
	return in
}
