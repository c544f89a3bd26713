package sim

import (
	"errors"
	"fmt"
	"math"
)

// Route contract errors returned by Vehicle.AssignRoute.
var (
	ErrVehicleBusy     = errors.New("vehicle is still executing its previous route")
	ErrEmptyRoute      = errors.New("route is empty")
	ErrUnknownLocation = errors.New("route references an unknown location")
)

// Network is the immutable world a vehicle drives through.
type Network struct {
	Locations *LocationTable
	Matrix    *Matrix
	Sites     []*PickupSite // indexed by pickup site index
}

// SiteAt returns the pickup site at location index i, if i is a pickup site.
func (n *Network) SiteAt(i int) (*PickupSite, bool) {
	loc := n.Locations.At(i)
	if loc.Kind != KindPickupSite || loc.KindIndex >= len(n.Sites) {
		return nil, false
	}
	return n.Sites[loc.KindIndex], true
}

// VehiclePhase is the state of the vehicle route state machine.
type VehiclePhase int

const (
	// PhaseIdle: parked at LocationIndex, no route.
	PhaseIdle VehiclePhase = iota
	// PhaseTravelling: driving the leg Source → Dest.
	PhaseTravelling
	// PhaseDwelling: loading at a pickup site.
	PhaseDwelling
)

// String returns the phase name.
func (p VehiclePhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseTravelling:
		return "travelling"
	case PhaseDwelling:
		return "dwelling"
	default:
		return "unknown"
	}
}

// VehicleSpec is the per-vehicle template taken from the scenario.
type VehicleSpec struct {
	LoadCapacity     float64 // tonnes
	MaxRouteDuration float64 // minutes
	PickupDuration   float64 // minutes per pickup stop
}

// Vehicle is a collection truck anchored to a home depot.
//
// A vehicle executes one route at a time as a timed process. Moving is true
// from route start until the last stop has been handled, including dwell
// time at pickup sites.
type Vehicle struct {
	Index          int
	HomeDepot      int // location index
	HomeDepotIndex int // depot index among depots
	VehicleSpec

	LoadLevel     float64
	Moving        bool
	LocationIndex int     // current or last reached stop
	Source        int     // current leg origin (valid while travelling)
	Dest          int     // current leg destination (valid while travelling)
	DepartureTime float64 // current leg departure time
	LegDuration   float64 // current leg planned duration

	Odometer        float64 // meters
	TotalRunTime    float64 // minutes spent on routes
	Overtime        float64 // minutes beyond MaxRouteDuration
	RoutesCompleted int
	RoutesRejected  int
	Overloads       int
	Collected       float64 // tonnes picked up over the run

	phase      VehiclePhase
	route      []int
	step       int
	routeStart float64

	net *Network
	log Logger
}

// NewVehicle creates a vehicle parked at its home depot. log may be nil.
func NewVehicle(index, homeDepot int, spec VehicleSpec, net *Network, log Logger) *Vehicle {
	loc := net.Locations.At(homeDepot)
	return &Vehicle{
		Index:          index,
		HomeDepot:      homeDepot,
		HomeDepotIndex: loc.KindIndex,
		VehicleSpec:    spec,
		LocationIndex:  homeDepot,
		Source:         homeDepot,
		Dest:           homeDepot,
		net:            net,
		log:            orNop(log),
	}
}

// Phase returns the current state machine phase.
func (v *Vehicle) Phase() VehiclePhase {
	return v.phase
}

// Route returns a copy of the route being executed, nil when idle.
func (v *Vehicle) Route() []int {
	if v.route == nil {
		return nil
	}
	return append([]int(nil), v.route...)
}

// AssignRoute starts executing route at the current virtual time.
// The route is rejected if the previous one has not completed.
func (v *Vehicle) AssignRoute(s *Scheduler, route []int) error {
	if v.Moving {
		v.RoutesRejected++
		return ErrVehicleBusy
	}
	if len(route) == 0 {
		return ErrEmptyRoute
	}
	for _, idx := range route {
		if !v.net.Locations.Valid(idx) {
			return fmt.Errorf("%w: %d", ErrUnknownLocation, idx)
		}
	}

	v.route = append([]int(nil), route...)
	v.step = 0
	v.routeStart = s.Now()
	v.Moving = true
	v.phase = PhaseIdle
	v.log.Infof("Route assigned: %v", v.route)
	s.Start(v)
	return nil
}

// Resume implements Process.
func (v *Vehicle) Resume(s *Scheduler) {
	switch v.phase {
	case PhaseIdle:
		v.advance(s)
	case PhaseTravelling:
		v.arrive(s)
	case PhaseDwelling:
		v.phase = PhaseIdle
		v.step++
		v.advance(s)
	}
}

// advance departs for the next stop that differs from the current location,
// or finishes the route. Stops equal to the current location are skipped, so
// a leading home-depot stop causes no movement and consecutive duplicate stops
// are collapsed into one visit with a single pickup.
func (v *Vehicle) advance(s *Scheduler) {
	for v.step < len(v.route) && v.route[v.step] == v.LocationIndex {
		v.step++
	}
	if v.step >= len(v.route) {
		v.finish(s)
		return
	}

	next := v.route[v.step]
	v.Source = v.LocationIndex
	v.Dest = next
	v.DepartureTime = s.Now()
	v.LegDuration = v.net.Matrix.Duration(v.Source, v.Dest)
	v.phase = PhaseTravelling
	v.log.Debugf("Departing from %s to %s.", v.net.Locations.Describe(v.Source), v.net.Locations.Describe(v.Dest))
	s.Timeout(v.LegDuration, v)
}

// arrive handles reaching Dest: pickup (with dwell), depot dump or terminal pass.
func (v *Vehicle) arrive(s *Scheduler) {
	v.Odometer += v.net.Matrix.Distance(v.Source, v.Dest)
	v.LocationIndex = v.Dest
	loc := v.net.Locations.At(v.Dest)
	v.log.Debugf("Arrived at %s.", v.net.Locations.Describe(v.Dest))

	switch loc.Kind {
	case KindPickupSite:
		site, ok := v.net.SiteAt(v.Dest)
		if ok && site.Level > 0 {
			amount := math.Max(math.Min(site.Level, v.LoadCapacity-v.LoadLevel), 0)
			site.Get(amount)
			v.putLoad(amount)
			v.log.Infof("Picked up %s from pickup site #%d.", FormatTons(amount), site.Index)
			v.phase = PhaseDwelling
			s.Timeout(v.PickupDuration, v)
			return
		}
	case KindDepot:
		if v.LoadLevel > 0 {
			v.log.Infof("Unloaded %s at depot #%d.", FormatTons(v.LoadLevel), loc.KindIndex)
		}
		v.LoadLevel = 0
	case KindTerminal:
		v.log.Debugf("Passed terminal #%d, load is kept until the depot.", loc.KindIndex)
	}

	v.phase = PhaseIdle
	v.step++
	v.advance(s)
}

func (v *Vehicle) finish(s *Scheduler) {
	elapsed := s.Now() - v.routeStart
	v.TotalRunTime += elapsed
	v.Moving = false
	v.phase = PhaseIdle
	v.route = nil
	v.step = 0
	v.RoutesCompleted++
	if elapsed > v.MaxRouteDuration {
		v.Overtime += elapsed - v.MaxRouteDuration
		v.log.Warnf("Route took %.1f min, over the maximum of %.1f min.", elapsed, v.MaxRouteDuration)
	}
	v.log.Infof("Route completed in %.1f min at %s.", elapsed, v.net.Locations.Describe(v.LocationIndex))
}

// putLoad increases the load. An overload is reported but never blocked.
func (v *Vehicle) putLoad(amount float64) {
	v.LoadLevel += amount
	v.Collected += amount
	v.log.Debugf("Load level increased to %s / %s (%s)", FormatTons(v.LoadLevel), FormatTons(v.LoadCapacity), FormatPercent(v.LoadLevel/v.LoadCapacity))
	if v.LoadLevel > v.LoadCapacity+levelEpsilon {
		v.Overloads++
		v.log.Warnf("Overload: %s exceeds capacity %s.", FormatTons(v.LoadLevel), FormatTons(v.LoadCapacity))
	}
}

// Position returns the vehicle coordinates at virtual time now. While
// travelling, the position is interpolated along the leg by elapsed fraction,
// clamped to the destination.
func (v *Vehicle) Position(now float64) Coordinates {
	locs := v.net.Locations
	if v.phase != PhaseTravelling {
		return locs.At(v.LocationIndex).Coordinates
	}
	f := 1.0
	if v.LegDuration > 0 {
		f = math.Min(math.Max((now-v.DepartureTime)/v.LegDuration, 0), 1)
	}
	return locs.At(v.Source).Coordinates.Lerp(locs.At(v.Dest).Coordinates, f)
}
