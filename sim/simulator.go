// sim/simulator.go
package sim

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/hamk-uas/logistics-sim/sim/trace"
)

// Simulator owns the clock, the location table, every entity and the three
// periodic coordinators: daily monitoring, daily routing and position tracking.
type Simulator struct {
	Config   Config
	Sched    *Scheduler
	Network  *Network
	Sites    []*PickupSite
	Vehicles []*Vehicle
	Plan     *RoutingPlan
	Trace    *trace.SimulationTrace
	RunID    string

	// SiteFullEvents counts site-full notifications.
	SiteFullEvents int
	// OptimizerFailures counts routing ticks where the optimizer errored or returned no days.
	OptimizerFailures int

	optimizer RouteOptimizer
	handlers  HandlerTable
	log       *eventLog
	ctx       context.Context
}

// NewSimulator builds a ready-to-run simulation. Configuration errors are
// returned before anything is scheduled.
//
// Construction order: location table (given) → pickup sites with their growth
// processes → vehicles anchored to depots → site listeners → monitoring,
// routing and tracking coordinators.
func NewSimulator(cfg Config, table *LocationTable, matrix *Matrix, optimizer RouteOptimizer, rng *PartitionedRNG) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if table == nil {
		return nil, fmt.Errorf("location table is nil")
	}
	if table.Count(KindPickupSite) == 0 || table.Count(KindDepot) == 0 {
		return nil, fmt.Errorf("location table needs at least one pickup site and one depot, got %d and %d",
			table.Count(KindPickupSite), table.Count(KindDepot))
	}
	if err := matrix.Validate(table.Len()); err != nil {
		return nil, fmt.Errorf("invalid matrix: %w", err)
	}
	if optimizer == nil {
		return nil, fmt.Errorf("route optimizer is nil")
	}
	if rng == nil {
		rng = NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	}

	sched := NewScheduler(float64(cfg.Sim.RuntimeDays) * MinutesPerDay)
	st := trace.NewSimulationTrace()
	s := &Simulator{
		Config:    cfg,
		Sched:     sched,
		Plan:      &RoutingPlan{},
		Trace:     st,
		RunID:     uuid.NewString(),
		optimizer: optimizer,
		log:       &eventLog{clock: sched, trace: st},
		ctx:       context.Background(),
	}
	s.handlers = HandlerTable{
		HandleSiteNeedsPickup: s.onSiteNeedsPickup,
		HandleSiteFull:        s.onSiteFull,
	}

	siteLocations := table.IndexesOf(KindPickupSite)
	params := DrawPickupSiteParams(cfg, len(siteLocations), rng.ForSubsystem(SubsystemPickupSites))
	s.Sites = make([]*PickupSite, len(siteLocations))
	for i, loc := range siteLocations {
		p := params[i]
		site := NewPickupSite(i, loc, p.Capacity, p.Level, p.DailyGrowthRate, s.handlers, s.newEntityLog("Pickup site #%d: ", i))
		site.log.Debugf("Initial level: %s / %s (%s)", FormatTons(site.Level), FormatTons(site.Capacity), FormatPercent(site.FillRatio()))
		site.log.Debugf("Growth rate: %s / day", FormatTons(site.DailyGrowthRate))
		site.StartGrowth(sched)
		s.Sites[i] = site
	}

	s.Network = &Network{Locations: table, Matrix: matrix, Sites: s.Sites}

	depots := table.IndexesOf(KindDepot)
	spec := VehicleSpec{
		LoadCapacity:     cfg.Vehicle.LoadCapacity,
		MaxRouteDuration: cfg.Vehicle.MaxRouteDuration,
		PickupDuration:   cfg.Vehicle.PickupDuration,
	}
	s.Vehicles = make([]*Vehicle, cfg.FleetOperator.NumVehicles)
	for i := range s.Vehicles {
		s.Vehicles[i] = NewVehicle(i, depots[i%len(depots)], spec, s.Network, s.newEntityLog("Vehicle #%d: ", i))
	}

	for _, site := range s.Sites {
		threshold := cfg.FleetOperator.RelativeLevelThresholdForPickup * site.Capacity
		site.AddLevelListener(LevelListener{
			Threshold: threshold,
			Handle:    HandleSiteNeedsPickup,
			Payload:   ListenerPayload{SiteIndex: site.Index, Threshold: threshold},
		})
		site.AddLevelListener(LevelListener{
			Threshold: site.Capacity,
			Handle:    HandleSiteFull,
			Payload:   ListenerPayload{SiteIndex: site.Index, Threshold: site.Capacity},
		})
	}

	sched.Start(&monitor{sim: s})
	sched.Start(&router{sim: s})
	sched.Start(&tracker{sim: s, interval: cfg.Sim.TrackingInterval})
	return s, nil
}

func (s *Simulator) newEntityLog(format string, index int) entityLog {
	return entityLog{log: s.log, prefix: fmt.Sprintf(format, index)}
}

// Warnings returns the number of warnings logged so far.
func (s *Simulator) Warnings() int {
	return s.log.warnings
}

// Run drives the scheduler until the configured horizon or until ctx is done.
// ctx is also passed to the route optimizer.
func (s *Simulator) Run(ctx context.Context) error {
	s.ctx = ctx
	logrus.Infof("Simulation %s started: %d sites, %d vehicles, %d days",
		s.RunID, len(s.Sites), len(s.Vehicles), s.Config.Sim.RuntimeDays)
	for s.Sched.Step(s.Sched.Horizon) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("simulation interrupted at %s: %w", FormatTime(s.Sched.Now()), err)
		}
	}
	s.Sched.RunUntil(s.Sched.Horizon)
	logrus.Infof("Simulation %s ended at %s with %d warnings", s.RunID, FormatTime(s.Sched.Now()), s.Warnings())
	return nil
}

// Summary returns the end-of-run report. It may be called at any time.
func (s *Simulator) Summary() *trace.RunSummary {
	r := &trace.RunSummary{
		RunID:       s.RunID,
		Scenario:    s.Config.Area.Name,
		Seed:        s.Config.Seed,
		RuntimeDays: s.Config.Sim.RuntimeDays,
		EndTime:     s.Sched.Now(),
		Warnings:    s.Warnings(),
		Sites: lo.Map(s.Sites, func(p *PickupSite, _ int) trace.SiteSummary {
			return trace.SiteSummary{
				Index:           p.Index,
				Capacity:        p.Capacity,
				Level:           p.Level,
				DailyGrowthRate: p.DailyGrowthRate,
				Collected:       p.Collected,
				OverflowDays:    p.OverflowDays,
			}
		}),
		Vehicles: lo.Map(s.Vehicles, func(v *Vehicle, _ int) trace.VehicleSummary {
			return trace.VehicleSummary{
				Index:           v.Index,
				HomeDepot:       v.HomeDepotIndex,
				Odometer:        v.Odometer,
				TotalRunTime:    v.TotalRunTime,
				Overtime:        v.Overtime,
				RoutesCompleted: v.RoutesCompleted,
				RoutesRejected:  v.RoutesRejected,
				Overloads:       v.Overloads,
				Collected:       v.Collected,
				LoadLevel:       v.LoadLevel,
			}
		}),
		Trace: trace.Summarize(s.Trace),
	}
	r.Totals()
	return r
}

func (s *Simulator) day() int {
	return int(s.Sched.Now() / MinutesPerDay)
}

// === Level handlers ===

func (s *Simulator) onSiteNeedsPickup(p ListenerPayload) {
	site := s.Sites[p.SiteIndex]
	site.log.Infof("Level %s passed pickup threshold %s, estimated full at %s",
		FormatTons(site.Level), FormatTons(p.Threshold), FormatTime(site.EstimateWhenFull(s.Sched.Now())))
}

func (s *Simulator) onSiteFull(p ListenerPayload) {
	site := s.Sites[p.SiteIndex]
	s.SiteFullEvents++
	site.log.Warnf("Full: %s / %s (%s)", FormatTons(site.Level), FormatTons(site.Capacity), FormatPercent(site.FillRatio()))
}

// === Coordinators ===

// monitor logs and records the aggregate fill state once per day.
type monitor struct {
	sim *Simulator
}

func (m *monitor) Resume(sched *Scheduler) {
	s := m.sim
	threshold := s.Config.FleetOperator.RelativeLevelThresholdForPickup
	ratios := lo.Map(s.Sites, func(p *PickupSite, _ int) float64 { return p.FillRatio() })
	rec := trace.MonitoringRecord{
		Time:                sched.Now(),
		Day:                 s.day(),
		TotalLevel:          lo.SumBy(s.Sites, func(p *PickupSite) float64 { return p.Level }),
		MeanFillRatio:       stat.Mean(ratios, nil),
		MaxFillRatio:        lo.Max(ratios),
		SitesAboveThreshold: lo.CountBy(ratios, func(r float64) bool { return r >= threshold }),
		SitesOverCapacity:   lo.CountBy(ratios, func(r float64) bool { return r > 1 }),
	}
	s.Trace.RecordMonitoring(rec)
	s.log.record(logrus.InfoLevel, fmt.Sprintf("Monitoring: mean fill %s, max %s, %d above pickup threshold, %d over capacity",
		FormatPercent(rec.MeanFillRatio), FormatPercent(rec.MaxFillRatio), rec.SitesAboveThreshold, rec.SitesOverCapacity))
	sched.Timeout(MinutesPerDay, m)
}

// router consumes the routing plan once per day, refilling it from the optimizer when empty.
type router struct {
	sim *Simulator
}

func (r *router) Resume(sched *Scheduler) {
	r.sim.routingTick()
	sched.Timeout(MinutesPerDay, r)
}

func (s *Simulator) routingTick() {
	now := s.Sched.Now()
	rec := trace.RoutingRecord{Time: now, Day: s.day()}
	defer func() {
		rec.RemainingDays = s.Plan.Remaining()
		s.Trace.RecordRouting(rec)
	}()

	if s.Plan.Remaining() == 0 {
		rec.OptimizerCalled = true
		out, err := s.optimizer.Optimize(s.ctx, NewRoutingInput(now, s.Network, s.Vehicles))
		if err != nil {
			s.OptimizerFailures++
			rec.Error = err.Error()
			s.log.record(logrus.WarnLevel, fmt.Sprintf("Routing: optimizer failed, retrying next day: %v", err))
			return
		}
		s.Plan.Refill(out)
		rec.PlanDays = s.Plan.Remaining()
		if rec.PlanDays == 0 {
			s.OptimizerFailures++
			rec.Error = "optimizer returned no days"
			s.log.record(logrus.WarnLevel, "Routing: optimizer returned no days, retrying next day")
			return
		}
		s.log.record(logrus.InfoLevel, fmt.Sprintf("Routing: received a %d-day plan", rec.PlanDays))
	}

	day, _ := s.Plan.PopDay()
	if len(day.Vehicles) > len(s.Vehicles) {
		s.log.record(logrus.WarnLevel, fmt.Sprintf("Routing: plan has routes for %d vehicles, fleet has %d", len(day.Vehicles), len(s.Vehicles)))
	}
	for i, v := range s.Vehicles {
		route := day.RouteFor(i)
		if len(route) == 0 {
			continue
		}
		if err := v.AssignRoute(s.Sched, route); err != nil {
			rec.Skipped++
			v.log.Warnf("Route not started: %v", err)
			continue
		}
		rec.Assigned++
	}
}

// tracker samples the position of every moving vehicle at a fixed interval.
type tracker struct {
	sim      *Simulator
	interval float64
}

func (t *tracker) Resume(sched *Scheduler) {
	now := sched.Now()
	for _, v := range t.sim.Vehicles {
		if !v.Moving {
			continue
		}
		pos := v.Position(now)
		t.sim.Trace.RecordPosition(trace.PositionSample{
			Vehicle:   v.Index,
			Time:      now,
			Longitude: pos.Lon,
			Latitude:  pos.Lat,
		})
	}
	sched.Timeout(t.interval, t)
}
