package sim

import (
	"fmt"
	"math"
)

// levelEpsilon absorbs float rounding when checking the get() contract.
const levelEpsilon = 1e-9

// PickupSite is a fixed container whose level grows daily until a vehicle empties it.
//
// Level is not clamped to Capacity: growth may push it above capacity, which is the
// overflow signal reported through the site-full listener and OverflowDays.
type PickupSite struct {
	Index           int     // pickup site index
	LocationIndex   int     // row in the location table
	Capacity        float64 // tonnes
	Level           float64 // tonnes, mutated only through Put and Get
	DailyGrowthRate float64 // tonnes per day

	// OverflowDays counts daily growth steps that left the site above capacity.
	OverflowDays int
	// Collected is the total amount removed by vehicles.
	Collected float64

	listeners  []LevelListener
	dispatcher LevelDispatcher
	log        Logger
}

// NewPickupSite creates a site. dispatcher and log may be nil.
func NewPickupSite(index, locationIndex int, capacity, level, dailyGrowthRate float64, dispatcher LevelDispatcher, log Logger) *PickupSite {
	return &PickupSite{
		Index:           index,
		LocationIndex:   locationIndex,
		Capacity:        capacity,
		Level:           level,
		DailyGrowthRate: dailyGrowthRate,
		dispatcher:      dispatcher,
		log:             orNop(log),
	}
}

// AddLevelListener registers a listener. Listeners are registered once and never removed.
func (p *PickupSite) AddLevelListener(l LevelListener) {
	p.listeners = append(p.listeners, l)
}

// Put adds amount to the level and notifies every listener whose threshold was
// crossed upward by this call, exactly once each. Returns the number notified.
func (p *PickupSite) Put(amount float64) int {
	below := make([]LevelListener, 0, len(p.listeners))
	for _, l := range p.listeners {
		if p.Level < l.Threshold {
			below = append(below, l)
		}
	}

	p.Level += amount

	crossed := below[:0]
	for _, l := range below {
		if p.Level >= l.Threshold {
			crossed = append(crossed, l)
		}
	}
	if len(crossed) > 0 {
		p.log.Debugf("Level increase past threshold for %d listeners.", len(crossed))
	}
	if p.dispatcher != nil {
		for _, l := range crossed {
			p.dispatcher.DispatchLevel(l.Handle, l.Payload)
		}
	}
	return len(crossed)
}

// Get removes amount from the level. Callers must never request more than Level;
// doing so is a routing-amount bug and panics.
func (p *PickupSite) Get(amount float64) {
	if amount < 0 {
		panic(fmt.Sprintf("PickupSite.Get: site #%d negative amount %v", p.Index, amount))
	}
	if amount > p.Level+levelEpsilon {
		panic(fmt.Sprintf("PickupSite.Get: site #%d underflow, requested %v with level %v", p.Index, amount, p.Level))
	}
	p.Level = math.Max(p.Level-amount, 0)
	p.Collected += amount
}

// FillRatio returns Level / Capacity.
func (p *PickupSite) FillRatio() float64 {
	if p.Capacity <= 0 {
		return 0
	}
	return p.Level / p.Capacity
}

// EstimateWhenFull returns the virtual time at which the site reaches capacity
// under linear growth. +Inf if the site never grows.
func (p *PickupSite) EstimateWhenFull(now float64) float64 {
	if p.Level >= p.Capacity {
		return now
	}
	if p.DailyGrowthRate <= 0 {
		return math.Inf(1)
	}
	return now + MinutesPerDay*(p.Capacity-p.Level)/p.DailyGrowthRate
}

// Resume implements Process: the daily growth loop.
func (p *PickupSite) Resume(s *Scheduler) {
	p.Put(p.DailyGrowthRate)
	if p.Level > p.Capacity {
		p.OverflowDays++
	}
	s.Timeout(MinutesPerDay, p)
}

// StartGrowth registers the daily growth process; the first growth happens one day from now.
func (p *PickupSite) StartGrowth(s *Scheduler) {
	s.Timeout(MinutesPerDay, p)
}
