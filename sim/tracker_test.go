package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamk-uas/logistics-sim/sim/trace"
)

func TestTracker_SamplesOnlyWhileMoving(t *testing.T) {
	// GIVEN one vehicle at the depot (lon 1) and a site (lon 0) holding 4 t,
	// 30 min legs and a 15 min pickup: the route [depot, site, depot] lasts 75 min
	net := newLineNetwork(1, 30)
	depot := 1
	net.Sites[0].Level = 4
	sched := NewScheduler(0)
	v := NewVehicle(0, depot, testSpec(), net, nil)
	s := &Simulator{Sched: sched, Vehicles: []*Vehicle{v}, Trace: trace.NewSimulationTrace()}
	sched.Start(&tracker{sim: s, interval: 0.25})
	require.NoError(t, v.AssignRoute(sched, []int{depot, 0, depot}))

	// WHEN the clock runs well past the end of the route
	sched.RunUntil(200)

	// THEN there is one sample every 0.25 min from departure until arrival
	require.Equal(t, 75.0, v.TotalRunTime)
	samples := s.Trace.Positions
	require.Len(t, samples, 300)
	assert.Equal(t, 0.0, samples[0].Time)
	assert.Equal(t, 74.75, samples[len(samples)-1].Time)
	for i, p := range samples {
		assert.Equal(t, 0.25*float64(i), p.Time)
		assert.Equal(t, 0, p.Vehicle)
	}

	// THEN positions are interpolated along legs and fixed during the pickup
	at := func(minute float64) trace.PositionSample { return samples[int(minute/0.25)] }
	assert.InDelta(t, 0.5, at(15).Longitude, 1e-12, "halfway to the site")
	assert.InDelta(t, 0.0, at(40).Longitude, 1e-12, "loading at the site")
	assert.InDelta(t, 0.5, at(60).Longitude, 1e-12, "halfway back to the depot")
	assert.InDelta(t, 0.25, at(52.5).Longitude, 1e-12, "a quarter of the way back")
}

func TestTracker_NoSamplesWithoutRoute(t *testing.T) {
	// GIVEN a parked vehicle
	net := newLineNetwork(1, 30)
	sched := NewScheduler(0)
	s := &Simulator{Sched: sched, Vehicles: []*Vehicle{NewVehicle(0, 1, testSpec(), net, nil)}, Trace: trace.NewSimulationTrace()}
	sched.Start(&tracker{sim: s, interval: 0.25})

	// WHEN a day passes
	sched.RunUntil(MinutesPerDay)

	// THEN nothing is sampled
	assert.Empty(t, s.Trace.Positions)
}
