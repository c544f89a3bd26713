package sim

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutingPlan_RefillAndPop(t *testing.T) {
	// GIVEN an empty plan
	p := &RoutingPlan{}
	_, ok := p.PopDay()
	assert.False(t, ok)

	// WHEN a 2-day output is stored
	p.Refill(&RoutingOutput{Days: []RoutingOutputDay{
		{Vehicles: []RoutingOutputVehicle{{Route: []int{1}}}},
		{Vehicles: []RoutingOutputVehicle{{Route: []int{2}}}},
	}})

	// THEN days come out in order
	assert.Equal(t, 2, p.Remaining())
	d1, ok := p.PopDay()
	require.True(t, ok)
	assert.Equal(t, []int{1}, d1.RouteFor(0))
	d2, _ := p.PopDay()
	assert.Equal(t, []int{2}, d2.RouteFor(0))
	assert.Equal(t, 0, p.Remaining())
	assert.Equal(t, 1, p.Requests)
}

func TestRoutingPlan_RefillNil(t *testing.T) {
	p := &RoutingPlan{}
	p.Refill(nil)
	assert.Equal(t, 0, p.Remaining())
	assert.Equal(t, 1, p.Requests)
}

func TestRoutingOutputDay_RouteFor_OutOfRange(t *testing.T) {
	d := RoutingOutputDay{Vehicles: []RoutingOutputVehicle{{Route: []int{3}}}}
	assert.Nil(t, d.RouteFor(1))
	assert.Nil(t, d.RouteFor(-1))
}

func TestNewRoutingInput_Snapshot(t *testing.T) {
	// GIVEN a network with two sites and a depot, and one vehicle
	net := newLineNetwork(2, 30)
	net.Sites[1].Level = 3
	net.Sites[1].DailyGrowthRate = 1.44
	v := NewVehicle(0, 2, testSpec(), net, nil)

	// WHEN a snapshot is taken
	in := NewRoutingInput(100, net, []*Vehicle{v})

	// THEN it carries site state with per-minute growth, and depot-relative vehicle anchors
	require.Len(t, in.PickupSites, 2)
	assert.Equal(t, 3.0, in.PickupSites[1].Level)
	assert.InDelta(t, 0.001, in.PickupSites[1].GrowthRate, 1e-15)
	assert.Equal(t, 1, in.PickupSites[1].LocationIndex)
	assert.Equal(t, []RoutingInputDepot{{LocationIndex: 2}}, in.Depots)
	assert.Empty(t, in.Terminals)
	assert.Equal(t, 0, in.Vehicles[0].HomeDepotIndex)
	assert.Equal(t, 18.0, in.Vehicles[0].LoadCapacity)
	assert.Len(t, in.DurationMatrix, 3)
}

func TestRoutingInput_JSONKeys(t *testing.T) {
	net := newLineNetwork(1, 30)
	in := NewRoutingInput(0, net, nil)

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"pickup_sites", "depots", "terminals", "vehicles", "distance_matrix", "duration_matrix"} {
		assert.Contains(t, raw, key)
	}
}

func TestRoutingOutput_DecodesOptimizerFormat(t *testing.T) {
	var out RoutingOutput
	err := json.Unmarshal([]byte(`{"days":[{"vehicles":[{"route":[12,3,12]},{"route":[]}]}]}`), &out)
	require.NoError(t, err)
	require.Len(t, out.Days, 1)
	assert.Equal(t, []int{12, 3, 12}, out.Days[0].RouteFor(0))
	assert.Empty(t, out.Days[0].RouteFor(1))
}
