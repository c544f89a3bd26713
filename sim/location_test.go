package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationTable_OrderIsSitesTerminalsDepots(t *testing.T) {
	// GIVEN two sites, one terminal and two depots
	table := NewLocationTable(
		[]Coordinates{{Lon: 1}, {Lon: 2}},
		[]Coordinates{{Lon: 3}},
		[]Coordinates{{Lon: 4}, {Lon: 5}},
	)

	// THEN indexes follow kind order and kind indexes restart per kind
	assert.Equal(t, 5, table.Len())
	assert.Equal(t, []int{0, 1}, table.IndexesOf(KindPickupSite))
	assert.Equal(t, []int{2}, table.IndexesOf(KindTerminal))
	assert.Equal(t, []int{3, 4}, table.IndexesOf(KindDepot))
	assert.Equal(t, Location{Index: 4, Kind: KindDepot, KindIndex: 1, Coordinates: Coordinates{Lon: 5}}, table.At(4))
	assert.Equal(t, "depot #1", table.Describe(4))
	assert.Equal(t, "terminal #0", table.Describe(2))
	assert.Equal(t, "unknown location #9", table.Describe(9))
	assert.Equal(t, 2, table.Count(KindDepot))
}

func TestLocationTable_Valid(t *testing.T) {
	table := NewLocationTable([]Coordinates{{}}, nil, []Coordinates{{}})
	assert.True(t, table.Valid(0))
	assert.True(t, table.Valid(1))
	assert.False(t, table.Valid(2))
	assert.False(t, table.Valid(-1))
}

func TestLocationTable_IndexesOf_ReturnsCopy(t *testing.T) {
	table := NewLocationTable([]Coordinates{{}, {}}, nil, nil)
	idx := table.IndexesOf(KindPickupSite)
	idx[0] = 99
	assert.Equal(t, []int{0, 1}, table.IndexesOf(KindPickupSite))
}

func TestCoordinates_Lerp(t *testing.T) {
	a := Coordinates{Lon: 0, Lat: 10}
	b := Coordinates{Lon: 10, Lat: 20}
	assert.Equal(t, Coordinates{Lon: 2.5, Lat: 12.5}, a.Lerp(b, 0.25))
	assert.Equal(t, a, a.Lerp(b, 0))
	assert.Equal(t, b, a.Lerp(b, 1))
}

func TestMatrix_Validate(t *testing.T) {
	m := uniformMatrix(3, 10, 1)
	assert.NoError(t, m.Validate(3))
	assert.Error(t, m.Validate(4))

	m.Durations[1][2] = -1
	assert.Error(t, m.Validate(3))

	ragged := NewMatrix(2)
	ragged.Distances[1] = []float64{0}
	assert.Error(t, ragged.Validate(2))
}
