package sim

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// BuildLocationTable places every location of the area. Kinds with explicit
// coordinates use them as given; the others are drawn uniformly inside Bounds.
func BuildLocationTable(area AreaConfig, rng *rand.Rand) *LocationTable {
	sites := resolveCoordinates(area.PickupSites, area.NumPickupSites, area.Bounds, rng)
	terminals := resolveCoordinates(area.Terminals, area.NumTerminals, area.Bounds, rng)
	depots := resolveCoordinates(area.Depots, area.NumDepots, area.Bounds, rng)
	return NewLocationTable(sites, terminals, depots)
}

func resolveCoordinates(explicit []Coordinates, n int, b BoundingBox, rng *rand.Rand) []Coordinates {
	if len(explicit) > 0 {
		return append([]Coordinates(nil), explicit...)
	}
	lon := distuv.Uniform{Min: b.MinLon, Max: b.MaxLon, Src: rng}
	lat := distuv.Uniform{Min: b.MinLat, Max: b.MaxLat, Src: rng}
	out := make([]Coordinates, n)
	for i := range out {
		out[i] = Coordinates{Lon: lon.Rand(), Lat: lat.Rand()}
	}
	return out
}

// PickupSiteParams are the construction-time random draws of one pickup site.
type PickupSiteParams struct {
	Capacity        float64
	Level           float64
	DailyGrowthRate float64
}

// DrawPickupSiteParams draws n sites. Per site, in order: capacity uniform in
// capacity_range, initial level capacity·U(0, pickup threshold), and daily growth
// capacity·LogNormal(ln(1/mean days to full), growth_sigma).
func DrawPickupSiteParams(cfg Config, n int, rng *rand.Rand) []PickupSiteParams {
	capacity := distuv.Uniform{Min: cfg.PickupSite.CapacityRange[0], Max: cfg.PickupSite.CapacityRange[1], Src: rng}
	fill := distuv.Uniform{Min: 0, Max: cfg.FleetOperator.RelativeLevelThresholdForPickup, Src: rng}
	meanDays := (cfg.PickupSite.DaysToFullRange[0] + cfg.PickupSite.DaysToFullRange[1]) / 2
	growth := distuv.LogNormal{Mu: math.Log(1 / meanDays), Sigma: cfg.PickupSite.GrowthSigma, Src: rng}

	out := make([]PickupSiteParams, n)
	for i := range out {
		c := capacity.Rand()
		out[i] = PickupSiteParams{
			Capacity:        c,
			Level:           c * fill.Rand(),
			DailyGrowthRate: c * growth.Rand(),
		}
	}
	return out
}
