package sim

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the validated, immutable scenario for one run.
// Entities copy the values they need at construction and never mutate it.
type Config struct {
	Seed          uint64              `yaml:"seed"`
	Sim           SimConfig           `yaml:"sim"`
	PickupSite    PickupSiteConfig    `yaml:"pickup_site"`
	FleetOperator FleetOperatorConfig `yaml:"fleet_operator"`
	Vehicle       VehicleConfig       `yaml:"vehicle"`
	Area          AreaConfig          `yaml:"area"`
	Routing       RoutingConfig       `yaml:"routing"`
	Matrix        MatrixConfig        `yaml:"matrix"`
}

// SimConfig groups run-level parameters.
type SimConfig struct {
	RuntimeDays      int     `yaml:"runtime_days"`
	TrackingInterval float64 `yaml:"tracking_interval"` // minutes between position samples
}

// PickupSiteConfig groups the distributions pickup sites are drawn from.
type PickupSiteConfig struct {
	CapacityRange   []float64 `yaml:"capacity_range"`    // [min, max] tonnes
	DaysToFullRange []float64 `yaml:"days_to_full_range"` // [min, max]; the mean sets the growth median
	GrowthSigma     float64   `yaml:"growth_sigma"`       // log-normal sigma of the growth factor
}

// FleetOperatorConfig groups fleet-level parameters.
type FleetOperatorConfig struct {
	NumVehicles                     int     `yaml:"num_vehicles"`
	RelativeLevelThresholdForPickup float64 `yaml:"relative_level_threshold_for_pickup"`
}

// VehicleConfig is the template every vehicle is built from.
type VehicleConfig struct {
	LoadCapacity     float64 `yaml:"load_capacity"`      // tonnes
	MaxRouteDuration float64 `yaml:"max_route_duration"` // minutes
	PickupDuration   float64 `yaml:"pickup_duration"`    // minutes
}

// BoundingBox limits randomly placed locations.
type BoundingBox struct {
	MinLon float64 `yaml:"min_lon"`
	MinLat float64 `yaml:"min_lat"`
	MaxLon float64 `yaml:"max_lon"`
	MaxLat float64 `yaml:"max_lat"`
}

// AreaConfig places locations either explicitly by coordinates or randomly by count.
// Explicit coordinate lists take precedence over counts.
type AreaConfig struct {
	Name           string        `yaml:"name"`
	PickupSites    []Coordinates `yaml:"pickup_sites"`
	Terminals      []Coordinates `yaml:"terminals"`
	Depots         []Coordinates `yaml:"depots"`
	NumPickupSites int           `yaml:"num_pickup_sites"`
	NumTerminals   int           `yaml:"num_terminals"`
	NumDepots      int           `yaml:"num_depots"`
	Bounds         BoundingBox   `yaml:"bounds"`
}

// RoutingConfig selects and parameterizes the route optimizer.
type RoutingConfig struct {
	Optimizer      string   `yaml:"optimizer"`       // "greedy" or "exec"
	HorizonDays    int      `yaml:"horizon_days"`    // days planned per optimizer call (greedy)
	Command        []string `yaml:"command"`         // exec: argv of the optimizer process
	WorkDir        string   `yaml:"work_dir"`        // exec: directory for routing_input/output.json
	TimeoutSeconds float64  `yaml:"timeout_seconds"` // exec: wall-clock limit per call, 0 = none
}

// ORSConfig configures the OpenRouteService matrix provider.
type ORSConfig struct {
	BaseURL    string `yaml:"base_url"`
	Profile    string `yaml:"profile"`
	APIKeyEnv  string `yaml:"api_key_env"` // environment variable holding the API key
	BlockSize  int    `yaml:"block_size"`  // max locations per request dimension
	MaxRetries int    `yaml:"max_retries"`
}

// HaversineConfig configures the offline great-circle matrix provider.
type HaversineConfig struct {
	RoadFactor float64 `yaml:"road_factor"` // multiplier from great-circle to road distance
	SpeedKmh   float64 `yaml:"speed_kmh"`
}

// MatrixConfig selects the distance/duration matrix provider.
type MatrixConfig struct {
	Provider  string          `yaml:"provider"`   // "haversine", "ors" or "file"
	File      string          `yaml:"file"`       // file provider: JSON with distance_matrix/duration_matrix
	CachePath string          `yaml:"cache_path"` // SQLite cache, empty = no cache
	ORS       ORSConfig       `yaml:"ors"`
	Haversine HaversineConfig `yaml:"haversine"`
}

// ValidOptimizers is the set of recognized route optimizer names.
var ValidOptimizers = map[string]bool{"greedy": true, "exec": true}

// ValidMatrixProviders is the set of recognized matrix provider names.
var ValidMatrixProviders = map[string]bool{"haversine": true, "ors": true, "file": true}

// DefaultConfig returns the reference scenario: Turku, 10 pickup sites,
// 2 terminals, 2 depots, 2 vehicles of 18 t over 14 days.
func DefaultConfig() Config {
	return Config{
		Seed: 1,
		Sim: SimConfig{
			RuntimeDays:      14,
			TrackingInterval: 0.25,
		},
		PickupSite: PickupSiteConfig{
			CapacityRange:   []float64{10, 20},
			DaysToFullRange: []float64{14, 21},
			GrowthSigma:     0.1,
		},
		FleetOperator: FleetOperatorConfig{
			NumVehicles:                     2,
			RelativeLevelThresholdForPickup: 0.8,
		},
		Vehicle: VehicleConfig{
			LoadCapacity:     18,
			MaxRouteDuration: 540,
			PickupDuration:   15,
		},
		Area: AreaConfig{
			Name:           "Turku",
			NumPickupSites: 10,
			NumTerminals:   2,
			NumDepots:      2,
			Bounds: BoundingBox{
				MinLon: 22.15,
				MinLat: 60.40,
				MaxLon: 22.40,
				MaxLat: 60.52,
			},
		},
		Routing: RoutingConfig{
			Optimizer:   "greedy",
			HorizonDays: 3,
			WorkDir:     "temp",
		},
		Matrix: MatrixConfig{
			Provider: "haversine",
			ORS: ORSConfig{
				BaseURL:    "https://api.openrouteservice.org",
				Profile:    "driving-car",
				APIKeyEnv:  "ORS_API_KEY",
				BlockSize:  50,
				MaxRetries: 3,
			},
			Haversine: HaversineConfig{
				RoadFactor: 1.3,
				SpeedKmh:   40,
			},
		},
	}
}

// LoadConfig reads a YAML scenario on top of DefaultConfig.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading scenario: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing scenario: %w", err)
	}
	return cfg, nil
}

// NumPickupSitesResolved returns the pickup site count, explicit coordinates first.
func (a AreaConfig) NumPickupSitesResolved() int {
	if len(a.PickupSites) > 0 {
		return len(a.PickupSites)
	}
	return a.NumPickupSites
}

// NumTerminalsResolved returns the terminal count, explicit coordinates first.
func (a AreaConfig) NumTerminalsResolved() int {
	if len(a.Terminals) > 0 {
		return len(a.Terminals)
	}
	return a.NumTerminals
}

// NumDepotsResolved returns the depot count, explicit coordinates first.
func (a AreaConfig) NumDepotsResolved() int {
	if len(a.Depots) > 0 {
		return len(a.Depots)
	}
	return a.NumDepots
}

// NumLocations returns sites + terminals + depots.
func (a AreaConfig) NumLocations() int {
	return a.NumPickupSitesResolved() + a.NumTerminalsResolved() + a.NumDepotsResolved()
}

// Validate checks that every field is structurally valid. Returns the first violation.
func (c *Config) Validate() error {
	if c.Sim.RuntimeDays <= 0 {
		return fmt.Errorf("sim.runtime_days must be positive, got %d", c.Sim.RuntimeDays)
	}
	if err := validateFinitePositive("sim.tracking_interval", c.Sim.TrackingInterval); err != nil {
		return err
	}
	if err := validateRange("pickup_site.capacity_range", c.PickupSite.CapacityRange); err != nil {
		return err
	}
	if c.PickupSite.CapacityRange[0] <= 0 {
		return fmt.Errorf("pickup_site.capacity_range must be positive, got %v", c.PickupSite.CapacityRange)
	}
	if err := validateRange("pickup_site.days_to_full_range", c.PickupSite.DaysToFullRange); err != nil {
		return err
	}
	if c.PickupSite.DaysToFullRange[0] <= 0 {
		return fmt.Errorf("pickup_site.days_to_full_range must be positive, got %v", c.PickupSite.DaysToFullRange)
	}
	if c.PickupSite.GrowthSigma < 0 || math.IsNaN(c.PickupSite.GrowthSigma) {
		return fmt.Errorf("pickup_site.growth_sigma must be non-negative, got %v", c.PickupSite.GrowthSigma)
	}
	if c.FleetOperator.NumVehicles <= 0 {
		return fmt.Errorf("fleet_operator.num_vehicles must be positive, got %d", c.FleetOperator.NumVehicles)
	}
	if th := c.FleetOperator.RelativeLevelThresholdForPickup; th <= 0 || th > 1 {
		return fmt.Errorf("fleet_operator.relative_level_threshold_for_pickup must be in (0, 1], got %v", th)
	}
	if err := validateFinitePositive("vehicle.load_capacity", c.Vehicle.LoadCapacity); err != nil {
		return err
	}
	if err := validateFinitePositive("vehicle.max_route_duration", c.Vehicle.MaxRouteDuration); err != nil {
		return err
	}
	if c.Vehicle.PickupDuration < 0 || math.IsNaN(c.Vehicle.PickupDuration) || math.IsInf(c.Vehicle.PickupDuration, 0) {
		return fmt.Errorf("vehicle.pickup_duration must be finite and non-negative, got %v", c.Vehicle.PickupDuration)
	}
	if err := c.Area.validate(); err != nil {
		return err
	}
	if !ValidOptimizers[c.Routing.Optimizer] {
		return fmt.Errorf("unknown routing.optimizer %q; valid: greedy, exec", c.Routing.Optimizer)
	}
	if c.Routing.Optimizer == "greedy" && c.Routing.HorizonDays <= 0 {
		return fmt.Errorf("routing.horizon_days must be positive, got %d", c.Routing.HorizonDays)
	}
	if c.Routing.Optimizer == "exec" && len(c.Routing.Command) == 0 {
		return fmt.Errorf("routing.command is required for the exec optimizer")
	}
	if !ValidMatrixProviders[c.Matrix.Provider] {
		return fmt.Errorf("unknown matrix.provider %q; valid: haversine, ors, file", c.Matrix.Provider)
	}
	if c.Matrix.Provider == "file" && c.Matrix.File == "" {
		return fmt.Errorf("matrix.file is required for the file provider")
	}
	if c.Matrix.Provider == "ors" && c.Matrix.ORS.BlockSize <= 0 {
		return fmt.Errorf("matrix.ors.block_size must be positive, got %d", c.Matrix.ORS.BlockSize)
	}
	if c.Matrix.Provider == "haversine" {
		if err := validateFinitePositive("matrix.haversine.speed_kmh", c.Matrix.Haversine.SpeedKmh); err != nil {
			return err
		}
		if err := validateFinitePositive("matrix.haversine.road_factor", c.Matrix.Haversine.RoadFactor); err != nil {
			return err
		}
	}
	return nil
}

func (a AreaConfig) validate() error {
	if a.NumPickupSitesResolved() <= 0 {
		return fmt.Errorf("area must define at least one pickup site")
	}
	if a.NumDepotsResolved() <= 0 {
		return fmt.Errorf("area must define at least one depot")
	}
	if a.NumTerminalsResolved() < 0 {
		return fmt.Errorf("area.num_terminals must be non-negative, got %d", a.NumTerminals)
	}
	needRandom := len(a.PickupSites) == 0 || len(a.Depots) == 0 || (len(a.Terminals) == 0 && a.NumTerminals > 0)
	if needRandom {
		b := a.Bounds
		if !(b.MinLon < b.MaxLon) || !(b.MinLat < b.MaxLat) {
			return fmt.Errorf("area.bounds must have min < max for randomly placed locations, got %+v", b)
		}
	}
	return nil
}

func validateRange(name string, r []float64) error {
	if len(r) != 2 {
		return fmt.Errorf("%s must have exactly 2 elements, got %d", name, len(r))
	}
	for _, v := range r {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite, got %v", name, r)
		}
	}
	if r[0] > r[1] {
		return fmt.Errorf("%s min must not exceed max, got %v", name, r)
	}
	return nil
}

func validateFinitePositive(name string, v float64) error {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be a finite positive number, got %v", name, v)
	}
	return nil
}
