// Package matrix acquires the distance (meters) and duration (minutes) matrix
// for an ordered list of location coordinates. Providers are external
// collaborators of the simulation: the result is handed to sim.NewSimulator as
// an opaque immutable input.
package matrix

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/hamk-uas/logistics-sim/sim"
)

// Provider returns the matrix for coords, rows and columns in coords order.
type Provider interface {
	Matrix(ctx context.Context, coords []sim.Coordinates) (*sim.Matrix, error)
}

// Options carries the runtime values that do not belong in the scenario file.
type Options struct {
	APIKey string // ORS API key; read from cfg.ORS.APIKeyEnv when empty
}

// New builds the provider selected by cfg, wrapped in a SQLite cache when
// cfg.CachePath is set. The returned close function releases the cache.
func New(cfg sim.MatrixConfig, opts Options) (Provider, func() error, error) {
	var p Provider
	switch cfg.Provider {
	case "haversine":
		p = &HaversineProvider{RoadFactor: cfg.Haversine.RoadFactor, SpeedKmh: cfg.Haversine.SpeedKmh}
	case "file":
		p = &FileProvider{Path: cfg.File}
	case "ors":
		key := opts.APIKey
		if key == "" && cfg.ORS.APIKeyEnv != "" {
			key = os.Getenv(cfg.ORS.APIKeyEnv)
		}
		ors, err := NewORSProvider(key, cfg.ORS)
		if err != nil {
			return nil, nil, err
		}
		p = ors
	default:
		return nil, nil, fmt.Errorf("unknown matrix provider %q", cfg.Provider)
	}

	if cfg.CachePath == "" {
		return p, func() error { return nil }, nil
	}
	cache, err := OpenSQLiteCache(cfg.CachePath)
	if err != nil {
		return nil, nil, err
	}
	return &CachedProvider{Inner: p, Cache: cache, Source: cfg.Provider, Tolerance: DefaultTolerance}, cache.Close, nil
}

// CachedProvider serves matrices from a SQLite cache keyed by coordinate-set
// equality within Tolerance, fetching from Inner on a miss.
type CachedProvider struct {
	Inner     Provider
	Cache     *SQLiteCache
	Source    string // provider name stored with cached rows
	Tolerance float64
}

// Matrix implements Provider.
func (c *CachedProvider) Matrix(ctx context.Context, coords []sim.Coordinates) (*sim.Matrix, error) {
	m, ok, err := c.Cache.Get(ctx, c.Source, coords, c.Tolerance)
	if err != nil {
		logrus.Warnf("matrix cache lookup failed, fetching fresh: %v", err)
	} else if ok {
		logrus.Infof("matrix cache hit (%d locations)", len(coords))
		return m, nil
	}

	m, err = c.Inner.Matrix(ctx, coords)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.Put(ctx, c.Source, coords, m); err != nil {
		logrus.Warnf("matrix cache store failed: %v", err)
	}
	return m, nil
}
