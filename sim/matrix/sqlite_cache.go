package matrix

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	_ "modernc.org/sqlite"

	"github.com/hamk-uas/logistics-sim/sim"
)

// DefaultTolerance is the coordinate tolerance, in degrees, under which two
// location lists are considered the same set.
const DefaultTolerance = 1e-6

const schema = `
CREATE TABLE IF NOT EXISTS matrix_cache (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    provider    TEXT    NOT NULL,
    size        INTEGER NOT NULL,
    coordinates TEXT    NOT NULL,
    matrix      TEXT    NOT NULL,
    created_at  TEXT    NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_matrix_cache_lookup ON matrix_cache (provider, size);
`

// SQLiteCache stores fetched matrices keyed by provider and coordinate list.
type SQLiteCache struct {
	DB *sql.DB
}

// OpenSQLiteCache opens (creating if needed) the cache database at path.
// Use ":memory:" for a throwaway cache.
func OpenSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open matrix cache: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	c := &SQLiteCache{DB: db}
	if err := c.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// InitSchema creates the cache table if it does not exist.
func (c *SQLiteCache) InitSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init matrix cache schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (c *SQLiteCache) Close() error {
	return c.DB.Close()
}

// Get returns the most recent matrix stored for provider whose coordinate list
// matches coords element-wise within tol degrees.
func (c *SQLiteCache) Get(ctx context.Context, provider string, coords []sim.Coordinates, tol float64) (*sim.Matrix, bool, error) {
	if c.DB == nil {
		return nil, false, errors.New("matrix cache: db is nil")
	}
	rows, err := c.DB.QueryContext(ctx, `
	SELECT coordinates, matrix
	FROM matrix_cache
	WHERE provider = ? AND size = ?
	ORDER BY id DESC`, provider, len(coords))
	if err != nil {
		return nil, false, fmt.Errorf("get matrix cache: query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var coordsJSON, matrixJSON string
		if err := rows.Scan(&coordsJSON, &matrixJSON); err != nil {
			return nil, false, fmt.Errorf("get matrix cache: scan: %w", err)
		}
		var cached []sim.Coordinates
		if err := json.Unmarshal([]byte(coordsJSON), &cached); err != nil {
			return nil, false, fmt.Errorf("get matrix cache: decode coordinates: %w", err)
		}
		if !SameCoordinates(cached, coords, tol) {
			continue
		}
		var m sim.Matrix
		if err := json.Unmarshal([]byte(matrixJSON), &m); err != nil {
			return nil, false, fmt.Errorf("get matrix cache: decode matrix: %w", err)
		}
		return &m, true, nil
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("get matrix cache: row iteration: %w", err)
	}
	return nil, false, nil
}

// Put stores m for provider and coords.
func (c *SQLiteCache) Put(ctx context.Context, provider string, coords []sim.Coordinates, m *sim.Matrix) error {
	if c.DB == nil {
		return errors.New("matrix cache: db is nil")
	}
	coordsJSON, err := json.Marshal(coords)
	if err != nil {
		return fmt.Errorf("put matrix cache: encode coordinates: %w", err)
	}
	matrixJSON, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("put matrix cache: encode matrix: %w", err)
	}
	if _, err := c.DB.ExecContext(ctx, `
	INSERT INTO matrix_cache (provider, size, coordinates, matrix)
	VALUES (?, ?, ?, ?)`, provider, len(coords), string(coordsJSON), string(matrixJSON)); err != nil {
		return fmt.Errorf("put matrix cache: insert: %w", err)
	}
	return nil
}

// SameCoordinates reports whether a and b have the same length and every pair
// of coordinates differs by at most tol degrees in both axes.
func SameCoordinates(a, b []sim.Coordinates, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i].Lon-b[i].Lon) > tol || math.Abs(a[i].Lat-b[i].Lat) > tol {
			return false
		}
	}
	return true
}
