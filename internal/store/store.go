// Package store persists completed assessment runs and per-run artifacts.
package store

import (
	"context"
	"time"

	"github.com/naaf-labs/naaf-cli/internal/model"
)

// Store defines the persistence interface for assessment runs. The file
// backend is canonical; SQLite and Postgres back the same contract for
// deployments that want a queryable index.
type Store interface {
	// Save appends the run to the index and writes the full record.
	// Returns the run ID, generating one if the record has none.
	Save(ctx context.Context, research *model.StoredResearch) (string, error)

	// Get reads a run by ID. Returns a not-found error if absent.
	Get(ctx context.Context, id string) (*model.StoredResearch, error)

	// List returns runs, most recent first. With a country filter, the
	// country's most recent limit runs; without, the limit most recent
	// runs across all countries.
	List(ctx context.Context, country string, limit int) ([]model.StoredResearch, error)

	// Latest returns the most recent run for a country.
	Latest(ctx context.Context, country string) (*model.StoredResearch, error)

	// Countries summarizes the latest run per country, highest score first.
	Countries(ctx context.Context) ([]model.CountrySummary, error)

	// Delete removes a run and repairs the index.
	Delete(ctx context.Context, id string) error

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 20

// GenerateID derives a run ID from the country slug and a UTC timestamp.
// Second granularity keeps IDs collision-free for sequential runs.
func GenerateID(country string, now time.Time) string {
	return model.Slug(country) + "_" + now.UTC().Format("20060102_150405")
}
