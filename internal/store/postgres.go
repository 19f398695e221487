package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/naaf-labs/naaf-cli/internal/model"
)

// Pool abstracts the pgxpool methods the store uses, so tests can substitute
// pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS research_runs (
	id            TEXT PRIMARY KEY,
	country       TEXT NOT NULL,
	country_key   TEXT NOT NULL,
	year          INTEGER NOT NULL,
	overall_score DOUBLE PRECISION NOT NULL,
	tier          TEXT NOT NULL,
	payload       JSONB NOT NULL,
	generated_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_research_runs_country_key ON research_runs(country_key);
CREATE INDEX IF NOT EXISTS idx_research_runs_generated_at ON research_runs(generated_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, research *model.StoredResearch) (string, error) {
	if research.GeneratedAt.IsZero() {
		research.GeneratedAt = time.Now().UTC()
	}
	if research.ID == "" {
		research.ID = GenerateID(research.Country, research.GeneratedAt)
	}

	payload, err := json.Marshal(research)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: marshal run %s", research.ID)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO research_runs (id, country, country_key, year, overall_score, tier, payload, generated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		research.ID, research.Country, model.IndexKey(research.Country),
		research.Year, research.OverallScore, research.Tier,
		payload, research.GeneratedAt,
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: insert run %s", research.ID)
	}
	return research.ID, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*model.StoredResearch, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM research_runs WHERE id = $1`, id,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(model.ErrNotFound, "postgres: run %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", id)
	}
	return unmarshalRun(string(payload))
}

func (s *PostgresStore) List(ctx context.Context, country string, limit int) ([]model.StoredResearch, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	var (
		rows pgx.Rows
		err  error
	)
	if country != "" {
		rows, err = s.pool.Query(ctx,
			`SELECT payload FROM research_runs WHERE country_key = $1
			 ORDER BY generated_at DESC LIMIT $2`,
			model.IndexKey(country), limit,
		)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT payload FROM research_runs ORDER BY generated_at DESC LIMIT $1`,
			limit,
		)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var results []model.StoredResearch
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		research, err := unmarshalRun(string(payload))
		if err != nil {
			return nil, err
		}
		results = append(results, *research)
	}
	return results, eris.Wrap(rows.Err(), "postgres: iterate runs")
}

func (s *PostgresStore) Latest(ctx context.Context, country string) (*model.StoredResearch, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM research_runs WHERE country_key = $1
		 ORDER BY generated_at DESC LIMIT 1`,
		model.IndexKey(country),
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(model.ErrNotFound, "postgres: no runs for %s", country)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: latest run for %s", country)
	}
	return unmarshalRun(string(payload))
}

func (s *PostgresStore) Countries(ctx context.Context) ([]model.CountrySummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT ON (country_key)
			country, overall_score, tier, generated_at,
			COUNT(*) OVER (PARTITION BY country_key) AS run_count
		FROM research_runs
		ORDER BY country_key, generated_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list countries")
	}
	defer rows.Close()

	var summaries []model.CountrySummary
	for rows.Next() {
		var cs model.CountrySummary
		if err := rows.Scan(&cs.Country, &cs.LatestScore, &cs.Tier, &cs.LastUpdated, &cs.RunCount); err != nil {
			return nil, eris.Wrap(err, "postgres: scan country summary")
		}
		summaries = append(summaries, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate countries")
	}

	// DISTINCT ON forces country ordering; re-sort by score for display.
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LatestScore > summaries[j].LatestScore
	})
	return summaries, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM research_runs WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete run %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(model.ErrNotFound, "postgres: run %s", id)
	}
	return nil
}
