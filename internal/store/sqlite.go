package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/naaf-labs/naaf-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. The full record is
// kept as a JSON payload column; index-level fields are broken out for
// filtering and ordering.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS research_runs (
	id            TEXT PRIMARY KEY,
	country       TEXT NOT NULL,
	country_key   TEXT NOT NULL,
	year          INTEGER NOT NULL,
	overall_score REAL NOT NULL,
	tier          TEXT NOT NULL,
	payload       TEXT NOT NULL,
	generated_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_research_runs_country_key ON research_runs(country_key);
CREATE INDEX IF NOT EXISTS idx_research_runs_generated_at ON research_runs(generated_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, research *model.StoredResearch) (string, error) {
	if research.GeneratedAt.IsZero() {
		research.GeneratedAt = time.Now().UTC()
	}
	if research.ID == "" {
		research.ID = GenerateID(research.Country, research.GeneratedAt)
	}

	payload, err := json.Marshal(research)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: marshal run %s", research.ID)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO research_runs (id, country, country_key, year, overall_score, tier, payload, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		research.ID, research.Country, model.IndexKey(research.Country),
		research.Year, research.OverallScore, research.Tier,
		string(payload), research.GeneratedAt,
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: insert run %s", research.ID)
	}
	return research.ID, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.StoredResearch, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM research_runs WHERE id = ?`, id,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(model.ErrNotFound, "sqlite: run %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", id)
	}
	return unmarshalRun(payload)
}

func (s *SQLiteStore) List(ctx context.Context, country string, limit int) ([]model.StoredResearch, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	var (
		rows *sql.Rows
		err  error
	)
	if country != "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT payload FROM research_runs WHERE country_key = ?
			 ORDER BY generated_at DESC LIMIT ?`,
			model.IndexKey(country), limit,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT payload FROM research_runs ORDER BY generated_at DESC LIMIT ?`,
			limit,
		)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var results []model.StoredResearch
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		research, err := unmarshalRun(payload)
		if err != nil {
			return nil, err
		}
		results = append(results, *research)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func (s *SQLiteStore) Latest(ctx context.Context, country string) (*model.StoredResearch, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM research_runs WHERE country_key = ?
		 ORDER BY generated_at DESC LIMIT 1`,
		model.IndexKey(country),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(model.ErrNotFound, "sqlite: no runs for %s", country)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: latest run for %s", country)
	}
	return unmarshalRun(payload)
}

func (s *SQLiteStore) Countries(ctx context.Context) ([]model.CountrySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.country, r.overall_score, r.tier, r.generated_at, c.run_count
		FROM research_runs r
		JOIN (
			SELECT country_key, MAX(generated_at) AS latest, COUNT(*) AS run_count
			FROM research_runs GROUP BY country_key
		) c ON c.country_key = r.country_key AND c.latest = r.generated_at
		ORDER BY r.overall_score DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list countries")
	}
	defer rows.Close()

	var summaries []model.CountrySummary
	for rows.Next() {
		var cs model.CountrySummary
		if err := rows.Scan(&cs.Country, &cs.LatestScore, &cs.Tier, &cs.LastUpdated, &cs.RunCount); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan country summary")
		}
		summaries = append(summaries, cs)
	}
	return summaries, eris.Wrap(rows.Err(), "sqlite: iterate countries")
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM research_runs WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete run %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(model.ErrNotFound, "sqlite: run %s", id)
	}
	return nil
}

func unmarshalRun(payload string) (*model.StoredResearch, error) {
	var research model.StoredResearch
	if err := json.Unmarshal([]byte(payload), &research); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal run payload")
	}
	return &research, nil
}
