package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/naaf-labs/naaf-cli/internal/model"
)

const indexVersion = "1.0"

// runIndex is the on-disk index of all stored runs.
type runIndex struct {
	Version         string              `json:"version"`
	Runs            []model.RunMeta     `json:"runs"`
	ByCountry       map[string][]string `json:"by_country"`
	LatestByCountry map[string]string   `json:"latest_by_country"`
}

func newRunIndex() *runIndex {
	return &runIndex{
		Version:         indexVersion,
		ByCountry:       map[string][]string{},
		LatestByCountry: map[string]string{},
	}
}

// FileStore keeps each run as {id}.json under a storage directory, with an
// index.json holding the append-only run list and derived country maps.
// The index read-modify-write is a critical section: concurrent saves for
// different countries would otherwise lose updates.
type FileStore struct {
	dir string

	mu    sync.Mutex
	index *runIndex
}

// NewFileStore opens (or creates) a file store at dir and loads its index.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrap(err, "store: create storage directory")
	}

	s := &FileStore{dir: dir}
	if err := s.loadIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) indexPath() string {
	return filepath.Join(s.dir, "index.json")
}

func (s *FileStore) runPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) loadIndex() error {
	data, err := os.ReadFile(s.indexPath())
	if os.IsNotExist(err) {
		s.index = newRunIndex()
		return nil
	}
	if err != nil {
		return eris.Wrap(err, "store: read index")
	}

	idx := newRunIndex()
	if err := json.Unmarshal(data, idx); err != nil {
		return eris.Wrap(err, "store: unmarshal index")
	}
	s.index = idx
	return nil
}

func (s *FileStore) saveIndexLocked() error {
	data, err := json.MarshalIndent(s.index, "", "  ")
	if err != nil {
		return eris.Wrap(err, "store: marshal index")
	}
	if err := os.WriteFile(s.indexPath(), data, 0o644); err != nil {
		return eris.Wrap(err, "store: write index")
	}
	return nil
}

// Save writes the full record to {id}.json and appends it to the index.
func (s *FileStore) Save(_ context.Context, research *model.StoredResearch) (string, error) {
	if research.GeneratedAt.IsZero() {
		research.GeneratedAt = time.Now().UTC()
	}
	if research.ID == "" {
		research.ID = GenerateID(research.Country, research.GeneratedAt)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(research, "", "  ")
	if err != nil {
		return "", eris.Wrapf(err, "store: marshal run %s", research.ID)
	}
	if err := os.WriteFile(s.runPath(research.ID), data, 0o644); err != nil {
		return "", eris.Wrapf(err, "store: write run %s", research.ID)
	}

	key := model.IndexKey(research.Country)
	s.index.Runs = append(s.index.Runs, model.RunMeta{
		ID:           research.ID,
		Country:      research.Country,
		Year:         research.Year,
		OverallScore: research.OverallScore,
		Tier:         research.Tier,
		GeneratedAt:  research.GeneratedAt,
	})
	s.index.ByCountry[key] = append(s.index.ByCountry[key], research.ID)
	s.index.LatestByCountry[key] = research.ID

	if err := s.saveIndexLocked(); err != nil {
		return "", err
	}

	zap.L().Info("store: saved research run",
		zap.String("id", research.ID),
		zap.String("country", research.Country),
		zap.Float64("overall_score", research.OverallScore),
	)
	return research.ID, nil
}

// Get reads a run straight from its file; no index consultation needed for
// a direct ID lookup.
func (s *FileStore) Get(_ context.Context, id string) (*model.StoredResearch, error) {
	data, err := os.ReadFile(s.runPath(id))
	if os.IsNotExist(err) {
		return nil, eris.Wrapf(model.ErrNotFound, "store: run %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: read run %s", id)
	}

	var research model.StoredResearch
	if err := json.Unmarshal(data, &research); err != nil {
		return nil, eris.Wrapf(err, "store: unmarshal run %s", id)
	}
	return &research, nil
}

// List returns runs most recent first. A country filter keeps the last
// limit IDs of that country's insertion-ordered run list.
func (s *FileStore) List(ctx context.Context, country string, limit int) ([]model.StoredResearch, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	s.mu.Lock()
	var ids []string
	if country != "" {
		ids = append(ids, s.index.ByCountry[model.IndexKey(country)]...)
		if len(ids) > limit {
			ids = ids[len(ids)-limit:]
		}
		// Insertion order is chronological; flip to most-recent-first.
		for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
			ids[i], ids[j] = ids[j], ids[i]
		}
	} else {
		metas := make([]model.RunMeta, len(s.index.Runs))
		copy(metas, s.index.Runs)
		sort.SliceStable(metas, func(i, j int) bool {
			return metas[i].GeneratedAt.After(metas[j].GeneratedAt)
		})
		if len(metas) > limit {
			metas = metas[:limit]
		}
		for _, m := range metas {
			ids = append(ids, m.ID)
		}
	}
	s.mu.Unlock()

	results := make([]model.StoredResearch, 0, len(ids))
	for _, id := range ids {
		research, err := s.Get(ctx, id)
		if err != nil {
			// Indexed but missing on disk: skip rather than fail the listing.
			zap.L().Warn("store: indexed run missing on disk", zap.String("id", id))
			continue
		}
		results = append(results, *research)
	}
	return results, nil
}

// Latest returns the most recent run for a country.
func (s *FileStore) Latest(ctx context.Context, country string) (*model.StoredResearch, error) {
	s.mu.Lock()
	id, ok := s.index.LatestByCountry[model.IndexKey(country)]
	s.mu.Unlock()
	if !ok {
		return nil, eris.Wrapf(model.ErrNotFound, "store: no runs for %s", country)
	}
	return s.Get(ctx, id)
}

// Countries summarizes the latest run per country, highest score first.
func (s *FileStore) Countries(ctx context.Context) ([]model.CountrySummary, error) {
	s.mu.Lock()
	latest := make(map[string]string, len(s.index.LatestByCountry))
	counts := make(map[string]int, len(s.index.ByCountry))
	for key, id := range s.index.LatestByCountry {
		latest[key] = id
		counts[key] = len(s.index.ByCountry[key])
	}
	s.mu.Unlock()

	summaries := make([]model.CountrySummary, 0, len(latest))
	for key, id := range latest {
		research, err := s.Get(ctx, id)
		if err != nil {
			zap.L().Warn("store: latest run missing on disk", zap.String("id", id))
			continue
		}
		summaries = append(summaries, model.CountrySummary{
			Country:     research.Country,
			LatestScore: research.OverallScore,
			Tier:        research.Tier,
			LastUpdated: research.GeneratedAt,
			RunCount:    counts[key],
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LatestScore > summaries[j].LatestScore
	})
	return summaries, nil
}

// Delete removes a run file and repairs the index, pointing
// latest_by_country at the previous run when the deleted run was latest.
func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.runPath(id)); os.IsNotExist(err) {
		return eris.Wrapf(model.ErrNotFound, "store: run %s", id)
	}

	kept := s.index.Runs[:0]
	for _, m := range s.index.Runs {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.index.Runs = kept

	for key, ids := range s.index.ByCountry {
		for i, rid := range ids {
			if rid != id {
				continue
			}
			ids = append(ids[:i], ids[i+1:]...)
			if len(ids) == 0 {
				delete(s.index.ByCountry, key)
			} else {
				s.index.ByCountry[key] = ids
			}
			if s.index.LatestByCountry[key] == id {
				if len(ids) == 0 {
					delete(s.index.LatestByCountry, key)
				} else {
					s.index.LatestByCountry[key] = ids[len(ids)-1]
				}
			}
			break
		}
	}

	if err := s.saveIndexLocked(); err != nil {
		return err
	}
	if err := os.Remove(s.runPath(id)); err != nil {
		return eris.Wrapf(err, "store: remove run %s", id)
	}

	zap.L().Info("store: deleted research run", zap.String("id", id))
	return nil
}

// Migrate is a no-op for the file backend; the directory and index are
// created on open.
func (s *FileStore) Migrate(context.Context) error { return nil }

// Close is a no-op for the file backend.
func (s *FileStore) Close() error { return nil }
