package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/naaf-labs/naaf-cli/internal/model"
	"github.com/naaf-labs/naaf-cli/internal/report"
)

// RunDir manages the artifact directory for a single assessment run:
// final_report.json, sources.json, and one JSON file per scored layer.
// The directory name is fixed at first use so every artifact of the run
// lands in the same folder; the mutex keeps that safe when layers are
// researched in parallel.
type RunDir struct {
	root string // reports root, e.g. ./reports

	mu   sync.Mutex
	path string // cached {slug}_{ts} path, set on first use
	now  func() time.Time
}

// NewRunDir creates a RunDir rooted at the given reports directory.
func NewRunDir(root string) *RunDir {
	return &RunDir{root: root, now: time.Now}
}

// GetOrCreate returns the run's artifact directory, creating it (and its
// layers/ subdirectory) on first call. Subsequent calls reuse the cached
// path regardless of country.
func (d *RunDir) GetOrCreate(country string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.getOrCreateLocked(country)
}

func (d *RunDir) getOrCreateLocked(country string) (string, error) {
	if d.path == "" {
		ts := d.now().UTC().Format("20060102_150405")
		d.path = filepath.Join(d.root, model.Slug(country)+"_"+ts)
	}
	if err := os.MkdirAll(filepath.Join(d.path, "layers"), 0o755); err != nil {
		return "", eris.Wrap(err, "store: create run directory")
	}
	return d.path, nil
}

// WriteLayer persists one layer result as layers/layer_{n}_{short}.json.
// First write wins: a re-invoked scoring call mid-run must not clobber an
// already-persisted artifact from a stale call.
func (d *RunDir) WriteLayer(country string, result *model.LayerResult) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	dir, err := d.getOrCreateLocked(country)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("layer_%d_%s.json", result.LayerNumber, result.ShortName)
	path := filepath.Join(dir, "layers", name)
	if _, err := os.Stat(path); err == nil {
		zap.L().Debug("store: layer artifact exists, keeping first write",
			zap.Int("layer", result.LayerNumber),
			zap.String("path", path),
		)
		return nil
	}

	return writeJSON(path, result)
}

// WriteReport persists final_report.json, overwriting any previous write.
// Only one report is expected per run, so last write wins.
func (d *RunDir) WriteReport(r *model.CountryReport) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	dir, err := d.getOrCreateLocked(r.Country)
	if err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, "final_report.json"), r)
}

// WriteSources persists the full deduplicated source metadata as
// sources.json, overwriting any previous write.
func (d *RunDir) WriteSources(country string, sources []model.Source) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	dir, err := d.getOrCreateLocked(country)
	if err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, "sources.json"), report.DedupSources(sources))
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "store: marshal %s", filepath.Base(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "store: write %s", filepath.Base(path))
	}
	return nil
}
