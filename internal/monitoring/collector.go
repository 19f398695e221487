// Package monitoring summarizes stored assessment runs for the stats command
// and the HTTP API.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/naaf-labs/naaf-cli/internal/model"
	"github.com/naaf-labs/naaf-cli/internal/store"
)

// MetricsSnapshot holds a point-in-time view of the assessment corpus.
type MetricsSnapshot struct {
	TotalRuns     int            `json:"total_runs"`
	Countries     int            `json:"countries"`
	RunsPerTier   map[string]int `json:"runs_per_tier"`
	AverageScore  float64        `json:"average_score"`
	TotalCostUSD  float64        `json:"total_cost_usd"`
	PartialLayers int            `json:"partial_layers"`
	LatestRunAt   *time.Time     `json:"latest_run_at,omitempty"`
	CollectedAt   time.Time      `json:"collected_at"`
}

// Collector gathers metrics from the run store.
type Collector struct {
	store store.Store
}

// NewCollector creates a metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// collectWindow bounds how many recent runs feed a snapshot.
const collectWindow = 10000

// Collect gathers a snapshot across the most recent runs of all countries.
func (c *Collector) Collect(ctx context.Context) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		RunsPerTier: make(map[string]int),
		CollectedAt: time.Now().UTC(),
	}

	runs, err := c.store.List(ctx, "", collectWindow)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	snap.TotalRuns = len(runs)
	countries := make(map[string]bool)
	var totalScore float64

	for _, r := range runs {
		countries[r.Country] = true
		snap.RunsPerTier[r.Tier]++
		totalScore += r.OverallScore
		snap.TotalCostUSD += r.Cost.TotalUSD

		for _, lr := range r.Layers {
			if lr.Status != model.LayerStatusComplete {
				snap.PartialLayers++
			}
		}

		if snap.LatestRunAt == nil || r.GeneratedAt.After(*snap.LatestRunAt) {
			at := r.GeneratedAt
			snap.LatestRunAt = &at
		}
	}

	snap.Countries = len(countries)
	if len(runs) > 0 {
		snap.AverageScore = totalScore / float64(len(runs))
	}

	return snap, nil
}
