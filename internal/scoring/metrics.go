package scoring

import (
	"github.com/naaf-labs/naaf-cli/internal/framework"
	"github.com/naaf-labs/naaf-cli/internal/model"
)

// MetricWeightedScore computes a layer's raw 0-100 score from per-metric
// research results, weighting each metric's confidence by the points it
// carries in the framework table. This is the alternate rollup used when a
// researcher supplies explicit metric evidence instead of a single summary
// score; the primary pipeline scores layers directly via ScoreLayer.
func MetricWeightedScore(layerNumber int, results []model.MetricResult) float64 {
	layer, err := framework.Get(layerNumber)
	if err != nil {
		return 0
	}

	byName := make(map[string]float64, len(layer.Metrics))
	for _, m := range layer.Metrics {
		byName[m.Name] = m.Weight
	}

	var totalWeight, weighted float64
	for _, r := range results {
		weight, ok := byName[r.MetricName]
		if !ok || r.Confidence <= 0 {
			continue
		}
		weighted += r.Confidence * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0
	}
	// Normalize to the 0-100 raw-score scale.
	return (weighted / totalWeight) * 100
}
