// Package scoring implements the weighted layer scoring and aggregation for
// the AI Power Score.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/naaf-labs/naaf-cli/internal/framework"
	"github.com/naaf-labs/naaf-cli/internal/model"
)

// ScoreLayer validates a raw 0-100 layer score and computes its weighted
// contribution. It performs no persistence and no aggregation.
func ScoreLayer(layerNumber int, rawScore float64, justification string) (*model.LayerResult, error) {
	if layerNumber < 1 || layerNumber > framework.NumLayers {
		return nil, &model.ValidationError{
			Field:   "layer_number",
			Message: fmt.Sprintf("must be 1-%d, got %d", framework.NumLayers, layerNumber),
		}
	}
	if rawScore < 0 || rawScore > 100 {
		return nil, &model.ValidationError{
			Field:   "score",
			Message: fmt.Sprintf("must be 0-100, got %g", rawScore),
		}
	}

	layer, err := framework.Get(layerNumber)
	if err != nil {
		return nil, err
	}

	result := &model.LayerResult{
		LayerNumber:          layerNumber,
		LayerName:            layer.Name,
		ShortName:            layer.ShortName,
		Score:                round1(rawScore),
		MaxScore:             100,
		WeightPct:            layer.Weight,
		WeightedContribution: round2((rawScore / 100.0) * layer.Weight),
		Justification:        justification,
		Status:               model.LayerStatusComplete,
	}

	zap.L().Debug("scoring: layer scored",
		zap.Int("layer", layerNumber),
		zap.Float64("raw_score", rawScore),
		zap.Float64("contribution", result.WeightedContribution),
	)
	return result, nil
}

// Aggregate computes the overall AI Power Score from per-layer raw scores.
// Missing layers count as 0; each raw score is clamped to [0,100] and the
// total is clamped to 100 to absorb floating-point overshoot.
func Aggregate(scores map[int]float64) float64 {
	var total float64
	for n := 1; n <= framework.NumLayers; n++ {
		raw := math.Max(0, math.Min(100, scores[n]))
		total += (raw / 100.0) * framework.Weight(n)
	}
	return math.Min(total, 100)
}

// Summary formats a scored layer as confirmation text for the research
// collaborator.
func Summary(r *model.LayerResult) string {
	return fmt.Sprintf(
		"## Layer %d: %s\n"+
			"**Raw Score**: %.1f / 100\n"+
			"**Weight**: %g%%\n"+
			"**Weighted Contribution**: %.2f points\n"+
			"**Justification**: %s\n",
		r.LayerNumber, r.LayerName, r.Score, r.WeightPct, r.WeightedContribution, r.Justification,
	)
}

// Breakdown formats the full aggregation: per-layer contributions, the
// overall score, and the assigned tier.
func Breakdown(scores map[int]float64) string {
	var b strings.Builder

	overall := Aggregate(scores)
	tier := framework.Classify(overall)
	desc, _ := framework.Describe(tier)

	fmt.Fprintf(&b, "# Overall AI Power Score\n\n")
	fmt.Fprintf(&b, "**Score**: %.2f / 100\n", overall)
	fmt.Fprintf(&b, "**Tier**: %s\n", tier)
	fmt.Fprintf(&b, "**Description**: %s\n\n", desc)
	fmt.Fprintf(&b, "## Layer Breakdown\n")

	for n := 1; n <= framework.NumLayers; n++ {
		raw := math.Max(0, math.Min(100, scores[n]))
		weight := framework.Weight(n)
		layer, _ := framework.Get(n)
		fmt.Fprintf(&b, "  Layer %d (%s): %.1f/100 x %g%% = %.2f pts\n",
			n, layer.Name, raw, weight, (raw/100.0)*weight)
	}
	return b.String()
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
