package framework

import (
	"fmt"

	"github.com/naaf-labs/naaf-cli/internal/model"
)

// Tier is one band of the power-tier classification.
type Tier struct {
	Label       string  `json:"label"`
	MinScore    float64 `json:"min_score"` // inclusive
	MaxScore    float64 `json:"max_score"` // inclusive
	Description string  `json:"description"`
}

// tiers partitions [0,100], evaluated in order, first match wins.
var tiers = []Tier{
	{
		Label:       "Tier 1: Hegemon",
		MinScore:    80,
		MaxScore:    100,
		Description: "Full-stack sovereignty. Controls atoms (chips/power) and bits (models/data). Can sanction others effectively.",
	},
	{
		Label:       "Tier 2: Strategic Specialist",
		MinScore:    50,
		MaxScore:    79,
		Description: "World-class in specific layers but dependent on Hegemons for others.",
	},
	{
		Label:       "Tier 3: Adopter",
		MinScore:    30,
		MaxScore:    49,
		Description: "Good infrastructure and talent, but largely consumes foreign AI technology.",
	},
	{
		Label:       "Tier 4: Consumer",
		MinScore:    0,
		MaxScore:    29,
		Description: "Reliant entirely on imported hardware, software, and energy models. High risk of digital dependency.",
	},
}

// Classify maps an overall score to a power tier label. The table is in
// descending order, so matching on the inclusive lower bound covers
// fractional scores between band edges (79.9 is still a Strategic
// Specialist). Scores are expected to be clamped to [0,100] upstream;
// anything else falls through to the Consumer tier rather than failing.
func Classify(score float64) string {
	if score >= 0 && score <= 100 {
		for _, t := range tiers {
			if score >= t.MinScore {
				return t.Label
			}
		}
	}
	return "Tier 4: Consumer"
}

// Describe returns the description for a tier label.
func Describe(label string) (string, error) {
	for _, t := range tiers {
		if t.Label == label {
			return t.Description, nil
		}
	}
	return "", fmt.Errorf("framework: tier %q: %w", label, model.ErrNotFound)
}

// Tiers returns the classification table in evaluation order.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}
