package model

import "time"

// LayerStatus represents the research outcome for a single layer.
type LayerStatus string

const (
	LayerStatusPending  LayerStatus = "pending"
	LayerStatusComplete LayerStatus = "complete"
	LayerStatusPartial  LayerStatus = "partial"
	LayerStatusFailed   LayerStatus = "failed"
)

// LayerResult is one layer's scored outcome. Immutable once created; keyed
// by layer number within a report.
type LayerResult struct {
	LayerNumber          int            `json:"layer_number"`
	LayerName            string         `json:"layer_name"`
	ShortName            string         `json:"short_name"`
	Score                float64        `json:"score"`     // raw 0-100
	MaxScore             float64        `json:"max_score"` // always 100 for the raw score
	WeightPct            float64        `json:"weight_pct"`
	WeightedContribution float64        `json:"weighted_contribution"`
	Justification        string         `json:"justification"`
	Status               LayerStatus    `json:"status"`
	Metrics              []MetricResult `json:"metrics,omitempty"`
}

// Source is one citation collected during research.
type Source struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Query   string `json:"query,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// CountryReport is the complete assessment for one country. Created once per
// run; never mutated after persistence.
type CountryReport struct {
	Country          string                 `json:"country"`
	Years            []int                  `json:"years"`
	OverallScore     float64                `json:"overall_score"` // 0-100, clamped
	Tier             string                 `json:"tier"`
	ExecutiveSummary string                 `json:"executive_summary"`
	Layers           map[string]LayerResult `json:"layers"` // short_name -> result
	Sources          []string               `json:"sources"`
	GeneratedAt      time.Time              `json:"generated_at"`
}

// RunCost attributes the external-API spend of a single assessment run.
type RunCost struct {
	LLMTokensIn  int64   `json:"llm_tokens_in"`
	LLMTokensOut int64   `json:"llm_tokens_out"`
	SearchCalls  int     `json:"search_calls"`
	LLMUSD       float64 `json:"llm_usd"`
	SearchUSD    float64 `json:"search_usd"`
	TotalUSD     float64 `json:"total_usd"`
}

// StoredResearch is the persistence-layer record for one completed run.
type StoredResearch struct {
	ID                      string                 `json:"id"`
	Country                 string                 `json:"country"`
	Year                    int                    `json:"year"`
	OverallScore            float64                `json:"overall_score"`
	Tier                    string                 `json:"tier"`
	ExecutiveSummary        string                 `json:"executive_summary"`
	Layers                  map[string]LayerResult `json:"layers"`
	Sources                 []string               `json:"sources"`
	GeneratedAt             time.Time              `json:"generated_at"`
	ResearchDurationSeconds float64                `json:"research_duration_seconds"`
	Cost                    RunCost                `json:"cost"`
}

// RunMeta is the index-level summary of a stored run.
type RunMeta struct {
	ID           string    `json:"id"`
	Country      string    `json:"country"`
	Year         int       `json:"year"`
	OverallScore float64   `json:"overall_score"`
	Tier         string    `json:"tier"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// CountrySummary aggregates a country's run history for listings.
type CountrySummary struct {
	Country     string    `json:"country"`
	LatestScore float64   `json:"latest_score"`
	Tier        string    `json:"tier"`
	LastUpdated time.Time `json:"last_updated"`
	RunCount    int       `json:"run_count"`
}
