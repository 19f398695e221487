package model

// LayerMetric is a single measurable indicator within a layer.
type LayerMetric struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Unit          string   `json:"unit"`
	Weight        float64  `json:"weight"` // points allocated to this metric
	Formula       string   `json:"formula"`
	Sources       []string `json:"sources"`        // preferred source domains
	SearchQueries []string `json:"search_queries"` // templates with {country}/{year} placeholders
}

// Layer is one of the eight fixed assessment dimensions. Layers are created
// at process start and never mutated.
type Layer struct {
	Number      int           `json:"number"` // 1-8
	Name        string        `json:"name"`
	ShortName   string        `json:"short_name"`
	Description string        `json:"description"`
	Weight      float64       `json:"weight"` // percentage points; all eight sum to 100
	Metrics     []LayerMetric `json:"metrics"`
}

// MetricResult is one extracted data point for a layer metric. Produced by
// the research collaborator; used for justification, not aggregation.
type MetricResult struct {
	MetricName  string   `json:"metric_name"`
	Value       *float64 `json:"value,omitempty"`
	Unit        string   `json:"unit"`
	Year        int      `json:"year"`
	SourceURL   string   `json:"source_url"`
	SourceTitle string   `json:"source_title"`
	Confidence  float64  `json:"confidence"` // 0.0-1.0
	RawText     string   `json:"raw_text"`
}
