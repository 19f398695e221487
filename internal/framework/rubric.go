package framework

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Rubric overrides the search query templates of one or more layers. Weights
// and tier boundaries are fixed; only the research strategy is tunable.
type Rubric struct {
	Version string        `yaml:"version"`
	Layers  []RubricLayer `yaml:"layers"`
}

// RubricLayer is the override for a single layer.
type RubricLayer struct {
	Number  int            `yaml:"number"`
	Metrics []RubricMetric `yaml:"metrics"`
}

// RubricMetric replaces the query templates of the named metric.
type RubricMetric struct {
	Name          string   `yaml:"name"`
	SearchQueries []string `yaml:"search_queries"`
}

// LoadRubric reads a rubric override file.
func LoadRubric(path string) (*Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "framework: read rubric file")
	}

	var r Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrap(err, "framework: unmarshal rubric")
	}
	return &r, nil
}

// Apply replaces the matching query templates in the registry. Layers and
// metrics not named in the rubric are left untouched. Unknown layer numbers
// or metric names are reported as errors rather than silently skipped.
func (r *Rubric) Apply() error {
	for _, rl := range r.Layers {
		layer, err := Get(rl.Number)
		if err != nil {
			return eris.Wrapf(err, "framework: rubric layer %d", rl.Number)
		}
		for _, rm := range rl.Metrics {
			found := false
			for i := range layer.Metrics {
				if layer.Metrics[i].Name == rm.Name {
					layer.Metrics[i].SearchQueries = rm.SearchQueries
					found = true
					break
				}
			}
			if !found {
				return eris.Errorf("framework: rubric metric %q not in layer %d", rm.Name, rl.Number)
			}
		}
	}
	return nil
}
