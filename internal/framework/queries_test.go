package framework

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueriesExpansion(t *testing.T) {
	t.Parallel()

	qs, err := Queries("Japan", 1, 2025)
	require.NoError(t, err)
	require.NotEmpty(t, qs)

	for _, q := range qs {
		assert.Equal(t, 1, q.LayerNumber)
		assert.Equal(t, "Power & Electricity", q.LayerName)
		assert.NotContains(t, q.Query, "{country}")
		assert.NotContains(t, q.Query, "{year}")
	}
	assert.Equal(t, "Japan electricity generation TWh 2025", qs[0].Query)
}

func TestQueriesUnknownLayer(t *testing.T) {
	t.Parallel()

	_, err := Queries("Japan", 0, 2025)
	assert.Error(t, err)
}

func TestAllQueries(t *testing.T) {
	t.Parallel()

	all, err := AllQueries("Brazil", 2024)
	require.NoError(t, err)
	require.Len(t, all, NumLayers)
	for n := 1; n <= NumLayers; n++ {
		assert.NotEmpty(t, all[n], "layer %d", n)
	}
}

func TestDomains(t *testing.T) {
	t.Parallel()

	domains := Domains(1)
	assert.Contains(t, domains, "iea.org")
	// Dedup: iea.org appears in several metrics but only once here.
	count := 0
	for _, d := range domains {
		if d == "iea.org" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	assert.Nil(t, Domains(42))
}

func TestRubricApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rubric.yaml")
	content := `version: "1.1"
layers:
  - number: 4
    metrics:
      - name: Frontier Model Capacity
        search_queries:
          - "{country} open weight models {year}"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	layer, err := Get(4)
	require.NoError(t, err)
	original := layer.Metrics[0].SearchQueries
	defer func() { layer.Metrics[0].SearchQueries = original }()

	rubric, err := LoadRubric(path)
	require.NoError(t, err)
	require.NoError(t, rubric.Apply())

	qs, err := Queries("India", 4, 2025)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "India open weight models 2025", qs[0].Query)

	// Other layers untouched.
	other, err := Queries("India", 1, 2025)
	require.NoError(t, err)
	assert.Contains(t, other[0].Query, "electricity")
}

func TestRubricApplyUnknownMetric(t *testing.T) {
	t.Parallel()

	r := &Rubric{Layers: []RubricLayer{{
		Number:  2,
		Metrics: []RubricMetric{{Name: "No Such Metric"}},
	}}}
	assert.Error(t, r.Apply())
}
