package framework

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// LayerQuery is one expanded search query for a layer metric.
type LayerQuery struct {
	Query       string   `json:"query"`
	MetricName  string   `json:"metric_name"`
	LayerNumber int      `json:"layer_number"`
	LayerName   string   `json:"layer_name"`
	Sources     []string `json:"sources"`
}

// Queries expands the search query templates of layer n for a country and
// target year.
func Queries(country string, n int, year int) ([]LayerQuery, error) {
	layer, err := Get(n)
	if err != nil {
		return nil, err
	}

	var queries []LayerQuery
	for _, metric := range layer.Metrics {
		for _, tmpl := range metric.SearchQueries {
			queries = append(queries, LayerQuery{
				Query:       expandTemplate(tmpl, country, year),
				MetricName:  metric.Name,
				LayerNumber: layer.Number,
				LayerName:   layer.Name,
				Sources:     metric.Sources,
			})
		}
	}
	return queries, nil
}

// AllQueries expands queries for all eight layers.
func AllQueries(country string, year int) (map[int][]LayerQuery, error) {
	all := make(map[int][]LayerQuery, NumLayers)
	for n := 1; n <= NumLayers; n++ {
		qs, err := Queries(country, n, year)
		if err != nil {
			return nil, eris.Wrapf(err, "framework: expand queries for layer %d", n)
		}
		all[n] = qs
	}
	return all, nil
}

// Domains returns the preferred source domains across all metrics of layer n,
// deduplicated in first-seen order. Used for search-API domain filters.
func Domains(n int) []string {
	layer, err := Get(n)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var domains []string
	for _, metric := range layer.Metrics {
		for _, d := range metric.Sources {
			if !seen[d] {
				seen[d] = true
				domains = append(domains, d)
			}
		}
	}
	return domains
}

func expandTemplate(tmpl, country string, year int) string {
	q := strings.ReplaceAll(tmpl, "{country}", country)
	return strings.ReplaceAll(q, "{year}", strconv.Itoa(year))
}
