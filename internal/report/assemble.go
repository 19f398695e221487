// Package report assembles the final country report from scored layers.
// Assembly is pure: no I/O, so reports can be tested independent of the
// filesystem.
package report

import (
	"sort"
	"time"

	"github.com/naaf-labs/naaf-cli/internal/model"
)

// Assemble builds the CountryReport from the run's scored layers. Layers are
// keyed by short name in layer-number order; statuses may be partial or
// failed for layers the researcher could not complete — they are recorded,
// not retried. Sources are deduplicated first-seen by exact URL string.
func Assemble(
	country string,
	year int,
	results []model.LayerResult,
	overallScore float64,
	tier string,
	executiveSummary string,
	sources []model.Source,
) *model.CountryReport {
	sorted := make([]model.LayerResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LayerNumber < sorted[j].LayerNumber
	})

	layers := make(map[string]model.LayerResult, len(sorted))
	for _, r := range sorted {
		layers[r.ShortName] = r
	}

	return &model.CountryReport{
		Country:          country,
		Years:            []int{year - 1, year, year + 1},
		OverallScore:     overallScore,
		Tier:             tier,
		ExecutiveSummary: executiveSummary,
		Layers:           layers,
		Sources:          DedupURLs(sources),
		GeneratedAt:      time.Now().UTC(),
	}
}

// DedupURLs keeps the first occurrence of each URL in arrival order. The
// match is on the exact URL string; trailing slashes, scheme, and case are
// not normalized.
func DedupURLs(sources []model.Source) []string {
	seen := make(map[string]bool, len(sources))
	urls := make([]string, 0, len(sources))
	for _, s := range sources {
		if s.URL == "" || seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		urls = append(urls, s.URL)
	}
	return urls
}

// DedupSources keeps the first full source record per URL in arrival order,
// for the sources.json artifact.
func DedupSources(sources []model.Source) []model.Source {
	seen := make(map[string]bool, len(sources))
	out := make([]model.Source, 0, len(sources))
	for _, s := range sources {
		if s.URL == "" || seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		out = append(out, s)
	}
	return out
}
