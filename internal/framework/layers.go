// Package framework defines the eight-layer National AI Assessment Framework:
// the fixed layer registry, the power-tier classification table, and search
// query generation for layer research.
package framework

import (
	"fmt"

	"github.com/naaf-labs/naaf-cli/internal/model"
)

// layers holds the fixed eight-layer registry in layer-number order.
// Weights are percentage points and sum to exactly 100.
var layers = []model.Layer{
	{
		Number:      1,
		Name:        "Power & Electricity",
		ShortName:   "power",
		Description: "The nation's ability to supply cheap, stable, and sustainable electricity to industrial consumers, specifically data centers.",
		Weight:      20,
		Metrics: []model.LayerMetric{
			{
				Name:        "Industrial Capacity",
				Description: "Total electricity generation capacity",
				Unit:        "TWh",
				Weight:      8,
				Formula:     "(Country Generation TWh / Global Max TWh) x 8",
				Sources:     []string{"iea.org", "worldbank.org", "eia.gov"},
				SearchQueries: []string{
					"{country} electricity generation TWh {year}",
					"{country} total power output capacity {year} site:iea.org",
					"{country} electricity statistics {year} site:worldbank.org",
				},
			},
			{
				Name:        "Cost Efficiency",
				Description: "Industrial electricity price",
				Unit:        "USD/kWh",
				Weight:      4,
				Formula:     "(Global Min Price / Country Industrial Price) x 4",
				Sources:     []string{"globalpetrolprices.com", "iea.org"},
				SearchQueries: []string{
					"{country} industrial electricity price kWh {year}",
					"{country} electricity tariff industrial {year} site:globalpetrolprices.com",
				},
			},
			{
				Name:        "Grid Reliability & Clean Mix",
				Description: "Grid stability and renewable energy percentage",
				Unit:        "%",
				Weight:      4,
				Formula:     "Qualitative scoring based on clean mix % and outage hours",
				Sources:     []string{"irena.org", "iea.org"},
				SearchQueries: []string{
					"{country} renewable energy mix percentage {year}",
					"{country} clean energy solar wind nuclear hydro {year}",
				},
			},
			{
				Name:        "National Output Percentile",
				Description: "Percentile rank of total electricity generation",
				Unit:        "percentile",
				Weight:      4,
				Formula:     "(Percentile Rank / 100) x 4",
				Sources:     []string{"iea.org", "worldbank.org"},
				SearchQueries: []string{
					"{country} electricity generation ranking world {year}",
					"global electricity production by country {year}",
				},
			},
		},
	},
	{
		Number:      2,
		Name:        "Chipset Manufacturers",
		ShortName:   "chips",
		Description: "The nation's control over the semiconductor supply chain, distinguishing between design (IP) and fabrication (manufacturing).",
		Weight:      15,
		Metrics: []model.LayerMetric{
			{
				Name:        "Fabrication Capacity",
				Description: "Domestic semiconductor fabrication capability",
				Unit:        "node_nm",
				Weight:      10,
				Formula:     "10 pts (<5nm), 7 pts (<14nm), 3 pts (>28nm), 0 pts (none)",
				Sources:     []string{"semi.org", "chips.gov"},
				SearchQueries: []string{
					"{country} semiconductor fab capacity {year}",
					"{country} chip manufacturing plants nanometer {year}",
					"{country} TSMC Intel Samsung fab {year}",
				},
			},
			{
				Name:        "Equipment & Supply Chain Control",
				Description: "Control of critical chipmaking equipment and materials",
				Unit:        "categorical",
				Weight:      5,
				Formula:     "5 pts (monopoly), 3 pts (major supplier), 1 pt (minor)",
				Sources:     []string{"semi.org", "asml.com"},
				SearchQueries: []string{
					"{country} semiconductor equipment manufacturers {year}",
					"{country} lithography etching chip equipment {year}",
					"{country} critical minerals gallium germanium silicon {year}",
				},
			},
		},
	},
	{
		Number:      3,
		Name:        "Cloud & Data Centers",
		ShortName:   "cloud",
		Description: "The physical housing and networking for AI workloads and whether compute is sovereign.",
		Weight:      15,
		Metrics: []model.LayerMetric{
			{
				Name:        "Compute Density",
				Description: "Hyperscale data center count",
				Unit:        "count",
				Weight:      10,
				Formula:     "(Country Hyperscale DC Count / Global Max Count) x 10",
				Sources:     []string{"datacentermap.com", "synergyrg.com"},
				SearchQueries: []string{
					"{country} hyperscale data centers count {year}",
					"{country} data center capacity MW {year}",
					"{country} cloud infrastructure AWS Azure Google {year}",
				},
			},
			{
				Name:        "Sovereign Cloud",
				Description: "Domestic vs foreign cloud provider share",
				Unit:        "%",
				Weight:      5,
				Formula:     "5 pts (>50% domestic), 0 pts (foreign dominated)",
				Sources:     []string{"synergyrg.com", "cloudscene.com"},
				SearchQueries: []string{
					"{country} sovereign cloud providers market share {year}",
					"{country} domestic cloud vs AWS Azure {year}",
				},
			},
		},
	},
	{
		Number:      4,
		Name:        "Model Developers",
		ShortName:   "models",
		Description: "The ability to train foundation models domestically rather than only using foreign APIs.",
		Weight:      10,
		Metrics: []model.LayerMetric{
			{
				Name:        "Frontier Model Capacity",
				Description: "Domestic foundation models and supercomputing power",
				Unit:        "count",
				Weight:      10,
				Formula:     "(Domestic LLMs on LMSYS Leaderboard / Global Max) x 10",
				Sources:     []string{"top500.org", "aiindex.stanford.edu", "arxiv.org"},
				SearchQueries: []string{
					"{country} large language models LLM {year}",
					"{country} foundation models AI {year}",
					"{country} TOP500 supercomputer {year}",
					"{country} AI patents filed {year} site:wipo.int",
				},
			},
		},
	},
	{
		Number:      5,
		Name:        "Platform & Data",
		ShortName:   "data",
		Description: "The quality, accessibility, and governance of data needed to feed AI models.",
		Weight:      10,
		Metrics: []model.LayerMetric{
			{
				Name:        "Data Openness",
				Description: "Open government data accessibility",
				Unit:        "index",
				Weight:      5,
				Formula:     "OECD OURdata Index normalized to 5 points",
				Sources:     []string{"oecd.org", "opendatawatch.com"},
				SearchQueries: []string{
					"{country} open data index score {year}",
					"{country} government data portal {year} site:oecd.org",
				},
			},
			{
				Name:        "Data Volume Potential",
				Description: "Internet population as proxy for data generation",
				Unit:        "millions",
				Weight:      5,
				Formula:     "(Internet Population / Global Max) x 5",
				Sources:     []string{"worldbank.org", "itu.int"},
				SearchQueries: []string{
					"{country} internet users millions {year}",
					"{country} internet penetration rate {year}",
				},
			},
		},
	},
	{
		Number:      6,
		Name:        "Applications & Startups",
		ShortName:   "apps",
		Description: "The commercial ecosystem that turns infrastructure into economic value.",
		Weight:      10,
		Metrics: []model.LayerMetric{
			{
				Name:        "Capital Depth",
				Description: "AI venture capital investment",
				Unit:        "USD billions",
				Weight:      10,
				Formula:     "(Annual AI VC Investment / Global Max) x 10",
				Sources:     []string{"dealroom.co", "crunchbase.com", "cbinsights.com"},
				SearchQueries: []string{
					"{country} AI startup funding venture capital {year}",
					"{country} AI investment billions {year}",
					"{country} AI unicorn companies {year}",
				},
			},
		},
	},
	{
		Number:      7,
		Name:        "Education & Consulting",
		ShortName:   "talent",
		Description: "The human capital required to build and maintain AI systems.",
		Weight:      10,
		Metrics: []model.LayerMetric{
			{
				Name:        "Talent Pool",
				Description: "Annual CS/AI graduates",
				Unit:        "thousands",
				Weight:      5,
				Formula:     "(Annual CS/AI Graduates / Global Max) x 5",
				Sources:     []string{"unesco.org", "uis.unesco.org"},
				SearchQueries: []string{
					"{country} computer science graduates {year}",
					"{country} AI machine learning PhD graduates {year}",
					"{country} STEM graduates statistics {year}",
				},
			},
			{
				Name:        "Research Impact",
				Description: "University research quality",
				Unit:        "h-index",
				Weight:      5,
				Formula:     "(H-Index of Top University / Global Max H-Index) x 5",
				Sources:     []string{"topuniversities.com", "timeshighereducation.com"},
				SearchQueries: []string{
					"{country} top university computer science ranking {year}",
					"{country} AI research publications citations {year}",
				},
			},
		},
	},
	{
		Number:      8,
		Name:        "Implementation",
		ShortName:   "adoption",
		Description: "How widely AI is used by government and traditional industries.",
		Weight:      10,
		Metrics: []model.LayerMetric{
			{
				Name:        "Government Readiness",
				Description: "Government AI readiness index",
				Unit:        "index",
				Weight:      10,
				Formula:     "Oxford Insights Government AI Readiness Index normalized to 10 points",
				Sources:     []string{"oxfordinsights.com", "oecd.org"},
				SearchQueries: []string{
					"{country} government AI readiness index {year}",
					"{country} Oxford Insights AI ranking {year}",
					"{country} national AI strategy {year}",
					"{country} AI adoption rate businesses {year}",
				},
			},
		},
	},
}

// NumLayers is the number of assessment layers in the framework.
const NumLayers = 8

func init() {
	if sum := WeightSum(); sum != 100 {
		panic(fmt.Sprintf("framework: layer weights sum to %v, want 100", sum))
	}
}

// Get returns the layer definition for number n (1-8).
func Get(n int) (*model.Layer, error) {
	if n < 1 || n > NumLayers {
		return nil, fmt.Errorf("framework: layer %d: %w", n, model.ErrNotFound)
	}
	return &layers[n-1], nil
}

// All returns the eight layer definitions in layer-number order.
func All() []model.Layer {
	out := make([]model.Layer, len(layers))
	copy(out, layers)
	return out
}

// Weight returns the percentage weight of layer n, or 0 for unknown layers.
func Weight(n int) float64 {
	if n < 1 || n > NumLayers {
		return 0
	}
	return layers[n-1].Weight
}

// ShortName returns the slug used for file names and report keys of layer n.
func ShortName(n int) string {
	if n < 1 || n > NumLayers {
		return ""
	}
	return layers[n-1].ShortName
}

// WeightSum returns the sum of all layer weights.
func WeightSum() float64 {
	var sum float64
	for _, l := range layers {
		sum += l.Weight
	}
	return sum
}
