package cost

import (
	"github.com/naaf-labs/naaf-cli/internal/config"
	"github.com/naaf-labs/naaf-cli/internal/model"
)

// Calculator computes costs for API usage during an assessment run.
type Calculator struct {
	rates config.PricingConfig
}

// NewCalculator creates a Calculator with the given rates. Missing sections
// fall back to defaults.
func NewCalculator(rates config.PricingConfig) *Calculator {
	def := DefaultRates()
	if rates.Anthropic == nil {
		rates.Anthropic = def.Anthropic
	}
	if rates.YouCom.PerQuery == 0 {
		rates.YouCom = def.YouCom
	}
	if rates.Exa.PerQuery == 0 {
		rates.Exa = def.Exa
	}
	return &Calculator{rates: rates}
}

// Claude computes the cost for a Claude API call.
func (c *Calculator) Claude(model string, input, output int) float64 {
	rate, ok := c.rates.Anthropic[model]
	if !ok {
		return 0
	}
	inCost := (float64(input) / 1e6) * rate.Input
	outCost := (float64(output) / 1e6) * rate.Output
	return inCost + outCost
}

// SearchQueries computes the cost of search queries by provider.
func (c *Calculator) SearchQueries(provider string, n int) float64 {
	switch provider {
	case "youcom":
		return float64(n) * c.rates.YouCom.PerQuery
	case "exa":
		return float64(n) * c.rates.Exa.PerQuery
	default:
		return 0
	}
}

// RunCost totals a run's usage into a cost breakdown for the stored report.
func (c *Calculator) RunCost(llmModel string, tokensIn, tokensOut int64, searchCalls int, searchProvider string) model.RunCost {
	llm := c.Claude(llmModel, int(tokensIn), int(tokensOut))
	search := c.SearchQueries(searchProvider, searchCalls)
	return model.RunCost{
		LLMTokensIn:  tokensIn,
		LLMTokensOut: tokensOut,
		SearchCalls:  searchCalls,
		LLMUSD:       llm,
		SearchUSD:    search,
		TotalUSD:     llm + search,
	}
}

// DefaultRates returns the default pricing rates.
func DefaultRates() config.PricingConfig {
	return config.PricingConfig{
		Anthropic: map[string]config.ModelPricing{
			"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
			"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
			"claude-opus-4-6":            {Input: 15.00, Output: 75.00},
		},
		YouCom: config.SearchPricing{PerQuery: 0.005},
		Exa:    config.SearchPricing{PerQuery: 0.005},
	}
}
