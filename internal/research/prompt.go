package research

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/naaf-labs/naaf-cli/internal/model"
)

const layerSystemPrompt = `You are a national AI capability analyst. You assess one infrastructure layer of a country's AI stack against the global leader using the search evidence provided. Be objective and data-driven. Prioritize government and IGO sources. Respond with JSON only.`

const summarySystemPrompt = `You are a national AI capability analyst writing the executive summary of a country assessment. Three to five sentences: overall standing, strongest and weakest layers, and the main strategic dependency. No markdown headings.`

// evidence is the search material collected for one layer.
type evidence struct {
	query   string
	results []SearchResult
}

// buildLayerPrompt formats the scoring request for one layer.
func buildLayerPrompt(layer *model.Layer, country string, year int, ev []evidence) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Assess **Layer %d: %s** (%s) for %s, assessment period %d-%d.\n\n",
		layer.Number, layer.Name, layer.ShortName, country, year-1, year+1)
	fmt.Fprintf(&sb, "This layer is worth %.0f%% of the overall AI Power Score.\n\n", layer.Weight)

	sb.WriteString("## Metrics\n")
	for _, m := range layer.Metrics {
		fmt.Fprintf(&sb, "- **%s** (%.0f pts): %s\n", m.Name, m.Weight, m.Description)
	}

	sb.WriteString("\n## Search Evidence\n")
	if len(ev) == 0 {
		sb.WriteString("(no search results were available)\n")
	}
	for _, e := range ev {
		fmt.Fprintf(&sb, "\n### Query: %s\n", e.query)
		for _, r := range e.results {
			fmt.Fprintf(&sb, "- %s — %s\n", r.Title, r.URL)
			if r.Snippet != "" {
				fmt.Fprintf(&sb, "  %s\n", truncate(r.Snippet, 500))
			}
		}
	}

	sb.WriteString(`
## Output
Score this layer 0-100, where 100 is the best in the world and 0 is no capability.
Cite key findings and source URLs in the justification.
Respond with a single JSON object:
{"score": <number 0-100>, "justification": "<findings with source URLs>"}
`)

	return sb.String()
}

// buildSummaryPrompt formats the executive summary request from the scored
// layers.
func buildSummaryPrompt(country string, overall float64, tier string, results []model.LayerResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Country: %s\nOverall AI Power Score: %.2f/100\nTier: %s\n\nLayer scores:\n", country, overall, tier)
	for _, r := range results {
		fmt.Fprintf(&sb, "- Layer %d %s (%.0f%%): %.1f/100 [%s]\n",
			r.LayerNumber, r.LayerName, r.WeightPct, r.Score, r.Status)
	}
	sb.WriteString("\nWrite the executive summary.")

	return sb.String()
}

// cleanJSON strips markdown fences and extracts the JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// truncate caps s at n bytes, backing up to a rune boundary so a multibyte
// character is never split.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
