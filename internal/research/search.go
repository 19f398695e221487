package research

import (
	"context"
	"time"

	"github.com/naaf-labs/naaf-cli/pkg/exa"
	"github.com/naaf-labs/naaf-cli/pkg/youcom"
)

// exaLookbackDays bounds how far back Exa evidence may be published.
const exaLookbackDays = 2 * 365

// SearchResult is one web hit, normalized across providers.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// Searcher abstracts a web search provider for layer research.
type Searcher interface {
	// Search runs one query, optionally restricted to preferred domains.
	Search(ctx context.Context, query string, domains []string, numResults int) ([]SearchResult, error)

	// Provider names the backend for cost attribution and logging.
	Provider() string
}

type youcomSearcher struct {
	client youcom.Client
}

// NewYouComSearcher adapts a You.com client to the Searcher interface.
func NewYouComSearcher(client youcom.Client) Searcher {
	return &youcomSearcher{client: client}
}

func (s *youcomSearcher) Provider() string { return "youcom" }

func (s *youcomSearcher) Search(ctx context.Context, query string, domains []string, numResults int) ([]SearchResult, error) {
	resp, err := s.client.Search(ctx, youcom.SearchRequest{
		Query:       query,
		NumResults:  numResults,
		SiteDomains: domains,
	})
	if err != nil {
		return nil, err
	}

	out := make([]SearchResult, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		snippet := h.Description
		if snippet == "" && len(h.Snippets) > 0 {
			snippet = h.Snippets[0]
		}
		out = append(out, SearchResult{Title: h.Title, URL: h.URL, Snippet: snippet})
	}
	return out, nil
}

type exaSearcher struct {
	client exa.Client
}

// NewExaSearcher adapts an Exa client to the Searcher interface.
func NewExaSearcher(client exa.Client) Searcher {
	return &exaSearcher{client: client}
}

func (s *exaSearcher) Provider() string { return "exa" }

func (s *exaSearcher) Search(ctx context.Context, query string, domains []string, numResults int) ([]SearchResult, error) {
	start, _ := exa.DateRange(time.Now(), exaLookbackDays)
	resp, err := s.client.Search(ctx, exa.SearchRequest{
		Query:              query,
		NumResults:         numResults,
		StartPublishedDate: start,
		IncludeDomains:     domains,
		UseAutoprompt:      true,
	})
	if err != nil {
		return nil, err
	}

	out := make([]SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		snippet := r.Text
		if snippet == "" && len(r.Highlights) > 0 {
			snippet = r.Highlights[0]
		}
		out = append(out, SearchResult{Title: r.Title, URL: r.URL, Snippet: snippet})
	}
	return out, nil
}
