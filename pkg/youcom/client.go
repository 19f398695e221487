package youcom

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/naaf-labs/naaf-cli/internal/resilience"
)

const defaultBaseURL = "https://api.ydc-index.io"

// Client performs web searches against the You.com Search API.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest describes one search query.
type SearchRequest struct {
	Query string
	// NumResults limits the number of web hits returned (API max 10).
	// 0 uses the API default.
	NumResults int
	// Country is an optional country code for localized results.
	Country string
	// SiteDomains restricts the search to the given domains by appending
	// site: operators to the query.
	SiteDomains []string
}

// SearchResponse is the response from GET /search.
type SearchResponse struct {
	Hits []Hit `json:"hits"`
}

// Hit is a single web result.
type Hit struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Snippets    []string `json:"snippets"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the queries-per-second rate limit.
func WithRateLimit(qps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(qps), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a You.com Search API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(2, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, eris.New("youcom: empty query")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "youcom: rate limit wait")
	}

	q := url.Values{}
	q.Set("query", buildQuery(req.Query, req.SiteDomains))
	if req.NumResults > 0 {
		q.Set("num_web_results", strconv.Itoa(min(req.NumResults, 10)))
	}
	if req.Country != "" {
		q.Set("country", req.Country)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "youcom: create request")
	}
	httpReq.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "youcom: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "youcom: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("youcom: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "youcom: decode response")
	}

	return &result, nil
}

// buildQuery appends OR'd site: operators when domain restrictions are set.
func buildQuery(query string, domains []string) string {
	if len(domains) == 0 {
		return query
	}
	parts := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.TrimSpace(d)
		if d != "" {
			parts = append(parts, "site:"+d)
		}
	}
	if len(parts) == 0 {
		return query
	}
	return query + " (" + strings.Join(parts, " OR ") + ")"
}
