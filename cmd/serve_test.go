//go:build !integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naaf-labs/naaf-cli/internal/cost"
	"github.com/naaf-labs/naaf-cli/internal/model"
	"github.com/naaf-labs/naaf-cli/internal/research"
	"github.com/naaf-labs/naaf-cli/internal/resilience"
	"github.com/naaf-labs/naaf-cli/internal/store"
	"github.com/naaf-labs/naaf-cli/pkg/anthropic"
)

// stubLLM returns a fixed mid-band score for every layer prompt.
type stubLLM struct{}

func (stubLLM) CreateMessage(_ context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{
			{Type: "text", Text: `{"score": 55, "justification": "steady mid-tier capability"}`},
		},
		Usage: anthropic.TokenUsage{InputTokens: 100, OutputTokens: 20},
	}, nil
}

type stubSearcher struct{}

func (stubSearcher) Provider() string { return "youcom" }

func (stubSearcher) Search(_ context.Context, query string, _ []string, _ int) ([]research.SearchResult, error) {
	return []research.SearchResult{
		{Title: "report", URL: "https://example.org/report", Snippet: "evidence for " + query},
	}, nil
}

func newTestAPIServer(t *testing.T) *apiServer {
	t.Helper()

	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	r := research.New(
		stubLLM{},
		[]research.Searcher{stubSearcher{}},
		st,
		t.TempDir(),
		cost.NewCalculator(cost.DefaultRates()),
		research.Options{
			Model:       "claude-sonnet-4-5-20250929",
			Year:        2025,
			Concurrency: 2,
			Retry:       resilience.RetryConfig{MaxAttempts: 1},
		},
	)
	return newAPIServer(st, r)
}

func seedAPIRun(t *testing.T, s *apiServer, country string, score float64, tier string, at time.Time) string {
	t.Helper()

	id, err := s.store.Save(context.Background(), &model.StoredResearch{
		Country:      country,
		Year:         2025,
		OverallScore: score,
		Tier:         tier,
		Layers: map[string]model.LayerResult{
			"power": {LayerNumber: 1, ShortName: "power", Score: score, Status: model.LayerStatusComplete},
		},
		GeneratedAt: at,
		Cost:        model.RunCost{TotalUSD: 1.25},
	})
	require.NoError(t, err)
	return id
}

func TestAPIHealth(t *testing.T) {
	s := newTestAPIServer(t)

	rr := httptest.NewRecorder()
	s.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestAPILayersAndTiers(t *testing.T) {
	s := newTestAPIServer(t)
	h := s.routes()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/naaf/layers", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var layers []model.Layer
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &layers))
	require.Len(t, layers, 8)
	assert.Equal(t, "power", layers[0].ShortName)
	assert.InDelta(t, 20, layers[0].Weight, 0.0001)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/naaf/tiers", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Tier 1: Hegemon")
	assert.Contains(t, rr.Body.String(), "Tier 4: Consumer")
}

func TestAPIListRuns(t *testing.T) {
	s := newTestAPIServer(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedAPIRun(t, s, "France", 58.5, "Tier 2: Strategic Specialist", base)
	seedAPIRun(t, s, "Kenya", 24.0, "Tier 4: Consumer", base.Add(time.Hour))
	h := s.routes()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/naaf/runs", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Runs  []model.StoredResearch `json:"runs"`
		Count int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "Kenya", resp.Runs[0].Country)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/naaf/runs?country=France", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "France", resp.Runs[0].Country)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/naaf/runs?limit=nope", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPIGetRun(t *testing.T) {
	s := newTestAPIServer(t)
	id := seedAPIRun(t, s, "Japan", 62.0, "Tier 2: Strategic Specialist",
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	h := s.routes()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/naaf/runs/"+id, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var run model.StoredResearch
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &run))
	assert.Equal(t, "Japan", run.Country)
	assert.InDelta(t, 62.0, run.OverallScore, 0.0001)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/naaf/runs/missing_20250101_000000", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "run not found")
}

func TestAPIStats(t *testing.T) {
	s := newTestAPIServer(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedAPIRun(t, s, "France", 58.5, "Tier 2: Strategic Specialist", base)
	seedAPIRun(t, s, "Kenya", 24.0, "Tier 4: Consumer", base.Add(time.Hour))

	rr := httptest.NewRecorder()
	s.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/naaf/stats", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var snap struct {
		TotalRuns    int            `json:"total_runs"`
		Countries    int            `json:"countries"`
		RunsPerTier  map[string]int `json:"runs_per_tier"`
		TotalCostUSD float64        `json:"total_cost_usd"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, 2, snap.TotalRuns)
	assert.Equal(t, 2, snap.Countries)
	assert.Equal(t, 1, snap.RunsPerTier["Tier 4: Consumer"])
	assert.InDelta(t, 2.5, snap.TotalCostUSD, 0.0001)
}

func TestAPIResearchAsync(t *testing.T) {
	s := newTestAPIServer(t)
	h := s.routes()

	body, _ := json.Marshal(map[string]string{"country": "Singapore"})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/naaf/research", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)

	var accepted map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &accepted))
	jobID := accepted["job_id"]
	require.NotEmpty(t, jobID)
	assert.Equal(t, "running", accepted["status"])

	// Poll the job until the stub-backed assessment completes.
	var job researchJob
	deadline := time.Now().Add(5 * time.Second)
	for {
		rr = httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/naaf/jobs/"+jobID, nil))
		require.Equal(t, http.StatusOK, rr.Code)
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &job))
		if job.Status != "running" {
			break
		}
		require.True(t, time.Now().Before(deadline), "job did not finish in time")
		time.Sleep(20 * time.Millisecond)
	}

	require.Equal(t, "complete", job.Status)
	require.NotEmpty(t, job.RunID)

	stored, err := s.store.Get(context.Background(), job.RunID)
	require.NoError(t, err)
	assert.Equal(t, "Singapore", stored.Country)
	assert.InDelta(t, 55.0, stored.OverallScore, 0.0001)
	assert.Equal(t, "Tier 2: Strategic Specialist", stored.Tier)
}

func TestAPIResearchBadRequest(t *testing.T) {
	s := newTestAPIServer(t)
	h := s.routes()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/naaf/research", bytes.NewReader([]byte("not json")))
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/naaf/research", bytes.NewReader([]byte("{}")))
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "country is required")
}

func TestAPIGetJobNotFound(t *testing.T) {
	s := newTestAPIServer(t)

	rr := httptest.NewRecorder()
	s.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/naaf/jobs/00000000-0000-0000-0000-000000000000", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "job not found")
}
