// Package research orchestrates a full country assessment: expanding layer
// queries, collecting search evidence, scoring each layer with the LLM, and
// assembling the persisted report.
package research

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naaf-labs/naaf-cli/internal/cost"
	"github.com/naaf-labs/naaf-cli/internal/framework"
	"github.com/naaf-labs/naaf-cli/internal/model"
	"github.com/naaf-labs/naaf-cli/internal/report"
	"github.com/naaf-labs/naaf-cli/internal/resilience"
	"github.com/naaf-labs/naaf-cli/internal/scoring"
	"github.com/naaf-labs/naaf-cli/internal/store"
	"github.com/naaf-labs/naaf-cli/pkg/anthropic"
)

// Options configures a Researcher.
type Options struct {
	Model       string
	MaxTokens   int64
	Year        int
	Concurrency int
	NumResults  int
	Retry       resilience.RetryConfig
}

func (o Options) withDefaults() Options {
	if o.MaxTokens <= 0 {
		o.MaxTokens = 4096
	}
	if o.Year <= 0 {
		o.Year = time.Now().UTC().Year()
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.NumResults <= 0 {
		o.NumResults = 5
	}
	return o
}

// Researcher runs country assessments.
type Researcher struct {
	llm       anthropic.Client
	searchers []Searcher
	store     store.Store
	reports   string // reports root; each run gets its own directory under it
	calc      *cost.Calculator
	opts      Options
}

// New creates a Researcher. Searchers are tried in order per query; the
// first provider is used for search cost attribution. Run artifacts are
// written under reportsDir, one directory per assessment.
func New(llm anthropic.Client, searchers []Searcher, st store.Store, reportsDir string, calc *cost.Calculator, opts Options) *Researcher {
	return &Researcher{
		llm:       llm,
		searchers: searchers,
		store:     st,
		reports:   reportsDir,
		calc:      calc,
		opts:      opts.withDefaults(),
	}
}

// RunContext is the per-assessment state shared by the layer workers: the
// run's artifact directory and the source buffer they append to. A fresh one
// is created for every Assess call so concurrent or sequential runs never
// share a directory.
type RunContext struct {
	Country string

	dir *store.RunDir

	mu      sync.Mutex
	sources []model.Source
}

func newRunContext(country, reportsDir string) *RunContext {
	return &RunContext{Country: country, dir: store.NewRunDir(reportsDir)}
}

func (rc *RunContext) addSources(srcs []model.Source) {
	rc.mu.Lock()
	rc.sources = append(rc.sources, srcs...)
	rc.mu.Unlock()
}

func (rc *RunContext) collectedSources() []model.Source {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]model.Source(nil), rc.sources...)
}

// layerOutcome carries one layer's result plus its usage accounting.
type layerOutcome struct {
	result      *model.LayerResult
	usage       anthropic.TokenUsage
	searchCalls int
}

// scoreResponse is the JSON shape the LLM is asked to return per layer.
type scoreResponse struct {
	Score         float64              `json:"score"`
	Justification string               `json:"justification"`
	Metrics       []model.MetricResult `json:"metrics,omitempty"`
}

// Assess runs the full eight-layer assessment for a country and persists the
// result. Layers that fail to research are recorded as partial with a zero
// score; the run always produces a report.
func (r *Researcher) Assess(ctx context.Context, country string) (*model.StoredResearch, error) {
	start := time.Now()
	log := zap.L().With(zap.String("country", country), zap.Int("year", r.opts.Year))
	log.Info("assessment started", zap.Int("concurrency", r.opts.Concurrency))

	rc := newRunContext(country, r.reports)
	outcomes := make([]*layerOutcome, framework.NumLayers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for n := 1; n <= framework.NumLayers; n++ {
		g.Go(func() error {
			outcomes[n-1] = r.researchLayer(gctx, rc, n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "research: layer group")
	}
	if ctx.Err() != nil {
		return nil, eris.Wrap(ctx.Err(), "research: assessment canceled")
	}

	results := make([]model.LayerResult, 0, framework.NumLayers)
	scores := make(map[int]float64, framework.NumLayers)
	var usage anthropic.TokenUsage
	searchCalls := 0
	for _, o := range outcomes {
		results = append(results, *o.result)
		scores[o.result.LayerNumber] = o.result.Score
		usage.Add(o.usage)
		searchCalls += o.searchCalls
	}
	sources := rc.collectedSources()

	overall := scoring.Aggregate(scores)
	tier := framework.Classify(overall)

	summary, summaryUsage := r.executiveSummary(ctx, country, overall, tier, results)
	usage.Add(summaryUsage)

	rep := report.Assemble(country, r.opts.Year, results, overall, tier, summary, sources)

	if err := rc.dir.WriteReport(rep); err != nil {
		log.Warn("write final report failed", zap.Error(err))
	}
	if err := rc.dir.WriteSources(country, sources); err != nil {
		log.Warn("write sources failed", zap.Error(err))
	}

	usage.LogCost(r.opts.Model, "assessment")

	stored := &model.StoredResearch{
		Country:                 country,
		Year:                    r.opts.Year,
		OverallScore:            overall,
		Tier:                    tier,
		ExecutiveSummary:        summary,
		Layers:                  rep.Layers,
		Sources:                 rep.Sources,
		GeneratedAt:             rep.GeneratedAt,
		ResearchDurationSeconds: time.Since(start).Seconds(),
		Cost:                    r.calc.RunCost(r.opts.Model, usage.InputTokens, usage.OutputTokens, searchCalls, r.searchProvider()),
	}

	id, err := r.store.Save(ctx, stored)
	if err != nil {
		return nil, eris.Wrapf(err, "research: save run for %s", country)
	}
	stored.ID = id

	log.Info("assessment complete",
		zap.String("run_id", id),
		zap.Float64("overall_score", overall),
		zap.String("tier", tier),
		zap.Duration("elapsed", time.Since(start)),
	)
	return stored, nil
}

// researchLayer gathers evidence and scores one layer. Never returns an
// error: failures degrade to a partial zero-score result.
func (r *Researcher) researchLayer(ctx context.Context, rc *RunContext, n int) *layerOutcome {
	out := &layerOutcome{}
	log := zap.L().With(zap.String("country", rc.Country), zap.Int("layer", n))

	layer, err := framework.Get(n)
	if err != nil {
		out.result = partialResult(n, "internal: unknown layer")
		return out
	}

	queries, err := framework.Queries(rc.Country, n, r.opts.Year)
	if err != nil {
		out.result = partialResult(n, "internal: query expansion failed")
		return out
	}
	domains := framework.Domains(n)

	var ev []evidence
	var collected []model.Source
	for _, q := range queries {
		results, searchErr := r.search(ctx, q.Query, domains)
		out.searchCalls++
		if searchErr != nil {
			log.Warn("search failed", zap.String("query", q.Query), zap.Error(searchErr))
			continue
		}
		if len(results) == 0 {
			continue
		}
		ev = append(ev, evidence{query: q.Query, results: results})
		for _, res := range results {
			collected = append(collected, model.Source{
				URL:     res.URL,
				Title:   res.Title,
				Query:   q.Query,
				Snippet: truncate(res.Snippet, 300),
			})
		}
	}
	rc.addSources(collected)

	if len(ev) == 0 {
		log.Warn("no search evidence collected")
		out.result = r.partialLayer(rc, n, "no search evidence was available for this layer")
		return out
	}

	prompt := buildLayerPrompt(layer, rc.Country, r.opts.Year, ev)
	resp, err := resilience.DoVal(ctx, r.opts.Retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return r.llm.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     r.opts.Model,
			MaxTokens: r.opts.MaxTokens,
			System:    layerSystemPrompt,
			Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
		})
	})
	if err != nil {
		log.Warn("layer scoring call failed", zap.Error(err))
		out.result = r.partialLayer(rc, n, "scoring model call failed: "+err.Error())
		return out
	}
	out.usage.Add(resp.Usage)

	var parsed scoreResponse
	if err := json.Unmarshal([]byte(cleanJSON(resp.FirstText())), &parsed); err != nil {
		log.Warn("layer score parse failed", zap.Error(err))
		out.result = r.partialLayer(rc, n, "scoring response was not valid JSON")
		return out
	}

	result, err := scoring.ScoreLayer(n, parsed.Score, parsed.Justification)
	if err != nil {
		log.Warn("layer score rejected", zap.Float64("score", parsed.Score), zap.Error(err))
		out.result = r.partialLayer(rc, n, "scoring response was out of range")
		return out
	}
	result.Metrics = parsed.Metrics
	out.result = result

	if err := rc.dir.WriteLayer(rc.Country, result); err != nil {
		log.Warn("write layer file failed", zap.Error(err))
	}

	log.Info("layer scored",
		zap.Float64("score", result.Score),
		zap.Float64("contribution", result.WeightedContribution),
		zap.Int("evidence_queries", len(ev)),
	)
	return out
}

// search tries each configured provider in order until one succeeds.
func (r *Researcher) search(ctx context.Context, query string, domains []string) ([]SearchResult, error) {
	var lastErr error
	for _, s := range r.searchers {
		results, err := resilience.DoVal(ctx, r.opts.Retry, func(ctx context.Context) ([]SearchResult, error) {
			return s.Search(ctx, query, domains, r.opts.NumResults)
		})
		if err == nil {
			return results, nil
		}
		lastErr = err
		zap.L().Debug("search provider failed, trying next",
			zap.String("provider", s.Provider()), zap.Error(err))
	}
	if lastErr == nil {
		lastErr = eris.New("research: no search providers configured")
	}
	return nil, lastErr
}

// executiveSummary asks the LLM for the report summary, degrading to the
// numeric breakdown when the call fails.
func (r *Researcher) executiveSummary(ctx context.Context, country string, overall float64, tier string, results []model.LayerResult) (string, anthropic.TokenUsage) {
	prompt := buildSummaryPrompt(country, overall, tier, results)
	resp, err := resilience.DoVal(ctx, r.opts.Retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return r.llm.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     r.opts.Model,
			MaxTokens: 1024,
			System:    summarySystemPrompt,
			Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
		})
	})
	if err != nil || resp.FirstText() == "" {
		zap.L().Warn("executive summary call failed, using breakdown", zap.Error(err))
		scores := make(map[int]float64, len(results))
		for _, lr := range results {
			scores[lr.LayerNumber] = lr.Score
		}
		return scoring.Breakdown(scores), anthropic.TokenUsage{}
	}
	return resp.FirstText(), resp.Usage
}

// partialLayer records a failed layer and still writes its artifact file.
func (r *Researcher) partialLayer(rc *RunContext, n int, reason string) *model.LayerResult {
	result := partialResult(n, reason)
	if err := rc.dir.WriteLayer(rc.Country, result); err != nil {
		zap.L().Warn("write partial layer file failed", zap.Int("layer", n), zap.Error(err))
	}
	return result
}

func partialResult(n int, reason string) *model.LayerResult {
	result, err := scoring.ScoreLayer(n, 0, reason)
	if err != nil {
		// Layer number out of range only happens on internal misuse.
		return &model.LayerResult{
			LayerNumber:   n,
			Score:         0,
			MaxScore:      100,
			Justification: reason,
			Status:        model.LayerStatusFailed,
		}
	}
	result.Status = model.LayerStatusPartial
	return result
}

func (r *Researcher) searchProvider() string {
	if len(r.searchers) == 0 {
		return ""
	}
	return r.searchers[0].Provider()
}
