package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/naaf-labs/naaf-cli/internal/cost"
	"github.com/naaf-labs/naaf-cli/internal/framework"
	"github.com/naaf-labs/naaf-cli/internal/research"
	"github.com/naaf-labs/naaf-cli/internal/resilience"
	"github.com/naaf-labs/naaf-cli/internal/store"
	anthropicpkg "github.com/naaf-labs/naaf-cli/pkg/anthropic"
	"github.com/naaf-labs/naaf-cli/pkg/exa"
	"github.com/naaf-labs/naaf-cli/pkg/youcom"
)

// initStore selects the run store backend from config.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "file":
		return store.NewFileStore(cfg.Store.Path)
	case "sqlite":
		return store.NewSQLite(cfg.Store.Path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore initializes and migrates the configured store.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// researchEnv holds the initialized clients and researcher needed by the
// assess and serve commands.
type researchEnv struct {
	Store      store.Store
	Researcher *research.Researcher
}

// Close releases resources held by the environment.
func (re *researchEnv) Close() {
	if re.Store != nil {
		_ = re.Store.Close()
	}
}

// initResearch sets up the store, search and LLM clients, applies any rubric
// override, and builds the Researcher. Callers should defer env.Close().
func initResearch(ctx context.Context, year, concurrency int) (*researchEnv, error) {
	if err := cfg.Validate("assess"); err != nil {
		return nil, err
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.Research.RubricPath != "" {
		rubric, err := framework.LoadRubric(cfg.Research.RubricPath)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		if err := rubric.Apply(); err != nil {
			_ = st.Close()
			return nil, err
		}
		zap.L().Info("rubric override applied", zap.String("path", cfg.Research.RubricPath))
	}

	var searchers []research.Searcher
	if cfg.YouCom.APIKey != "" {
		searchers = append(searchers, research.NewYouComSearcher(youcom.NewClient(
			cfg.YouCom.APIKey,
			youcom.WithBaseURL(cfg.YouCom.BaseURL),
			youcom.WithRateLimit(cfg.YouCom.QPS),
		)))
	}
	if cfg.Exa.APIKey != "" {
		searchers = append(searchers, research.NewExaSearcher(exa.NewClient(
			cfg.Exa.APIKey,
			exa.WithBaseURL(cfg.Exa.BaseURL),
			exa.WithRateLimit(cfg.Exa.QPS),
		)))
	}

	llm := anthropicpkg.NewClient(cfg.Anthropic.APIKey)

	if year == 0 {
		year = cfg.Research.Year
	}
	if concurrency == 0 {
		concurrency = cfg.Research.Concurrency
	}

	researcher := research.New(
		llm,
		searchers,
		st,
		cfg.Research.ReportsDir,
		cost.NewCalculator(cfg.Pricing),
		research.Options{
			Model:       cfg.Anthropic.Model,
			MaxTokens:   int64(cfg.Anthropic.MaxTokens),
			Year:        year,
			Concurrency: concurrency,
			NumResults:  cfg.Exa.NumResults,
			Retry:       resilience.DefaultRetryConfig(),
		},
	)

	return &researchEnv{Store: st, Researcher: researcher}, nil
}
