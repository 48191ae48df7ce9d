package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/teluguvibes/curator-cli/internal/pipeline"
	"github.com/teluguvibes/curator-cli/internal/safety"
	"github.com/teluguvibes/curator-cli/internal/store"
	"github.com/teluguvibes/curator-cli/pkg/commons"
	"github.com/teluguvibes/curator-cli/pkg/tmdb"
	"github.com/teluguvibes/curator-cli/pkg/trends"
	"github.com/teluguvibes/curator-cli/pkg/wikidata"
	"github.com/teluguvibes/curator-cli/pkg/wikipedia"
)

// env bundles the pipeline and its store for command handlers.
type env struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

func (e *env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "curator.db"
		}
		return store.NewSQLite(ctx, dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline builds the full pipeline environment: store, safety lists,
// connectors, and the trend source seeded with boosts from prior learning
// runs.
func initPipeline(ctx context.Context) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	lists := safety.DefaultLists()
	if cfg.Safety.KeywordsFile != "" {
		lists, err = safety.LoadLists(cfg.Safety.KeywordsFile)
		if err != nil {
			st.Close()
			return nil, err
		}
	}

	boosts, err := st.LoadTrendBoosts(ctx)
	if err != nil {
		zap.L().Warn("load trend boosts failed, starting cold", zap.Error(err))
		boosts = nil
	}

	// Verified entities get an elevated seed score; everything else falls
	// back to the source's default.
	seeds := make(map[string]float64, len(lists.VerifiedEntities))
	for _, name := range lists.VerifiedEntities {
		seeds[name] = 50
	}
	trendSource := trends.NewHeuristicSource(seeds, boosts)

	wdClient := wikidata.NewClient(wikidata.WithEndpoint(cfg.Wikidata.Endpoint))
	tmdbClient := tmdb.NewClient(cfg.TMDB.Key, tmdb.WithBaseURL(cfg.TMDB.BaseURL))
	wpClient := wikipedia.NewClient(wikipedia.WithBaseURL(cfg.Wikipedia.BaseURL))
	commonsClient := commons.NewClient(commons.WithBaseURL(cfg.Commons.BaseURL))

	p, err := pipeline.New(cfg, st, wdClient, tmdbClient, wpClient, commonsClient, trendSource, lists)
	if err != nil {
		st.Close()
		return nil, err
	}

	if !tmdbClient.Enabled() {
		zap.L().Info("tmdb key not configured, connector disabled")
	}

	return &env{Store: st, Pipeline: p}, nil
}
