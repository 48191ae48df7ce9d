// Package pipeline orchestrates one batch of the curation pipeline:
// connector fan-out, identity resolution, ranking, safety gating, and
// persistence. Per-connector and per-entity failures are recorded in the
// batch result instead of aborting the run; only configuration problems
// are fatal.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/teluguvibes/curator-cli/internal/config"
	"github.com/teluguvibes/curator-cli/internal/model"
	"github.com/teluguvibes/curator-cli/internal/ranking"
	"github.com/teluguvibes/curator-cli/internal/resolver"
	"github.com/teluguvibes/curator-cli/internal/safety"
	"github.com/teluguvibes/curator-cli/internal/store"
	"github.com/teluguvibes/curator-cli/pkg/commons"
	"github.com/teluguvibes/curator-cli/pkg/tmdb"
	"github.com/teluguvibes/curator-cli/pkg/trends"
	"github.com/teluguvibes/curator-cli/pkg/wikidata"
	"github.com/teluguvibes/curator-cli/pkg/wikipedia"
)

// connectorTimeout bounds each external call within a batch.
const connectorTimeout = 30 * time.Second

// Pipeline wires the connectors, resolver, ranking engine, and safety
// gate around a store.
type Pipeline struct {
	cfg       *config.Config
	store     store.Store
	wikidata  wikidata.Client
	tmdb      tmdb.Client
	wikipedia wikipedia.Client
	commons   commons.Client
	trends    trends.Source
	gate      *safety.Gate
	lists     safety.Lists
	engine    *ranking.Engine
	limiter   *rate.Limiter
}

// New creates a Pipeline with all dependencies.
func New(
	cfg *config.Config,
	st store.Store,
	wdClient wikidata.Client,
	tmdbClient tmdb.Client,
	wpClient wikipedia.Client,
	commonsClient commons.Client,
	trendSource trends.Source,
	lists safety.Lists,
) (*Pipeline, error) {
	engine, err := ranking.NewEngine(cfg.Ranking)
	if err != nil {
		return nil, err
	}

	throttle := time.Duration(cfg.Discovery.ThrottleMs) * time.Millisecond
	if throttle <= 0 {
		throttle = 500 * time.Millisecond
	}

	return &Pipeline{
		cfg:       cfg,
		store:     st,
		wikidata:  wdClient,
		tmdb:      tmdbClient,
		wikipedia: wpClient,
		commons:   commonsClient,
		trends:    trendSource,
		gate:      safety.NewGate(lists),
		lists:     lists,
		engine:    engine,
		limiter:   rate.NewLimiter(rate.Every(throttle), 1),
	}, nil
}

// typeOccupations maps entity types to Wikidata occupation QIDs.
var typeOccupations = map[model.EntityType]string{
	model.EntityTypeActress:    wikidata.QIDActor,
	model.EntityTypeAnchor:     wikidata.QIDTVPresenter,
	model.EntityTypeModel:      wikidata.QIDModel,
	model.EntityTypeInfluencer: wikidata.QIDInfluencer,
}

// DiscoverOptions filters a discovery pass.
type DiscoverOptions struct {
	Sources []string // connector names; empty means all
	Types   []model.EntityType
	Limit   int
}

// DiscoverResult carries resolved entities plus non-fatal connector errors.
type DiscoverResult struct {
	Entities []model.Celebrity
	Blocked  int
	Errors   []string
}

// Discover fans out to the discovery connectors, applies the entity-level
// safety gate, and resolves duplicates into canonical records.
func (p *Pipeline) Discover(ctx context.Context, opts DiscoverOptions) (*DiscoverResult, error) {
	log := zap.L().With(zap.String("phase", "discover"))

	types := opts.Types
	if len(types) == 0 {
		for _, t := range p.cfg.Discovery.Types {
			types = append(types, model.EntityType(t))
		}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = p.cfg.Discovery.Limit
	}

	result := &DiscoverResult{}
	var raw []model.Celebrity

	g, gCtx := errgroup.WithContext(ctx)
	rawCh := make(chan []model.Celebrity, len(types)+1)
	errCh := make(chan string, len(types)+1)

	if sourceEnabled(opts.Sources, "wikidata") {
		for _, typ := range types {
			qid, ok := typeOccupations[typ]
			if !ok {
				errCh <- fmt.Sprintf("discover: unknown entity type %q", typ)
				continue
			}
			typ := typ
			g.Go(func() error {
				callCtx, cancel := context.WithTimeout(gCtx, connectorTimeout)
				defer cancel()
				people, err := p.wikidata.SearchPeople(callCtx, wikidata.QueryParams{
					OccupationQIDs: []string{qid},
					IndustryQID:    wikidata.QIDTeluguCinema,
					Limit:          limit,
				})
				if err != nil {
					errCh <- fmt.Sprintf("wikidata %s: %v", typ, err)
					return nil
				}
				rawCh <- wikidataToEntities(people, typ)
				return nil
			})
		}
	}

	if sourceEnabled(opts.Sources, "tmdb") && p.tmdb.Enabled() {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gCtx, connectorTimeout)
			defer cancel()
			found, errs := p.searchTMDBSeeds(callCtx)
			if len(errs) > 0 {
				errCh <- "tmdb: " + strings.Join(errs, "; ")
			}
			rawCh <- found
			return nil
		})
	}

	_ = g.Wait()
	close(rawCh)
	close(errCh)
	for batch := range rawCh {
		raw = append(raw, batch...)
	}
	for e := range errCh {
		result.Errors = append(result.Errors, e)
	}

	// Entity-level gate before resolution: hard-blocked names never enter
	// the pipeline.
	kept := raw[:0]
	for _, c := range raw {
		if v := p.gate.ValidateEntityName(c.Name); v.BlockedReason != "" {
			result.Blocked++
			log.Info("discover: entity blocked",
				zap.String("name", c.Name),
				zap.String("reason", v.BlockedReason))
			continue
		}
		kept = append(kept, c)
	}

	entities := resolver.Resolve(kept)
	if err := p.applyTrendSignals(ctx, entities); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("trends: %v", err))
	}

	if len(entities) > limit {
		entities = entities[:limit]
	}
	result.Entities = entities

	log.Info("discover: complete",
		zap.Int("raw", len(raw)),
		zap.Int("resolved", len(entities)),
		zap.Int("blocked", result.Blocked),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// searchTMDBSeeds looks up the curated verified entities on TMDB. The
// verified allowlist doubles as the TMDB seed list: it is the set of
// names we already trust enough to publish.
func (p *Pipeline) searchTMDBSeeds(ctx context.Context) ([]model.Celebrity, []string) {
	var found []model.Celebrity
	var errs []string
	for _, name := range p.lists.VerifiedEntities {
		people, err := p.tmdb.SearchPerson(ctx, name)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		for _, person := range people {
			if model.NormalizeName(person.Name) != model.NormalizeName(name) {
				continue
			}
			found = append(found, model.Celebrity{
				Name:            person.Name,
				TMDBID:          person.ID,
				Type:            model.EntityTypeActress,
				TMDBPopularity:  person.Popularity,
				PopularityScore: clampScore(person.Popularity),
				Source:          model.SourceTMDB,
				Sources:         []model.DiscoverySource{model.SourceTMDB},
			})
			break
		}
	}
	return found, errs
}

// applyTrendSignals asks the trend source about each resolved entity and
// folds the signal into TrendScore (max-merge, same rule as resolution).
func (p *Pipeline) applyTrendSignals(ctx context.Context, entities []model.Celebrity) error {
	if p.trends == nil || len(entities) == 0 {
		return nil
	}
	keywords := make([]string, len(entities))
	for i, e := range entities {
		keywords[i] = e.MergeKey()
	}
	callCtx, cancel := context.WithTimeout(ctx, connectorTimeout)
	defer cancel()
	signals, err := p.trends.Signals(callCtx, keywords)
	if err != nil {
		return err
	}
	byKeyword := make(map[string]float64, len(signals))
	for _, s := range signals {
		byKeyword[s.Keyword] = s.TrendScore
	}
	for i := range entities {
		if score, ok := byKeyword[entities[i].MergeKey()]; ok && score > entities[i].TrendScore {
			entities[i].TrendScore = score
		}
	}
	return nil
}

func wikidataToEntities(people []wikidata.Person, typ model.EntityType) []model.Celebrity {
	out := make([]model.Celebrity, 0, len(people))
	for _, person := range people {
		out = append(out, model.Celebrity{
			Name:         person.Name,
			WikidataID:   person.WikidataID,
			TMDBID:       person.TMDBID,
			IMDBID:       person.IMDBID,
			BirthDate:    person.BirthDate,
			WikipediaURL: person.WikipediaURL,
			Type:         typ,
			Source:       model.SourceWikidata,
			Sources:      []model.DiscoverySource{model.SourceWikidata},
		})
	}
	return out
}

func sourceEnabled(sources []string, name string) bool {
	if len(sources) == 0 {
		return true
	}
	for _, s := range sources {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return true
		}
	}
	return false
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
