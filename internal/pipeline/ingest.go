package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/teluguvibes/curator-cli/internal/learning"
	"github.com/teluguvibes/curator-cli/internal/model"
	"github.com/teluguvibes/curator-cli/internal/ranking"
	"github.com/teluguvibes/curator-cli/internal/resilience"
	"github.com/teluguvibes/curator-cli/internal/safety"
	"github.com/teluguvibes/curator-cli/internal/store"
	"github.com/teluguvibes/curator-cli/pkg/tmdb"
)

// Mode selects the ingest strategy.
type Mode string

const (
	// ModeDry runs discovery, ranking, and safety with zero writes.
	ModeDry Mode = "dry"
	// ModeSmart refreshes only entities missing external IDs or profiles.
	ModeSmart Mode = "smart"
	// ModeFull refreshes every eligible entity.
	ModeFull Mode = "full"
	// ModeRefresh skips discovery and refreshes stored entities only.
	ModeRefresh Mode = "refresh"
	// ModeReset clears learned trend state, then runs a full batch.
	// Requires explicit confirmation.
	ModeReset Mode = "reset"
)

// IngestOptions configures one batch run.
type IngestOptions struct {
	Mode       Mode
	Limit      int
	Types      []model.EntityType
	Categories []string
	Confirmed  bool
}

var persistRetry = resilience.RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: 500 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
	Multiplier:     2.0,
	JitterFraction: 0.25,
}

// Ingest runs one batch: discover, rank, refresh, safety-gate, persist.
// The returned BatchResult is always non-nil, including on partial
// failure.
func (p *Pipeline) Ingest(ctx context.Context, opts IngestOptions) (*model.BatchResult, error) {
	if opts.Mode == "" {
		opts.Mode = ModeSmart
	}
	runID := uuid.NewString()
	log := zap.L().With(zap.String("phase", "ingest"), zap.String("mode", string(opts.Mode)), zap.String("run_id", runID))
	result := &model.BatchResult{RunID: runID, Errors: []string{}}
	dry := opts.Mode == ModeDry

	if opts.Mode == ModeReset {
		if !opts.Confirmed {
			return result, eris.New("ingest: reset requires confirmation")
		}
		if err := p.store.ResetLearningState(ctx); err != nil {
			return result, err
		}
		log.Info("ingest: learning state reset")
	}

	// Collect entities.
	var entities []model.Celebrity
	if opts.Mode == ModeRefresh {
		stored, err := p.store.ListCelebrities(ctx, true, opts.Limit)
		if err != nil {
			return result, err
		}
		entities = stored
	} else {
		disc, err := p.Discover(ctx, DiscoverOptions{Types: opts.Types, Limit: opts.Limit})
		if err != nil {
			return result, err
		}
		entities = disc.Entities
		result.Blocked += disc.Blocked
		result.Errors = append(result.Errors, disc.Errors...)
	}
	result.Discovered = len(entities)

	// Persist discovery progress up front, before any enrichment. The
	// refresh loop overlays enriched rows on top of these, so the batch
	// write must never run after it.
	if !dry {
		if err := resilience.Do(ctx, persistRetry, "upsert celebrities", func(ctx context.Context) error {
			_, err := p.store.UpsertCelebrities(ctx, entities)
			return err
		}); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("persist batch: %v", err))
		}
	}

	// Rank. Engagement feedback comes from stored content stats.
	candidates := p.engine.Rank(p.rankingInputs(ctx, entities))

	refreshLimit := p.cfg.Discovery.RefreshLimit
	if refreshLimit <= 0 {
		refreshLimit = len(candidates)
	}

	refreshed := 0
	for _, cand := range candidates {
		if !cand.IsEligible {
			continue
		}
		if refreshed >= refreshLimit {
			break
		}
		entity := cand.Entity
		if opts.Mode == ModeSmart && !needsRefresh(entity) {
			continue
		}
		refreshed++

		profiles, images, refreshErrs := p.refreshEntity(ctx, &entity)
		for _, e := range refreshErrs {
			result.Errors = append(result.Errors, e)
		}

		contents := filterByCategory(p.buildContentCandidates(entity, profiles), opts.Categories)
		validated := p.gateContents(entity, contents, result)
		result.Validated += validated

		if dry {
			continue
		}
		if err := p.persistEntity(ctx, entity, profiles, images, contents); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("persist %s: %v", entity.MergeKey(), err))
		}
	}

	log.Info("ingest: complete",
		zap.Int("discovered", result.Discovered),
		zap.Int("validated", result.Validated),
		zap.Int("autoPublished", result.AutoPublished),
		zap.Int("queuedForReview", result.QueuedForReview),
		zap.Int("blocked", result.Blocked),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// rankingInputs builds one ranking input per entity, folding in stored
// engagement where content already exists.
func (p *Pipeline) rankingInputs(ctx context.Context, entities []model.Celebrity) []ranking.Input {
	inputs := make([]ranking.Input, 0, len(entities))
	for _, e := range entities {
		in := ranking.Input{Entity: e}
		contents, err := p.store.ListContent(ctx, store.ContentFilter{CelebrityKey: e.MergeKey()})
		if err == nil {
			var views, likes, shares, clicks int64
			for _, c := range contents {
				if c.Status == model.ContentStatusArchived {
					continue
				}
				in.ContentCount++
				views += c.Views
				likes += c.Likes
				shares += c.Shares
				clicks += c.Clicks
				if c.Status == model.ContentStatusAutoPublished || c.Status == model.ContentStatusApproved {
					in.HasSafeEmbeds = true
				}
				if c.UpdatedAt.After(time.Now().AddDate(0, 0, -7)) {
					in.RecentActivity = true
				}
			}
			in.EngagementScore = learning.EngagementRate(views, likes, shares, clicks)
		}
		// Entities with curated handles always have an embeddable surface.
		if len(p.gate.CuratedHandles(e.Name)) > 0 {
			in.HasSafeEmbeds = true
		}
		inputs = append(inputs, in)
	}
	return inputs
}

// needsRefresh reports whether smart mode should spend a refresh slot on
// this entity.
func needsRefresh(e model.Celebrity) bool {
	return e.TMDBID == 0 || e.WikipediaURL == "" || len(e.Profiles) == 0
}

// refreshEntity enriches one entity from TMDB, Wikipedia, and Commons.
// Each external call waits on the shared limiter.
func (p *Pipeline) refreshEntity(ctx context.Context, entity *model.Celebrity) ([]model.SocialProfile, []model.ImageSourceMetadata, []string) {
	var profiles []model.SocialProfile
	var images []model.ImageSourceMetadata
	var errs []string
	key := entity.MergeKey()

	// Curated handles are the highest-confidence profile source.
	for platform, handle := range p.gate.CuratedHandles(entity.Name) {
		profiles = append(profiles, model.SocialProfile{
			Platform:        platform,
			Handle:          handle,
			URL:             profileURL(platform, handle),
			ConfidenceScore: 1.0,
			Verified:        true,
		})
	}

	if p.tmdb.Enabled() && entity.TMDBID != 0 {
		if err := p.limiter.Wait(ctx); err != nil {
			return profiles, images, append(errs, fmt.Sprintf("refresh %s: %v", key, err))
		}
		ids, err := p.tmdb.PersonExternalIDs(ctx, entity.TMDBID)
		if err != nil {
			errs = append(errs, fmt.Sprintf("tmdb ids %s: %v", key, err))
		} else if ids != nil {
			if entity.IMDBID == "" {
				entity.IMDBID = ids.IMDBID
			}
			profiles = mergeProfiles(profiles, externalIDProfiles(ids))
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return profiles, images, append(errs, fmt.Sprintf("refresh %s: %v", key, err))
		}
		tmdbImages, err := p.tmdb.PersonImages(ctx, entity.TMDBID)
		if err != nil {
			errs = append(errs, fmt.Sprintf("tmdb images %s: %v", key, err))
		} else {
			for _, img := range tmdbImages {
				images = append(images, model.ImageSourceMetadata{
					Platform:   "tmdb",
					URL:        "https://image.tmdb.org/t/p/original" + img.FilePath,
					Type:       model.ImageTypeProfile,
					License:    model.LicenseAPIProvided,
					Confidence: img.VoteAverage / 10,
				})
			}
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return profiles, images, append(errs, fmt.Sprintf("refresh %s: %v", key, err))
		}
		tagged, err := p.tmdb.PersonTaggedImages(ctx, entity.TMDBID)
		if err != nil {
			errs = append(errs, fmt.Sprintf("tmdb tagged %s: %v", key, err))
		} else {
			for _, img := range tagged {
				images = append(images, model.ImageSourceMetadata{
					Platform:   "tmdb",
					URL:        "https://image.tmdb.org/t/p/original" + img.FilePath,
					Type:       model.ImageTypeTagged,
					License:    model.LicenseAPIProvided,
					Confidence: img.VoteAverage / 10,
				})
			}
		}
	}

	if entity.WikipediaURL != "" {
		if err := p.limiter.Wait(ctx); err != nil {
			return profiles, images, append(errs, fmt.Sprintf("refresh %s: %v", key, err))
		}
		summary, err := p.wikipedia.PageSummary(ctx, entity.Name)
		if err != nil {
			errs = append(errs, fmt.Sprintf("wikipedia %s: %v", key, err))
		} else if summary != nil && summary.OriginalImage != nil {
			images = append(images, model.ImageSourceMetadata{
				Platform:   "wikipedia",
				URL:        summary.OriginalImage.Source,
				Type:       model.ImageTypeProfile,
				License:    model.LicenseCCBYSA,
				Confidence: 0.9,
			})
		}
	}

	if p.commons != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return profiles, images, append(errs, fmt.Sprintf("refresh %s: %v", key, err))
		}
		results, err := p.commons.SearchImages(ctx, entity.Name, 5)
		if err != nil {
			errs = append(errs, fmt.Sprintf("commons %s: %v", key, err))
		} else {
			for _, r := range results {
				if !r.License.OpenLicense() {
					continue
				}
				images = append(images, model.ImageSourceMetadata{
					Platform:   "commons",
					URL:        r.URL,
					Type:       model.ImageTypeTagged,
					License:    r.License,
					Confidence: 0.8,
				})
			}
		}
	}

	entity.Profiles = mergeProfiles(entity.Profiles, profiles)
	entity.Images = append(entity.Images, images...)
	return profiles, images, errs
}

// buildContentCandidates derives embeddable content references from the
// entity's profiles. Only embed-capable platforms yield candidates; the
// pipeline never hosts media itself.
func (p *Pipeline) buildContentCandidates(entity model.Celebrity, profiles []model.SocialProfile) []model.ContentCandidate {
	var out []model.ContentCandidate
	for _, prof := range profiles {
		if !ranking.EmbedCapable(prof.Platform) || prof.Handle == "" {
			continue
		}
		out = append(out, model.ContentCandidate{
			CelebrityID:   entity.ID,
			CelebrityName: entity.Name,
			Platform:      prof.Platform,
			URL:           profileURL(prof.Platform, prof.Handle),
			Title:         fmt.Sprintf("Latest from %s", entity.Name),
			Status:        model.ContentStatusDiscovered,
		})
	}
	return out
}

// filterByCategory keeps only candidates on the requested platforms. An
// empty filter keeps everything.
func filterByCategory(contents []model.ContentCandidate, categories []string) []model.ContentCandidate {
	if len(categories) == 0 {
		return contents
	}
	allowed := make(map[string]bool, len(categories))
	for _, c := range categories {
		allowed[strings.ToLower(strings.TrimSpace(c))] = true
	}
	kept := contents[:0]
	for _, c := range contents {
		if allowed[strings.ToLower(c.Platform)] {
			kept = append(kept, c)
		}
	}
	return kept
}

// gateContents classifies each candidate and assigns its post-gate
// status. Returns the count of candidates that survived the gate.
func (p *Pipeline) gateContents(entity model.Celebrity, contents []model.ContentCandidate, result *model.BatchResult) int {
	validated := 0
	for i := range contents {
		v := p.gate.ClassifyContent(safety.ContentInput{
			Text:            contents[i].Title + " " + contents[i].Caption,
			EntityName:      entity.Name,
			IsPlatformEmbed: true,
		})
		status := safety.Decide(v)
		contents[i].Status = status
		contents[i].BlockedReason = v.BlockedReason
		switch status {
		case model.ContentStatusBlocked:
			result.Blocked++
		case model.ContentStatusAutoPublished:
			result.AutoPublished++
			validated++
		case model.ContentStatusQueuedForReview:
			result.QueuedForReview++
			validated++
		}
	}
	return validated
}

func (p *Pipeline) persistEntity(ctx context.Context, entity model.Celebrity, profiles []model.SocialProfile, images []model.ImageSourceMetadata, contents []model.ContentCandidate) error {
	key := entity.MergeKey()
	return resilience.Do(ctx, persistRetry, "persist entity", func(ctx context.Context) error {
		if _, err := p.store.UpsertCelebrities(ctx, []model.Celebrity{entity}); err != nil {
			return err
		}
		if _, err := p.store.UpsertSocialProfiles(ctx, key, profiles); err != nil {
			return err
		}
		if _, err := p.store.UpsertImageMetadata(ctx, key, images); err != nil {
			return err
		}
		for _, c := range contents {
			if err := p.store.UpsertContent(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
}

func externalIDProfiles(ids *tmdb.ExternalIDs) []model.SocialProfile {
	var out []model.SocialProfile
	add := func(platform, handle string) {
		if handle == "" {
			return
		}
		out = append(out, model.SocialProfile{
			Platform:        platform,
			Handle:          handle,
			URL:             profileURL(platform, handle),
			ConfidenceScore: 0.9,
		})
	}
	add("instagram", ids.InstagramID)
	add("twitter", ids.TwitterID)
	add("facebook", ids.FacebookID)
	add("tiktok", ids.TikTokID)
	add("youtube", ids.YouTubeID)
	return out
}

func mergeProfiles(existing, incoming []model.SocialProfile) []model.SocialProfile {
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p.Platform] = true
	}
	for _, p := range incoming {
		if !seen[p.Platform] {
			existing = append(existing, p)
			seen[p.Platform] = true
		}
	}
	return existing
}

func profileURL(platform, handle string) string {
	switch platform {
	case "instagram":
		return "https://www.instagram.com/" + handle + "/"
	case "twitter":
		return "https://twitter.com/" + handle
	case "youtube":
		return "https://www.youtube.com/@" + handle
	case "facebook":
		return "https://www.facebook.com/" + handle
	case "tiktok":
		return "https://www.tiktok.com/@" + handle
	default:
		return ""
	}
}
