// Package store persists pipeline state. All writes are natural-key
// upserts so repeated runs are idempotent by construction.
package store

import (
	"context"

	"github.com/teluguvibes/curator-cli/internal/model"
)

// ContentFilter narrows content listings.
type ContentFilter struct {
	Status       model.ContentStatus
	CelebrityKey string
	Limit        int
}

// Store defines persistence for the discovery, safety, and learning
// pipeline.
type Store interface {
	// Celebrities, keyed by normalized name.
	UpsertCelebrities(ctx context.Context, celebs []model.Celebrity) (int64, error)
	ListCelebrities(ctx context.Context, activeOnly bool, limit int) ([]model.Celebrity, error)
	DeactivateCelebrity(ctx context.Context, mergeKey string) error

	// Social profiles, keyed by (celebrity, platform).
	UpsertSocialProfiles(ctx context.Context, mergeKey string, profiles []model.SocialProfile) (int64, error)

	// Content candidates, keyed by (celebrity, platform, url).
	UpsertContent(ctx context.Context, c model.ContentCandidate) error
	UpdateContentStatus(ctx context.Context, id int64, status model.ContentStatus, reason string) error
	ListContent(ctx context.Context, filter ContentFilter) ([]model.ContentCandidate, error)
	UpdateTrendingScore(ctx context.Context, id int64, score float64) error

	// Image metadata cache, keyed by (celebrity, url). URLs only, never
	// binary image data.
	UpsertImageMetadata(ctx context.Context, mergeKey string, images []model.ImageSourceMetadata) (int64, error)

	// Engagement telemetry: append the event and accrue counters on the
	// content row.
	RecordEngagement(ctx context.Context, rec model.EngagementRecord) error

	// Trend feedback consumed by the next batch's heuristic trend source.
	// ResetLearningState clears the accumulated boosts; celebrity and
	// content rows are never touched by a reset.
	SaveTrendBoosts(ctx context.Context, boosts map[string]float64) error
	LoadTrendBoosts(ctx context.Context) (map[string]float64, error)
	ResetLearningState(ctx context.Context) error

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}
