package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/teluguvibes/curator-cli/internal/learning"
	"github.com/teluguvibes/curator-cli/internal/model"
	"github.com/teluguvibes/curator-cli/internal/store"
)

// LearningResult summarizes one learning pass.
type LearningResult struct {
	ContentScored int                `json:"contentScored"`
	ScoresUpdated int                `json:"scoresUpdated"`
	Insights      []learning.Insight `json:"insights"`
	GapPriorities map[string]float64 `json:"gapPriorities,omitempty"`
	Errors        []string           `json:"errors,omitempty"`
}

// LearningRun recomputes trending scores for published content, derives
// cohort insights, and writes trend boosts for the next batch to pick up.
func (p *Pipeline) LearningRun(ctx context.Context) (*LearningResult, error) {
	log := zap.L().With(zap.String("phase", "learn"))
	result := &LearningResult{}
	now := time.Now().UTC()

	contents, err := p.store.ListContent(ctx, store.ContentFilter{})
	if err != nil {
		return result, err
	}

	type entityAgg struct {
		trendingSum float64
		rateSum     float64
		count       float64
		minAgeDays  float64
	}
	aggregates := make(map[string]*entityAgg)

	var stats []learning.ContentStats
	for _, c := range contents {
		if c.Status != model.ContentStatusAutoPublished && c.Status != model.ContentStatusApproved {
			continue
		}
		result.ContentScored++

		ageDays := 0.0
		if c.PublishedAt != nil {
			ageDays = now.Sub(*c.PublishedAt).Hours() / 24
		} else {
			ageDays = now.Sub(c.CreatedAt).Hours() / 24
		}

		rate := learning.EngagementRate(c.Views, c.Likes, c.Shares, c.Clicks)
		recomputed := learning.TrendingScore(rate, ageDays)
		if learning.ShouldPersistTrending(c.TrendingScore, recomputed) {
			if err := p.store.UpdateTrendingScore(ctx, c.ID, recomputed); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("trending %d: %v", c.ID, err))
			} else {
				result.ScoresUpdated++
			}
		}

		key := model.NormalizeName(c.CelebrityName)
		agg, ok := aggregates[key]
		if !ok {
			agg = &entityAgg{minAgeDays: ageDays}
			aggregates[key] = agg
		}
		agg.trendingSum += recomputed
		agg.rateSum += rate
		agg.count++
		if ageDays < agg.minAgeDays {
			agg.minAgeDays = ageDays
		}

		stats = append(stats, learning.ContentStats{
			EntityKey: key,
			Category:  c.Platform,
			Views:     c.Views,
			Likes:     c.Likes,
			Shares:    c.Shares,
			Clicks:    c.Clicks,
			AgeDays:   ageDays,
		})
	}

	// Gap priority biases the next batch toward stale high-performers:
	// the freshest content an entity has is also its staleness measure.
	result.GapPriorities = make(map[string]float64, len(aggregates))
	for key, agg := range aggregates {
		result.GapPriorities[key] = learning.GapPriority(
			agg.trendingSum/agg.count, agg.rateSum/agg.count, agg.minAgeDays)
	}

	result.Insights = learning.BuildInsights(stats)
	boosts := learning.TrendBoosts(result.Insights)
	for key, priority := range result.GapPriorities {
		boosts[key] += math.Min(15, priority/10)
	}
	if len(boosts) > 0 {
		if err := p.store.SaveTrendBoosts(ctx, boosts); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("boosts: %v", err))
		}
	}

	log.Info("learn: complete",
		zap.Int("content_scored", result.ContentScored),
		zap.Int("scores_updated", result.ScoresUpdated),
		zap.Int("insights", len(result.Insights)),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}
