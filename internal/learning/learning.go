// Package learning aggregates engagement telemetry into decayed trending
// scores, content-gap priorities, and insights that bias the next
// discovery batch. All computations are deterministic for fixed inputs.
package learning

import (
	"fmt"
	"math"
	"sort"

	"github.com/teluguvibes/curator-cli/internal/model"
)

// decayPerDay is the linear trending decay: 2% per day, floored at 10%
// of the undecayed value.
const (
	decayPerDay = 0.02
	decayFloor  = 0.1
)

// persistThreshold suppresses trending-score writes for changes of one
// point or less, avoiding write amplification on every run.
const persistThreshold = 1.0

// EngagementRate computes the weighted 0-100 engagement rate. Shares
// weigh triple and clicks double relative to likes. Zero views yields
// zero, never a division by zero.
func EngagementRate(views, likes, shares, clicks int64) float64 {
	if views <= 0 {
		return 0
	}
	rate := float64(likes+shares*3+clicks*2) / float64(views) * 100
	return math.Min(100, rate)
}

// TrendingScore applies linear time decay to an engagement rate. The
// decay multiplier never drops below decayFloor, so old content keeps at
// least 10% of its undecayed score.
func TrendingScore(engagementRate, ageInDays float64) float64 {
	if ageInDays < 0 {
		ageInDays = 0
	}
	multiplier := math.Max(decayFloor, 1-ageInDays*decayPerDay)
	return engagementRate * multiplier
}

// ShouldPersistTrending reports whether a recomputed trending score
// differs enough from the stored one to be worth a write.
func ShouldPersistTrending(stored, recomputed float64) bool {
	return math.Abs(recomputed-stored) > persistThreshold
}

// GapPriority scores an entity for discovery ordering: consistently
// trending entities with stale content float to the top of the next run.
func GapPriority(avgTrendingScore, engagementRate, daysSinceLastContent float64) float64 {
	if daysSinceLastContent < 0 {
		daysSinceLastContent = 0
	}
	staleness := math.Min(50, daysSinceLastContent*5)
	return avgTrendingScore + engagementRate + staleness
}

// ContentStats is the per-content aggregate consumed by insight building.
type ContentStats struct {
	EntityKey string
	Category  string
	Views     int64
	Likes     int64
	Shares    int64
	Clicks    int64
	AgeDays   float64
}

// Insight labels one entity or category against its cohort.
type Insight struct {
	Subject        string                `json:"subject"`
	Kind           string                `json:"kind"` // "entity" or "category"
	Direction      model.TrendDirection  `json:"direction"`
	EngagementRate float64               `json:"engagement_rate"`
	CohortAverage  float64               `json:"cohort_average"`
	Recommendation string                `json:"recommendation"`
}

// directionThreshold is the relative band around the cohort average that
// still counts as stable.
const directionThreshold = 0.1

// BuildInsights compares each entity's and category's average engagement
// rate against its cohort average and emits ordered, deterministic
// insights.
func BuildInsights(stats []ContentStats) []Insight {
	if len(stats) == 0 {
		return nil
	}

	entityRates := averageRates(stats, func(s ContentStats) string { return s.EntityKey })
	categoryRates := averageRates(stats, func(s ContentStats) string { return s.Category })

	var insights []Insight
	insights = append(insights, cohortInsights(entityRates, "entity")...)
	insights = append(insights, cohortInsights(categoryRates, "category")...)
	return insights
}

// TrendBoosts converts entity insights into keyword boosts for the next
// batch's heuristic trend source.
func TrendBoosts(insights []Insight) map[string]float64 {
	boosts := make(map[string]float64)
	for _, ins := range insights {
		if ins.Kind != "entity" {
			continue
		}
		switch ins.Direction {
		case model.TrendUp:
			boosts[ins.Subject] = 15
		case model.TrendDown:
			boosts[ins.Subject] = -10
		}
	}
	return boosts
}

func averageRates(stats []ContentStats, keyFn func(ContentStats) string) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, s := range stats {
		key := keyFn(s)
		if key == "" {
			continue
		}
		sums[key] += EngagementRate(s.Views, s.Likes, s.Shares, s.Clicks)
		counts[key]++
	}
	rates := make(map[string]float64, len(sums))
	for k, sum := range sums {
		rates[k] = sum / float64(counts[k])
	}
	return rates
}

func cohortInsights(rates map[string]float64, kind string) []Insight {
	if len(rates) == 0 {
		return nil
	}

	var total float64
	for _, r := range rates {
		total += r
	}
	cohortAvg := total / float64(len(rates))

	keys := make([]string, 0, len(rates))
	for k := range rates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	insights := make([]Insight, 0, len(keys))
	for _, k := range keys {
		rate := rates[k]
		direction := model.TrendStable
		switch {
		case rate > cohortAvg*(1+directionThreshold):
			direction = model.TrendUp
		case rate < cohortAvg*(1-directionThreshold):
			direction = model.TrendDown
		}
		insights = append(insights, Insight{
			Subject:        k,
			Kind:           kind,
			Direction:      direction,
			EngagementRate: round1(rate),
			CohortAverage:  round1(cohortAvg),
			Recommendation: recommendation(kind, k, direction),
		})
	}
	return insights
}

func recommendation(kind, subject string, direction model.TrendDirection) string {
	switch direction {
	case model.TrendUp:
		return fmt.Sprintf("increase %s coverage for %q in the next discovery run", kind, subject)
	case model.TrendDown:
		return fmt.Sprintf("reduce %s priority for %q until engagement recovers", kind, subject)
	default:
		return fmt.Sprintf("keep %s mix for %q unchanged", kind, subject)
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
