// Package ranking implements the deterministic hot-score engine that
// prioritizes entities for content curation.
package ranking

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/teluguvibes/curator-cli/internal/model"
)

// Config holds the tunable scoring weights and eligibility thresholds.
// Scores are fully reproducible from inputs and this config; no call site
// hard-codes a weight.
type Config struct {
	// PopularityWeight scales the 0-100 popularity score into the sum.
	PopularityWeight float64 `yaml:"popularity_weight" mapstructure:"popularity_weight"`

	// TMDBWeight caps the TMDB popularity contribution: the term is
	// min(TMDBWeight, tmdb_popularity / 5).
	TMDBWeight float64 `yaml:"tmdb_weight" mapstructure:"tmdb_weight"`

	// TrendWeight scales the 0-100 trend score: trend * TrendWeight / 100.
	TrendWeight float64 `yaml:"trend_weight" mapstructure:"trend_weight"`

	// EngagementWeight scales the 0-100 engagement score:
	// engagement * EngagementWeight / 100.
	EngagementWeight float64 `yaml:"engagement_weight" mapstructure:"engagement_weight"`

	// GlamourWeight is multiplied by the per-type multiplier
	// (actress 1.0, model 0.95, influencer 0.85, anchor 0.75).
	GlamourWeight float64 `yaml:"glamour_weight" mapstructure:"glamour_weight"`

	// EmbedSafetyBonus is added when the entity has safe-embeddable content.
	EmbedSafetyBonus float64 `yaml:"embed_safety_bonus" mapstructure:"embed_safety_bonus"`

	// RecentActivityBonus is added when the entity was active recently.
	RecentActivityBonus float64 `yaml:"recent_activity_bonus" mapstructure:"recent_activity_bonus"`

	// Eligibility thresholds.
	MinScoreForEligibility float64 `yaml:"min_score_for_eligibility" mapstructure:"min_score_for_eligibility"`
	MinSocialProfiles      int     `yaml:"min_social_profiles" mapstructure:"min_social_profiles"`

	// TopN truncates the ranked output.
	TopN int `yaml:"top_n" mapstructure:"top_n"`
}

// DefaultConfig returns the documented default weights.
func DefaultConfig() Config {
	return Config{
		PopularityWeight:       0.3,
		TMDBWeight:             10,
		TrendWeight:            20,
		EngagementWeight:       20,
		GlamourWeight:          10,
		EmbedSafetyBonus:       10,
		RecentActivityBonus:    5,
		MinScoreForEligibility: 40,
		MinSocialProfiles:      1,
		TopN:                   50,
	}
}

// platformBonuses rewards presence on high-value platforms. Static policy,
// additive per platform present.
var platformBonuses = map[string]float64{
	"instagram": 15,
	"youtube":   10,
	"twitter":   5,
}

// typeMultipliers scales GlamourWeight per entity type.
var typeMultipliers = map[model.EntityType]float64{
	model.EntityTypeActress:    1.0,
	model.EntityTypeModel:      0.95,
	model.EntityTypeInfluencer: 0.85,
	model.EntityTypeAnchor:     0.75,
}

// Validate checks that a Config is internally consistent.
func Validate(c Config) error {
	var errs []string

	weights := map[string]float64{
		"popularity_weight":     c.PopularityWeight,
		"tmdb_weight":           c.TMDBWeight,
		"trend_weight":          c.TrendWeight,
		"engagement_weight":     c.EngagementWeight,
		"glamour_weight":        c.GlamourWeight,
		"embed_safety_bonus":    c.EmbedSafetyBonus,
		"recent_activity_bonus": c.RecentActivityBonus,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	if c.MinScoreForEligibility < 0 || c.MinScoreForEligibility > 100 {
		errs = append(errs, "min_score_for_eligibility must be between 0 and 100")
	}
	if c.MinSocialProfiles < 0 {
		errs = append(errs, "min_social_profiles must be >= 0")
	}
	if c.TopN <= 0 {
		errs = append(errs, "top_n must be > 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("ranking: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
