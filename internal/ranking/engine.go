package ranking

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/teluguvibes/curator-cli/internal/model"
)

// Input bundles the per-entity signals consumed by the scorer.
type Input struct {
	Entity model.Celebrity

	// EngagementScore is the entity's 0-100 engagement rate from the
	// learning service.
	EngagementScore float64

	// ContentCount is the number of existing (non-archived) content items.
	ContentCount int

	// HasSafeEmbeds reports whether at least one safe-embeddable content
	// item exists for the entity.
	HasSafeEmbeds bool

	// RecentActivity reports fresh activity within the lookback window.
	RecentActivity bool
}

// Components breaks a hot score into its contributing terms.
type Components struct {
	Popularity     float64 `json:"popularity"`
	TMDB           float64 `json:"tmdb"`
	Trend          float64 `json:"trend"`
	Engagement     float64 `json:"engagement"`
	PlatformBonus  float64 `json:"platform_bonus"`
	EmbedSafety    float64 `json:"embed_safety"`
	Glamour        float64 `json:"glamour"`
	RecentActivity float64 `json:"recent_activity"`
}

// Candidate is a scored entity with its eligibility verdict.
// IsEligible is always derived from IneligibilityReasons, never set
// independently.
type Candidate struct {
	Entity              model.Celebrity `json:"entity"`
	HotScore            float64         `json:"hot_score"`
	Components          Components      `json:"components"`
	PrimaryPlatform     string          `json:"primary_platform,omitempty"`
	IsEligible          bool            `json:"is_eligible"`
	IneligibilityReasons []string       `json:"ineligibility_reasons,omitempty"`
}

// Engine computes hot scores and eligibility.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine with a validated config.
func NewEngine(cfg Config) (*Engine, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Score computes the candidate for one entity. The result is fully
// reproducible from the input and the engine config.
func (e *Engine) Score(in Input) Candidate {
	ent := in.Entity

	comp := Components{
		Popularity: ent.PopularityScore * e.cfg.PopularityWeight,
		TMDB:       math.Min(e.cfg.TMDBWeight, ent.TMDBPopularity/5),
		Trend:      ent.TrendScore * e.cfg.TrendWeight / 100,
		Engagement: in.EngagementScore * e.cfg.EngagementWeight / 100,
	}

	platforms := make([]string, 0, len(ent.Profiles))
	for _, p := range ent.Profiles {
		platforms = append(platforms, p.Platform)
		comp.PlatformBonus += platformBonuses[p.Platform]
	}

	if in.HasSafeEmbeds {
		comp.EmbedSafety = e.cfg.EmbedSafetyBonus
	}

	comp.Glamour = e.cfg.GlamourWeight * typeMultipliers[ent.Type]

	if in.RecentActivity {
		comp.RecentActivity = e.cfg.RecentActivityBonus
	}

	score := comp.Popularity + comp.TMDB + comp.Trend + comp.Engagement +
		comp.PlatformBonus + comp.EmbedSafety + comp.Glamour + comp.RecentActivity
	score = math.Round(clamp(score, 0, 100)*10) / 10

	cand := Candidate{
		Entity:          ent,
		HotScore:        score,
		Components:      comp,
		PrimaryPlatform: PrimaryPlatform(platforms),
	}

	// Eligibility: every failing condition appends a human-readable
	// reason; the boolean is derived from the reason list.
	if score < e.cfg.MinScoreForEligibility {
		cand.IneligibilityReasons = append(cand.IneligibilityReasons,
			fmt.Sprintf("hot score %.1f below minimum %.1f", score, e.cfg.MinScoreForEligibility))
	}
	if len(ent.Profiles) < e.cfg.MinSocialProfiles {
		cand.IneligibilityReasons = append(cand.IneligibilityReasons,
			fmt.Sprintf("%d social profiles, minimum %d", len(ent.Profiles), e.cfg.MinSocialProfiles))
	}
	if !in.HasSafeEmbeds && in.ContentCount == 0 {
		cand.IneligibilityReasons = append(cand.IneligibilityReasons,
			"no embeddable content available")
	}
	cand.IsEligible = len(cand.IneligibilityReasons) == 0

	return cand
}

// Rank scores all inputs, sorts descending by hot score (ties broken by
// merge key for determinism), and truncates to TopN.
func (e *Engine) Rank(inputs []Input) []Candidate {
	candidates := make([]Candidate, 0, len(inputs))
	for _, in := range inputs {
		candidates = append(candidates, e.Score(in))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].HotScore != candidates[j].HotScore {
			return candidates[i].HotScore > candidates[j].HotScore
		}
		return candidates[i].Entity.MergeKey() < candidates[j].Entity.MergeKey()
	})

	if len(candidates) > e.cfg.TopN {
		candidates = candidates[:e.cfg.TopN]
	}

	eligible := 0
	for _, c := range candidates {
		if c.IsEligible {
			eligible++
		}
	}
	zap.L().Debug("ranking complete",
		zap.Int("scored", len(inputs)),
		zap.Int("ranked", len(candidates)),
		zap.Int("eligible", eligible),
	)

	return candidates
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
