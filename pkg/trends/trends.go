// Package trends defines the pluggable trend signal source consumed by
// the ranking pipeline, and a heuristic implementation that can later be
// swapped for a real trends API without changing downstream contracts.
package trends

import (
	"context"
	"sort"
	"strings"
)

// Signal is one keyword trend observation on a 0-100 scale.
type Signal struct {
	Keyword    string  `json:"keyword"`
	TrendScore float64 `json:"trend_score"`
}

// Source produces trend signals for a set of keywords. Implementations
// must be safe for concurrent use.
type Source interface {
	Signals(ctx context.Context, keywords []string) ([]Signal, error)
}

// HeuristicSource scores keywords from a curated seed list plus feedback
// boosts written by the learning service. It is deterministic for fixed
// inputs.
type HeuristicSource struct {
	seeds  map[string]float64
	boosts map[string]float64
}

// NewHeuristicSource creates a heuristic source. Seed scores come from the
// curated configuration; boosts are per-keyword adjustments from the
// previous learning run. Either map may be nil.
func NewHeuristicSource(seeds, boosts map[string]float64) *HeuristicSource {
	normalized := func(in map[string]float64) map[string]float64 {
		out := make(map[string]float64, len(in))
		for k, v := range in {
			out[strings.ToLower(strings.TrimSpace(k))] = v
		}
		return out
	}
	return &HeuristicSource{
		seeds:  normalized(seeds),
		boosts: normalized(boosts),
	}
}

// defaultSeedScore applies when a keyword is requested but not curated.
const defaultSeedScore = 20.0

// Signals returns one signal per distinct keyword, sorted by keyword for
// deterministic output. Scores clamp to [0, 100].
func (s *HeuristicSource) Signals(_ context.Context, keywords []string) ([]Signal, error) {
	seen := make(map[string]bool, len(keywords))
	signals := make([]Signal, 0, len(keywords))
	for _, kw := range keywords {
		key := strings.ToLower(strings.TrimSpace(kw))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		score, ok := s.seeds[key]
		if !ok {
			score = defaultSeedScore
		}
		score += s.boosts[key]

		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		signals = append(signals, Signal{Keyword: key, TrendScore: score})
	}

	sort.Slice(signals, func(i, j int) bool {
		return signals[i].Keyword < signals[j].Keyword
	})
	return signals, nil
}
