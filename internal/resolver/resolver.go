// Package resolver merges raw entity records from the source connectors
// into canonical celebrity records.
package resolver

import (
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/teluguvibes/curator-cli/internal/model"
)

// Resolve deduplicates raw records into canonical entities.
//
// Primary merge key is the normalized display name; records whose names
// differ but share an external id (wikidata/tmdb/imdb) are also merged.
// Identity fields keep the value from the most trusted contributing source
// (wikidata > tmdb > wikipedia > commons); numeric popularity fields take
// the max across contributors. Output is sorted by merge key so resolving
// the same input twice yields an identical list, values and order.
func Resolve(raw []model.Celebrity) []model.Celebrity {
	byKey := make(map[string]*model.Celebrity)
	keyByExternalID := make(map[string]string)

	externalIDs := func(c model.Celebrity) []string {
		var ids []string
		if c.WikidataID != "" {
			ids = append(ids, "wd:"+c.WikidataID)
		}
		if c.TMDBID != 0 {
			ids = append(ids, "tmdb:"+strconv.Itoa(c.TMDBID))
		}
		if c.IMDBID != "" {
			ids = append(ids, "imdb:"+c.IMDBID)
		}
		return ids
	}

	for _, rec := range raw {
		key := rec.MergeKey()
		if key == "" {
			continue
		}

		// Secondary reconciliation: an already-seen external id wins over
		// the name key, so spelling variants of one person still merge.
		for _, id := range externalIDs(rec) {
			if existing, ok := keyByExternalID[id]; ok {
				key = existing
				break
			}
		}

		current, ok := byKey[key]
		if !ok {
			clone := rec
			clone.Sources = []model.DiscoverySource{rec.Source}
			byKey[key] = &clone
		} else {
			merge(current, rec)
		}

		for _, id := range externalIDs(rec) {
			keyByExternalID[id] = key
		}
	}

	merged := make([]model.Celebrity, 0, len(byKey))
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		merged = append(merged, *byKey[k])
	}
	return merged
}

// merge folds rec into dst. dst keeps identity fields from the more
// trusted source and takes the max of numeric fields.
func merge(dst *model.Celebrity, rec model.Celebrity) {
	// Same normalized name but conflicting birth dates is the known
	// name-collision hazard: distinct people can collapse into one record.
	if dst.BirthDate != "" && rec.BirthDate != "" && dst.BirthDate != rec.BirthDate {
		zap.L().Warn("merge ambiguity: same name, conflicting birth dates",
			zap.String("name", dst.Name),
			zap.String("birth_date_a", dst.BirthDate),
			zap.String("birth_date_b", rec.BirthDate),
			zap.String("source_a", string(dst.Source)),
			zap.String("source_b", string(rec.Source)),
		)
	}

	recMoreTrusted := model.TrustRank(rec.Source) < model.TrustRank(dst.Source)

	// Identity fields: first-trusted-source-wins for spelling and ids.
	if recMoreTrusted {
		dst.Name = rec.Name
		dst.Source = rec.Source
		if rec.Type != "" {
			dst.Type = rec.Type
		}
		if rec.BirthDate != "" {
			dst.BirthDate = rec.BirthDate
		}
	}
	setIfEmpty(&dst.WikidataID, rec.WikidataID, recMoreTrusted)
	setIfEmpty(&dst.IMDBID, rec.IMDBID, recMoreTrusted)
	setIfEmpty(&dst.NameTelugu, rec.NameTelugu, recMoreTrusted)
	setIfEmpty(&dst.WikipediaURL, rec.WikipediaURL, recMoreTrusted)
	if dst.TMDBID == 0 || (recMoreTrusted && rec.TMDBID != 0) {
		if rec.TMDBID != 0 {
			dst.TMDBID = rec.TMDBID
		}
	}
	if dst.Type == "" {
		dst.Type = rec.Type
	}
	if dst.BirthDate == "" {
		dst.BirthDate = rec.BirthDate
	}

	// Numeric fields: max across contributors.
	dst.PopularityScore = max(dst.PopularityScore, rec.PopularityScore)
	dst.TMDBPopularity = max(dst.TMDBPopularity, rec.TMDBPopularity)
	dst.TrendScore = max(dst.TrendScore, rec.TrendScore)

	// Collections: union.
	dst.Occupations = unionStrings(dst.Occupations, rec.Occupations)
	dst.Profiles = unionProfiles(dst.Profiles, rec.Profiles)
	dst.Images = append(dst.Images, rec.Images...)

	if rec.LastSeenAt.After(dst.LastSeenAt) {
		dst.LastSeenAt = rec.LastSeenAt
	}
	if !rec.DiscoveredAt.IsZero() && (dst.DiscoveredAt.IsZero() || rec.DiscoveredAt.Before(dst.DiscoveredAt)) {
		dst.DiscoveredAt = rec.DiscoveredAt
	}

	dst.Sources = appendSource(dst.Sources, rec.Source)
}

func setIfEmpty(dst *string, val string, preferNew bool) {
	if val == "" {
		return
	}
	if *dst == "" || preferNew {
		*dst = val
	}
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	out := a
	for _, s := range a {
		seen[s] = true
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func unionProfiles(a, b []model.SocialProfile) []model.SocialProfile {
	seen := make(map[string]bool, len(a))
	out := a
	for _, p := range a {
		seen[p.Platform] = true
	}
	for _, p := range b {
		if !seen[p.Platform] {
			seen[p.Platform] = true
			out = append(out, p)
		}
	}
	return out
}

func appendSource(sources []model.DiscoverySource, s model.DiscoverySource) []model.DiscoverySource {
	for _, existing := range sources {
		if existing == s {
			return sources
		}
	}
	return append(sources, s)
}
