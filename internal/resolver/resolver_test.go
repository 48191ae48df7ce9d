package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teluguvibes/curator-cli/internal/model"
)

func TestResolve_CrossSourceMerge(t *testing.T) {
	t.Parallel()

	// Same person discovered via Wikidata and TMDB under an identical
	// normalized name.
	raw := []model.Celebrity{
		{
			Name:            "Samantha Ruth Prabhu",
			WikidataID:      "Q123",
			PopularityScore: 50,
			Source:          model.SourceWikidata,
			Type:            model.EntityTypeActress,
		},
		{
			Name:            "samantha ruth prabhu",
			TMDBID:          456,
			PopularityScore: 70,
			TMDBPopularity:  48.5,
			Source:          model.SourceTMDB,
		},
	}

	merged := Resolve(raw)
	require.Len(t, merged, 1)

	got := merged[0]
	assert.Equal(t, "Q123", got.WikidataID)
	assert.Equal(t, 456, got.TMDBID)
	assert.Equal(t, 70.0, got.PopularityScore)
	assert.Equal(t, 48.5, got.TMDBPopularity)
	// Identity fields keep the highest-trust source's spelling.
	assert.Equal(t, "Samantha Ruth Prabhu", got.Name)
	assert.Equal(t, model.SourceWikidata, got.Source)
	assert.ElementsMatch(t, []model.DiscoverySource{model.SourceWikidata, model.SourceTMDB}, got.Sources)
}

func TestResolve_TrustOrderIndependentOfInputOrder(t *testing.T) {
	t.Parallel()

	wikidata := model.Celebrity{Name: "Anasuya Bharadwaj", WikidataID: "Q77", Source: model.SourceWikidata}
	tmdb := model.Celebrity{Name: "anasuya  bharadwaj", TMDBID: 9, Source: model.SourceTMDB}

	a := Resolve([]model.Celebrity{wikidata, tmdb})
	b := Resolve([]model.Celebrity{tmdb, wikidata})
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, a[0].Name, b[0].Name)
	assert.Equal(t, a[0].Source, b[0].Source)
	assert.Equal(t, "Anasuya Bharadwaj", a[0].Name)
}

func TestResolve_ExternalIDReconciliation(t *testing.T) {
	t.Parallel()

	// Different spellings, same TMDB id: still one person.
	raw := []model.Celebrity{
		{Name: "Rashmika Mandanna", TMDBID: 11, Source: model.SourceTMDB, PopularityScore: 60},
		{Name: "Rashmika M", TMDBID: 11, Source: model.SourceWikipedia, PopularityScore: 30},
	}

	merged := Resolve(raw)
	require.Len(t, merged, 1)
	assert.Equal(t, "Rashmika Mandanna", merged[0].Name)
	assert.Equal(t, 60.0, merged[0].PopularityScore)
}

func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()

	raw := []model.Celebrity{
		{Name: "Sreemukhi", Source: model.SourceWikidata, PopularityScore: 40, Type: model.EntityTypeAnchor},
		{Name: "Samantha", TMDBID: 1, Source: model.SourceTMDB, PopularityScore: 70},
		{Name: "sreemukhi", Source: model.SourceWikipedia, PopularityScore: 55},
	}

	first := Resolve(raw)
	second := Resolve(raw)
	assert.Equal(t, first, second)

	// Sorted by merge key: samantha before sreemukhi.
	require.Len(t, first, 2)
	assert.Equal(t, "Samantha", first[0].Name)
}

func TestResolve_ProfileAndOccupationUnion(t *testing.T) {
	t.Parallel()

	raw := []model.Celebrity{
		{
			Name:        "Samantha",
			Source:      model.SourceWikidata,
			Occupations: []string{"actress"},
			Profiles:    []model.SocialProfile{{Platform: "instagram", Handle: "samantharuthprabhuoffl"}},
		},
		{
			Name:        "Samantha",
			Source:      model.SourceTMDB,
			Occupations: []string{"actress", "producer"},
			Profiles: []model.SocialProfile{
				{Platform: "instagram", Handle: "dup-ignored"},
				{Platform: "twitter", Handle: "Samanthaprabhu2"},
			},
		},
	}

	merged := Resolve(raw)
	require.Len(t, merged, 1)
	assert.ElementsMatch(t, []string{"actress", "producer"}, merged[0].Occupations)
	require.Len(t, merged[0].Profiles, 2)
	assert.Equal(t, "samantharuthprabhuoffl", merged[0].Profiles[0].Handle)
}

func TestResolve_TimestampsAndBlankNames(t *testing.T) {
	t.Parallel()

	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	raw := []model.Celebrity{
		{Name: "", Source: model.SourceWikidata},
		{Name: "Faria Abdullah", Source: model.SourceWikidata, DiscoveredAt: late, LastSeenAt: early},
		{Name: "faria abdullah", Source: model.SourceTMDB, DiscoveredAt: early, LastSeenAt: late},
	}

	merged := Resolve(raw)
	require.Len(t, merged, 1)
	assert.Equal(t, early, merged[0].DiscoveredAt)
	assert.Equal(t, late, merged[0].LastSeenAt)
}
