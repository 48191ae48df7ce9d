package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase passthrough", "samantha", "samantha"},
		{"mixed case", "Samantha Ruth Prabhu", "samantha ruth prabhu"},
		{"surrounding whitespace", "  Anasuya  ", "anasuya"},
		{"interior whitespace collapsed", "Rashmika \t Mandanna", "rashmika mandanna"},
		{"telugu script unchanged", "సమంత", "సమంత"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestMergeKeyMatchesAcrossSpellings(t *testing.T) {
	t.Parallel()

	a := Celebrity{Name: "Samantha Ruth Prabhu", Source: SourceWikidata}
	b := Celebrity{Name: "  samantha ruth prabhu", Source: SourceTMDB}
	assert.Equal(t, a.MergeKey(), b.MergeKey())
}

func TestTrustRankOrdering(t *testing.T) {
	t.Parallel()

	assert.Less(t, TrustRank(SourceWikidata), TrustRank(SourceTMDB))
	assert.Less(t, TrustRank(SourceTMDB), TrustRank(SourceWikipedia))
	assert.Less(t, TrustRank(SourceWikipedia), TrustRank(SourceCommons))
	assert.Greater(t, TrustRank(DiscoverySource("unknown")), TrustRank(SourceManual))
}

func TestValidEntityType(t *testing.T) {
	t.Parallel()

	for _, ty := range []EntityType{EntityTypeActress, EntityTypeAnchor, EntityTypeModel, EntityTypeInfluencer} {
		assert.True(t, ValidEntityType(ty), string(ty))
	}
	assert.False(t, ValidEntityType(EntityType("politician")))
}

func TestLicenseTierOpenLicense(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tier LicenseTier
		want bool
	}{
		{LicenseCCBY, true},
		{LicenseCCBYSA, true},
		{LicensePublicDomain, true},
		{LicenseAPIProvided, false},
		{LicenseFairUse, false},
		{LicenseUnknown, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.tier.OpenLicense())
		})
	}
}
