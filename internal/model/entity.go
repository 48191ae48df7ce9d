// Package model defines the domain types shared across the discovery,
// ranking, safety, and learning subsystems.
package model

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// EntityType classifies a tracked public figure.
type EntityType string

const (
	EntityTypeActress    EntityType = "actress"
	EntityTypeAnchor     EntityType = "anchor"
	EntityTypeModel      EntityType = "model"
	EntityTypeInfluencer EntityType = "influencer"
)

// ValidEntityType reports whether t is a known entity type.
func ValidEntityType(t EntityType) bool {
	switch t {
	case EntityTypeActress, EntityTypeAnchor, EntityTypeModel, EntityTypeInfluencer:
		return true
	}
	return false
}

// DiscoverySource identifies which connector produced a record.
type DiscoverySource string

const (
	SourceWikidata  DiscoverySource = "wikidata"
	SourceTMDB      DiscoverySource = "tmdb"
	SourceWikipedia DiscoverySource = "wikipedia"
	SourceCommons   DiscoverySource = "commons"
	SourceManual    DiscoverySource = "manual"
)

// sourceTrust orders discovery sources by identity-field trust. Lower is
// more trusted; unknown sources sort last.
var sourceTrust = map[DiscoverySource]int{
	SourceWikidata:  0,
	SourceTMDB:      1,
	SourceWikipedia: 2,
	SourceCommons:   3,
	SourceManual:    4,
}

// TrustRank returns the trust rank of a discovery source for identity-field
// reconciliation. Unknown sources rank after all known ones.
func TrustRank(s DiscoverySource) int {
	if r, ok := sourceTrust[s]; ok {
		return r
	}
	return len(sourceTrust)
}

// Celebrity is a canonical entity record for a discovered public figure.
// HotScore is intentionally absent: it is recomputed from current inputs
// on every run and never persisted as authoritative.
type Celebrity struct {
	ID             int64           `json:"id,omitempty"`
	Name           string          `json:"name"`
	NameTelugu     string          `json:"name_telugu,omitempty"`
	WikidataID     string          `json:"wikidata_id,omitempty"`
	TMDBID         int             `json:"tmdb_id,omitempty"`
	IMDBID         string          `json:"imdb_id,omitempty"`
	Type           EntityType      `json:"type"`
	Occupations    []string        `json:"occupations,omitempty"`
	PopularityScore float64        `json:"popularity_score"`
	TMDBPopularity float64         `json:"tmdb_popularity,omitempty"`
	TrendScore     float64         `json:"trend_score"`
	BirthDate      string          `json:"birth_date,omitempty"`
	WikipediaURL   string          `json:"wikipedia_url,omitempty"`
	Source         DiscoverySource `json:"discovery_source"`
	Sources        []DiscoverySource `json:"sources,omitempty"`
	Profiles       []SocialProfile `json:"profiles,omitempty"`
	Images         []ImageSourceMetadata `json:"images,omitempty"`
	IsActive       bool            `json:"is_active"`
	DiscoveredAt   time.Time       `json:"discovered_at"`
	LastSeenAt     time.Time       `json:"last_seen_at"`
}

// MergeKey returns the normalized-name key used to deduplicate entity
// records across discovery sources.
func (c Celebrity) MergeKey() string {
	return NormalizeName(c.Name)
}

var nameCaser = cases.Fold()

// NormalizeName lowercases, trims, case-folds, and NFC-normalizes a display
// name so that spelling variants across sources collapse to one merge key.
func NormalizeName(name string) string {
	s := norm.NFC.String(strings.TrimSpace(name))
	s = nameCaser.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// SocialProfile is a platform handle attached to a celebrity.
type SocialProfile struct {
	Platform        string  `json:"platform"`
	Handle          string  `json:"handle"`
	URL             string  `json:"url,omitempty"`
	ConfidenceScore float64 `json:"confidence_score"`
	Verified        bool    `json:"verified"`
}

// LicenseTier classifies the reuse license of a referenced image.
type LicenseTier string

const (
	LicenseAPIProvided  LicenseTier = "api-provided"
	LicenseCCBY         LicenseTier = "cc-by"
	LicenseCCBYSA       LicenseTier = "cc-by-sa"
	LicensePublicDomain LicenseTier = "public-domain"
	LicenseFairUse      LicenseTier = "fair-use"
	LicenseUnknown      LicenseTier = "unknown"
)

// OpenLicense reports whether the tier permits reuse without a
// platform-specific agreement.
func (t LicenseTier) OpenLicense() bool {
	switch t {
	case LicenseCCBY, LicenseCCBYSA, LicensePublicDomain:
		return true
	}
	return false
}

// ImageType classifies the role of a referenced image.
type ImageType string

const (
	ImageTypeProfile   ImageType = "profile"
	ImageTypePost      ImageType = "post"
	ImageTypeVideo     ImageType = "video"
	ImageTypeThumbnail ImageType = "thumbnail"
	ImageTypeTagged    ImageType = "tagged"
)

// ImageSourceMetadata references an externally hosted image. Only the URL
// and license metadata are kept; raw image bytes are never fetched or stored.
type ImageSourceMetadata struct {
	Platform   string      `json:"platform"`
	URL        string      `json:"url"`
	Type       ImageType   `json:"type"`
	License    LicenseTier `json:"license"`
	Confidence float64     `json:"confidence"`
	FetchedAt  time.Time   `json:"fetched_at"`
}
