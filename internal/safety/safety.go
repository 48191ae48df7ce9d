package safety

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/teluguvibes/curator-cli/internal/model"
)

// Risk is the ordered policy-violation likelihood tier.
type Risk string

const (
	RiskSafe    Risk = "safe"
	RiskLow     Risk = "low"
	RiskMedium  Risk = "medium"
	RiskHigh    Risk = "high"
	RiskBlocked Risk = "blocked"
)

// severity orders risk tiers: safe < low < medium < high < blocked.
var severity = map[Risk]int{
	RiskSafe:    0,
	RiskLow:     1,
	RiskMedium:  2,
	RiskHigh:    3,
	RiskBlocked: 4,
}

// AtLeast returns the more severe of the two risks.
func AtLeast(current, floor Risk) Risk {
	if severity[floor] > severity[current] {
		return floor
	}
	return current
}

// Validation is the safety verdict for one piece of content or one entity.
// Risk blocked is terminal: both RequiresReview and AutoApproveEligible
// are then false, with no override path.
type Validation struct {
	Risk                Risk     `json:"risk"`
	Flags               []string `json:"flags,omitempty"`
	BlockedReason       string   `json:"blocked_reason,omitempty"`
	RequiresReview      bool     `json:"requires_review"`
	AutoApproveEligible bool     `json:"auto_approve_eligible"`
}

// ContentInput describes one content candidate to classify.
type ContentInput struct {
	// Text is the caption or title under review.
	Text string

	// EntityName is the display name of the tagged entity.
	EntityName string

	// IsPlatformEmbed reports whether the content is a native platform
	// embed rather than re-hosted media.
	IsPlatformEmbed bool
}

// Gate applies the safety policy.
type Gate struct {
	lists Lists
}

// NewGate creates a Gate over the given curated lists.
func NewGate(lists Lists) *Gate {
	return &Gate{lists: lists}
}

// ValidateEntityName applies the entity-level hard blocks: names matching
// a minor indicator or a political role are blocked immediately with no
// override path.
func (g *Gate) ValidateEntityName(name string) Validation {
	if term := firstMatch(name, g.lists.MinorIndicators); term != "" {
		return blockedValidation(fmt.Sprintf("entity name contains minor indicator %q", term), "minor_indicator")
	}
	if term := firstMatch(name, g.lists.PoliticalRoles); term != "" {
		return blockedValidation(fmt.Sprintf("entity name contains political role %q", term), "political_role")
	}
	return Validation{Risk: RiskSafe, AutoApproveEligible: false}
}

// ClassifyContent classifies caption/title text. Blocked-tier hits
// short-circuit every other signal.
func (g *Gate) ClassifyContent(in ContentInput) Validation {
	if term := firstMatch(in.Text, g.lists.Blocked); term != "" {
		v := blockedValidation(fmt.Sprintf("content matched blocked term %q", term), "blocked_term")
		zap.L().Info("safety: content blocked",
			zap.String("entity", in.EntityName),
			zap.String("term", term),
		)
		return v
	}

	verified := g.IsVerified(in.EntityName)

	v := Validation{Risk: RiskSafe}

	reviewHits := allMatches(in.Text, g.lists.Review)
	for _, hit := range reviewHits {
		v.Flags = append(v.Flags, "review:"+hit)
	}
	if len(reviewHits) > 0 {
		v.Risk = AtLeast(v.Risk, RiskMedium)
		v.RequiresReview = !verified
	}

	safeContext := false
	if term := firstMatch(in.Text, g.lists.SafeContext); term != "" {
		safeContext = true
		v.Flags = append(v.Flags, "safe_context:"+term)
	}

	v.AutoApproveEligible = v.Risk == RiskSafe &&
		len(reviewHits) == 0 &&
		(verified || safeContext || in.IsPlatformEmbed)

	return v
}

// Decide maps a validation to the next content status after the safety
// check.
func Decide(v Validation) model.ContentStatus {
	switch {
	case v.Risk == RiskBlocked:
		return model.ContentStatusBlocked
	case v.AutoApproveEligible:
		return model.ContentStatusAutoPublished
	default:
		return model.ContentStatusQueuedForReview
	}
}

// IsVerified reports whether the entity name matches the curated verified
// allowlist. Matching is exact or substring in either direction; it does
// not handle spelling variants.
func (g *Gate) IsVerified(name string) bool {
	normalized := model.NormalizeName(name)
	if normalized == "" {
		return false
	}
	for _, v := range g.lists.VerifiedEntities {
		candidate := model.NormalizeName(v)
		if candidate == normalized ||
			strings.Contains(candidate, normalized) ||
			strings.Contains(normalized, candidate) {
			return true
		}
	}
	return false
}

// CuratedHandles returns the editor-confirmed social handles for an
// entity, keyed by platform. Nil when none are curated.
func (g *Gate) CuratedHandles(name string) map[string]string {
	return g.lists.CuratedHandles[model.NormalizeName(name)]
}

func blockedValidation(reason, flag string) Validation {
	return Validation{
		Risk:                RiskBlocked,
		Flags:               []string{flag},
		BlockedReason:       reason,
		RequiresReview:      false,
		AutoApproveEligible: false,
	}
}
