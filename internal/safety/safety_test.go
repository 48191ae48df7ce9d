package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teluguvibes/curator-cli/internal/model"
)

func newTestGate() *Gate {
	return NewGate(DefaultLists())
}

func TestClassifyContent_BlockedShortCircuit(t *testing.T) {
	t.Parallel()

	gate := newTestGate()

	// Positive signals present alongside a blocked term must not matter.
	v := gate.ClassifyContent(ContentInput{
		Text:       "Samantha stunning photoshoot leaked mms scandal",
		EntityName: "Samantha",
	})

	assert.Equal(t, RiskBlocked, v.Risk)
	assert.NotEmpty(t, v.BlockedReason)
	assert.False(t, v.RequiresReview)
	assert.False(t, v.AutoApproveEligible)
}

func TestClassifyContent_LeakedMMSScandal(t *testing.T) {
	t.Parallel()

	gate := newTestGate()
	v := gate.ClassifyContent(ContentInput{Text: "leaked mms scandal", EntityName: "anyone"})

	assert.Equal(t, RiskBlocked, v.Risk)
	assert.NotEmpty(t, v.BlockedReason)
	assert.False(t, v.RequiresReview)
}

func TestClassifyContent_VerifiedSafeContext(t *testing.T) {
	t.Parallel()

	gate := newTestGate()
	v := gate.ClassifyContent(ContentInput{
		Text:       "Samantha stunning beach photoshoot",
		EntityName: "Samantha",
	})

	assert.Contains(t, []Risk{RiskSafe, RiskLow}, v.Risk)
	assert.True(t, v.AutoApproveEligible)
	assert.False(t, v.RequiresReview)
}

func TestClassifyContent_ReviewTermUnverifiedEntity(t *testing.T) {
	t.Parallel()

	gate := newTestGate()
	v := gate.ClassifyContent(ContentInput{
		Text:       "dating rumor sparks controversy",
		EntityName: "Some Newcomer",
	})

	assert.Equal(t, RiskMedium, v.Risk)
	assert.True(t, v.RequiresReview)
	assert.False(t, v.AutoApproveEligible)
	assert.NotEmpty(t, v.Flags)
}

func TestClassifyContent_ReviewTermVerifiedEntity(t *testing.T) {
	t.Parallel()

	gate := newTestGate()
	v := gate.ClassifyContent(ContentInput{
		Text:       "breakup gossip",
		EntityName: "Rashmika Mandanna",
	})

	// Verified entity skips forced review, but a review hit still rules
	// out auto-approval.
	assert.False(t, v.RequiresReview)
	assert.False(t, v.AutoApproveEligible)
}

func TestClassifyContent_PlatformEmbedAutoApproval(t *testing.T) {
	t.Parallel()

	gate := newTestGate()
	v := gate.ClassifyContent(ContentInput{
		Text:            "new post",
		EntityName:      "Unknown Person",
		IsPlatformEmbed: true,
	})

	assert.Equal(t, RiskSafe, v.Risk)
	assert.True(t, v.AutoApproveEligible)
}

func TestClassifyContent_NoSignalsNoAutoApproval(t *testing.T) {
	t.Parallel()

	gate := newTestGate()
	v := gate.ClassifyContent(ContentInput{
		Text:       "new upload",
		EntityName: "Unknown Person",
	})

	assert.Equal(t, RiskSafe, v.Risk)
	assert.False(t, v.AutoApproveEligible)
	assert.False(t, v.RequiresReview)
}

func TestValidateEntityName_HardBlocks(t *testing.T) {
	t.Parallel()

	gate := newTestGate()

	tests := []struct {
		name    string
		blocked bool
	}{
		{"Samantha Ruth Prabhu", false},
		{"Teen Star Contestant", true},
		{"Child Artist Manasa", true},
		{"Minister Roja", true},
		{"MLA Vidadala Rajini", true},
		{"Sr Anchor Suma", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := gate.ValidateEntityName(tt.name)
			if tt.blocked {
				assert.Equal(t, RiskBlocked, v.Risk)
				assert.NotEmpty(t, v.BlockedReason)
				assert.False(t, v.RequiresReview)
				assert.False(t, v.AutoApproveEligible)
			} else {
				assert.NotEqual(t, RiskBlocked, v.Risk)
			}
		})
	}
}

func TestContainsTerm_WordBoundaries(t *testing.T) {
	t.Parallel()

	assert.True(t, containsTerm("local mp speaks", "mp"))
	assert.False(t, containsTerm("glamping trip", "mp"))
	assert.True(t, containsTerm("photo shoot today", "photo shoot"))
	assert.True(t, containsTerm("scandal!", "scandal"))
	assert.False(t, containsTerm("scandalous", "scandal"))
}

func TestDecide(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.ContentStatusBlocked, Decide(Validation{Risk: RiskBlocked}))
	assert.Equal(t, model.ContentStatusAutoPublished, Decide(Validation{Risk: RiskSafe, AutoApproveEligible: true}))
	assert.Equal(t, model.ContentStatusQueuedForReview, Decide(Validation{Risk: RiskMedium, RequiresReview: true}))
	assert.Equal(t, model.ContentStatusQueuedForReview, Decide(Validation{Risk: RiskSafe}))
}

func TestIsVerified(t *testing.T) {
	t.Parallel()

	gate := newTestGate()
	assert.True(t, gate.IsVerified("Samantha"))
	assert.True(t, gate.IsVerified("SAMANTHA RUTH PRABHU"))
	assert.True(t, gate.IsVerified("Rashmika Mandanna"))
	assert.False(t, gate.IsVerified("Random Person"))
	assert.False(t, gate.IsVerified(""))
}

func TestCuratedHandles(t *testing.T) {
	t.Parallel()

	gate := newTestGate()
	handles := gate.CuratedHandles("Samantha Ruth Prabhu")
	require.NotNil(t, handles)
	assert.Equal(t, "samantharuthprabhuoffl", handles["instagram"])
	assert.Nil(t, gate.CuratedHandles("Nobody"))
}

func TestAtLeast(t *testing.T) {
	t.Parallel()

	assert.Equal(t, RiskMedium, AtLeast(RiskSafe, RiskMedium))
	assert.Equal(t, RiskHigh, AtLeast(RiskHigh, RiskMedium))
	assert.Equal(t, RiskBlocked, AtLeast(RiskLow, RiskBlocked))
}
