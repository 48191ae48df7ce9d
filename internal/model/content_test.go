package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from ContentStatus
		to   ContentStatus
		want bool
	}{
		{"discovered to safety_checked", ContentStatusDiscovered, ContentStatusSafetyChecked, true},
		{"safety_checked to blocked", ContentStatusSafetyChecked, ContentStatusBlocked, true},
		{"safety_checked to queued", ContentStatusSafetyChecked, ContentStatusQueuedForReview, true},
		{"safety_checked to auto_published", ContentStatusSafetyChecked, ContentStatusAutoPublished, true},
		{"queued to approved", ContentStatusQueuedForReview, ContentStatusApproved, true},
		{"queued to rejected", ContentStatusQueuedForReview, ContentStatusRejected, true},
		{"auto_published reversible by moderation", ContentStatusAutoPublished, ContentStatusRejected, true},
		{"approved to archived", ContentStatusApproved, ContentStatusArchived, true},
		{"blocked is terminal", ContentStatusBlocked, ContentStatusQueuedForReview, false},
		{"no skip straight to published", ContentStatusDiscovered, ContentStatusAutoPublished, false},
		{"no unblock", ContentStatusBlocked, ContentStatusApproved, false},
		{"no unarchive", ContentStatusArchived, ContentStatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	t.Parallel()

	assert.True(t, ContentStatusBlocked.Terminal())
	assert.True(t, ContentStatusRejected.Terminal())
	assert.True(t, ContentStatusArchived.Terminal())
	assert.False(t, ContentStatusDiscovered.Terminal())
	assert.False(t, ContentStatusAutoPublished.Terminal())
}
