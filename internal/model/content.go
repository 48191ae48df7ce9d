package model

import "time"

// ContentStatus represents the moderation state of a content candidate.
type ContentStatus string

const (
	ContentStatusDiscovered      ContentStatus = "discovered"
	ContentStatusSafetyChecked   ContentStatus = "safety_checked"
	ContentStatusBlocked         ContentStatus = "blocked"
	ContentStatusQueuedForReview ContentStatus = "queued_for_review"
	ContentStatusApproved        ContentStatus = "approved"
	ContentStatusRejected        ContentStatus = "rejected"
	ContentStatusAutoPublished   ContentStatus = "auto_published"
	ContentStatusArchived        ContentStatus = "archived"
)

// contentTransitions enumerates the legal state machine edges. Blocked is
// terminal. Auto-published content can only move via explicit moderation
// (rejected) or supersession (archived).
var contentTransitions = map[ContentStatus][]ContentStatus{
	ContentStatusDiscovered:      {ContentStatusSafetyChecked},
	ContentStatusSafetyChecked:   {ContentStatusBlocked, ContentStatusQueuedForReview, ContentStatusAutoPublished},
	ContentStatusQueuedForReview: {ContentStatusApproved, ContentStatusRejected},
	ContentStatusApproved:        {ContentStatusArchived},
	ContentStatusAutoPublished:   {ContentStatusRejected, ContentStatusArchived},
}

// CanTransition reports whether moving from one content status to another
// is a legal state machine edge.
func CanTransition(from, to ContentStatus) bool {
	for _, next := range contentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a status has no outgoing transitions.
func (s ContentStatus) Terminal() bool {
	return len(contentTransitions[s]) == 0
}

// ContentCandidate is a publishable glamour item tied to a celebrity.
// Candidates are archived when superseded, never deleted.
type ContentCandidate struct {
	ID            int64         `json:"id,omitempty"`
	CelebrityID   int64         `json:"celebrity_id"`
	CelebrityName string        `json:"celebrity_name"`
	Platform      string        `json:"platform"`
	URL           string        `json:"url"`
	Title         string        `json:"title,omitempty"`
	Caption       string        `json:"caption,omitempty"`
	Status        ContentStatus `json:"status"`
	BlockedReason string        `json:"blocked_reason,omitempty"`
	Views         int64         `json:"views"`
	Likes         int64         `json:"likes"`
	Shares        int64         `json:"shares"`
	Clicks        int64         `json:"clicks"`
	TrendingScore float64       `json:"trending_score"`
	PublishedAt   *time.Time    `json:"published_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
