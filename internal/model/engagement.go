package model

import "time"

// EngagementRecord is a telemetry event for one content item, appended by
// the telemetry webhook and aggregated by the learning service.
type EngagementRecord struct {
	ID         int64     `json:"id,omitempty"`
	ContentID  int64     `json:"content_id"`
	Views      int64     `json:"views"`
	Likes      int64     `json:"likes"`
	Shares     int64     `json:"shares"`
	Clicks     int64     `json:"clicks"`
	RecordedAt time.Time `json:"recorded_at"`
}

// TrendDirection labels how an entity or category is performing relative
// to its cohort.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// BatchResult is the fixed-shape outcome of one pipeline batch. It is
// always fully populated, including on partial failure: individual
// connector or entity failures land in Errors and are excluded from the
// counts rather than aborting the batch.
type BatchResult struct {
	RunID           string   `json:"runId"`
	Discovered      int      `json:"discovered"`
	Validated       int      `json:"validated"`
	AutoPublished   int      `json:"autoPublished"`
	QueuedForReview int      `json:"queuedForReview"`
	Blocked         int      `json:"blocked"`
	Errors          []string `json:"errors"`
}
