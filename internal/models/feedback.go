package models

import "time"

// FeedbackType says how the user judged the original verdict.
type FeedbackType string

const (
	FeedbackFalsePositive FeedbackType = "false_positive"
	FeedbackFalseNegative FeedbackType = "false_negative"
	FeedbackConfirmed     FeedbackType = "confirmed"
)

// Valid reports whether the feedback type is one of the known values.
func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackFalsePositive, FeedbackFalseNegative, FeedbackConfirmed:
		return true
	}
	return false
}

// FeedbackStatus is the review state of a feedback record. The only legal
// transitions are pending -> approved and pending -> rejected.
type FeedbackStatus string

const (
	FeedbackPending  FeedbackStatus = "pending"
	FeedbackApproved FeedbackStatus = "approved"
	FeedbackRejected FeedbackStatus = "rejected"
)

// feedbackTransitions is the review state machine. Absence from the table
// means the transition is rejected.
var feedbackTransitions = map[FeedbackStatus][]FeedbackStatus{
	FeedbackPending: {FeedbackApproved, FeedbackRejected},
}

// CanTransition reports whether moving from s to next is allowed.
func (s FeedbackStatus) CanTransition(next FeedbackStatus) bool {
	for _, allowed := range feedbackTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Feedback is a user correction against a past verdict. One feedback per
// (user_id, scan_id) pair, enforced by a unique index.
type Feedback struct {
	ID                       int64          `db:"id" json:"id"`
	UserID                   int64          `db:"user_id" json:"user_id"`
	ScanID                   int64          `db:"scan_id" json:"scan_id"`
	ScanKind                 ScanKind       `db:"scan_kind" json:"scan_kind"`
	OriginalPrediction       string         `db:"original_prediction" json:"original_prediction"`
	CorrectedLabel           string         `db:"corrected_label" json:"corrected_label"`
	FeedbackType             FeedbackType   `db:"feedback_type" json:"feedback_type"`
	Comment                  *string        `db:"comment" json:"comment,omitempty"`
	Status                   FeedbackStatus `db:"status" json:"status"`
	ReviewerID               *int64         `db:"reviewer_id" json:"reviewer_id,omitempty"`
	ReviewedAt               *time.Time     `db:"reviewed_at" json:"reviewed_at,omitempty"`
	IncludedInTrainingExport bool           `db:"included_in_training_export" json:"included_in_training_export"`
	CreatedAt                time.Time      `db:"created_at" json:"created_at"`
}

// TrainingRecord is one labeled pair emitted by the retraining exporter.
type TrainingRecord struct {
	ID             int64        `db:"id" json:"id"`
	Text           string       `db:"text" json:"text"`
	OriginalLabel  string       `db:"original_label" json:"original_label"`
	CorrectedLabel string       `db:"corrected_label" json:"corrected_label"`
	FeedbackType   FeedbackType `db:"feedback_type" json:"feedback_type"`
	ScanKind       ScanKind     `db:"scan_kind" json:"scan_kind"`
	Timestamp      time.Time    `db:"timestamp" json:"timestamp"`
}

// ExportBatch marks one completed retraining export.
type ExportBatch struct {
	ID          string    `db:"id" json:"id"`
	RecordCount int       `db:"record_count" json:"record_count"`
	Format      string    `db:"format" json:"format"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// FeedbackStats aggregates feedback counts by status and type.
type FeedbackStats struct {
	Total         int                    `json:"total"`
	ByStatus      map[FeedbackStatus]int `json:"by_status"`
	ByType        map[FeedbackType]int   `json:"by_type"`
	PendingCount  int                    `json:"pending_count"`
	ApprovedCount int                    `json:"approved_count"`
}
