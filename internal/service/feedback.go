package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shieldbackend/internal/apperr"
	"shieldbackend/internal/models"
	"shieldbackend/internal/repository"
)

// Export formats accepted by ExportApproved.
const (
	ExportFormatJSON = "json"
	ExportFormatCSV  = "csv"
)

// ReviewNotifier tells reviewers about feedback awaiting moderation.
// Notification failures never fail the submission.
type ReviewNotifier interface {
	FeedbackSubmitted(fb *models.Feedback) error
}

// ExportResult is the outcome of one retraining export run.
type ExportResult struct {
	BatchID string                   `json:"batch_id"`
	Count   int                      `json:"count"`
	Format  string                   `json:"format"`
	Data    []*models.TrainingRecord `json:"data,omitempty"`
	CSV     string                   `json:"csv,omitempty"`
}

// FeedbackService runs the moderation loop: users contest verdicts,
// reviewers approve or reject, approved corrections get exported as
// labeled training pairs.
type FeedbackService struct {
	feedback repository.FeedbackRepository
	history  repository.ScanHistoryRepository
	notifier ReviewNotifier
	logger   *zap.Logger
}

// NewFeedbackService wires the moderation pipeline. notifier may be nil.
func NewFeedbackService(feedback repository.FeedbackRepository, history repository.ScanHistoryRepository,
	notifier ReviewNotifier, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{
		feedback: feedback,
		history:  history,
		notifier: notifier,
		logger:   logger,
	}
}

// Submit records a correction against one of the caller's own scans. The
// corrected label is derived, never supplied: confirmations keep the
// original prediction, false positives flip to the safe label, false
// negatives flip to the threat label.
func (s *FeedbackService) Submit(userID, scanID int64, scanKind models.ScanKind,
	feedbackType models.FeedbackType, comment *string) (*models.Feedback, error) {
	if !feedbackType.Valid() {
		return nil, apperr.Validation("invalid feedback type %q", feedbackType)
	}
	if scanKind != "" && !scanKind.Valid() {
		return nil, apperr.Validation("invalid scan kind %q", scanKind)
	}

	scan, err := s.history.GetByID(scanID)
	if err != nil {
		return nil, err
	}
	if scan.UserID != userID {
		return nil, apperr.Forbidden("scan %d does not belong to you", scanID)
	}
	if scanKind != "" && scanKind != scan.ScanKind {
		return nil, apperr.Validation("scan kind %q does not match scan %d", scanKind, scanID)
	}

	fb := &models.Feedback{
		UserID:             userID,
		ScanID:             scanID,
		ScanKind:           scan.ScanKind,
		OriginalPrediction: scan.PredictedLabel,
		CorrectedLabel:     correctedLabel(feedbackType, scan),
		FeedbackType:       feedbackType,
		Comment:            comment,
		Status:             models.FeedbackPending,
	}
	if err := s.feedback.Create(fb); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.FeedbackSubmitted(fb); err != nil {
			s.logger.Warn("Failed to notify reviewers about new feedback",
				zap.Int64("feedback_id", fb.ID), zap.Error(err))
		}
	}
	return fb, nil
}

// Review moves a pending feedback to approved or rejected. Both outcomes
// are terminal.
func (s *FeedbackService) Review(feedbackID int64, action string, reviewerID int64) (*models.Feedback, error) {
	var target models.FeedbackStatus
	switch action {
	case "approve":
		target = models.FeedbackApproved
	case "reject":
		target = models.FeedbackRejected
	default:
		return nil, apperr.Validation("invalid review action %q", action)
	}

	fb, err := s.feedback.GetByID(feedbackID)
	if err != nil {
		return nil, err
	}
	if !fb.Status.CanTransition(target) {
		return nil, apperr.Conflict("feedback already reviewed")
	}

	now := time.Now().UTC()
	if err := s.feedback.Review(feedbackID, target, reviewerID, now); err != nil {
		return nil, err
	}

	fb.Status = target
	fb.ReviewerID = &reviewerID
	fb.ReviewedAt = &now
	return fb, nil
}

// ExportApproved drains approved, not-yet-exported feedback into labeled
// training records. Each run is tagged with a batch id; a record can only
// ever appear in one batch.
func (s *FeedbackService) ExportApproved(since *time.Time, format string) (*ExportResult, error) {
	if format == "" {
		format = ExportFormatJSON
	}
	if format != ExportFormatJSON && format != ExportFormatCSV {
		return nil, apperr.Validation("invalid export format %q", format)
	}

	batch := &models.ExportBatch{ID: uuid.NewString(), Format: format}
	records, err := s.feedback.ExportApproved(since, batch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Exported approved feedback",
		zap.String("batch_id", batch.ID),
		zap.Int("count", len(records)),
		zap.String("format", format))

	result := &ExportResult{BatchID: batch.ID, Count: len(records), Format: format}
	if format == ExportFormatCSV {
		csvData, err := recordsToCSV(records)
		if err != nil {
			return nil, fmt.Errorf("failed to encode export as csv: %w", err)
		}
		result.CSV = csvData
	} else {
		result.Data = records
	}
	return result, nil
}

// Statistics aggregates feedback counts by status and type.
func (s *FeedbackService) Statistics() (*models.FeedbackStats, error) {
	return s.feedback.Stats()
}

func correctedLabel(feedbackType models.FeedbackType, scan *models.ScanHistoryEntry) string {
	switch feedbackType {
	case models.FeedbackFalsePositive:
		return scan.ScanKind.SafeLabel()
	case models.FeedbackFalseNegative:
		return scan.ScanKind.ThreatLabel()
	default:
		return scan.PredictedLabel
	}
}

func recordsToCSV(records []*models.TrainingRecord) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "text", "original_label", "corrected_label", "feedback_type", "scan_kind", "timestamp"}); err != nil {
		return "", err
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.Text,
			r.OriginalLabel,
			r.CorrectedLabel,
			string(r.FeedbackType),
			string(r.ScanKind),
			r.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}
