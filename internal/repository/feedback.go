package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"shieldbackend/internal/apperr"
	"shieldbackend/internal/models"
)

// Postgres unique_violation.
const pgUniqueViolation = "23505"

// FeedbackRepository drives the feedback moderation and export pipeline.
// Uniqueness per (user_id, scan_id) and single-export guarantees live at
// this layer so concurrent submissions cannot race past an application
// check.
type FeedbackRepository interface {
	Create(fb *models.Feedback) error
	GetByID(id int64) (*models.Feedback, error)
	Review(id int64, status models.FeedbackStatus, reviewerID int64, reviewedAt time.Time) error
	ExportApproved(since *time.Time, batch *models.ExportBatch) ([]*models.TrainingRecord, error)
	Stats() (*models.FeedbackStats, error)
}

type feedbackRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewFeedbackRepository creates a new feedback repository.
func NewFeedbackRepository(db *sqlx.DB, logger *zap.Logger) FeedbackRepository {
	return &feedbackRepository{db: db, logger: logger}
}

func (r *feedbackRepository) Create(fb *models.Feedback) error {
	query := `INSERT INTO feedback (user_id, scan_id, scan_kind, original_prediction, corrected_label, feedback_type, comment, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`
	err := r.db.QueryRowx(query, fb.UserID, fb.ScanID, fb.ScanKind, fb.OriginalPrediction,
		fb.CorrectedLabel, fb.FeedbackType, fb.Comment, fb.Status).Scan(&fb.ID, &fb.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return apperr.Conflict("feedback already submitted for scan %d", fb.ScanID)
	}
	return err
}

func (r *feedbackRepository) GetByID(id int64) (*models.Feedback, error) {
	var fb models.Feedback
	query := `SELECT id, user_id, scan_id, scan_kind, original_prediction, corrected_label, feedback_type,
	                 comment, status, reviewer_id, reviewed_at, included_in_training_export, created_at
	          FROM feedback WHERE id = $1`
	err := r.db.Get(&fb, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("feedback %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

// Review moves a pending feedback to its terminal status. The status guard
// is part of the statement so two concurrent reviews cannot both win.
func (r *feedbackRepository) Review(id int64, status models.FeedbackStatus, reviewerID int64, reviewedAt time.Time) error {
	query := `UPDATE feedback SET status = $1, reviewer_id = $2, reviewed_at = $3
	          WHERE id = $4 AND status = $5`
	result, err := r.db.Exec(query, status, reviewerID, reviewedAt, id, models.FeedbackPending)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.Conflict("feedback already reviewed")
	}
	return nil
}

// ExportApproved atomically selects approved, not-yet-exported feedback,
// marks it exported, joins back to the scanned text and records the batch.
// The mark happens in the same statement as the read, so a row can never
// be exported twice even under concurrent export calls.
func (r *feedbackRepository) ExportApproved(since *time.Time, batch *models.ExportBatch) ([]*models.TrainingRecord, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin export transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		WITH exported AS (
			UPDATE feedback SET included_in_training_export = TRUE
			WHERE status = $1
			  AND included_in_training_export = FALSE
			  AND ($2::timestamptz IS NULL OR created_at >= $2)
			RETURNING id, scan_id, original_prediction, corrected_label, feedback_type, scan_kind, created_at
		)
		SELECT e.id,
		       s.input_text AS text,
		       e.original_prediction AS original_label,
		       e.corrected_label,
		       e.feedback_type,
		       e.scan_kind,
		       e.created_at AS timestamp
		FROM exported e
		JOIN scan_history s ON s.id = e.scan_id
		ORDER BY e.created_at`

	var records []*models.TrainingRecord
	if err := tx.Select(&records, query, models.FeedbackApproved, since); err != nil {
		return nil, fmt.Errorf("failed to export approved feedback: %w", err)
	}

	batch.RecordCount = len(records)
	batchQuery := `INSERT INTO export_batches (id, record_count, format) VALUES ($1, $2, $3) RETURNING created_at`
	if err := tx.QueryRowx(batchQuery, batch.ID, batch.RecordCount, batch.Format).Scan(&batch.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to record export batch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit export transaction: %w", err)
	}
	return records, nil
}

func (r *feedbackRepository) Stats() (*models.FeedbackStats, error) {
	stats := &models.FeedbackStats{
		ByStatus: make(map[models.FeedbackStatus]int),
		ByType:   make(map[models.FeedbackType]int),
	}

	rows, err := r.db.Queryx(`SELECT status, COUNT(*) FROM feedback GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status models.FeedbackStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	typeRows, err := r.db.Queryx(`SELECT feedback_type, COUNT(*) FROM feedback GROUP BY feedback_type`)
	if err != nil {
		return nil, err
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var ftype models.FeedbackType
		var count int
		if err := typeRows.Scan(&ftype, &count); err != nil {
			return nil, err
		}
		stats.ByType[ftype] = count
	}
	if err := typeRows.Err(); err != nil {
		return nil, err
	}

	stats.PendingCount = stats.ByStatus[models.FeedbackPending]
	stats.ApprovedCount = stats.ByStatus[models.FeedbackApproved]
	return stats, nil
}
