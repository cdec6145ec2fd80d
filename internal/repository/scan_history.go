package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"shieldbackend/internal/apperr"
	"shieldbackend/internal/models"
)

// ScanHistoryRepository persists verdicts per authenticated user. Entries
// are append-only: created after a scan, deletable by their owner, never
// updated.
type ScanHistoryRepository interface {
	Save(entry *models.ScanHistoryEntry) error
	GetByID(id int64) (*models.ScanHistoryEntry, error)
	ListByUser(userID int64, limit, offset int) ([]*models.ScanHistoryEntry, error)
	Delete(id, userID int64) error
	Stats(userID *int64) (*models.ScanStats, error)
}

type scanHistoryRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewScanHistoryRepository creates a new scan history repository.
func NewScanHistoryRepository(db *sqlx.DB, logger *zap.Logger) ScanHistoryRepository {
	return &scanHistoryRepository{db: db, logger: logger}
}

func (r *scanHistoryRepository) Save(entry *models.ScanHistoryEntry) error {
	query := `INSERT INTO scan_history (user_id, input_text, input_digest, is_threat, confidence, predicted_label, scan_kind, details)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`
	return r.db.QueryRowx(query, entry.UserID, entry.InputText, entry.InputDigest, entry.IsThreat,
		entry.Confidence, entry.PredictedLabel, entry.ScanKind, entry.Details).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *scanHistoryRepository) GetByID(id int64) (*models.ScanHistoryEntry, error) {
	var entry models.ScanHistoryEntry
	query := `SELECT id, user_id, input_text, input_digest, is_threat, confidence, predicted_label, scan_kind, details, created_at
	          FROM scan_history WHERE id = $1`
	err := r.db.Get(&entry, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("scan %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *scanHistoryRepository) ListByUser(userID int64, limit, offset int) ([]*models.ScanHistoryEntry, error) {
	var entries []*models.ScanHistoryEntry
	query := `SELECT id, user_id, input_text, input_digest, is_threat, confidence, predicted_label, scan_kind, details, created_at
	          FROM scan_history WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.Select(&entries, query, userID, limit, offset); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *scanHistoryRepository) Delete(id, userID int64) error {
	result, err := r.db.Exec(`DELETE FROM scan_history WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.NotFound("scan %d not found", id)
	}
	return nil
}

func (r *scanHistoryRepository) Stats(userID *int64) (*models.ScanStats, error) {
	query := `SELECT COUNT(*) AS total,
	                 COUNT(*) FILTER (WHERE is_threat) AS threats
	          FROM scan_history WHERE ($1::bigint IS NULL OR user_id = $1)`
	var counts struct {
		Total   int `db:"total"`
		Threats int `db:"threats"`
	}
	if err := r.db.Get(&counts, query, userID); err != nil {
		return nil, fmt.Errorf("failed to aggregate scan stats: %w", err)
	}

	byKind := make(map[models.ScanKind]int)
	kindQuery := `SELECT scan_kind, COUNT(*) AS count FROM scan_history
	              WHERE ($1::bigint IS NULL OR user_id = $1) GROUP BY scan_kind`
	rows, err := r.db.Queryx(kindQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate scan kinds: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind models.ScanKind
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		byKind[kind] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats := &models.ScanStats{
		TotalScans:  counts.Total,
		ThreatCount: counts.Threats,
		SafeCount:   counts.Total - counts.Threats,
		ByScanKind:  byKind,
	}
	stats.ThreatPercentage = models.ThreatPercentage(counts.Threats, counts.Total)
	return stats, nil
}
