package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"shieldbackend/internal/apperr"
	"shieldbackend/internal/models"
)

// ReportRepository stores free-form abuse reports.
type ReportRepository interface {
	Create(report *models.Report) error
	GetByID(id int64) (*models.Report, error)
	UpdateContent(id int64, content, description string) (*models.Report, error)
	UpdateStatus(id int64, status models.ReportStatus) (*models.Report, error)
	Delete(id int64) error
	List(filter models.ReportFilter) ([]*models.Report, int, error)
	CountByStatus() (map[models.ReportStatus]int, error)
}

type reportRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *sqlx.DB, logger *zap.Logger) ReportRepository {
	return &reportRepository{db: db, logger: logger}
}

func (r *reportRepository) Create(report *models.Report) error {
	query := `INSERT INTO reports (reporter_id, content, report_type, description, status)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	return r.db.QueryRowx(query, report.ReporterID, report.Content, report.ReportType,
		report.Description, report.Status).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
}

func (r *reportRepository) GetByID(id int64) (*models.Report, error) {
	var report models.Report
	query := `SELECT id, reporter_id, content, report_type, description, status, created_at, updated_at
	          FROM reports WHERE id = $1`
	err := r.db.Get(&report, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("report %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) UpdateContent(id int64, content, description string) (*models.Report, error) {
	var report models.Report
	query := `UPDATE reports SET content = $1, description = $2, updated_at = now()
	          WHERE id = $3
	          RETURNING id, reporter_id, content, report_type, description, status, created_at, updated_at`
	err := r.db.Get(&report, query, content, description, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("report %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) UpdateStatus(id int64, status models.ReportStatus) (*models.Report, error) {
	var report models.Report
	query := `UPDATE reports SET status = $1, updated_at = now()
	          WHERE id = $2
	          RETURNING id, reporter_id, content, report_type, description, status, created_at, updated_at`
	err := r.db.Get(&report, query, status, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("report %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.NotFound("report %d not found", id)
	}
	return nil
}

func (r *reportRepository) List(filter models.ReportFilter) ([]*models.Report, int, error) {
	conditions := []string{"1=1"}
	args := []any{}
	idx := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", idx))
		args = append(args, *filter.Status)
		idx++
	}
	if filter.ReportType != nil {
		conditions = append(conditions, fmt.Sprintf("report_type = $%d", idx))
		args = append(args, *filter.ReportType)
		idx++
	}
	if filter.ReporterID != nil {
		conditions = append(conditions, fmt.Sprintf("reporter_id = $%d", idx))
		args = append(args, *filter.ReporterID)
		idx++
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM reports WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`SELECT id, reporter_id, content, report_type, description, status, created_at, updated_at
	          FROM reports WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, idx, idx+1)
	args = append(args, filter.Limit, offset)

	var reports []*models.Report
	if err := r.db.Select(&reports, query, args...); err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *reportRepository) CountByStatus() (map[models.ReportStatus]int, error) {
	counts := make(map[models.ReportStatus]int)
	rows, err := r.db.Queryx(`SELECT status, COUNT(*) FROM reports GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status models.ReportStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
