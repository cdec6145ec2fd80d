package service

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"shieldbackend/internal/apperr"
	"shieldbackend/internal/models"
	"shieldbackend/internal/repository"
)

// ReportUpdate carries the mutable fields of a report. Nil means "leave
// unchanged". Status changes require a privileged role; free-text changes
// require ownership.
type ReportUpdate struct {
	Content     *string
	Description *string
	Status      *models.ReportStatus
}

// ReportService is the abuse-report CRUD workflow with its two-tier
// authorization rule.
type ReportService struct {
	reports repository.ReportRepository
	logger  *zap.Logger
}

// NewReportService wires the report workflow.
func NewReportService(reports repository.ReportRepository, logger *zap.Logger) *ReportService {
	return &ReportService{reports: reports, logger: logger}
}

// Create files a new report for the given reporter.
func (s *ReportService) Create(reporterID int64, content string, reportType models.ReportType, description string) (*models.Report, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("report content must not be empty")
	}
	if !reportType.Valid() {
		return nil, apperr.Validation("invalid report type %q", reportType)
	}

	report := &models.Report{
		ReporterID:  reporterID,
		Content:     content,
		ReportType:  reportType,
		Description: description,
		Status:      models.ReportPending,
	}
	if err := s.reports.Create(report); err != nil {
		return nil, err
	}
	return report, nil
}

// Get returns a report visible to the actor: its owner or any privileged
// reviewer.
func (s *ReportService) Get(id, actorID int64, role string) (*models.Report, error) {
	report, err := s.reports.GetByID(id)
	if err != nil {
		return nil, err
	}
	if report.ReporterID != actorID && !models.PrivilegedRole(role) {
		return nil, apperr.Forbidden("report %d does not belong to you", id)
	}
	return report, nil
}

// Update applies field changes under the two-tier rule: only the owning
// reporter edits free text, only a privileged reviewer changes status.
func (s *ReportService) Update(id, actorID int64, role string, update ReportUpdate) (*models.Report, error) {
	report, err := s.reports.GetByID(id)
	if err != nil {
		return nil, err
	}
	if report.ReporterID != actorID && !models.PrivilegedRole(role) {
		return nil, apperr.Forbidden("report %d does not belong to you", id)
	}

	if update.Status != nil {
		if !models.PrivilegedRole(role) {
			return nil, apperr.Forbidden("only reviewers may change report status")
		}
		if !update.Status.Valid() {
			return nil, apperr.Validation("invalid report status %q", *update.Status)
		}
		report, err = s.reports.UpdateStatus(id, *update.Status)
		if err != nil {
			return nil, err
		}
	}

	if update.Content != nil || update.Description != nil {
		if report.ReporterID != actorID {
			return nil, apperr.Forbidden("report %d does not belong to you", id)
		}
		content := report.Content
		if update.Content != nil {
			if strings.TrimSpace(*update.Content) == "" {
				return nil, apperr.Validation("report content must not be empty")
			}
			content = *update.Content
		}
		description := report.Description
		if update.Description != nil {
			description = *update.Description
		}
		report, err = s.reports.UpdateContent(id, content, description)
		if err != nil {
			return nil, err
		}
	}

	return report, nil
}

// Delete removes a report. Owners delete their own; privileged reviewers
// may delete any.
func (s *ReportService) Delete(id, actorID int64, role string) error {
	report, err := s.reports.GetByID(id)
	if err != nil {
		return err
	}
	if report.ReporterID != actorID && !models.PrivilegedRole(role) {
		return apperr.Forbidden("report %d does not belong to you", id)
	}
	return s.reports.Delete(id)
}

// List pages through reports. Unprivileged actors only ever see their own.
func (s *ReportService) List(filter models.ReportFilter, actorID int64, role string) (*models.ReportPage, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperr.Validation("invalid report status %q", *filter.Status)
	}
	if filter.ReportType != nil && !filter.ReportType.Valid() {
		return nil, apperr.Validation("invalid report type %q", *filter.ReportType)
	}
	if !models.PrivilegedRole(role) {
		filter.ReporterID = &actorID
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	reports, total, err := s.reports.List(filter)
	if err != nil {
		return nil, err
	}

	return &models.ReportPage{
		Reports:    reports,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// CountByStatus summarizes reports for the combined statistics endpoint.
func (s *ReportService) CountByStatus() (map[models.ReportStatus]int, error) {
	return s.reports.CountByStatus()
}
