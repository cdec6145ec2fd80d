package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shieldbackend/internal/apperr"
	"shieldbackend/internal/models"
)

type fakeReportRepo struct {
	stored     *models.Report
	getErr     error
	listed     []*models.Report
	total      int
	lastFilter models.ReportFilter
	deleted    []int64
	counts     map[models.ReportStatus]int
	nextID     int64
}

func (r *fakeReportRepo) Create(report *models.Report) error {
	r.nextID++
	report.ID = r.nextID
	r.stored = report
	return nil
}

func (r *fakeReportRepo) GetByID(id int64) (*models.Report, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.stored != nil {
		copied := *r.stored
		return &copied, nil
	}
	return nil, apperr.NotFound("report %d not found", id)
}

func (r *fakeReportRepo) UpdateContent(id int64, content, description string) (*models.Report, error) {
	r.stored.Content = content
	r.stored.Description = description
	copied := *r.stored
	return &copied, nil
}

func (r *fakeReportRepo) UpdateStatus(id int64, status models.ReportStatus) (*models.Report, error) {
	r.stored.Status = status
	copied := *r.stored
	return &copied, nil
}

func (r *fakeReportRepo) Delete(id int64) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeReportRepo) List(filter models.ReportFilter) ([]*models.Report, int, error) {
	r.lastFilter = filter
	return r.listed, r.total, nil
}

func (r *fakeReportRepo) CountByStatus() (map[models.ReportStatus]int, error) {
	return r.counts, nil
}

func strPtr(s string) *string { return &s }

func statusPtr(s models.ReportStatus) *models.ReportStatus { return &s }

func TestCreateReport(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := NewReportService(repo, zap.NewNop())

	report, err := svc.Create(1, "suspicious message from +1-555-0000", models.ReportScam, "asked for gift cards")
	require.NoError(t, err)
	assert.Equal(t, models.ReportPending, report.Status)
	assert.Equal(t, int64(1), report.ReporterID)

	t.Run("empty content", func(t *testing.T) {
		_, err := svc.Create(1, "  ", models.ReportScam, "")
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := svc.Create(1, "content", "GOSSIP", "")
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}

func TestGetReportVisibility(t *testing.T) {
	repo := &fakeReportRepo{stored: &models.Report{ID: 3, ReporterID: 1, Content: "x", Status: models.ReportPending}}
	svc := NewReportService(repo, zap.NewNop())

	t.Run("owner sees own report", func(t *testing.T) {
		_, err := svc.Get(3, 1, models.RoleUser)
		assert.NoError(t, err)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		_, err := svc.Get(3, 2, models.RoleUser)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("reviewer sees any report", func(t *testing.T) {
		_, err := svc.Get(3, 2, models.RoleReviewer)
		assert.NoError(t, err)
	})
}

func TestUpdateReportTwoTierAuthorization(t *testing.T) {
	newRepo := func() *fakeReportRepo {
		return &fakeReportRepo{stored: &models.Report{
			ID: 3, ReporterID: 1, Content: "original", Description: "desc", Status: models.ReportPending,
		}}
	}

	t.Run("owner edits free text", func(t *testing.T) {
		svc := NewReportService(newRepo(), zap.NewNop())
		report, err := svc.Update(3, 1, models.RoleUser, ReportUpdate{Content: strPtr("updated")})
		require.NoError(t, err)
		assert.Equal(t, "updated", report.Content)
		assert.Equal(t, "desc", report.Description)
	})

	t.Run("non-owner cannot edit free text even as reviewer", func(t *testing.T) {
		svc := NewReportService(newRepo(), zap.NewNop())
		_, err := svc.Update(3, 2, models.RoleReviewer, ReportUpdate{Content: strPtr("updated")})
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("owner cannot change status", func(t *testing.T) {
		svc := NewReportService(newRepo(), zap.NewNop())
		_, err := svc.Update(3, 1, models.RoleUser, ReportUpdate{Status: statusPtr(models.ReportResolved)})
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("reviewer changes status", func(t *testing.T) {
		svc := NewReportService(newRepo(), zap.NewNop())
		report, err := svc.Update(3, 2, models.RoleReviewer, ReportUpdate{Status: statusPtr(models.ReportResolved)})
		require.NoError(t, err)
		assert.Equal(t, models.ReportResolved, report.Status)
	})

	t.Run("invalid status", func(t *testing.T) {
		svc := NewReportService(newRepo(), zap.NewNop())
		_, err := svc.Update(3, 2, models.RoleAdmin, ReportUpdate{Status: statusPtr("ARCHIVED")})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("empty update does not leak a foreign report", func(t *testing.T) {
		repo := newRepo()
		repo.stored.Content = "private details"
		svc := NewReportService(repo, zap.NewNop())
		report, err := svc.Update(3, 2, models.RoleUser, ReportUpdate{})
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
		assert.Nil(t, report)
	})

	t.Run("empty update by owner is a no-op", func(t *testing.T) {
		svc := NewReportService(newRepo(), zap.NewNop())
		report, err := svc.Update(3, 1, models.RoleUser, ReportUpdate{})
		require.NoError(t, err)
		assert.Equal(t, "original", report.Content)
	})

	t.Run("blank content", func(t *testing.T) {
		svc := NewReportService(newRepo(), zap.NewNop())
		_, err := svc.Update(3, 1, models.RoleUser, ReportUpdate{Content: strPtr("  ")})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}

func TestDeleteReport(t *testing.T) {
	t.Run("owner deletes own", func(t *testing.T) {
		repo := &fakeReportRepo{stored: &models.Report{ID: 3, ReporterID: 1}}
		svc := NewReportService(repo, zap.NewNop())
		require.NoError(t, svc.Delete(3, 1, models.RoleUser))
		assert.Equal(t, []int64{3}, repo.deleted)
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		repo := &fakeReportRepo{stored: &models.Report{ID: 3, ReporterID: 1}}
		svc := NewReportService(repo, zap.NewNop())
		err := svc.Delete(3, 2, models.RoleUser)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
		assert.Empty(t, repo.deleted)
	})

	t.Run("admin deletes any", func(t *testing.T) {
		repo := &fakeReportRepo{stored: &models.Report{ID: 3, ReporterID: 1}}
		svc := NewReportService(repo, zap.NewNop())
		assert.NoError(t, svc.Delete(3, 2, models.RoleAdmin))
	})
}

func TestListReports(t *testing.T) {
	t.Run("unprivileged listing is scoped to the caller", func(t *testing.T) {
		repo := &fakeReportRepo{}
		svc := NewReportService(repo, zap.NewNop())

		_, err := svc.List(models.ReportFilter{}, 7, models.RoleUser)
		require.NoError(t, err)
		require.NotNil(t, repo.lastFilter.ReporterID)
		assert.Equal(t, int64(7), *repo.lastFilter.ReporterID)
	})

	t.Run("reviewer sees everything", func(t *testing.T) {
		repo := &fakeReportRepo{}
		svc := NewReportService(repo, zap.NewNop())

		_, err := svc.List(models.ReportFilter{}, 7, models.RoleReviewer)
		require.NoError(t, err)
		assert.Nil(t, repo.lastFilter.ReporterID)
	})

	t.Run("pagination math", func(t *testing.T) {
		repo := &fakeReportRepo{total: 45}
		svc := NewReportService(repo, zap.NewNop())

		page, err := svc.List(models.ReportFilter{Page: 2, Limit: 20}, 7, models.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, 45, page.Total)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 20, page.Limit)
		assert.Equal(t, 3, page.TotalPages)
	})

	t.Run("defaults applied", func(t *testing.T) {
		repo := &fakeReportRepo{}
		svc := NewReportService(repo, zap.NewNop())

		page, err := svc.List(models.ReportFilter{Page: -1, Limit: 1000}, 7, models.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 20, page.Limit)
	})

	t.Run("invalid filter values", func(t *testing.T) {
		svc := NewReportService(&fakeReportRepo{}, zap.NewNop())

		_, err := svc.List(models.ReportFilter{Status: statusPtr("ARCHIVED")}, 7, models.RoleAdmin)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))

		bad := models.ReportType("GOSSIP")
		_, err = svc.List(models.ReportFilter{ReportType: &bad}, 7, models.RoleAdmin)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}
