package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shieldbackend/internal/apperr"
	"shieldbackend/internal/middleware"
	"shieldbackend/internal/models"
	"shieldbackend/internal/service"
)

// ReportHandler exposes the abuse-report workflow over HTTP.
type ReportHandler struct {
	reports *service.ReportService
	logger  *zap.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reports *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

// Create handles POST /api/v1/reports
func (h *ReportHandler) Create(c *gin.Context) {
	var req struct {
		Content     string `json:"content" binding:"required"`
		ReportType  string `json:"report_type" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.Validation("content and report_type are required"))
		return
	}

	report, err := h.reports.Create(*middleware.UserID(c), req.Content,
		models.ReportType(req.ReportType), req.Description)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// Get handles GET /api/v1/reports/:id
func (h *ReportHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.logger, apperr.Validation("invalid report id"))
		return
	}

	report, err := h.reports.Get(id, *middleware.UserID(c), c.GetString(middleware.ContextRole))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Update handles PATCH /api/v1/reports/:id
func (h *ReportHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.logger, apperr.Validation("invalid report id"))
		return
	}

	var req struct {
		Content     *string `json:"content"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.Validation("invalid request body"))
		return
	}

	update := service.ReportUpdate{Content: req.Content, Description: req.Description}
	if req.Status != nil {
		status := models.ReportStatus(*req.Status)
		update.Status = &status
	}

	report, err := h.reports.Update(id, *middleware.UserID(c), c.GetString(middleware.ContextRole), update)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Delete handles DELETE /api/v1/reports/:id
func (h *ReportHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.logger, apperr.Validation("invalid report id"))
		return
	}

	if err := h.reports.Delete(id, *middleware.UserID(c), c.GetString(middleware.ContextRole)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "report deleted", "id": id})
}

// List handles GET /api/v1/reports
func (h *ReportHandler) List(c *gin.Context) {
	filter := models.ReportFilter{}
	if raw := c.Query("status"); raw != "" {
		status := models.ReportStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("report_type"); raw != "" {
		rtype := models.ReportType(raw)
		filter.ReportType = &rtype
	}
	if raw := c.Query("reporter_id"); raw != "" {
		reporterID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, h.logger, apperr.Validation("invalid reporter_id"))
			return
		}
		filter.ReporterID = &reporterID
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	page, err := h.reports.List(filter, *middleware.UserID(c), c.GetString(middleware.ContextRole))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
