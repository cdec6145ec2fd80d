package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shieldbackend/internal/apperr"
	"shieldbackend/internal/middleware"
	"shieldbackend/internal/models"
	"shieldbackend/internal/service"
)

// FeedbackHandler exposes the moderation loop over HTTP.
type FeedbackHandler struct {
	feedback *service.FeedbackService
	logger   *zap.Logger
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(feedback *service.FeedbackService, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, logger: logger}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req struct {
		ScanID       int64   `json:"scan_id" binding:"required"`
		ScanKind     string  `json:"scan_kind"`
		FeedbackType string  `json:"feedback_type" binding:"required"`
		Comment      *string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.Validation("scan_id and feedback_type are required"))
		return
	}

	fb, err := h.feedback.Submit(*middleware.UserID(c), req.ScanID,
		models.ScanKind(req.ScanKind), models.FeedbackType(req.FeedbackType), req.Comment)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, fb)
}

// Review handles POST /api/v1/feedback/:id/review
func (h *FeedbackHandler) Review(c *gin.Context) {
	if !models.PrivilegedRole(c.GetString(middleware.ContextRole)) {
		respondError(c, h.logger, apperr.Forbidden("only reviewers may review feedback"))
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.logger, apperr.Validation("invalid feedback id"))
		return
	}

	var req struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.Validation("action is required"))
		return
	}

	fb, err := h.feedback.Review(id, req.Action, *middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, fb)
}

// Export handles GET /api/v1/feedback/export?since=RFC3339&format=json|csv
func (h *FeedbackHandler) Export(c *gin.Context) {
	if !models.PrivilegedRole(c.GetString(middleware.ContextRole)) {
		respondError(c, h.logger, apperr.Forbidden("only reviewers may export feedback"))
		return
	}

	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, h.logger, apperr.Validation("since must be an RFC3339 timestamp"))
			return
		}
		since = &parsed
	}

	result, err := h.feedback.ExportApproved(since, c.DefaultQuery("format", service.ExportFormatJSON))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if result.Format == service.ExportFormatCSV {
		c.Header("Content-Disposition", "attachment; filename=feedback_export.csv")
		c.Data(http.StatusOK, "text/csv", []byte(result.CSV))
		return
	}
	c.JSON(http.StatusOK, result)
}

// Statistics handles GET /api/v1/feedback/stats
func (h *FeedbackHandler) Statistics(c *gin.Context) {
	stats, err := h.feedback.Statistics()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
