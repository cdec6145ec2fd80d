package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shieldbackend/internal/middleware"
	"shieldbackend/internal/models"
	"shieldbackend/internal/service"
)

// StatsHandler aggregates the summary endpoint from the three services.
type StatsHandler struct {
	scans    *service.ScanService
	feedback *service.FeedbackService
	reports  *service.ReportService
	logger   *zap.Logger
}

// NewStatsHandler creates a new statistics handler.
func NewStatsHandler(scans *service.ScanService, feedback *service.FeedbackService,
	reports *service.ReportService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{scans: scans, feedback: feedback, reports: reports, logger: logger}
}

// Dashboard handles GET /api/v1/stats. Unprivileged callers see their own
// scan counts; reviewers see the global picture plus moderation queues.
func (h *StatsHandler) Dashboard(c *gin.Context) {
	userID := middleware.UserID(c)
	privileged := models.PrivilegedRole(c.GetString(middleware.ContextRole))

	scope := userID
	if privileged {
		scope = nil
	}
	scanStats, err := h.scans.Statistics(scope)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response := gin.H{"scans": scanStats}
	if privileged {
		feedbackStats, err := h.feedback.Statistics()
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		reportCounts, err := h.reports.CountByStatus()
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		response["feedback"] = feedbackStats
		response["reports_by_status"] = reportCounts
	}
	c.JSON(http.StatusOK, response)
}
