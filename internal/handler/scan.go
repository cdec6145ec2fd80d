package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shieldbackend/internal/apperr"
	"shieldbackend/internal/middleware"
	"shieldbackend/internal/service"
)

// Hard cap on uploaded audio samples.
const maxAudioBytes = 10 << 20

// ScanHandler exposes the scan pipeline over HTTP.
type ScanHandler struct {
	scans  *service.ScanService
	logger *zap.Logger
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(scans *service.ScanService, logger *zap.Logger) *ScanHandler {
	return &ScanHandler{scans: scans, logger: logger}
}

// ScanText handles POST /api/v1/scan/text
func (h *ScanHandler) ScanText(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.Validation("message is required"))
		return
	}

	result, err := h.scans.ScanText(c.Request.Context(), req.Message, middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ScanURL handles POST /api/v1/scan/url
func (h *ScanHandler) ScanURL(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.Validation("url is required"))
		return
	}

	result, err := h.scans.ScanURL(c.Request.Context(), req.URL, middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ScanVoice handles POST /api/v1/scan/voice (multipart field "audio")
func (h *ScanHandler) ScanVoice(c *gin.Context) {
	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		respondError(c, h.logger, apperr.Validation("audio file is required"))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		respondError(c, h.logger, apperr.Validation("failed to read audio payload"))
		return
	}

	result, err := h.scans.ScanVoice(c.Request.Context(), audio, header.Filename, middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// History handles GET /api/v1/history
func (h *ScanHandler) History(c *gin.Context) {
	userID := middleware.UserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.scans.History(*userID, limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// DeleteHistory handles DELETE /api/v1/history/:id
func (h *ScanHandler) DeleteHistory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.logger, apperr.Validation("invalid history entry id"))
		return
	}

	if err := h.scans.DeleteHistory(id, *middleware.UserID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "history entry deleted", "id": id})
}
