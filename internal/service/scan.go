package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"shieldbackend/internal/apperr"
	"shieldbackend/internal/ml_client"
	"shieldbackend/internal/models"
	"shieldbackend/internal/repository"
	"shieldbackend/internal/safefilter"
	"shieldbackend/internal/verdict"
)

// ClassifierGateway is the boundary to the external inference service.
type ClassifierGateway interface {
	ClassifyText(ctx context.Context, text string) (*ml_client.Prediction, error)
	ClassifyURL(ctx context.Context, url string) (*ml_client.Prediction, error)
	ClassifyVoice(ctx context.Context, audio []byte, filename string) (*ml_client.Prediction, error)
}

// ScanResult pairs a verdict with the id of its history entry, when one
// was recorded.
type ScanResult struct {
	Verdict models.Verdict `json:"verdict"`
	ScanID  *int64         `json:"scan_id,omitempty"`
}

// ScanService runs the scan pipeline: safe-pattern bypass, classifier
// call, calibration, and the fire-and-forget history write.
type ScanService struct {
	gateway       ClassifierGateway
	filter        *safefilter.Filter
	interpreter   *verdict.Interpreter
	history       repository.ScanHistoryRepository
	bypassEnabled bool
	logger        *zap.Logger
}

// NewScanService wires the scan pipeline.
func NewScanService(gateway ClassifierGateway, filter *safefilter.Filter, interpreter *verdict.Interpreter,
	history repository.ScanHistoryRepository, bypassEnabled bool, logger *zap.Logger) *ScanService {
	return &ScanService{
		gateway:       gateway,
		filter:        filter,
		interpreter:   interpreter,
		history:       history,
		bypassEnabled: bypassEnabled,
		logger:        logger,
	}
}

// ScanText classifies a text message. When userID is present the verdict
// is recorded in the caller's history.
func (s *ScanService) ScanText(ctx context.Context, message string, userID *int64) (*ScanResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperr.Validation("message must not be empty")
	}

	if s.bypassEnabled && s.filter.Match(message) {
		v := verdict.Bypassed(models.ScanKindText, safefilter.BypassReason)
		return s.finish(message, models.ScanKindText, v, nil, userID), nil
	}

	resp, err := s.gateway.ClassifyText(ctx, message)
	if err != nil {
		return nil, err
	}

	v := s.interpreter.InterpretText(models.ScanKindText, resp.Confidence, resp.Prediction, wordCount(message), resp.Features())
	return s.finish(message, models.ScanKindText, v, resp, userID), nil
}

// ScanURL classifies a URL for phishing.
func (s *ScanService) ScanURL(ctx context.Context, url string, userID *int64) (*ScanResult, error) {
	if strings.TrimSpace(url) == "" {
		return nil, apperr.Validation("url must not be empty")
	}

	resp, err := s.gateway.ClassifyURL(ctx, url)
	if err != nil {
		return nil, err
	}

	v := s.interpreter.InterpretURL(models.ScanKindURL, resp.Confidence, resp.Prediction, resp.Features())
	return s.finish(url, models.ScanKindURL, v, resp, userID), nil
}

// ScanVoice classifies an audio sample. The transcript returned by the
// inference service supplies the word count for calibration.
func (s *ScanService) ScanVoice(ctx context.Context, audio []byte, filename string, userID *int64) (*ScanResult, error) {
	if len(audio) == 0 {
		return nil, apperr.Validation("audio payload must not be empty")
	}

	resp, err := s.gateway.ClassifyVoice(ctx, audio, filename)
	if err != nil {
		return nil, err
	}

	v := s.interpreter.InterpretText(models.ScanKindVoice, resp.Confidence, resp.Prediction, wordCount(resp.TranscribedText), resp.Features())
	return s.finish(resp.TranscribedText, models.ScanKindVoice, v, resp, userID), nil
}

// History lists the caller's own scan history.
func (s *ScanService) History(userID int64, limit, offset int) ([]*models.ScanHistoryEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.history.ListByUser(userID, limit, offset)
}

// DeleteHistory removes one of the caller's own entries.
func (s *ScanService) DeleteHistory(id, userID int64) error {
	return s.history.Delete(id, userID)
}

// Statistics summarizes stored verdicts, optionally scoped to one user.
func (s *ScanService) Statistics(userID *int64) (*models.ScanStats, error) {
	return s.history.Stats(userID)
}

// finish attaches the history write to a computed verdict. A failed write
// is logged and swallowed: the scan's deliverable is the verdict, not its
// audit trail.
func (s *ScanService) finish(input string, kind models.ScanKind, v models.Verdict, resp *ml_client.Prediction, userID *int64) *ScanResult {
	result := &ScanResult{Verdict: v}
	if userID == nil {
		return result
	}

	details, err := json.Marshal(scanDetails{Verdict: v, Prediction: resp})
	if err != nil {
		s.logger.Error("Failed to encode scan details", zap.Error(err))
		details = nil
	}

	digest := sha256.Sum256([]byte(input))
	entry := &models.ScanHistoryEntry{
		UserID:         *userID,
		InputText:      input,
		InputDigest:    hex.EncodeToString(digest[:]),
		IsThreat:       v.IsThreat,
		Confidence:     v.Confidence,
		PredictedLabel: v.PredictedLabel,
		ScanKind:       kind,
		Details:        details,
	}
	if err := s.history.Save(entry); err != nil {
		s.logger.Error("Failed to persist scan history",
			zap.Int64("user_id", *userID),
			zap.String("scan_kind", string(kind)),
			zap.Error(err))
		return result
	}
	result.ScanID = &entry.ID
	return result
}

type scanDetails struct {
	Verdict    models.Verdict        `json:"verdict"`
	Prediction *ml_client.Prediction `json:"prediction,omitempty"`
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
