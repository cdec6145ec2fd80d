package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shieldbackend/internal/apperr"
	"shieldbackend/internal/ml_client"
	"shieldbackend/internal/models"
	"shieldbackend/internal/safefilter"
	"shieldbackend/internal/verdict"
)

type fakeGateway struct {
	prediction *ml_client.Prediction
	err        error
	textCalls  int
	urlCalls   int
	voiceCalls int
	lastText   string
}

func (g *fakeGateway) ClassifyText(_ context.Context, text string) (*ml_client.Prediction, error) {
	g.textCalls++
	g.lastText = text
	return g.prediction, g.err
}

func (g *fakeGateway) ClassifyURL(_ context.Context, url string) (*ml_client.Prediction, error) {
	g.urlCalls++
	return g.prediction, g.err
}

func (g *fakeGateway) ClassifyVoice(_ context.Context, _ []byte, _ string) (*ml_client.Prediction, error) {
	g.voiceCalls++
	return g.prediction, g.err
}

type fakeHistoryRepo struct {
	entries   []*models.ScanHistoryEntry
	saveErr   error
	getEntry  *models.ScanHistoryEntry
	getErr    error
	deleteErr error
	stats     *models.ScanStats
	nextID    int64
}

func (r *fakeHistoryRepo) Save(entry *models.ScanHistoryEntry) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.nextID++
	entry.ID = r.nextID
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeHistoryRepo) GetByID(id int64) (*models.ScanHistoryEntry, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.getEntry != nil {
		return r.getEntry, nil
	}
	return nil, apperr.NotFound("scan %d not found", id)
}

func (r *fakeHistoryRepo) ListByUser(int64, int, int) ([]*models.ScanHistoryEntry, error) {
	return r.entries, nil
}

func (r *fakeHistoryRepo) Delete(int64, int64) error {
	return r.deleteErr
}

func (r *fakeHistoryRepo) Stats(*int64) (*models.ScanStats, error) {
	return r.stats, nil
}

func newScanService(gateway *fakeGateway, history *fakeHistoryRepo, bypass bool) *ScanService {
	return NewScanService(gateway, safefilter.New(), verdict.NewInterpreter(verdict.DefaultCalibration()),
		history, bypass, zap.NewNop())
}

func TestScanTextBypassSkipsClassifier(t *testing.T) {
	gateway := &fakeGateway{}
	svc := newScanService(gateway, &fakeHistoryRepo{}, true)

	result, err := svc.ScanText(context.Background(), "hello there", nil)
	require.NoError(t, err)
	assert.Zero(t, gateway.textCalls, "classifier must not be called for safe greetings")
	assert.True(t, result.Verdict.Bypassed())
	assert.False(t, result.Verdict.IsThreat)
	assert.Equal(t, safefilter.BypassReason, result.Verdict.BypassReason)
}

func TestScanTextBypassDisabled(t *testing.T) {
	gateway := &fakeGateway{prediction: &ml_client.Prediction{Confidence: 0.1, Prediction: "ham"}}
	svc := newScanService(gateway, &fakeHistoryRepo{}, false)

	result, err := svc.ScanText(context.Background(), "hello there", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, gateway.textCalls)
	assert.False(t, result.Verdict.Bypassed())
}

func TestScanTextEmptyMessage(t *testing.T) {
	gateway := &fakeGateway{}
	svc := newScanService(gateway, &fakeHistoryRepo{}, true)

	_, err := svc.ScanText(context.Background(), "   ", nil)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Zero(t, gateway.textCalls)
}

func TestScanTextRecordsHistoryForAuthenticatedUser(t *testing.T) {
	gateway := &fakeGateway{prediction: &ml_client.Prediction{Confidence: 0.92, Prediction: "spam"}}
	history := &fakeHistoryRepo{}
	svc := newScanService(gateway, history, true)

	userID := int64(42)
	result, err := svc.ScanText(context.Background(), "URGENT claim your free prize now", &userID)
	require.NoError(t, err)
	require.NotNil(t, result.ScanID)

	require.Len(t, history.entries, 1)
	entry := history.entries[0]
	assert.Equal(t, userID, entry.UserID)
	assert.Equal(t, models.ScanKindText, entry.ScanKind)
	assert.True(t, entry.IsThreat)
	assert.Equal(t, "spam", entry.PredictedLabel)
	assert.NotEmpty(t, entry.InputDigest)
	assert.NotEmpty(t, entry.Details)
}

func TestScanTextAnonymousSkipsHistory(t *testing.T) {
	gateway := &fakeGateway{prediction: &ml_client.Prediction{Confidence: 0.92, Prediction: "spam"}}
	history := &fakeHistoryRepo{}
	svc := newScanService(gateway, history, true)

	result, err := svc.ScanText(context.Background(), "URGENT claim your free prize now", nil)
	require.NoError(t, err)
	assert.Nil(t, result.ScanID)
	assert.Empty(t, history.entries)
}

func TestScanTextHistoryFailureDoesNotFailScan(t *testing.T) {
	gateway := &fakeGateway{prediction: &ml_client.Prediction{Confidence: 0.92, Prediction: "spam"}}
	history := &fakeHistoryRepo{saveErr: errors.New("connection reset")}
	svc := newScanService(gateway, history, true)

	userID := int64(42)
	result, err := svc.ScanText(context.Background(), "URGENT claim your free prize now", &userID)
	require.NoError(t, err)
	assert.True(t, result.Verdict.IsThreat)
	assert.Nil(t, result.ScanID, "failed history write leaves no scan id")
}

func TestScanTextPropagatesClassifierError(t *testing.T) {
	gateway := &fakeGateway{err: apperr.New(apperr.KindUpstreamTimeout, "request timed out")}
	svc := newScanService(gateway, &fakeHistoryRepo{}, true)

	_, err := svc.ScanText(context.Background(), "is this message a scam", nil)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUpstreamTimeout))
}

func TestScanURL(t *testing.T) {
	gateway := &fakeGateway{prediction: &ml_client.Prediction{Confidence: 0.70, Prediction: "phishing"}}
	svc := newScanService(gateway, &fakeHistoryRepo{}, true)

	result, err := svc.ScanURL(context.Background(), "http://paypa1.example.com/login", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, gateway.urlCalls)
	assert.True(t, result.Verdict.IsThreat)
	assert.Equal(t, models.RiskMedium, result.Verdict.RiskLevel)
}

func TestScanURLNeverBypassed(t *testing.T) {
	// A URL that happens to read like a greeting must still be classified.
	gateway := &fakeGateway{prediction: &ml_client.Prediction{Confidence: 0.1, Prediction: "safe"}}
	svc := newScanService(gateway, &fakeHistoryRepo{}, true)

	_, err := svc.ScanURL(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, gateway.urlCalls)
}

func TestScanVoiceUsesTranscriptWordCount(t *testing.T) {
	// Two transcribed words: the short-message penalty applies and the raw
	// 0.85 drops to 0.51, below the threshold.
	gateway := &fakeGateway{prediction: &ml_client.Prediction{
		Confidence:      0.85,
		Prediction:      "spam",
		TranscribedText: "free money",
	}}
	history := &fakeHistoryRepo{}
	svc := newScanService(gateway, history, true)

	userID := int64(7)
	result, err := svc.ScanVoice(context.Background(), []byte{1, 2, 3}, "clip.ogg", &userID)
	require.NoError(t, err)
	assert.Equal(t, 1, gateway.voiceCalls)
	assert.True(t, result.Verdict.ShortMessagePenaltyApplied)
	assert.False(t, result.Verdict.IsThreat)

	require.Len(t, history.entries, 1)
	assert.Equal(t, models.ScanKindVoice, history.entries[0].ScanKind)
	assert.Equal(t, "free money", history.entries[0].InputText)
}

func TestScanVoiceEmptyAudio(t *testing.T) {
	svc := newScanService(&fakeGateway{}, &fakeHistoryRepo{}, true)

	_, err := svc.ScanVoice(context.Background(), nil, "clip.ogg", nil)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestHistoryLimitClamping(t *testing.T) {
	history := &fakeHistoryRepo{}
	svc := newScanService(&fakeGateway{}, history, true)

	_, err := svc.History(1, -5, -1)
	require.NoError(t, err)
	_, err = svc.History(1, 500, 0)
	require.NoError(t, err)
}
