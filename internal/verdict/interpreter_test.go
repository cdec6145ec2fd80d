package verdict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shieldbackend/internal/models"
)

func TestInterpretTextRiskTiers(t *testing.T) {
	i := NewInterpreter(DefaultCalibration())

	tests := []struct {
		name       string
		confidence float64
		predicted  string
		wantThreat bool
		wantRisk   models.RiskLevel
	}{
		{"below threshold is safe", 0.79, "spam", false, models.RiskNone},
		{"threshold boundary is medium", 0.80, "spam", true, models.RiskMedium},
		{"just below high tier stays medium", 0.8499, "spam", true, models.RiskMedium},
		{"high tier boundary", 0.85, "spam", true, models.RiskHigh},
		{"just below critical stays high", 0.8999, "spam", true, models.RiskHigh},
		{"critical boundary", 0.90, "spam", true, models.RiskCritical},
		{"max confidence is critical", 1.0, "spam", true, models.RiskCritical},
		{"ham prediction is never a threat", 0.99, "ham", false, models.RiskNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := i.InterpretText(models.ScanKindText, tt.confidence, tt.predicted, 10, models.FeatureFlags{})
			assert.Equal(t, tt.wantThreat, v.IsThreat)
			assert.Equal(t, tt.wantRisk, v.RiskLevel)
		})
	}
}

func TestInterpretTextShortMessagePenalty(t *testing.T) {
	i := NewInterpreter(DefaultCalibration())

	t.Run("two words get penalized below threshold", func(t *testing.T) {
		v := i.InterpretText(models.ScanKindText, 0.75, "spam", 2, models.FeatureFlags{})
		require.True(t, v.ShortMessagePenaltyApplied)
		assert.False(t, v.IsThreat)
		assert.InDelta(t, 0.75, v.RawConfidence, 1e-9)
		assert.InDelta(t, 0.45, v.Confidence, 1e-9)
		assert.InDelta(t, 0.55, v.DisplayConfidence, 1e-9)
		assert.Equal(t, models.SafetyConfidence, v.ConfidenceLabel)
		assert.Equal(t, models.RiskNone, v.RiskLevel)
	})

	t.Run("very high confidence is exempt from the penalty", func(t *testing.T) {
		v := i.InterpretText(models.ScanKindText, 0.95, "spam", 1, models.FeatureFlags{})
		require.False(t, v.ShortMessagePenaltyApplied)
		assert.True(t, v.IsThreat)
		assert.InDelta(t, 0.95, v.Confidence, 1e-9)
		assert.Equal(t, models.RiskCritical, v.RiskLevel)
	})

	t.Run("penalty boundary at min words", func(t *testing.T) {
		v := i.InterpretText(models.ScanKindText, 0.85, "spam", 3, models.FeatureFlags{})
		assert.False(t, v.ShortMessagePenaltyApplied)
		assert.True(t, v.IsThreat)
	})

	t.Run("penalized short spam can still clear the threshold", func(t *testing.T) {
		// Raw 0.89 is below the very-high bar, so the penalty applies:
		// 0.89 * 0.6 = 0.534, which no longer clears 0.80.
		v := i.InterpretText(models.ScanKindText, 0.89, "spam", 2, models.FeatureFlags{})
		assert.True(t, v.ShortMessagePenaltyApplied)
		assert.False(t, v.IsThreat)
	})
}

func TestInterpretTextDisplayInversion(t *testing.T) {
	i := NewInterpreter(DefaultCalibration())

	v := i.InterpretText(models.ScanKindText, 0.30, "ham", 10, models.FeatureFlags{})
	assert.False(t, v.IsThreat)
	assert.InDelta(t, 0.30, v.RawConfidence, 1e-9)
	assert.InDelta(t, 0.30, v.Confidence, 1e-9)
	assert.InDelta(t, 0.70, v.DisplayConfidence, 1e-9)
	assert.Equal(t, models.SafetyConfidence, v.ConfidenceLabel)

	v = i.InterpretText(models.ScanKindText, 0.88, "spam", 10, models.FeatureFlags{})
	assert.True(t, v.IsThreat)
	assert.InDelta(t, 0.88, v.DisplayConfidence, 1e-9)
	assert.Equal(t, models.ThreatConfidence, v.ConfidenceLabel)
}

func TestInterpretTextIsDeterministic(t *testing.T) {
	i := NewInterpreter(DefaultCalibration())

	first := i.InterpretText(models.ScanKindText, 0.75, "spam", 2, models.FeatureFlags{HasURL: true})
	second := i.InterpretText(models.ScanKindText, 0.75, "spam", 2, models.FeatureFlags{HasURL: true})
	assert.Equal(t, first, second)
}

func TestInterpretURL(t *testing.T) {
	i := NewInterpreter(DefaultCalibration())

	tests := []struct {
		name       string
		confidence float64
		predicted  string
		wantThreat bool
		wantRisk   models.RiskLevel
	}{
		{"below phishing threshold is safe", 0.6499, "phishing", false, models.RiskNone},
		{"phishing threshold boundary is medium", 0.65, "phishing", true, models.RiskMedium},
		{"high tier boundary", 0.80, "phishing", true, models.RiskHigh},
		{"critical boundary", 0.90, "phishing", true, models.RiskCritical},
		{"safe prediction stays safe at any confidence", 0.99, "safe", false, models.RiskNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := i.InterpretURL(models.ScanKindURL, tt.confidence, tt.predicted, models.FeatureFlags{})
			assert.Equal(t, tt.wantThreat, v.IsThreat)
			assert.Equal(t, tt.wantRisk, v.RiskLevel)
			assert.False(t, v.ShortMessagePenaltyApplied)
		})
	}
}

func TestBypassedVerdict(t *testing.T) {
	v := Bypassed(models.ScanKindText, "safe_greeting_pattern")
	assert.True(t, v.Bypassed())
	assert.False(t, v.IsThreat)
	assert.Equal(t, models.RiskNone, v.RiskLevel)
	assert.Equal(t, "ham", v.PredictedLabel)
	assert.Equal(t, models.SafetyConfidence, v.ConfidenceLabel)
	assert.InDelta(t, 0.95, v.DisplayConfidence, 1e-9)
	assert.Empty(t, v.DangerCauses)
}
