// Package verdict converts raw classifier output into calibrated,
// user-facing verdicts with risk tiers and danger indicators.
package verdict

import (
	"shieldbackend/internal/models"
)

// Tier boundaries above the detection threshold.
const (
	textHighTier     = 0.85
	phishingHighTier = 0.80
)

// Calibration holds the tunable detection values. It is injected rather
// than hard-coded so boundary values stay testable.
type Calibration struct {
	// TextThreshold is the minimum adjusted confidence to flag text and
	// voice scans as threats.
	TextThreshold float64
	// PhishingThreshold is the minimum confidence to flag URL scans. The
	// service trusts this boundary over the upstream phishing flag.
	PhishingThreshold float64
	// VeryHighConfidence exempts a message from the short-message penalty.
	VeryHighConfidence float64
	// ShortMessagePenalty multiplies the raw confidence of short messages.
	ShortMessagePenalty float64
	// MinWords is the word count below which the penalty applies.
	MinWords int
}

// DefaultCalibration mirrors the production model service values.
func DefaultCalibration() Calibration {
	return Calibration{
		TextThreshold:       0.80,
		PhishingThreshold:   0.65,
		VeryHighConfidence:  0.90,
		ShortMessagePenalty: 0.6,
		MinWords:            3,
	}
}

// Interpreter applies calibration rules and risk-tier mapping.
type Interpreter struct {
	cal Calibration
}

// NewInterpreter builds an interpreter with the given calibration.
func NewInterpreter(cal Calibration) *Interpreter {
	return &Interpreter{cal: cal}
}

// Bypassed builds the fixed verdict for messages caught by the safe-pattern
// filter. The classifier is never consulted for these.
func Bypassed(kind models.ScanKind, reason string) models.Verdict {
	return models.Verdict{
		IsThreat:          false,
		RawConfidence:     0.95,
		Confidence:        0.95,
		DisplayConfidence: 0.95,
		ConfidenceLabel:   models.SafetyConfidence,
		PredictedLabel:    kind.SafeLabel(),
		RiskLevel:         models.RiskNone,
		BypassReason:      reason,
	}
}

// InterpretText calibrates a text or voice prediction. Messages shorter
// than MinWords get their confidence penalized unless the raw confidence
// already clears the very-high bar, so a single emphatic word cannot dodge
// detection at extreme confidence.
func (i *Interpreter) InterpretText(kind models.ScanKind, raw float64, predicted string, wordCount int, flags models.FeatureFlags) models.Verdict {
	adjusted := raw
	penalized := false
	if wordCount < i.cal.MinWords && raw < i.cal.VeryHighConfidence {
		adjusted = raw * i.cal.ShortMessagePenalty
		penalized = true
	}

	isThreat := predicted == kind.ThreatLabel() && adjusted >= i.cal.TextThreshold
	v := i.build(isThreat, raw, adjusted, predicted)
	v.ShortMessagePenaltyApplied = penalized
	v.RiskLevel = i.textRiskLevel(isThreat, adjusted)
	v.DangerCauses = ExtractCauses(flags, isThreat, kind)
	return v
}

// InterpretURL calibrates a phishing/URL prediction. No short-message
// penalty applies; below the phishing threshold the verdict is always safe
// even when the upstream flag disagrees.
func (i *Interpreter) InterpretURL(kind models.ScanKind, raw float64, predicted string, flags models.FeatureFlags) models.Verdict {
	isThreat := predicted == kind.ThreatLabel() && raw >= i.cal.PhishingThreshold
	v := i.build(isThreat, raw, raw, predicted)
	v.RiskLevel = i.phishingRiskLevel(isThreat, raw)
	v.DangerCauses = ExtractCauses(flags, isThreat, kind)
	return v
}

func (i *Interpreter) build(isThreat bool, raw, adjusted float64, predicted string) models.Verdict {
	display := adjusted
	label := models.ThreatConfidence
	if !isThreat {
		display = 1 - adjusted
		label = models.SafetyConfidence
	}
	return models.Verdict{
		IsThreat:          isThreat,
		RawConfidence:     raw,
		Confidence:        adjusted,
		DisplayConfidence: display,
		ConfidenceLabel:   label,
		PredictedLabel:    predicted,
	}
}

func (i *Interpreter) textRiskLevel(isThreat bool, adjusted float64) models.RiskLevel {
	switch {
	case !isThreat:
		return models.RiskNone
	case adjusted >= i.cal.VeryHighConfidence:
		return models.RiskCritical
	case adjusted >= textHighTier:
		return models.RiskHigh
	default:
		return models.RiskMedium
	}
}

func (i *Interpreter) phishingRiskLevel(isThreat bool, confidence float64) models.RiskLevel {
	switch {
	case !isThreat:
		return models.RiskNone
	case confidence >= i.cal.VeryHighConfidence:
		return models.RiskCritical
	case confidence >= phishingHighTier:
		return models.RiskHigh
	default:
		return models.RiskMedium
	}
}
