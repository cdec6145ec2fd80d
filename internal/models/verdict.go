package models

// RiskLevel grades how dangerous a flagged message is.
type RiskLevel string

const (
	RiskNone     RiskLevel = "NONE"
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// ConfidenceLabel says what the display confidence refers to: how sure we
// are the message is a threat, or how sure we are it is safe.
type ConfidenceLabel string

const (
	ThreatConfidence ConfidenceLabel = "threat_confidence"
	SafetyConfidence ConfidenceLabel = "safety_confidence"
)

// CauseSeverity grades a single danger cause.
type CauseSeverity string

const (
	SeverityLow      CauseSeverity = "low"
	SeverityMedium   CauseSeverity = "medium"
	SeverityHigh     CauseSeverity = "high"
	SeverityCritical CauseSeverity = "critical"
)

// DangerCause is a structured explanation of why a verdict was flagged.
type DangerCause struct {
	Type        string        `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Severity    CauseSeverity `json:"severity"`
}

// Verdict is the calibrated result of a single scan. It is built once by
// the interpreter (or the safe-pattern bypass) and never mutated after.
// RawConfidence is the classifier's untransformed probability; Confidence
// is the calibrated value after the short-message penalty and is what the
// threshold and risk tier are derived from.
type Verdict struct {
	IsThreat                   bool            `json:"is_threat"`
	RawConfidence              float64         `json:"raw_confidence"`
	Confidence                 float64         `json:"confidence"`
	DisplayConfidence          float64         `json:"display_confidence"`
	ConfidenceLabel            ConfidenceLabel `json:"confidence_label"`
	PredictedLabel             string          `json:"predicted_label"`
	RiskLevel                  RiskLevel       `json:"risk_level"`
	DangerCauses               []DangerCause   `json:"danger_causes"`
	BypassReason               string          `json:"bypass_reason,omitempty"`
	ShortMessagePenaltyApplied bool            `json:"short_message_penalty_applied,omitempty"`
}

// Bypassed reports whether this verdict came from the safe-pattern filter
// rather than the classifier.
func (v Verdict) Bypassed() bool {
	return v.BypassReason != ""
}
