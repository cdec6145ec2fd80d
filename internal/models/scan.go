package models

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ScanKind identifies which classification path produced a scan.
type ScanKind string

const (
	ScanKindText     ScanKind = "text"
	ScanKindVoice    ScanKind = "voice"
	ScanKindURL      ScanKind = "url"
	ScanKindPhishing ScanKind = "phishing"
)

// Valid reports whether the kind is one of the known scan kinds.
func (k ScanKind) Valid() bool {
	switch k {
	case ScanKindText, ScanKindVoice, ScanKindURL, ScanKindPhishing:
		return true
	}
	return false
}

// ThreatLabel is the positive-class label the classifier emits for this kind.
func (k ScanKind) ThreatLabel() string {
	switch k {
	case ScanKindURL, ScanKindPhishing:
		return "phishing"
	default:
		return "spam"
	}
}

// SafeLabel is the negative-class label for this kind.
func (k ScanKind) SafeLabel() string {
	switch k {
	case ScanKindURL, ScanKindPhishing:
		return "safe"
	default:
		return "ham"
	}
}

// FeatureFlags are the explainability features the classifier reports
// alongside a prediction.
type FeatureFlags struct {
	HasURL             bool `json:"has_url"`
	HasEmail           bool `json:"has_email"`
	HasPhone           bool `json:"has_phone"`
	CurrencySymbols    bool `json:"currency_symbols"`
	UrgencyWords       bool `json:"urgency_words"`
	SpamKeywords       bool `json:"spam_keywords"`
	IPLiteralHost      bool `json:"ip_literal_host"`
	SuspiciousDomain   bool `json:"suspicious_domain"`
	BrandImpersonation bool `json:"brand_impersonation"`
}

// ScanHistoryEntry is one row in the append-only scan_history table.
type ScanHistoryEntry struct {
	ID             int64          `db:"id" json:"id"`
	UserID         int64          `db:"user_id" json:"user_id"`
	InputText      string         `db:"input_text" json:"-"`
	InputDigest    string         `db:"input_digest" json:"input_digest"`
	IsThreat       bool           `db:"is_threat" json:"is_threat"`
	Confidence     float64        `db:"confidence" json:"confidence"`
	PredictedLabel string         `db:"predicted_label" json:"predicted_label"`
	ScanKind       ScanKind       `db:"scan_kind" json:"scan_kind"`
	Details        types.JSONText `db:"details" json:"details,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// ScanStats summarizes stored verdicts for one user or for everyone.
// ThreatPercentage is the literal number 0 when there are no scans and a
// two-decimal string otherwise.
type ScanStats struct {
	TotalScans       int              `json:"total_scans"`
	ThreatCount      int              `json:"threat_count"`
	SafeCount        int              `json:"safe_count"`
	ThreatPercentage any              `json:"threat_percentage"`
	ByScanKind       map[ScanKind]int `json:"by_scan_kind"`
}

// ThreatPercentage formats the threat share of total scans: the literal
// number 0 when there are no scans, a two-decimal string otherwise.
func ThreatPercentage(threats, total int) any {
	if total == 0 {
		return 0
	}
	return fmt.Sprintf("%.2f", float64(threats)/float64(total)*100)
}
