package models

import "time"

// ReportType categorizes a free-form abuse report.
type ReportType string

const (
	ReportSpam       ReportType = "SPAM"
	ReportPhishing   ReportType = "PHISHING"
	ReportScam       ReportType = "SCAM"
	ReportSuspicious ReportType = "SUSPICIOUS"
	ReportOther      ReportType = "OTHER"
)

// Valid reports whether the type is one of the five known values.
func (t ReportType) Valid() bool {
	switch t {
	case ReportSpam, ReportPhishing, ReportScam, ReportSuspicious, ReportOther:
		return true
	}
	return false
}

// ReportStatus is the review state of an abuse report. Only privileged
// reviewers may change it.
type ReportStatus string

const (
	ReportPending  ReportStatus = "PENDING"
	ReportReviewed ReportStatus = "REVIEWED"
	ReportResolved ReportStatus = "RESOLVED"
	ReportRejected ReportStatus = "REJECTED"
)

// Valid reports whether the status is one of the known values.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportReviewed, ReportResolved, ReportRejected:
		return true
	}
	return false
}

// Report is a free-form abuse report filed by a user.
type Report struct {
	ID          int64        `db:"id" json:"id"`
	ReporterID  int64        `db:"reporter_id" json:"reporter_id"`
	Content     string       `db:"content" json:"content"`
	ReportType  ReportType   `db:"report_type" json:"report_type"`
	Description string       `db:"description" json:"description"`
	Status      ReportStatus `db:"status" json:"status"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// ReportFilter narrows a report listing.
type ReportFilter struct {
	Status     *ReportStatus
	ReportType *ReportType
	ReporterID *int64
	Page       int
	Limit      int
}

// ReportPage is one page of a report listing.
type ReportPage struct {
	Reports    []*Report `json:"reports"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}
