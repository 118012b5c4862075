package types

import "time"

type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "Pending"
	ReportStatusApproved ReportStatus = "Approved"
	ReportStatusRejected ReportStatus = "Rejected"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusPending, ReportStatusApproved, ReportStatusRejected:
		return true
	}
	return false
}

type MissionStatus string

const (
	MissionStatusNone      MissionStatus = "None"
	MissionStatusActive    MissionStatus = "Active"
	MissionStatusCompleted MissionStatus = "Completed"
)

func (s MissionStatus) Valid() bool {
	switch s {
	case MissionStatusNone, MissionStatusActive, MissionStatusCompleted:
		return true
	}
	return false
}

type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

const (
	DefaultSeverity        = SeverityHigh
	DefaultRejectionReason = "No reason provided"
	UnknownLocation        = "Unknown Location"

	// ReportTimeLayout is the human readable creation time stored in Report.Time.
	ReportTimeLayout = "3:04:05 PM"
)

// Report categories offered to reporters. The type field is free text, these
// are only the values the reporting screens propose.
var ReportTypes = []string{
	"Fire",
	"Flood",
	"Earthquake",
	"Accident",
	"Medical Emergency",
	"Other",
}

type Report struct {
	ID              string        `json:"id"`
	Type            string        `json:"type"`
	Description     string        `json:"description"`
	Location        string        `json:"location"`
	Image           *string       `json:"image,omitempty"`
	Status          ReportStatus  `json:"status"`
	Severity        *Severity     `json:"severity,omitempty"`
	RejectionReason *string       `json:"rejectionReason,omitempty"`
	MissionStatus   MissionStatus `json:"missionStatus"`
	Time            string        `json:"time"`
	ApprovedAt      *time.Time    `json:"approvedAt,omitempty"`
	RejectedAt      *time.Time    `json:"rejectedAt,omitempty"`
	AcceptedAt      *time.Time    `json:"acceptedAt,omitempty"`
	CompletedAt     *time.Time    `json:"completedAt,omitempty"`
	IsEmergencySOS  bool          `json:"isEmergencySOS"`
}

// Clone returns a deep copy so callers can mutate it without touching cached
// or stored state.
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}

	out := *r
	out.Image = cloneString(r.Image)
	out.RejectionReason = cloneString(r.RejectionReason)
	if r.Severity != nil {
		sev := *r.Severity
		out.Severity = &sev
	}
	out.ApprovedAt = cloneTime(r.ApprovedAt)
	out.RejectedAt = cloneTime(r.RejectedAt)
	out.AcceptedAt = cloneTime(r.AcceptedAt)
	out.CompletedAt = cloneTime(r.CompletedAt)

	return &out
}

// ReportSubmission is the body of POST /api/reports. id, status and time are
// always assigned by the server.
type ReportSubmission struct {
	Type           string  `json:"type"`
	Description    string  `json:"description"`
	Location       string  `json:"location"`
	Image          *string `json:"image,omitempty"`
	IsEmergencySOS bool    `json:"isEmergencySOS"`
}

// ReportPatch is the body of PATCH /api/reports/:id. Every field is optional
// and each recognised field is applied independently.
type ReportPatch struct {
	Status          *ReportStatus  `json:"status,omitempty"`
	Severity        *Severity      `json:"severity,omitempty"`
	RejectionReason *string        `json:"rejectionReason,omitempty"`
	ApprovedAt      *time.Time     `json:"approvedAt,omitempty"`
	RejectedAt      *time.Time     `json:"rejectedAt,omitempty"`
	MissionStatus   *MissionStatus `json:"missionStatus,omitempty"`
	AcceptedAt      *time.Time     `json:"acceptedAt,omitempty"`
	CompletedAt     *time.Time     `json:"completedAt,omitempty"`
}

func (p ReportPatch) Empty() bool {
	return p.Status == nil && p.MissionStatus == nil
}

type ReportFilter struct {
	Status        ReportStatus  `form:"status,omitempty"`
	MissionStatus MissionStatus `form:"missionStatus,omitempty"`
	SOS           *bool         `form:"sos,omitempty"`
}

func (f ReportFilter) Match(r *Report) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.MissionStatus != "" && r.MissionStatus != f.MissionStatus {
		return false
	}
	if f.SOS != nil && r.IsEmergencySOS != *f.SOS {
		return false
	}
	return true
}

type ReportUpdatedResponse struct {
	Message string  `json:"message"`
	Report  *Report `json:"report"`
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
