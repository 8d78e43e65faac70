package models

import "time"

// InterviewType selects which parts of the role quota table apply.
type InterviewType string

const (
	InterviewHR             InterviewType = "HR"
	InterviewTechnical      InterviewType = "TECHNICAL"
	InterviewHRAndTechnical InterviewType = "HR_AND_TECHNICAL"
)

// RequiresHRPanel reports whether the type carries the HR quota.
func (t InterviewType) RequiresHRPanel() bool {
	return t == InterviewHR || t == InterviewHRAndTechnical
}

// RequiresTechnicalPanel reports whether the type carries the technical quota.
func (t InterviewType) RequiresTechnicalPanel() bool {
	return t == InterviewTechnical || t == InterviewHRAndTechnical
}

// Valid reports whether the type is one of the known enumeration values.
func (t InterviewType) Valid() bool {
	switch t {
	case InterviewHR, InterviewTechnical, InterviewHRAndTechnical:
		return true
	}
	return false
}

// Interview represents a scheduled interview. The panel is stored in the
// interview_panel association table, ordered by position.
type Interview struct {
	ID                  string        `db:"id" json:"id"`
	StartDate           time.Time     `db:"start_date" json:"start_date"`
	EndDate             time.Time     `db:"end_date" json:"end_date"`
	CandidateID         string        `db:"candidate_id" json:"candidate_id"`
	AppliedDepartmentID int           `db:"applied_department_id" json:"applied_department_id"`
	InterviewType       InterviewType `db:"interview_type" json:"interview_type"`
	CreatedAt           time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updated_at"`
}

// InterviewProjection is the outward representation of an interview with
// resolved panel display names instead of raw user ids.
type InterviewProjection struct {
	ID                  string        `json:"id"`
	StartDate           time.Time     `json:"start_date"`
	EndDate             time.Time     `json:"end_date"`
	CandidateID         string        `json:"candidate_id"`
	AppliedDepartmentID int           `json:"applied_department_id"`
	InterviewType       InterviewType `json:"interview_type"`
	PanelNames          []string      `json:"panel_names"`
}
