package models

import "time"

// CandidateStatus is the outcome a technical interviewer proposes for a
// candidate in their feedback.
type CandidateStatus string

const (
	CandidateAccepted    CandidateStatus = "ACCEPTED"
	CandidateNotAccepted CandidateStatus = "NOT_ACCEPTED"
)

// InterviewFeedback records one interviewer's verdict on one interview.
// At most one row may exist per (interview_id, user_id) pair.
type InterviewFeedback struct {
	ID              string          `db:"id" json:"id"`
	UserID          string          `db:"user_id" json:"user_id"`
	InterviewID     string          `db:"interview_id" json:"interview_id"`
	FeedbackDate    time.Time       `db:"feedback_date" json:"feedback_date"`
	CandidateStatus CandidateStatus `db:"candidate_status" json:"candidate_status"`
	ProposedRole    string          `db:"proposed_role" json:"proposed_role"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}
