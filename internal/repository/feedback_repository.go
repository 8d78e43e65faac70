package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hireline/recruitment-api/internal/models"
)

const feedbackColumns = "id, user_id, interview_id, feedback_date, candidate_status, proposed_role, created_at"

// FeedbackRepository manages persistence for interview feedback.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs a FeedbackRepository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// ListByInterviewID returns every feedback entry for an interview. The
// feedback ledger scans this list for duplicates before inserting so the
// violation can be raised as a typed application error.
func (r *FeedbackRepository) ListByInterviewID(ctx context.Context, interviewID string) ([]models.InterviewFeedback, error) {
	query := fmt.Sprintf("SELECT %s FROM interview_feedback WHERE interview_id = $1 ORDER BY created_at", feedbackColumns)
	var feedback []models.InterviewFeedback
	if err := r.db.SelectContext(ctx, &feedback, query, interviewID); err != nil {
		return nil, fmt.Errorf("list interview feedback: %w", err)
	}
	return feedback, nil
}

// Create inserts a new feedback row.
func (r *FeedbackRepository) Create(ctx context.Context, feedback *models.InterviewFeedback) error {
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	feedback.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO interview_feedback (id, user_id, interview_id, feedback_date, candidate_status, proposed_role, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		feedback.ID, feedback.UserID, feedback.InterviewID, feedback.FeedbackDate,
		feedback.CandidateStatus, feedback.ProposedRole, feedback.CreatedAt); err != nil {
		return fmt.Errorf("insert interview feedback: %w", err)
	}
	return nil
}
