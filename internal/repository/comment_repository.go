package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hireline/recruitment-api/internal/models"
)

const commentColumns = "id, candidate_id, author_id, body, created_at, updated_at"

// CommentRepository manages persistence for candidate comments.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository constructs a CommentRepository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// FindByID fetches a comment by ID. Returns sql.ErrNoRows when absent.
func (r *CommentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	query := fmt.Sprintf("SELECT %s FROM comments WHERE id = $1", commentColumns)
	var comment models.Comment
	if err := r.db.GetContext(ctx, &comment, query, id); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByCandidateID returns every comment left on a candidate.
func (r *CommentRepository) ListByCandidateID(ctx context.Context, candidateID string) ([]models.Comment, error) {
	query := fmt.Sprintf("SELECT %s FROM comments WHERE candidate_id = $1 ORDER BY created_at", commentColumns)
	var comments []models.Comment
	if err := r.db.SelectContext(ctx, &comments, query, candidateID); err != nil {
		return nil, fmt.Errorf("list candidate comments: %w", err)
	}
	return comments, nil
}

// Create inserts a new comment row.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	const query = `INSERT INTO comments (id, candidate_id, author_id, body, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.CandidateID, comment.AuthorID, comment.Body,
		comment.CreatedAt, comment.UpdatedAt); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// Update rewrites the body of an existing comment.
func (r *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	comment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE comments SET body = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, comment.Body, comment.UpdatedAt, comment.ID); err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

// Delete removes a comment row.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
