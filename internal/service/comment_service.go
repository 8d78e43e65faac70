package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hireline/recruitment-api/internal/models"
	appErrors "github.com/hireline/recruitment-api/pkg/errors"
)

type commentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	ListByCandidateID(ctx context.Context, candidateID string) ([]models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id string) error
}

// CreateCommentRequest represents payload for commenting on a candidate.
type CreateCommentRequest struct {
	Body string `json:"body" validate:"required"`
}

// CommentService manages free-text notes on candidates.
type CommentService struct {
	repo       commentRepository
	candidates candidateDirectory
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCommentService constructs a CommentService.
func NewCommentService(repo commentRepository, candidates candidateDirectory, validate *validator.Validate, logger *zap.Logger) *CommentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{repo: repo, candidates: candidates, validator: validate, logger: logger}
}

// Create attaches a comment to a candidate.
func (s *CommentService) Create(ctx context.Context, candidateID string, authorID *string, req CreateCommentRequest) (*models.Comment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}
	if candidateID == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Comment candidate id is missing")
	}
	if _, err := s.candidates.FindByID(ctx, candidateID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Candidate with id: %s not found.", candidateID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate")
	}

	comment := &models.Comment{CandidateID: candidateID, AuthorID: authorID, Body: req.Body}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create comment")
	}
	return comment, nil
}

// ListForCandidate returns the comments left on a candidate.
func (s *CommentService) ListForCandidate(ctx context.Context, candidateID string) ([]models.Comment, error) {
	comments, err := s.repo.ListByCandidateID(ctx, candidateID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}
	return comments, nil
}

// Update rewrites the body of an existing comment.
func (s *CommentService) Update(ctx context.Context, id string, req CreateCommentRequest) (*models.Comment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}

	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Comment with id: %s not found.", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment")
	}

	comment.Body = req.Body
	if err := s.repo.Update(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update comment")
	}
	return comment, nil
}

// Delete removes a comment by id.
func (s *CommentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Comment does not exist!")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete comment")
	}
	return nil
}
