package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hireline/recruitment-api/internal/models"
	appErrors "github.com/hireline/recruitment-api/pkg/errors"
)

type candidateRepository interface {
	List(ctx context.Context) ([]models.Candidate, error)
	FindByID(ctx context.Context, id string) (*models.Candidate, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	FindByKeyword(ctx context.Context, keyword string) ([]models.Candidate, error)
	FindByColumnAndKeyword(ctx context.Context, column, keyword string) ([]models.Candidate, error)
	FindByAccountStatuses(ctx context.Context, statuses []models.AccountStatus) ([]models.Candidate, error)
	FindByLastLoginBetween(ctx context.Context, from, to time.Time) ([]models.Candidate, error)
	Create(ctx context.Context, candidate *models.Candidate) error
	Update(ctx context.Context, candidate *models.Candidate) error
	Delete(ctx context.Context, id string) error
}

// searchDateLayout matches the date bounds accepted by the filtered search.
const searchDateLayout = "2006-01-02 15:04:05"

// CreateCandidateRequest represents payload for registering candidates.
type CreateCandidateRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Gender      string `json:"gender"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number"`
	Country     string `json:"country"`
	Address     string `json:"address"`
	Username    string `json:"username" validate:"required"`
}

// UpdateCandidateRequest represents payload for updating candidates.
type UpdateCandidateRequest struct {
	FirstName     string                `json:"first_name" validate:"required"`
	LastName      string                `json:"last_name" validate:"required"`
	Gender        string                `json:"gender"`
	Email         string                `json:"email" validate:"required,email"`
	PhoneNumber   string                `json:"phone_number"`
	Country       string                `json:"country"`
	Address       string                `json:"address"`
	AccountStatus *models.AccountStatus `json:"account_status"`
	HiredStatus   *models.HiredStatus   `json:"hired_status"`
}

// CandidateService is the candidate directory: CRUD plus the filtered search
// used by the recruitment dashboard.
type CandidateService struct {
	repo      candidateRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCandidateService constructs a CandidateService.
func NewCandidateService(repo candidateRepository, validate *validator.Validate, logger *zap.Logger) *CandidateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CandidateService{repo: repo, validator: validate, logger: logger}
}

// List returns every candidate.
func (s *CandidateService) List(ctx context.Context) ([]models.Candidate, error) {
	candidates, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list candidates")
	}
	return candidates, nil
}

// Get returns a candidate by id.
func (s *CandidateService) Get(ctx context.Context, id string) (*models.Candidate, error) {
	candidate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Candidate with id: %s not found.", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate")
	}
	return candidate, nil
}

// Create registers a new candidate; usernames are unique.
func (s *CandidateService) Create(ctx context.Context, req CreateCandidateRequest) (*models.Candidate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid candidate payload")
	}

	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check candidate username")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "User already exists!")
	}

	candidate := &models.Candidate{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Gender:        req.Gender,
		Email:         strings.TrimSpace(req.Email),
		PhoneNumber:   req.PhoneNumber,
		Country:       req.Country,
		Address:       req.Address,
		Username:      strings.TrimSpace(req.Username),
		AccountStatus: models.AccountActive,
		HiredStatus:   models.HiredNoGo,
		LastLoginDate: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create candidate")
	}
	s.logger.Info("candidate created", zap.String("candidate_id", candidate.ID))
	return candidate, nil
}

// Update modifies an existing candidate.
func (s *CandidateService) Update(ctx context.Context, id string, req UpdateCandidateRequest) (*models.Candidate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid candidate payload")
	}

	candidate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	candidate.FirstName = strings.TrimSpace(req.FirstName)
	candidate.LastName = strings.TrimSpace(req.LastName)
	candidate.Gender = req.Gender
	candidate.Email = strings.TrimSpace(req.Email)
	candidate.PhoneNumber = req.PhoneNumber
	candidate.Country = req.Country
	candidate.Address = req.Address
	if req.AccountStatus != nil {
		candidate.AccountStatus = *req.AccountStatus
	}
	if req.HiredStatus != nil {
		candidate.HiredStatus = *req.HiredStatus
	}
	candidate.LastLoginDate = time.Now().UTC()

	if err := s.repo.Update(ctx, candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update candidate")
	}
	s.logger.Info("candidate updated", zap.String("candidate_id", candidate.ID))
	return candidate, nil
}

// Delete removes a candidate by id.
func (s *CandidateService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete candidate")
	}
	s.logger.Info("candidate deleted", zap.String("candidate_id", id))
	return nil
}

// Search runs the filtered search: a bare keyword, a column plus keyword, a
// set of account statuses, or a last-login date range.
func (s *CandidateService) Search(ctx context.Context, search models.CandidateSearch) ([]models.Candidate, error) {
	column := strings.TrimSpace(search.ColumnName)

	var candidates []models.Candidate
	var err error
	switch {
	case column == "" && len(search.Items) == 0:
		candidates, err = s.repo.List(ctx)
	case column == "":
		candidates, err = s.repo.FindByKeyword(ctx, search.Items[0])
	case column == "account_status":
		statuses := make([]models.AccountStatus, 0, len(search.Items))
		for _, item := range search.Items {
			statuses = append(statuses, models.AccountStatus(strings.ToUpper(item)))
		}
		candidates, err = s.repo.FindByAccountStatuses(ctx, statuses)
	case column == "date":
		if len(search.Items) < 2 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "Date search requires a lower and an upper bound")
		}
		var from, to time.Time
		from, err = time.Parse(searchDateLayout, search.Items[0])
		if err == nil {
			to, err = time.Parse(searchDateLayout, search.Items[1])
		}
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "Date bounds must use the format 2006-01-02 15:04:05")
		}
		candidates, err = s.repo.FindByLastLoginBetween(ctx, from, to)
	default:
		if len(search.Items) == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "Column search requires a keyword")
		}
		candidates, err = s.repo.FindByColumnAndKeyword(ctx, column, search.Items[0])
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search candidates")
	}
	if len(candidates) == 0 {
		s.logger.Debug("candidate search returned no rows", zap.String("column", column))
	}
	return candidates, nil
}
