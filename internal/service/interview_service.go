package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hireline/recruitment-api/internal/models"
	"github.com/hireline/recruitment-api/internal/repository"
	"github.com/hireline/recruitment-api/pkg/config"
	appErrors "github.com/hireline/recruitment-api/pkg/errors"
)

type interviewRepository interface {
	FindByID(ctx context.Context, id string) (*models.Interview, error)
	PanelUserIDs(ctx context.Context, interviewID string) ([]string, error)
	FindOverlapping(ctx context.Context, userID string, start, end time.Time) ([]models.Interview, error)
	Create(ctx context.Context, interview *models.Interview, panel []string) error
	Update(ctx context.Context, interview *models.Interview, panel []string) error
	Delete(ctx context.Context, id string) error
}

type feedbackRepository interface {
	ListByInterviewID(ctx context.Context, interviewID string) ([]models.InterviewFeedback, error)
	Create(ctx context.Context, feedback *models.InterviewFeedback) error
}

type panelUserDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type candidateDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Candidate, error)
}

type projectionCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string)
}

type schedulingMetrics interface {
	RecordCacheLookup(hit bool)
	RecordScheduleConflict()
}

// ScheduleInterviewRequest represents payload for scheduling an interview.
type ScheduleInterviewRequest struct {
	CandidateID         string               `json:"candidate_id" validate:"required"`
	StartDate           time.Time            `json:"start_date" validate:"required"`
	EndDate             time.Time            `json:"end_date" validate:"required"`
	AppliedDepartmentID int                  `json:"applied_department_id" validate:"required,gt=0"`
	InterviewType       models.InterviewType `json:"interview_type" validate:"required"`
	UserIDs             []string             `json:"user_ids"`
}

// UpdateInterviewRequest represents a partial update; nil fields keep their
// prior values.
type UpdateInterviewRequest struct {
	StartDate           *time.Time            `json:"start_date"`
	EndDate             *time.Time            `json:"end_date"`
	CandidateID         *string               `json:"candidate_id"`
	AppliedDepartmentID *int                  `json:"applied_department_id"`
	InterviewType       *models.InterviewType `json:"interview_type"`
	UserIDs             []string              `json:"user_ids"`
}

// SubmitFeedbackRequest represents payload for one interviewer's feedback.
type SubmitFeedbackRequest struct {
	UserID          string                 `json:"user_id" validate:"required"`
	InterviewID     string                 `json:"interview_id" validate:"required"`
	FeedbackDate    time.Time              `json:"feedback_date" validate:"required"`
	CandidateStatus models.CandidateStatus `json:"candidate_status" validate:"required,oneof=ACCEPTED NOT_ACCEPTED"`
	ProposedRole    string                 `json:"proposed_role"`
}

// InterviewService orchestrates interview scheduling: it confirms the
// candidate exists, resolves the panel through the user directory, validates
// panel composition against the role quota policy, rejects overlapping
// bookings per panel member and governs one feedback entry per interviewer
// per interview.
type InterviewService struct {
	interviews interviewRepository
	feedback   feedbackRepository
	users      panelUserDirectory
	candidates candidateDirectory
	cache      projectionCache
	metrics    schedulingMetrics
	policy     config.SchedulingConfig
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewInterviewService constructs an InterviewService. The cache and metrics
// recorder are optional.
func NewInterviewService(
	interviews interviewRepository,
	feedback feedbackRepository,
	users panelUserDirectory,
	candidates candidateDirectory,
	cache projectionCache,
	metrics schedulingMetrics,
	policy config.SchedulingConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *InterviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterviewService{
		interviews: interviews,
		feedback:   feedback,
		users:      users,
		candidates: candidates,
		cache:      cache,
		metrics:    metrics,
		policy:     policy,
		validator:  validate,
		logger:     logger,
	}
}

// Schedule validates and persists a new interview, returning its read
// projection with resolved panel display names.
func (s *InterviewService) Schedule(ctx context.Context, req ScheduleInterviewRequest) (*models.InterviewProjection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid interview payload")
	}
	if !req.InterviewType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Unknown interview type: %s", req.InterviewType))
	}

	if _, err := s.resolveCandidate(ctx, req.CandidateID); err != nil {
		return nil, err
	}

	panelUsers, err := s.resolvePanel(ctx, req.UserIDs)
	if err != nil {
		return nil, err
	}

	if err := s.validateComposition(panelUsers, req.InterviewType); err != nil {
		return nil, err
	}
	if err := s.validateNoOverlap(ctx, req.StartDate, req.EndDate, req.UserIDs, ""); err != nil {
		return nil, err
	}

	interview := &models.Interview{
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		CandidateID:         req.CandidateID,
		AppliedDepartmentID: req.AppliedDepartmentID,
		InterviewType:       req.InterviewType,
	}

	if err := s.interviews.Create(ctx, interview, req.UserIDs); err != nil {
		if errors.Is(err, repository.ErrScheduleConflict) {
			s.recordConflict()
			return nil, appErrors.Clone(appErrors.ErrValidation, "A panel member has an interview in the same date.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist interview")
	}

	s.logger.Info("interview scheduled",
		zap.String("interview_id", interview.ID),
		zap.String("candidate_id", interview.CandidateID),
		zap.Int("panel_size", len(req.UserIDs)))

	return buildProjection(interview, req.UserIDs, panelUsers), nil
}

// Get returns the read projection for an interview id.
func (s *InterviewService) Get(ctx context.Context, id string) (*models.InterviewProjection, error) {
	if s.cache != nil {
		var cached models.InterviewProjection
		if err := s.cache.Get(ctx, interviewCacheKey(id), &cached); err == nil {
			s.recordCacheLookup(true)
			return &cached, nil
		}
		s.recordCacheLookup(false)
	}

	interview, err := s.interviews.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Interview with id: %s not found.", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load interview")
	}

	panelIDs, err := s.interviews.PanelUserIDs(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load interview panel")
	}
	panelUsers, err := s.users.FindByIDs(ctx, panelIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve panel users")
	}

	projection := buildProjection(interview, panelIDs, panelUsers)
	if s.cache != nil {
		if err := s.cache.Set(ctx, interviewCacheKey(id), projection, s.policy.CacheTTL); err != nil {
			s.logger.Warn("failed to cache interview projection", zap.Error(err))
		}
	}
	return projection, nil
}

// Update applies a partial update: only supplied fields are validated and
// overwritten. Composition is re-validated when the panel changes, and the
// conflict check re-runs whenever either date or the panel changes,
// excluding the interview's own booking.
func (s *InterviewService) Update(ctx context.Context, id string, req UpdateInterviewRequest) (*models.InterviewProjection, error) {
	interview, err := s.interviews.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Interview with interviewId: %s not found.", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load interview")
	}

	panel, err := s.interviews.PanelUserIDs(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load interview panel")
	}

	datesChanged := false
	if req.StartDate != nil {
		interview.StartDate = *req.StartDate
		datesChanged = true
	}
	if req.EndDate != nil {
		interview.EndDate = *req.EndDate
		datesChanged = true
	}
	if req.CandidateID != nil {
		if _, err := s.resolveCandidate(ctx, *req.CandidateID); err != nil {
			return nil, err
		}
		interview.CandidateID = *req.CandidateID
	}
	if req.AppliedDepartmentID != nil && *req.AppliedDepartmentID < s.policy.MaxDepartmentID {
		interview.AppliedDepartmentID = *req.AppliedDepartmentID
	}
	if req.InterviewType != nil {
		if !req.InterviewType.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Unknown interview type: %s", *req.InterviewType))
		}
		interview.InterviewType = *req.InterviewType
	}

	var panelUsers []models.User
	panelChanged := false
	if req.UserIDs != nil {
		panelUsers, err = s.resolvePanel(ctx, req.UserIDs)
		if err != nil {
			return nil, err
		}
		if err := s.validateComposition(panelUsers, interview.InterviewType); err != nil {
			return nil, err
		}
		panel = req.UserIDs
		panelChanged = true
	}

	if datesChanged || panelChanged {
		if err := s.validateNoOverlap(ctx, interview.StartDate, interview.EndDate, panel, interview.ID); err != nil {
			return nil, err
		}
	}

	if err := s.interviews.Update(ctx, interview, panel); err != nil {
		if errors.Is(err, repository.ErrScheduleConflict) {
			s.recordConflict()
			return nil, appErrors.Clone(appErrors.ErrValidation, "A panel member has an interview in the same date.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update interview")
	}

	if s.cache != nil {
		s.cache.Delete(ctx, interviewCacheKey(id))
	}

	if !panelChanged {
		panelUsers, err = s.users.FindByIDs(ctx, panel)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve panel users")
		}
	}

	s.logger.Info("interview updated", zap.String("interview_id", interview.ID))
	return buildProjection(interview, panel, panelUsers), nil
}

// Delete removes an interview once its existence is confirmed. Feedback rows
// are intentionally not cascaded.
func (s *InterviewService) Delete(ctx context.Context, id string) error {
	if _, err := s.interviews.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "The interview desired to be deleted do not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load interview")
	}
	if err := s.interviews.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete interview")
	}
	if s.cache != nil {
		s.cache.Delete(ctx, interviewCacheKey(id))
	}
	s.logger.Info("interview deleted", zap.String("interview_id", id))
	return nil
}

// SubmitFeedback records one technical interviewer's verdict on an
// interview. Validation order: user exists, user holds the technical
// interviewer role, interview exists, feedback is dated after the interview
// end, no prior feedback by this user on this interview.
func (s *InterviewService) SubmitFeedback(ctx context.Context, req SubmitFeedbackRequest) (*models.InterviewFeedback, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback payload")
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "User not found!")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.Role != models.RoleTechnicalInterviewer {
		return nil, appErrors.Clone(appErrors.ErrValidation, "The user is not a technical interviewer!")
	}

	interview, err := s.interviews.FindByID(ctx, req.InterviewID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "The interview does not exist!")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load interview")
	}
	if !req.FeedbackDate.After(interview.EndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "The interview feedback was written before the interview was done!")
	}

	existing, err := s.feedback.ListByInterviewID(ctx, req.InterviewID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load interview feedback")
	}
	for _, entry := range existing {
		if entry.UserID == req.UserID {
			return nil, appErrors.Clone(appErrors.ErrConflict, "The user can only add one feedback message to an interview!")
		}
	}

	feedback := &models.InterviewFeedback{
		UserID:          req.UserID,
		InterviewID:     req.InterviewID,
		FeedbackDate:    req.FeedbackDate,
		CandidateStatus: req.CandidateStatus,
		ProposedRole:    req.ProposedRole,
	}
	if err := s.feedback.Create(ctx, feedback); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist feedback")
	}

	s.logger.Info("interview feedback recorded",
		zap.String("interview_id", req.InterviewID),
		zap.String("user_id", req.UserID))
	return feedback, nil
}

// resolveCandidate confirms the candidate exists, eagerly raising not-found.
func (s *InterviewService) resolveCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	candidate, err := s.candidates.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Candidate with id: %s not found.", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate")
	}
	return candidate, nil
}

// resolvePanel resolves the requested panel through the user directory and
// raises not-found naming any missing ids.
func (s *InterviewService) resolvePanel(ctx context.Context, userIDs []string) ([]models.User, error) {
	if len(userIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "User id list is empty")
	}

	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve panel users")
	}

	if len(users) != len(userIDs) {
		resolved := make(map[string]struct{}, len(users))
		for _, u := range users {
			resolved[u.ID] = struct{}{}
		}
		var missing []string
		for _, id := range userIDs {
			if _, ok := resolved[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Users with ids: %v do not exist", missing))
		}
	}

	return users, nil
}

// validateComposition tallies panel members by role and checks the tally
// against the quota policy for the interview type. Extra members of
// unrelated roles are tolerated.
func (s *InterviewService) validateComposition(panel []models.User, interviewType models.InterviewType) error {
	counts := make(map[models.Role]int, len(panel))
	for _, user := range panel {
		counts[user.Role]++
	}

	if interviewType.RequiresHRPanel() {
		if n := counts[models.RoleHRRepresentative]; n < s.policy.MinHRRecruiters {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("The minimum number of HR recruiters is: %d, current number is: %d", s.policy.MinHRRecruiters, n))
		}
		if n := counts[models.RolePTE]; n < s.policy.MinPTEGuests {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("The minimum number of PTE guests is: %d, current number is: %d", s.policy.MinPTEGuests, n))
		}
	}
	if interviewType.RequiresTechnicalPanel() {
		if n := counts[models.RoleTechnicalInterviewer]; n < s.policy.MinTechnicalInterviewers {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("The minimum number of technical interviewers is: %d, current number is: %d", s.policy.MinTechnicalInterviewers, n))
		}
	}
	return nil
}

// validateNoOverlap checks time ordering and per-user booking exclusivity.
// The first violation found wins; excludeID lets an update skip the
// interview's own booking.
func (s *InterviewService) validateNoOverlap(ctx context.Context, start, end time.Time, userIDs []string, excludeID string) error {
	if !start.Before(end) {
		return appErrors.Clone(appErrors.ErrValidation, "Start date must be before end date.")
	}

	for _, userID := range userIDs {
		overlapping, err := s.interviews.FindOverlapping(ctx, userID, start, end)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check interview overlaps")
		}
		for _, other := range overlapping {
			if other.ID != excludeID {
				s.recordConflict()
				return appErrors.Clone(appErrors.ErrValidation,
					fmt.Sprintf("User with id %s has an interview in the same date.", userID))
			}
		}
	}
	return nil
}

func buildProjection(interview *models.Interview, panel []string, users []models.User) *models.InterviewProjection {
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	names := make([]string, 0, len(panel))
	for _, id := range panel {
		if u, ok := byID[id]; ok {
			names = append(names, u.DisplayName())
		}
	}
	return &models.InterviewProjection{
		ID:                  interview.ID,
		StartDate:           interview.StartDate,
		EndDate:             interview.EndDate,
		CandidateID:         interview.CandidateID,
		AppliedDepartmentID: interview.AppliedDepartmentID,
		InterviewType:       interview.InterviewType,
		PanelNames:          names,
	}
}

func (s *InterviewService) recordCacheLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(hit)
	}
}

func (s *InterviewService) recordConflict() {
	if s.metrics != nil {
		s.metrics.RecordScheduleConflict()
	}
}

func interviewCacheKey(id string) string {
	return "interview:" + id
}
