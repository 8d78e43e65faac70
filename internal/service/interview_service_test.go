package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hireline/recruitment-api/internal/models"
	"github.com/hireline/recruitment-api/internal/repository"
	"github.com/hireline/recruitment-api/pkg/config"
	appErrors "github.com/hireline/recruitment-api/pkg/errors"
)

type mockInterviewRepo struct {
	interviews  map[string]*models.Interview
	panels      map[string][]string
	overlaps    map[string][]models.Interview
	createErr   error
	updateErr   error
	createCalls int
	updateCalls int
	deleteCalls int
}

func newMockInterviewRepo() *mockInterviewRepo {
	return &mockInterviewRepo{
		interviews: make(map[string]*models.Interview),
		panels:     make(map[string][]string),
		overlaps:   make(map[string][]models.Interview),
	}
}

func (m *mockInterviewRepo) FindByID(_ context.Context, id string) (*models.Interview, error) {
	interview, ok := m.interviews[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *interview
	return &copied, nil
}

func (m *mockInterviewRepo) PanelUserIDs(_ context.Context, interviewID string) ([]string, error) {
	return m.panels[interviewID], nil
}

func (m *mockInterviewRepo) FindOverlapping(_ context.Context, userID string, _, _ time.Time) ([]models.Interview, error) {
	return m.overlaps[userID], nil
}

func (m *mockInterviewRepo) Create(_ context.Context, interview *models.Interview, panel []string) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	if interview.ID == "" {
		interview.ID = "generated-id"
	}
	stored := *interview
	m.interviews[interview.ID] = &stored
	m.panels[interview.ID] = panel
	return nil
}

func (m *mockInterviewRepo) Update(_ context.Context, interview *models.Interview, panel []string) error {
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	stored := *interview
	m.interviews[interview.ID] = &stored
	m.panels[interview.ID] = panel
	return nil
}

func (m *mockInterviewRepo) Delete(_ context.Context, id string) error {
	m.deleteCalls++
	delete(m.interviews, id)
	delete(m.panels, id)
	return nil
}

type mockFeedbackRepo struct {
	entries     []models.InterviewFeedback
	createCalls int
}

func (m *mockFeedbackRepo) ListByInterviewID(_ context.Context, interviewID string) ([]models.InterviewFeedback, error) {
	var out []models.InterviewFeedback
	for _, e := range m.entries {
		if e.InterviewID == interviewID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockFeedbackRepo) Create(_ context.Context, feedback *models.InterviewFeedback) error {
	m.createCalls++
	feedback.ID = "feedback-id"
	m.entries = append(m.entries, *feedback)
	return nil
}

type mockUserDirectory struct {
	users map[string]models.User
}

func (m *mockUserDirectory) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (m *mockUserDirectory) FindByIDs(_ context.Context, ids []string) ([]models.User, error) {
	var out []models.User
	seen := make(map[string]struct{})
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type mockCandidateDirectory struct {
	candidates map[string]models.Candidate
}

func (m *mockCandidateDirectory) FindByID(_ context.Context, id string) (*models.Candidate, error) {
	c, ok := m.candidates[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

type stubProjectionCache struct {
	store   map[string][]byte
	deleted []string
}

func (s *stubProjectionCache) Get(_ context.Context, key string, dest interface{}) error {
	if s.store == nil {
		return appErrors.ErrCacheMiss
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubProjectionCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubProjectionCache) Delete(_ context.Context, key string) {
	s.deleted = append(s.deleted, key)
	delete(s.store, key)
}

func defaultPolicy() config.SchedulingConfig {
	return config.SchedulingConfig{
		MinHRRecruiters:          2,
		MinPTEGuests:             1,
		MinTechnicalInterviewers: 2,
		MaxDepartmentID:          5,
		CacheTTL:                 time.Minute,
	}
}

func panelUser(id string, role models.Role) models.User {
	return models.User{ID: id, Role: role, FirstName: "First" + id, LastName: "Last" + id, Active: true}
}

// fullPanelUsers satisfies both the HR and technical quotas.
func fullPanelUsers() map[string]models.User {
	return map[string]models.User{
		"hr-1":   panelUser("hr-1", models.RoleHRRepresentative),
		"hr-2":   panelUser("hr-2", models.RoleHRRepresentative),
		"pte-1":  panelUser("pte-1", models.RolePTE),
		"tech-1": panelUser("tech-1", models.RoleTechnicalInterviewer),
		"tech-2": panelUser("tech-2", models.RoleTechnicalInterviewer),
	}
}

func newTestInterviewService(repo *mockInterviewRepo, feedback *mockFeedbackRepo, users map[string]models.User) (*InterviewService, *stubProjectionCache) {
	if repo == nil {
		repo = newMockInterviewRepo()
	}
	if feedback == nil {
		feedback = &mockFeedbackRepo{}
	}
	cacheStub := &stubProjectionCache{}
	svc := NewInterviewService(
		repo,
		feedback,
		&mockUserDirectory{users: users},
		&mockCandidateDirectory{candidates: map[string]models.Candidate{
			"cand-1": {ID: "cand-1", FirstName: "Ada", LastName: "Lovelace"},
		}},
		cacheStub,
		nil,
		defaultPolicy(),
		nil,
		zap.NewNop(),
	)
	return svc, cacheStub
}

func scheduleRequest(userIDs ...string) ScheduleInterviewRequest {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return ScheduleInterviewRequest{
		CandidateID:         "cand-1",
		StartDate:           start,
		EndDate:             start.Add(time.Hour),
		AppliedDepartmentID: 2,
		InterviewType:       models.InterviewHRAndTechnical,
		UserIDs:             userIDs,
	}
}

func assertAppError(t *testing.T, err error, kind *appErrors.Error, message string) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, kind.Code, appErr.Code)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

func TestScheduleFullPanelSucceeds(t *testing.T) {
	repo := newMockInterviewRepo()
	svc, _ := newTestInterviewService(repo, nil, fullPanelUsers())

	projection, err := svc.Schedule(context.Background(), scheduleRequest("hr-1", "hr-2", "pte-1", "tech-1", "tech-2"))
	require.NoError(t, err)
	assert.Equal(t, 1, repo.createCalls)
	assert.Equal(t, "cand-1", projection.CandidateID)
	assert.Equal(t, []string{
		"Firsthr-1 Lasthr-1", "Firsthr-2 Lasthr-2", "Firstpte-1 Lastpte-1",
		"Firsttech-1 Lasttech-1", "Firsttech-2 Lasttech-2",
	}, projection.PanelNames)
}

func TestScheduleRejectsMissingCandidate(t *testing.T) {
	repo := newMockInterviewRepo()
	svc, _ := newTestInterviewService(repo, nil, fullPanelUsers())

	req := scheduleRequest("hr-1", "hr-2", "pte-1", "tech-1", "tech-2")
	req.CandidateID = "ghost"
	_, err := svc.Schedule(context.Background(), req)
	assertAppError(t, err, appErrors.ErrNotFound, "Candidate with id: ghost not found.")
	assert.Equal(t, 0, repo.createCalls)
}

func TestScheduleRejectsEmptyPanel(t *testing.T) {
	svc, _ := newTestInterviewService(nil, nil, fullPanelUsers())

	req := scheduleRequest()
	_, err := svc.Schedule(context.Background(), req)
	assertAppError(t, err, appErrors.ErrNotFound, "User id list is empty")
}

func TestScheduleRejectsUnknownPanelMembers(t *testing.T) {
	svc, _ := newTestInterviewService(nil, nil, fullPanelUsers())

	_, err := svc.Schedule(context.Background(), scheduleRequest("hr-1", "ghost-1", "ghost-2"))
	assertAppError(t, err, appErrors.ErrNotFound, "Users with ids: [ghost-1 ghost-2] do not exist")
}

func TestScheduleQuotaEnforcement(t *testing.T) {
	cases := []struct {
		name          string
		interviewType models.InterviewType
		panel         []string
		wantMessage   string
	}{
		{
			name:          "hr interview short one recruiter",
			interviewType: models.InterviewHR,
			panel:         []string{"hr-1", "pte-1"},
			wantMessage:   "The minimum number of HR recruiters is: 2, current number is: 1",
		},
		{
			name:          "hr interview missing pte guest",
			interviewType: models.InterviewHR,
			panel:         []string{"hr-1", "hr-2"},
			wantMessage:   "The minimum number of PTE guests is: 1, current number is: 0",
		},
		{
			name:          "technical interview short one interviewer",
			interviewType: models.InterviewTechnical,
			panel:         []string{"tech-1"},
			wantMessage:   "The minimum number of technical interviewers is: 2, current number is: 1",
		},
		{
			name:          "combined interview checks hr quota first",
			interviewType: models.InterviewHRAndTechnical,
			panel:         []string{"hr-1", "pte-1", "tech-1", "tech-2"},
			wantMessage:   "The minimum number of HR recruiters is: 2, current number is: 1",
		},
		{
			name:          "combined interview checks technical quota too",
			interviewType: models.InterviewHRAndTechnical,
			panel:         []string{"hr-1", "hr-2", "pte-1", "tech-1"},
			wantMessage:   "The minimum number of technical interviewers is: 2, current number is: 1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMockInterviewRepo()
			svc, _ := newTestInterviewService(repo, nil, fullPanelUsers())

			req := scheduleRequest(tc.panel...)
			req.InterviewType = tc.interviewType
			_, err := svc.Schedule(context.Background(), req)
			assertAppError(t, err, appErrors.ErrValidation, tc.wantMessage)
			assert.Equal(t, 0, repo.createCalls)
		})
	}
}

func TestScheduleQuotaSatisfiedPerType(t *testing.T) {
	cases := []struct {
		name          string
		interviewType models.InterviewType
		panel         []string
	}{
		{"hr interview ignores technical quota", models.InterviewHR, []string{"hr-1", "hr-2", "pte-1"}},
		{"technical interview ignores hr quota", models.InterviewTechnical, []string{"tech-1", "tech-2"}},
		{"extra members of unrelated roles are tolerated", models.InterviewTechnical, []string{"tech-1", "tech-2", "hr-1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMockInterviewRepo()
			svc, _ := newTestInterviewService(repo, nil, fullPanelUsers())

			req := scheduleRequest(tc.panel...)
			req.InterviewType = tc.interviewType
			_, err := svc.Schedule(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, 1, repo.createCalls)
		})
	}
}

func TestScheduleRejectsUnknownInterviewType(t *testing.T) {
	svc, _ := newTestInterviewService(nil, nil, fullPanelUsers())

	req := scheduleRequest("hr-1", "hr-2", "pte-1", "tech-1", "tech-2")
	req.InterviewType = "COFFEE_CHAT"
	_, err := svc.Schedule(context.Background(), req)
	assertAppError(t, err, appErrors.ErrValidation, "Unknown interview type: COFFEE_CHAT")
}

func TestScheduleRejectsInvertedDates(t *testing.T) {
	svc, _ := newTestInterviewService(nil, nil, fullPanelUsers())

	req := scheduleRequest("hr-1", "hr-2", "pte-1", "tech-1", "tech-2")
	req.StartDate, req.EndDate = req.EndDate, req.StartDate
	_, err := svc.Schedule(context.Background(), req)
	assertAppError(t, err, appErrors.ErrValidation, "Start date must be before end date.")
}

func TestScheduleRejectsEqualDates(t *testing.T) {
	svc, _ := newTestInterviewService(nil, nil, fullPanelUsers())

	req := scheduleRequest("hr-1", "hr-2", "pte-1", "tech-1", "tech-2")
	req.EndDate = req.StartDate
	_, err := svc.Schedule(context.Background(), req)
	assertAppError(t, err, appErrors.ErrValidation, "Start date must be before end date.")
}

func TestScheduleRejectsOverlapNamingUser(t *testing.T) {
	repo := newMockInterviewRepo()
	repo.overlaps["tech-1"] = []models.Interview{{ID: "other-interview"}}
	svc, _ := newTestInterviewService(repo, nil, fullPanelUsers())

	_, err := svc.Schedule(context.Background(), scheduleRequest("hr-1", "hr-2", "pte-1", "tech-1", "tech-2"))
	assertAppError(t, err, appErrors.ErrValidation, "User with id tech-1 has an interview in the same date.")
	assert.Equal(t, 0, repo.createCalls)
}

func TestScheduleMapsLateTransactionConflict(t *testing.T) {
	repo := newMockInterviewRepo()
	repo.createErr = repository.ErrScheduleConflict
	svc, _ := newTestInterviewService(repo, nil, fullPanelUsers())

	_, err := svc.Schedule(context.Background(), scheduleRequest("hr-1", "hr-2", "pte-1", "tech-1", "tech-2"))
	assertAppError(t, err, appErrors.ErrValidation, "A panel member has an interview in the same date.")
}

func TestGetReturnsProjectionAndCaches(t *testing.T) {
	repo := newMockInterviewRepo()
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	repo.interviews["int-1"] = &models.Interview{
		ID: "int-1", StartDate: start, EndDate: start.Add(time.Hour),
		CandidateID: "cand-1", AppliedDepartmentID: 2, InterviewType: models.InterviewTechnical,
	}
	repo.panels["int-1"] = []string{"tech-2", "tech-1"}
	svc, cacheStub := newTestInterviewService(repo, nil, fullPanelUsers())

	projection, err := svc.Get(context.Background(), "int-1")
	require.NoError(t, err)
	// Panel order from storage is preserved in the projection.
	assert.Equal(t, []string{"Firsttech-2 Lasttech-2", "Firsttech-1 Lasttech-1"}, projection.PanelNames)
	assert.Contains(t, cacheStub.store, "interview:int-1")

	// Second read is served from cache without touching the repository.
	delete(repo.interviews, "int-1")
	cached, err := svc.Get(context.Background(), "int-1")
	require.NoError(t, err)
	assert.Equal(t, projection.PanelNames, cached.PanelNames)
}

func TestGetUnknownInterview(t *testing.T) {
	svc, _ := newTestInterviewService(nil, nil, fullPanelUsers())

	_, err := svc.Get(context.Background(), "ghost")
	assertAppError(t, err, appErrors.ErrNotFound, "Interview with id: ghost not found.")
}

func seedInterview(repo *mockInterviewRepo) *models.Interview {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	interview := &models.Interview{
		ID: "int-1", StartDate: start, EndDate: start.Add(time.Hour),
		CandidateID: "cand-1", AppliedDepartmentID: 2, InterviewType: models.InterviewHRAndTechnical,
	}
	repo.interviews["int-1"] = interview
	repo.panels["int-1"] = []string{"hr-1", "hr-2", "pte-1", "tech-1", "tech-2"}
	return interview
}

func TestUpdateUnknownInterview(t *testing.T) {
	svc, _ := newTestInterviewService(nil, nil, fullPanelUsers())

	_, err := svc.Update(context.Background(), "ghost", UpdateInterviewRequest{})
	assertAppError(t, err, appErrors.ErrNotFound, "Interview with interviewId: ghost not found.")
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	repo := newMockInterviewRepo()
	seedInterview(repo)
	svc, cacheStub := newTestInterviewService(repo, nil, fullPanelUsers())

	newStart := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)
	newEnd := newStart.Add(2 * time.Hour)
	projection, err := svc.Update(context.Background(), "int-1", UpdateInterviewRequest{
		StartDate: &newStart,
		EndDate:   &newEnd,
	})
	require.NoError(t, err)
	assert.Equal(t, newStart, projection.StartDate)
	assert.Equal(t, newEnd, projection.EndDate)
	assert.Equal(t, "cand-1", projection.CandidateID)
	assert.Equal(t, 1, repo.updateCalls)
	assert.Contains(t, cacheStub.deleted, "interview:int-1")
}

func TestUpdateDepartmentBoundSilentlySkips(t *testing.T) {
	repo := newMockInterviewRepo()
	seedInterview(repo)
	svc, _ := newTestInterviewService(repo, nil, fullPanelUsers())

	tooHigh := 7
	projection, err := svc.Update(context.Background(), "int-1", UpdateInterviewRequest{AppliedDepartmentID: &tooHigh})
	require.NoError(t, err)
	assert.Equal(t, 2, projection.AppliedDepartmentID)

	allowed := 4
	projection, err = svc.Update(context.Background(), "int-1", UpdateInterviewRequest{AppliedDepartmentID: &allowed})
	require.NoError(t, err)
	assert.Equal(t, 4, projection.AppliedDepartmentID)
}

func TestUpdateSelfOverlapIsIgnored(t *testing.T) {
	repo := newMockInterviewRepo()
	interview := seedInterview(repo)
	// Every panel member "overlaps" with the interview's own booking.
	for _, id := range repo.panels["int-1"] {
		repo.overlaps[id] = []models.Interview{{ID: interview.ID}}
	}
	svc, _ := newTestInterviewService(repo, nil, fullPanelUsers())

	newStart := interview.StartDate.Add(15 * time.Minute)
	newEnd := interview.EndDate.Add(15 * time.Minute)
	_, err := svc.Update(context.Background(), "int-1", UpdateInterviewRequest{StartDate: &newStart, EndDate: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.updateCalls)
}

func TestUpdateForeignOverlapRejected(t *testing.T) {
	repo := newMockInterviewRepo()
	seedInterview(repo)
	repo.overlaps["hr-2"] = []models.Interview{{ID: "another-interview"}}
	svc, _ := newTestInterviewService(repo, nil, fullPanelUsers())

	newStart := time.Date(2026, 9, 3, 9, 0, 0, 0, time.UTC)
	newEnd := newStart.Add(time.Hour)
	_, err := svc.Update(context.Background(), "int-1", UpdateInterviewRequest{StartDate: &newStart, EndDate: &newEnd})
	assertAppError(t, err, appErrors.ErrValidation, "User with id hr-2 has an interview in the same date.")
	assert.Equal(t, 0, repo.updateCalls)
}

func TestUpdatePanelRevalidatesComposition(t *testing.T) {
	repo := newMockInterviewRepo()
	seedInterview(repo)
	svc, _ := newTestInterviewService(repo, nil, fullPanelUsers())

	_, err := svc.Update(context.Background(), "int-1", UpdateInterviewRequest{
		UserIDs: []string{"hr-1", "pte-1", "tech-1", "tech-2"},
	})
	assertAppError(t, err, appErrors.ErrValidation, "The minimum number of HR recruiters is: 2, current number is: 1")
}

func TestUpdateUnchangedDatesSkipOverlapCheck(t *testing.T) {
	repo := newMockInterviewRepo()
	seedInterview(repo)
	// A pending overlap that would fail the check if it ran.
	repo.overlaps["hr-1"] = []models.Interview{{ID: "another-interview"}}
	svc, _ := newTestInterviewService(repo, nil, fullPanelUsers())

	candidateID := "cand-1"
	_, err := svc.Update(context.Background(), "int-1", UpdateInterviewRequest{CandidateID: &candidateID})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.updateCalls)
}

func TestDeleteUnknownInterview(t *testing.T) {
	svc, _ := newTestInterviewService(nil, nil, fullPanelUsers())

	err := svc.Delete(context.Background(), "ghost")
	assertAppError(t, err, appErrors.ErrNotFound, "The interview desired to be deleted do not exist")
}

func TestDeleteRemovesInterviewAndInvalidatesCache(t *testing.T) {
	repo := newMockInterviewRepo()
	seedInterview(repo)
	svc, cacheStub := newTestInterviewService(repo, nil, fullPanelUsers())

	require.NoError(t, svc.Delete(context.Background(), "int-1"))
	assert.Equal(t, 1, repo.deleteCalls)
	assert.Contains(t, cacheStub.deleted, "interview:int-1")
}

func feedbackRequest(interviewEnd time.Time) SubmitFeedbackRequest {
	return SubmitFeedbackRequest{
		UserID:          "tech-1",
		InterviewID:     "int-1",
		FeedbackDate:    interviewEnd.Add(time.Hour),
		CandidateStatus: models.CandidateAccepted,
		ProposedRole:    "Backend Engineer",
	}
}

func TestSubmitFeedbackHappyPath(t *testing.T) {
	repo := newMockInterviewRepo()
	interview := seedInterview(repo)
	feedbackRepo := &mockFeedbackRepo{}
	svc, _ := newTestInterviewService(repo, feedbackRepo, fullPanelUsers())

	feedback, err := svc.SubmitFeedback(context.Background(), feedbackRequest(interview.EndDate))
	require.NoError(t, err)
	assert.Equal(t, 1, feedbackRepo.createCalls)
	assert.Equal(t, models.CandidateAccepted, feedback.CandidateStatus)
	assert.Equal(t, "tech-1", feedback.UserID)
}

func TestSubmitFeedbackUnknownUserCheckedBeforeRole(t *testing.T) {
	repo := newMockInterviewRepo()
	interview := seedInterview(repo)
	svc, _ := newTestInterviewService(repo, nil, fullPanelUsers())

	req := feedbackRequest(interview.EndDate)
	req.UserID = "ghost"
	_, err := svc.SubmitFeedback(context.Background(), req)
	assertAppError(t, err, appErrors.ErrNotFound, "User not found!")
}

func TestSubmitFeedbackRejectsNonTechnicalRole(t *testing.T) {
	repo := newMockInterviewRepo()
	interview := seedInterview(repo)
	svc, _ := newTestInterviewService(repo, nil, fullPanelUsers())

	req := feedbackRequest(interview.EndDate)
	req.UserID = "hr-1"
	_, err := svc.SubmitFeedback(context.Background(), req)
	assertAppError(t, err, appErrors.ErrValidation, "The user is not a technical interviewer!")
}

func TestSubmitFeedbackUnknownInterview(t *testing.T) {
	svc, _ := newTestInterviewService(nil, nil, fullPanelUsers())

	req := feedbackRequest(time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC))
	_, err := svc.SubmitFeedback(context.Background(), req)
	assertAppError(t, err, appErrors.ErrNotFound, "The interview does not exist!")
}

func TestSubmitFeedbackRejectsEarlyFeedback(t *testing.T) {
	repo := newMockInterviewRepo()
	interview := seedInterview(repo)
	svc, _ := newTestInterviewService(repo, nil, fullPanelUsers())

	req := feedbackRequest(interview.EndDate)
	req.FeedbackDate = interview.EndDate.Add(-time.Minute)
	_, err := svc.SubmitFeedback(context.Background(), req)
	assertAppError(t, err, appErrors.ErrValidation, "The interview feedback was written before the interview was done!")
}

func TestSubmitFeedbackRejectsFeedbackAtInterviewEnd(t *testing.T) {
	repo := newMockInterviewRepo()
	interview := seedInterview(repo)
	svc, _ := newTestInterviewService(repo, nil, fullPanelUsers())

	req := feedbackRequest(interview.EndDate)
	req.FeedbackDate = interview.EndDate
	_, err := svc.SubmitFeedback(context.Background(), req)
	assertAppError(t, err, appErrors.ErrValidation, "The interview feedback was written before the interview was done!")
}

func TestSubmitFeedbackRejectsDuplicate(t *testing.T) {
	repo := newMockInterviewRepo()
	interview := seedInterview(repo)
	feedbackRepo := &mockFeedbackRepo{}
	svc, _ := newTestInterviewService(repo, feedbackRepo, fullPanelUsers())

	req := feedbackRequest(interview.EndDate)
	_, err := svc.SubmitFeedback(context.Background(), req)
	require.NoError(t, err)

	req.CandidateStatus = models.CandidateNotAccepted
	_, err = svc.SubmitFeedback(context.Background(), req)
	assertAppError(t, err, appErrors.ErrConflict, "The user can only add one feedback message to an interview!")
	assert.Equal(t, 1, feedbackRepo.createCalls)
}

func TestSubmitFeedbackAllowsSecondInterviewer(t *testing.T) {
	repo := newMockInterviewRepo()
	interview := seedInterview(repo)
	feedbackRepo := &mockFeedbackRepo{}
	svc, _ := newTestInterviewService(repo, feedbackRepo, fullPanelUsers())

	first := feedbackRequest(interview.EndDate)
	_, err := svc.SubmitFeedback(context.Background(), first)
	require.NoError(t, err)

	second := feedbackRequest(interview.EndDate)
	second.UserID = "tech-2"
	second.CandidateStatus = models.CandidateNotAccepted
	_, err = svc.SubmitFeedback(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, 2, feedbackRepo.createCalls)
}

type mockSchedulingMetrics struct {
	cacheHits   int
	cacheMisses int
	conflicts   int
}

func (m *mockSchedulingMetrics) RecordCacheLookup(hit bool) {
	if hit {
		m.cacheHits++
	} else {
		m.cacheMisses++
	}
}

func (m *mockSchedulingMetrics) RecordScheduleConflict() { m.conflicts++ }

func newMetricsTestInterviewService(repo *mockInterviewRepo) (*InterviewService, *mockSchedulingMetrics) {
	metrics := &mockSchedulingMetrics{}
	svc := NewInterviewService(
		repo,
		&mockFeedbackRepo{},
		&mockUserDirectory{users: fullPanelUsers()},
		&mockCandidateDirectory{candidates: map[string]models.Candidate{
			"cand-1": {ID: "cand-1", FirstName: "Ada", LastName: "Lovelace"},
		}},
		&stubProjectionCache{},
		metrics,
		defaultPolicy(),
		nil,
		zap.NewNop(),
	)
	return svc, metrics
}

func TestGetRecordsCacheHitsAndMisses(t *testing.T) {
	repo := newMockInterviewRepo()
	interview := seedInterview(repo)
	svc, metrics := newMetricsTestInterviewService(repo)

	_, err := svc.Get(context.Background(), interview.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.cacheHits)
	assert.Equal(t, 1, metrics.cacheMisses)

	_, err = svc.Get(context.Background(), interview.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.cacheHits)
	assert.Equal(t, 1, metrics.cacheMisses)
}

func TestScheduleRecordsConflicts(t *testing.T) {
	repo := newMockInterviewRepo()
	start := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	repo.overlaps["tech-1"] = []models.Interview{{ID: "existing", StartDate: start, EndDate: start.Add(time.Hour)}}
	svc, metrics := newMetricsTestInterviewService(repo)

	_, err := svc.Schedule(context.Background(), scheduleRequest("hr-1", "hr-2", "pte-1", "tech-1", "tech-2"))
	assertAppError(t, err, appErrors.ErrValidation, "User with id tech-1 has an interview in the same date.")
	assert.Equal(t, 1, metrics.conflicts)

	repo.overlaps = map[string][]models.Interview{}
	repo.createErr = repository.ErrScheduleConflict
	_, err = svc.Schedule(context.Background(), scheduleRequest("hr-1", "hr-2", "pte-1", "tech-1", "tech-2"))
	assertAppError(t, err, appErrors.ErrValidation, "A panel member has an interview in the same date.")
	assert.Equal(t, 2, metrics.conflicts)
}
