package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireline/recruitment-api/internal/models"
	"github.com/hireline/recruitment-api/internal/service"
	appErrors "github.com/hireline/recruitment-api/pkg/errors"
)

type interviewServiceMock struct {
	scheduleResp *models.InterviewProjection
	scheduleErr  error
	getResp      *models.InterviewProjection
	getErr       error
	updateResp   *models.InterviewProjection
	updateErr    error
	deleteErr    error
	feedbackResp *models.InterviewFeedback
	feedbackErr  error

	lastScheduleReq service.ScheduleInterviewRequest
	lastFeedbackReq service.SubmitFeedbackRequest
	lastID          string

	scheduleCalled bool
	getCalled      bool
	deleteCalled   bool
	feedbackCalled bool
}

func (m *interviewServiceMock) Schedule(ctx context.Context, req service.ScheduleInterviewRequest) (*models.InterviewProjection, error) {
	m.scheduleCalled = true
	m.lastScheduleReq = req
	return m.scheduleResp, m.scheduleErr
}

func (m *interviewServiceMock) Get(ctx context.Context, id string) (*models.InterviewProjection, error) {
	m.getCalled = true
	m.lastID = id
	return m.getResp, m.getErr
}

func (m *interviewServiceMock) Update(ctx context.Context, id string, req service.UpdateInterviewRequest) (*models.InterviewProjection, error) {
	m.lastID = id
	return m.updateResp, m.updateErr
}

func (m *interviewServiceMock) Delete(ctx context.Context, id string) error {
	m.deleteCalled = true
	m.lastID = id
	return m.deleteErr
}

func (m *interviewServiceMock) SubmitFeedback(ctx context.Context, req service.SubmitFeedbackRequest) (*models.InterviewFeedback, error) {
	m.feedbackCalled = true
	m.lastFeedbackReq = req
	return m.feedbackResp, m.feedbackErr
}

func TestInterviewHandlerSchedule(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &interviewServiceMock{
		scheduleResp: &models.InterviewProjection{ID: "int-1"},
	}
	handler := NewInterviewHandler(mockSvc)

	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	payload, _ := json.Marshal(service.ScheduleInterviewRequest{
		CandidateID:         "cand-1",
		StartDate:           start,
		EndDate:             start.Add(time.Hour),
		AppliedDepartmentID: 2,
		InterviewType:       models.InterviewTechnical,
		UserIDs:             []string{"tech-1", "tech-2"},
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/interviews", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Schedule(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mockSvc.scheduleCalled)
	assert.Equal(t, "cand-1", mockSvc.lastScheduleReq.CandidateID)
	assert.Equal(t, []string{"tech-1", "tech-2"}, mockSvc.lastScheduleReq.UserIDs)
}

func TestInterviewHandlerScheduleInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &interviewServiceMock{}
	handler := NewInterviewHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/interviews", bytes.NewBufferString(`{"candidate_id":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Schedule(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.scheduleCalled)
}

func TestInterviewHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &interviewServiceMock{
		getErr: appErrors.New(appErrors.ErrNotFound.Code, http.StatusNotFound, "Interview with id: ghost not found."),
	}
	handler := NewInterviewHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/interviews/ghost", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ghost", mockSvc.lastID)
}

func TestInterviewHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &interviewServiceMock{}
	handler := NewInterviewHandler(mockSvc)

	// A status-only response is flushed by the router, so serve through an
	// engine instead of invoking the handler on a bare test context.
	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)
	r.DELETE("/interviews/:id", handler.Delete)
	req, _ := http.NewRequest(http.MethodDelete, "/interviews/int-1", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, mockSvc.deleteCalled)
	assert.Equal(t, "int-1", mockSvc.lastID)
}

func TestInterviewHandlerSubmitFeedbackConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &interviewServiceMock{
		feedbackErr: appErrors.New(appErrors.ErrConflict.Code, http.StatusConflict, "The user can only add one feedback message to an interview!"),
	}
	handler := NewInterviewHandler(mockSvc)

	payload, _ := json.Marshal(service.SubmitFeedbackRequest{
		UserID:          "tech-1",
		InterviewID:     "int-1",
		FeedbackDate:    time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		CandidateStatus: models.CandidateAccepted,
		ProposedRole:    "Backend Engineer",
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/interviews/feedback", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.SubmitFeedback(c)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.True(t, mockSvc.feedbackCalled)
	assert.Equal(t, "tech-1", mockSvc.lastFeedbackReq.UserID)
}
