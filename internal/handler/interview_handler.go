package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hireline/recruitment-api/internal/models"
	"github.com/hireline/recruitment-api/internal/service"
	appErrors "github.com/hireline/recruitment-api/pkg/errors"
	"github.com/hireline/recruitment-api/pkg/response"
)

type interviewService interface {
	Schedule(ctx context.Context, req service.ScheduleInterviewRequest) (*models.InterviewProjection, error)
	Get(ctx context.Context, id string) (*models.InterviewProjection, error)
	Update(ctx context.Context, id string, req service.UpdateInterviewRequest) (*models.InterviewProjection, error)
	Delete(ctx context.Context, id string) error
	SubmitFeedback(ctx context.Context, req service.SubmitFeedbackRequest) (*models.InterviewFeedback, error)
}

// InterviewHandler exposes interview scheduling and feedback endpoints.
type InterviewHandler struct {
	interviews interviewService
}

// NewInterviewHandler constructs InterviewHandler.
func NewInterviewHandler(interviews interviewService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews}
}

// Schedule godoc
// @Summary Schedule a new interview
// @Tags Interviews
// @Accept json
// @Produce json
// @Param payload body service.ScheduleInterviewRequest true "Interview payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interviews [post]
func (h *InterviewHandler) Schedule(c *gin.Context) {
	var req service.ScheduleInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	projection, err := h.interviews.Schedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, projection)
}

// Get godoc
// @Summary Get an interview with resolved panel names
// @Tags Interviews
// @Produce json
// @Param id path string true "Interview ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interviews/{id} [get]
func (h *InterviewHandler) Get(c *gin.Context) {
	projection, err := h.interviews.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, projection, nil)
}

// Update godoc
// @Summary Update an interview
// @Tags Interviews
// @Accept json
// @Produce json
// @Param id path string true "Interview ID"
// @Param payload body service.UpdateInterviewRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interviews/{id} [put]
func (h *InterviewHandler) Update(c *gin.Context) {
	var req service.UpdateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	projection, err := h.interviews.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, projection, nil)
}

// Delete godoc
// @Summary Delete an interview
// @Tags Interviews
// @Param id path string true "Interview ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /interviews/{id} [delete]
func (h *InterviewHandler) Delete(c *gin.Context) {
	if err := h.interviews.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SubmitFeedback godoc
// @Summary Submit technical feedback for an interview
// @Tags Interviews
// @Accept json
// @Produce json
// @Param payload body service.SubmitFeedbackRequest true "Feedback payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /interviews/feedback [post]
func (h *InterviewHandler) SubmitFeedback(c *gin.Context) {
	var req service.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	feedback, err := h.interviews.SubmitFeedback(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, feedback)
}
