package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hireline/recruitment-api/internal/service"
	"github.com/hireline/recruitment-api/pkg/response"
)

// ExportHandler exposes roster export endpoints.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// InterviewsCSV godoc
// @Summary Export the interview schedule as CSV
// @Tags Exports
// @Produce text/csv
// @Success 200 {file} binary
// @Router /exports/interviews.csv [get]
func (h *ExportHandler) InterviewsCSV(c *gin.Context) {
	out, err := h.exports.InterviewsCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, out, "text/csv", "interviews", "csv")
}

// InterviewsPDF godoc
// @Summary Export the interview schedule as PDF
// @Tags Exports
// @Produce application/pdf
// @Success 200 {file} binary
// @Router /exports/interviews.pdf [get]
func (h *ExportHandler) InterviewsPDF(c *gin.Context) {
	out, err := h.exports.InterviewsPDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, out, "application/pdf", "interviews", "pdf")
}

// CandidatesCSV godoc
// @Summary Export the candidate roster as CSV
// @Tags Exports
// @Produce text/csv
// @Success 200 {file} binary
// @Router /exports/candidates.csv [get]
func (h *ExportHandler) CandidatesCSV(c *gin.Context) {
	out, err := h.exports.CandidatesCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, out, "text/csv", "candidates", "csv")
}

// CandidatesPDF godoc
// @Summary Export the candidate roster as PDF
// @Tags Exports
// @Produce application/pdf
// @Success 200 {file} binary
// @Router /exports/candidates.pdf [get]
func (h *ExportHandler) CandidatesPDF(c *gin.Context) {
	out, err := h.exports.CandidatesPDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, out, "application/pdf", "candidates", "pdf")
}

func serveDownload(c *gin.Context, payload []byte, contentType, name, ext string) {
	filename := fmt.Sprintf("%s-%s.%s", name, time.Now().UTC().Format("20060102-150405"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
