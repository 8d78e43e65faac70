package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hireline/recruitment-api/internal/models"
	appErrors "github.com/hireline/recruitment-api/pkg/errors"
	"github.com/hireline/recruitment-api/pkg/export"
)

const exportTimeLayout = "2006-01-02 15:04"

type exportInterviewSource interface {
	List(ctx context.Context) ([]models.Interview, error)
	PanelUserIDs(ctx context.Context, interviewID string) ([]string, error)
}

type exportCandidateSource interface {
	List(ctx context.Context) ([]models.Candidate, error)
}

type datasetExporter interface {
	Render(data export.Dataset) ([]byte, error)
}

type titledDatasetExporter interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders interview schedules and candidate rosters as CSV or
// PDF downloads.
type ExportService struct {
	interviews exportInterviewSource
	candidates exportCandidateSource
	users      panelUserDirectory
	csv        datasetExporter
	pdf        titledDatasetExporter
	logger     *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(interviews exportInterviewSource, candidates exportCandidateSource, users panelUserDirectory, csv datasetExporter, pdf titledDatasetExporter, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{interviews: interviews, candidates: candidates, users: users, csv: csv, pdf: pdf, logger: logger}
}

// InterviewsCSV renders the full interview schedule as CSV bytes.
func (s *ExportService) InterviewsCSV(ctx context.Context) ([]byte, error) {
	data, err := s.interviewDataset(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render interview csv")
	}
	return out, nil
}

// InterviewsPDF renders the full interview schedule as a PDF document.
func (s *ExportService) InterviewsPDF(ctx context.Context) ([]byte, error) {
	data, err := s.interviewDataset(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.pdf.Render(data, "Interview Schedule")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render interview pdf")
	}
	return out, nil
}

// CandidatesCSV renders the candidate roster as CSV bytes.
func (s *ExportService) CandidatesCSV(ctx context.Context) ([]byte, error) {
	data, err := s.candidateDataset(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render candidate csv")
	}
	return out, nil
}

// CandidatesPDF renders the candidate roster as a PDF document.
func (s *ExportService) CandidatesPDF(ctx context.Context) ([]byte, error) {
	data, err := s.candidateDataset(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.pdf.Render(data, "Candidate Roster")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render candidate pdf")
	}
	return out, nil
}

func (s *ExportService) interviewDataset(ctx context.Context) (export.Dataset, error) {
	interviews, err := s.interviews.List(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list interviews")
	}

	data := export.Dataset{
		Headers: []string{"ID", "Start Date", "End Date", "Candidate ID", "Department", "Type", "Panel"},
		Rows:    make([]map[string]string, 0, len(interviews)),
	}
	for _, interview := range interviews {
		panelIDs, err := s.interviews.PanelUserIDs(ctx, interview.ID)
		if err != nil {
			return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load interview panel")
		}
		data.Rows = append(data.Rows, map[string]string{
			"ID":           interview.ID,
			"Start Date":   interview.StartDate.UTC().Format(exportTimeLayout),
			"End Date":     interview.EndDate.UTC().Format(exportTimeLayout),
			"Candidate ID": interview.CandidateID,
			"Department":   strconv.Itoa(interview.AppliedDepartmentID),
			"Type":         string(interview.InterviewType),
			"Panel":        strings.Join(s.panelNames(ctx, panelIDs), "; "),
		})
	}
	return data, nil
}

func (s *ExportService) candidateDataset(ctx context.Context) (export.Dataset, error) {
	candidates, err := s.candidates.List(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list candidates")
	}

	data := export.Dataset{
		Headers: []string{"ID", "Name", "Email", "Country", "Account Status", "Hired Status", "Last Login"},
		Rows:    make([]map[string]string, 0, len(candidates)),
	}
	for _, candidate := range candidates {
		lastLogin := ""
		if !candidate.LastLoginDate.IsZero() {
			lastLogin = candidate.LastLoginDate.UTC().Format(time.RFC3339)
		}
		data.Rows = append(data.Rows, map[string]string{
			"ID":             candidate.ID,
			"Name":           candidate.FirstName + " " + candidate.LastName,
			"Email":          candidate.Email,
			"Country":        candidate.Country,
			"Account Status": string(candidate.AccountStatus),
			"Hired Status":   string(candidate.HiredStatus),
			"Last Login":     lastLogin,
		})
	}
	return data, nil
}

// panelNames resolves panel member ids to display names, keeping the stored
// panel order. Lookup failures degrade to the raw ids so exports still render.
func (s *ExportService) panelNames(ctx context.Context, ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to resolve panel names for export", zap.Error(err))
		return ids
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			names = append(names, u.DisplayName())
		} else {
			names = append(names, id)
		}
	}
	return names
}
