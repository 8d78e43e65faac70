package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hireline/recruitment-api/internal/models"
)

// ErrScheduleConflict is returned when the in-transaction overlap re-check
// finds a competing interview that appeared after the caller's validation.
var ErrScheduleConflict = errors.New("conflicting interview exists for a panel member")

const (
	interviewColumns          = "id, start_date, end_date, candidate_id, applied_department_id, interview_type, created_at, updated_at"
	qualifiedInterviewColumns = "i.id, i.start_date, i.end_date, i.candidate_id, i.applied_department_id, i.interview_type, i.created_at, i.updated_at"
)

// InterviewRepository manages persistence for interviews and their panels.
// The panel lives in the interview_panel association table keyed by
// (interview_id, user_id) and ordered by position.
type InterviewRepository struct {
	db *sqlx.DB
}

// NewInterviewRepository constructs an InterviewRepository.
func NewInterviewRepository(db *sqlx.DB) *InterviewRepository {
	return &InterviewRepository{db: db}
}

// FindByID loads an interview by id. Returns sql.ErrNoRows when absent.
func (r *InterviewRepository) FindByID(ctx context.Context, id string) (*models.Interview, error) {
	query := fmt.Sprintf("SELECT %s FROM interviews WHERE id = $1", interviewColumns)
	var interview models.Interview
	if err := r.db.GetContext(ctx, &interview, query, id); err != nil {
		return nil, err
	}
	return &interview, nil
}

// PanelUserIDs returns the ordered panel for an interview.
func (r *InterviewRepository) PanelUserIDs(ctx context.Context, interviewID string) ([]string, error) {
	const query = `SELECT user_id FROM interview_panel WHERE interview_id = $1 ORDER BY position`
	var userIDs []string
	if err := r.db.SelectContext(ctx, &userIDs, query, interviewID); err != nil {
		return nil, fmt.Errorf("load interview panel: %w", err)
	}
	return userIDs, nil
}

// FindOverlapping returns interviews assigned to the given user whose time
// range overlaps [start, end). End-after-start-before semantics: an existing
// interview overlaps when its end is after start and its start is before end.
func (r *InterviewRepository) FindOverlapping(ctx context.Context, userID string, start, end time.Time) ([]models.Interview, error) {
	query := fmt.Sprintf(`SELECT %s FROM interviews i
JOIN interview_panel p ON p.interview_id = i.id
WHERE p.user_id = $1 AND i.end_date > $2 AND i.start_date < $3`, qualifiedInterviewColumns)
	var interviews []models.Interview
	if err := r.db.SelectContext(ctx, &interviews, query, userID, start, end); err != nil {
		return nil, fmt.Errorf("find overlapping interviews: %w", err)
	}
	return interviews, nil
}

// List returns every interview ordered by start date.
func (r *InterviewRepository) List(ctx context.Context) ([]models.Interview, error) {
	query := fmt.Sprintf("SELECT %s FROM interviews ORDER BY start_date", interviewColumns)
	var interviews []models.Interview
	if err := r.db.SelectContext(ctx, &interviews, query); err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	return interviews, nil
}

// ListByUserID returns every interview the user is assigned to.
func (r *InterviewRepository) ListByUserID(ctx context.Context, userID string) ([]models.Interview, error) {
	query := fmt.Sprintf(`SELECT %s FROM interviews i
JOIN interview_panel p ON p.interview_id = i.id
WHERE p.user_id = $1 ORDER BY i.start_date`, qualifiedInterviewColumns)
	var interviews []models.Interview
	if err := r.db.SelectContext(ctx, &interviews, query, userID); err != nil {
		return nil, fmt.Errorf("list interviews by user: %w", err)
	}
	return interviews, nil
}

// Create persists a new interview together with its panel in one transaction.
// The overlap check is repeated inside the transaction so a conflicting
// interview committed between the caller's validation and this write cannot
// slip through; such a late conflict surfaces as ErrScheduleConflict.
func (r *InterviewRepository) Create(ctx context.Context, interview *models.Interview, panel []string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin interview transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.assertNoOverlapTx(ctx, tx, panel, interview.StartDate, interview.EndDate, ""); err != nil {
		return err
	}

	if interview.ID == "" {
		interview.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	interview.CreatedAt = now
	interview.UpdatedAt = now

	const insertQuery = `INSERT INTO interviews (id, start_date, end_date, candidate_id, applied_department_id, interview_type, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err = tx.ExecContext(ctx, insertQuery,
		interview.ID, interview.StartDate, interview.EndDate, interview.CandidateID,
		interview.AppliedDepartmentID, interview.InterviewType, interview.CreatedAt, interview.UpdatedAt); err != nil {
		return fmt.Errorf("insert interview: %w", err)
	}

	if err = r.replacePanelTx(ctx, tx, interview.ID, panel, false); err != nil {
		return err
	}

	return tx.Commit()
}

// Update rewrites the interview row and its panel in one transaction, with
// the same in-transaction overlap re-check excluding the interview itself.
func (r *InterviewRepository) Update(ctx context.Context, interview *models.Interview, panel []string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin interview transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.assertNoOverlapTx(ctx, tx, panel, interview.StartDate, interview.EndDate, interview.ID); err != nil {
		return err
	}

	interview.UpdatedAt = time.Now().UTC()

	const updateQuery = `UPDATE interviews SET start_date = $1, end_date = $2, candidate_id = $3, applied_department_id = $4, interview_type = $5, updated_at = $6 WHERE id = $7`
	if _, err = tx.ExecContext(ctx, updateQuery,
		interview.StartDate, interview.EndDate, interview.CandidateID,
		interview.AppliedDepartmentID, interview.InterviewType, interview.UpdatedAt, interview.ID); err != nil {
		return fmt.Errorf("update interview: %w", err)
	}

	if err = r.replacePanelTx(ctx, tx, interview.ID, panel, true); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes the interview and its panel rows. Feedback rows are left in
// place: the interview aggregate does not own them and no cascade applies.
func (r *InterviewRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin interview transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM interview_panel WHERE interview_id = $1`, id); err != nil {
		return fmt.Errorf("delete interview panel: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM interviews WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete interview: %w", err)
	}

	return tx.Commit()
}

func (r *InterviewRepository) assertNoOverlapTx(ctx context.Context, tx *sqlx.Tx, panel []string, start, end time.Time, excludeID string) error {
	if len(panel) == 0 {
		return nil
	}

	query := `SELECT COUNT(*) FROM interviews i
JOIN interview_panel p ON p.interview_id = i.id
WHERE p.user_id IN (?) AND i.end_date > ? AND i.start_date < ?`
	args := []interface{}{panel, start, end}
	if excludeID != "" {
		query += " AND i.id <> ?"
		args = append(args, excludeID)
	}

	expanded, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return fmt.Errorf("build overlap query: %w", err)
	}

	var count int
	if err := tx.GetContext(ctx, &count, tx.Rebind(expanded), expandedArgs...); err != nil {
		return fmt.Errorf("recheck interview overlaps: %w", err)
	}
	if count > 0 {
		return ErrScheduleConflict
	}
	return nil
}

func (r *InterviewRepository) replacePanelTx(ctx context.Context, tx *sqlx.Tx, interviewID string, panel []string, clearExisting bool) error {
	if clearExisting {
		if _, err := tx.ExecContext(ctx, `DELETE FROM interview_panel WHERE interview_id = $1`, interviewID); err != nil {
			return fmt.Errorf("clear interview panel: %w", err)
		}
	}
	const insertQuery = `INSERT INTO interview_panel (interview_id, user_id, position) VALUES ($1, $2, $3)`
	for position, userID := range panel {
		if _, err := tx.ExecContext(ctx, insertQuery, interviewID, userID, position); err != nil {
			return fmt.Errorf("insert interview panel row: %w", err)
		}
	}
	return nil
}
