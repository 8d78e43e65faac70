package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hireline/recruitment-api/internal/models"
)

const candidateColumns = "id, first_name, last_name, gender, email, phone_number, country, address, username, account_status, hired_status, last_login_date, created_at, updated_at"

// searchableCandidateColumns whitelists the columns the filtered search may
// target; anything else falls back to keyword search.
var searchableCandidateColumns = map[string]bool{
	"first_name":   true,
	"last_name":    true,
	"email":        true,
	"username":     true,
	"country":      true,
	"hired_status": true,
}

// CandidateRepository manages persistence for candidates (the candidate
// directory).
type CandidateRepository struct {
	db *sqlx.DB
}

// NewCandidateRepository constructs a CandidateRepository.
func NewCandidateRepository(db *sqlx.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// List returns every candidate ordered by creation time.
func (r *CandidateRepository) List(ctx context.Context) ([]models.Candidate, error) {
	query := fmt.Sprintf("SELECT %s FROM candidates ORDER BY created_at DESC", candidateColumns)
	var candidates []models.Candidate
	if err := r.db.SelectContext(ctx, &candidates, query); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return candidates, nil
}

// FindByID fetches a candidate by ID. Returns sql.ErrNoRows when absent.
func (r *CandidateRepository) FindByID(ctx context.Context, id string) (*models.Candidate, error) {
	query := fmt.Sprintf("SELECT %s FROM candidates WHERE id = $1", candidateColumns)
	var candidate models.Candidate
	if err := r.db.GetContext(ctx, &candidate, query, id); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// ExistsByUsername reports whether a candidate already holds the username.
func (r *CandidateRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM candidates WHERE username = $1`, username); err != nil {
		return false, fmt.Errorf("check candidate username: %w", err)
	}
	return count > 0, nil
}

// FindByKeyword searches name, email and username for the keyword.
func (r *CandidateRepository) FindByKeyword(ctx context.Context, keyword string) ([]models.Candidate, error) {
	query := fmt.Sprintf(`SELECT %s FROM candidates
WHERE LOWER(first_name) LIKE $1 OR LOWER(last_name) LIKE $1 OR LOWER(email) LIKE $1 OR LOWER(username) LIKE $1
ORDER BY created_at DESC`, candidateColumns)
	pattern := "%" + strings.ToLower(keyword) + "%"
	var candidates []models.Candidate
	if err := r.db.SelectContext(ctx, &candidates, query, pattern); err != nil {
		return nil, fmt.Errorf("search candidates by keyword: %w", err)
	}
	return candidates, nil
}

// FindByColumnAndKeyword searches a single whitelisted column.
func (r *CandidateRepository) FindByColumnAndKeyword(ctx context.Context, column, keyword string) ([]models.Candidate, error) {
	if !searchableCandidateColumns[column] {
		return r.FindByKeyword(ctx, keyword)
	}
	query := fmt.Sprintf("SELECT %s FROM candidates WHERE LOWER(%s::text) LIKE $1 ORDER BY created_at DESC", candidateColumns, column)
	pattern := "%" + strings.ToLower(keyword) + "%"
	var candidates []models.Candidate
	if err := r.db.SelectContext(ctx, &candidates, query, pattern); err != nil {
		return nil, fmt.Errorf("search candidates by column: %w", err)
	}
	return candidates, nil
}

// FindByAccountStatuses returns candidates whose account status is in the set.
func (r *CandidateRepository) FindByAccountStatuses(ctx context.Context, statuses []models.AccountStatus) ([]models.Candidate, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM candidates WHERE account_status IN (?) ORDER BY created_at DESC", candidateColumns), statuses)
	if err != nil {
		return nil, fmt.Errorf("build account status query: %w", err)
	}
	var candidates []models.Candidate
	if err := r.db.SelectContext(ctx, &candidates, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("search candidates by account status: %w", err)
	}
	return candidates, nil
}

// FindByLastLoginBetween returns candidates whose last login falls inside
// [from, to].
func (r *CandidateRepository) FindByLastLoginBetween(ctx context.Context, from, to time.Time) ([]models.Candidate, error) {
	query := fmt.Sprintf("SELECT %s FROM candidates WHERE last_login_date >= $1 AND last_login_date <= $2 ORDER BY last_login_date DESC", candidateColumns)
	var candidates []models.Candidate
	if err := r.db.SelectContext(ctx, &candidates, query, from, to); err != nil {
		return nil, fmt.Errorf("search candidates by last login: %w", err)
	}
	return candidates, nil
}

// Create inserts a new candidate row.
func (r *CandidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	if candidate.ID == "" {
		candidate.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	candidate.CreatedAt = now
	candidate.UpdatedAt = now

	const query = `INSERT INTO candidates (id, first_name, last_name, gender, email, phone_number, country, address, username, account_status, hired_status, last_login_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	if _, err := r.db.ExecContext(ctx, query,
		candidate.ID, candidate.FirstName, candidate.LastName, candidate.Gender,
		candidate.Email, candidate.PhoneNumber, candidate.Country, candidate.Address,
		candidate.Username, candidate.AccountStatus, candidate.HiredStatus,
		candidate.LastLoginDate, candidate.CreatedAt, candidate.UpdatedAt); err != nil {
		return fmt.Errorf("insert candidate: %w", err)
	}
	return nil
}

// Update rewrites an existing candidate row.
func (r *CandidateRepository) Update(ctx context.Context, candidate *models.Candidate) error {
	candidate.UpdatedAt = time.Now().UTC()
	const query = `UPDATE candidates SET first_name = $1, last_name = $2, gender = $3, email = $4, phone_number = $5, country = $6, address = $7, username = $8, account_status = $9, hired_status = $10, last_login_date = $11, updated_at = $12 WHERE id = $13`
	if _, err := r.db.ExecContext(ctx, query,
		candidate.FirstName, candidate.LastName, candidate.Gender, candidate.Email,
		candidate.PhoneNumber, candidate.Country, candidate.Address, candidate.Username,
		candidate.AccountStatus, candidate.HiredStatus, candidate.LastLoginDate,
		candidate.UpdatedAt, candidate.ID); err != nil {
		return fmt.Errorf("update candidate: %w", err)
	}
	return nil
}

// Delete removes a candidate row.
func (r *CandidateRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	return nil
}
