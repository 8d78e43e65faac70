package models

import "time"

// Role represents the interviewer roles recognised by the scheduling policy.
type Role string

const (
	RoleHRRepresentative     Role = "HR_REPRESENTATIVE"
	RolePTE                  Role = "PTE"
	RoleTechnicalInterviewer Role = "TECHNICAL_INTERVIEWER"
	RoleAdmin                Role = "ADMIN"
)

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Role         Role      `db:"role" json:"role"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	DepartmentID int       `db:"department_id" json:"department_id"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName renders the name used in interview read projections.
func (u User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *Role
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
