package models

import "time"

// AccountStatus describes whether a candidate may still log in.
type AccountStatus string

const (
	AccountActive   AccountStatus = "ACTIVE"
	AccountInactive AccountStatus = "INACTIVE"
	AccountBlocked  AccountStatus = "BLOCKED"
)

// HiredStatus captures the hiring decision for a candidate.
type HiredStatus string

const (
	HiredGo   HiredStatus = "GO"
	HiredNoGo HiredStatus = "NO_GO"
)

// Candidate represents a job applicant stored in the candidates table.
type Candidate struct {
	ID            string        `db:"id" json:"id"`
	FirstName     string        `db:"first_name" json:"first_name"`
	LastName      string        `db:"last_name" json:"last_name"`
	Gender        string        `db:"gender" json:"gender"`
	Email         string        `db:"email" json:"email"`
	PhoneNumber   string        `db:"phone_number" json:"phone_number"`
	Country       string        `db:"country" json:"country"`
	Address       string        `db:"address" json:"address"`
	Username      string        `db:"username" json:"username"`
	AccountStatus AccountStatus `db:"account_status" json:"account_status"`
	HiredStatus   HiredStatus   `db:"hired_status" json:"hired_status"`
	LastLoginDate time.Time     `db:"last_login_date" json:"last_login_date"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// CandidateSearch describes the filtered-search payload: either a plain
// keyword, or a column name with options (statuses, date bounds, values).
type CandidateSearch struct {
	ColumnName string   `json:"column_name"`
	Items      []string `json:"items"`
}
