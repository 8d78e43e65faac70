package models

import "time"

// Document holds metadata for an uploaded candidate file; the bytes live on
// local storage under StoredPath.
type Document struct {
	ID          string    `db:"id" json:"id"`
	CandidateID string    `db:"candidate_id" json:"candidate_id"`
	FileName    string    `db:"file_name" json:"file_name"`
	StoredPath  string    `db:"stored_path" json:"-"`
	ContentType string    `db:"content_type" json:"content_type"`
	SizeBytes   int64     `db:"size_bytes" json:"size_bytes"`
	UploadedAt  time.Time `db:"uploaded_at" json:"uploaded_at"`
}
