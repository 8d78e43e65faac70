package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hireline/recruitment-api/internal/models"
)

const documentColumns = "id, candidate_id, file_name, stored_path, content_type, size_bytes, uploaded_at"

// DocumentRepository manages metadata rows for uploaded candidate documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs a DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// FindByID fetches a document by ID. Returns sql.ErrNoRows when absent.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM documents WHERE id = $1", documentColumns)
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByCandidateID returns the documents uploaded for a candidate.
func (r *DocumentRepository) ListByCandidateID(ctx context.Context, candidateID string) ([]models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM documents WHERE candidate_id = $1 ORDER BY uploaded_at DESC", documentColumns)
	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query, candidateID); err != nil {
		return nil, fmt.Errorf("list candidate documents: %w", err)
	}
	return docs, nil
}

// Create inserts a new document metadata row.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.UploadedAt = time.Now().UTC()

	const query = `INSERT INTO documents (id, candidate_id, file_name, stored_path, content_type, size_bytes, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.CandidateID, doc.FileName, doc.StoredPath,
		doc.ContentType, doc.SizeBytes, doc.UploadedAt); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// Delete removes a document metadata row.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
