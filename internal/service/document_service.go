package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireline/recruitment-api/internal/models"
	"github.com/hireline/recruitment-api/pkg/config"
	appErrors "github.com/hireline/recruitment-api/pkg/errors"
)

type documentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Document, error)
	ListByCandidateID(ctx context.Context, candidateID string) ([]models.Document, error)
	Create(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id string) error
}

type documentStorage interface {
	SaveStream(filename string, r io.Reader) (int64, error)
	Open(filename string) (io.ReadCloser, error)
	Delete(filename string) error
}

// DocumentService handles candidate document uploads and downloads.
type DocumentService struct {
	repo       documentRepository
	candidates candidateDirectory
	storage    documentStorage
	cfg        config.DocumentsConfig
	logger     *zap.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(repo documentRepository, candidates candidateDirectory, storage documentStorage, cfg config.DocumentsConfig, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = []string{"doc", "docx", "pdf"}
	}
	return &DocumentService{repo: repo, candidates: candidates, storage: storage, cfg: cfg, logger: logger}
}

// Upload stores the file bytes and records metadata for a candidate.
func (s *DocumentService) Upload(ctx context.Context, candidateID, fileName string, size int64, r io.Reader) (*models.Document, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if !s.extensionAllowed(ext) {
		return nil, appErrors.Clone(appErrors.ErrInvalidDocument, "The document format is not supported!")
	}
	if s.cfg.MaxFileSizeBytes > 0 && size > s.cfg.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "The document exceeds the maximum allowed size.")
	}

	if _, err := s.candidates.FindByID(ctx, candidateID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Candidate with id: %s not found.", candidateID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate")
	}

	storedName := filepath.Join(candidateID, uuid.NewString()+"."+ext)
	written, err := s.storage.SaveStream(storedName, r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document")
	}

	doc := &models.Document{
		CandidateID: candidateID,
		FileName:    fileName,
		StoredPath:  storedName,
		ContentType: contentTypeFor(ext),
		SizeBytes:   written,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		// Orphaned bytes are cleaned up so storage stays consistent with rows.
		if rmErr := s.storage.Delete(storedName); rmErr != nil {
			s.logger.Warn("failed to remove orphaned document file", zap.String("path", storedName), zap.Error(rmErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record document")
	}
	return doc, nil
}

// ListForCandidate returns document metadata for a candidate.
func (s *DocumentService) ListForCandidate(ctx context.Context, candidateID string) ([]models.Document, error) {
	docs, err := s.repo.ListByCandidateID(ctx, candidateID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return docs, nil
}

// Download opens the stored file and returns it with its metadata. The caller
// owns the returned reader.
func (s *DocumentService) Download(ctx context.Context, id string) (*models.Document, io.ReadCloser, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Document with id: %s not found.", id))
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	file, err := s.storage.Open(doc.StoredPath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open document")
	}
	return doc, file, nil
}

// Delete removes the metadata row and the stored bytes.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Document does not exist!")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}
	if err := s.storage.Delete(doc.StoredPath); err != nil {
		s.logger.Warn("failed to remove document file", zap.String("path", doc.StoredPath), zap.Error(err))
	}
	return nil
}

func (s *DocumentService) extensionAllowed(ext string) bool {
	for _, allowed := range s.cfg.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

func contentTypeFor(ext string) string {
	switch ext {
	case "pdf":
		return "application/pdf"
	case "doc":
		return "application/msword"
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	if ct := mime.TypeByExtension("." + ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
