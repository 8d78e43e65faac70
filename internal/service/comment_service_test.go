package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hireline/recruitment-api/internal/models"
	appErrors "github.com/hireline/recruitment-api/pkg/errors"
)

type mockCommentRepo struct {
	comments map[string]models.Comment
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{comments: make(map[string]models.Comment)}
}

func (m *mockCommentRepo) FindByID(_ context.Context, id string) (*models.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (m *mockCommentRepo) ListByCandidateID(_ context.Context, candidateID string) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range m.comments {
		if c.CandidateID == candidateID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCommentRepo) Create(_ context.Context, comment *models.Comment) error {
	comment.ID = "comment-new"
	m.comments[comment.ID] = *comment
	return nil
}

func (m *mockCommentRepo) Update(_ context.Context, comment *models.Comment) error {
	m.comments[comment.ID] = *comment
	return nil
}

func (m *mockCommentRepo) Delete(_ context.Context, id string) error {
	delete(m.comments, id)
	return nil
}

func newCommentService(repo *mockCommentRepo) *CommentService {
	candidates := &mockCandidateDirectory{candidates: map[string]models.Candidate{
		"cand-1": {ID: "cand-1"},
	}}
	return NewCommentService(repo, candidates, nil, zap.NewNop())
}

func TestCommentCreate(t *testing.T) {
	repo := newMockCommentRepo()
	svc := newCommentService(repo)

	author := "user-1"
	comment, err := svc.Create(context.Background(), "cand-1", &author, CreateCommentRequest{Body: "Strong communicator"})
	require.NoError(t, err)
	assert.Equal(t, "cand-1", comment.CandidateID)
	assert.Equal(t, "Strong communicator", comment.Body)
	require.NotNil(t, comment.AuthorID)
	assert.Equal(t, "user-1", *comment.AuthorID)
}

func TestCommentCreateRequiresCandidate(t *testing.T) {
	svc := newCommentService(newMockCommentRepo())

	_, err := svc.Create(context.Background(), "", nil, CreateCommentRequest{Body: "note"})
	assertAppError(t, err, appErrors.ErrNotFound, "Comment candidate id is missing")

	_, err = svc.Create(context.Background(), "ghost", nil, CreateCommentRequest{Body: "note"})
	assertAppError(t, err, appErrors.ErrNotFound, "Candidate with id: ghost not found.")
}

func TestCommentUpdateUnknown(t *testing.T) {
	svc := newCommentService(newMockCommentRepo())

	_, err := svc.Update(context.Background(), "ghost", CreateCommentRequest{Body: "edited"})
	assertAppError(t, err, appErrors.ErrNotFound, "Comment with id: ghost not found.")
}

func TestCommentUpdateRewritesBody(t *testing.T) {
	repo := newMockCommentRepo()
	repo.comments["comment-1"] = models.Comment{ID: "comment-1", CandidateID: "cand-1", Body: "original"}
	svc := newCommentService(repo)

	comment, err := svc.Update(context.Background(), "comment-1", CreateCommentRequest{Body: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", comment.Body)
}

func TestCommentDeleteUnknown(t *testing.T) {
	svc := newCommentService(newMockCommentRepo())

	err := svc.Delete(context.Background(), "ghost")
	assertAppError(t, err, appErrors.ErrNotFound, "Comment does not exist!")
}
