package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hireline/recruitment-api/internal/models"
	appErrors "github.com/hireline/recruitment-api/pkg/errors"
)

type mockUserRepo struct {
	users       map[string]models.User
	emailsTaken map[string]string // email -> owner id
	createCalls int
	updateCalls int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]models.User), emailsTaken: make(map[string]string)}
}

func (m *mockUserRepo) List(_ context.Context, _ models.UserFilter) ([]models.User, int, error) {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (m *mockUserRepo) FindByIDs(_ context.Context, ids []string) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) ExistsByEmail(_ context.Context, email, excludeID string) (bool, error) {
	owner, ok := m.emailsTaken[email]
	return ok && owner != excludeID, nil
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	m.createCalls++
	if user.ID == "" {
		user.ID = "user-new"
	}
	m.users[user.ID] = *user
	m.emailsTaken[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, user *models.User) error {
	m.updateCalls++
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

type mockAssignedInterviews struct {
	byUser map[string][]models.Interview
}

func (m *mockAssignedInterviews) ListByUserID(_ context.Context, userID string) ([]models.Interview, error) {
	return m.byUser[userID], nil
}

func newUserService(repo *mockUserRepo, interviews *mockAssignedInterviews) *UserService {
	if interviews == nil {
		interviews = &mockAssignedInterviews{byUser: map[string][]models.Interview{}}
	}
	return NewUserService(repo, interviews, nil, zap.NewNop())
}

func TestUserCreateHashesPasswordAndActivates(t *testing.T) {
	repo := newMockUserRepo()
	svc := newUserService(repo, nil)

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Role:         models.RoleTechnicalInterviewer,
		FirstName:    "Grace",
		LastName:     "Hopper",
		Email:        "grace@example.com",
		Password:     "s3cret!",
		DepartmentID: 3,
	})
	require.NoError(t, err)
	assert.True(t, user.Active)
	assert.NotEqual(t, "s3cret!", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret!")))
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	repo.emailsTaken["grace@example.com"] = "user-1"
	svc := newUserService(repo, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Role: models.RolePTE, FirstName: "Grace", LastName: "Hopper",
		Email: "grace@example.com", Password: "s3cret!", DepartmentID: 1,
	})
	assertAppError(t, err, appErrors.ErrConflict, "User already exists!")
	assert.Equal(t, 0, repo.createCalls)
}

func TestUserUpdatePreservesPasswordHash(t *testing.T) {
	repo := newMockUserRepo()
	repo.users["user-1"] = models.User{
		ID: "user-1", Role: models.RolePTE, FirstName: "Grace", LastName: "Hopper",
		Email: "grace@example.com", PasswordHash: "stored-hash", DepartmentID: 1, Active: true,
	}
	repo.emailsTaken["grace@example.com"] = "user-1"
	svc := newUserService(repo, nil)

	user, err := svc.Update(context.Background(), "user-1", UpdateUserRequest{
		Role: models.RoleHRRepresentative, FirstName: "Grace", LastName: "Hopper",
		Email: "grace@example.com", DepartmentID: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "stored-hash", user.PasswordHash)
	assert.Equal(t, models.RoleHRRepresentative, user.Role)
}

func TestUserUpdateRejectsTakenEmail(t *testing.T) {
	repo := newMockUserRepo()
	repo.users["user-1"] = models.User{ID: "user-1", Role: models.RolePTE, Email: "grace@example.com", Active: true}
	repo.emailsTaken["taken@example.com"] = "user-2"
	svc := newUserService(repo, nil)

	_, err := svc.Update(context.Background(), "user-1", UpdateUserRequest{
		Role: models.RolePTE, FirstName: "Grace", LastName: "Hopper",
		Email: "taken@example.com", DepartmentID: 1,
	})
	assertAppError(t, err, appErrors.ErrConflict, "Email already in database")
}

func TestUserGetUnknown(t *testing.T) {
	svc := newUserService(newMockUserRepo(), nil)

	_, err := svc.Get(context.Background(), "ghost")
	assertAppError(t, err, appErrors.ErrNotFound, "User with id: ghost was not found.")
}

func TestAssignedCandidates(t *testing.T) {
	repo := newMockUserRepo()
	repo.users["user-1"] = models.User{ID: "user-1", Role: models.RoleTechnicalInterviewer, Active: true}
	interviews := &mockAssignedInterviews{byUser: map[string][]models.Interview{
		"user-1": {
			{ID: "int-1", CandidateID: "cand-1"},
			{ID: "int-2", CandidateID: "cand-2"},
		},
	}}
	svc := newUserService(repo, interviews)

	ids, err := svc.AssignedCandidates(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cand-1", "cand-2"}, ids)
}

func TestAssignedCandidatesNoneFound(t *testing.T) {
	repo := newMockUserRepo()
	repo.users["user-1"] = models.User{ID: "user-1", Role: models.RolePTE, Active: true}
	svc := newUserService(repo, nil)

	_, err := svc.AssignedCandidates(context.Background(), "user-1")
	assertAppError(t, err, appErrors.ErrNotFound, "No assigned interviews found!")
}
