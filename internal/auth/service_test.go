package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edudemy/edudemy/internal/authz"
	"github.com/edudemy/edudemy/internal/shared"
	"github.com/edudemy/edudemy/internal/users"
)

type stubUserRepo struct {
	users  map[int64]*users.User
	nextID int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*users.User), nextID: 1}
}

func (s *stubUserRepo) Create(ctx context.Context, user users.User) (int64, error) {
	user.ID = s.nextID
	s.nextID++
	s.users[user.ID] = &user
	return user.ID, nil
}

func (s *stubUserRepo) Get(ctx context.Context, id int64) (*users.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *stubUserRepo) GetByLogin(ctx context.Context, login string) (*users.User, error) {
	for _, u := range s.users {
		if u.Email == login || u.Username == login {
			copied := *u
			return &copied, nil
		}
	}
	return nil, users.ErrNotFound
}

func (s *stubUserRepo) List(ctx context.Context, req users.ListUsersRequest) ([]users.User, int, error) {
	return nil, 0, nil
}

func (s *stubUserRepo) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	return nil
}

func (s *stubUserRepo) SetActive(ctx context.Context, id int64, active bool) error {
	u, ok := s.users[id]
	if !ok {
		return users.ErrNotFound
	}
	u.IsActive = active
	return nil
}

func (s *stubUserRepo) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	u, ok := s.users[id]
	if !ok {
		return users.ErrNotFound
	}
	u.LastLogin = &at
	return nil
}

var _ users.Repository = (*stubUserRepo)(nil)

func newAuthFixture(t *testing.T) (*Service, *users.Service, *users.User) {
	t.Helper()
	repo := newStubUserRepo()
	usersService := users.NewService(repo)
	user, err := usersService.Create(context.Background(), "jane@edudemy.local", "jane", "Jane Doe", authz.RoleTeacher, "correct-horse", 1)
	require.NoError(t, err)
	return NewService(usersService), usersService, user
}

func TestAuthenticateSuccess(t *testing.T) {
	svc, _, created := newAuthFixture(t)

	user, err := svc.Authenticate(context.Background(), "jane@edudemy.local", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	// Username works as a login too.
	user, err = svc.Authenticate(context.Background(), "jane", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Authenticate(context.Background(), "jane@edudemy.local", "battery-staple")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Authenticate(context.Background(), "nobody@edudemy.local", "correct-horse")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	svc, usersService, created := newAuthFixture(t)
	require.NoError(t, usersService.SetActive(context.Background(), created.ID, false))

	_, err := svc.Authenticate(context.Background(), "jane@edudemy.local", "correct-horse")
	assert.ErrorIs(t, err, authz.ErrInactive)
}

func TestAuthenticateStampsLastLogin(t *testing.T) {
	svc, usersService, created := newAuthFixture(t)

	_, err := svc.Authenticate(context.Background(), "jane", "correct-horse")
	require.NoError(t, err)

	got, err := usersService.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastLogin)
}
