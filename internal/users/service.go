package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/edudemy/edudemy/internal/authz"
)

// Service handles account business logic.
type Service struct {
	repo  Repository
	title cases.Caser
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, title: cases.Title(language.English)}
}

// Create registers a new account with a bcrypt password hash.
func (s *Service) Create(ctx context.Context, email, username, fullName string, role authz.Role, password string, createdBy int64) (*User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("users: unknown role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}

	user := User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Username:     strings.TrimSpace(username),
		FullName:     s.title.String(strings.TrimSpace(fullName)),
		Role:         role,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedBy:    createdBy,
	}

	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	return &user, nil
}

// Get fetches one account.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// GetByLogin fetches an account by email or username.
func (s *Service) GetByLogin(ctx context.Context, login string) (*User, error) {
	return s.repo.GetByLogin(ctx, strings.TrimSpace(login))
}

// List returns accounts matching the filters plus the unfiltered total.
func (s *Service) List(ctx context.Context, req ListUsersRequest) ([]User, int, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

// Update applies partial changes to an account.
func (s *Service) Update(ctx context.Context, id int64, req updateUserRequest) (*User, error) {
	updates := make(map[string]interface{})
	if req.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Username != nil {
		updates["username"] = strings.TrimSpace(*req.Username)
	}
	if req.FullName != nil {
		updates["full_name"] = s.title.String(strings.TrimSpace(*req.FullName))
	}
	if req.Role != nil {
		role, err := authz.ParseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		updates["role"] = string(role)
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	return s.repo.Get(ctx, id)
}

// SetActive toggles the activation flag. Deactivation leaves the user's
// grant rows untouched: reactivation restores prior overrides unchanged.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

// RecordLogin stamps last_login after a successful authentication.
func (s *Service) RecordLogin(ctx context.Context, id int64) error {
	return s.repo.RecordLogin(ctx, id, time.Now().UTC())
}

// PrincipalByID resolves a stored account into an authorization principal.
// Satisfies authz.PrincipalDirectory.
func (s *Service) PrincipalByID(ctx context.Context, userID int64) (authz.Principal, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return authz.Principal{}, authz.ErrNotFound
		}
		return authz.Principal{}, err
	}
	return user.Principal(), nil
}
