package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/edudemy/edudemy/internal/authz"
	"github.com/edudemy/edudemy/internal/shared"
	"github.com/edudemy/edudemy/internal/users"
)

// Service wraps authentication business rules. Authorization never runs
// for a principal this layer has rejected.
type Service struct {
	users *users.Service
}

// NewService constructs a new Service.
func NewService(usersService *users.Service) *Service {
	return &Service{users: usersService}
}

// Authenticate validates login/password credentials. Deactivated accounts
// fail with authz.ErrInactive so callers can distinguish them from bad
// credentials.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*users.User, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, authz.ErrInactive
	}
	if err := s.users.RecordLogin(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}
