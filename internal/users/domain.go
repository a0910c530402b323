package users

import (
	"time"

	"github.com/edudemy/edudemy/internal/authz"
)

// User represents an account in the school system. The role tag on the row
// is what the resolver's role-grant lookup keys on.
type User struct {
	ID           int64
	Email        string
	Username     string
	FullName     string
	Role         authz.Role
	PasswordHash string
	IsActive     bool
	LastLogin    *time.Time
	CreatedBy    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal converts the stored account into the authorization principal.
func (u User) Principal() authz.Principal {
	return authz.Principal{ID: u.ID, Role: u.Role, IsActive: u.IsActive}
}
