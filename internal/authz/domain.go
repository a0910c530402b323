package authz

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the referenced permission or grant row does not exist.
	ErrNotFound = errors.New("authz: not found")
	// ErrDuplicateName indicates a catalog definition collision.
	ErrDuplicateName = errors.New("authz: duplicate permission name")
	// ErrForbidden indicates the effective permissions do not satisfy the requirement.
	ErrForbidden = errors.New("authz: forbidden")
	// ErrInactive indicates the principal failed the activation check before
	// permission resolution ran.
	ErrInactive = errors.New("authz: account inactive")
)

// Permission is a named (resource, action) capability in the catalog.
// Immutable once defined except for its description.
type Permission struct {
	ID          int64
	Name        string
	Description string
	Resource    string
	Action      string
	CreatedAt   time.Time
}

// RoleGrant is the default verdict for one (role, permission) pair.
// At most one row exists per pair; writes upsert.
type RoleGrant struct {
	Role         Role
	PermissionID int64
	Granted      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserGrant overrides the role verdict for one (user, permission) pair,
// in either direction. GrantedBy records the administrator who set it.
type UserGrant struct {
	UserID       int64
	PermissionID int64
	Granted      bool
	GrantedBy    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the authenticated actor. The authentication layer produces
// it; the resolver trusts it and never re-derives it.
type Principal struct {
	ID       int64
	Role     Role
	IsActive bool
}
