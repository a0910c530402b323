package authz

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"
)

// Service orchestrates the permission catalog, the two grant tables, and
// the resolver that merges them into effective permission sets.
type Service struct {
	store   Store
	cache   *EffectiveCache
	resolve singleflight.Group
}

// NewService constructs a Service. The cache is optional; pass nil to
// resolve against the store on every check.
func NewService(store Store, cache *EffectiveCache) *Service {
	return &Service{store: store, cache: cache}
}

// DefinePermission adds a permission to the catalog. The catalog is
// additive: there is no update or delete, deletion would orphan grants.
func (s *Service) DefinePermission(ctx context.Context, name, resource, action, description string) (Permission, error) {
	name = strings.TrimSpace(name)
	resource = strings.TrimSpace(resource)
	action = strings.TrimSpace(action)
	if name == "" || resource == "" || action == "" {
		return Permission{}, fmt.Errorf("authz: name, resource and action are required")
	}
	return s.store.CreatePermission(ctx, Permission{
		Name:        name,
		Resource:    resource,
		Action:      action,
		Description: strings.TrimSpace(description),
	})
}

// LookupPermission fetches a catalog entry by name.
func (s *Service) LookupPermission(ctx context.Context, name string) (Permission, error) {
	return s.store.GetPermissionByName(ctx, name)
}

// ListPermissions returns the full catalog ordered by name.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.store.ListPermissions(ctx)
}

// SetRoleGrant upserts the default verdict for (role, permission).
// Fails with ErrNotFound when the permission name is unknown.
func (s *Service) SetRoleGrant(ctx context.Context, role Role, permissionName string, granted bool) error {
	if !role.Valid() {
		return fmt.Errorf("authz: unknown role %q", role)
	}
	perm, err := s.store.GetPermissionByName(ctx, permissionName)
	if err != nil {
		return err
	}
	if err := s.store.UpsertRoleGrant(ctx, role, perm.ID, granted); err != nil {
		return err
	}
	// Effective sets of every user holding the role go stale here; the
	// cache TTL bounds how long.
	return nil
}

// GrantsForRole returns the role's grant rows keyed by permission name.
// Absent permissions are implicitly not granted.
func (s *Service) GrantsForRole(ctx context.Context, role Role) (map[string]bool, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("authz: unknown role %q", role)
	}
	return s.store.GrantsForRole(ctx, role)
}

// SetUserGrant upserts a per-user override, recording the administrator
// who set it. Fails with ErrNotFound when the permission name is unknown.
func (s *Service) SetUserGrant(ctx context.Context, userID int64, permissionName string, granted bool, grantedBy int64) error {
	perm, err := s.store.GetPermissionByName(ctx, permissionName)
	if err != nil {
		return err
	}
	if err := s.store.UpsertUserGrant(ctx, userID, perm.ID, granted, grantedBy); err != nil {
		return err
	}
	s.cache.InvalidateUser(ctx, userID)
	return nil
}

// GrantsForUser returns the user's override rows keyed by permission name.
func (s *Service) GrantsForUser(ctx context.Context, userID int64) (map[string]bool, error) {
	return s.store.GrantsForUser(ctx, userID)
}

// ListUserGrants returns the user's override rows with audit metadata.
func (s *Service) ListUserGrants(ctx context.Context, userID int64) ([]UserGrant, error) {
	return s.store.ListUserGrants(ctx, userID)
}

// EffectivePermissions computes the merged permission set for a principal:
// role grants where granted, then user overrides applied on top. An
// override wins in both directions; absence of any row means not granted.
// Concurrent misses for the same user share one resolution.
func (s *Service) EffectivePermissions(ctx context.Context, principal Principal) (map[string]struct{}, error) {
	if cached, ok := s.cache.Get(ctx, principal.ID); ok {
		return cached, nil
	}

	v, err, _ := s.resolve.Do(strconv.FormatInt(principal.ID, 10), func() (any, error) {
		return s.resolveEffective(ctx, principal)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]struct{}), nil
}

func (s *Service) resolveEffective(ctx context.Context, principal Principal) (map[string]struct{}, error) {
	base, err := s.store.GrantsForRole(ctx, principal.Role)
	if err != nil {
		return nil, err
	}
	effective := make(map[string]struct{}, len(base))
	for name, granted := range base {
		if granted {
			effective[name] = struct{}{}
		}
	}

	overrides, err := s.store.GrantsForUser(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	for name, granted := range overrides {
		if granted {
			effective[name] = struct{}{}
		} else {
			delete(effective, name)
		}
	}

	s.cache.Set(ctx, principal.ID, effective)
	return effective, nil
}

// HasPermission reports whether the principal may perform action on
// resource. Inactive principals fail with ErrInactive before resolution;
// a (resource, action) pair with no catalog entry fails closed.
func (s *Service) HasPermission(ctx context.Context, principal Principal, resource, action string) (bool, error) {
	if !principal.IsActive {
		return false, ErrInactive
	}

	perms, err := s.store.FindPermissions(ctx, resource, action)
	if err != nil {
		return false, err
	}
	if len(perms) == 0 {
		return false, nil
	}

	effective, err := s.EffectivePermissions(ctx, principal)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if _, ok := effective[p.Name]; ok {
			return true, nil
		}
	}
	return false, nil
}

// RequireRole is the coarse legacy check: membership of the principal's
// role in an allowed set, independent of the grant tables. Both gate
// mechanisms coexist; callers choose per endpoint.
func (s *Service) RequireRole(principal Principal, allowed ...Role) bool {
	for _, role := range allowed {
		if principal.Role == role {
			return true
		}
	}
	return false
}
