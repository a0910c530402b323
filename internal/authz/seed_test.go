package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIdempotent(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, svc))
	require.NoError(t, Seed(ctx, svc))

	perms, err := svc.ListPermissions(ctx)
	require.NoError(t, err)
	assert.Len(t, perms, len(seedCatalog()))
}

func TestSeedSuperadminCoversCatalog(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	ctx := context.Background()
	require.NoError(t, Seed(ctx, svc))

	effective, err := svc.EffectivePermissions(ctx, Principal{ID: 1, Role: RoleSuperadmin, IsActive: true})
	require.NoError(t, err)

	for _, p := range seedCatalog() {
		assert.Contains(t, effective, p.name, "superadmin missing %s", p.name)
	}
}

func TestSeedRoleDefaults(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	ctx := context.Background()
	require.NoError(t, Seed(ctx, svc))

	teacher := Principal{ID: 2, Role: RoleTeacher, IsActive: true}
	effective, err := svc.EffectivePermissions(ctx, teacher)
	require.NoError(t, err)
	assert.Contains(t, effective, "read_students")
	assert.NotContains(t, effective, "delete_users")

	student := Principal{ID: 3, Role: RoleStudent, IsActive: true}
	effective, err = svc.EffectivePermissions(ctx, student)
	require.NoError(t, err)
	assert.Contains(t, effective, "read_notifications")
	assert.NotContains(t, effective, "create_users")
}
