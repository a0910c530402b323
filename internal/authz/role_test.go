package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, r := range Roles() {
		parsed, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}

	_, err := ParseRole("janitor")
	assert.Error(t, err)

	_, err = ParseRole("")
	assert.Error(t, err)

	// The set is closed: casing matters.
	_, err = ParseRole("Admin")
	assert.Error(t, err)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleSuperadmin.Valid())
	assert.True(t, RoleAcademics.Valid())
	assert.False(t, Role("guest").Valid())
}
