package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole("USER")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, role)

	role, err = ParseRole("ADMIN")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	for _, raw := range []string{"", "admin", "ROLE_ADMIN", "SUPERUSER", " USER"} {
		_, err := ParseRole(raw)
		assert.Error(t, err, raw)
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("GUEST").Valid())
}
