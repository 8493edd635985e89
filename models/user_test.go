package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserRoleIsAdministrator(t *testing.T) {
	assert.False(t, RolePlayer.IsAdministrator())
	assert.True(t, RolePresident.IsAdministrator())
	assert.True(t, RoleVicePresident.IsAdministrator())
	assert.False(t, UserRole("coach").IsAdministrator())
}

func TestUserRoleValid(t *testing.T) {
	assert.True(t, RolePlayer.Valid())
	assert.True(t, RolePresident.Valid())
	assert.True(t, RoleVicePresident.Valid())
	assert.False(t, UserRole("").Valid())
	assert.False(t, UserRole("admin").Valid())
}
