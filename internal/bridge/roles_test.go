package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
)

func TestRoles(t *testing.T) {
	roles := NoRoles.With(RoleDeveloper)
	assert.True(t, roles.Has(RoleDeveloper))
	assert.True(t, roles.Has(RoleNone))
	assert.False(t, roles.Has(RoleResearcher))
	assert.False(t, roles.Has(RoleDeveloper, RoleResearcher))

	roles = roles.With(RoleResearcher)
	assert.True(t, roles.Has(RoleDeveloper, RoleResearcher))
	assert.Equal(t, "developer,researcher", roles.String())

	roles = roles.Without(RoleDeveloper)
	assert.False(t, roles.Has(RoleDeveloper))
	assert.True(t, roles.Has(RoleResearcher))
	assert.Equal(t, "participant", NoRoles.String())
}

func TestRoles_AdminSatisfiesEverything(t *testing.T) {
	admin := NoRoles.With(RoleAdmin)
	assert.True(t, admin.Has(RoleDeveloper, RoleResearcher, RoleAdmin))
	assert.False(t, admin.Without(RoleAdmin).Has(RoleDeveloper))
}

func TestRolesOf(t *testing.T) {
	session := api.NewSession("token", api.RoleNameResearcher, api.RoleNameTestUsers)
	assert.Equal(t, NoRoles.With(RoleResearcher), RolesOf(session))
	assert.Equal(t, NoRoles, RolesOf(api.Session{}))
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "participant", RoleNone.String())
	assert.Equal(t, "developer", RoleDeveloper.String())
	assert.Equal(t, "researcher", RoleResearcher.String())
	assert.Equal(t, "admin", RoleAdmin.String())
}
