package bridge

import (
	"strings"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
)

// Role represents a single Bridge account role
type Role uint

const (
	RoleDeveloper Role = 1 << iota
	RoleResearcher
	RoleAdmin
)

// RoleNone is the requirement of participant operations: any signed-in
// session satisfies it.
const RoleNone Role = 0

var roleNames = []struct {
	role Role
	name string
}{
	{RoleDeveloper, api.RoleNameDeveloper},
	{RoleResearcher, api.RoleNameResearcher},
	{RoleAdmin, api.RoleNameAdmin},
}

func (r Role) String() string {
	if r == RoleNone {
		return "participant"
	}
	for _, rn := range roleNames {
		if rn.role == r {
			return rn.name
		}
	}
	return "unknown"
}

// Roles represents the container of a session's roles.
// It provides methods Has, With and Without to check, set and unset certain roles.
type Roles uint

// NoRoles provides a role container with no roles set
const NoRoles Roles = 0

// RolesOf collects the roles the server granted session. Role names the SDK
// does not gate on are ignored.
func RolesOf(session api.Session) Roles {
	roles := NoRoles
	for _, rn := range roleNames {
		if session.HasRole(rn.name) {
			roles = roles.With(rn.role)
		}
	}
	return roles
}

// Has checks if the container satisfies all the given roles. The admin role
// satisfies every requirement and RoleNone is always satisfied.
func (cur Roles) Has(first Role, others ...Role) bool {
	if uint(cur)&uint(RoleAdmin) != 0 {
		return true
	}
	if first != RoleNone && uint(cur)&uint(first) == 0 {
		return false
	}
	for _, other := range others {
		if other != RoleNone && uint(cur)&uint(other) == 0 {
			return false
		}
	}
	return true
}

// With returns a new role container with all given and current roles set
func (cur Roles) With(first Role, others ...Role) Roles {
	val := uint(cur)
	val |= uint(first)
	for _, other := range others {
		val |= uint(other)
	}
	return Roles(val)
}

// Without returns a new role container with the current and without the given roles set
func (cur Roles) Without(first Role, others ...Role) Roles {
	val := uint(cur)
	val &= ^uint(first)
	for _, other := range others {
		val &= ^uint(other)
	}
	return Roles(val)
}

func (cur Roles) String() string {
	var names []string
	for _, rn := range roleNames {
		if uint(cur)&uint(rn.role) != 0 {
			names = append(names, rn.name)
		}
	}
	if len(names) == 0 {
		return "participant"
	}
	return strings.Join(names, ",")
}
