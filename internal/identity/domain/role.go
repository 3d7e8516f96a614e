package domain

import "time"

// Permission is a single capability string carried in a role's permission
// set.
type Permission string

const (
	PermManageUsers    Permission = "MANAGE_USERS"
	PermViewUsers      Permission = "VIEW_USERS"
	PermInviteUsers    Permission = "INVITE_USERS"
	PermManageAccount  Permission = "MANAGE_ACCOUNT"
	PermManageProjects Permission = "MANAGE_PROJECTS"
	PermViewProjects   Permission = "VIEW_PROJECTS"
	PermEditProfile    Permission = "EDIT_PROFILE"
)

// RoleName is the closed set of role identities. Authorisation decisions go
// through Can rather than comparing raw strings, so a typo'd role name fails
// closed instead of silently granting nothing-or-everything.
type RoleName string

const (
	RoleEnterpriseAdmin  RoleName = "enterprise_admin"
	RoleEnterpriseMember RoleName = "enterprise_member"
	RoleCreatorAdmin     RoleName = "creator_admin"
)

var rolePermissions = map[RoleName][]Permission{
	RoleEnterpriseAdmin: {
		PermManageUsers, PermViewUsers, PermInviteUsers, PermManageAccount, PermViewProjects,
	},
	RoleEnterpriseMember: {
		PermViewProjects, PermEditProfile,
	},
	RoleCreatorAdmin: {
		PermManageProjects, PermViewProjects, PermEditProfile,
	},
}

var roleDescriptions = map[RoleName]string{
	RoleEnterpriseAdmin:  "Enterprise Superuser role",
	RoleEnterpriseMember: "Standard user under enterprise account",
	RoleCreatorAdmin:     "Admin role for individual creators",
}

// Valid reports whether the name is one of the known roles.
func (r RoleName) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Permissions returns a copy of the role's permission set. Unknown roles
// have no permissions.
func (r RoleName) Permissions() []Permission {
	perms := rolePermissions[r]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// Can reports whether the role carries the given permission.
func (r RoleName) Can(p Permission) bool {
	for _, have := range rolePermissions[r] {
		if have == p {
			return true
		}
	}
	return false
}

// Description returns the human-readable description recorded when the role
// row is lazily created.
func (r RoleName) Description() string {
	return roleDescriptions[r]
}

// Role is a named permission bundle shared by reference across every user
// holding it. Mutating a role's permission set affects all holders at once.
type Role struct {
	ID          string
	Name        RoleName
	Description string
	Permissions []Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
