package domain

// Principal is an authenticated user with its role and account resolved,
// as attached to the request context by the access middleware. Role and
// account are looked up per-request rather than cached in the session
// token, so role changes and deletions take effect immediately.
type Principal struct {
	User    User
	Role    Role
	Account *Account // nil for creators
}

// Can reports whether the principal's role carries the permission.
func (p Principal) Can(perm Permission) bool {
	return p.Role.Name.Can(perm)
}
