package auth

import "net/http"

// Guard bundles token verification and role lookup for route registration.
type Guard struct {
	tokens Service
	roles  RoleResolver
}

func NewGuard(tokens Service, roles RoleResolver) *Guard {
	return &Guard{tokens: tokens, roles: roles}
}

// Authenticated requires a valid bearer token.
func (g *Guard) Authenticated(next http.Handler) http.Handler {
	return Authenticate(g.tokens)(next)
}

// Role requires a valid bearer token whose owner has one of roles.
func (g *Guard) Role(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return Authenticate(g.tokens)(RequireRole(g.roles, roles...)(next))
	}
}
