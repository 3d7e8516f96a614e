package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/atticlabs/attic-auth/internal/identity/domain"
	"github.com/atticlabs/attic-auth/internal/identity/store"
	"github.com/atticlabs/attic-auth/pkg/httpx"
	"github.com/atticlabs/attic-auth/pkg/jwtx"
)

type principalKey struct{}

// principalFrom returns the authenticated principal attached by
// RequirePrincipal, if any.
func principalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// RequirePrincipal authenticates the Bearer token and resolves the user,
// role and account fresh from the store on every request. Resolving per
// request means deleting a user revokes their outstanding session tokens
// immediately.
func RequirePrincipal(codec *jwtx.Codec, st store.Store) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			unauthorized := func() {
				w.Header().Set("WWW-Authenticate", `Bearer realm="attic-auth"`)
				httpx.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			}

			auth := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || token == "" {
				unauthorized()
				return
			}

			userID, err := codec.Verify(token)
			if err != nil {
				unauthorized()
				return
			}

			ctx := r.Context()
			user, err := st.Users().GetUserByID(ctx, userID)
			if err != nil {
				// Covers deleted users; any store failure also fails closed.
				unauthorized()
				return
			}

			role, err := st.Roles().GetRoleByID(ctx, user.RoleID)
			if err != nil {
				unauthorized()
				return
			}

			principal := domain.Principal{User: user, Role: role}
			if user.AccountID != "" {
				account, err := st.Accounts().GetAccountByID(ctx, user.AccountID)
				if err != nil {
					unauthorized()
					return
				}
				principal.Account = &account
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, principalKey{}, principal)))
		})
	}
}
