// Package http exposes the identity services over a JSON API. Routing uses
// the standard mux with method patterns; cross-cutting behaviour (request
// logging, rate limits, authentication) is composed from middleware.
package http

import (
	"net/http"

	"github.com/atticlabs/attic-auth/internal/identity/service"
	"github.com/atticlabs/attic-auth/internal/identity/store"
	"github.com/atticlabs/attic-auth/pkg/httpx"
	"github.com/atticlabs/attic-auth/pkg/jwtx"
)

type Router struct {
	Mux *http.ServeMux

	Accounts *service.AccountService
	Auth     *service.AuthService
	Users    *service.UserService

	Store  store.Store
	Tokens *jwtx.Codec

	middlewares []httpx.Middleware
}

func NewRouter(mux *http.ServeMux, mws ...httpx.Middleware) *Router {
	return &Router{Mux: mux, middlewares: mws}
}

func (router *Router) handle(pattern string, h http.Handler, mws ...httpx.Middleware) {
	router.Mux.Handle(pattern, httpx.Chain(h, append(router.middlewares, mws...)...))
}

// ApplyRoutes registers every endpoint. Credential and token endpoints sit
// behind the strict per-IP limit; authenticated writes get the moderate
// one.
func (router *Router) ApplyRoutes() {
	strict := httpx.RateLimitByIP(httpx.StrictLimit)
	moderate := httpx.RateLimitByIP(httpx.ModerateLimit)
	lenient := httpx.RateLimitByIP(httpx.LenientLimit)
	authed := RequirePrincipal(router.Tokens, router.Store)

	router.handle("POST /api/accounts/create-account", http.HandlerFunc(router.handleCreateAccount), strict)
	router.handle("POST /api/accounts/create-superuser", http.HandlerFunc(router.handleCreateSuperuser), strict)
	router.handle("POST /api/accounts/login", http.HandlerFunc(router.handleLogin), strict)
	router.handle("POST /api/accounts/forgot-password", http.HandlerFunc(router.handleForgotPassword), strict)
	router.handle("POST /api/accounts/verify-reset-token", http.HandlerFunc(router.handleVerifyResetToken), strict)
	router.handle("POST /api/accounts/set-password", http.HandlerFunc(router.handleSetPassword), strict)

	router.handle("POST /api/users/add-user", http.HandlerFunc(router.handleAddUser), moderate, authed)
	router.handle("GET /api/users/user", http.HandlerFunc(router.handleGetUser), lenient, authed)
	router.handle("GET /api/users/members", http.HandlerFunc(router.handleListMembers), lenient, authed)
	router.handle("DELETE /api/users/delete", http.HandlerFunc(router.handleDeleteUser), moderate, authed)

	router.handle("GET /livez", http.HandlerFunc(router.handleLivez), lenient)
	router.handle("GET /readyz", http.HandlerFunc(router.handleReadyz), lenient)
}
