package http

import (
	"errors"
	"net/http"

	"github.com/atticlabs/attic-auth/internal/identity/service"
	"github.com/atticlabs/attic-auth/pkg/httpx"
	"github.com/atticlabs/attic-auth/pkg/slogx"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps service errors onto HTTP status codes. Anything unmapped
// is a 500 with the detail kept in the log rather than the response body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error()})
	case errors.Is(err, service.ErrInvalidAccountType):
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid account type"})
	case errors.Is(err, service.ErrAccountExists):
		httpx.WriteJSON(w, http.StatusConflict, errorResponse{Error: "account name already in use"})
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteJSON(w, http.StatusConflict, errorResponse{Error: "email already in use"})
	case errors.Is(err, service.ErrAccountNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, errorResponse{Error: "account not found"})
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, errorResponse{Error: "user not found"})
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
	case errors.Is(err, service.ErrTokenUsed):
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "token already used", Code: service.CodeTokenUsed})
	case errors.Is(err, service.ErrTokenExpired):
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "token expired", Code: service.CodeTokenExpired})
	case errors.Is(err, service.ErrInvalidToken):
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid token"})
	default:
		slogx.FromContext(r.Context()).Error("unhandled error", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
