package http

import (
	"encoding/json"
	"net/http"

	"github.com/atticlabs/attic-auth/pkg/httpx"
)

type rolePayload struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

func (router *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	session, err := router.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	perms := make([]string, len(session.Role.Permissions))
	for i, p := range session.Role.Permissions {
		perms[i] = string(p)
	}
	resp := map[string]any{
		"token": session.Token,
		"user":  toUserPayload(session.User),
		"role": rolePayload{
			ID:          session.Role.ID,
			Name:        string(session.Role.Name),
			Permissions: perms,
		},
	}
	if session.Account != nil {
		resp["account"] = toAccountPayload(*session.Account)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (router *Router) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := router.Auth.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "if the email exists, a reset link has been sent",
	})
}

// handleVerifyResetToken is the read-only preflight the password form calls
// before rendering. It always answers 200 with a validity flag.
func (router *Router) handleVerifyResetToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	status, err := router.Auth.VerifyResetToken(r.Context(), req.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := map[string]any{"valid": status.Valid}
	if status.Code != "" {
		resp["code"] = status.Code
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (router *Router) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := router.Auth.SetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "password updated",
	})
}
