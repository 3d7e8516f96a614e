package http

import (
	"encoding/json"
	"net/http"

	"github.com/atticlabs/attic-auth/internal/identity/domain"
	"github.com/atticlabs/attic-auth/pkg/httpx"
)

func (router *Router) handleAddUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r.Context())
	if !ok {
		httpx.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Role      string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, err := router.Users.AddUser(r.Context(), principal,
		req.FirstName, req.LastName, req.Email, domain.RoleName(req.Role))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"user": toUserPayload(user),
	})
}

// handleGetUser returns the caller's own profile with role and account
// resolved.
func (router *Router) handleGetUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r.Context())
	if !ok {
		httpx.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	profile, err := router.Users.GetProfile(r.Context(), principal.User.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	perms := make([]string, len(profile.Role.Permissions))
	for i, p := range profile.Role.Permissions {
		perms[i] = string(p)
	}
	resp := map[string]any{
		"user": toUserPayload(profile.User),
		"role": rolePayload{
			ID:          profile.Role.ID,
			Name:        string(profile.Role.Name),
			Permissions: perms,
		},
	}
	if profile.Account != nil {
		resp["account"] = toAccountPayload(*profile.Account)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (router *Router) handleListMembers(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r.Context())
	if !ok {
		httpx.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	members, err := router.Users.ListAccountUsers(r.Context(), principal)
	if err != nil {
		writeError(w, r, err)
		return
	}

	type memberPayload struct {
		userPayload
		Role string `json:"role"`
	}
	out := make([]memberPayload, 0, len(members))
	for _, m := range members {
		out = append(out, memberPayload{
			userPayload: toUserPayload(m.User),
			Role:        string(m.Role.Name),
		})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"members": out,
	})
}

func (router *Router) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r.Context())
	if !ok {
		httpx.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	// Self-service deletion sends no body at all.
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	deletedID, err := router.Users.DeleteUser(r.Context(), principal, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"deleted_id": deletedID,
	})
}
