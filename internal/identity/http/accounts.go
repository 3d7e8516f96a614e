package http

import (
	"encoding/json"
	"net/http"

	"github.com/atticlabs/attic-auth/internal/identity/domain"
	"github.com/atticlabs/attic-auth/internal/identity/service"
	"github.com/atticlabs/attic-auth/pkg/httpx"
)

type userPayload struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	AccountID string `json:"account_id,omitempty"`
	Status    string `json:"status"`
}

func toUserPayload(u domain.User) userPayload {
	return userPayload{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		AccountID: u.AccountID,
		Status:    string(u.Status),
	}
}

type accountPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func toAccountPayload(a domain.Account) accountPayload {
	return accountPayload{ID: a.ID, Name: a.Name, Active: a.Active}
}

// handleCreateAccount dispatches on the requested account type: enterprise
// requests provision a tenant account, creator requests provision a
// standalone user directly.
func (router *Router) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountType string `json:"account_type"`
		AccountName string `json:"account_name"`
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		Email       string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	switch req.AccountType {
	case domain.AccountTypeEnterprise:
		account, err := router.Accounts.CreateEnterpriseAccount(r.Context(), req.AccountName)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, map[string]any{
			"account": toAccountPayload(account),
		})

	case domain.AccountTypeCreator:
		inv, err := router.Accounts.InviteCreator(r.Context(), req.FirstName, req.LastName, req.Email)
		if err != nil {
			writeError(w, r, err)
			return
		}
		// The plaintext temp password is disclosed exactly once, here.
		httpx.WriteJSON(w, http.StatusCreated, map[string]any{
			"user":          toUserPayload(inv.User),
			"temp_password": inv.TempPassword,
		})

	default:
		writeError(w, r, service.ErrInvalidAccountType)
	}
}

// handleCreateSuperuser provisions the enterprise admin for an existing
// account named in the request.
func (router *Router) handleCreateSuperuser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		Email       string `json:"email"`
		AccountName string `json:"account_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	inv, err := router.Accounts.CreateSuperuser(r.Context(), req.FirstName, req.LastName, req.Email, req.AccountName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"user":          toUserPayload(inv.User),
		"temp_password": inv.TempPassword,
	})
}
