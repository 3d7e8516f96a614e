package http

import (
	"net/http"

	"github.com/atticlabs/attic-auth/pkg/httpx"
)

// handleLivez reports process liveness only.
func (router *Router) handleLivez(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz additionally checks the database connection.
func (router *Router) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := router.Store.Ping(r.Context()); err != nil {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
