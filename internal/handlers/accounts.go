package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"clubsite/internal/blog"
	"clubsite/internal/identity"
	"clubsite/internal/models"
)

// Accounts groups the role administration handlers.
type Accounts struct {
	svc *blog.Service
}

// NewAccounts creates the account handlers.
func NewAccounts(svc *blog.Service) *Accounts {
	return &Accounts{svc: svc}
}

// List handles GET /accounts.
func (h *Accounts) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context(), identity.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

// AssignRole handles PUT /accounts/{id}/role with body {"role": "treasurer"}.
func (h *Accounts) AssignRole(w http.ResponseWriter, r *http.Request) {
	// A malformed id cannot name an account; uuid.Nil reaches the service
	// so permission is still checked before the lookup fails.
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		id = uuid.Nil
	}

	var req struct {
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		// Left to the service so permission is still checked first.
		role = models.Role(-1)
	}

	acct, err := h.svc.AssignRole(r.Context(), identity.FromContext(r.Context()), id, role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"account": acct})
}
