// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"clubsite/internal/blog"
	"clubsite/internal/identity"
	"clubsite/internal/models"
	"clubsite/internal/session"
)

// SessionManager creates and destroys sessions. *session.Store satisfies it.
type SessionManager interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Auth groups the /auth handlers.
type Auth struct {
	svc      *blog.Service
	sessions SessionManager
}

// NewAuth creates the auth handlers.
func NewAuth(svc *blog.Service, sessions SessionManager) *Auth {
	return &Auth{svc: svc, sessions: sessions}
}

// authResponse is returned by register and login. Token may be sent back
// as a bearer token by clients that do not keep cookies.
type authResponse struct {
	Account *models.Account `json:"account"`
	Token   string          `json:"token"`
}

// Register handles POST /auth/register and signs the new member in.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	acct, err := a.svc.Register(r.Context(), blog.Registration{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, ok := a.signIn(w, r, acct)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Account: acct, Token: token})
}

// Login handles POST /auth/login.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	acct, err := a.svc.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, blog.ErrUnauthorized) {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Invalid email or password"})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, ok := a.signIn(w, r, acct)
	if !ok {
		return
	}
	slog.Info("account signed in", "account_id", acct.ID)
	writeJSON(w, http.StatusOK, authResponse{Account: acct, Token: token})
}

func (a *Auth) signIn(w http.ResponseWriter, r *http.Request, acct *models.Account) (string, bool) {
	token, err := a.sessions.Create(r.Context(), w, &session.Data{
		AccountID: acct.ID,
		Email:     acct.Email,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
		return "", false
	}
	return token, true
}

// Logout handles POST /auth/logout.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me handles GET /auth/me.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	actor := identity.FromContext(r.Context())
	if actor == nil {
		writeError(w, r, blog.ErrUnauthorized)
		return
	}

	acct, err := a.svc.Account(r.Context(), actor.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account":     acct,
		"permissions": a.svc.Permissions(actor),
	})
}
