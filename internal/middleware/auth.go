// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"clubsite/internal/identity"
)

// ActorResolver resolves the actor behind a request. *identity.Provider
// satisfies it.
type ActorResolver interface {
	Resolve(ctx context.Context, r *http.Request) (*identity.Actor, error)
}

type ctxKey int

// resolveFailedKey marks a request whose session could not be resolved
// because the identity backend failed.
const resolveFailedKey ctxKey = iota

// LoadActor resolves the request's actor and stores it in the request
// context. Downstream handlers read it with identity.FromContext.
// This middleware does NOT enforce authentication.
//
// When resolution fails the request continues without an actor so public
// reads keep working, and RequireActor reports the failure instead of 401.
func LoadActor(resolver ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := resolver.Resolve(r.Context(), r)
			if err != nil {
				slog.Warn("resolve actor failed", "error", err, "path", r.URL.Path)
				r = r.WithContext(context.WithValue(r.Context(), resolveFailedKey, true))
				next.ServeHTTP(w, r)
				return
			}

			if actor != nil {
				r = r.WithContext(identity.WithActor(r.Context(), actor))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ResolveFailed reports whether LoadActor could not resolve the request's
// session because a backend was unavailable.
func ResolveFailed(ctx context.Context) bool {
	failed, _ := ctx.Value(resolveFailedKey).(bool)
	return failed
}

// RequireActor rejects anonymous requests with a 401 JSON error, or a 500
// when the session could not be checked at all.
// Must be applied after LoadActor.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity.FromContext(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			if ResolveFailed(r.Context()) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"Content store unavailable"}`))
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}
