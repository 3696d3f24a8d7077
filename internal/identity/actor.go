// Package identity resolves who is making a request. The rest of the
// service only depends on the actor's id and current role.
package identity

import (
	"context"

	"github.com/google/uuid"

	"clubsite/internal/models"
)

// Actor is the authenticated account performing a request.
type Actor struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      models.Role `json:"role"`
}

// FromAccount builds an actor from an account row.
func FromAccount(a *models.Account) *Actor {
	return &Actor{
		ID:        a.ID,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      a.Role,
	}
}

type contextKey struct{}

// WithActor returns a copy of ctx carrying the actor.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// FromContext returns the actor stored in ctx, or nil for anonymous requests.
func FromContext(ctx context.Context) *Actor {
	a, _ := ctx.Value(contextKey{}).(*Actor)
	return a
}
