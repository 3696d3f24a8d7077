package identity

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"clubsite/internal/models"
	"clubsite/internal/session"
)

// SessionReader loads the session attached to a request.
type SessionReader interface {
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
}

// AccountFinder loads accounts by id.
type AccountFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

// Provider resolves the actor behind a request.
type Provider struct {
	sessions SessionReader
	accounts AccountFinder
}

// NewProvider creates a Provider.
func NewProvider(sessions SessionReader, accounts AccountFinder) *Provider {
	return &Provider{sessions: sessions, accounts: accounts}
}

// Resolve returns the request's actor, or nil when the request carries no
// live session. The account is reloaded so role changes apply on the next
// request; a session whose account is gone resolves to nil.
func (p *Provider) Resolve(ctx context.Context, r *http.Request) (*Actor, error) {
	data, err := p.sessions.Get(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	a, err := p.accounts.FindByID(ctx, data.AccountID)
	if err != nil {
		return nil, fmt.Errorf("resolve account: %w", err)
	}
	if a == nil {
		return nil, nil
	}
	return FromAccount(a), nil
}
