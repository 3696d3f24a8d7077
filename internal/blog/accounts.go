package blog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"clubsite/internal/identity"
	"clubsite/internal/models"
	"clubsite/internal/policy"
)

// Registration is the input of Register.
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register creates a member account. A taken email yields ErrConflict.
func (s *Service) Register(ctx context.Context, in Registration) (*models.Account, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	a, err := s.accounts.Create(ctx, &models.Account{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     in.Email,
		Role:      models.RoleMember,
	}, in.Password)
	if err != nil {
		return nil, storeErr("register", err)
	}

	slog.Info("account registered", "account_id", a.ID, "name", a.FullName())
	return a, nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords
// both yield ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	a, err := s.accounts.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, storeErr("authenticate", err)
	}
	if a == nil || !s.accounts.CheckPassword(a, password) {
		return nil, fmt.Errorf("authenticate: %w", ErrUnauthorized)
	}
	return a, nil
}

// Account returns an account by id.
func (s *Service) Account(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	a, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find account", err)
	}
	if a == nil {
		return nil, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	return a, nil
}

// ListAccounts returns every account to actors allowed to manage roles.
func (s *Service) ListAccounts(ctx context.Context, actor *identity.Actor) ([]models.Account, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if !s.policy.CanAssignRole(actor.Role) {
		return nil, fmt.Errorf("list accounts: %w", ErrForbidden)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, storeErr("list accounts", err)
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	return accounts, nil
}

// AssignRole changes an account's role. Permission is checked before the
// target is looked up. Actors may change their own role; the change is
// logged so it can be audited.
func (s *Service) AssignRole(ctx context.Context, actor *identity.Actor, id uuid.UUID, role models.Role) (*models.Account, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if !s.policy.CanAssignRole(actor.Role) {
		return nil, fmt.Errorf("assign role: %w", ErrForbidden)
	}
	if !role.Valid() {
		return nil, &ValidationError{Errors: map[string]string{"role": "Unknown role."}}
	}
	if id == uuid.Nil {
		return nil, fmt.Errorf("assign role: %w", ErrNotFound)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	a, err := s.accounts.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, storeErr("assign role", err)
	}
	if a == nil {
		return nil, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}

	if id == actor.ID {
		slog.Warn("actor changed own role", "account_id", id, "role", role)
	}
	slog.Info("role assigned", "account_id", id, "role", role, "actor_id", actor.ID)
	return a, nil
}

// Permissions lists the privileged actions the actor may take on content
// owned by someone else. Anonymous callers get none.
func (s *Service) Permissions(actor *identity.Actor) []policy.Action {
	if actor == nil {
		return []policy.Action{}
	}
	return s.policy.Allowed(actor.Role, false)
}
