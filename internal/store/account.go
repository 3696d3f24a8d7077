// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"clubsite/internal/models"
)

const accountColumns = `id, first_name, last_name, email, password_hash, role, avatar_url, join_date`

// AccountStore handles profile rows.
type AccountStore struct {
	db *sql.DB
}

// NewAccountStore creates a new AccountStore with the given database connection.
func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func scanAccount(row scanner) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(
		&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.PasswordHash,
		&a.Role, &a.AvatarURL, &a.JoinDate,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindByEmail retrieves an account by email, ignoring case. Returns nil if not found.
func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM profiles WHERE LOWER(email) = LOWER($1)`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("find account by email", err)
	}
	return a, nil
}

// FindByID retrieves an account by id. Returns nil if not found.
func (s *AccountStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM profiles WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("find account by id", err)
	}
	return a, nil
}

// List returns every account, oldest first.
func (s *AccountStore) List(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM profiles ORDER BY join_date, email`)
	if err != nil {
		return nil, wrapErr("list accounts", err)
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Create hashes the password and inserts a new account. A taken email
// yields ErrDuplicate.
func (s *AccountStore) Create(ctx context.Context, a *models.Account, password string) (*models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := scanAccount(s.db.QueryRowContext(ctx, `
		INSERT INTO profiles (first_name, last_name, email, password_hash, role, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+accountColumns,
		a.FirstName, a.LastName, a.Email, string(hash), a.Role, a.AvatarURL,
	))
	if err != nil {
		return nil, wrapErr("create account", err)
	}
	return created, nil
}

// UpdateRole sets an account's role and returns the updated row, or nil
// when the account does not exist.
func (s *AccountStore) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx,
		`UPDATE profiles SET role = $1 WHERE id = $2 RETURNING `+accountColumns, role, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("update account role", err)
	}
	return a, nil
}

// CheckPassword compares a plaintext password against the account's hash.
func (s *AccountStore) CheckPassword(a *models.Account, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}
