// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is a club position. Roles are totally ordered: a higher value
// outranks every lower one.
type Role int

const (
	RoleMember Role = iota
	RoleEventCoordinator
	RoleTechnicalOfficer
	RoleCommunicationsDirector
	RoleTreasurer
	RoleCoPresident
	RolePresident
	RoleAdmin
)

// roleNames holds the wire/database spelling of each role, indexed by value.
var roleNames = [...]string{
	RoleMember:                 "member",
	RoleEventCoordinator:       "event-coordinator",
	RoleTechnicalOfficer:       "technical-officer",
	RoleCommunicationsDirector: "communications-director",
	RoleTreasurer:              "treasurer",
	RoleCoPresident:            "co-president",
	RolePresident:              "president",
	RoleAdmin:                  "admin",
}

// Roles returns every role in ascending order.
func Roles() []Role {
	out := make([]Role, len(roleNames))
	for i := range roleNames {
		out[i] = Role(i)
	}
	return out
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	return r >= RoleMember && r <= RoleAdmin
}

// AtLeast reports whether r meets or exceeds min.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// ParseRole converts a role name into a Role. Matching ignores case and
// accepts underscores or spaces in place of hyphens.
func ParseRole(s string) (Role, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	for i, name := range roleNames {
		if name == norm {
			return Role(i), nil
		}
	}
	return RoleMember, fmt.Errorf("unknown role %q", s)
}

// MarshalText encodes the role as its name.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
	return []byte(roleNames[r]), nil
}

// UnmarshalText decodes a role name.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores the role as text.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
	return roleNames[r], nil
}

// Scan reads a role stored as text.
func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	case nil:
		*r = RoleMember
		return nil
	default:
		return fmt.Errorf("scan role: unsupported type %T", src)
	}
}

// Account is a person who can sign in and author content. Accounts live in
// the profiles table and are never hard-deleted.
type Account struct {
	ID           uuid.UUID `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	Role         Role      `json:"role"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	JoinDate     time.Time `json:"join_date"`
}

// FullName joins first and last name.
func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Author returns the public identity subset embedded in posts and history.
func (a *Account) Author() *Author {
	return &Author{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		AvatarURL: a.AvatarURL,
	}
}
