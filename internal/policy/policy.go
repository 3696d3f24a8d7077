// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package policy decides which mutating actions an actor may perform.
// Every rule is a threshold on the ordered role hierarchy; nothing here
// touches storage, so callers look up ownership before asking.
package policy

import (
	"fmt"

	"clubsite/internal/models"
)

// Action names a mutating operation gated by the policy.
type Action string

const (
	ActionUpdatePost     Action = "update_post"
	ActionDeletePost     Action = "delete_post"
	ActionCreateCategory Action = "create_category"
	ActionAssignRole     Action = "assign_role"
)

// Policy holds the minimum role for each privileged action.
type Policy struct {
	// ModerateThreshold is the lowest role that may edit or delete posts
	// written by someone else.
	ModerateThreshold models.Role
	// CategoryThreshold is the lowest role that may create categories.
	CategoryThreshold models.Role
	// RoleAdminThreshold is the lowest role that may reassign roles.
	RoleAdminThreshold models.Role
}

// Default returns the club's standard thresholds: communications director
// moderates content, co-president manages categories, president manages
// roles.
func Default() Policy {
	return Policy{
		ModerateThreshold:  models.RoleCommunicationsDirector,
		CategoryThreshold:  models.RoleCoPresident,
		RoleAdminThreshold: models.RolePresident,
	}
}

// Validate rejects thresholds outside the role hierarchy.
func (p Policy) Validate() error {
	for name, r := range map[string]models.Role{
		"moderate":   p.ModerateThreshold,
		"category":   p.CategoryThreshold,
		"role admin": p.RoleAdminThreshold,
	} {
		if !r.Valid() {
			return fmt.Errorf("policy: invalid %s threshold %d", name, int(r))
		}
	}
	return nil
}

// CanModifyPost reports whether an actor may update or delete a post.
// Authors may always change their own posts.
func (p Policy) CanModifyPost(role models.Role, isAuthor bool) bool {
	return isAuthor || p.CanModerate(role)
}

// CanModerate reports whether the role may change other people's posts.
func (p Policy) CanModerate(role models.Role) bool {
	return role.AtLeast(p.ModerateThreshold)
}

// CanCreateCategory reports whether an actor may add a category.
func (p Policy) CanCreateCategory(role models.Role) bool {
	return role.AtLeast(p.CategoryThreshold)
}

// CanAssignRole reports whether an actor may change account roles. The
// rule does not stop an actor from changing their own role.
func (p Policy) CanAssignRole(role models.Role) bool {
	return role.AtLeast(p.RoleAdminThreshold)
}

// Allowed lists the privileged actions the role may perform on a post it
// does or does not own, for clients that hide controls up front.
func (p Policy) Allowed(role models.Role, isAuthor bool) []Action {
	out := []Action{}
	if p.CanModifyPost(role, isAuthor) {
		out = append(out, ActionUpdatePost, ActionDeletePost)
	}
	if p.CanCreateCategory(role) {
		out = append(out, ActionCreateCategory)
	}
	if p.CanAssignRole(role) {
		out = append(out, ActionAssignRole)
	}
	return out
}
