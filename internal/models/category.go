// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"
)

// AllCategorySlug is the reserved slug of the virtual "All" category.
// It means "no filter" and is never stored.
const AllCategorySlug = "all"

// Category is a named grouping for posts. Categories are append-only.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// AllCategory returns the synthetic entry prepended to category lists
// used for filtering.
func AllCategory() Category {
	return Category{ID: 0, Name: "All", Slug: AllCategorySlug}
}

// IsAllCategory reports whether a filter value selects every category.
// Empty, "all" and "All" all qualify.
func IsAllCategory(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, AllCategorySlug)
}
