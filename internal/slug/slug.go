// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives URL-safe identifiers from titles and classifies
// path parameters as either numeric ids or slugs.
package slug

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// nonAlphanumeric matches every run of characters outside [a-z0-9].
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// numericID matches a path segment made only of decimal digits.
	numericID = regexp.MustCompile(`^\d+$`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
//
// The result is deterministic and contains only [a-z0-9-] with no leading,
// trailing or doubled hyphens. Generate does not disambiguate collisions.
func Generate(s string) string {
	result := strings.ToLower(s)
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Identifier is a classified post path parameter.
type Identifier struct {
	// IsID is true when the parameter was made only of digits.
	IsID bool
	// ID is the parsed numeric id. Zero when IsID is false, or when the
	// digits overflow int64 (such an id cannot match any row).
	ID int64
	// Slug is the raw parameter when IsID is false.
	Slug string
}

// Classify decides whether a path parameter names a post by id or by slug.
// A parameter is an id if and only if it is entirely decimal digits; every
// other string, including mixed ones like "2026-recap", is a slug.
func Classify(param string) Identifier {
	if numericID.MatchString(param) {
		id, err := strconv.ParseInt(param, 10, 64)
		if err != nil {
			// Out of range: still an id lookup, just one that cannot match.
			return Identifier{IsID: true}
		}
		return Identifier{IsID: true, ID: id}
	}
	return Identifier{Slug: param}
}

func (id Identifier) String() string {
	if id.IsID {
		return "id:" + strconv.FormatInt(id.ID, 10)
	}
	return "slug:" + id.Slug
}
