package blog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"clubsite/internal/store"
)

// Failure kinds returned by Service. Callers match them with errors.Is.
var (
	ErrUnauthorized       = errors.New("not signed in")
	ErrForbidden          = errors.New("not permitted")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("invalid input")
	ErrConflict           = errors.New("already exists")
	ErrBackendUnavailable = errors.New("content store unavailable")
)

// ValidationError carries one message per offending field. It matches
// ErrValidation.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e.Errors[f]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Is reports ErrValidation as a match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// validator collects field errors, keeping the first message per field.
type validator struct {
	errors map[string]string
}

func newValidator() *validator {
	return &validator{errors: make(map[string]string)}
}

func (v *validator) check(ok bool, field, message string) {
	if ok {
		return
	}
	if _, seen := v.errors[field]; !seen {
		v.errors[field] = message
	}
}

func (v *validator) err() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}

// storeErr classifies a repository failure. Uniqueness violations become
// ErrConflict; anything unrecognised, deadlines included, is reported as
// ErrBackendUnavailable with the cause kept in the chain.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: timed out", op, ErrBackendUnavailable)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrBackendUnavailable, err)
	}
}
