package core

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Sentinel error kinds. Every error leaving this package wraps exactly one of
// these, so callers can classify with errors.Is without parsing messages.
var (
	// ErrValidation marks a malformed or out-of-range request. Rejected
	// before any write; the caller can fix the input and resubmit.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a reference to a record that does not exist
	// (typically an account id).
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a duplicate unique key, e.g. an invoice number or a
	// manually supplied voucher number that is already taken.
	ErrConflict = errors.New("conflict")

	// ErrStore marks an underlying persistence failure. The enclosing unit
	// of work has been rolled back; no partial rows remain.
	ErrStore = errors.New("store failure")
)

// ErrAgentUnavailable is returned when an AI operation is requested but no
// API key was configured at startup.
var ErrAgentUnavailable = fmt.Errorf("ai agent not configured, set OPENAI_API_KEY: %w", ErrValidation)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

// storeErr wraps an underlying database error, preserving its chain alongside
// the ErrStore sentinel.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, err, ErrStore)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsClientError reports whether the error is recoverable by fixing the
// request (validation, missing reference, or duplicate key) as opposed to a
// store failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict)
}
