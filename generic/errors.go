/*
errors.go - Centralized error types for the planning engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Adapters (CSV, SQLite, HTTP) wrap these errors with additional context.

ERROR CATEGORIES:
  1. Schema errors - A record set lacks required fields
  2. Integrity errors - References that do not resolve to exactly one record
  3. Parse errors - Dates outside the strict ISO form
  4. Config errors - Rule or locale settings that cannot be used

USAGE:
  Callers branch with errors.Is / errors.As:

    var missing *generic.MissingColumnError
    if errors.As(err, &missing) {
        log.Error("bad input", "record_set", missing.RecordSet, "missing", missing.Missing)
    }

SEE ALSO:
  - table.go: Raises MissingColumnError
  - outreach/aggregate.go: Raises DanglingReferenceError and DuplicateKeyError
  - time.go: Raises DateParseError
*/
package generic

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingColumn is returned when a record set lacks a required field.
	ErrMissingColumn = errors.New("missing required column")

	// ErrDataIntegrity is returned when a reference does not resolve to
	// exactly one record (dangling or duplicated key).
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrDateParse is returned when a date is not in strict YYYY-MM-DD form.
	ErrDateParse = errors.New("invalid date")

	// ErrInvalidConfig is returned when rule or rendering settings are unusable.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrPlanRunNotFound is returned when an archived plan run doesn't exist.
	ErrPlanRunNotFound = errors.New("plan run not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// MissingColumnError names every required field absent from one record set.
type MissingColumnError struct {
	RecordSet string
	Missing   []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s missing columns: %s", e.RecordSet, strings.Join(e.Missing, ", "))
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}

// DanglingReferenceError reports an order item pointing at a key that is
// absent from the referenced record set.
type DanglingReferenceError struct {
	RecordSet string // set holding the reference, e.g. "order_items"
	Row       int    // 1-based data row within RecordSet
	Target    string // referenced set, e.g. "orders"
	Column    string // key column, e.g. "order_id"
	Key       string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("%s row %d: %s %q not found in %s",
		e.RecordSet, e.Row, e.Column, e.Key, e.Target)
}

func (e *DanglingReferenceError) Unwrap() error {
	return ErrDataIntegrity
}

// DuplicateKeyError reports a key that appears more than once in a set
// where it must be unique, making references to it ambiguous.
type DuplicateKeyError struct {
	RecordSet string
	Column    string
	Key       string
	Rows      []int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s: %s %q is not unique (rows %v)", e.RecordSet, e.Column, e.Key, e.Rows)
}

func (e *DuplicateKeyError) Unwrap() error {
	return ErrDataIntegrity
}

// DateParseError reports a date string that failed strict ISO parsing.
type DateParseError struct {
	Field string
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("%s: %q is not a YYYY-MM-DD date", e.Field, e.Value)
}

func (e *DateParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDateParse}
	}
	return []error{ErrDateParse, e.Err}
}

// ConfigError reports an unusable setting.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to caller-supplied parameters.
func IsClientError(err error) bool {
	return errors.Is(err, ErrDateParse) ||
		errors.Is(err, ErrInvalidConfig)
}

// IsDataError returns true if the stored or supplied record sets are unusable.
func IsDataError(err error) bool {
	return errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrDataIntegrity)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlanRunNotFound)
}
