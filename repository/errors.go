package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound means the operation targeted a key that does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is the parent of every unique-constraint violation.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrImmutableKey is returned when an update tries to change an item id.
	ErrImmutableKey = errors.New("item id cannot be changed")

	ErrDuplicateUsername = fmt.Errorf("%w: username already exists", ErrDuplicateKey)
	ErrDuplicateEmail    = fmt.Errorf("%w: email already registered", ErrDuplicateKey)
	ErrDuplicateItem     = fmt.Errorf("%w: item id already exists", ErrDuplicateKey)
)

// ValidationError reports missing or malformed input caught before any
// statement is issued.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// InvalidFormatError reports a numeric field that could not be parsed or is out
// of range.
type InvalidFormatError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidFormatError) Error() string {
	msg := fmt.Sprintf("invalid %s %q", e.Field, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidFormatError) Unwrap() error { return e.Err }

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Reason: "required"}
	}
	return nil
}

// constraintColumn returns the "table.column" named by a SQLite constraint
// violation, or "" if err is not one.
func constraintColumn(err error) string {
	var se sqlite3.Error
	if !errors.As(err, &se) || se.Code != sqlite3.ErrConstraint {
		return ""
	}
	if se.ExtendedCode != sqlite3.ErrConstraintPrimaryKey && se.ExtendedCode != sqlite3.ErrConstraintUnique {
		return ""
	}
	// Message shape: "UNIQUE constraint failed: users.email"
	msg := se.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return strings.TrimSpace(msg[i+2:])
	}
	return msg
}
