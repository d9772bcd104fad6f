package services

import (
	"errors"
	"strings"
)

// Sentinel errors for explicit error handling
// These errors allow callers to distinguish between different failure modes
// using errors.Is() instead of string matching

var (
	// ErrUnknownKind indicates an unsupported integration kind
	ErrUnknownKind = errors.New("unknown integration kind")

	// ErrInvalidCredential indicates the connectivity probe rejected a candidate credential
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrInvalidCredentials indicates admin authentication failed
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrFirstUserExists indicates the first-run bootstrap path is closed
	ErrFirstUserExists = errors.New("an admin user already exists")

	// ErrNotFound indicates the addressed resource does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a unique field is already taken
	ErrConflict = errors.New("already exists")

	// ErrMailerNotConfigured indicates no SMTP settings have been saved yet
	ErrMailerNotConfigured = errors.New("mail transport is not configured")
)

// ValidationError reports missing or malformed request fields. It is raised
// before any side effect happens.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	if e.Reason == "" {
		return "missing required fields: " + strings.Join(e.Fields, ", ")
	}
	return e.Reason + ": " + strings.Join(e.Fields, ", ")
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
