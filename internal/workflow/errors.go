// Package workflow implements the program/screening lifecycle rules: the two
// state machines, the resolution of program-scoped roles from relationship
// data, and the permission table that decides whether an actor may perform an
// action on an entity in its current state.  It is pure: functions here read
// snapshots and return proposed next snapshots or typed errors, and never
// touch the database.
package workflow

import (
	"errors"
	"fmt"
)

// Kind classifies a workflow failure so that handlers can map it onto an
// HTTP status and callers can decide whether to retry.
type Kind string

const (
	KindUnauthenticated   Kind = "UNAUTHENTICATED"    // no valid actor
	KindForbidden         Kind = "FORBIDDEN"          // role or ownership denial
	KindInvalidTransition Kind = "INVALID_TRANSITION" // state or phase guard failed
	KindValidation        Kind = "VALIDATION"         // malformed field value
	KindConflict          Kind = "CONFLICT"           // optimistic write race or duplicate
	KindNotFound          Kind = "NOT_FOUND"          // entity does not exist
)

// Error carries a Kind plus a human-readable reason.  The reason is specific
// enough for a UI to explain the denial ("only the assigned staff member can
// review this screening" rather than a bare 403).
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Message }

// NewError builds an Error with a formatted message.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Convenience constructors for the common kinds.
func Unauthenticated(format string, args ...any) *Error {
	return NewError(KindUnauthenticated, format, args...)
}
func Forbidden(format string, args ...any) *Error { return NewError(KindForbidden, format, args...) }
func InvalidTransition(format string, args ...any) *Error {
	return NewError(KindInvalidTransition, format, args...)
}
func Validation(format string, args ...any) *Error { return NewError(KindValidation, format, args...) }
func Conflict(format string, args ...any) *Error   { return NewError(KindConflict, format, args...) }
func NotFound(format string, args ...any) *Error   { return NewError(KindNotFound, format, args...) }

// KindOf extracts the Kind from err, or an empty Kind when err is not a
// workflow error.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return ""
}

// IsKind reports whether err is a workflow error of the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }
