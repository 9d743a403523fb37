// Package errs defines the closed set of failures the bookmark API can report
// and the single JSON shape they are rendered with.
//
// Every failure reaching a client is one of four kinds:
//   - UNAUTHORIZED: missing, malformed, expired or unknown-user tokens.
//   - VALIDATION_FAILED: request body could not be bound or broke a field rule.
//   - NOT_FOUND: the bookmark does not exist for the caller.
//   - STORE_ERROR: anything else; the cause is logged, never sent.
package errs

import (
	"errors"
	"net/http"
)

// Kind is a machine-friendly error code.
type Kind string

const (
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindValidation   Kind = "VALIDATION_FAILED"
	KindNotFound     Kind = "NOT_FOUND"
	KindStore        Kind = "STORE_ERROR"
)

// MsgBookmarkNotFound is the message carried by every NOT_FOUND error.
const MsgBookmarkNotFound = "Bookmark not found."

// FieldError describes a single broken field rule.
//
//	{ "field": "url", "error": "Must be a valid URL" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Error is the only error type rendered to clients.
type Error struct {
	Kind    Kind         `json:"code"`
	Status  int          `json:"status"`
	Message string       `json:"error"`
	ID      *string      `json:"id,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`

	cause error
}

// Error returns the client-facing message.
func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *Error) Unwrap() error {
	return e.cause
}

// NewUnauthorized reports a failed authentication.
func NewUnauthorized(cause error) *Error {
	return &Error{
		Kind:    KindUnauthorized,
		Status:  http.StatusUnauthorized,
		Message: http.StatusText(http.StatusUnauthorized),
		cause:   cause,
	}
}

// NewValidation reports broken field rules with a 400 status.
func NewValidation(fields []FieldError) *Error {
	return &Error{
		Kind:    KindValidation,
		Status:  http.StatusBadRequest,
		Message: "Validation failed",
		Fields:  fields,
	}
}

// NewMalformed reports a request body that could not be bound at all.
// status is usually 400, but 413 and 415 are kept for oversized or
// unsupported bodies.
func NewMalformed(status int, msg string) *Error {
	return &Error{
		Kind:    KindValidation,
		Status:  status,
		Message: msg,
	}
}

// NewNotFound reports a bookmark the caller does not own or that does not exist.
// The requested id is echoed back, even when empty.
func NewNotFound(id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Status:  http.StatusNotFound,
		Message: MsgBookmarkNotFound,
		ID:      &id,
	}
}

// NewStore wraps an infrastructure failure. The cause is kept for logging only.
func NewStore(cause error) *Error {
	return &Error{
		Kind:    KindStore,
		Status:  http.StatusInternalServerError,
		Message: http.StatusText(http.StatusInternalServerError),
		cause:   cause,
	}
}

// From classifies any error into the taxonomy. Errors that are not already
// *Error become STORE_ERROR.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewStore(err)
}

// KindOf returns the kind err classifies as.
func KindOf(err error) Kind {
	return From(err).Kind
}
