// Package apierr defines the error taxonomy shared by the service layer and
// the HTTP boundary. Errors carry their HTTP classification from the point of
// detection so handlers can write them without re-interpreting causes.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the class of a domain error.
type Kind string

const (
	KindValidation     Kind = "validation_error"
	KindAuthentication Kind = "authentication_error"
	KindLocked         Kind = "account_locked"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindStorage        Kind = "storage_error"
)

// Error is a domain error with an explicit HTTP status classification.
// It propagates unchanged from the service layer to the boundary.
type Error struct {
	Status  int            `json:"-"`
	Kind    Kind           `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`

	// wrapped holds the underlying cause (e.g. a database error). It is
	// logged server-side and never serialized to the caller.
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.wrapped }

// Is matches on Kind so callers can use errors.Is with the predefined
// prototype errors below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// WriteError writes the error as a JSON response. Storage errors are masked
// so internal detail never reaches the caller.
func (e *Error) WriteError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)

	body := *e
	if e.Kind == KindStorage {
		body.Message = "internal server error"
		body.Details = nil
	}
	_ = json.NewEncoder(w).Encode(&body)
}

// WithDetail attaches a key/value pair to the error's details and returns it.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// Prototype errors for errors.Is matching.
var (
	ErrValidation     = &Error{Status: http.StatusBadRequest, Kind: KindValidation}
	ErrAuthentication = &Error{Status: http.StatusUnauthorized, Kind: KindAuthentication}
	ErrLocked         = &Error{Status: http.StatusLocked, Kind: KindLocked}
	ErrNotFound       = &Error{Status: http.StatusNotFound, Kind: KindNotFound}
	ErrConflict       = &Error{Status: http.StatusConflict, Kind: KindConflict}
	ErrStorage        = &Error{Status: http.StatusInternalServerError, Kind: KindStorage}
)

// Validation builds a 400 with the full list of violations, not just the
// first one.
func Validation(message string, violations ...string) *Error {
	e := &Error{Status: http.StatusBadRequest, Kind: KindValidation, Message: message}
	if len(violations) > 0 {
		e.WithDetail("violations", violations)
	}
	return e
}

// Authentication builds a 401. The message must stay generic for login
// failures so account names cannot be enumerated.
func Authentication(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Kind: KindAuthentication, Message: message}
}

// Locked builds a 423 for accounts under an active lockout.
func Locked(message string) *Error {
	return &Error{Status: http.StatusLocked, Kind: KindLocked, Message: message}
}

// NotFound builds a 404 for a missing entity.
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Kind: KindNotFound, Message: message}
}

// Conflict builds a 409 (duplicate name, existing membership).
func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Kind: KindConflict, Message: message}
}

// Storage wraps a durable-I/O failure as a 500. The cause is retained for
// logging but never exposed to the caller.
func Storage(message string, cause error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Kind:    KindStorage,
		Message: message,
		wrapped: cause,
	}
}

// From coerces any error into an *Error. Unclassified errors are treated as
// storage failures so nothing leaks by default.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Storage("unexpected error", err)
}
