// Package apierror provides the engine's error taxonomy and the standardized
// error response structures for the API. All errors returned to clients go
// through this package to ensure consistency and to prevent leaking internal
// details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an engine error. Closed enumeration: handlers map each
// kind to a fixed HTTP status, callers can branch on it to decide whether a
// retry is safe.
type Kind string

const (
	// KindValidation — bad input shape; rejected before any transaction begins.
	KindValidation Kind = "validation"
	// KindNotFound — missing product/factura/secuencia; transaction rolled back.
	KindNotFound Kind = "not_found"
	// KindConflict — already voided, insufficient stock, allocation race; safe to retry.
	KindConflict Kind = "conflict"
	// KindStorage — commit failure, deadlock, connectivity; nothing partial persisted.
	KindStorage Kind = "storage"
)

// Error is the canonical engine error: a stable kind plus a human-readable
// message, optionally wrapping the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps an infrastructure failure. The cause stays attached for
// logging but is never serialized to clients.
func Storage(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindStorage, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind of err; unclassified errors count as storage,
// which is the safe default (rolled back, retriable, no details leaked).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// HTTPStatus maps an error kind to its response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// FromError builds the client-safe envelope for an engine error.
func FromError(err error) *APIError {
	kind := KindOf(err)
	detail := err.Error()
	if kind == KindStorage {
		// Never expose driver/transaction internals
		detail = "Error interno del servidor"
	}
	return &APIError{Detail: detail, Code: string(kind)}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
