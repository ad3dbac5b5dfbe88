package apperr

import (
	"errors"
	"net/http"
)

// Kind is the machine-distinguishable class of an application error.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindInsufficientStock Kind = "insufficient_stock"
	KindValidation        Kind = "validation"
	KindUnauthorized      Kind = "unauthorized"
	KindServer            Kind = "server_error"
)

// Error carries a kind plus a human-readable detail. Services return
// these; the HTTP boundary translates them once.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the kind to its HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInsufficientStock:
		return http.StatusConflict
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func NotFound(detail string) *Error {
	return &Error{Kind: KindNotFound, Detail: detail}
}

func Conflict(detail string) *Error {
	return &Error{Kind: KindConflict, Detail: detail}
}

func InsufficientStock(detail string) *Error {
	return &Error{Kind: KindInsufficientStock, Detail: detail}
}

func Validation(detail string) *Error {
	return &Error{Kind: KindValidation, Detail: detail}
}

func Unauthorized(detail string) *Error {
	return &Error{Kind: KindUnauthorized, Detail: detail}
}

// Server wraps an unexpected failure, typically a database error.
func Server(err error) *Error {
	return &Error{Kind: KindServer, Detail: "unexpected server error", Err: err}
}

// KindOf returns the kind of err, or KindServer when err is not an
// application error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
