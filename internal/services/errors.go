package services

import "errors"

// Error kinds. Handlers map them to HTTP statuses.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error carries a user-facing detail alongside its kind.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string { return e.Detail }
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func notFound(resource string) error   { return newError(ErrNotFound, resource+" not found") }
func forbidden(detail string) error    { return newError(ErrForbidden, detail) }
func conflict(detail string) error     { return newError(ErrConflict, detail) }
func badState(detail string) error     { return newError(ErrInvalidState, detail) }
func invalid(detail string) error      { return newError(ErrValidation, detail) }
func unauthorized(detail string) error { return newError(ErrUnauthorized, detail) }
