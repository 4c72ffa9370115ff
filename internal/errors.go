package internal

import "errors"

// Domain errors surfaced to clients. All are validation failures; none are
// retried internally.
var (
	ErrNotFound     = errors.New("not found")
	ErrNoActivePlan = errors.New("no active plan")
	ErrInvalidUnit  = errors.New("unit key not part of the current plan")
	ErrOutOfRange   = errors.New("value out of permitted range")
	ErrConflict     = errors.New("already exists")
	ErrForbidden    = errors.New("not authorized")
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

func (e *AppError) Error() string {
	return e.Message
}
