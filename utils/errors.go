package utils

import (
	"context"
	"errors"
	"net/http"
)

type ErrorKind string

const (
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindValidation        ErrorKind = "VALIDATION"
	KindInvalidState      ErrorKind = "INVALID_STATE"
	KindInvalidTransition ErrorKind = "INVALID_TRANSITION"
	KindConflict          ErrorKind = "CONFLICT"
	KindForbidden         ErrorKind = "FORBIDDEN"
	KindUnauthorized      ErrorKind = "UNAUTHORIZED"
)

// AppError is a typed failure surfaced to callers with a human-readable reason.
type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches any AppError of the same kind, so errors.Is(err, utils.ErrNotFound) works.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound          = &AppError{Kind: KindNotFound}
	ErrValidation        = &AppError{Kind: KindValidation}
	ErrInvalidState      = &AppError{Kind: KindInvalidState}
	ErrInvalidTransition = &AppError{Kind: KindInvalidTransition}
	ErrConflict          = &AppError{Kind: KindConflict}
	ErrForbidden         = &AppError{Kind: KindForbidden}
	ErrUnauthorized      = &AppError{Kind: KindUnauthorized}
)

func NotFound(msg string) error          { return &AppError{Kind: KindNotFound, Message: msg} }
func Validation(msg string) error        { return &AppError{Kind: KindValidation, Message: msg} }
func InvalidState(msg string) error      { return &AppError{Kind: KindInvalidState, Message: msg} }
func InvalidTransition(msg string) error { return &AppError{Kind: KindInvalidTransition, Message: msg} }
func Conflict(msg string) error          { return &AppError{Kind: KindConflict, Message: msg} }
func Forbidden(msg string) error         { return &AppError{Kind: KindForbidden, Message: msg} }
func Unauthorized(msg string) error      { return &AppError{Kind: KindUnauthorized, Message: msg} }

// KindOf returns the kind of the first AppError in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// HTTPStatus maps an error onto the status code returned to clients.
func HTTPStatus(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindInvalidState, KindInvalidTransition, KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
