package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error. Every failure that reaches a client
// is reported through exactly one Kind.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindBadRequest   Kind = "bad_request"
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindTimeout      Kind = "timeout"
	KindRateLimited  Kind = "rate_limited"
	KindInternal     Kind = "internal"
)

// AppError represents an application error
type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind onto an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource), Err: err}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{Kind: KindBadRequest, Message: message, Err: err}
}

func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func Unauthorized(err error) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: "unauthorized", Err: err}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func Conflict(message string, err error) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Err: err}
}

func Timeout(operation string, err error) *AppError {
	return &AppError{Kind: KindTimeout, Message: fmt.Sprintf("%s timed out", operation), Err: err}
}

func RateLimited() *AppError {
	return &AppError{Kind: KindRateLimited, Message: "rate limit exceeded"}
}

func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "internal server error", Err: err}
}

// As extracts an *AppError from err. Errors that are not application errors
// are reported as internal.
func As(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Kind == kind
}
