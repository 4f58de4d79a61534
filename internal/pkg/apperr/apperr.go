package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the single error type business logic raises. Handlers never write
// status codes themselves; the HTTP layer converts an *Error to the response
// envelope exactly once.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

func NotFound(resource string, id interface{}) *Error {
	return New(http.StatusNotFound, fmt.Sprintf("%s %v not found", resource, id))
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

func TooManyRequests(message string) *Error {
	return New(http.StatusTooManyRequests, message)
}

func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

// From returns err as an *Error, wrapping unexpected errors as a 500 without
// leaking their text to clients.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("internal server error")
}
