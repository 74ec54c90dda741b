// Package apperr defines the typed errors every handler and service in
// this module funnels through. Each error carries the HTTP status code and
// the exact message the client is allowed to see; the translation to the
// response envelope happens in one place (httpserver).
package apperr

import (
	"fmt"
	"net/http"
)

type Error struct {
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on identity so the exported sentinels below work with
// errors.Is even after wrapping via Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// Wrap keeps the public code/message and attaches an internal cause.
func Wrap(sentinel *Error, err error) *Error {
	return &Error{Code: sentinel.Code, Message: sentinel.Message, Err: err}
}

func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

var (
	ErrMissingCredentials = New(http.StatusBadRequest, "Please provide email and password")
	ErrInvalidCredentials = New(http.StatusUnauthorized, "Incorrect password or email")
	ErrNotAuthenticated   = New(http.StatusUnauthorized, "You are not logged in, please log in to get access")
	ErrForbidden          = New(http.StatusForbidden, "You do not have permission to perform this action")
	ErrInvalidResetToken  = New(http.StatusBadRequest, "Token is invalid or has expired")
	ErrNotFound           = New(http.StatusNotFound, "Resource not found")
	ErrEmailDispatch      = New(http.StatusInternalServerError, "There was an error sending the email. Try again later!")
	ErrEmailTaken         = New(http.StatusBadRequest, "A user with this email already exists")
	ErrInternal           = New(http.StatusInternalServerError, "Something went wrong")
)

// Validation builds a 400 with a field-specific message.
func Validation(message string) *Error {
	return New(http.StatusBadRequest, message)
}
