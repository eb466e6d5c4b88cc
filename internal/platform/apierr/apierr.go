package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Unauthenticated(err error) *Error {
	return New(http.StatusUnauthorized, "unauthorized", err)
}

func Forbidden(err error) *Error {
	return New(http.StatusForbidden, "forbidden", err)
}

func Invalid(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

func NotFound(code string) *Error {
	return New(http.StatusNotFound, code, nil)
}

// Upstream marks blob-store or speech-service failures. The wrapped error is
// for server-side logs only; callers see the code.
func Upstream(code string, err error) *Error {
	return New(http.StatusInternalServerError, code, err)
}

// Persistence marks record-store failures.
func Persistence(code string, err error) *Error {
	return New(http.StatusInternalServerError, code, err)
}

// Status resolves the HTTP status for any error, defaulting to 500.
func Status(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// CodeOf resolves the wire code for any error.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Code != "" {
		return ae.Code
	}
	return "internal_error"
}
