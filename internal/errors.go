package internal

import (
	"errors"
	"net/http"
)

// HTTPError is an error that carries the status code to respond with.
type HTTPError struct {
	Err       error
	Message   string
	ErrorCode string
	Code      int
}

func (e *HTTPError) Error() string { return e.Message }

func (e *HTTPError) Unwrap() error { return e.Err }

// NewHTTPError builds an HTTPError; an empty message falls back to the status text.
func NewHTTPError(code int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(code)
	}
	return &HTTPError{Code: code, Message: message}
}

// WithCause attaches the underlying error for logging.
func (e *HTTPError) WithCause(err error) *HTTPError {
	e.Err = err
	return e
}

// WithErrorCode sets a stable code, also used as a translation key.
func (e *HTTPError) WithErrorCode(code string) *HTTPError {
	e.ErrorCode = code
	return e
}

func ErrBadRequest(message string) *HTTPError { return NewHTTPError(http.StatusBadRequest, message) }
func ErrForbidden(message string) *HTTPError  { return NewHTTPError(http.StatusForbidden, message) }
func ErrNotFound(message string) *HTTPError   { return NewHTTPError(http.StatusNotFound, message) }
func ErrInternal(message string) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message)
}

// AsHTTPError finds an HTTPError in err's chain.
func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}

// StatusCode returns the status carried by err, or 500. Besides HTTPError
// any error in the chain with an HTTPStatus() int method is honoured.
func StatusCode(err error) int {
	if he, ok := AsHTTPError(err); ok {
		return he.Code
	}
	var hs interface{ HTTPStatus() int }
	if errors.As(err, &hs) {
		return hs.HTTPStatus()
	}
	return http.StatusInternalServerError
}
