package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// PanicError is what Recover returns for a panicking handler. Stack is nil
// when stack capture is disabled.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// HTTPStatus makes the error page answer 500.
func (e *PanicError) HTTPStatus() int { return http.StatusInternalServerError }

// TimeoutError is what Timeout returns once the deadline passed.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request exceeded %s", e.Duration)
}

// HTTPStatus makes the error page answer 503.
func (e *TimeoutError) HTTPStatus() int { return http.StatusServiceUnavailable }

func IsPanicError(err error) bool {
	_, ok := AsPanicError(err)
	return ok
}

func IsTimeoutError(err error) bool {
	_, ok := AsTimeoutError(err)
	return ok
}

func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	ok := errors.As(err, &pe)
	return pe, ok
}

func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	ok := errors.As(err, &te)
	return te, ok
}
