package middlewares_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/examdesk/internal"
	"github.com/dmitrymomot/examdesk/middlewares"
)

func TestPanicError(t *testing.T) {
	t.Parallel()

	err := &middlewares.PanicError{Value: 42}
	require.Equal(t, "panic: 42", err.Error())

	wrapped := fmt.Errorf("handler: %w", err)
	require.True(t, middlewares.IsPanicError(wrapped))
	pe, ok := middlewares.AsPanicError(wrapped)
	require.True(t, ok)
	require.Equal(t, 42, pe.Value)

	require.False(t, middlewares.IsPanicError(errors.New("plain")))
}

func TestTimeoutError(t *testing.T) {
	t.Parallel()

	err := &middlewares.TimeoutError{Duration: 2 * time.Second}
	require.Equal(t, "request exceeded 2s", err.Error())

	wrapped := fmt.Errorf("handler: %w", err)
	require.True(t, middlewares.IsTimeoutError(wrapped))
	te, ok := middlewares.AsTimeoutError(wrapped)
	require.True(t, ok)
	require.Equal(t, 2*time.Second, te.Duration)

	_, ok = middlewares.AsTimeoutError(errors.New("plain"))
	require.False(t, ok)
}

func TestStatusCode(t *testing.T) {
	t.Parallel()

	timeout := fmt.Errorf("render: %w", &middlewares.TimeoutError{Duration: time.Second})
	require.Equal(t, http.StatusServiceUnavailable, internal.StatusCode(timeout))
	require.Equal(t, http.StatusInternalServerError, internal.StatusCode(&middlewares.PanicError{Value: "x"}))
	require.Equal(t, http.StatusNotFound, internal.StatusCode(internal.ErrNotFound("")))
}
