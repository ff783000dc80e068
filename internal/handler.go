package internal

import (
	"context"
	"io"
)

// Handler declares routes on a router.
type Handler interface {
	Routes(r Router)
}

// HandlerFunc handles a request. A returned error is passed to the app's
// ErrorHandler unless a response was already written.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders errors returned from handlers.
type ErrorHandler func(c Context, err error) error

// Component is anything renderable; templ.Component satisfies it.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}
