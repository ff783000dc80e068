package session

import "errors"

var (
	// ErrNotConfigured means a handler touched the session on an app
	// without a session store.
	ErrNotConfigured = errors.New("session: no store configured")
	ErrNotFound      = errors.New("session: not found")
	ErrExpired       = errors.New("session: expired")
	// ErrInvalidToken covers empty and malformed tokens.
	ErrInvalidToken = errors.New("session: invalid token")
	ErrCorrupted    = errors.New("session: stored data cannot be decoded")
)
