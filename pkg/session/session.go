package session

import (
	"time"
)

// Session is a server-side session addressed by the cookie token.
// Values are strings so every store can persist them without type loss.
type Session struct {
	CreatedAt time.Time
	ExpiresAt time.Time

	Values map[string]string
	ID     string // Stable identifier (UUID)
	Token  string // Cookie token, rotated on login
	UserID string // Empty for anonymous sessions

	dirty bool
	isNew bool
}

// New creates a new session with the given ID and token.
func New(id, token string, expiresAt time.Time) *Session {
	return &Session{
		ID:        id,
		Token:     token,
		Values:    make(map[string]string),
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
		isNew:     true,
		dirty:     true,
	}
}

// IsAuthenticated reports whether a user is attached to the session.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != ""
}

// Set stores a value and marks the session dirty.
func (s *Session) Set(key, val string) {
	if s.Values == nil {
		s.Values = make(map[string]string)
	}
	if cur, ok := s.Values[key]; ok && cur == val {
		return
	}
	s.Values[key] = val
	s.dirty = true
}

// Get returns the value stored under key.
func (s *Session) Get(key string) (string, bool) {
	val, ok := s.Values[key]
	return val, ok
}

// Delete removes a value. The session becomes dirty only if the key existed.
func (s *Session) Delete(key string) {
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.dirty = true
	}
}

// Pop returns the value stored under key and removes it.
// Used for one-shot values such as flash messages.
func (s *Session) Pop(key string) (string, bool) {
	val, ok := s.Get(key)
	if ok {
		s.Delete(key)
	}
	return val, ok
}

// Clear drops the user and every stored value.
func (s *Session) Clear() {
	s.UserID = ""
	s.Values = make(map[string]string)
	s.dirty = true
}

// IsDirty returns true if the session has unsaved changes.
func (s *Session) IsDirty() bool {
	return s.dirty
}

// ClearDirty marks the session as saved.
func (s *Session) ClearDirty() {
	s.dirty = false
}

// MarkDirty marks the session as needing to be saved.
func (s *Session) MarkDirty() {
	s.dirty = true
}

// IsNew returns true if the session was just created.
func (s *Session) IsNew() bool {
	return s.isNew
}

// ClearNew marks the session as persisted at least once.
func (s *Session) ClearNew() {
	s.isNew = false
}

// IsExpired reports whether the session has expired at the given time.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
