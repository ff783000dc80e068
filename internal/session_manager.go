package internal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/examdesk/pkg/cookie"
	"github.com/dmitrymomot/examdesk/pkg/session"
)

const (
	defaultSessionCookie = "examdesk_sid"
	defaultSessionTTL    = 7 * 24 * time.Hour
)

// SessionManager moves sessions between the store and the session cookie.
type SessionManager struct {
	store      session.Store
	jar        *cookie.Jar
	now        func() time.Time
	cookieName string
	ttl        time.Duration
}

type SessionOption func(*SessionManager)

func WithSessionCookieName(name string) SessionOption {
	return func(m *SessionManager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(m *SessionManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithSessionCookieJar sets the cookie attributes (Secure, domain, ...).
func WithSessionCookieJar(jar *cookie.Jar) SessionOption {
	return func(m *SessionManager) {
		if jar != nil {
			m.jar = jar
		}
	}
}

func WithSessionClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	m := &SessionManager{
		store:      store,
		jar:        cookie.New(),
		now:        time.Now,
		cookieName: defaultSessionCookie,
		ttl:        defaultSessionTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load returns the session named by the request cookie, or nil when there is
// no cookie or the stored session is gone or expired.
func (m *SessionManager) Load(ctx context.Context, r *http.Request) (*session.Session, error) {
	token, err := m.jar.Get(r, m.cookieName)
	if err != nil || token == "" {
		return nil, nil
	}

	sess, err := m.store.Get(ctx, token)
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		return nil, nil
	case err != nil:
		return nil, err
	}
	if sess.IsExpired(m.now()) {
		_ = m.store.Delete(ctx, sess.ID)
		return nil, nil
	}
	return sess, nil
}

// Create stores a new anonymous session.
func (m *SessionManager) Create(ctx context.Context) (*session.Session, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	sess := session.New(id.String(), token, m.now().Add(m.ttl))
	if err := m.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	sess.ClearNew()
	sess.ClearDirty()
	return sess, nil
}

// Rotate issues a new token and extends the expiry.
func (m *SessionManager) Rotate(ctx context.Context, sess *session.Session) error {
	token, err := newToken()
	if err != nil {
		return err
	}
	old, oldExp := sess.Token, sess.ExpiresAt
	sess.Token = token
	sess.ExpiresAt = m.now().Add(m.ttl)
	sess.MarkDirty()

	if err := m.store.Update(ctx, sess); err != nil {
		sess.Token, sess.ExpiresAt = old, oldExp
		return err
	}
	sess.ClearDirty()
	return nil
}

// Save persists pending changes of sess.
func (m *SessionManager) Save(ctx context.Context, sess *session.Session) error {
	if sess == nil || !sess.IsDirty() {
		return nil
	}
	if err := m.store.Update(ctx, sess); err != nil {
		return err
	}
	sess.ClearDirty()
	return nil
}

// Destroy deletes sess from the store.
func (m *SessionManager) Destroy(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return nil
	}
	return m.store.Delete(ctx, sess.ID)
}

// WriteCookie sets the session cookie to sess's token.
func (m *SessionManager) WriteCookie(w http.ResponseWriter, sess *session.Session) {
	m.jar.Set(w, m.cookieName, sess.Token, int(m.ttl/time.Second))
}

// ClearCookie expires the session cookie.
func (m *SessionManager) ClearCookie(w http.ResponseWriter) {
	m.jar.Delete(w, m.cookieName)
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
