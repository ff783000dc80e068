// Package cookie reads and writes plain and HMAC-signed cookies with shared
// attributes (path, domain, Secure, HttpOnly, SameSite).
package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrNoSecret  = errors.New("cookie: secret must be at least 32 bytes")
	ErrSignature = errors.New("cookie: invalid signature")
)

// Jar applies one set of attributes to every cookie it writes.
type Jar struct {
	secret   []byte
	domain   string
	path     string
	secure   bool
	httpOnly bool
	sameSite http.SameSite
}

type Option func(*Jar)

// New returns a Jar with Path "/", HttpOnly and SameSite=Lax.
func New(opts ...Option) *Jar {
	j := &Jar{path: "/", httpOnly: true, sameSite: http.SameSiteLaxMode}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// WithSecret enables signed cookies. Secrets shorter than 32 bytes are ignored.
func WithSecret(secret string) Option {
	return func(j *Jar) {
		if len(secret) >= 32 {
			j.secret = []byte(secret)
		}
	}
}

func WithDomain(domain string) Option { return func(j *Jar) { j.domain = domain } }
func WithSecure(secure bool) Option   { return func(j *Jar) { j.secure = secure } }
func WithHTTPOnly(on bool) Option     { return func(j *Jar) { j.httpOnly = on } }

func WithSameSite(s http.SameSite) Option { return func(j *Jar) { j.sameSite = s } }

// Get returns the raw value of the named cookie.
func (j *Jar) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// Set writes a plain cookie. maxAge <= 0 makes it a session cookie.
func (j *Jar) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, j.build(name, value, maxAge))
}

// Delete expires the named cookie.
func (j *Jar) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, j.build(name, "", -1))
}

// SetSigned writes value together with its HMAC-SHA256.
func (j *Jar) SetSigned(w http.ResponseWriter, name, value string, maxAge int) error {
	if j.secret == nil {
		return ErrNoSecret
	}
	enc := base64.RawURLEncoding
	raw := enc.EncodeToString([]byte(value)) + "." + enc.EncodeToString(j.sign([]byte(value)))
	j.Set(w, name, raw, maxAge)
	return nil
}

// GetSigned returns the value of a cookie written by SetSigned.
func (j *Jar) GetSigned(r *http.Request, name string) (string, error) {
	if j.secret == nil {
		return "", ErrNoSecret
	}
	raw, err := j.Get(r, name)
	if err != nil {
		return "", err
	}

	encValue, encSig, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrSignature
	}
	value, err := base64.RawURLEncoding.DecodeString(encValue)
	if err != nil {
		return "", ErrSignature
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil || !hmac.Equal(sig, j.sign(value)) {
		return "", ErrSignature
	}
	return string(value), nil
}

func (j *Jar) sign(value []byte) []byte {
	mac := hmac.New(sha256.New, j.secret)
	mac.Write(value)
	return mac.Sum(nil)
}

func (j *Jar) build(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     j.path,
		Domain:   j.domain,
		MaxAge:   maxAge,
		Secure:   j.secure,
		HttpOnly: j.httpOnly,
		SameSite: j.sameSite,
	}
}
