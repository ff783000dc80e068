package internal

import "crypto/subtle"

// CSRF token transport names.
const (
	CSRFFieldName  = "_csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
)

// VerifyCSRF compares submitted with the token stored in the session.
// Requests without a session or without a stored token never verify.
func VerifyCSRF(c Context, submitted string) bool {
	rc, ok := c.(*requestContext)
	if !ok || submitted == "" {
		return false
	}
	stored := rc.storedCSRFToken()
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
