package internal

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"

	"github.com/dmitrymomot/examdesk/pkg/logger"
)

// Identity is the login snapshot kept in the session: who the user is, the
// label of their role and the labels of the permissions that role grants.
type Identity struct {
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	UserID      int64    `json:"user_id"`
}

// HasRole is an exact match on the role label.
func (i *Identity) HasRole(role string) bool {
	return i != nil && i.Role == role
}

// HasPermission reports whether permission is among the granted labels.
func (i *Identity) HasPermission(permission string) bool {
	return i != nil && slices.Contains(i.Permissions, permission)
}

func encodeIdentity(i Identity) (string, error) {
	b, err := json.Marshal(i)
	return string(b), err
}

func decodeIdentity(raw string) (*Identity, error) {
	var i Identity
	if err := json.Unmarshal([]byte(raw), &i); err != nil {
		return nil, err
	}
	return &i, nil
}

// IdentityExtractor adds user_id to log records of requests whose identity
// has already been loaded. It never touches the session itself.
func IdentityExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		c, ok := ctx.Value(ctxKey{}).(*requestContext)
		if !ok || !c.identityLoaded || c.identity == nil {
			return slog.Attr{}, false
		}
		return slog.Int64("user_id", c.identity.UserID), true
	}
}
