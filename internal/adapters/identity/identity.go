// Package identity resolves the signed-in user from headers set by the
// trusted authentication proxy in front of the gateway.
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Headers set by the authentication proxy.
const (
	HeaderEmail = "X-User-Email"
	HeaderName  = "X-User-Name"
)

// ErrUnauthenticated is returned when no user email is present.
var ErrUnauthenticated = errors.New("no authenticated user")

// Identity is the signed-in user. Email is the key every tracking service
// call is made with.
type Identity struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// FromRequest reads the identity headers. The email is trimmed and otherwise
// kept exactly as sent. DisplayName falls back to the local part of the email.
func FromRequest(r *http.Request) (Identity, error) {
	email := strings.TrimSpace(r.Header.Get(HeaderEmail))
	if email == "" {
		return Identity{}, ErrUnauthenticated
	}
	name := strings.TrimSpace(r.Header.Get(HeaderName))
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	return Identity{Email: email, DisplayName: name}, nil
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying id.
func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by NewContext.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
