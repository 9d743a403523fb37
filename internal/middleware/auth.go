// Package middleware provides HTTP middleware and request helpers: bearer
// token extraction, username propagation through the context, request
// logging and gzip handling.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is a custom type used for keys in the context.
// It helps prevent collisions in context keys.
type ContextKey string

// UsernameKey is the key used to store and retrieve the authenticated username.
const UsernameKey ContextKey = "username"

// TokenCookie is the cookie consulted when no Authorization header is sent.
const TokenCookie = "token"

const bearerPrefix = "Bearer "

// BearerToken returns the token from "Authorization: Bearer <token>", falling
// back to the token cookie. It returns "" when neither is present.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > len(bearerPrefix) && strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
			return strings.TrimSpace(h[len(bearerPrefix):])
		}
		return ""
	}

	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}

	return ""
}

// InjectUsername returns a copy of ctx carrying username.
func InjectUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, UsernameKey, username)
}

// UsernameFrom extracts the username stored by InjectUsername.
func UsernameFrom(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok && username != ""
}
