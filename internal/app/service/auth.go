// Package service provides authentication with JWT bearer tokens and the
// bookmark operations scoped to the authenticated owner.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/atinyakov/go-bookmarks/internal/errs"
)

// AuthIface defines the token operations used by the transports.
type AuthIface interface {
	BuildJWTString(username string) (string, error)
	ParseRawJWT(tokenString string) (*Claims, error)
}

// Claims represents the claims that are included in the JWT token.
type Claims struct {
	// Embedded RegisteredClaims provides standard JWT claims like Expiration, Issuer, etc.
	jwt.RegisteredClaims
	// Username identifies the owner of the bookmarks.
	Username string `json:"username"`
}

// DefaultTokenExp is the lifetime of issued tokens when none is configured.
const DefaultTokenExp = 24 * time.Hour

var errNoUsername = errors.New("token has no username")

// Auth signs and verifies HS256 tokens with a shared secret.
type Auth struct {
	secret []byte
	ttl    time.Duration
}

// NewAuth creates an Auth. A non-positive ttl falls back to DefaultTokenExp.
func NewAuth(secret string, ttl time.Duration) *Auth {
	if ttl <= 0 {
		ttl = DefaultTokenExp
	}

	return &Auth{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// BuildJWTString issues a token for username.
func (a *Auth) BuildJWTString(username string) (string, error) {
	if username == "" {
		return "", errNoUsername
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
		Username: username,
	})

	return token.SignedString(a.secret)
}

// ParseRawJWT verifies tokenString and returns its claims. Any failure is an
// UNAUTHORIZED *errs.Error.
func (a *Auth) ParseRawJWT(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errs.NewUnauthorized(errors.New("missing token"))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, errs.NewUnauthorized(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errs.NewUnauthorized(errors.New("invalid token or claims"))
	}

	if claims.Username == "" {
		return nil, errs.NewUnauthorized(errNoUsername)
	}

	return claims, nil
}
