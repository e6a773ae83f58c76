// Package auth authenticates bearer tokens on the scan service and
// optionally authorizes access per table.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
)

var (
	// ErrInvalidAuthHeader is returned when the authorization header is not a bearer header.
	ErrInvalidAuthHeader = errors.New("authorization header must use Bearer scheme")

	// ErrTokenIsEmpty is returned for a missing or empty bearer token.
	ErrTokenIsEmpty = errors.New("authorization token is empty")

	// ErrUnauthenticated is returned when a token is rejected.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Authenticator validates bearer tokens and returns the caller identity.
// Implementations MUST be goroutine-safe.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (identity string, err error)
}

// TableAuthorizer is optionally implemented by an Authenticator to restrict
// which tables an identity may read. The context carries the identity set by
// Authenticate.
type TableAuthorizer interface {
	AuthorizeTable(ctx context.Context, table string) error
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, token string) (string, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

// BearerAuth creates an Authenticator from a validation function.
func BearerAuth(validate func(token string) (identity string, err error)) Authenticator {
	return AuthenticatorFunc(func(_ context.Context, token string) (string, error) {
		return validate(token)
	})
}

// StaticTokens authenticates a fixed set of tokens, keyed by token, each
// mapping to an identity.
type StaticTokens map[string]string

func (s StaticTokens) Authenticate(_ context.Context, token string) (string, error) {
	for known, identity := range s {
		if subtle.ConstantTimeCompare([]byte(known), []byte(token)) == 1 {
			return identity, nil
		}
	}
	return "", ErrUnauthenticated
}
