package tablescan

import (
	"context"

	"github.com/hugr-lab/tablescan-go/auth"
)

// Authenticator validates bearer tokens and returns user identity.
type Authenticator = auth.Authenticator

// TableAuthorizer is implemented by authenticators that restrict which
// tables an identity may read.
type TableAuthorizer = auth.TableAuthorizer

// BearerAuth creates an Authenticator from a validation function.
//
//	authn := tablescan.BearerAuth(func(token string) (string, error) {
//	    if token != expected {
//	        return "", tablescan.ErrUnauthorized
//	    }
//	    return "reader", nil
//	})
func BearerAuth(validateFunc func(token string) (identity string, err error)) Authenticator {
	return auth.BearerAuth(validateFunc)
}

// StaticTokens authenticates a fixed set of tokens, keyed by token with the
// identity as value.
func StaticTokens(tokens map[string]string) Authenticator {
	return auth.StaticTokens(tokens)
}

// IdentityFromContext retrieves the authenticated user identity from context.
// Returns empty string if no identity is set (unauthenticated request).
func IdentityFromContext(ctx context.Context) string {
	return auth.IdentityFromContext(ctx)
}
