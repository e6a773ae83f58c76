package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey int

const identityKey contextKey = iota

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the authenticated identity, or "" when the
// request was not authenticated.
func IdentityFromContext(ctx context.Context) string {
	identity, _ := ctx.Value(identityKey).(string)
	return identity
}

const bearerPrefix = "Bearer "

// TokenFromAuthorizationHeader extracts the token of a "Bearer <token>" header.
func TokenFromAuthorizationHeader(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrInvalidAuthHeader
	}
	token := strings.TrimPrefix(header, bearerPrefix)
	if token == "" {
		return "", ErrTokenIsEmpty
	}
	return token, nil
}

// ExtractToken reads the bearer token from incoming gRPC metadata.
func ExtractToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, ErrTokenIsEmpty.Error())
	}
	headers := md.Get("authorization")
	if len(headers) == 0 {
		return "", status.Error(codes.Unauthenticated, ErrTokenIsEmpty.Error())
	}
	token, err := TokenFromAuthorizationHeader(headers[0])
	if err != nil {
		return "", status.Error(codes.Unauthenticated, err.Error())
	}
	return token, nil
}

// ValidateToken authenticates token and returns a context carrying the identity.
func ValidateToken(ctx context.Context, token string, authenticator Authenticator) (context.Context, error) {
	identity, err := authenticator.Authenticate(ctx, token)
	if err != nil {
		return ctx, status.Errorf(codes.Unauthenticated, "%v: %v", ErrUnauthenticated, err)
	}
	return WithIdentity(ctx, identity), nil
}

// AuthorizeTable checks table access when authenticator implements
// TableAuthorizer. A nil authenticator allows everything.
func AuthorizeTable(ctx context.Context, authenticator Authenticator, table string) error {
	ta, ok := authenticator.(TableAuthorizer)
	if !ok {
		return nil
	}
	if err := ta.AuthorizeTable(ctx, table); err != nil {
		return status.Errorf(codes.PermissionDenied, "table %s: %v", table, err)
	}
	return nil
}
