package token

import "context"

// claimsKey is the private context key for the request's verified claims
type claimsKey struct{}

// NewContext returns a context carrying the verified claims
func NewContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// FromContext extracts the verified claims the auth middleware stored
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok
}
