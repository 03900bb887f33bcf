package auth

import "context"

// Principal is the authenticated identity resolved from a verified
// token. It lives only for the duration of one request and is never
// persisted.
type Principal struct {
	Username string
}

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal attaches p to ctx. The middleware is the only caller.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the request's principal, or ok=false when the
// caller is anonymous. Anonymity is not an error here; guards decide
// whether it is acceptable.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// RequireAuthenticated rejects anonymous callers.
func RequireAuthenticated(ctx context.Context) (Principal, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return Principal{}, ErrUnauthorized
	}
	return p, nil
}

// RequireSamePrincipal allows access only when the caller is the user
// named by username. Used for routes scoped to "my own resource".
func RequireSamePrincipal(ctx context.Context, username string) (Principal, error) {
	p, err := RequireAuthenticated(ctx)
	if err != nil {
		return Principal{}, err
	}
	if p.Username != username {
		return Principal{}, ErrUnauthorized
	}
	return p, nil
}
