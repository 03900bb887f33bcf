package middleware

import (
	"net/http"
	"strings"

	"github.com/rahulvm-dev/messagely/internal/auth"
	"github.com/rahulvm-dev/messagely/internal/utils"
)

// Authenticate resolves an optional bearer token into a Principal on
// the request context. A missing or unverifiable token leaves the
// request anonymous rather than rejecting it; route guards downstream
// decide whether anonymous is acceptable.
func Authenticate(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenStr := bearerToken(r); tokenStr != "" {
				if claims, err := tokens.Verify(tokenStr); err == nil {
					ctx := auth.WithPrincipal(r.Context(), auth.Principal{Username: claims.Username})
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects anonymous callers with 401. Routes behind it can
// assume auth.PrincipalFrom succeeds.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if _, ok := auth.PrincipalFrom(r.Context()); !ok {
			utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
				Success: false,
				Message: "Unauthorized",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}
