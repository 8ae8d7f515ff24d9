// internal/app/system/auth/auth.go

// Package auth carries the authenticated caller identity through the
// request context. Tokens are opaque to the rest of the application;
// handlers and the coordinator only ever see an Identity.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/sharebite/internal/app/system/apierr"
	"github.com/dalemusser/sharebite/internal/app/system/httpjson"
)

// Identity is the authenticated caller: user id (hex ObjectID) plus role.
type Identity struct {
	ID   string
	Role string
}

type ctxKey struct{}

// CurrentUser returns the identity set by RequireToken, if any.
func CurrentUser(r *http.Request) (Identity, bool) {
	id, ok := r.Context().Value(ctxKey{}).(Identity)
	return id, ok
}

// WithTestIdentity injects an identity directly into the request
// context, bypassing token verification. Tests only.
func WithTestIdentity(r *http.Request, id Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))
}

// RequireToken verifies the bearer token and stores the caller identity
// in the request context. Missing or invalid tokens end the request
// with 401.
//
// The token is read from the Authorization header; the "token" query
// parameter is accepted as a fallback because browsers cannot set
// headers on WebSocket upgrade requests.
func RequireToken(tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				httpjson.WriteError(w, nil, apierr.Unauthorized("authentication token required"))
				return
			}

			id, err := tokens.Verify(raw)
			if err != nil {
				httpjson.WriteError(w, nil, apierr.Unauthorized("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows only callers whose role is in the allowed set.
// Must be mounted after RequireToken.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := CurrentUser(r)
			if !ok {
				httpjson.WriteError(w, nil, apierr.Unauthorized("authentication token required"))
				return
			}
			if _, has := set[strings.ToLower(id.Role)]; !has {
				httpjson.WriteError(w, nil, apierr.Forbidden("your role does not allow this operation"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}
