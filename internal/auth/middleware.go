package auth

import (
	"context"
	"net/http"
	"strings"
)

// AdminChecker resolves the caller's role.
type AdminChecker interface {
	IsAdmin(ctx context.Context, uid string) (bool, error)
}

// Deny writes the response for a request the guards reject.
type Deny func(w http.ResponseWriter, r *http.Request, err error)

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	// browsers cannot set headers on websocket upgrades
	return r.URL.Query().Get("access_token")
}

// Authenticate attaches the caller when a valid token is sent. Guests pass
// through; a bad token is remembered for Require.
func Authenticate(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearer(r)
			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}
			id, err := v.Verify(tok)
			ctx := r.Context()
			if err != nil {
				ctx = withFailure(ctx, err)
			} else {
				ctx = WithIdentity(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireUser(deny Deny) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := Require(r.Context()); err != nil {
				deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(roles AdminChecker, deny Deny) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := Require(r.Context())
			if err != nil {
				deny(w, r, err)
				return
			}
			ok, err := roles.IsAdmin(r.Context(), id.UID)
			if err != nil {
				deny(w, r, err)
				return
			}
			if !ok {
				deny(w, r, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
