package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/outlaydev/outlay/pkg/jwtx"
	"github.com/outlaydev/outlay/pkg/slogx"
)

// AuthnMiddleware verifies the bearer token on the request and injects
// the subject and claims into the request context.
func AuthnMiddleware(v jwtx.Verifier, issuer string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("token verification failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}
			if err := claims.ValidateExpiry(); err != nil {
				writeBearerError(w, "token expired")
				return
			}
			if err := claims.ValidateIssuer(issuer); err != nil {
				writeBearerError(w, "token issuer mismatch")
				return
			}

			ctx = context.WithValue(ctx, CtxKeyUserID, claims.Subject)
			ctx = context.WithValue(ctx, CtxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireMFA rejects requests whose session was established without a
// verified second factor. Applied to endpoints that mutate money-adjacent
// state (approvals, team administration).
func RequireMFA() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || !claims.MFAVerified {
				WriteJSON(w, http.StatusForbidden, map[string]string{
					"error":   "mfa_required",
					"message": "This action requires a session verified with a second factor",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RFC 6750-style error response for bearer auth failures.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
