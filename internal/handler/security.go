package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/ikram-javatech/product-order-service/internal/domain/auth"
)

// bearerSeenKey marks a request that carried an Authorization bearer header,
// valid or not. The policy layer uses it to distinguish a missing token (403)
// from a rejected one (401).
type bearerSeenKey struct{}

func bearerSeen(ctx context.Context) bool {
	seen, _ := ctx.Value(bearerSeenKey{}).(bool)
	return seen
}

// authenticate decodes and verifies an inbound bearer token, placing the
// caller identity into the request context. Verification failure does not
// reject the request; it merely leaves it unauthenticated for the policy
// layer to handle.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		header := r.Header.Get("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			ctx = context.WithValue(ctx, bearerSeenKey{}, true)
			if ident, err := h.tokens.Verify(token); err == nil {
				ctx = auth.WithIdentity(ctx, ident)
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRoles enforces the route's allowed role set. An empty set admits any
// authenticated caller. Unauthenticated requests get 401 when a bearer was
// presented and rejected, 403 when none was presented at all.
func (h *Handler) requireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := auth.IdentityFrom(r.Context())
			if !ok {
				if bearerSeen(r.Context()) {
					writeError(w, r, http.StatusUnauthorized, "Invalid or expired token")
				} else {
					writeError(w, r, http.StatusForbidden, "Access denied")
				}
				return
			}
			if !ident.HasAnyRole(roles...) {
				writeError(w, r, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
