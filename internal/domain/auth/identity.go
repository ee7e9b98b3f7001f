// Package auth provides credential verification, bearer token issuance and
// validation, and the caller identity carried through request contexts.
package auth

import "context"

// Identity is the authenticated caller of a request. It is placed into the
// request context by the HTTP authenticator and passed explicitly from there;
// there is no process-global caller state.
type Identity struct {
	Username string
	Roles    []string
}

// HasRole reports whether the identity carries the given role.
func (id *Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the identity carries at least one of the given
// roles. An empty set matches any authenticated identity.
func (id *Identity) HasAnyRole(roles ...string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if id.HasRole(r) {
			return true
		}
	}
	return false
}

// identityKey is the context key for the caller identity.
type identityKey struct{}

// WithIdentity returns a context carrying the given caller identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom extracts the caller identity from the context. The second
// return is false for unauthenticated (or trusted internal) calls.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok
}
