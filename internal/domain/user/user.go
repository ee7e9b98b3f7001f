// Package user holds the account entity and its persistence contract.
package user

import (
	"context"

	"github.com/go-faster/errors"
)

// Role names recognized by the authorization policy.
const (
	RoleUser    = "USER"
	RolePremium = "PREMIUM_USER"
	RoleAdmin   = "ADMIN"
)

// ErrNotFound is returned when no account matches the lookup.
var ErrNotFound = errors.New("user not found")

// User is an account record. Accounts are created at bootstrap only; there is
// no signup endpoint. PasswordHash is a bcrypt hash.
type User struct {
	ID           int64    `json:"id"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"`
	Roles        []string `json:"roles"`
}

// HasRole reports whether the account carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Repository defines persistence operations for accounts.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) error
}
