package auth

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ikram-javatech/product-order-service/internal/domain/user"
)

// ErrInvalidCredentials is returned when the username is unknown or the
// password does not match. Callers must not be able to tell which.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service verifies credentials against the user store and issues bearer
// tokens.
type Service struct {
	users  user.Repository
	tokens *TokenIssuer
}

// NewService creates an auth Service.
func NewService(users user.Repository, tokens *TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// Login verifies the given credentials and returns a signed token on success.
// Unknown usernames and wrong passwords both map to ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	lg := zctx.From(ctx)
	lg.Info("Login attempt", zap.String("username", username))

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", errors.Wrap(err, "get user")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.Username, u.Roles)
	if err != nil {
		return "", errors.Wrap(err, "issue token")
	}

	lg.Info("Login success", zap.String("username", username))
	return token, nil
}
