package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)

	token, err := issuer.Issue("alice", []string{"USER", "PREMIUM_USER"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ident, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", ident.Username)
	assert.Equal(t, []string{"USER", "PREMIUM_USER"}, ident.Roles)
}

func TestTokenIssuer_NoRoles(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)

	token, err := issuer.Issue("alice", nil)
	require.NoError(t, err)

	ident, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Empty(t, ident.Roles)
}

func TestTokenIssuer_TamperedToken(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)

	token, err := issuer.Issue("alice", []string{"USER"})
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = issuer.Verify(tampered)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	other := NewTokenIssuer([]byte("other-secret"), time.Hour)

	token, err := issuer.Issue("alice", []string{"USER"})
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_Garbage(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)

	_, err := issuer.Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Minute)

	issued := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issued }

	token, err := issuer.Issue("alice", []string{"USER"})
	require.NoError(t, err)

	// Still valid just before expiry.
	issuer.now = func() time.Time { return issued.Add(30 * time.Second) }
	_, err = issuer.Verify(token)
	require.NoError(t, err)

	issuer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
