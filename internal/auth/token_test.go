package auth_test

import (
	"testing"
	"time"

	"github.com/rahulvm-dev/messagely/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", time.Hour)

	tok, err := tokens.Issue("alice")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.NotNil(t, claims.IssuedAt)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestVerifyWrongKey(t *testing.T) {
	issuer := auth.NewTokenService("right-secret", time.Hour)
	verifier := auth.NewTokenService("wrong-secret", time.Hour)

	tok, err := issuer.Issue("alice")
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, auth.ErrBadSignature)
}

func TestVerifyMalformed(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{name: "Not a JWT", token: "not.a.jwt"},
		{name: "Empty string", token: ""},
		{name: "Garbage", token: "garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Verify(tt.token)
			assert.ErrorIs(t, err, auth.ErrTokenMalformed)
		})
	}
}

func TestVerifyExpired(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", -1*time.Second)

	tok, err := tokens.Issue("alice")
	require.NoError(t, err)

	_, err = tokens.Verify(tok)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestVerifyNeverReturnsStaleClaims(t *testing.T) {
	issuer := auth.NewTokenService("right-secret", time.Hour)
	verifier := auth.NewTokenService("wrong-secret", time.Hour)

	tok, err := issuer.Issue("alice")
	require.NoError(t, err)

	claims, err := verifier.Verify(tok)
	assert.Error(t, err)
	assert.Nil(t, claims)
}
