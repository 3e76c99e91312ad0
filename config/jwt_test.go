package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenSignerRoundTrip(t *testing.T) {
	signer := NewTokenSigner("top-secret", time.Hour)

	token, err := signer.Sign(42)
	require.NoError(t, err)

	claims, err := signer.Validate(token)
	require.NoError(t, err)
	require.Equal(t, uint(42), claims.UserID)
}

func TestTokenSignerRejectsWrongSecret(t *testing.T) {
	signer := NewTokenSigner("top-secret", time.Hour)
	other := NewTokenSigner("different-secret", time.Hour)

	token, err := signer.Sign(1)
	require.NoError(t, err)

	_, err = other.Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenSignerRejectsExpiredToken(t *testing.T) {
	signer := NewTokenSigner("top-secret", -time.Minute)

	token, err := signer.Sign(1)
	require.NoError(t, err)

	_, err = signer.Validate(token)
	require.ErrorIs(t, err, ErrExpiredToken)
}
