package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bio-clicker-backend/internal/config"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService(&config.Config{JWTSecret: "test-secret", JWTExpiryHours: 1})

	token, err := svc.GenerateToken("alice", "user")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "user", claims.Role)
}

func TestJWTRejectsForeignSecret(t *testing.T) {
	issuer := NewJWTService(&config.Config{JWTSecret: "secret-a", JWTExpiryHours: 1})
	verifier := NewJWTService(&config.Config{JWTSecret: "secret-b", JWTExpiryHours: 1})

	token, err := issuer.GenerateToken("alice", "user")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)

	_, err = verifier.ValidateToken("not-a-token")
	assert.Error(t, err)
}
