package usecases

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginIssuesAdminToken(t *testing.T) {
	auth, err := NewAuthUsecase("admin", "s3cret", "test-signing-key")
	require.NoError(t, err)

	tokenString, err := auth.Login("admin", "s3cret")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-signing-key"), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "admin", claims["sub"])
	assert.Equal(t, "admin", claims["role"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth, err := NewAuthUsecase("admin", "s3cret", "test-signing-key")
	require.NoError(t, err)

	_, err = auth.Login("admin", "wrong")
	assert.Error(t, err)

	_, err = auth.Login("root", "s3cret")
	assert.Error(t, err)
}
