package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiu-sentinel/console/internal/config"
	"github.com/fiu-sentinel/console/internal/models"
)

func testService() *Service {
	return NewService(config.DemoConfig{
		JWTSecret:     "test-secret",
		TokenDuration: 60,
		Issuer:        "sentinel-console",
	})
}

func TestTokenRoundTrip(t *testing.T) {
	svc := testService()

	token, err := svc.GenerateToken(models.AuthUser{UserID: "op-1", Username: "operator"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "op-1", claims.UserID)
	assert.Equal(t, "operator", claims.Username)
	assert.Equal(t, "sentinel-console", claims.Issuer)
	assert.Equal(t, "op-1", claims.Subject)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := testService().GenerateToken(models.AuthUser{UserID: "op-1", Username: "operator"})
	require.NoError(t, err)

	other := NewService(config.DemoConfig{JWTSecret: "different", TokenDuration: 60})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	expired := NewService(config.DemoConfig{JWTSecret: "test-secret", TokenDuration: -1})

	token, err := expired.GenerateToken(models.AuthUser{UserID: "op-1", Username: "operator"})
	require.NoError(t, err)

	_, err = testService().ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := testService().ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
