package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/schuttebj/linc-print-gateway/internal/config"
)

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestParseAccessToken(t *testing.T) {
	cfg := config.AuthConfig{AccessSecret: "secret", TokenIssuer: "linc-print"}
	manager := NewManager(cfg)

	userID := uuid.New()
	token := signToken(t, "secret", Claims{
		UserID: userID,
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "linc-print",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := manager.ParseAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "admin", claims.Role)
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	manager := NewManager(config.AuthConfig{AccessSecret: "secret"})

	token := signToken(t, "other", Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := manager.ParseAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	manager := NewManager(config.AuthConfig{AccessSecret: "secret", TokenIssuer: "linc-print"})

	token := signToken(t, "secret", Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := manager.ParseAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	manager := NewManager(config.AuthConfig{AccessSecret: "secret"})

	token := signToken(t, "secret", Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := manager.ParseAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	manager := NewManager(config.AuthConfig{AccessSecret: "secret"})

	_, err := manager.ParseAccessToken("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}
