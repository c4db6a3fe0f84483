package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/schuttebj/linc-print-gateway/internal/config"
)

// ErrInvalidToken covers every parse/verify failure.
var ErrInvalidToken = errors.New("invalid token")

// Claims extends JWT registered claims with LINC metadata. The backend
// issues these tokens; the gateway only verifies them for role gating
// and otherwise forwards the raw bearer untouched.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// Manager validates bearer tokens against the shared signing secret.
type Manager struct {
	cfg config.AuthConfig
}

// NewManager builds Manager.
func NewManager(cfg config.AuthConfig) *Manager {
	return &Manager{cfg: cfg}
}

// ParseAccessToken verifies signature and issuer, returning claims.
func (m *Manager) ParseAccessToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(m.cfg.AccessSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if m.cfg.TokenIssuer != "" {
		issuer, err := claims.GetIssuer()
		if err != nil || issuer != m.cfg.TokenIssuer {
			return nil, ErrInvalidToken
		}
	}
	return claims, nil
}
