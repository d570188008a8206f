// Package auth issues and verifies the two credential kinds the API
// accepts: short-lived JWT access tokens and long-lived API keys.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zengarv/StockInsightAPI/internal/domain/models"
)

// Claims is the JWT payload. Subject carries the username; UserID and Tier
// let the middleware build an identity without a user lookup.
type Claims struct {
	UserID int64  `json:"user_id"`
	Tier   string `json:"tier"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HS256 access tokens.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a signed token for the user and returns it with its
// lifetime in seconds.
func (m *JWTManager) Issue(u *models.User) (string, int, error) {
	now := m.now()
	claims := Claims{
		UserID: u.ID,
		Tier:   string(u.Tier),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", 0, fmt.Errorf("sign token: %w", err)
	}
	return token, int(m.ttl.Seconds()), nil
}

// Verify parses and validates a token string, rejecting anything not
// signed with HS256 and this manager's secret.
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	return claims, nil
}
