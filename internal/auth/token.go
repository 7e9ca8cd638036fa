// Package auth issues and verifies bearer tokens and hashes secrets.
package auth

import (
	"fmt"
	"time"

	"shopfront/internal/config"
	"shopfront/internal/model"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims identify the user a token was issued to.
type Claims struct {
	UserID uuid.UUID  `json:"userId"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// IssuedBefore reports whether the token predates t, at the one second
// resolution tokens carry.
func (c *Claims) IssuedBefore(t time.Time) bool {
	if c.IssuedAt == nil {
		return true
	}
	return c.IssuedAt.Time.Before(t.Truncate(time.Second))
}

// TokenManager signs access and refresh tokens with separate secrets.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenManager creates a TokenManager from configuration.
func NewTokenManager(cfg config.JWTConfig) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessExpiresIn,
		refreshTTL:    cfg.RefreshExpiresIn,
		now:           time.Now,
	}
}

// IssuePair returns a fresh access and refresh token for u.
func (m *TokenManager) IssuePair(u *model.User) (*model.TokenPair, error) {
	access, err := m.IssueAccess(u)
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(u, m.refreshSecret, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueAccess returns a fresh access token for u.
func (m *TokenManager) IssueAccess(u *model.User) (string, error) {
	return m.sign(u, m.accessSecret, m.accessTTL)
}

// VerifyAccess parses and validates an access token.
func (m *TokenManager) VerifyAccess(token string) (*Claims, error) {
	return m.verify(token, m.accessSecret)
}

// VerifyRefresh parses and validates a refresh token.
func (m *TokenManager) VerifyRefresh(token string) (*Claims, error) {
	return m.verify(token, m.refreshSecret)
}

func (m *TokenManager) sign(u *model.User, secret []byte, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) verify(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	if claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
