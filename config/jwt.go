package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a session token fails signature or structural validation.
var ErrInvalidToken = errors.New("invalid session token")

// ErrExpiredToken is returned when a session token's exp claim has passed.
var ErrExpiredToken = errors.New("session token expired")

// SessionClaims identifies the authenticated user behind a request to the out-of-scope HTTP
// layer that sits in front of this engine's Store (spec §6's JWT_SECRET_KEY exists for that
// layer; the engine itself never inspects a token).
type SessionClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenSigner signs and validates the session tokens a hosting HTTP layer issues, using the
// secret configured via JWT_SECRET_KEY.
type TokenSigner struct {
	secret     []byte
	issuer     string
	expiration time.Duration
}

// NewTokenSigner builds a signer with the given secret and access-token lifetime.
func NewTokenSigner(secret string, expiration time.Duration) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), issuer: "area-engine", expiration: expiration}
}

// Sign issues a signed HS256 token for userID.
func (s *TokenSigner) Sign(userID uint) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses and verifies tokenString, returning its claims.
func (s *TokenSigner) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, ErrExpiredToken
	}
	return claims, nil
}
