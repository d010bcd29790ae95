// Package token implements the signed session credential. The server
// keeps no session store: the bearer token carries the user's identity
// and Google token pair, so verifying it is the whole authentication
// step and requires no network call.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for malformed, expired, or tampered tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload embedded in a session token
type Claims struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Codec issues and verifies signed session tokens
type Codec struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewCodec creates a Codec signing with the given secret. Tokens expire
// after lifetime.
func NewCodec(secret string, lifetime time.Duration) *Codec {
	return &Codec{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
}

type sessionClaims struct {
	Claims
	jwt.RegisteredClaims
}

// Issue produces a signed token embedding the claims
func (c *Codec) Issue(claims Claims) (string, error) {
	now := c.now()
	sc := sessionClaims{
		Claims: claims,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, sc)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims. Any
// malformed, expired, or tampered token fails with ErrInvalidToken.
func (c *Codec) Verify(tokenString string) (Claims, error) {
	var sc sessionClaims
	tok, err := jwt.ParseWithClaims(tokenString, &sc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	return sc.Claims, nil
}
