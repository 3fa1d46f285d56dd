// ABOUTME: Bearer token verification for MCP and API requests
// ABOUTME: Supports a static shared secret and HS256-signed JWTs

package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// TokenVerifier defines the interface for token verification
type TokenVerifier interface {
	Verify(tokenString string) (principalID string, err error)
}

// StaticVerifier verifies tokens by equality against a configured shared
// secret. All callers presenting the secret resolve to the same principal.
type StaticVerifier struct {
	secret      []byte
	principalID string
}

// NewStaticVerifier creates a verifier for the given shared secret.
// The principal ID is reported for every successful verification.
func NewStaticVerifier(secret, principalID string) *StaticVerifier {
	return &StaticVerifier{secret: []byte(secret), principalID: principalID}
}

// Verify compares the token against the shared secret in constant time.
func (v *StaticVerifier) Verify(tokenString string) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(tokenString), v.secret) != 1 {
		return "", ErrInvalidToken
	}
	return v.principalID, nil
}

// JWTVerifier implements TokenVerifier using HS256 signed JWTs
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a new JWT verifier with the given secret
func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// Verify validates the token and extracts the principal ID from the "sub" claim
func (v *JWTVerifier) Verify(tokenString string) (principalID string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	return sub, nil
}

// Generate creates a new JWT token for the given principal ID with expiration
func (v *JWTVerifier) Generate(principalID string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": principalID,
		"iat": now.Unix(),
		"exp": now.Add(expiresIn).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// ChainVerifier tries multiple verifiers in order and returns the first
// successful verification.
type ChainVerifier struct {
	verifiers []TokenVerifier
}

// NewChainVerifier creates a verifier that accepts a token valid under any
// of the given verifiers. Nil entries are skipped.
func NewChainVerifier(verifiers ...TokenVerifier) *ChainVerifier {
	var vs []TokenVerifier
	for _, v := range verifiers {
		if v != nil {
			vs = append(vs, v)
		}
	}
	return &ChainVerifier{verifiers: vs}
}

// Verify returns the first successful verification, or ErrInvalidToken.
func (c *ChainVerifier) Verify(tokenString string) (string, error) {
	for _, v := range c.verifiers {
		if principalID, err := v.Verify(tokenString); err == nil {
			return principalID, nil
		}
	}
	return "", ErrInvalidToken
}
