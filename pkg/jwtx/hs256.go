// Package jwtx signs and verifies the service's access tokens. Tokens are
// HS256 with a single configured secret; the verifier rejects any other
// signing method.
package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is anything that can sign access-token claims.
type Signer interface {
	Sign(Claims) (string, error)
}

// Verifier is anything that can verify and decode a raw token.
type Verifier interface {
	Verify(raw string) (Claims, error)
}

// HS256 signs and verifies tokens with a shared symmetric secret.
type HS256 struct {
	secret []byte
	issuer string
}

// NewHS256 builds a signer/verifier from the configured secret.
func NewHS256(secret, issuer string) (*HS256, error) {
	if secret == "" {
		return nil, errors.New("jwtx: secret must not be empty")
	}
	return &HS256{secret: []byte(secret), issuer: issuer}, nil
}

// Sign produces a compact serialized JWT for the given claims.
func (h *HS256) Sign(claims Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Verify parses the raw token, checks the signature and signing method, and
// validates issuer and time bounds.
func (h *HS256) Verify(raw string) (Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("jwtx: unexpected signing method %q", t.Method.Alg())
		}
		return h.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("jwtx: verify: %w", err)
	}

	if err := claims.ValidateIssuer(h.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return Claims{}, err
	}

	return claims, nil
}
