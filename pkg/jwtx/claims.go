package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the default lifetime for access tokens.
const DefaultAccessTokenTTL = 1 * time.Hour

var (
	ErrExpired   = errors.New("jwtx: token expired")
	ErrNotBefore = errors.New("jwtx: token not yet valid")
	ErrIssuer    = errors.New("jwtx: issuer mismatch")
)

// Claims are the access-token claims embedded in every issued token. The
// authorization middleware relies on UserID, Name and Role; SID ties the
// token back to its originating session record.
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the numeric user id (also duplicated into "sub").
	UserID int64 `json:"uid"`

	// Name is the unique account name of the authenticated user.
	Name string `json:"name"`

	// Role is either "user" or "admin".
	Role string `json:"role"`

	// SID is the opaque session token fingerprint, if a session was
	// created alongside this token.
	SID string `json:"sid,omitempty"`
}

// NewAccessClaims builds minimally-correct claims for a user token.
func NewAccessClaims(userID int64, name, role, sid, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   name,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		UserID: userID,
		Name:   name,
		Role:   role,
		SID:    sid,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks the issuer when one is expected.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry ensures the token has not expired (exp) and is not used
// before its nbf.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotBefore
	}
	return nil
}
