package domain

import "time"

// SessionStatus is the lifecycle state of a session. Revoked and expired are
// terminal.
type SessionStatus string

const (
	SessionActive  SessionStatus = "active"
	SessionRevoked SessionStatus = "revoked"
	SessionExpired SessionStatus = "expired"
)

// Session is one issued login session. Token is the opaque 256-bit value the
// client presents; ID is the internal row id.
type Session struct {
	ID             int64         `json:"id"`
	Token          string        `json:"sessionId"`
	UserID         int64         `json:"userId"`
	Status         SessionStatus `json:"status"`
	IPAddress      string        `json:"ipAddress,omitempty"`
	UserAgent      string        `json:"userAgent,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	LastActivityAt time.Time     `json:"lastActivityAt"`
	ExpiresAt      time.Time     `json:"expiresAt"`
	RevokedAt      *time.Time    `json:"revokedAt,omitempty"`
}
