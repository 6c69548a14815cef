package domain

import "time"

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
	InvitationExpired  InvitationStatus = "expired"
)

// DefaultInvitationTTL is how long an invitation stays redeemable.
const DefaultInvitationTTL = 72 * time.Hour

// Invitation invites an email address to create an account, optionally into
// an organization. Only the SHA-256 fingerprint of the opaque token is
// stored; the raw token is returned once at creation.
type Invitation struct {
	ID               int64            `json:"id"`
	Email            string           `json:"email"`
	TokenFingerprint string           `json:"-"`
	Role             Role             `json:"role"`
	OrganizationID   int64            `json:"organizationId,omitempty"`
	InvitedBy        int64            `json:"invitedBy"`
	Status           InvitationStatus `json:"status"`
	ExpiresAt        time.Time        `json:"expiresAt"`
	CreatedAt        time.Time        `json:"createdAt"`
	AcceptedBy       int64            `json:"acceptedBy,omitempty"`
	AcceptedAt       *time.Time       `json:"acceptedAt,omitempty"`
	RevokedAt        *time.Time       `json:"revokedAt,omitempty"`
}
