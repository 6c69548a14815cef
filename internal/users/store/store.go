package store

import (
	"context"
	"errors"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and to stop callers from accidentally nesting transactions.
type Store interface {
	Users() Users
	Lockouts() Lockouts
	Sessions() Sessions
	AuditLogs() AuditLogs
	Organizations() Organizations
	Invitations() Invitations
	Preferences() Preferences

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., password
	// rotation with history). The caller MUST call Commit() or Rollback()
	// on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByName resolves a user case-insensitively by account name.
	GetUserByName(ctx context.Context, name string) (domain.User, error)

	// CreateUser inserts a new user and fills in the assigned row id.
	CreateUser(ctx context.Context, u *domain.User) error

	// UpdateProfile mutates name/profession and bumps updated_at.
	UpdateProfile(ctx context.Context, userID int64, name, profession string) error

	// UpdateRole sets the account-level role and bumps updated_at.
	UpdateRole(ctx context.Context, userID int64, role domain.Role) error

	// UpdatePasswordHash rotates the hash, replaces the stored history and
	// records password_changed_at.
	UpdatePasswordHash(ctx context.Context, userID int64, newHash string, history []string, changedAt time.Time) error

	// DeleteUser removes the account row. Sessions, lockout state and
	// preferences cascade per schema; audit entries are retained.
	DeleteUser(ctx context.Context, userID int64) error

	// ListUsers returns users ordered by id, with an optional substring
	// filter on the name. Limit 0 means no limit.
	ListUsers(ctx context.Context, nameFilter string, offset, limit int) ([]domain.User, error)

	// CountUsers returns the number of users matching the filter.
	CountUsers(ctx context.Context, nameFilter string) (int, error)

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Lockouts interface {
	// GetRecord returns the lockout state for a user, or ErrNotFound when
	// the user has a clean slate.
	GetRecord(ctx context.Context, userID int64) (domain.LockoutRecord, error)

	// AddAttempt appends one failed attempt.
	AddAttempt(ctx context.Context, userID int64, attempt domain.LoginAttempt) error

	// PruneAttempts deletes attempts at or before the cutoff.
	PruneAttempts(ctx context.Context, userID int64, cutoff time.Time) error

	// SetLock records an active lock for a user.
	SetLock(ctx context.Context, userID int64, until time.Time) error

	// ClearRecord removes all attempts and any lock for a user.
	ClearRecord(ctx context.Context, userID int64) error

	// ListLocked returns every user whose lock expires after now.
	ListLocked(ctx context.Context, now time.Time) ([]domain.LockedAccount, error)
}

type Sessions interface {
	// CreateSession inserts a session and fills in the assigned row id.
	CreateSession(ctx context.Context, s *domain.Session) error

	// GetSessionByToken returns a session by its opaque token value.
	GetSessionByToken(ctx context.Context, token string) (domain.Session, error)

	// ListActiveByUser returns a user's active sessions, oldest first.
	ListActiveByUser(ctx context.Context, userID int64) ([]domain.Session, error)

	// CountActiveByUser returns the number of active sessions for a user.
	CountActiveByUser(ctx context.Context, userID int64) (int, error)

	// Touch bumps last_activity_at for an active session.
	Touch(ctx context.Context, sessionID int64, at time.Time) error

	// MarkStatus transitions a session to revoked or expired. Terminal
	// states stay terminal: rows already off active are left alone.
	MarkStatus(ctx context.Context, sessionID int64, status domain.SessionStatus, at time.Time) error

	// MarkAllForUser transitions every active session of a user, skipping
	// the session with exceptToken when it is non-empty. Returns the
	// number of sessions affected.
	MarkAllForUser(ctx context.Context, userID int64, status domain.SessionStatus, at time.Time, exceptToken string) (int, error)

	// MarkExpiredBefore flips every active session whose expires_at is at
	// or before the cutoff. Returns the number of sessions affected.
	MarkExpiredBefore(ctx context.Context, cutoff time.Time) (int, error)
}

type AuditLogs interface {
	// Append inserts an audit entry and fills in the assigned id, then
	// evicts the oldest rows beyond the retention cap.
	Append(ctx context.Context, e *domain.AuditEntry) error

	// Query returns one timestamp-descending page matching the filter.
	Query(ctx context.Context, f domain.AuditFilter) (domain.AuditPage, error)

	// Count returns the total number of retained entries.
	Count(ctx context.Context) (int, error)
}

type Organizations interface {
	// CreateOrganization inserts an organization and fills in the row id.
	// Members are inserted separately via AddMember.
	CreateOrganization(ctx context.Context, o *domain.Organization) error

	// GetOrganizationByID returns an organization with its members.
	GetOrganizationByID(ctx context.Context, id int64) (domain.Organization, error)

	// ListOrganizations returns all organizations, newest first. Members
	// are included.
	ListOrganizations(ctx context.Context) ([]domain.Organization, error)

	// ListOrganizationsForUser returns the organizations the user belongs
	// to, newest first. Members are included.
	ListOrganizationsForUser(ctx context.Context, userID int64) ([]domain.Organization, error)

	// UpdateOrganization mutates name/description/settings.
	UpdateOrganization(ctx context.Context, id int64, name, description string, settings map[string]string) error

	// DeleteOrganization removes the organization and its memberships.
	DeleteOrganization(ctx context.Context, id int64) error

	// AddMember inserts a membership row.
	AddMember(ctx context.Context, orgID int64, m domain.Member) error

	// UpdateMemberRole changes a member's role within the organization.
	UpdateMemberRole(ctx context.Context, orgID, userID int64, role domain.MemberRole) error

	// RemoveMember deletes a membership row.
	RemoveMember(ctx context.Context, orgID, userID int64) error

	// RemoveUserFromAll deletes every membership of the user.
	RemoveUserFromAll(ctx context.Context, userID int64) error
}

type Invitations interface {
	// CreateInvitation inserts an invitation and fills in the row id.
	CreateInvitation(ctx context.Context, inv *domain.Invitation) error

	// GetInvitationByID returns an invitation by id.
	GetInvitationByID(ctx context.Context, id int64) (domain.Invitation, error)

	// GetPendingByFingerprint resolves a pending invitation by its token
	// fingerprint.
	GetPendingByFingerprint(ctx context.Context, fingerprint string) (domain.Invitation, error)

	// GetPendingByEmail returns the pending invitation for an email, if any.
	GetPendingByEmail(ctx context.Context, email string) (domain.Invitation, error)

	// ListInvitations returns invitations newest first, optionally filtered
	// by status.
	ListInvitations(ctx context.Context, status domain.InvitationStatus) ([]domain.Invitation, error)

	// MarkAccepted transitions a pending invitation to accepted.
	MarkAccepted(ctx context.Context, id, acceptedBy int64, at time.Time) error

	// MarkRevoked transitions a pending invitation to revoked.
	MarkRevoked(ctx context.Context, id int64, at time.Time) error

	// ExpirePending flips pending invitations past their expiry. Returns
	// the number affected.
	ExpirePending(ctx context.Context, now time.Time) (int, error)
}

type Preferences interface {
	// GetPreferences returns a user's stored settings, or ErrNotFound when
	// the user has never customised them.
	GetPreferences(ctx context.Context, userID int64) (domain.UserPreferences, error)

	// UpsertPreferences stores the full settings document for a user.
	UpsertPreferences(ctx context.Context, p domain.UserPreferences) error

	// DeletePreferences removes a user's stored settings.
	DeletePreferences(ctx context.Context, userID int64) error
}
