package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/internal/users/store"
	"github.com/opshelm/warden/pkg/apierr"
	"github.com/opshelm/warden/pkg/cryptox"
	"github.com/opshelm/warden/pkg/slogx"
)

const (
	// DefaultSessionTTL is how long a session lives from creation.
	DefaultSessionTTL = 24 * time.Hour

	// DefaultMaxSessionsPerUser caps concurrent sessions; the oldest active
	// session is revoked to make room.
	DefaultMaxSessionsPerUser = 5
)

// SessionService issues and validates opaque session tokens.
type SessionService struct {
	Store      store.Store
	TTL        time.Duration
	MaxPerUser int
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultSessionTTL
	}
	return s.TTL
}

func (s *SessionService) maxPerUser() int {
	if s.MaxPerUser <= 0 {
		return DefaultMaxSessionsPerUser
	}
	return s.MaxPerUser
}

// Create issues a new session for a user. Enforcing the per-user cap and
// inserting the new row happen in one transaction, so two concurrent logins
// cannot both slip past the cap.
func (s *SessionService) Create(ctx context.Context, userID int64, ip, userAgent string) (domain.Session, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Session{}, apierr.Storage("failed to generate session token", err)
	}

	now := time.Now()
	session := domain.Session{
		Token:          token,
		UserID:         userID,
		Status:         domain.SessionActive,
		IPAddress:      ip,
		UserAgent:      userAgent,
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(s.ttl()),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		active, err := tx.Sessions().ListActiveByUser(ctx, userID)
		if err != nil {
			return err
		}

		// Evict oldest first until the new session fits under the cap.
		for i := 0; i <= len(active)-s.maxPerUser(); i++ {
			if err := tx.Sessions().MarkStatus(ctx, active[i].ID, domain.SessionRevoked, now); err != nil {
				return err
			}
			slogx.FromContext(ctx).Info("evicted oldest session at cap",
				slog.Int64("user_id", userID),
				slog.Int64("session_id", active[i].ID))
		}

		return tx.Sessions().CreateSession(ctx, &session)
	})
	if err != nil {
		return domain.Session{}, apierr.Storage("failed to create session", err)
	}

	return session, nil
}

// Validate resolves a presented token to its active session. A session whose
// expiry has been reached is flipped to expired on the spot and rejected.
func (s *SessionService) Validate(ctx context.Context, token string) (domain.Session, error) {
	session, err := s.Store.Sessions().GetSessionByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, apierr.Authentication("invalid or expired session")
	}
	if err != nil {
		return domain.Session{}, apierr.Storage("failed to load session", err)
	}

	if session.Status != domain.SessionActive {
		return domain.Session{}, apierr.Authentication("invalid or expired session")
	}

	now := time.Now()
	if !now.Before(session.ExpiresAt) {
		if err := s.Store.Sessions().MarkStatus(ctx, session.ID, domain.SessionExpired, now); err != nil {
			return domain.Session{}, apierr.Storage("failed to expire session", err)
		}
		return domain.Session{}, apierr.Authentication("invalid or expired session")
	}

	return session, nil
}

// Touch bumps the session's last activity timestamp.
func (s *SessionService) Touch(ctx context.Context, sessionID int64) error {
	if err := s.Store.Sessions().Touch(ctx, sessionID, time.Now()); err != nil {
		return apierr.Storage("failed to touch session", err)
	}
	return nil
}

// Revoke terminates one session by token. Revoking an already-terminal
// session is a no-op success.
func (s *SessionService) Revoke(ctx context.Context, token string) (domain.Session, error) {
	session, err := s.Store.Sessions().GetSessionByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, apierr.NotFound("session not found")
	}
	if err != nil {
		return domain.Session{}, apierr.Storage("failed to load session", err)
	}

	if session.Status == domain.SessionActive {
		if err := s.Store.Sessions().MarkStatus(ctx, session.ID, domain.SessionRevoked, time.Now()); err != nil {
			return domain.Session{}, apierr.Storage("failed to revoke session", err)
		}
	}
	return session, nil
}

// RevokeOwned terminates one session by token, but only when it belongs to
// ownerID. Foreign tokens report as unknown so they cannot be probed.
func (s *SessionService) RevokeOwned(ctx context.Context, token string, ownerID int64) (domain.Session, error) {
	session, err := s.Store.Sessions().GetSessionByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, apierr.NotFound("session not found")
	}
	if err != nil {
		return domain.Session{}, apierr.Storage("failed to load session", err)
	}

	if session.UserID != ownerID {
		return domain.Session{}, apierr.NotFound("session not found")
	}

	if session.Status == domain.SessionActive {
		if err := s.Store.Sessions().MarkStatus(ctx, session.ID, domain.SessionRevoked, time.Now()); err != nil {
			return domain.Session{}, apierr.Storage("failed to revoke session", err)
		}
	}
	return session, nil
}

// RevokeAllForUser terminates every active session of a user and returns how
// many were revoked. A non-empty exceptToken spares that session, so a
// "log out everywhere else" call keeps the current one alive.
func (s *SessionService) RevokeAllForUser(ctx context.Context, userID int64, exceptToken string) (int, error) {
	n, err := s.Store.Sessions().MarkAllForUser(ctx, userID, domain.SessionRevoked, time.Now(), exceptToken)
	if err != nil {
		return 0, apierr.Storage("failed to revoke sessions", err)
	}
	return n, nil
}

// ListForUser returns a user's active sessions, oldest first.
func (s *SessionService) ListForUser(ctx context.Context, userID int64) ([]domain.Session, error) {
	sessions, err := s.Store.Sessions().ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, apierr.Storage("failed to list sessions", err)
	}
	return sessions, nil
}

// SweepExpired flips every active session past its expiry. Running it twice
// in a row is harmless; the second sweep finds nothing.
func (s *SessionService) SweepExpired(ctx context.Context) (int, error) {
	n, err := s.Store.Sessions().MarkExpiredBefore(ctx, time.Now())
	if err != nil {
		return 0, apierr.Storage("failed to sweep expired sessions", err)
	}
	return n, nil
}
