package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/pkg/apierr"
)

func TestRegister(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	t.Run("first account becomes admin", func(t *testing.T) {
		u, err := s.auth.Register(ctx, "alice", testPassword, "engineer", testMeta)
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, u.Role)
		require.NotZero(t, u.ID)
	})

	t.Run("subsequent accounts are regular users", func(t *testing.T) {
		u, err := s.auth.Register(ctx, "bob", testPassword, "writer", testMeta)
		require.NoError(t, err)
		require.Equal(t, domain.RoleUser, u.Role)
	})

	t.Run("duplicate name conflicts case-insensitively", func(t *testing.T) {
		_, err := s.auth.Register(ctx, "ALICE", testPassword, "", testMeta)
		require.ErrorIs(t, err, apierr.ErrConflict)
	})

	t.Run("weak password rejected with all violations", func(t *testing.T) {
		_, err := s.auth.Register(ctx, "carol", "weak", "", testMeta)
		require.ErrorIs(t, err, apierr.ErrValidation)

		ae := apierr.From(err)
		require.Len(t, ae.Details["violations"], 4)
	})
}

func TestLogin(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	registerTestUser(t, s, "alice")

	t.Run("success returns token and session", func(t *testing.T) {
		res, err := s.auth.Login(ctx, "alice", testPassword, testMeta)
		require.NoError(t, err)
		require.Equal(t, "alice", res.User.Name)
		require.NotEmpty(t, res.AccessToken)
		require.NotEmpty(t, res.SessionID)
		require.Empty(t, res.PasswordWarning)
	})

	t.Run("name resolution is case-insensitive", func(t *testing.T) {
		_, err := s.auth.Login(ctx, "Alice", testPassword, testMeta)
		require.NoError(t, err)
	})

	t.Run("unknown name and wrong password are indistinguishable", func(t *testing.T) {
		_, unknownErr := s.auth.Login(ctx, "nobody", testPassword, testMeta)
		_, wrongErr := s.auth.Login(ctx, "alice", "Wr0ng-Pass!", testMeta)

		require.ErrorIs(t, unknownErr, apierr.ErrAuthentication)
		require.ErrorIs(t, wrongErr, apierr.ErrAuthentication)
		require.Equal(t, apierr.From(unknownErr).Message, apierr.From(wrongErr).Message)
	})
}

func TestLoginLockout(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	userID := registerTestUser(t, s, "alice")

	// Four failures stay unlocked.
	for i := 0; i < 4; i++ {
		_, err := s.auth.Login(ctx, "alice", "Wr0ng-Pass!", testMeta)
		require.ErrorIs(t, err, apierr.ErrAuthentication)
	}

	status, err := s.lockouts.Status(ctx, userID)
	require.NoError(t, err)
	require.False(t, status.IsLocked)
	require.Equal(t, 1, status.AttemptsRemaining)

	// The fifth failure trips the lock.
	_, err = s.auth.Login(ctx, "alice", "Wr0ng-Pass!", testMeta)
	require.ErrorIs(t, err, apierr.ErrLocked)

	t.Run("locked account rejects even the correct password", func(t *testing.T) {
		_, err := s.auth.Login(ctx, "alice", testPassword, testMeta)
		require.ErrorIs(t, err, apierr.ErrLocked)
	})

	t.Run("lock reports zero attempts remaining", func(t *testing.T) {
		status, err := s.lockouts.Status(ctx, userID)
		require.NoError(t, err)
		require.True(t, status.IsLocked)
		require.Zero(t, status.AttemptsRemaining)
		require.NotNil(t, status.LockedUntil)
	})

	t.Run("expired lock releases", func(t *testing.T) {
		advanceLockClock(t, s, userID, 16*time.Minute)

		res, err := s.auth.Login(ctx, "alice", testPassword, testMeta)
		require.NoError(t, err)
		require.NotEmpty(t, res.SessionID)
	})

	t.Run("successful login cleared the attempt history", func(t *testing.T) {
		status, err := s.lockouts.Status(ctx, userID)
		require.NoError(t, err)
		require.False(t, status.IsLocked)
		require.Equal(t, s.lockouts.Config.MaxAttempts, status.AttemptsRemaining)
	})
}

func TestLoginAttemptWindow(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	userID := registerTestUser(t, s, "alice")

	for i := 0; i < 4; i++ {
		_, err := s.auth.Login(ctx, "alice", "Wr0ng-Pass!", testMeta)
		require.ErrorIs(t, err, apierr.ErrAuthentication)
	}

	// Push the failures just past the window; an attempt sitting exactly on
	// the boundary must not count either.
	advanceLockClock(t, s, userID, s.lockouts.Config.AttemptWindow)

	_, err := s.auth.Login(ctx, "alice", "Wr0ng-Pass!", testMeta)
	require.ErrorIs(t, err, apierr.ErrAuthentication, "stale attempts must not trip the lock")

	status, err := s.lockouts.Status(ctx, userID)
	require.NoError(t, err)
	require.False(t, status.IsLocked)
}

func TestLogout(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	registerTestUser(t, s, "alice")

	res, err := s.auth.Login(ctx, "alice", testPassword, testMeta)
	require.NoError(t, err)

	require.NoError(t, s.auth.Logout(ctx, res.SessionID, testMeta))

	_, err = s.sessions.Validate(ctx, res.SessionID)
	require.ErrorIs(t, err, apierr.ErrAuthentication)

	t.Run("unknown session is not found", func(t *testing.T) {
		err := s.auth.Logout(ctx, "no-such-token", testMeta)
		require.ErrorIs(t, err, apierr.ErrNotFound)
	})
}

func TestLoginAuditTrail(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	userID := registerTestUser(t, s, "alice")

	_, _ = s.auth.Login(ctx, "alice", "Wr0ng-Pass!", testMeta)
	_, err := s.auth.Login(ctx, "alice", testPassword, testMeta)
	require.NoError(t, err)

	page, err := s.audit.Query(ctx, domain.AuditFilter{UserID: userID})
	require.NoError(t, err)

	actions := make([]string, 0, len(page.Entries))
	for _, e := range page.Entries {
		actions = append(actions, e.Action)
	}
	require.Contains(t, actions, domain.AuditActionRegister)
	require.Contains(t, actions, domain.AuditActionLoginFailed)
	require.Contains(t, actions, domain.AuditActionLogin)
}
