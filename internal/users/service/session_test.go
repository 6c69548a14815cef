package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/pkg/apierr"
)

func TestSessionCreateAndValidate(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	userID := registerTestUser(t, s, "alice")

	created, err := s.sessions.Create(ctx, userID, "203.0.113.7", "go-test")
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Len(t, created.Token, 43) // 256 bits base64url

	got, err := s.sessions.Validate(ctx, created.Token)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, domain.SessionActive, got.Status)

	t.Run("unknown token rejected", func(t *testing.T) {
		_, err := s.sessions.Validate(ctx, "bogus")
		require.ErrorIs(t, err, apierr.ErrAuthentication)
	})
}

func TestSessionCapEvictsOldest(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	userID := registerTestUser(t, s, "alice")

	tokens := make([]string, 0, DefaultMaxSessionsPerUser+1)
	for i := 0; i < DefaultMaxSessionsPerUser+1; i++ {
		sess, err := s.sessions.Create(ctx, userID, "", "")
		require.NoError(t, err)
		tokens = append(tokens, sess.Token)
		time.Sleep(2 * time.Millisecond) // distinct created_at ordering
	}

	active, err := s.sessions.ListForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, active, DefaultMaxSessionsPerUser)

	// The first session was evicted; the rest still validate.
	_, err = s.sessions.Validate(ctx, tokens[0])
	require.ErrorIs(t, err, apierr.ErrAuthentication)
	for _, token := range tokens[1:] {
		_, err := s.sessions.Validate(ctx, token)
		require.NoError(t, err)
	}
}

func TestSessionExpiry(t *testing.T) {
	s := newTestServices(t)
	s.sessions.TTL = time.Millisecond
	ctx := context.Background()
	userID := registerTestUser(t, s, "alice")

	sess, err := s.sessions.Create(ctx, userID, "", "")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	// Validation flips the session to expired on the spot.
	_, err = s.sessions.Validate(ctx, sess.Token)
	require.ErrorIs(t, err, apierr.ErrAuthentication)

	stored, err := s.store.Sessions().GetSessionByToken(ctx, sess.Token)
	require.NoError(t, err)
	require.Equal(t, domain.SessionExpired, stored.Status)
}

func TestSessionSweepExpired(t *testing.T) {
	s := newTestServices(t)
	s.sessions.TTL = time.Millisecond
	ctx := context.Background()
	userID := registerTestUser(t, s, "alice")

	for i := 0; i < 3; i++ {
		_, err := s.sessions.Create(ctx, userID, "", "")
		require.NoError(t, err)
	}
	time.Sleep(5 * time.Millisecond)

	n, err := s.sessions.SweepExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	t.Run("second sweep finds nothing", func(t *testing.T) {
		n, err := s.sessions.SweepExpired(ctx)
		require.NoError(t, err)
		require.Zero(t, n)
	})
}

func TestSessionRevokeAllForUser(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	userID := registerTestUser(t, s, "alice")
	otherID := registerTestUser(t, s, "bob")

	for i := 0; i < 3; i++ {
		_, err := s.sessions.Create(ctx, userID, "", "")
		require.NoError(t, err)
	}
	other, err := s.sessions.Create(ctx, otherID, "", "")
	require.NoError(t, err)

	n, err := s.sessions.RevokeAllForUser(ctx, userID, "")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	active, err := s.sessions.ListForUser(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, active)

	// Other users are untouched.
	_, err = s.sessions.Validate(ctx, other.Token)
	require.NoError(t, err)
}

func TestSessionRevokeAllExceptCurrent(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	userID := registerTestUser(t, s, "alice")

	var kept domain.Session
	for i := 0; i < 3; i++ {
		sess, err := s.sessions.Create(ctx, userID, "", "")
		require.NoError(t, err)
		kept = sess
	}

	n, err := s.sessions.RevokeAllForUser(ctx, userID, kept.Token)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, err = s.sessions.Validate(ctx, kept.Token)
	require.NoError(t, err)

	active, err := s.sessions.ListForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, active, 1)
}

func TestSessionTouch(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	userID := registerTestUser(t, s, "alice")

	sess, err := s.sessions.Create(ctx, userID, "", "")
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	require.NoError(t, s.sessions.Touch(ctx, sess.ID))

	stored, err := s.store.Sessions().GetSessionByToken(ctx, sess.Token)
	require.NoError(t, err)
	require.True(t, stored.LastActivityAt.After(sess.LastActivityAt))
}
