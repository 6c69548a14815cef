package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/pkg/apierr"
	"github.com/opshelm/warden/pkg/cryptox"
)

func newInvitationService(t *testing.T, s testServices) *InvitationService {
	t.Helper()
	return &InvitationService{Store: s.store, Auth: s.auth}
}

func TestInvitationCreate(t *testing.T) {
	s := newTestServices(t)
	invs := newInvitationService(t, s)
	ctx := context.Background()
	adminID := registerTestUser(t, s, "admin")

	created, err := invs.Create(ctx, "New.Hire@Example.com", "", 0, adminID)
	require.NoError(t, err)
	require.NotEmpty(t, created.Token)
	require.Equal(t, "new.hire@example.com", created.Invitation.Email)
	require.Equal(t, domain.RoleUser, created.Invitation.Role)
	require.Equal(t, domain.InvitationPending, created.Invitation.Status)

	t.Run("only the fingerprint is stored", func(t *testing.T) {
		stored, err := s.store.Invitations().GetInvitationByID(ctx, created.Invitation.ID)
		require.NoError(t, err)
		require.Equal(t, cryptox.FingerprintToken(created.Token), stored.TokenFingerprint)
		require.NotEqual(t, created.Token, stored.TokenFingerprint)
	})

	t.Run("second pending invitation for same email conflicts", func(t *testing.T) {
		_, err := invs.Create(ctx, "new.hire@example.com", "", 0, adminID)
		require.ErrorIs(t, err, apierr.ErrConflict)
	})

	t.Run("bad email rejected", func(t *testing.T) {
		_, err := invs.Create(ctx, "not-an-email", "", 0, adminID)
		require.ErrorIs(t, err, apierr.ErrValidation)
	})

	t.Run("unknown organization not found", func(t *testing.T) {
		_, err := invs.Create(ctx, "other@example.com", "", 42, adminID)
		require.ErrorIs(t, err, apierr.ErrNotFound)
	})
}

func TestInvitationAccept(t *testing.T) {
	s := newTestServices(t)
	invs := newInvitationService(t, s)
	orgs := newOrgService(t, s)
	ctx := context.Background()
	adminID := registerTestUser(t, s, "admin")

	org, err := orgs.Create(ctx, "acme", "", nil, adminID)
	require.NoError(t, err)

	created, err := invs.Create(ctx, "hire@example.com", domain.RoleAdmin, org.ID, adminID)
	require.NoError(t, err)

	user, err := invs.Accept(ctx, created.Token, "newhire", testPassword, "engineer", testMeta)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, user.Role)

	t.Run("joined the organization", func(t *testing.T) {
		got, err := orgs.Get(ctx, org.ID)
		require.NoError(t, err)
		_, ok := findMember(got, user.ID)
		require.True(t, ok)
	})

	t.Run("token is single use", func(t *testing.T) {
		_, err := invs.Accept(ctx, created.Token, "newhire2", testPassword, "", testMeta)
		require.ErrorIs(t, err, apierr.ErrNotFound)
	})
}

func TestInvitationGetByToken(t *testing.T) {
	s := newTestServices(t)
	invs := newInvitationService(t, s)
	ctx := context.Background()
	adminID := registerTestUser(t, s, "admin")

	created, err := invs.Create(ctx, "hire@example.com", domain.RoleAdmin, 0, adminID)
	require.NoError(t, err)

	inv, err := invs.GetByToken(ctx, created.Token)
	require.NoError(t, err)
	require.Equal(t, "hire@example.com", inv.Email)
	require.Equal(t, domain.RoleAdmin, inv.Role)

	t.Run("garbage token not found", func(t *testing.T) {
		_, err := invs.GetByToken(ctx, "not-a-real-token")
		require.ErrorIs(t, err, apierr.ErrNotFound)
	})

	t.Run("expired invitation not found", func(t *testing.T) {
		short := newInvitationService(t, s)
		short.TTL = time.Millisecond

		stale, err := short.Create(ctx, "stale@example.com", "", 0, adminID)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)

		_, err = short.GetByToken(ctx, stale.Token)
		require.ErrorIs(t, err, apierr.ErrNotFound)
	})
}

func TestInvitationExpiry(t *testing.T) {
	s := newTestServices(t)
	invs := newInvitationService(t, s)
	invs.TTL = time.Millisecond
	ctx := context.Background()
	adminID := registerTestUser(t, s, "admin")

	created, err := invs.Create(ctx, "late@example.com", "", 0, adminID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	t.Run("expired token rejected", func(t *testing.T) {
		_, err := invs.Accept(ctx, created.Token, "late", testPassword, "", testMeta)
		require.ErrorIs(t, err, apierr.ErrNotFound)
	})

	t.Run("sweep flips pending to expired", func(t *testing.T) {
		// Accept already expired it eagerly; a fresh one covers the sweep.
		again, err := invs.Create(ctx, "late2@example.com", "", 0, adminID)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)

		n, err := invs.ExpirePending(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 1)

		stored, err := s.store.Invitations().GetInvitationByID(ctx, again.Invitation.ID)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationExpired, stored.Status)
	})
}

func TestInvitationRevoke(t *testing.T) {
	s := newTestServices(t)
	invs := newInvitationService(t, s)
	ctx := context.Background()
	adminID := registerTestUser(t, s, "admin")

	created, err := invs.Create(ctx, "gone@example.com", "", 0, adminID)
	require.NoError(t, err)

	require.NoError(t, invs.Revoke(ctx, created.Invitation.ID))

	t.Run("revoked token rejected", func(t *testing.T) {
		_, err := invs.Accept(ctx, created.Token, "gone", testPassword, "", testMeta)
		require.ErrorIs(t, err, apierr.ErrNotFound)
	})

	t.Run("revoking twice conflicts", func(t *testing.T) {
		require.ErrorIs(t, invs.Revoke(ctx, created.Invitation.ID), apierr.ErrConflict)
	})
}
