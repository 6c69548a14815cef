package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/pkg/apierr"
)

func newOrgService(t *testing.T, s testServices) *OrganizationService {
	t.Helper()
	return &OrganizationService{Store: s.store}
}

func TestOrganizationLifecycle(t *testing.T) {
	s := newTestServices(t)
	orgs := newOrgService(t, s)
	ctx := context.Background()
	ownerID := registerTestUser(t, s, "alice")

	org, err := orgs.Create(ctx, "acme", "rocket supplies", map[string]string{"tier": "gold"}, ownerID)
	require.NoError(t, err)
	require.NotZero(t, org.ID)
	require.Len(t, org.Members, 1)
	require.Equal(t, domain.MemberOwner, org.Members[0].Role)

	t.Run("duplicate name conflicts", func(t *testing.T) {
		_, err := orgs.Create(ctx, "ACME", "", nil, ownerID)
		require.ErrorIs(t, err, apierr.ErrConflict)
	})

	t.Run("update keeps blank fields", func(t *testing.T) {
		updated, err := orgs.Update(ctx, org.ID, "", "rockets and anvils", nil)
		require.NoError(t, err)
		require.Equal(t, "acme", updated.Name)
		require.Equal(t, "rockets and anvils", updated.Description)
		require.Equal(t, "gold", updated.Settings["tier"])
	})

	t.Run("delete removes organization and memberships", func(t *testing.T) {
		require.NoError(t, orgs.Delete(ctx, org.ID))
		_, err := orgs.Get(ctx, org.ID)
		require.ErrorIs(t, err, apierr.ErrNotFound)
	})
}

func TestOrganizationListForUser(t *testing.T) {
	s := newTestServices(t)
	orgs := newOrgService(t, s)
	ctx := context.Background()
	aliceID := registerTestUser(t, s, "alice")
	bobID := registerTestUser(t, s, "bob")

	acme, err := orgs.Create(ctx, "acme", "", nil, aliceID)
	require.NoError(t, err)
	_, err = orgs.Create(ctx, "globex", "", nil, bobID)
	require.NoError(t, err)
	_, err = orgs.AddMember(ctx, acme.ID, bobID, domain.MemberMember)
	require.NoError(t, err)

	mine, err := orgs.ListForUser(ctx, aliceID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "acme", mine[0].Name)
	require.Len(t, mine[0].Members, 2)

	theirs, err := orgs.ListForUser(ctx, bobID)
	require.NoError(t, err)
	require.Len(t, theirs, 2)

	t.Run("no memberships yields empty list", func(t *testing.T) {
		carolID := registerTestUser(t, s, "carol")
		none, err := orgs.ListForUser(ctx, carolID)
		require.NoError(t, err)
		require.Empty(t, none)
	})
}

func TestOrganizationMembers(t *testing.T) {
	s := newTestServices(t)
	orgs := newOrgService(t, s)
	ctx := context.Background()
	ownerID := registerTestUser(t, s, "alice")
	memberID := registerTestUser(t, s, "bob")

	org, err := orgs.Create(ctx, "acme", "", nil, ownerID)
	require.NoError(t, err)

	t.Run("add member defaults to member role", func(t *testing.T) {
		updated, err := orgs.AddMember(ctx, org.ID, memberID, "")
		require.NoError(t, err)
		require.Len(t, updated.Members, 2)
	})

	t.Run("adding twice conflicts", func(t *testing.T) {
		_, err := orgs.AddMember(ctx, org.ID, memberID, domain.MemberAdmin)
		require.ErrorIs(t, err, apierr.ErrConflict)
	})

	t.Run("unknown user not found", func(t *testing.T) {
		_, err := orgs.AddMember(ctx, org.ID, 9999, domain.MemberMember)
		require.ErrorIs(t, err, apierr.ErrNotFound)
	})

	t.Run("promote member to admin", func(t *testing.T) {
		updated, err := orgs.UpdateMemberRole(ctx, org.ID, memberID, domain.MemberAdmin)
		require.NoError(t, err)

		m, ok := findMember(updated, memberID)
		require.True(t, ok)
		require.Equal(t, domain.MemberAdmin, m.Role)
	})

	t.Run("last owner cannot be demoted", func(t *testing.T) {
		_, err := orgs.UpdateMemberRole(ctx, org.ID, ownerID, domain.MemberMember)
		require.ErrorIs(t, err, apierr.ErrConflict)
	})

	t.Run("last owner cannot leave", func(t *testing.T) {
		_, err := orgs.RemoveMember(ctx, org.ID, ownerID)
		require.ErrorIs(t, err, apierr.ErrConflict)
	})

	t.Run("member can leave", func(t *testing.T) {
		updated, err := orgs.RemoveMember(ctx, org.ID, memberID)
		require.NoError(t, err)
		require.Len(t, updated.Members, 1)
	})
}
