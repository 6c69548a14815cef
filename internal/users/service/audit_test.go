package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/pkg/apierr"
)

func TestAuditQuery(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		s.audit.Record(ctx, Event{
			UserID:   1,
			Action:   domain.AuditActionLogin,
			Resource: "auth",
		})
	}
	s.audit.Record(ctx, Event{
		UserID:   2,
		Action:   domain.AuditActionLoginFailed,
		Resource: "auth",
		Status:   domain.AuditFailure,
	})

	t.Run("newest first", func(t *testing.T) {
		page, err := s.audit.Query(ctx, domain.AuditFilter{})
		require.NoError(t, err)
		require.Equal(t, 8, page.Total)
		for i := 1; i < len(page.Entries); i++ {
			require.GreaterOrEqual(t, page.Entries[i-1].ID, page.Entries[i].ID)
		}
	})

	t.Run("filter by user", func(t *testing.T) {
		page, err := s.audit.Query(ctx, domain.AuditFilter{UserID: 2})
		require.NoError(t, err)
		require.Equal(t, 1, page.Total)
		require.Equal(t, domain.AuditFailure, page.Entries[0].Status)
	})

	t.Run("filter by action and status", func(t *testing.T) {
		page, err := s.audit.Query(ctx, domain.AuditFilter{
			Action: domain.AuditActionLogin,
			Status: domain.AuditSuccess,
		})
		require.NoError(t, err)
		require.Equal(t, 7, page.Total)
	})

	t.Run("time range excludes the future", func(t *testing.T) {
		start := time.Now().Add(time.Hour)
		page, err := s.audit.Query(ctx, domain.AuditFilter{Start: &start})
		require.NoError(t, err)
		require.Zero(t, page.Total)
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := s.audit.Query(ctx, domain.AuditFilter{Page: 2, Limit: 3})
		require.NoError(t, err)
		require.Equal(t, 8, page.Total)
		require.Equal(t, 3, page.TotalPages)
		require.Len(t, page.Entries, 3)
	})

	t.Run("oversized limit rejected", func(t *testing.T) {
		_, err := s.audit.Query(ctx, domain.AuditFilter{Limit: 9999})
		require.ErrorIs(t, err, apierr.ErrValidation)
	})
}

func TestAuditConvenienceQueries(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s.audit.Record(ctx, Event{UserID: 1, Action: domain.AuditActionLogin, Resource: "auth"})
	}
	s.audit.Record(ctx, Event{UserID: 2, Action: domain.AuditActionUserDelete, Resource: "user", ResourceID: "42"})
	s.audit.Record(ctx, Event{UserID: 2, Action: domain.AuditActionUserDelete, Resource: "user", ResourceID: "7"})

	t.Run("recent for user honours the limit", func(t *testing.T) {
		entries, err := s.audit.RecentForUser(ctx, 1, 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		for _, e := range entries {
			require.Equal(t, int64(1), e.UserID)
		}
	})

	t.Run("history for resource filters by id", func(t *testing.T) {
		entries, err := s.audit.HistoryForResource(ctx, "user", "42", 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, "42", entries[0].ResourceID)
	})
}

func TestAuditEvictionKeepsIdsMonotonic(t *testing.T) {
	if testing.Short() {
		t.Skip("fills the audit trail past its retention cap")
	}

	s := newTestServices(t)
	ctx := context.Background()

	first := domain.AuditEntry{Action: domain.AuditActionLogin, Status: domain.AuditSuccess, Timestamp: time.Now()}
	require.NoError(t, s.store.AuditLogs().Append(ctx, &first))

	var last domain.AuditEntry
	for i := 0; i < domain.AuditMaxEntries; i++ {
		last = domain.AuditEntry{Action: domain.AuditActionLogin, Status: domain.AuditSuccess, Timestamp: time.Now()}
		require.NoError(t, s.store.AuditLogs().Append(ctx, &last))
	}

	count, err := s.store.AuditLogs().Count(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.AuditMaxEntries, count)

	// The oldest entry was evicted and its id was not reused.
	page, err := s.audit.Query(ctx, domain.AuditFilter{Limit: 1})
	require.NoError(t, err)
	require.Equal(t, last.ID, page.Entries[0].ID)
	require.Greater(t, last.ID, first.ID)
}
