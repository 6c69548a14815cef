package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/internal/users/store"
	"github.com/opshelm/warden/pkg/apierr"
	"github.com/opshelm/warden/pkg/slogx"
)

// AuditService appends and queries the security audit trail. Appends never
// fail the calling operation: a broken trail is logged, not surfaced.
type AuditService struct {
	Store store.Store
}

// Event is what callers hand to Record; timestamps and ids are assigned here.
type Event struct {
	UserID     int64
	Action     string
	Resource   string
	ResourceID string
	Details    map[string]any
	IPAddress  string
	UserAgent  string
	Status     domain.AuditStatus
}

// Record appends an audit entry. Errors are swallowed after logging so the
// triggering operation still succeeds.
func (s *AuditService) Record(ctx context.Context, ev Event) {
	if ev.Status == "" {
		ev.Status = domain.AuditSuccess
	}

	entry := domain.AuditEntry{
		UserID:     ev.UserID,
		Action:     ev.Action,
		Resource:   ev.Resource,
		ResourceID: ev.ResourceID,
		Details:    ev.Details,
		IPAddress:  ev.IPAddress,
		UserAgent:  ev.UserAgent,
		Status:     ev.Status,
		Timestamp:  time.Now(),
	}

	if err := s.Store.AuditLogs().Append(ctx, &entry); err != nil {
		slogx.FromContext(ctx).Error("failed to append audit entry",
			slog.String("action", ev.Action),
			slog.Any("err", err))
	}
}

// RecordTx appends an audit entry inside the caller's transaction so it
// commits or rolls back with the rest of the operation.
func (s *AuditService) RecordTx(ctx context.Context, tx store.Tx, ev Event) error {
	if ev.Status == "" {
		ev.Status = domain.AuditSuccess
	}

	entry := domain.AuditEntry{
		UserID:     ev.UserID,
		Action:     ev.Action,
		Resource:   ev.Resource,
		ResourceID: ev.ResourceID,
		Details:    ev.Details,
		IPAddress:  ev.IPAddress,
		UserAgent:  ev.UserAgent,
		Status:     ev.Status,
		Timestamp:  time.Now(),
	}

	return tx.AuditLogs().Append(ctx, &entry)
}

// Query returns one page of the trail, newest first.
func (s *AuditService) Query(ctx context.Context, f domain.AuditFilter) (domain.AuditPage, error) {
	if f.Limit > 500 {
		return domain.AuditPage{}, apierr.Validation("limit must not exceed 500")
	}

	page, err := s.Store.AuditLogs().Query(ctx, f)
	if err != nil {
		return domain.AuditPage{}, apierr.Storage("failed to query audit trail", err)
	}
	return page, nil
}

// RecentForUser returns the newest entries attributed to one user.
func (s *AuditService) RecentForUser(ctx context.Context, userID int64, limit int) ([]domain.AuditEntry, error) {
	page, err := s.Query(ctx, domain.AuditFilter{UserID: userID, Limit: limit})
	if err != nil {
		return nil, err
	}
	return page.Entries, nil
}

// HistoryForResource returns the newest entries touching one resource.
func (s *AuditService) HistoryForResource(ctx context.Context, resource, resourceID string, limit int) ([]domain.AuditEntry, error) {
	page, err := s.Query(ctx, domain.AuditFilter{Resource: resource, ResourceID: resourceID, Limit: limit})
	if err != nil {
		return nil, err
	}
	return page.Entries, nil
}
