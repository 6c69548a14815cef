package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/opshelm/warden/internal/users/domain"
)

type auditLogsRepo struct {
	db dbtx
}

func (r *auditLogsRepo) Append(ctx context.Context, e *domain.AuditEntry) error {
	details := sql.NullString{}
	if len(e.Details) > 0 {
		encoded, err := json.Marshal(e.Details)
		if err != nil {
			return err
		}
		details = sql.NullString{String: string(encoded), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (user_id, action, resource, resource_id, details,
			ip_address, user_agent, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Action, e.Resource, e.ResourceID, details,
		e.IPAddress, e.UserAgent, e.Status, fmtTime(e.Timestamp))
	if err != nil {
		return err
	}

	if e.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	// Evict the oldest rows past the retention cap. AUTOINCREMENT ids keep
	// increasing, so ids stay monotonic across evictions.
	_, err = r.db.ExecContext(ctx, `
		DELETE FROM audit_logs
		WHERE id NOT IN (SELECT id FROM audit_logs ORDER BY id DESC LIMIT ?)`,
		domain.AuditMaxEntries)
	return err
}

func (r *auditLogsRepo) Query(ctx context.Context, f domain.AuditFilter) (domain.AuditPage, error) {
	where := ` WHERE 1=1`
	var args []any

	if f.UserID != 0 {
		where += ` AND user_id = ?`
		args = append(args, f.UserID)
	}
	if f.Action != "" {
		where += ` AND action = ?`
		args = append(args, f.Action)
	}
	if f.Resource != "" {
		where += ` AND resource = ?`
		args = append(args, f.Resource)
	}
	if f.ResourceID != "" {
		where += ` AND resource_id = ?`
		args = append(args, f.ResourceID)
	}
	if f.Status != "" {
		where += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Start != nil {
		where += ` AND created_at >= ?`
		args = append(args, fmtTime(*f.Start))
	}
	if f.End != nil {
		where += ` AND created_at <= ?`
		args = append(args, fmtTime(*f.End))
	}

	page := domain.AuditPage{Page: f.Page, Limit: f.Limit}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Limit < 1 {
		page.Limit = 50
	}

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_logs`+where, args...).Scan(&page.Total)
	if err != nil {
		return domain.AuditPage{}, err
	}
	page.TotalPages = (page.Total + page.Limit - 1) / page.Limit

	args = append(args, page.Limit, (page.Page-1)*page.Limit)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, action, resource, resource_id, details,
			ip_address, user_agent, status, created_at
		FROM audit_logs`+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return domain.AuditPage{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e         domain.AuditEntry
			details   sql.NullString
			createdAt string
		)
		err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Resource, &e.ResourceID,
			&details, &e.IPAddress, &e.UserAgent, &e.Status, &createdAt)
		if err != nil {
			return domain.AuditPage{}, err
		}
		if details.Valid {
			if err := json.Unmarshal([]byte(details.String), &e.Details); err != nil {
				return domain.AuditPage{}, err
			}
		}
		if e.Timestamp, err = parseTime(createdAt); err != nil {
			return domain.AuditPage{}, err
		}
		page.Entries = append(page.Entries, e)
	}
	return page, rows.Err()
}

func (r *auditLogsRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&count)
	return count, err
}
