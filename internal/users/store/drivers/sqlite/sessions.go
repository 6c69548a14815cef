package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
)

type sessionsRepo struct {
	db dbtx
}

const sessionColumns = `id, token, user_id, status, ip_address, user_agent,
	created_at, last_activity_at, expires_at, revoked_at`

func (r *sessionsRepo) scanSession(row interface{ Scan(...any) error }) (domain.Session, error) {
	var (
		s            domain.Session
		createdAt    string
		lastActivity string
		expiresAt    string
		revokedAt    sql.NullString
	)

	err := row.Scan(&s.ID, &s.Token, &s.UserID, &s.Status, &s.IPAddress,
		&s.UserAgent, &createdAt, &lastActivity, &expiresAt, &revokedAt)
	if err != nil {
		return domain.Session{}, err
	}

	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Session{}, err
	}
	if s.LastActivityAt, err = parseTime(lastActivity); err != nil {
		return domain.Session{}, err
	}
	if s.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return domain.Session{}, err
	}
	if s.RevokedAt, err = parseTimePtr(revokedAt); err != nil {
		return domain.Session{}, err
	}

	return s, nil
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s *domain.Session) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, status, ip_address, user_agent,
			created_at, last_activity_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Token, s.UserID, s.Status, s.IPAddress, s.UserAgent,
		fmtTime(s.CreatedAt), fmtTime(s.LastActivityAt), fmtTime(s.ExpiresAt))
	if err != nil {
		return mapConflict(err)
	}

	s.ID, err = res.LastInsertId()
	return err
}

func (r *sessionsRepo) GetSessionByToken(ctx context.Context, token string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token = ?`, token)

	s, err := r.scanSession(row)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sessionsRepo) ListActiveByUser(ctx context.Context, userID int64) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE user_id = ? AND status = 'active'
		ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		s, err := r.scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *sessionsRepo) CountActiveByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE user_id = ? AND status = 'active'`,
		userID).Scan(&count)
	return count, err
}

func (r *sessionsRepo) Touch(ctx context.Context, sessionID int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET last_activity_at = ?
		WHERE id = ? AND status = 'active'`,
		fmtTime(at), sessionID)
	return err
}

func (r *sessionsRepo) MarkStatus(
	ctx context.Context,
	sessionID int64,
	status domain.SessionStatus,
	at time.Time,
) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET status = ?, revoked_at = ?
		WHERE id = ? AND status = 'active'`,
		status, fmtTime(at), sessionID)
	return err
}

func (r *sessionsRepo) MarkAllForUser(
	ctx context.Context,
	userID int64,
	status domain.SessionStatus,
	at time.Time,
	exceptToken string,
) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET status = ?, revoked_at = ?
		WHERE user_id = ? AND status = 'active'
		  AND (? = '' OR token != ?)`,
		status, fmtTime(at), userID, exceptToken, exceptToken)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	return int(n), err
}

func (r *sessionsRepo) MarkExpiredBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET status = 'expired'
		WHERE status = 'active' AND expires_at <= ?`,
		fmtTime(cutoff))
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	return int(n), err
}
