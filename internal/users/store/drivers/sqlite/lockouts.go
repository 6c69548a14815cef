package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/internal/users/store"
)

type lockoutsRepo struct {
	db dbtx
}

func (r *lockoutsRepo) GetRecord(ctx context.Context, userID int64) (domain.LockoutRecord, error) {
	rec := domain.LockoutRecord{UserID: userID}

	rows, err := r.db.QueryContext(ctx, `
		SELECT attempted_at, source_addr
		FROM login_attempts
		WHERE user_id = ?
		ORDER BY attempted_at`, userID)
	if err != nil {
		return domain.LockoutRecord{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			at   string
			addr string
		)
		if err := rows.Scan(&at, &addr); err != nil {
			return domain.LockoutRecord{}, err
		}
		ts, err := parseTime(at)
		if err != nil {
			return domain.LockoutRecord{}, err
		}
		rec.FailedAttempts = append(rec.FailedAttempts, domain.LoginAttempt{
			Timestamp:  ts,
			SourceAddr: addr,
		})
	}
	if err := rows.Err(); err != nil {
		return domain.LockoutRecord{}, err
	}

	var until string
	err = r.db.QueryRowContext(ctx,
		`SELECT locked_until FROM lockouts WHERE user_id = ?`, userID).Scan(&until)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// no lock row; attempts alone are still a record
	case err != nil:
		return domain.LockoutRecord{}, err
	default:
		t, err := parseTime(until)
		if err != nil {
			return domain.LockoutRecord{}, err
		}
		rec.LockedUntil = &t
	}

	if len(rec.FailedAttempts) == 0 && rec.LockedUntil == nil {
		return domain.LockoutRecord{}, store.ErrNotFound
	}
	return rec, nil
}

func (r *lockoutsRepo) AddAttempt(ctx context.Context, userID int64, attempt domain.LoginAttempt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO login_attempts (user_id, attempted_at, source_addr)
		VALUES (?, ?, ?)`,
		userID, fmtTime(attempt.Timestamp), attempt.SourceAddr)
	return err
}

func (r *lockoutsRepo) PruneAttempts(ctx context.Context, userID int64, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM login_attempts WHERE user_id = ? AND attempted_at <= ?`,
		userID, fmtTime(cutoff))
	return err
}

func (r *lockoutsRepo) SetLock(ctx context.Context, userID int64, until time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lockouts (user_id, locked_until)
		VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET locked_until = excluded.locked_until`,
		userID, fmtTime(until))
	return err
}

func (r *lockoutsRepo) ClearRecord(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM login_attempts WHERE user_id = ?`, userID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM lockouts WHERE user_id = ?`, userID)
	return err
}

func (r *lockoutsRepo) ListLocked(ctx context.Context, now time.Time) ([]domain.LockedAccount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.user_id, l.locked_until,
			(SELECT COUNT(*) FROM login_attempts a WHERE a.user_id = l.user_id)
		FROM lockouts l
		WHERE l.locked_until > ?
		ORDER BY l.locked_until`, fmtTime(now))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locked []domain.LockedAccount
	for rows.Next() {
		var (
			acc   domain.LockedAccount
			until string
		)
		if err := rows.Scan(&acc.UserID, &until, &acc.FailedAttempts); err != nil {
			return nil, err
		}
		if acc.LockedUntil, err = parseTime(until); err != nil {
			return nil, err
		}
		locked = append(locked, acc)
	}
	return locked, rows.Err()
}
