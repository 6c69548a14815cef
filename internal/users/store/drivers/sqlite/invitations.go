package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `id, email, token_fingerprint, role, org_id, invited_by,
	status, expires_at, created_at, accepted_by, accepted_at, revoked_at`

func (r *invitationsRepo) scanInvitation(row interface{ Scan(...any) error }) (domain.Invitation, error) {
	var (
		inv        domain.Invitation
		expiresAt  string
		createdAt  string
		acceptedAt sql.NullString
		revokedAt  sql.NullString
	)

	err := row.Scan(&inv.ID, &inv.Email, &inv.TokenFingerprint, &inv.Role,
		&inv.OrganizationID, &inv.InvitedBy, &inv.Status, &expiresAt, &createdAt,
		&inv.AcceptedBy, &acceptedAt, &revokedAt)
	if err != nil {
		return domain.Invitation{}, err
	}

	if inv.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return domain.Invitation{}, err
	}
	if inv.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Invitation{}, err
	}
	if inv.AcceptedAt, err = parseTimePtr(acceptedAt); err != nil {
		return domain.Invitation{}, err
	}
	if inv.RevokedAt, err = parseTimePtr(revokedAt); err != nil {
		return domain.Invitation{}, err
	}

	return inv, nil
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv *domain.Invitation) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (email, token_fingerprint, role, org_id, invited_by,
			status, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.Email, inv.TokenFingerprint, inv.Role, inv.OrganizationID, inv.InvitedBy,
		inv.Status, fmtTime(inv.ExpiresAt), fmtTime(inv.CreatedAt))
	if err != nil {
		return mapConflict(err)
	}

	inv.ID, err = res.LastInsertId()
	return err
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id int64) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = ?`, id)

	inv, err := r.scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) GetPendingByFingerprint(
	ctx context.Context,
	fingerprint string,
) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE token_fingerprint = ? AND status = 'pending'`, fingerprint)

	inv, err := r.scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) GetPendingByEmail(ctx context.Context, email string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE email = ? AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1`, email)

	inv, err := r.scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) ListInvitations(
	ctx context.Context,
	status domain.InvitationStatus,
) ([]domain.Invitation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE (? = '' OR status = ?)
		ORDER BY created_at DESC, id DESC`,
		string(status), string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []domain.Invitation
	for rows.Next() {
		inv, err := r.scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *invitationsRepo) MarkAccepted(ctx context.Context, id, acceptedBy int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE invitations SET status = 'accepted', accepted_by = ?, accepted_at = ?
		WHERE id = ? AND status = 'pending'`,
		acceptedBy, fmtTime(at), id)
	return err
}

func (r *invitationsRepo) MarkRevoked(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE invitations SET status = 'revoked', revoked_at = ?
		WHERE id = ? AND status = 'pending'`,
		fmtTime(at), id)
	return err
}

func (r *invitationsRepo) ExpirePending(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations SET status = 'expired'
		WHERE status = 'pending' AND expires_at <= ?`,
		fmtTime(now))
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	return int(n), err
}
