package sqlite

import (
	"context"
	"encoding/json"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
)

type organizationsRepo struct {
	db dbtx
}

func (r *organizationsRepo) CreateOrganization(ctx context.Context, o *domain.Organization) error {
	settings, err := json.Marshal(orEmptySettings(o.Settings))
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO organizations (name, description, settings, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		o.Name, o.Description, string(settings), o.CreatedBy,
		fmtTime(o.CreatedAt), fmtTime(o.UpdatedAt))
	if err != nil {
		return mapConflict(err)
	}

	o.ID, err = res.LastInsertId()
	return err
}

func orEmptySettings(s map[string]string) map[string]string {
	if s == nil {
		return map[string]string{}
	}
	return s
}

func (r *organizationsRepo) GetOrganizationByID(ctx context.Context, id int64) (domain.Organization, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, settings, created_by, created_at, updated_at
		FROM organizations WHERE id = ?`, id)

	o, err := r.scanOrganization(row)
	if err != nil {
		return domain.Organization{}, mapNotFound(err)
	}

	if o.Members, err = r.listMembers(ctx, o.ID); err != nil {
		return domain.Organization{}, err
	}
	return o, nil
}

func (r *organizationsRepo) scanOrganization(row interface{ Scan(...any) error }) (domain.Organization, error) {
	var (
		o         domain.Organization
		settings  string
		createdAt string
		updatedAt string
	)

	err := row.Scan(&o.ID, &o.Name, &o.Description, &settings, &o.CreatedBy,
		&createdAt, &updatedAt)
	if err != nil {
		return domain.Organization{}, err
	}

	if err := json.Unmarshal([]byte(settings), &o.Settings); err != nil {
		return domain.Organization{}, err
	}
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Organization{}, err
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Organization{}, err
	}

	return o, nil
}

func (r *organizationsRepo) listMembers(ctx context.Context, orgID int64) ([]domain.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, role, joined_at
		FROM organization_members
		WHERE org_id = ?
		ORDER BY joined_at, user_id`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var (
			m        domain.Member
			joinedAt string
		)
		if err := rows.Scan(&m.UserID, &m.Role, &joinedAt); err != nil {
			return nil, err
		}
		if m.JoinedAt, err = parseTime(joinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *organizationsRepo) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, settings, created_by, created_at, updated_at
		FROM organizations
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []domain.Organization
	for rows.Next() {
		o, err := r.scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orgs {
		if orgs[i].Members, err = r.listMembers(ctx, orgs[i].ID); err != nil {
			return nil, err
		}
	}
	return orgs, nil
}

func (r *organizationsRepo) ListOrganizationsForUser(ctx context.Context, userID int64) ([]domain.Organization, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.name, o.description, o.settings, o.created_by, o.created_at, o.updated_at
		FROM organizations o
		JOIN organization_members m ON m.org_id = o.id
		WHERE m.user_id = ?
		ORDER BY o.created_at DESC, o.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []domain.Organization
	for rows.Next() {
		o, err := r.scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orgs {
		if orgs[i].Members, err = r.listMembers(ctx, orgs[i].ID); err != nil {
			return nil, err
		}
	}
	return orgs, nil
}

func (r *organizationsRepo) UpdateOrganization(
	ctx context.Context,
	id int64,
	name, description string,
	settings map[string]string,
) error {
	encoded, err := json.Marshal(orEmptySettings(settings))
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE organizations
		SET name = ?, description = ?, settings = ?, updated_at = ?
		WHERE id = ?`,
		name, description, string(encoded), fmtTime(time.Now()), id)
	return mapConflict(err)
}

func (r *organizationsRepo) DeleteOrganization(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = ?`, id)
	return err
}

func (r *organizationsRepo) AddMember(ctx context.Context, orgID int64, m domain.Member) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO organization_members (org_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)`,
		orgID, m.UserID, m.Role, fmtTime(m.JoinedAt))
	return mapConflict(err)
}

func (r *organizationsRepo) UpdateMemberRole(
	ctx context.Context,
	orgID, userID int64,
	role domain.MemberRole,
) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE organization_members SET role = ?
		WHERE org_id = ? AND user_id = ?`,
		role, orgID, userID)
	return err
}

func (r *organizationsRepo) RemoveMember(ctx context.Context, orgID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM organization_members WHERE org_id = ? AND user_id = ?`,
		orgID, userID)
	return err
}

func (r *organizationsRepo) RemoveUserFromAll(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM organization_members WHERE user_id = ?`, userID)
	return err
}
