package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, name, password_hash, password_history, password_changed_at,
	profession, role, created_at, updated_at`

func (r *usersRepo) scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u         domain.User
		history   string
		changedAt sql.NullString
		createdAt string
		updatedAt string
	)

	err := row.Scan(&u.ID, &u.Name, &u.PasswordHash, &history, &changedAt,
		&u.Profession, &u.Role, &createdAt, &updatedAt)
	if err != nil {
		return domain.User{}, err
	}

	if err := json.Unmarshal([]byte(history), &u.PasswordHistory); err != nil {
		return domain.User{}, err
	}
	if u.PasswordChangedAt, err = parseTimePtr(changedAt); err != nil {
		return domain.User{}, err
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.User{}, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.User{}, err
	}

	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := r.scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByName(ctx context.Context, name string) (domain.User, error) {
	// name is COLLATE NOCASE, so equality is case-insensitive.
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE name = ?`, name)

	u, err := r.scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u *domain.User) error {
	history, err := json.Marshal(u.PasswordHistory)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (name, password_hash, password_history, password_changed_at,
			profession, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Name, u.PasswordHash, string(history), fmtTimePtr(u.PasswordChangedAt),
		u.Profession, u.Role, fmtTime(u.CreatedAt), fmtTime(u.UpdatedAt))
	if err != nil {
		return mapConflict(err)
	}

	u.ID, err = res.LastInsertId()
	return err
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID int64, name, profession string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = ?, profession = ?, updated_at = ?
		WHERE id = ?`,
		name, profession, fmtTime(time.Now()), userID)
	return mapConflict(err)
}

func (r *usersRepo) UpdateRole(ctx context.Context, userID int64, role domain.Role) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		role, fmtTime(time.Now()), userID)
	return err
}

func (r *usersRepo) UpdatePasswordHash(
	ctx context.Context,
	userID int64,
	newHash string,
	history []string,
	changedAt time.Time,
) error {
	encoded, err := json.Marshal(history)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?, password_history = ?, password_changed_at = ?, updated_at = ?
		WHERE id = ?`,
		newHash, string(encoded), fmtTime(changedAt), fmtTime(changedAt), userID)
	return err
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	return err
}

func (r *usersRepo) ListUsers(
	ctx context.Context,
	nameFilter string,
	offset, limit int,
) ([]domain.User, error) {
	if limit <= 0 {
		limit = -1 // sqlite: LIMIT -1 means unbounded
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE (? = '' OR name LIKE '%' || ? || '%')
		ORDER BY id
		LIMIT ? OFFSET ?`,
		nameFilter, nameFilter, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) CountUsers(ctx context.Context, nameFilter string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users
		WHERE (? = '' OR name LIKE '%' || ? || '%')`,
		nameFilter, nameFilter).Scan(&count)
	return count, err
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
