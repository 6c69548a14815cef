package sqlite

import (
	"context"
	"encoding/json"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
)

type preferencesRepo struct {
	db dbtx
}

func (r *preferencesRepo) GetPreferences(ctx context.Context, userID int64) (domain.UserPreferences, error) {
	var (
		settings  string
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT settings, updated_at FROM user_preferences WHERE user_id = ?`,
		userID).Scan(&settings, &updatedAt)
	if err != nil {
		return domain.UserPreferences{}, mapNotFound(err)
	}

	p := domain.UserPreferences{UserID: userID}
	if err := json.Unmarshal([]byte(settings), &p.Settings); err != nil {
		return domain.UserPreferences{}, err
	}
	at, err := parseTime(updatedAt)
	if err != nil {
		return domain.UserPreferences{}, err
	}
	p.UpdatedAt = &at
	return p, nil
}

func (r *preferencesRepo) UpsertPreferences(ctx context.Context, p domain.UserPreferences) error {
	settings, err := json.Marshal(p.Settings)
	if err != nil {
		return err
	}

	updatedAt := time.Now()
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, settings, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			settings = excluded.settings,
			updated_at = excluded.updated_at`,
		p.UserID, string(settings), fmtTime(updatedAt))
	return err
}

func (r *preferencesRepo) DeletePreferences(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_preferences WHERE user_id = ?`, userID)
	return err
}
