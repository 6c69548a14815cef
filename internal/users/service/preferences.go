package service

import (
	"context"
	"errors"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/internal/users/store"
	"github.com/opshelm/warden/pkg/apierr"
)

// PreferencesService reads and patches per-user settings. Users without a
// stored row get the defaults.
type PreferencesService struct {
	Store store.Store
}

// Get returns a user's effective preferences.
func (s *PreferencesService) Get(ctx context.Context, userID int64) (domain.Preferences, error) {
	p, err := s.Store.Preferences().GetPreferences(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.DefaultPreferences(), nil
	}
	if err != nil {
		return domain.Preferences{}, apierr.Storage("failed to load preferences", err)
	}
	return p.Settings, nil
}

// Update applies a partial patch on top of the user's current settings. The
// read-modify-write runs in one transaction so concurrent patches cannot
// drop each other's fields.
func (s *PreferencesService) Update(ctx context.Context, userID int64, patch domain.PreferencesPatch) (domain.Preferences, error) {
	if err := validatePatch(patch); err != nil {
		return domain.Preferences{}, err
	}

	var settings domain.Preferences
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Preferences().GetPreferences(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			current = domain.UserPreferences{
				UserID:   userID,
				Settings: domain.DefaultPreferences(),
			}
		} else if err != nil {
			return err
		}

		current.Settings.Apply(patch)
		now := time.Now()
		current.UpdatedAt = &now
		settings = current.Settings

		return tx.Preferences().UpsertPreferences(ctx, current)
	})
	if err != nil {
		return domain.Preferences{}, apierr.Storage("failed to update preferences", err)
	}
	return settings, nil
}

func validatePatch(patch domain.PreferencesPatch) error {
	var violations []string

	if patch.Theme != nil && *patch.Theme != "light" && *patch.Theme != "dark" {
		violations = append(violations, "theme must be 'light' or 'dark'")
	}
	if patch.TimeFormat != nil && *patch.TimeFormat != "12h" && *patch.TimeFormat != "24h" {
		violations = append(violations, "timeFormat must be '12h' or '24h'")
	}
	if patch.DateFormat != nil {
		switch *patch.DateFormat {
		case "MM/DD/YYYY", "DD/MM/YYYY", "YYYY-MM-DD":
		default:
			violations = append(violations, "dateFormat must be 'MM/DD/YYYY', 'DD/MM/YYYY' or 'YYYY-MM-DD'")
		}
	}

	if len(violations) > 0 {
		return apierr.Validation("invalid preferences", violations...)
	}
	return nil
}

// Import replaces the user's stored settings with a full document, e.g. one
// previously exported. The document is validated like a patch.
func (s *PreferencesService) Import(ctx context.Context, userID int64, doc domain.Preferences) (domain.Preferences, error) {
	if err := validateDocument(doc); err != nil {
		return domain.Preferences{}, err
	}

	now := time.Now()
	err := s.Store.Preferences().UpsertPreferences(ctx, domain.UserPreferences{
		UserID:    userID,
		Settings:  doc,
		UpdatedAt: &now,
	})
	if err != nil {
		return domain.Preferences{}, apierr.Storage("failed to import preferences", err)
	}
	return doc, nil
}

// GetForUser is the admin view of another user's preferences. Unknown users
// report NotFound instead of silently returning defaults.
func (s *PreferencesService) GetForUser(ctx context.Context, userID int64) (domain.Preferences, error) {
	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Preferences{}, apierr.NotFound("user not found")
		}
		return domain.Preferences{}, apierr.Storage("failed to load user", err)
	}
	return s.Get(ctx, userID)
}

func validateDocument(doc domain.Preferences) error {
	return validatePatch(domain.PreferencesPatch{
		Theme:      &doc.Theme,
		TimeFormat: &doc.TimeFormat,
		DateFormat: &doc.DateFormat,
	})
}

// Reset restores the defaults by dropping the stored row.
func (s *PreferencesService) Reset(ctx context.Context, userID int64) (domain.Preferences, error) {
	if err := s.Store.Preferences().DeletePreferences(ctx, userID); err != nil {
		return domain.Preferences{}, apierr.Storage("failed to reset preferences", err)
	}
	return domain.DefaultPreferences(), nil
}
