package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/pkg/apierr"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestPreferences(t *testing.T) {
	s := newTestServices(t)
	prefs := &PreferencesService{Store: s.store}
	ctx := context.Background()
	userID := registerTestUser(t, s, "alice")

	t.Run("defaults before any update", func(t *testing.T) {
		p, err := prefs.Get(ctx, userID)
		require.NoError(t, err)
		require.Equal(t, domain.DefaultPreferences(), p)
	})

	t.Run("patch touches only named fields", func(t *testing.T) {
		p, err := prefs.Update(ctx, userID, domain.PreferencesPatch{
			Theme: strPtr("dark"),
			Notifications: &domain.NotificationPrefsPatch{
				SMS: boolPtr(true),
			},
		})
		require.NoError(t, err)
		require.Equal(t, "dark", p.Theme)
		require.True(t, p.Notifications.SMS)

		// Untouched fields keep their defaults.
		require.Equal(t, "en", p.Language)
		require.True(t, p.Notifications.Email)
	})

	t.Run("later patch does not clobber earlier one", func(t *testing.T) {
		p, err := prefs.Update(ctx, userID, domain.PreferencesPatch{
			Language: strPtr("de"),
		})
		require.NoError(t, err)
		require.Equal(t, "de", p.Language)
		require.Equal(t, "dark", p.Theme)
		require.True(t, p.Notifications.SMS)
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		_, err := prefs.Update(ctx, userID, domain.PreferencesPatch{
			Theme:      strPtr("neon"),
			TimeFormat: strPtr("13h"),
		})
		require.ErrorIs(t, err, apierr.ErrValidation)

		ae := apierr.From(err)
		require.Len(t, ae.Details["violations"], 2)
	})

	t.Run("reset restores defaults", func(t *testing.T) {
		p, err := prefs.Reset(ctx, userID)
		require.NoError(t, err)
		require.Equal(t, domain.DefaultPreferences(), p)

		p, err = prefs.Get(ctx, userID)
		require.NoError(t, err)
		require.Equal(t, domain.DefaultPreferences(), p)
	})
}

func TestPreferencesImport(t *testing.T) {
	s := newTestServices(t)
	prefs := &PreferencesService{Store: s.store}
	ctx := context.Background()
	userID := registerTestUser(t, s, "alice")

	doc := domain.DefaultPreferences()
	doc.Theme = "dark"
	doc.Language = "fr"
	doc.Notifications.SMS = true

	got, err := prefs.Import(ctx, userID, doc)
	require.NoError(t, err)
	require.Equal(t, doc, got)

	t.Run("import replaces the whole document", func(t *testing.T) {
		p, err := prefs.Get(ctx, userID)
		require.NoError(t, err)
		require.Equal(t, doc, p)
	})

	t.Run("invalid document rejected", func(t *testing.T) {
		bad := domain.DefaultPreferences()
		bad.Theme = "neon"
		_, err := prefs.Import(ctx, userID, bad)
		require.ErrorIs(t, err, apierr.ErrValidation)
	})
}

func TestPreferencesGetForUser(t *testing.T) {
	s := newTestServices(t)
	prefs := &PreferencesService{Store: s.store}
	ctx := context.Background()
	userID := registerTestUser(t, s, "alice")

	p, err := prefs.GetForUser(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, domain.DefaultPreferences(), p)

	t.Run("unknown user not found", func(t *testing.T) {
		_, err := prefs.GetForUser(ctx, 9999)
		require.ErrorIs(t, err, apierr.ErrNotFound)
	})
}
