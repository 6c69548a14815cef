package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/internal/users/policy"
	"github.com/opshelm/warden/internal/users/store"
	"github.com/opshelm/warden/pkg/apierr"
	"github.com/opshelm/warden/pkg/cryptox"
	"github.com/opshelm/warden/pkg/slogx"
)

// UserService owns account CRUD and password rotation.
type UserService struct {
	Store  store.Store
	Policy policy.Policy
	Audit  *AuditService
}

// UserPage is one page of the user listing.
type UserPage struct {
	Users      []domain.PublicUser `json:"users"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"totalPages"`
}

// GetByID fetches a user by id.
func (s *UserService) GetByID(ctx context.Context, userID int64) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, apierr.NotFound("user not found")
	}
	if err != nil {
		return domain.User{}, apierr.Storage("failed to load user", err)
	}
	return u, nil
}

// GetByName resolves a user case-insensitively by account name.
func (s *UserService) GetByName(ctx context.Context, name string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByName(ctx, strings.TrimSpace(name))
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, apierr.NotFound("user not found")
	}
	if err != nil {
		return domain.User{}, apierr.Storage("failed to load user", err)
	}
	return u, nil
}

// List returns one page of users with an optional name substring filter.
func (s *UserService) List(ctx context.Context, nameFilter string, page, limit int) (UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	if limit > 500 {
		return UserPage{}, apierr.Validation("limit must not exceed 500")
	}

	total, err := s.Store.Users().CountUsers(ctx, nameFilter)
	if err != nil {
		return UserPage{}, apierr.Storage("failed to count users", err)
	}

	users, err := s.Store.Users().ListUsers(ctx, nameFilter, (page-1)*limit, limit)
	if err != nil {
		return UserPage{}, apierr.Storage("failed to list users", err)
	}

	out := UserPage{
		Users:      make([]domain.PublicUser, 0, len(users)),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}
	for _, u := range users {
		out.Users = append(out.Users, u.Public())
	}
	return out, nil
}

// UpdateProfile changes a user's name and profession. A blank field keeps
// its current value.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, name, profession string) (domain.User, error) {
	name = strings.TrimSpace(name)

	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if name == "" {
		name = u.Name
	}
	if profession == "" {
		profession = u.Profession
	}

	if err := validateName(name); err != nil {
		return domain.User{}, err
	}

	err = s.Store.Users().UpdateProfile(ctx, userID, name, profession)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.User{}, apierr.Conflict("name already taken")
	}
	if err != nil {
		return domain.User{}, apierr.Storage("failed to update profile", err)
	}

	return s.GetByID(ctx, userID)
}

// UpdateRole sets the account-level role.
func (s *UserService) UpdateRole(ctx context.Context, userID int64, role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, apierr.Validation("role must be 'user' or 'admin'")
	}

	if _, err := s.GetByID(ctx, userID); err != nil {
		return domain.User{}, err
	}

	if err := s.Store.Users().UpdateRole(ctx, userID, role); err != nil {
		return domain.User{}, apierr.Storage("failed to update role", err)
	}
	return s.GetByID(ctx, userID)
}

// ChangePassword rotates a user's password. The current password must
// verify, the new one must satisfy the composition policy, and it must not
// match any of the recently used passwords. The hash swap and history
// update commit atomically.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, current, next string, meta RequestMeta) error {
	if violations := s.Policy.Validate(next); len(violations) > 0 {
		return apierr.Validation("password does not meet the policy", violations...)
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByID(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return apierr.NotFound("user not found")
		}
		if err != nil {
			return err
		}

		if cryptox.VerifyPassword(current, u.PasswordHash) != nil {
			return apierr.Authentication("current password is incorrect")
		}

		history := append(u.PasswordHistory, u.PasswordHash)
		if s.Policy.CheckReuse(next, history) {
			return apierr.Validation("password was used recently and cannot be reused")
		}

		newHash, err := cryptox.HashPassword(next)
		if err != nil {
			return err
		}

		if len(history) > domain.PasswordHistorySize {
			history = history[len(history)-domain.PasswordHistorySize:]
		}

		if err := tx.Users().UpdatePasswordHash(ctx, userID, newHash, history, time.Now()); err != nil {
			return err
		}

		return s.Audit.RecordTx(ctx, tx, Event{
			UserID:    userID,
			Action:    domain.AuditActionPasswordChange,
			Resource:  "user",
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
	})
	if err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) {
			return ae
		}
		return apierr.Storage("failed to change password", err)
	}

	slogx.FromContext(ctx).Info("password changed", slog.Int64("user_id", userID))
	return nil
}

// Delete removes an account. Sessions, lockout state, preferences and
// organization memberships go with it; audit entries are retained.
func (s *UserService) Delete(ctx context.Context, userID int64, meta RequestMeta) error {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Sessions().MarkAllForUser(ctx, userID, domain.SessionRevoked, time.Now(), ""); err != nil {
			return err
		}
		if err := tx.Users().DeleteUser(ctx, userID); err != nil {
			return err
		}
		return s.Audit.RecordTx(ctx, tx, Event{
			UserID:    userID,
			Action:    domain.AuditActionUserDelete,
			Resource:  "user",
			Details:   map[string]any{"name": u.Name},
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
	})
	if err != nil {
		return apierr.Storage("failed to delete user", err)
	}

	slogx.FromContext(ctx).Info("user deleted",
		slog.Int64("user_id", userID),
		slog.String("name", u.Name))
	return nil
}

// PasswordStatus reports expiry information for a user's password.
type PasswordStatus struct {
	Expired             bool      `json:"expired"`
	ExpiresAt           time.Time `json:"expiresAt"`
	DaysUntilExpiration int       `json:"daysUntilExpiration"`
	Warn                bool      `json:"warn"`
}

// PasswordStatusFor evaluates the expiry rules for one user.
func (s *UserService) PasswordStatusFor(u domain.User) PasswordStatus {
	now := time.Now()
	return PasswordStatus{
		Expired:             s.Policy.IsExpired(u.PasswordChangedAt, u.CreatedAt, now),
		ExpiresAt:           s.Policy.ExpiresAt(u.PasswordChangedAt, u.CreatedAt),
		DaysUntilExpiration: s.Policy.DaysUntilExpiration(u.PasswordChangedAt, u.CreatedAt, now),
		Warn:                s.Policy.ShouldWarn(u.PasswordChangedAt, u.CreatedAt, now),
	}
}

func validateName(name string) error {
	if len(name) < 3 || len(name) > 50 {
		return apierr.Validation("name must be between 3 and 50 characters")
	}
	return nil
}
