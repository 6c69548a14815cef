package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/internal/users/store"
	"github.com/opshelm/warden/pkg/apierr"
	"github.com/opshelm/warden/pkg/slogx"
)

// LockoutConfig tunes the failed-login lockout behaviour.
type LockoutConfig struct {
	MaxAttempts     int
	LockoutDuration time.Duration
	AttemptWindow   time.Duration
}

// DefaultLockoutConfig is the production default: five failures inside a
// thirty-minute window lock the account for fifteen minutes.
func DefaultLockoutConfig() LockoutConfig {
	return LockoutConfig{
		MaxAttempts:     5,
		LockoutDuration: 15 * time.Minute,
		AttemptWindow:   30 * time.Minute,
	}
}

// LockoutService tracks failed logins per user and locks accounts that
// exceed the attempt threshold. Attempts outside the window are pruned
// lazily; an attempt sitting exactly on the window boundary no longer
// counts.
type LockoutService struct {
	Store  store.Store
	Config LockoutConfig
}

// RecordFailure registers one failed login. It returns whether this failure
// tripped the lock and, if so, when the lock expires. The prune, insert,
// count and lock are one transaction so concurrent failures cannot lose
// updates.
func (s *LockoutService) RecordFailure(
	ctx context.Context,
	userID int64,
	sourceAddr string,
) (bool, *time.Time, error) {
	now := time.Now()

	var lockedUntil *time.Time
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		cutoff := now.Add(-s.Config.AttemptWindow)
		if err := tx.Lockouts().PruneAttempts(ctx, userID, cutoff); err != nil {
			return err
		}

		attempt := domain.LoginAttempt{Timestamp: now, SourceAddr: sourceAddr}
		if err := tx.Lockouts().AddAttempt(ctx, userID, attempt); err != nil {
			return err
		}

		rec, err := tx.Lockouts().GetRecord(ctx, userID)
		if err != nil {
			return err
		}

		if len(rec.FailedAttempts) >= s.Config.MaxAttempts {
			until := now.Add(s.Config.LockoutDuration)
			if err := tx.Lockouts().SetLock(ctx, userID, until); err != nil {
				return err
			}
			lockedUntil = &until
		}
		return nil
	})
	if err != nil {
		return false, nil, apierr.Storage("failed to record login failure", err)
	}

	if lockedUntil != nil {
		slogx.FromContext(ctx).Warn("account locked after repeated login failures",
			slog.Int64("user_id", userID),
			slog.Time("locked_until", *lockedUntil))
	}
	return lockedUntil != nil, lockedUntil, nil
}

// Status reports the current lockout state for a user. A lock whose expiry
// has been reached counts as released.
func (s *LockoutService) Status(ctx context.Context, userID int64) (domain.LockoutStatus, error) {
	now := time.Now()

	rec, err := s.Store.Lockouts().GetRecord(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.LockoutStatus{AttemptsRemaining: s.Config.MaxAttempts}, nil
	}
	if err != nil {
		return domain.LockoutStatus{}, apierr.Storage("failed to read lockout record", err)
	}

	if rec.LockedUntil != nil && now.Before(*rec.LockedUntil) {
		return domain.LockoutStatus{
			IsLocked:          true,
			AttemptsRemaining: 0,
			LockedUntil:       rec.LockedUntil,
		}, nil
	}

	cutoff := now.Add(-s.Config.AttemptWindow)
	recent := 0
	for _, a := range rec.FailedAttempts {
		if a.Timestamp.After(cutoff) {
			recent++
		}
	}

	return domain.LockoutStatus{
		AttemptsRemaining: max(0, s.Config.MaxAttempts-recent),
	}, nil
}

// IsLocked is the boolean shortcut the login path uses.
func (s *LockoutService) IsLocked(ctx context.Context, userID int64) (bool, *time.Time, error) {
	status, err := s.Status(ctx, userID)
	if err != nil {
		return false, nil, err
	}
	return status.IsLocked, status.LockedUntil, nil
}

// Clear wipes the attempt history and any lock for a user. Used on
// successful login and by the admin unlock endpoint.
func (s *LockoutService) Clear(ctx context.Context, userID int64) error {
	if err := s.Store.Lockouts().ClearRecord(ctx, userID); err != nil {
		return apierr.Storage("failed to clear lockout record", err)
	}
	return nil
}

// ListLocked returns the accounts currently under an active lock.
func (s *LockoutService) ListLocked(ctx context.Context) ([]domain.LockedAccount, error) {
	locked, err := s.Store.Lockouts().ListLocked(ctx, time.Now())
	if err != nil {
		return nil, apierr.Storage("failed to list locked accounts", err)
	}
	return locked, nil
}

// Policy exposes the effective lockout configuration.
func (s *LockoutService) Policy() domain.LockoutPolicy {
	return domain.LockoutPolicy{
		MaxAttempts:            s.Config.MaxAttempts,
		LockoutDurationMinutes: int(s.Config.LockoutDuration / time.Minute),
		AttemptWindowMinutes:   int(s.Config.AttemptWindow / time.Minute),
	}
}
