package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/internal/users/policy"
	"github.com/opshelm/warden/internal/users/store"
	"github.com/opshelm/warden/pkg/apierr"
	"github.com/opshelm/warden/pkg/cryptox"
	"github.com/opshelm/warden/pkg/jwtx"
	"github.com/opshelm/warden/pkg/slogx"
)

// genericLoginFailure is returned for both unknown names and wrong passwords
// so callers cannot probe which accounts exist.
const genericLoginFailure = "invalid name or password"

// AuthService orchestrates registration and the login state machine:
// lockout check, credential verification, failure accounting, session
// issuance and audit.
type AuthService struct {
	Store    store.Store
	Signer   jwtx.Signer
	Policy   policy.Policy
	Lockouts *LockoutService
	Sessions *SessionService
	Audit    *AuditService

	Issuer    string
	AccessTTL time.Duration
}

// LoginResult is everything a successful login hands back.
type LoginResult struct {
	User        domain.PublicUser `json:"user"`
	AccessToken string            `json:"accessToken"`
	SessionID   string            `json:"sessionId"`
	ExpiresIn   int64             `json:"expiresIn"`

	// PasswordWarning is set when the password expires within a week.
	PasswordWarning string `json:"passwordWarning,omitempty"`
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL <= 0 {
		return jwtx.DefaultAccessTokenTTL
	}
	return s.AccessTTL
}

// Register creates a new account. The first registered account becomes an
// admin; everyone after that starts as a regular user.
func (s *AuthService) Register(ctx context.Context, name, password, profession string, meta RequestMeta) (domain.PublicUser, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return domain.PublicUser{}, err
	}
	if violations := s.Policy.Validate(password); len(violations) > 0 {
		return domain.PublicUser{}, apierr.Validation("password does not meet the policy", violations...)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.PublicUser{}, apierr.Storage("failed to hash password", err)
	}

	now := time.Now()
	user := domain.User{
		Name:         name,
		PasswordHash: hash,
		Profession:   profession,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if empty {
			user.Role = domain.RoleAdmin
		}

		if err := tx.Users().CreateUser(ctx, &user); err != nil {
			return err
		}

		return s.Audit.RecordTx(ctx, tx, Event{
			UserID:    user.ID,
			Action:    domain.AuditActionRegister,
			Resource:  "user",
			Details:   map[string]any{"name": user.Name, "role": user.Role},
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.PublicUser{}, apierr.Conflict("name already taken")
	}
	if err != nil {
		return domain.PublicUser{}, apierr.Storage("failed to create user", err)
	}

	slogx.FromContext(ctx).Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("name", user.Name),
		slog.String("role", string(user.Role)))
	return user.Public(), nil
}

// Login verifies credentials and issues a session plus an access token.
//
// Order matters: the lockout check runs before password verification so a
// locked account rejects even the correct password, and a failed
// verification is recorded before the caller sees the error.
func (s *AuthService) Login(ctx context.Context, name, password string, meta RequestMeta) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByName(ctx, strings.TrimSpace(name))
	if errors.Is(err, store.ErrNotFound) {
		// Same response as a wrong password; no lockout state exists for
		// names that never matched an account.
		s.Audit.Record(ctx, Event{
			Action:    domain.AuditActionLoginFailed,
			Resource:  "auth",
			Details:   map[string]any{"reason": "unknown_name"},
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
			Status:    domain.AuditFailure,
		})
		return LoginResult{}, apierr.Authentication(genericLoginFailure)
	}
	if err != nil {
		return LoginResult{}, apierr.Storage("failed to load user", err)
	}

	locked, until, err := s.Lockouts.IsLocked(ctx, user.ID)
	if err != nil {
		return LoginResult{}, err
	}
	if locked {
		e := apierr.Locked("account is temporarily locked due to repeated failed logins")
		if until != nil {
			e.WithDetail("lockedUntil", until.UTC().Format(time.RFC3339))
		}
		return LoginResult{}, e
	}

	if cryptox.VerifyPassword(password, user.PasswordHash) != nil {
		nowLocked, lockedUntil, lockErr := s.Lockouts.RecordFailure(ctx, user.ID, meta.IPAddress)
		if lockErr != nil {
			return LoginResult{}, lockErr
		}

		s.Audit.Record(ctx, Event{
			UserID:    user.ID,
			Action:    domain.AuditActionLoginFailed,
			Resource:  "auth",
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
			Status:    domain.AuditFailure,
		})

		if nowLocked {
			s.Audit.Record(ctx, Event{
				UserID:    user.ID,
				Action:    domain.AuditActionAccountLocked,
				Resource:  "auth",
				Details:   map[string]any{"lockedUntil": lockedUntil.UTC().Format(time.RFC3339)},
				IPAddress: meta.IPAddress,
				UserAgent: meta.UserAgent,
				Status:    domain.AuditFailure,
			})
			e := apierr.Locked("account is temporarily locked due to repeated failed logins")
			e.WithDetail("lockedUntil", lockedUntil.UTC().Format(time.RFC3339))
			return LoginResult{}, e
		}

		return LoginResult{}, apierr.Authentication(genericLoginFailure)
	}

	if err := s.Lockouts.Clear(ctx, user.ID); err != nil {
		return LoginResult{}, err
	}

	session, err := s.Sessions.Create(ctx, user.ID, meta.IPAddress, meta.UserAgent)
	if err != nil {
		return LoginResult{}, err
	}

	claims := jwtx.NewAccessClaims(user.ID, user.Name, string(user.Role),
		cryptox.FingerprintToken(session.Token), s.Issuer, s.accessTTL(), time.Now())
	accessToken, err := s.Signer.Sign(claims)
	if err != nil {
		return LoginResult{}, apierr.Storage("failed to sign access token", err)
	}

	s.Audit.Record(ctx, Event{
		UserID:    user.ID,
		Action:    domain.AuditActionLogin,
		Resource:  "auth",
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	result := LoginResult{
		User:        user.Public(),
		AccessToken: accessToken,
		SessionID:   session.Token,
		ExpiresIn:   int64(s.accessTTL().Seconds()),
	}

	now := time.Now()
	if s.Policy.ShouldWarn(user.PasswordChangedAt, user.CreatedAt, now) {
		days := s.Policy.DaysUntilExpiration(user.PasswordChangedAt, user.CreatedAt, now)
		result.PasswordWarning = fmt.Sprintf("password expires in %d day(s)", days)
	}

	l.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("name", user.Name))
	return result, nil
}

// Logout revokes the presented session.
func (s *AuthService) Logout(ctx context.Context, sessionToken string, meta RequestMeta) error {
	session, err := s.Sessions.Revoke(ctx, sessionToken)
	if err != nil {
		return err
	}

	s.Audit.Record(ctx, Event{
		UserID:     session.UserID,
		Action:     domain.AuditActionSessionRevoke,
		Resource:   "session",
		ResourceID: fmt.Sprintf("%d", session.ID),
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	})
	return nil
}
