package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/internal/users/store"
	"github.com/opshelm/warden/pkg/apierr"
	"github.com/opshelm/warden/pkg/cryptox"
	"github.com/opshelm/warden/pkg/slogx"
)

// InvitationService issues and redeems account invitations. Only the
// SHA-256 fingerprint of a token is stored; the raw token appears exactly
// once, in the Create response.
type InvitationService struct {
	Store store.Store
	Auth  *AuthService
	TTL   time.Duration
}

func (s *InvitationService) ttl() time.Duration {
	if s.TTL <= 0 {
		return domain.DefaultInvitationTTL
	}
	return s.TTL
}

// CreatedInvitation pairs the stored record with the one-time raw token.
type CreatedInvitation struct {
	Invitation domain.Invitation `json:"invitation"`
	Token      string            `json:"token"`
}

// Create issues an invitation for an email address.
func (s *InvitationService) Create(ctx context.Context, email string, role domain.Role, orgID, invitedBy int64) (CreatedInvitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return CreatedInvitation{}, apierr.Validation("invalid email address")
	}
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return CreatedInvitation{}, apierr.Validation("role must be 'user' or 'admin'")
	}

	if _, err := s.Store.Invitations().GetPendingByEmail(ctx, email); err == nil {
		return CreatedInvitation{}, apierr.Conflict("a pending invitation already exists for this email")
	} else if !errors.Is(err, store.ErrNotFound) {
		return CreatedInvitation{}, apierr.Storage("failed to check pending invitations", err)
	}

	if orgID != 0 {
		if _, err := s.Store.Organizations().GetOrganizationByID(ctx, orgID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return CreatedInvitation{}, apierr.NotFound("organization not found")
			}
			return CreatedInvitation{}, apierr.Storage("failed to load organization", err)
		}
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return CreatedInvitation{}, apierr.Storage("failed to generate invitation token", err)
	}

	now := time.Now()
	inv := domain.Invitation{
		Email:            email,
		TokenFingerprint: cryptox.FingerprintToken(token),
		Role:             role,
		OrganizationID:   orgID,
		InvitedBy:        invitedBy,
		Status:           domain.InvitationPending,
		ExpiresAt:        now.Add(s.ttl()),
		CreatedAt:        now,
	}

	if err := s.Store.Invitations().CreateInvitation(ctx, &inv); err != nil {
		return CreatedInvitation{}, apierr.Storage("failed to create invitation", err)
	}

	slogx.FromContext(ctx).Info("invitation created",
		slog.Int64("invitation_id", inv.ID),
		slog.String("email", inv.Email))
	return CreatedInvitation{Invitation: inv, Token: token}, nil
}

// GetByToken looks up a pending invitation by its raw token, e.g. to
// prefill a signup form. Unknown, redeemed and expired tokens all report
// NotFound so token state cannot be probed.
func (s *InvitationService) GetByToken(ctx context.Context, token string) (domain.Invitation, error) {
	inv, err := s.Store.Invitations().GetPendingByFingerprint(ctx, cryptox.FingerprintToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return domain.Invitation{}, apierr.NotFound("invitation not found or no longer valid")
	}
	if err != nil {
		return domain.Invitation{}, apierr.Storage("failed to load invitation", err)
	}
	if !time.Now().Before(inv.ExpiresAt) {
		return domain.Invitation{}, apierr.NotFound("invitation not found or no longer valid")
	}
	return inv, nil
}

// Accept redeems an invitation token: it registers the account, applies the
// invited role, and joins the organization if one was attached.
func (s *InvitationService) Accept(ctx context.Context, token, name, password, profession string, meta RequestMeta) (domain.PublicUser, error) {
	inv, err := s.Store.Invitations().GetPendingByFingerprint(ctx, cryptox.FingerprintToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return domain.PublicUser{}, apierr.NotFound("invitation not found or no longer valid")
	}
	if err != nil {
		return domain.PublicUser{}, apierr.Storage("failed to load invitation", err)
	}

	now := time.Now()
	if !now.Before(inv.ExpiresAt) {
		_, _ = s.Store.Invitations().ExpirePending(ctx, now)
		return domain.PublicUser{}, apierr.NotFound("invitation not found or no longer valid")
	}

	user, err := s.Auth.Register(ctx, name, password, profession, meta)
	if err != nil {
		return domain.PublicUser{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if inv.Role != user.Role {
			if err := tx.Users().UpdateRole(ctx, user.ID, inv.Role); err != nil {
				return err
			}
			user.Role = inv.Role
		}
		if inv.OrganizationID != 0 {
			member := domain.Member{UserID: user.ID, Role: domain.MemberMember, JoinedAt: now}
			if err := tx.Organizations().AddMember(ctx, inv.OrganizationID, member); err != nil {
				return err
			}
		}
		return tx.Invitations().MarkAccepted(ctx, inv.ID, user.ID, now)
	})
	if err != nil {
		return domain.PublicUser{}, apierr.Storage("failed to accept invitation", err)
	}

	slogx.FromContext(ctx).Info("invitation accepted",
		slog.Int64("invitation_id", inv.ID),
		slog.Int64("user_id", user.ID))
	return user, nil
}

// Revoke cancels a pending invitation.
func (s *InvitationService) Revoke(ctx context.Context, id int64) error {
	inv, err := s.Store.Invitations().GetInvitationByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apierr.NotFound("invitation not found")
	}
	if err != nil {
		return apierr.Storage("failed to load invitation", err)
	}

	if inv.Status != domain.InvitationPending {
		return apierr.Conflict("only pending invitations can be revoked")
	}

	if err := s.Store.Invitations().MarkRevoked(ctx, id, time.Now()); err != nil {
		return apierr.Storage("failed to revoke invitation", err)
	}
	return nil
}

// List returns invitations, optionally filtered by status.
func (s *InvitationService) List(ctx context.Context, status domain.InvitationStatus) ([]domain.Invitation, error) {
	invitations, err := s.Store.Invitations().ListInvitations(ctx, status)
	if err != nil {
		return nil, apierr.Storage("failed to list invitations", err)
	}
	return invitations, nil
}

// ExpirePending flips pending invitations past their expiry.
func (s *InvitationService) ExpirePending(ctx context.Context) (int, error) {
	n, err := s.Store.Invitations().ExpirePending(ctx, time.Now())
	if err != nil {
		return 0, apierr.Storage("failed to expire invitations", err)
	}
	return n, nil
}
