package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/internal/users/store"
	"github.com/opshelm/warden/pkg/apierr"
	"github.com/opshelm/warden/pkg/slogx"
)

// OrganizationService manages organizations and their memberships.
type OrganizationService struct {
	Store store.Store
}

// Create makes a new organization. The creator joins as the owner member in
// the same transaction.
func (s *OrganizationService) Create(ctx context.Context, name, description string, settings map[string]string, createdBy int64) (domain.Organization, error) {
	name = strings.TrimSpace(name)
	if len(name) < 3 || len(name) > 100 {
		return domain.Organization{}, apierr.Validation("organization name must be between 3 and 100 characters")
	}

	now := time.Now()
	org := domain.Organization{
		Name:        name,
		Description: description,
		Settings:    settings,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	owner := domain.Member{UserID: createdBy, Role: domain.MemberOwner, JoinedAt: now}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Organizations().CreateOrganization(ctx, &org); err != nil {
			return err
		}
		return tx.Organizations().AddMember(ctx, org.ID, owner)
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Organization{}, apierr.Conflict("organization name already taken")
	}
	if err != nil {
		return domain.Organization{}, apierr.Storage("failed to create organization", err)
	}

	org.Members = []domain.Member{owner}
	slogx.FromContext(ctx).Info("organization created",
		slog.Int64("org_id", org.ID),
		slog.String("name", org.Name))
	return org, nil
}

// Get fetches an organization with its members.
func (s *OrganizationService) Get(ctx context.Context, id int64) (domain.Organization, error) {
	org, err := s.Store.Organizations().GetOrganizationByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Organization{}, apierr.NotFound("organization not found")
	}
	if err != nil {
		return domain.Organization{}, apierr.Storage("failed to load organization", err)
	}
	return org, nil
}

// List returns every organization, newest first.
func (s *OrganizationService) List(ctx context.Context) ([]domain.Organization, error) {
	orgs, err := s.Store.Organizations().ListOrganizations(ctx)
	if err != nil {
		return nil, apierr.Storage("failed to list organizations", err)
	}
	return orgs, nil
}

// ListForUser returns the organizations the user is a member of, newest
// first.
func (s *OrganizationService) ListForUser(ctx context.Context, userID int64) ([]domain.Organization, error) {
	orgs, err := s.Store.Organizations().ListOrganizationsForUser(ctx, userID)
	if err != nil {
		return nil, apierr.Storage("failed to list organizations", err)
	}
	return orgs, nil
}

// Update changes name, description and settings. Blank fields keep their
// current values; a nil settings map keeps the stored one.
func (s *OrganizationService) Update(ctx context.Context, id int64, name, description string, settings map[string]string) (domain.Organization, error) {
	org, err := s.Get(ctx, id)
	if err != nil {
		return domain.Organization{}, err
	}

	if name = strings.TrimSpace(name); name == "" {
		name = org.Name
	}
	if description == "" {
		description = org.Description
	}
	if settings == nil {
		settings = org.Settings
	}

	err = s.Store.Organizations().UpdateOrganization(ctx, id, name, description, settings)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Organization{}, apierr.Conflict("organization name already taken")
	}
	if err != nil {
		return domain.Organization{}, apierr.Storage("failed to update organization", err)
	}

	return s.Get(ctx, id)
}

// Delete removes an organization and all its memberships.
func (s *OrganizationService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.Store.Organizations().DeleteOrganization(ctx, id); err != nil {
		return apierr.Storage("failed to delete organization", err)
	}
	return nil
}

// AddMember adds a user to an organization.
func (s *OrganizationService) AddMember(ctx context.Context, orgID, userID int64, role domain.MemberRole) (domain.Organization, error) {
	if role == "" {
		role = domain.MemberMember
	}
	if !role.Valid() {
		return domain.Organization{}, apierr.Validation("role must be 'owner', 'admin' or 'member'")
	}

	if _, err := s.Get(ctx, orgID); err != nil {
		return domain.Organization{}, err
	}

	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Organization{}, apierr.NotFound("user not found")
		}
		return domain.Organization{}, apierr.Storage("failed to load user", err)
	}

	m := domain.Member{UserID: userID, Role: role, JoinedAt: time.Now()}
	err := s.Store.Organizations().AddMember(ctx, orgID, m)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Organization{}, apierr.Conflict("user is already a member")
	}
	if err != nil {
		return domain.Organization{}, apierr.Storage("failed to add member", err)
	}

	return s.Get(ctx, orgID)
}

// UpdateMemberRole changes a member's organization role. The last owner
// cannot be demoted.
func (s *OrganizationService) UpdateMemberRole(ctx context.Context, orgID, userID int64, role domain.MemberRole) (domain.Organization, error) {
	if !role.Valid() {
		return domain.Organization{}, apierr.Validation("role must be 'owner', 'admin' or 'member'")
	}

	org, err := s.Get(ctx, orgID)
	if err != nil {
		return domain.Organization{}, err
	}

	member, ok := findMember(org, userID)
	if !ok {
		return domain.Organization{}, apierr.NotFound("user is not a member")
	}

	if member.Role == domain.MemberOwner && role != domain.MemberOwner && countOwners(org) == 1 {
		return domain.Organization{}, apierr.Conflict("organization must keep at least one owner")
	}

	if err := s.Store.Organizations().UpdateMemberRole(ctx, orgID, userID, role); err != nil {
		return domain.Organization{}, apierr.Storage("failed to update member role", err)
	}
	return s.Get(ctx, orgID)
}

// RemoveMember removes a user from an organization. The last owner cannot
// leave.
func (s *OrganizationService) RemoveMember(ctx context.Context, orgID, userID int64) (domain.Organization, error) {
	org, err := s.Get(ctx, orgID)
	if err != nil {
		return domain.Organization{}, err
	}

	member, ok := findMember(org, userID)
	if !ok {
		return domain.Organization{}, apierr.NotFound("user is not a member")
	}

	if member.Role == domain.MemberOwner && countOwners(org) == 1 {
		return domain.Organization{}, apierr.Conflict("organization must keep at least one owner")
	}

	if err := s.Store.Organizations().RemoveMember(ctx, orgID, userID); err != nil {
		return domain.Organization{}, apierr.Storage("failed to remove member", err)
	}
	return s.Get(ctx, orgID)
}

func findMember(org domain.Organization, userID int64) (domain.Member, bool) {
	for _, m := range org.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return domain.Member{}, false
}

func countOwners(org domain.Organization) int {
	owners := 0
	for _, m := range org.Members {
		if m.Role == domain.MemberOwner {
			owners++
		}
	}
	return owners
}
