package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/internal/users/store"
	"github.com/opshelm/warden/pkg/apierr"
	"github.com/opshelm/warden/pkg/cryptox"
)

// BulkService imports user accounts from CSV. Each row is validated through
// the same rules as registration; one bad row never aborts the batch.
type BulkService struct {
	Store store.Store
	Users *UserService
	Audit *AuditService
}

// BulkOptions tunes how conflicting rows are handled.
type BulkOptions struct {
	// SkipDuplicates counts rows whose name already exists as skipped
	// instead of failed.
	SkipDuplicates bool

	// UpdateExisting updates profession/role on rows whose name already
	// exists instead of skipping them. Passwords are never overwritten.
	UpdateExisting bool
}

// BulkRowError describes one rejected row.
type BulkRowError struct {
	Line   int    `json:"line"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

// BulkReport summarises an import run.
type BulkReport struct {
	Imported int            `json:"imported"`
	Updated  int            `json:"updated"`
	Skipped  int            `json:"skipped"`
	Failed   int            `json:"failed"`
	Errors   []BulkRowError `json:"errors,omitempty"`
}

// csv column order: name, password, profession, role. A header row naming
// these columns is detected and skipped.
const bulkMaxRows = 10000

// ImportCSV reads user rows from r and creates the accounts.
func (s *BulkService) ImportCSV(ctx context.Context, r io.Reader, opts BulkOptions, meta RequestMeta) (BulkReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var report BulkReport
	line := 0

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, BulkRowError{
				Line:   line,
				Reason: fmt.Sprintf("malformed csv: %v", err),
			})
			continue
		}

		if line == 1 && isHeaderRow(record) {
			continue
		}
		if line > bulkMaxRows {
			return BulkReport{}, apierr.Validation(fmt.Sprintf("import exceeds %d rows", bulkMaxRows))
		}

		s.importRow(ctx, record, line, opts, &report)
	}

	s.Audit.Record(ctx, Event{
		Action:   domain.AuditActionBulkImport,
		Resource: "user",
		Details: map[string]any{
			"imported": report.Imported,
			"updated":  report.Updated,
			"skipped":  report.Skipped,
			"failed":   report.Failed,
		},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	return report, nil
}

func isHeaderRow(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "name")
}

func (s *BulkService) importRow(
	ctx context.Context,
	record []string,
	line int,
	opts BulkOptions,
	report *BulkReport,
) {
	fail := func(name, reason string) {
		report.Failed++
		report.Errors = append(report.Errors, BulkRowError{Line: line, Name: name, Reason: reason})
	}

	if len(record) < 2 {
		fail("", "row needs at least name and password")
		return
	}

	name := strings.TrimSpace(record[0])
	password := record[1]
	profession := ""
	role := domain.RoleUser
	if len(record) > 2 {
		profession = strings.TrimSpace(record[2])
	}
	if len(record) > 3 && strings.TrimSpace(record[3]) != "" {
		role = domain.Role(strings.TrimSpace(record[3]))
	}

	if err := validateName(name); err != nil {
		fail(name, "name must be between 3 and 50 characters")
		return
	}
	if !role.Valid() {
		fail(name, "role must be 'user' or 'admin'")
		return
	}

	existing, err := s.Store.Users().GetUserByName(ctx, name)
	switch {
	case err == nil:
		switch {
		case opts.UpdateExisting:
			if err := s.Store.Users().UpdateProfile(ctx, existing.ID, existing.Name, profession); err != nil {
				fail(name, "failed to update existing user")
				return
			}
			if existing.Role != role {
				if err := s.Store.Users().UpdateRole(ctx, existing.ID, role); err != nil {
					fail(name, "failed to update existing user")
					return
				}
			}
			report.Updated++
		case opts.SkipDuplicates:
			report.Skipped++
		default:
			fail(name, "name already taken")
		}
		return
	case !errors.Is(err, store.ErrNotFound):
		fail(name, "failed to look up existing user")
		return
	}

	if violations := s.Users.Policy.Validate(password); len(violations) > 0 {
		fail(name, strings.Join(violations, "; "))
		return
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		fail(name, "failed to hash password")
		return
	}

	now := time.Now()
	user := domain.User{
		Name:         name,
		PasswordHash: hash,
		Profession:   profession,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, &user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			fail(name, "name already taken")
		} else {
			fail(name, "failed to create user")
		}
		return
	}

	report.Imported++
}

// BulkIDError describes one rejected id in a bulk delete or role update.
type BulkIDError struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// BulkActionReport summarises a bulk delete or role update.
type BulkActionReport struct {
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Errors    []BulkIDError `json:"errors,omitempty"`
}

// DeleteMany deletes the listed accounts. Each delete runs through the same
// path as a single delete (sessions revoked, audit entry appended); one bad
// id never aborts the batch. The actor's own account is always refused.
func (s *BulkService) DeleteMany(ctx context.Context, ids []int64, actorID int64, meta RequestMeta) (BulkActionReport, error) {
	if len(ids) == 0 {
		return BulkActionReport{}, apierr.Validation("ids must not be empty")
	}
	if len(ids) > bulkMaxRows {
		return BulkActionReport{}, apierr.Validation(fmt.Sprintf("batch exceeds %d ids", bulkMaxRows))
	}

	var report BulkActionReport
	for _, id := range ids {
		if id == actorID {
			report.Failed++
			report.Errors = append(report.Errors, BulkIDError{ID: id, Reason: "cannot delete your own account"})
			continue
		}
		if err := s.Users.Delete(ctx, id, meta); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, BulkIDError{ID: id, Reason: apierr.From(err).Message})
			continue
		}
		report.Succeeded++
	}
	return report, nil
}

// UpdateRoleMany assigns one role to every listed account. The actor's own
// account is refused so an admin cannot demote themselves mid-batch.
func (s *BulkService) UpdateRoleMany(ctx context.Context, ids []int64, role domain.Role, actorID int64, meta RequestMeta) (BulkActionReport, error) {
	if len(ids) == 0 {
		return BulkActionReport{}, apierr.Validation("ids must not be empty")
	}
	if len(ids) > bulkMaxRows {
		return BulkActionReport{}, apierr.Validation(fmt.Sprintf("batch exceeds %d ids", bulkMaxRows))
	}
	if !role.Valid() {
		return BulkActionReport{}, apierr.Validation("role must be 'user' or 'admin'")
	}

	var report BulkActionReport
	for _, id := range ids {
		if id == actorID {
			report.Failed++
			report.Errors = append(report.Errors, BulkIDError{ID: id, Reason: "cannot change your own role"})
			continue
		}
		if _, err := s.Users.UpdateRole(ctx, id, role); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, BulkIDError{ID: id, Reason: apierr.From(err).Message})
			continue
		}
		report.Succeeded++
	}

	s.Audit.Record(ctx, Event{
		UserID:   actorID,
		Action:   domain.AuditActionBulkUpdate,
		Resource: "user",
		Details: map[string]any{
			"operation": "update_role",
			"role":      role,
			"succeeded": report.Succeeded,
			"failed":    report.Failed,
		},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
	return report, nil
}

// ExportJSON writes every account as a JSON array of public projections.
func (s *BulkService) ExportJSON(ctx context.Context, w io.Writer) error {
	users, err := s.Store.Users().ListUsers(ctx, "", 0, 0)
	if err != nil {
		return apierr.Storage("failed to list users", err)
	}

	public := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}
	if err := json.NewEncoder(w).Encode(public); err != nil {
		return apierr.Storage("failed to write json", err)
	}
	return nil
}

// ExportCSV writes every account as CSV (name, profession, role, createdAt).
// Password material is never exported.
func (s *BulkService) ExportCSV(ctx context.Context, w io.Writer) error {
	users, err := s.Store.Users().ListUsers(ctx, "", 0, 0)
	if err != nil {
		return apierr.Storage("failed to list users", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "profession", "role", "createdAt"}); err != nil {
		return apierr.Storage("failed to write csv", err)
	}
	for _, u := range users {
		row := []string{u.Name, u.Profession, string(u.Role), u.CreatedAt.UTC().Format(time.RFC3339)}
		if err := cw.Write(row); err != nil {
			return apierr.Storage("failed to write csv", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return apierr.Storage("failed to write csv", err)
	}
	return nil
}
