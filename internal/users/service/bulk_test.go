package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opshelm/warden/internal/users/domain"
)

func newBulkService(t *testing.T, s testServices) *BulkService {
	t.Helper()
	return &BulkService{Store: s.store, Users: s.users, Audit: s.audit}
}

func TestBulkImportCSV(t *testing.T) {
	s := newTestServices(t)
	bulk := newBulkService(t, s)
	ctx := context.Background()

	csvIn := strings.Join([]string{
		"name,password,profession,role",
		"alice,Sup3rSecret!,engineer,admin",
		"bob,Sup3rSecret!,writer,",
		"x,Sup3rSecret!,,",     // name too short
		"carol,weak,,",         // bad password
		"dave,Sup3rSecret!,,x", // bad role
	}, "\n")

	report, err := bulk.ImportCSV(ctx, strings.NewReader(csvIn), BulkOptions{}, testMeta)
	require.NoError(t, err)
	require.Equal(t, 2, report.Imported)
	require.Equal(t, 3, report.Failed)
	require.Len(t, report.Errors, 3)

	t.Run("imported accounts can log in", func(t *testing.T) {
		res, err := s.auth.Login(ctx, "alice", "Sup3rSecret!", testMeta)
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, res.User.Role)
	})

	t.Run("row errors carry line numbers", func(t *testing.T) {
		require.Equal(t, 4, report.Errors[0].Line)
	})

	t.Run("duplicates fail by default", func(t *testing.T) {
		report, err := bulk.ImportCSV(ctx, strings.NewReader("alice,Sup3rSecret!"), BulkOptions{}, testMeta)
		require.NoError(t, err)
		require.Equal(t, 1, report.Failed)
	})

	t.Run("duplicates skipped when asked", func(t *testing.T) {
		report, err := bulk.ImportCSV(ctx, strings.NewReader("alice,Sup3rSecret!"),
			BulkOptions{SkipDuplicates: true}, testMeta)
		require.NoError(t, err)
		require.Equal(t, 1, report.Skipped)
		require.Zero(t, report.Failed)
	})

	t.Run("duplicates updated when asked", func(t *testing.T) {
		report, err := bulk.ImportCSV(ctx, strings.NewReader("alice,Sup3rSecret!,principal engineer,admin"),
			BulkOptions{UpdateExisting: true}, testMeta)
		require.NoError(t, err)
		require.Equal(t, 1, report.Updated)

		u, err := s.users.GetByName(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, "principal engineer", u.Profession)
	})

	t.Run("import is audited", func(t *testing.T) {
		page, err := s.audit.Query(ctx, domain.AuditFilter{Action: domain.AuditActionBulkImport})
		require.NoError(t, err)
		require.NotEmpty(t, page.Entries)
	})
}

func TestBulkDeleteMany(t *testing.T) {
	s := newTestServices(t)
	bulk := newBulkService(t, s)
	ctx := context.Background()
	adminID := registerTestUser(t, s, "admin-user")
	bobID := registerTestUser(t, s, "bob")
	carolID := registerTestUser(t, s, "carol")

	report, err := bulk.DeleteMany(ctx, []int64{bobID, carolID, adminID, 9999}, adminID, testMeta)
	require.NoError(t, err)
	require.Equal(t, 2, report.Succeeded)
	require.Equal(t, 2, report.Failed)

	reasons := make([]string, 0, len(report.Errors))
	for _, e := range report.Errors {
		reasons = append(reasons, e.Reason)
	}
	require.Contains(t, reasons, "cannot delete your own account")
	require.Contains(t, reasons, "user not found")

	_, err = s.users.GetByID(ctx, bobID)
	require.Error(t, err)

	t.Run("empty batch rejected", func(t *testing.T) {
		_, err := bulk.DeleteMany(ctx, nil, adminID, testMeta)
		require.Error(t, err)
	})
}

func TestBulkUpdateRoleMany(t *testing.T) {
	s := newTestServices(t)
	bulk := newBulkService(t, s)
	ctx := context.Background()
	adminID := registerTestUser(t, s, "admin-user")
	bobID := registerTestUser(t, s, "bob")

	report, err := bulk.UpdateRoleMany(ctx, []int64{bobID, adminID}, domain.RoleAdmin, adminID, testMeta)
	require.NoError(t, err)
	require.Equal(t, 1, report.Succeeded)
	require.Equal(t, 1, report.Failed)
	require.Equal(t, "cannot change your own role", report.Errors[0].Reason)

	u, err := s.users.GetByID(ctx, bobID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, u.Role)

	t.Run("bad role rejected", func(t *testing.T) {
		_, err := bulk.UpdateRoleMany(ctx, []int64{bobID}, "superuser", adminID, testMeta)
		require.Error(t, err)
	})

	t.Run("role change is audited", func(t *testing.T) {
		page, err := s.audit.Query(ctx, domain.AuditFilter{Action: domain.AuditActionBulkUpdate})
		require.NoError(t, err)
		require.NotEmpty(t, page.Entries)
	})
}

func TestBulkExportJSON(t *testing.T) {
	s := newTestServices(t)
	bulk := newBulkService(t, s)
	ctx := context.Background()
	registerTestUser(t, s, "alice")

	var buf bytes.Buffer
	require.NoError(t, bulk.ExportJSON(ctx, &buf))

	out := buf.String()
	require.Contains(t, out, `"name":"alice"`)
	require.NotContains(t, out, testPassword)
	require.NotContains(t, out, "argon2id")
}

func TestBulkExportCSV(t *testing.T) {
	s := newTestServices(t)
	bulk := newBulkService(t, s)
	ctx := context.Background()
	registerTestUser(t, s, "alice")

	var buf bytes.Buffer
	require.NoError(t, bulk.ExportCSV(ctx, &buf))

	out := buf.String()
	require.Contains(t, out, "name,profession,role,createdAt")
	require.Contains(t, out, "alice,tester,user")
	require.NotContains(t, out, testPassword)
	require.NotContains(t, out, "argon2id")
}
