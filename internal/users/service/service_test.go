package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opshelm/warden/internal/users/policy"
	"github.com/opshelm/warden/internal/users/store/drivers/sqlite"
	"github.com/opshelm/warden/pkg/cryptox"
	"github.com/opshelm/warden/pkg/jwtx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-test-")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper.key"))

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// testServices wires the full service graph over one in-memory store.
type testServices struct {
	store    *sqlite.Store
	auth     *AuthService
	users    *UserService
	lockouts *LockoutService
	sessions *SessionService
	audit    *AuditService
}

func newTestServices(t *testing.T) testServices {
	t.Helper()

	st := newTestStore(t)
	signer, err := jwtx.NewHS256("test-secret-at-least-32-bytes-long", "warden-test")
	require.NoError(t, err)

	audit := &AuditService{Store: st}
	lockouts := &LockoutService{Store: st, Config: DefaultLockoutConfig()}
	sessions := &SessionService{Store: st}
	users := &UserService{Store: st, Policy: policy.Default(), Audit: audit}
	auth := &AuthService{
		Store:    st,
		Signer:   signer,
		Policy:   policy.Default(),
		Lockouts: lockouts,
		Sessions: sessions,
		Audit:    audit,
		Issuer:   "warden-test",
	}

	return testServices{
		store:    st,
		auth:     auth,
		users:    users,
		lockouts: lockouts,
		sessions: sessions,
		audit:    audit,
	}
}

var testMeta = RequestMeta{IPAddress: "203.0.113.7", UserAgent: "go-test"}

const testPassword = "Sup3rSecret!"

func registerTestUser(t *testing.T, s testServices, name string) int64 {
	t.Helper()

	u, err := s.auth.Register(context.Background(), name, testPassword, "tester", testMeta)
	require.NoError(t, err)
	return u.ID
}

func advanceLockClock(t *testing.T, s testServices, userID int64, by time.Duration) {
	t.Helper()

	// Rewrite the stored attempt timestamps backwards so the window and
	// lock expiry checks see them as older.
	rec, err := s.store.Lockouts().GetRecord(context.Background(), userID)
	require.NoError(t, err)

	require.NoError(t, s.store.Lockouts().ClearRecord(context.Background(), userID))
	for _, a := range rec.FailedAttempts {
		a.Timestamp = a.Timestamp.Add(-by)
		require.NoError(t, s.store.Lockouts().AddAttempt(context.Background(), userID, a))
	}
	if rec.LockedUntil != nil {
		require.NoError(t, s.store.Lockouts().SetLock(context.Background(), userID, rec.LockedUntil.Add(-by)))
	}
}
