package policy_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opshelm/warden/internal/users/policy"
	"github.com/opshelm/warden/pkg/cryptox"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "policy-test-")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper.key"))

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func TestValidate_AcceptsConformingPassword(t *testing.T) {
	p := policy.Default()

	require.Empty(t, p.Validate("Sup3rSecret!"))
}

func TestValidate_ReportsAllViolations(t *testing.T) {
	p := policy.Default()

	violations := p.Validate("abc")
	require.Len(t, violations, 4)
	require.Contains(t, violations[0], "at least 8 characters")
}

func TestValidate_Length(t *testing.T) {
	p := policy.Default()

	short := p.Validate("Aa1!x")
	require.Contains(t, strings.Join(short, "; "), "at least 8 characters")

	long := p.Validate("Aa1!" + strings.Repeat("x", 130))
	require.Contains(t, strings.Join(long, "; "), "not exceed 128 characters")
}

func TestValidate_CharacterClasses(t *testing.T) {
	p := policy.Default()

	cases := []struct {
		password string
		want     string
	}{
		{"lowercase1!only", "uppercase"},
		{"UPPERCASE1!ONLY", "lowercase"},
		{"NoNumbers!Here", "number"},
		{"NoSpecials1Here", "special character"},
	}
	for _, tc := range cases {
		violations := p.Validate(tc.password)
		require.Len(t, violations, 1, "password %q", tc.password)
		require.Contains(t, violations[0], tc.want)
	}
}

func TestCheckReuse(t *testing.T) {
	p := policy.Default()

	var history []string
	for _, pw := range []string{"Old-Pass-1", "Old-Pass-2", "Old-Pass-3"} {
		hash, err := cryptox.HashPassword(pw)
		require.NoError(t, err)
		history = append(history, hash)
	}

	require.True(t, p.CheckReuse("Old-Pass-2", history))
	require.False(t, p.CheckReuse("Brand-New-Pass-9!", history))
	require.False(t, p.CheckReuse("Anything", nil))
}

func TestCheckReuse_OnlyConsidersMostRecent(t *testing.T) {
	p := policy.Default()
	p.PreventReuse = 1

	oldHash, err := cryptox.HashPassword("Ancient-Pass-1!")
	require.NoError(t, err)
	newHash, err := cryptox.HashPassword("Recent-Pass-2!")
	require.NoError(t, err)

	history := []string{oldHash, newHash}
	require.False(t, p.CheckReuse("Ancient-Pass-1!", history))
	require.True(t, p.CheckReuse("Recent-Pass-2!", history))
}

func TestExpiration(t *testing.T) {
	p := policy.Default()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("fresh password not expired", func(t *testing.T) {
		changed := now.AddDate(0, 0, -10)
		require.False(t, p.IsExpired(&changed, now.AddDate(-1, 0, 0), now))
	})

	t.Run("stale password expired", func(t *testing.T) {
		changed := now.AddDate(0, 0, -91)
		require.True(t, p.IsExpired(&changed, now.AddDate(-1, 0, 0), now))
	})

	t.Run("falls back to account creation", func(t *testing.T) {
		created := now.AddDate(0, 0, -100)
		require.True(t, p.IsExpired(nil, created, now))
	})

	t.Run("boundary day is not expired", func(t *testing.T) {
		changed := now.AddDate(0, 0, -90)
		require.False(t, p.IsExpired(&changed, changed, now))
	})
}

func TestDaysUntilExpiration(t *testing.T) {
	p := policy.Default()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	changed := now.AddDate(0, 0, -80)
	require.Equal(t, 10, p.DaysUntilExpiration(&changed, changed, now))

	expired := now.AddDate(0, 0, -120)
	require.Equal(t, 0, p.DaysUntilExpiration(&expired, expired, now))
}

func TestShouldWarn(t *testing.T) {
	p := policy.Default()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	soon := now.AddDate(0, 0, -85)
	require.True(t, p.ShouldWarn(&soon, soon, now))

	far := now.AddDate(0, 0, -30)
	require.False(t, p.ShouldWarn(&far, far, now))

	gone := now.AddDate(0, 0, -120)
	require.False(t, p.ShouldWarn(&gone, gone, now))
}
